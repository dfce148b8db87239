package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ledgerly/apiserver/types"
	"github.com/shopspring/decimal"
)

// EntryFilter is a search template for entries. UserID is mandatory;
// every other field participates in the query only when set. String
// fields match by case-insensitive substring, numeric fields by equality.
type EntryFilter struct {
	UserID      int64
	Description string
	Month       int
	Year        int
	Type        types.EntryType
}

// EntryRepository handles persistence for entries.
type EntryRepository struct {
	db *sql.DB
}

func NewEntryRepository(db *sql.DB) *EntryRepository {
	return &EntryRepository{db: db}
}

const entryColumns = `id, description, month, year, value, type, status, user_id, created_at, updated_at`

func scanEntry(row *sql.Row) (types.Entry, error) {
	var entry types.Entry
	err := row.Scan(
		&entry.ID,
		&entry.Description,
		&entry.Month,
		&entry.Year,
		&entry.Value,
		&entry.Type,
		&entry.Status,
		&entry.UserID,
		&entry.CreatedAt,
		&entry.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Entry{}, ErrNotFound
		}
		return types.Entry{}, err
	}
	return entry, nil
}

func (r *EntryRepository) Get(ctx context.Context, id int64) (types.Entry, error) {
	query := fmt.Sprintf(`SELECT %s FROM entries WHERE id = $1`, entryColumns)
	return scanEntry(r.db.QueryRowContext(ctx, query, id))
}

func (r *EntryRepository) Create(ctx context.Context, entry types.Entry) (types.Entry, error) {
	now := time.Now()
	entry.CreatedAt = now
	entry.UpdatedAt = now

	const query = `
		INSERT INTO entries (description, month, year, value, type, status, user_id, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		entry.Description,
		entry.Month,
		entry.Year,
		entry.Value,
		entry.Type,
		entry.Status,
		entry.UserID,
		entry.CreatedAt,
		entry.UpdatedAt,
	).Scan(&entry.ID); err != nil {
		return types.Entry{}, err
	}
	return entry, nil
}

func (r *EntryRepository) Update(ctx context.Context, entry types.Entry) (types.Entry, error) {
	entry.UpdatedAt = time.Now()

	const query = `
		UPDATE entries
		SET description = $1,
			month = $2,
			year = $3,
			value = $4,
			type = $5,
			status = $6,
			user_id = $7,
			updated_at = $8
		WHERE id = $9`
	result, err := r.db.ExecContext(
		ctx,
		query,
		entry.Description,
		entry.Month,
		entry.Year,
		entry.Value,
		entry.Type,
		entry.Status,
		entry.UserID,
		entry.UpdatedAt,
		entry.ID,
	)
	if err != nil {
		return types.Entry{}, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return types.Entry{}, err
	}
	if affected == 0 {
		return types.Entry{}, ErrNotFound
	}
	return entry, nil
}

func (r *EntryRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM entries WHERE id = $1`
	result, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *EntryRepository) Search(ctx context.Context, filter EntryFilter) ([]types.Entry, error) {
	query, args := buildSearchQuery(filter)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]types.Entry, 0)
	for rows.Next() {
		var entry types.Entry
		if err := rows.Scan(
			&entry.ID,
			&entry.Description,
			&entry.Month,
			&entry.Year,
			&entry.Value,
			&entry.Type,
			&entry.Status,
			&entry.UserID,
			&entry.CreatedAt,
			&entry.UpdatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return entries, nil
}

// buildSearchQuery assembles the filter template into SQL. The owner id
// is always the first condition; optional fields are appended in a fixed
// order so the statement text is stable for a given filter shape.
func buildSearchQuery(filter EntryFilter) (string, []any) {
	var sb strings.Builder
	fmt.Fprintf(&sb, `SELECT %s FROM entries WHERE user_id = $1`, entryColumns)
	args := []any{filter.UserID}

	if filter.Description != "" {
		args = append(args, "%"+filter.Description+"%")
		fmt.Fprintf(&sb, ` AND description ILIKE $%d`, len(args))
	}
	if filter.Month != 0 {
		args = append(args, filter.Month)
		fmt.Fprintf(&sb, ` AND month = $%d`, len(args))
	}
	if filter.Year != 0 {
		args = append(args, filter.Year)
		fmt.Fprintf(&sb, ` AND year = $%d`, len(args))
	}
	if filter.Type != "" {
		args = append(args, filter.Type)
		fmt.Fprintf(&sb, ` AND type = $%d`, len(args))
	}

	sb.WriteString(` ORDER BY id`)
	return sb.String(), args
}

// SumValueByUserAndType returns the sum of entry values for one user and
// type. A user with no matching entries yields a NULL aggregate, which is
// reported as (zero, false).
func (r *EntryRepository) SumValueByUserAndType(ctx context.Context, userID int64, entryType types.EntryType) (decimal.Decimal, bool, error) {
	const query = `SELECT SUM(value) FROM entries WHERE user_id = $1 AND type = $2`
	var sum decimal.NullDecimal
	if err := r.db.QueryRowContext(ctx, query, userID, entryType).Scan(&sum); err != nil {
		return decimal.Decimal{}, false, err
	}
	if !sum.Valid {
		return decimal.Decimal{}, false, nil
	}
	return sum.Decimal, true, nil
}

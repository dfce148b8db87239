package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/ledgerly/apiserver/types"
)

// AttachmentRepository handles persistence for receipt attachments.
type AttachmentRepository struct {
	db *sql.DB
}

func NewAttachmentRepository(db *sql.DB) *AttachmentRepository {
	return &AttachmentRepository{db: db}
}

func (r *AttachmentRepository) GetByEntryID(ctx context.Context, entryID int64) (types.Attachment, error) {
	const query = `
		SELECT id, entry_id, object_key, sha256, content_type, size, created_at
		FROM attachments
		WHERE entry_id = $1`
	var attachment types.Attachment
	err := r.db.QueryRowContext(ctx, query, entryID).Scan(
		&attachment.ID,
		&attachment.EntryID,
		&attachment.ObjectKey,
		&attachment.SHA256,
		&attachment.ContentType,
		&attachment.Size,
		&attachment.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return types.Attachment{}, ErrNotFound
		}
		return types.Attachment{}, err
	}
	return attachment, nil
}

// Upsert inserts the receipt row for an entry, replacing any existing one.
// Entries carry at most one receipt, enforced by the unique entry_id index.
func (r *AttachmentRepository) Upsert(ctx context.Context, attachment types.Attachment) (types.Attachment, error) {
	attachment.CreatedAt = time.Now()

	const query = `
		INSERT INTO attachments (entry_id, object_key, sha256, content_type, size, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (entry_id) DO UPDATE
		SET object_key = EXCLUDED.object_key,
			sha256 = EXCLUDED.sha256,
			content_type = EXCLUDED.content_type,
			size = EXCLUDED.size,
			created_at = EXCLUDED.created_at
		RETURNING id`
	if err := r.db.QueryRowContext(
		ctx,
		query,
		attachment.EntryID,
		attachment.ObjectKey,
		attachment.SHA256,
		attachment.ContentType,
		attachment.Size,
		attachment.CreatedAt,
	).Scan(&attachment.ID); err != nil {
		return types.Attachment{}, err
	}
	return attachment, nil
}

func (r *AttachmentRepository) DeleteByEntryID(ctx context.Context, entryID int64) error {
	const query = `DELETE FROM attachments WHERE entry_id = $1`
	result, err := r.db.ExecContext(ctx, query, entryID)
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

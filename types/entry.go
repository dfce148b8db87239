package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// EntryType classifies an entry as income or expense.
type EntryType string

const (
	EntryTypeIncome  EntryType = "INCOME"
	EntryTypeExpense EntryType = "EXPENSE"
)

// Valid reports whether the type is one of the known entry types.
func (t EntryType) Valid() bool {
	return t == EntryTypeIncome || t == EntryTypeExpense
}

// ParseEntryType converts a string into an EntryType.
func ParseEntryType(s string) (EntryType, error) {
	t := EntryType(s)
	if !t.Valid() {
		return "", fmt.Errorf("unknown entry type %q", s)
	}
	return t, nil
}

// EntryStatus is the lifecycle state of an entry. Entries are created as
// PENDING and move to CONFIRMED or CANCELED through the status endpoint.
type EntryStatus string

const (
	EntryStatusPending   EntryStatus = "PENDING"
	EntryStatusConfirmed EntryStatus = "CONFIRMED"
	EntryStatusCanceled  EntryStatus = "CANCELED"
)

// Valid reports whether the status is one of the known entry statuses.
func (s EntryStatus) Valid() bool {
	switch s {
	case EntryStatusPending, EntryStatusConfirmed, EntryStatusCanceled:
		return true
	}
	return false
}

// ParseEntryStatus converts a string into an EntryStatus.
func ParseEntryStatus(s string) (EntryStatus, error) {
	status := EntryStatus(s)
	if !status.Valid() {
		return "", fmt.Errorf("unknown entry status %q", s)
	}
	return status, nil
}

// Entry represents a single financial record (income or expense) owned
// by a user.
type Entry struct {
	// ID is the unique identifier of the entry.
	ID int64 `json:"id" db:"id"`

	// Description is the human-readable label of the entry.
	Description string `json:"description" db:"description"`

	// Month is the calendar month the entry belongs to (1-12).
	Month int `json:"month" db:"month"`

	// Year is the calendar year the entry belongs to. It must render
	// to exactly four digits.
	Year int `json:"year" db:"year"`

	// Value is the monetary amount of the entry. It is always positive;
	// the sign of the contribution to the balance is derived from Type.
	Value decimal.Decimal `json:"value" db:"value"`

	// Type indicates whether the entry is income or expense.
	Type EntryType `json:"type" db:"type"`

	// Status is the lifecycle state of the entry.
	Status EntryStatus `json:"status" db:"status"`

	// UserID identifies the user who owns the entry.
	UserID int64 `json:"user" db:"user_id"`

	// CreatedAt is the timestamp at which the entry was persisted.
	CreatedAt time.Time `json:"created_at" db:"created_at"`

	// UpdatedAt is the timestamp of the most recent update to the entry.
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

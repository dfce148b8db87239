package services

import (
	"context"
	"strconv"
	"strings"

	"github.com/ledgerly/apiserver/internal/store"
	"github.com/ledgerly/apiserver/types"
	"github.com/shopspring/decimal"
)

// EntryRepository defines persistence operations for entries.
type EntryRepository interface {
	Get(ctx context.Context, id int64) (types.Entry, error)
	Create(ctx context.Context, entry types.Entry) (types.Entry, error)
	Update(ctx context.Context, entry types.Entry) (types.Entry, error)
	Delete(ctx context.Context, id int64) error
	Search(ctx context.Context, filter store.EntryFilter) ([]types.Entry, error)
	SumValueByUserAndType(ctx context.Context, userID int64, entryType types.EntryType) (decimal.Decimal, bool, error)
}

// EntryService encapsulates entry use-cases.
type EntryService struct {
	repo   EntryRepository
	events EventPublisher
}

// NewEntryService constructs an EntryService. A nil events publisher
// disables event publishing.
func NewEntryService(repo EntryRepository, events EventPublisher) *EntryService {
	return &EntryService{repo: repo, events: events}
}

func (s *EntryService) Get(ctx context.Context, id int64) (types.Entry, error) {
	return s.repo.Get(ctx, id)
}

// Validate checks the entry field rules in a fixed order and reports the
// first violation. The order is part of the API contract: an entry failing
// several rules reports only the first.
func (s *EntryService) Validate(entry types.Entry) error {
	if strings.TrimSpace(entry.Description) == "" {
		return &ValidationError{Message: "invalid description"}
	}
	if entry.Month < 1 || entry.Month > 12 {
		return &ValidationError{Message: "invalid month"}
	}
	// The year rule counts the digits of the printed value, sign included,
	// rather than checking a numeric range.
	if len(strconv.Itoa(entry.Year)) != 4 {
		return &ValidationError{Message: "invalid year"}
	}
	if entry.UserID == 0 {
		return &ValidationError{Message: "missing user"}
	}
	if entry.Value.Sign() <= 0 {
		return &ValidationError{Message: "invalid value"}
	}
	if entry.Type == "" {
		return &ValidationError{Message: "missing entry type"}
	}
	return nil
}

// Save validates and persists a new entry. The status supplied by the
// caller is ignored: entries are always created as PENDING.
func (s *EntryService) Save(ctx context.Context, entry types.Entry) (types.Entry, error) {
	if err := s.Validate(entry); err != nil {
		return types.Entry{}, err
	}
	entry.Status = types.EntryStatusPending

	created, err := s.repo.Create(ctx, entry)
	if err != nil {
		return types.Entry{}, err
	}
	publishEntryEvent(ctx, s.events, EventEntryCreated, created)
	return created, nil
}

// Update validates and persists an existing entry. The id must already be
// set; it is checked before validation and before any persistence call.
func (s *EntryService) Update(ctx context.Context, entry types.Entry) (types.Entry, error) {
	return s.update(ctx, entry, EventEntryUpdated)
}

func (s *EntryService) update(ctx context.Context, entry types.Entry, eventKind string) (types.Entry, error) {
	if entry.ID == 0 {
		return types.Entry{}, ErrMissingID
	}
	if err := s.Validate(entry); err != nil {
		return types.Entry{}, err
	}

	updated, err := s.repo.Update(ctx, entry)
	if err != nil {
		return types.Entry{}, err
	}
	publishEntryEvent(ctx, s.events, eventKind, updated)
	return updated, nil
}

// UpdateStatus sets the entry status and runs the result through the full
// update path, so field validation applies again.
func (s *EntryService) UpdateStatus(ctx context.Context, entry types.Entry, status types.EntryStatus) (types.Entry, error) {
	entry.Status = status
	return s.update(ctx, entry, EventEntryStatusChanged)
}

// Delete removes the entry. The id must already be set.
func (s *EntryService) Delete(ctx context.Context, entry types.Entry) error {
	if entry.ID == 0 {
		return ErrMissingID
	}
	if err := s.repo.Delete(ctx, entry.ID); err != nil {
		return err
	}
	publishEntryEvent(ctx, s.events, EventEntryDeleted, entry)
	return nil
}

// Search returns the entries matching the filter template. Only the owner
// id is mandatory; see store.EntryFilter for the matching rules.
func (s *EntryService) Search(ctx context.Context, filter store.EntryFilter) ([]types.Entry, error) {
	return s.repo.Search(ctx, filter)
}

// BalanceForUser returns the sum of the user's income entries minus the
// sum of the expense entries. A missing aggregate on either side counts
// as zero, so the result can legitimately be negative.
func (s *EntryService) BalanceForUser(ctx context.Context, userID int64) (decimal.Decimal, error) {
	income, ok, err := s.repo.SumValueByUserAndType(ctx, userID, types.EntryTypeIncome)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !ok {
		income = decimal.Zero
	}

	expense, ok, err := s.repo.SumValueByUserAndType(ctx, userID, types.EntryTypeExpense)
	if err != nil {
		return decimal.Decimal{}, err
	}
	if !ok {
		expense = decimal.Zero
	}

	return income.Sub(expense), nil
}

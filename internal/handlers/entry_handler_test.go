package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/ledgerly/apiserver/types"
	"github.com/shopspring/decimal"
)

func doJSON(t *testing.T, env *testEnv, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	env.router.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var resp ErrorResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode error response: %v (%s)", err, rec.Body.String())
	}
	return resp.Error
}

func seedEntry(t *testing.T, env *testEnv, userID int64) types.Entry {
	t.Helper()
	body := fmt.Sprintf(`{"description":"groceries","month":3,"year":2025,"value":"100","type":"EXPENSE","user":%d}`, userID)
	rec := doJSON(t, env, http.MethodPost, "/entries", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("seed entry: status %d (%s)", rec.Code, rec.Body.String())
	}
	var entry types.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode seeded entry: %v", err)
	}
	return entry
}

func TestCreateEntry(t *testing.T) {
	env := newTestEnv()
	user := env.userRepo.seed("owner@example.com", "pw")

	entry := seedEntry(t, env, user.ID)

	if entry.ID == 0 {
		t.Fatalf("expected assigned id")
	}
	if entry.Status != types.EntryStatusPending {
		t.Fatalf("expected status PENDING, got %s", entry.Status)
	}
	if !entry.Value.Equal(decimal.NewFromInt(100)) {
		t.Fatalf("expected value 100, got %s", entry.Value)
	}
	if entry.UserID != user.ID {
		t.Fatalf("expected owner %d, got %d", user.ID, entry.UserID)
	}
}

func TestCreateEntryIgnoresSuppliedStatus(t *testing.T) {
	env := newTestEnv()
	user := env.userRepo.seed("owner@example.com", "pw")

	body := fmt.Sprintf(`{"description":"salary","month":1,"year":2025,"value":"500","type":"INCOME","status":"CONFIRMED","user":%d}`, user.ID)
	rec := doJSON(t, env, http.MethodPost, "/entries", body)
	if rec.Code != http.StatusOK {
		t.Fatalf("status %d (%s)", rec.Code, rec.Body.String())
	}

	var entry types.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Status != types.EntryStatusPending {
		t.Fatalf("expected status PENDING, got %s", entry.Status)
	}
}

func TestCreateEntryValidationFailure(t *testing.T) {
	env := newTestEnv()
	user := env.userRepo.seed("owner@example.com", "pw")

	body := fmt.Sprintf(`{"description":"  ","month":3,"year":2025,"value":"100","type":"EXPENSE","user":%d}`, user.ID)
	rec := doJSON(t, env, http.MethodPost, "/entries", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if message := decodeError(t, rec); message != "invalid description" {
		t.Fatalf("expected validation message, got %q", message)
	}
}

func TestCreateEntryUnknownUser(t *testing.T) {
	env := newTestEnv()

	body := `{"description":"groceries","month":3,"year":2025,"value":"100","type":"EXPENSE","user":42}`
	rec := doJSON(t, env, http.MethodPost, "/entries", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if message := decodeError(t, rec); message != "user not found for the given id" {
		t.Fatalf("unexpected message %q", message)
	}
}

func TestGetEntry(t *testing.T) {
	env := newTestEnv()
	user := env.userRepo.seed("owner@example.com", "pw")
	seeded := seedEntry(t, env, user.ID)

	rec := doJSON(t, env, http.MethodGet, fmt.Sprintf("/entries/%d", seeded.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var entry types.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Description != "groceries" || entry.Month != 3 || entry.Year != 2025 {
		t.Fatalf("round trip mismatch: %+v", entry)
	}
}

func TestGetEntryNotFound(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env, http.MethodGet, "/entries/99", "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}
}

func TestUpdateEntry(t *testing.T) {
	env := newTestEnv()
	user := env.userRepo.seed("owner@example.com", "pw")
	seeded := seedEntry(t, env, user.ID)

	body := fmt.Sprintf(`{"description":"rent","month":4,"year":2025,"value":"900","type":"EXPENSE","user":%d}`, user.ID)
	rec := doJSON(t, env, http.MethodPut, fmt.Sprintf("/entries/%d", seeded.ID), body)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var entry types.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Description != "rent" || entry.Month != 4 {
		t.Fatalf("update not applied: %+v", entry)
	}
}

func TestUpdateEntryNotFound(t *testing.T) {
	env := newTestEnv()
	env.userRepo.seed("owner@example.com", "pw")

	body := `{"description":"rent","month":4,"year":2025,"value":"900","type":"EXPENSE","user":1}`
	rec := doJSON(t, env, http.MethodPut, "/entries/99", body)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if message := decodeError(t, rec); message != "entry not found" {
		t.Fatalf("unexpected message %q", message)
	}
}

func TestUpdateEntryStatus(t *testing.T) {
	env := newTestEnv()
	user := env.userRepo.seed("owner@example.com", "pw")
	seeded := seedEntry(t, env, user.ID)

	rec := doJSON(t, env, http.MethodPut, fmt.Sprintf("/entries/%d/status", seeded.ID), `{"status":"CONFIRMED"}`)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", rec.Code, rec.Body.String())
	}

	var entry types.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entry); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if entry.Status != types.EntryStatusConfirmed {
		t.Fatalf("expected CONFIRMED, got %s", entry.Status)
	}
}

func TestUpdateEntryStatusInvalid(t *testing.T) {
	env := newTestEnv()
	user := env.userRepo.seed("owner@example.com", "pw")
	seeded := seedEntry(t, env, user.ID)

	rec := doJSON(t, env, http.MethodPut, fmt.Sprintf("/entries/%d/status", seeded.ID), `{"status":"DONE"}`)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if message := decodeError(t, rec); message != "invalid status" {
		t.Fatalf("unexpected message %q", message)
	}
}

func TestDeleteEntry(t *testing.T) {
	env := newTestEnv()
	user := env.userRepo.seed("owner@example.com", "pw")
	seeded := seedEntry(t, env, user.ID)

	rec := doJSON(t, env, http.MethodDelete, fmt.Sprintf("/entries/%d", seeded.ID), "")
	if rec.Code != http.StatusNoContent {
		t.Fatalf("expected 204, got %d", rec.Code)
	}

	rec = doJSON(t, env, http.MethodGet, fmt.Sprintf("/entries/%d", seeded.ID), "")
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 after delete, got %d", rec.Code)
	}
}

func TestDeleteEntryNotFound(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env, http.MethodDelete, "/entries/99", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchEntriesRequiresUser(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env, http.MethodGet, "/entries", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
}

func TestSearchEntriesUnknownUser(t *testing.T) {
	env := newTestEnv()

	rec := doJSON(t, env, http.MethodGet, "/entries?user=42", "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if message := decodeError(t, rec); message != "user not found for the given id" {
		t.Fatalf("unexpected message %q", message)
	}
}

func TestSearchEntriesFiltersByType(t *testing.T) {
	env := newTestEnv()
	user := env.userRepo.seed("owner@example.com", "pw")

	seedEntry(t, env, user.ID)
	body := fmt.Sprintf(`{"description":"salary","month":1,"year":2025,"value":"500","type":"INCOME","user":%d}`, user.ID)
	if rec := doJSON(t, env, http.MethodPost, "/entries", body); rec.Code != http.StatusOK {
		t.Fatalf("seed income: status %d", rec.Code)
	}

	rec := doJSON(t, env, http.MethodGet, fmt.Sprintf("/entries?user=%d&type=INCOME", user.ID), "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var entries []types.Entry
	if err := json.Unmarshal(rec.Body.Bytes(), &entries); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(entries) != 1 || entries[0].Type != types.EntryTypeIncome {
		t.Fatalf("unexpected search result: %+v", entries)
	}
}

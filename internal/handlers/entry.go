package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ledgerly/apiserver/internal/services"
	"github.com/ledgerly/apiserver/internal/store"
	"github.com/ledgerly/apiserver/types"
	"github.com/shopspring/decimal"
)

// EntryHandler provides HTTP handlers for entries.
type EntryHandler struct {
	entryService *services.EntryService
	userService  *services.UserService
}

// NewEntryHandler constructs a handler with the provided services.
func NewEntryHandler(entryService *services.EntryService, userService *services.UserService) *EntryHandler {
	return &EntryHandler{
		entryService: entryService,
		userService:  userService,
	}
}

// EntryRouter registers entry routes on the given router. The receipt
// routes are mounted only when an attachment service is configured.
func EntryRouter(
	r chi.Router,
	entryService *services.EntryService,
	userService *services.UserService,
	attachmentService *services.AttachmentService,
) {
	handler := NewEntryHandler(entryService, userService)

	r.Get("/", handler.SearchEntries)
	r.Post("/", handler.CreateEntry)
	r.Route("/{entryID}", func(r chi.Router) {
		r.Get("/", handler.GetEntry)
		r.Put("/", handler.UpdateEntry)
		r.Put("/status", handler.UpdateEntryStatus)
		r.Delete("/", handler.DeleteEntry)

		if attachmentService != nil {
			receiptHandler := NewReceiptHandler(attachmentService, entryService)
			r.Post("/receipt", receiptHandler.UploadReceipt)
			r.Get("/receipt", receiptHandler.GetReceipt)
			r.Delete("/receipt", receiptHandler.DeleteReceipt)
		}
	})
}

// EntryRequest is the JSON body accepted by the create and update
// endpoints. User carries the owning user's id only.
type EntryRequest struct {
	Description string          `json:"description"`
	Month       int             `json:"month"`
	Year        int             `json:"year"`
	Value       decimal.Decimal `json:"value"`
	Type        string          `json:"type"`
	Status      string          `json:"status"`
	User        int64           `json:"user"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

func (h *EntryHandler) SearchEntries(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	rawUser := strings.TrimSpace(query.Get("user"))
	if rawUser == "" {
		writeError(w, http.StatusBadRequest, "user query parameter is required")
		return
	}
	userID, err := parseID(rawUser)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid user id")
		return
	}

	if _, err := h.userService.GetByID(r.Context(), userID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "user not found for the given id")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return
	}

	filter := store.EntryFilter{
		UserID:      userID,
		Description: strings.TrimSpace(query.Get("description")),
	}
	if raw := strings.TrimSpace(query.Get("month")); raw != "" {
		month, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid month")
			return
		}
		filter.Month = month
	}
	if raw := strings.TrimSpace(query.Get("year")); raw != "" {
		year, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid year")
			return
		}
		filter.Year = year
	}
	if raw := strings.TrimSpace(query.Get("type")); raw != "" {
		entryType, err := types.ParseEntryType(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid entry type")
			return
		}
		filter.Type = entryType
	}

	entries, err := h.entryService.Search(r.Context(), filter)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to search entries")
		return
	}

	writeJSON(w, http.StatusOK, entries)
}

func (h *EntryHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.entryService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch entry")
		return
	}

	writeJSON(w, http.StatusOK, entry)
}

func (h *EntryHandler) CreateEntry(w http.ResponseWriter, r *http.Request) {
	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	entry, ok := h.entryFromRequest(w, r, req)
	if !ok {
		return
	}

	created, err := h.entryService.Save(r.Context(), entry)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to create entry")
		return
	}

	writeJSON(w, http.StatusOK, created)
}

func (h *EntryHandler) UpdateEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	if _, err := h.entryService.Get(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch entry")
		return
	}

	var req EntryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	entry, ok := h.entryFromRequest(w, r, req)
	if !ok {
		return
	}
	entry.ID = id

	updated, err := h.entryService.Update(r.Context(), entry)
	if err != nil {
		h.writeUpdateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *EntryHandler) UpdateEntryStatus(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.entryService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch entry")
		return
	}

	var req UpdateStatusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	status, err := types.ParseEntryStatus(req.Status)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid status")
		return
	}

	updated, err := h.entryService.UpdateStatus(r.Context(), entry, status)
	if err != nil {
		h.writeUpdateError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, updated)
}

func (h *EntryHandler) DeleteEntry(w http.ResponseWriter, r *http.Request) {
	id, err := parseID(chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	entry, err := h.entryService.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch entry")
		return
	}

	if err := h.entryService.Delete(r.Context(), entry); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "entry not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// entryFromRequest converts the DTO into an entry, resolving the owning
// user. A false return means the error response has already been written.
func (h *EntryHandler) entryFromRequest(w http.ResponseWriter, r *http.Request, req EntryRequest) (types.Entry, bool) {
	entry := types.Entry{
		Description: req.Description,
		Month:       req.Month,
		Year:        req.Year,
		Value:       req.Value,
	}

	if req.Type != "" {
		entryType, err := types.ParseEntryType(req.Type)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid entry type")
			return types.Entry{}, false
		}
		entry.Type = entryType
	}
	if req.Status != "" {
		status, err := types.ParseEntryStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid status")
			return types.Entry{}, false
		}
		entry.Status = status
	}

	user, err := h.userService.GetByID(r.Context(), req.User)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "user not found for the given id")
			return types.Entry{}, false
		}
		writeError(w, http.StatusInternalServerError, "failed to load user")
		return types.Entry{}, false
	}
	entry.UserID = user.ID

	return entry, true
}

func (h *EntryHandler) writeUpdateError(w http.ResponseWriter, err error) {
	var validationErr *services.ValidationError
	switch {
	case errors.As(err, &validationErr):
		writeError(w, http.StatusBadRequest, validationErr.Message)
	case errors.Is(err, services.ErrMissingID):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrNotFound):
		writeError(w, http.StatusBadRequest, "entry not found")
	default:
		writeError(w, http.StatusInternalServerError, "failed to update entry")
	}
}

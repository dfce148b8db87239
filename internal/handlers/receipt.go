package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/ledgerly/apiserver/internal/services"
	"github.com/ledgerly/apiserver/internal/store"
)

const (
	maxReceiptMemory = 8 << 20
	maxReceiptBytes  = 16 << 20
	formFieldReceipt = "receipt"
)

// ReceiptHandler provides HTTP handlers for entry receipt attachments.
type ReceiptHandler struct {
	attachmentService *services.AttachmentService
	entryService      *services.EntryService
}

// NewReceiptHandler constructs a handler with the provided services.
func NewReceiptHandler(attachmentService *services.AttachmentService, entryService *services.EntryService) *ReceiptHandler {
	return &ReceiptHandler{
		attachmentService: attachmentService,
		entryService:      entryService,
	}
}

// UploadReceipt stores a multipart file as the entry's receipt.
func (h *ReceiptHandler) UploadReceipt(w http.ResponseWriter, r *http.Request) {
	entryID, ok := h.resolveEntry(w, r)
	if !ok {
		return
	}

	if err := r.ParseMultipartForm(maxReceiptMemory); err != nil {
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	file, header, err := r.FormFile(formFieldReceipt)
	if err != nil {
		writeError(w, http.StatusBadRequest, "receipt file is required")
		return
	}
	defer file.Close()

	if header.Size > maxReceiptBytes {
		writeError(w, http.StatusBadRequest, "receipt file too large")
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxReceiptBytes+1))
	if err != nil {
		writeError(w, http.StatusBadRequest, "failed to read receipt file")
		return
	}
	if int64(len(data)) > maxReceiptBytes {
		writeError(w, http.StatusBadRequest, "receipt file too large")
		return
	}

	attachment, err := h.attachmentService.UploadReceipt(r.Context(), entryID, header.Header.Get("Content-Type"), data)
	if err != nil {
		var validationErr *services.ValidationError
		if errors.As(err, &validationErr) {
			writeError(w, http.StatusBadRequest, validationErr.Message)
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to store receipt")
		return
	}

	writeJSON(w, http.StatusCreated, attachment)
}

// GetReceipt streams the entry's receipt file.
func (h *ReceiptHandler) GetReceipt(w http.ResponseWriter, r *http.Request) {
	entryID, ok := h.resolveEntry(w, r)
	if !ok {
		return
	}

	attachment, reader, err := h.attachmentService.OpenReceipt(r.Context(), entryID)
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "receipt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch receipt")
		return
	}
	defer reader.Close()

	contentType := attachment.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(http.StatusOK)
	_, _ = io.Copy(w, reader)
}

// DeleteReceipt removes the entry's receipt.
func (h *ReceiptHandler) DeleteReceipt(w http.ResponseWriter, r *http.Request) {
	entryID, ok := h.resolveEntry(w, r)
	if !ok {
		return
	}

	if err := h.attachmentService.DeleteReceipt(r.Context(), entryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "receipt not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "failed to delete receipt")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func (h *ReceiptHandler) resolveEntry(w http.ResponseWriter, r *http.Request) (int64, bool) {
	entryID, err := parseID(chi.URLParam(r, "entryID"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return 0, false
	}

	if _, err := h.entryService.Get(r.Context(), entryID); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusNotFound, "entry not found")
			return 0, false
		}
		writeError(w, http.StatusInternalServerError, "failed to fetch entry")
		return 0, false
	}

	return entryID, true
}

package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"

	"github.com/ledgerly/apiserver/internal/storage"
	"github.com/ledgerly/apiserver/internal/store"
	"github.com/ledgerly/apiserver/types"
)

// AttachmentRepository defines persistence operations for receipts.
type AttachmentRepository interface {
	GetByEntryID(ctx context.Context, entryID int64) (types.Attachment, error)
	Upsert(ctx context.Context, attachment types.Attachment) (types.Attachment, error)
	DeleteByEntryID(ctx context.Context, entryID int64) error
}

// AttachmentService stores receipt files in object storage and tracks
// their metadata per entry.
type AttachmentService struct {
	repo    AttachmentRepository
	storage *storage.Storage
}

func NewAttachmentService(repo AttachmentRepository, storage *storage.Storage) *AttachmentService {
	return &AttachmentService{repo: repo, storage: storage}
}

// UploadReceipt stores the file under a content-addressed key and records
// it as the entry's receipt, replacing any previous one. The previous
// object is removed unless the new upload has identical contents.
func (s *AttachmentService) UploadReceipt(ctx context.Context, entryID int64, contentType string, data []byte) (types.Attachment, error) {
	if len(data) == 0 {
		return types.Attachment{}, &ValidationError{Message: "empty receipt file"}
	}

	hash := sha256.Sum256(data)
	digest := hex.EncodeToString(hash[:])
	key := fmt.Sprintf("receipts/%d/%s", entryID, digest)

	previous, err := s.repo.GetByEntryID(ctx, entryID)
	if err != nil && !errors.Is(err, store.ErrNotFound) {
		return types.Attachment{}, err
	}
	hadPrevious := err == nil

	if err := s.storage.Put(ctx, key, bytes.NewReader(data), int64(len(data)), contentType); err != nil {
		return types.Attachment{}, err
	}

	attachment, err := s.repo.Upsert(ctx, types.Attachment{
		EntryID:     entryID,
		ObjectKey:   key,
		SHA256:      digest,
		ContentType: contentType,
		Size:        int64(len(data)),
	})
	if err != nil {
		return types.Attachment{}, err
	}

	if hadPrevious && previous.ObjectKey != key {
		_ = s.storage.Delete(ctx, previous.ObjectKey)
	}

	return attachment, nil
}

// OpenReceipt returns the entry's receipt metadata and a reader over the
// stored file. The caller closes the reader.
func (s *AttachmentService) OpenReceipt(ctx context.Context, entryID int64) (types.Attachment, io.ReadCloser, error) {
	attachment, err := s.repo.GetByEntryID(ctx, entryID)
	if err != nil {
		return types.Attachment{}, nil, err
	}

	reader, err := s.storage.Get(ctx, attachment.ObjectKey)
	if err != nil {
		return types.Attachment{}, nil, err
	}
	return attachment, reader, nil
}

// DeleteReceipt removes the entry's receipt row and its stored object.
func (s *AttachmentService) DeleteReceipt(ctx context.Context, entryID int64) error {
	attachment, err := s.repo.GetByEntryID(ctx, entryID)
	if err != nil {
		return err
	}

	if err := s.repo.DeleteByEntryID(ctx, entryID); err != nil {
		return err
	}

	_ = s.storage.Delete(ctx, attachment.ObjectKey)
	return nil
}

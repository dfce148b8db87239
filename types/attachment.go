package types

import "time"

// Attachment represents a receipt file stored in object storage and
// linked to an entry. Each entry carries at most one receipt.
//
// The file contents live externally (e.g., in MinIO or GCS) and are
// referenced by ObjectKey. The SHA256 hash identifies the contents and
// is part of the object key, so replacing a receipt never overwrites
// an unrelated object.
type Attachment struct {
	// ID is the unique identifier of the attachment.
	ID int64 `json:"id" db:"id"`

	// EntryID is the identifier of the entry this receipt belongs to.
	EntryID int64 `json:"entry_id" db:"entry_id"`

	// ObjectKey is the path of the receipt in object storage.
	ObjectKey string `json:"object_key" db:"object_key"`

	// SHA256 is the hex-encoded SHA-256 hash of the file contents.
	SHA256 string `json:"sha256" db:"sha256"`

	// ContentType is the MIME type reported at upload time.
	ContentType string `json:"content_type" db:"content_type"`

	// Size is the file size in bytes.
	Size int64 `json:"size" db:"size"`

	// CreatedAt is the timestamp when the receipt was uploaded.
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

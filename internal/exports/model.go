package exports

import (
	"crypto/sha256"
	"encoding/hex"
	"time"

	"github.com/google/uuid"
)

// Record describes one produced export file.
type Record struct {
	ID        uuid.UUID `json:"id"`
	SessionID string    `json:"sessionId"`
	Revision  int64     `json:"revision"`
	Template  string    `json:"template"`
	Format    string    `json:"format"`
	FileName  string    `json:"fileName"`
	SizeBytes int64     `json:"sizeBytes"`
	SHA256    string    `json:"sha256"`
	// StorageKey locates the archived bytes; empty when nothing was kept.
	StorageKey string    `json:"-"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Archived reports whether the export bytes can be downloaded again.
func (r Record) Archived() bool {
	return r.StorageKey != ""
}

// NewRecord builds a record for data produced now.
func NewRecord(sessionID string, revision int64, template, format, fileName string, data []byte) Record {
	sum := sha256.Sum256(data)
	return Record{
		ID:        uuid.New(),
		SessionID: sessionID,
		Revision:  revision,
		Template:  template,
		Format:    format,
		FileName:  fileName,
		SizeBytes: int64(len(data)),
		SHA256:    hex.EncodeToString(sum[:]),
		CreatedAt: time.Now().UTC(),
	}
}

package editor

import (
	"time"

	"github.com/google/uuid"

	"resume-builder/resume/model"
)

// Session is one user's edit session. Template is session state, kept
// apart from the document.
type Session struct {
	ID             string               `json:"id"`
	Document       model.ResumeDocument `json:"resume"`
	Template       model.Template       `json:"template"`
	Revision       int64                `json:"revision"`
	SourceResumeID string               `json:"sourceResumeId,omitempty"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
	LastSave       *SaveResult          `json:"lastSave,omitempty"`
}

// savedAt returns the recorded master save of revision, if any.
func (s Session) savedAt(revision int64) (SaveResult, bool) {
	if s.LastSave == nil || s.LastSave.Revision != revision {
		return SaveResult{}, false
	}
	return *s.LastSave, true
}

// NewSession opens a session at revision 1.
func NewSession(doc model.ResumeDocument, template model.Template) Session {
	now := time.Now().UTC()
	return Session{
		ID:        uuid.NewString(),
		Document:  doc.WithDefaults(),
		Template:  template,
		Revision:  1,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

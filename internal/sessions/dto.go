package sessions

import (
	"encoding/json"
	"time"

	"resume-builder/internal/editor"
	"resume-builder/resume/model"
)

type sessionResponse struct {
	SessionID      string               `json:"sessionId"`
	Template       string               `json:"template"`
	Revision       int64                `json:"revision"`
	SourceResumeID string               `json:"sourceResumeId,omitempty"`
	Resume         model.ResumeDocument `json:"resume"`
	CreatedAt      time.Time            `json:"createdAt"`
	UpdatedAt      time.Time            `json:"updatedAt"`
}

func toResponse(s editor.Session) sessionResponse {
	return sessionResponse{
		SessionID:      s.ID,
		Template:       s.Template.String(),
		Revision:       s.Revision,
		SourceResumeID: s.SourceResumeID,
		Resume:         s.Document.WithDefaults(),
		CreatedAt:      s.CreatedAt,
		UpdatedAt:      s.UpdatedAt,
	}
}

type createSessionRequest struct {
	Resume   json.RawMessage `json:"resume"`
	ResumeID string          `json:"resumeId"`
	Template string          `json:"template"`
}

type generateRequest struct {
	JobDescription string `json:"jobDescription" binding:"required"`
	ResumeID       string `json:"resumeId"`
	Template       string `json:"template"`
}

type templateRequest struct {
	Template string `json:"template" binding:"required"`
}

type fieldRequest struct {
	Field string `json:"field" binding:"required"`
	Value string `json:"value"`
}

type itemFieldRequest struct {
	Field string `json:"field"`
	Value string `json:"value"`
}

type summaryRequest struct {
	Summary string `json:"summary"`
}

type sectionRequest struct {
	Items []any `json:"items"`
}

type itemRequest struct {
	Item any `json:"item"`
}

type responsibilityRequest struct {
	Text string `json:"text"`
}

type validationResponse struct {
	Valid  bool              `json:"valid"`
	Fields map[string]string `json:"fields"`
}

type resumeSummary struct {
	ID         string               `json:"id"`
	Name       string               `json:"name"`
	Profession string               `json:"profession,omitempty"`
	IsMaster   bool                 `json:"isMaster"`
	UpdatedAt  string               `json:"updatedAt,omitempty"`
	Resume     model.ResumeDocument `json:"resume"`
}

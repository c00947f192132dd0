package sessions

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"resume-builder/internal/backend"
	"resume-builder/internal/editor"
	"resume-builder/internal/exports"
	"resume-builder/internal/extract"
	"resume-builder/internal/shared/server/respond"
	"resume-builder/resume/model"
	"resume-builder/resume/pdf"
	"resume-builder/resume/render"
)

var badInput = []error{
	model.ErrInvalidTemplate,
	model.ErrInvalidSection,
	editor.ErrInvalidField,
	editor.ErrIndexOutOfRange,
	editor.ErrIncompleteItem,
	editor.ErrNotAList,
	editor.ErrInvalidFormat,
	extract.ErrUnsupportedType,
}

func writeError(c *gin.Context, err error) {
	var verr *editor.ValidationError
	var berr *backend.Error
	switch {
	case errors.As(err, &verr):
		respond.Error(c, http.StatusUnprocessableEntity, "validation_failed", editor.SaveBlockedMessage, verr.Fields)
	case errors.Is(err, editor.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
	case errors.Is(err, exports.ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "export not found", nil)
	case errors.Is(err, editor.ErrExportNotArchived):
		respond.Error(c, http.StatusGone, "export_not_archived", "export is no longer stored, export again", nil)
	case errors.As(err, &berr):
		if berr.Status == http.StatusNotFound {
			respond.Error(c, http.StatusNotFound, "not_found", "resume not found", nil)
			return
		}
		respond.Error(c, http.StatusBadGateway, "backend_error", backendMessage(berr), gin.H{"status": berr.Status})
	case errors.Is(err, backend.ErrNotConfigured):
		respond.Error(c, http.StatusBadGateway, "backend_error", "resume backend is not configured", nil)
	case errors.Is(err, pdf.ErrRasterizerUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "rasterizer_unavailable", "PDF export is unavailable on this server", nil)
	case errors.Is(err, render.ErrNoDocxGenerator):
		respond.Error(c, http.StatusUnprocessableEntity, "template_unsupported", err.Error(), nil)
	case errors.Is(err, editor.ErrConflict):
		respond.Error(c, http.StatusConflict, "conflict", "session changed concurrently, retry", nil)
	case isBadInput(err):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal", "Unexpected server error", nil)
	}
}

func isBadInput(err error) bool {
	for _, target := range badInput {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

// backendMessage prefers the "details" or "message" field of a JSON error
// body.
func backendMessage(err *backend.Error) string {
	var body struct {
		Details string `json:"details"`
		Message string `json:"message"`
		Detail  string `json:"detail"`
	}
	if json.Unmarshal([]byte(err.Body), &body) == nil {
		for _, msg := range []string{body.Details, body.Message, body.Detail} {
			if msg != "" {
				return msg
			}
		}
	}
	return "resume backend request failed"
}

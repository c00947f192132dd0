package backend

import (
	"errors"
	"fmt"
	"net/http"
)

// ErrNotConfigured is returned when no backend base URL is set.
var ErrNotConfigured = errors.New("backend not configured")

// Error is a non-2xx response from the backend.
type Error struct {
	Status int
	Body   string
}

func (e *Error) Error() string {
	body := e.Body
	if len(body) > 200 {
		body = body[:200]
	}
	return fmt.Sprintf("backend status %d: %s", e.Status, body)
}

// IsNotFound reports whether err is a backend 404.
func IsNotFound(err error) bool {
	var be *Error
	return errors.As(err, &be) && be.Status == http.StatusNotFound
}

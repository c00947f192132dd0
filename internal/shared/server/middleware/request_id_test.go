package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"resume-builder/internal/backend"
)

func TestRequestIDKeepsValidInboundID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	var fromCtx string
	r.GET("/x", func(c *gin.Context) {
		fromCtx = RequestIDFromContext(c)
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "trace-abc")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	if w.Header().Get("X-Request-Id") != "trace-abc" || fromCtx != "trace-abc" {
		t.Fatalf("got header %q ctx %q", w.Header().Get("X-Request-Id"), fromCtx)
	}
}

func TestRequestIDReplacesInvalidInboundID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	for _, inbound := range []string{"", "has space", strings.Repeat("a", 129)} {
		r := gin.New()
		r.Use(RequestID())
		r.GET("/x", func(c *gin.Context) { c.Status(http.StatusNoContent) })

		req := httptest.NewRequest(http.MethodGet, "/x", nil)
		if inbound != "" {
			req.Header.Set("X-Request-Id", inbound)
		}
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)

		if _, err := uuid.Parse(w.Header().Get("X-Request-Id")); err != nil {
			t.Fatalf("inbound %q: expected generated uuid, got %q", inbound, w.Header().Get("X-Request-Id"))
		}
	}
}

func TestRequestIDReachesBackendCalls(t *testing.T) {
	var forwarded string
	api := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		forwarded = r.Header.Get("X-Request-Id")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer api.Close()

	gin.SetMode(gin.TestMode)
	client := backend.New(api.URL, 0)
	r := gin.New()
	r.Use(RequestID())
	r.GET("/x", func(c *gin.Context) {
		if _, err := client.ListResumes(c.Request.Context()); err != nil {
			t.Errorf("list: %v", err)
		}
		c.Status(http.StatusNoContent)
	})

	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-7")
	r.ServeHTTP(httptest.NewRecorder(), req)
	if forwarded != "req-7" {
		t.Fatalf("forwarded id = %q", forwarded)
	}
}

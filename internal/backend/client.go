package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2"

	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
)

const maxErrorBody = 4 << 10

// Client talks to the resume REST backend. The caller's bearer token is
// taken from the request context and forwarded on every call.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// New returns a client rooted at baseURL.
func New(baseURL string, timeout time.Duration) *Client {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
	}
}

// WithHTTPClient swaps the transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

type tokenKey struct{}

// WithToken attaches the caller's bearer token to ctx.
func WithToken(ctx context.Context, token string) context.Context {
	return context.WithValue(ctx, tokenKey{}, token)
}

// TokenFromContext returns the bearer token stored by WithToken.
func TokenFromContext(ctx context.Context) string {
	token, _ := ctx.Value(tokenKey{}).(string)
	return token
}

type requestIDKey struct{}

// WithRequestID attaches the inbound request id to ctx so backend calls
// carry it as X-Request-Id.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

func requestIDFrom(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

func (c *Client) clientFor(ctx context.Context) *http.Client {
	token := TokenFromContext(ctx)
	if token == "" {
		return c.httpClient
	}
	src := oauth2.StaticTokenSource(&oauth2.Token{AccessToken: token, TokenType: "Bearer"})
	return &http.Client{
		Transport: &oauth2.Transport{Source: src, Base: c.httpClient.Transport},
		Timeout:   c.httpClient.Timeout,
	}
}

// ID is a backend identifier that may arrive as a JSON number or string.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("backend id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

// Summary is one entry of the resume list. Raw keeps the full payload so
// it can be normalized.
type Summary struct {
	ID         ID              `json:"id"`
	Name       string          `json:"name"`
	Profession string          `json:"profession,omitempty"`
	IsMaster   bool            `json:"is_master"`
	UpdatedAt  string          `json:"updated_at,omitempty"`
	Raw        json.RawMessage `json:"-"`
}

// GenerateRequest asks the backend for a resume tailored to a job.
type GenerateRequest struct {
	JobDescription string `json:"job_description"`
	Template       string `json:"template,omitempty"`
	ResumeID       string `json:"resume_id,omitempty"`
}

// ListResumes returns the caller's resumes.
func (c *Client) ListResumes(ctx context.Context) ([]Summary, error) {
	body, err := c.do(ctx, http.MethodGet, "/resumes/", nil, "", nil)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode resume list: %w", err)
	}
	out := make([]Summary, 0, len(raw))
	for _, item := range raw {
		var s Summary
		if err := json.Unmarshal(item, &s); err != nil {
			return nil, fmt.Errorf("decode resume list item: %w", err)
		}
		s.Raw = item
		out = append(out, s)
	}
	return out, nil
}

// GetResume fetches one resume payload as the backend stores it.
func (c *Client) GetResume(ctx context.Context, id string) (json.RawMessage, error) {
	return c.do(ctx, http.MethodGet, "/resumes/"+url.PathEscape(id)+"/", nil, "", nil)
}

// DeleteResume removes a resume.
func (c *Client) DeleteResume(ctx context.Context, id string) error {
	_, err := c.do(ctx, http.MethodDelete, "/resumes/"+url.PathEscape(id)+"/", nil, "", nil)
	return err
}

// SaveMaster stores doc as the caller's master resume. The idempotency key
// lets the backend drop replays of the same revision.
func (c *Client) SaveMaster(ctx context.Context, doc model.ResumeDocument, idempotencyKey string) (json.RawMessage, error) {
	payload, err := json.Marshal(struct {
		model.ResumeDocument
		IsMaster bool `json:"is_master"`
	}{ResumeDocument: doc.WithDefaults(), IsMaster: true})
	if err != nil {
		return nil, err
	}
	headers := map[string]string{}
	if idempotencyKey != "" {
		headers["Idempotency-Key"] = idempotencyKey
	}
	return c.do(ctx, http.MethodPost, "/resume/from-object/", bytes.NewReader(payload), "application/json", headers)
}

// Generate asks the backend to produce a resume for a job description.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (json.RawMessage, error) {
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/resume/generate/", bytes.NewReader(payload), "application/json", nil)
}

// UploadResume posts a resume file for parsing and returns the parsed payload.
func (c *Client) UploadResume(ctx context.Context, fileName string, file io.Reader) (json.RawMessage, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		return nil, err
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}
	return c.do(ctx, http.MethodPost, "/resumes/", &buf, mw.FormDataContentType(), nil)
}

func (c *Client) do(ctx context.Context, method, path string, body io.Reader, contentType string, headers map[string]string) (json.RawMessage, error) {
	if c == nil || c.baseURL == "" {
		return nil, ErrNotConfigured
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if id := requestIDFrom(ctx); id != "" {
		req.Header.Set("X-Request-Id", id)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	start := time.Now()
	resp, err := c.clientFor(ctx).Do(req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || strings.Contains(err.Error(), "Client.Timeout") {
			return nil, fmt.Errorf("backend request timeout: %w", err)
		}
		return nil, fmt.Errorf("backend request: %w", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("backend read: %w", err)
	}
	telemetry.Debug("backend.call", map[string]any{
		"method":      method,
		"path":        path,
		"status":      resp.StatusCode,
		"duration_ms": time.Since(start).Milliseconds(),
	})
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		if len(data) > maxErrorBody {
			data = data[:maxErrorBody]
		}
		return nil, &Error{Status: resp.StatusCode, Body: string(data)}
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, nil
	}
	return json.RawMessage(data), nil
}

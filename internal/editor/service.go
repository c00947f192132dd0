package editor

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/singleflight"

	"resume-builder/internal/backend"
	"resume-builder/internal/exports"
	"resume-builder/internal/extract"
	"resume-builder/internal/shared/metrics"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/internal/shared/util"
	"resume-builder/resume/layout"
	"resume-builder/resume/model"
	"resume-builder/resume/normalize"
	"resume-builder/resume/pdf"
	"resume-builder/resume/render"
)

var (
	// ErrInvalidFormat indicates an export format other than pdf or docx.
	ErrInvalidFormat = errors.New("invalid export format")
	// ErrExportNotArchived indicates an export whose bytes were not kept.
	ErrExportNotArchived = errors.New("export not archived")
)

// Backend is the part of the REST backend the editor uses.
type Backend interface {
	GetResume(ctx context.Context, id string) (json.RawMessage, error)
	SaveMaster(ctx context.Context, doc model.ResumeDocument, idempotencyKey string) (json.RawMessage, error)
	Generate(ctx context.Context, req backend.GenerateRequest) (json.RawMessage, error)
	UploadResume(ctx context.Context, fileName string, file io.Reader) (json.RawMessage, error)
}

// PDFExporter produces PDF files from documents.
type PDFExporter interface {
	ExportPDF(ctx context.Context, doc model.ResumeDocument, t model.Template) (pdf.File, error)
}

// Export is a finished download.
type Export struct {
	FileName    string
	ContentType string
	Data        []byte
}

// SaveResult is the backend's answer to a save-as-master.
type SaveResult struct {
	SessionID string          `json:"sessionId"`
	Revision  int64           `json:"revision"`
	Resume    json.RawMessage `json:"resume,omitempty"`
	Replayed  bool            `json:"replayed"`
}

// Deps wires a Service. Hub, History and Archive are optional.
type Deps struct {
	Store           Store
	Hub             Hub
	Backend         Backend
	PDF             PDFExporter
	History         exports.Repo
	Archive         object.ObjectStore
	DefaultTemplate model.Template
	// WorkTimeout bounds a save or export shared by concurrent callers.
	WorkTimeout     time.Duration
}

const defaultWorkTimeout = 2 * time.Minute

// Service runs editor operations against stored sessions.
type Service struct {
	store           Store
	hub             Hub
	backend         Backend
	pdf             PDFExporter
	history         exports.Repo
	archive         object.ObjectStore
	defaultTemplate model.Template

	workTimeout time.Duration
	exportGroup singleflight.Group
	saveGroup   singleflight.Group
}

// NewService constructs a Service.
func NewService(deps Deps) *Service {
	t := deps.DefaultTemplate
	if t == "" {
		t = model.TemplateClassic
	}
	workTimeout := deps.WorkTimeout
	if workTimeout <= 0 {
		workTimeout = defaultWorkTimeout
	}
	return &Service{
		store:           deps.Store,
		hub:             deps.Hub,
		backend:         deps.Backend,
		pdf:             deps.PDF,
		history:         deps.History,
		archive:         deps.Archive,
		defaultTemplate: t,
		workTimeout:     workTimeout,
	}
}

// ParseFormat maps "pdf" or "docx" to the export format.
func ParseFormat(raw string) (string, error) {
	switch f := strings.ToLower(strings.TrimSpace(raw)); f {
	case model.FormatPDF, model.FormatDOCX:
		return f, nil
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidFormat, raw)
	}
}

func (s *Service) templateOr(t model.Template) model.Template {
	if t == "" {
		return s.defaultTemplate
	}
	return t
}

// Create opens a session on doc.
func (s *Service) Create(ctx context.Context, doc model.ResumeDocument, t model.Template) (Session, error) {
	session := NewSession(doc, s.templateOr(t))
	if err := s.store.Create(ctx, session); err != nil {
		return Session{}, err
	}
	telemetry.Info("session.created", map[string]any{"session_id": session.ID, "template": string(session.Template)})
	return session, nil
}

// CreateFromPayload normalizes raw and opens a session. A nil payload opens
// an empty document.
func (s *Service) CreateFromPayload(ctx context.Context, raw any, t model.Template) (Session, error) {
	return s.Create(ctx, normalize.Normalize(raw), t)
}

// CreateFromResume fetches a stored resume and opens a session on it.
func (s *Service) CreateFromResume(ctx context.Context, resumeID string, t model.Template) (Session, error) {
	raw, err := s.requireBackend().GetResume(ctx, resumeID)
	if err != nil {
		return Session{}, err
	}
	session := NewSession(normalize.NormalizeJSON(raw), s.templateOr(t))
	session.SourceResumeID = resumeID
	if err := s.store.Create(ctx, session); err != nil {
		return Session{}, err
	}
	telemetry.Info("session.created", map[string]any{"session_id": session.ID, "resume_id": resumeID})
	return session, nil
}

// CreateFromUpload forwards an uploaded PDF or DOCX to the backend parser
// and opens a session on the parsed result.
func (s *Service) CreateFromUpload(ctx context.Context, fileName, mimeType string, data []byte, t model.Template) (Session, error) {
	switch detected := extract.DetectType(mimeType, fileName, data); detected {
	case extract.MimePDF, extract.MimeDOCX:
	default:
		return Session{}, fmt.Errorf("%w: %s", extract.ErrUnsupportedType, detected)
	}
	raw, err := s.requireBackend().UploadResume(ctx, fileName, bytes.NewReader(data))
	if err != nil {
		return Session{}, err
	}
	return s.Create(ctx, normalize.NormalizeJSON(raw), t)
}

// CreateFromJob asks the backend for a resume tailored to a job
// description and opens a session on it.
func (s *Service) CreateFromJob(ctx context.Context, jobDescription, resumeID string, t model.Template) (Session, error) {
	if strings.TrimSpace(jobDescription) == "" {
		return Session{}, fmt.Errorf("%w: job description", ErrIncompleteItem)
	}
	t = s.templateOr(t)
	raw, err := s.requireBackend().Generate(ctx, backend.GenerateRequest{
		JobDescription: jobDescription,
		Template:       t.String(),
		ResumeID:       resumeID,
	})
	if err != nil {
		return Session{}, err
	}
	return s.Create(ctx, normalize.NormalizeJSON(raw), t)
}

// Get returns the session.
func (s *Service) Get(ctx context.Context, id string) (Session, error) {
	return s.store.Get(ctx, id)
}

// Delete discards the session.
func (s *Service) Delete(ctx context.Context, id string) error {
	return s.store.Delete(ctx, id)
}

func (s *Service) mutate(ctx context.Context, id string, fn func(model.ResumeDocument) (model.ResumeDocument, error)) (Session, error) {
	session, err := s.store.Update(ctx, id, func(current *Session) error {
		next, err := fn(current.Document)
		if err != nil {
			return err
		}
		current.Document = next
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	s.publish(ctx, session)
	return session, nil
}

// UpdatePersonalField sets one personal information field.
func (s *Service) UpdatePersonalField(ctx context.Context, id, field, value string) (Session, error) {
	return s.mutate(ctx, id, func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		return UpdatePersonalField(doc, field, value)
	})
}

// UpdateSummary replaces the summary.
func (s *Service) UpdateSummary(ctx context.Context, id, text string) (Session, error) {
	return s.mutate(ctx, id, func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		return UpdateSummary(doc, text), nil
	})
}

// UpdateSectionArray replaces a list section.
func (s *Service) UpdateSectionArray(ctx context.Context, id string, section model.Section, items []any) (Session, error) {
	return s.mutate(ctx, id, func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		return UpdateSectionArray(doc, section, items)
	})
}

// AddItem appends an item to a list section.
func (s *Service) AddItem(ctx context.Context, id string, section model.Section, item any) (Session, error) {
	return s.mutate(ctx, id, func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		return AddItem(doc, section, item)
	})
}

// UpdateItemField sets one field of one item.
func (s *Service) UpdateItemField(ctx context.Context, id string, section model.Section, index int, field, value string) (Session, error) {
	return s.mutate(ctx, id, func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		return UpdateItemField(doc, section, index, field, value)
	})
}

// RemoveItem drops one item.
func (s *Service) RemoveItem(ctx context.Context, id string, section model.Section, index int) (Session, error) {
	return s.mutate(ctx, id, func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		return RemoveItem(doc, section, index)
	})
}

// AddResponsibility appends a bullet to an experience entry.
func (s *Service) AddResponsibility(ctx context.Context, id string, exp int, text string) (Session, error) {
	return s.mutate(ctx, id, func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		return AddResponsibility(doc, exp, text)
	})
}

// UpdateResponsibility rewrites a bullet.
func (s *Service) UpdateResponsibility(ctx context.Context, id string, exp, i int, text string) (Session, error) {
	return s.mutate(ctx, id, func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		return UpdateResponsibility(doc, exp, i, text)
	})
}

// RemoveResponsibility drops a bullet.
func (s *Service) RemoveResponsibility(ctx context.Context, id string, exp, i int) (Session, error) {
	return s.mutate(ctx, id, func(doc model.ResumeDocument) (model.ResumeDocument, error) {
		return RemoveResponsibility(doc, exp, i)
	})
}

// SelectTemplate switches the session's template. The document is not
// touched.
func (s *Service) SelectTemplate(ctx context.Context, id string, t model.Template) (Session, error) {
	if _, err := layout.ThemeFor(t); err != nil {
		return Session{}, err
	}
	session, err := s.store.Update(ctx, id, func(current *Session) error {
		current.Template = t
		return nil
	})
	if err != nil {
		return Session{}, err
	}
	s.publish(ctx, session)
	return session, nil
}

// Preview renders the session in its current template.
func (s *Service) Preview(ctx context.Context, id string) (Session, *layout.Tree, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return Session{}, nil, err
	}
	tree, err := layout.Render(session.Document, session.Template)
	if err != nil {
		return Session{}, nil, err
	}
	return session, tree, nil
}

// PreviewEventFor renders the preview pushed to subscribers for session.
func PreviewEventFor(session Session) (PreviewEvent, error) {
	tree, err := layout.Render(session.Document, session.Template)
	if err != nil {
		return PreviewEvent{}, err
	}
	fragment, err := layout.RenderHTML(tree)
	if err != nil {
		return PreviewEvent{}, err
	}
	return PreviewEvent{
		SessionID: session.ID,
		Revision:  session.Revision,
		Template:  session.Template.String(),
		HTML:      fragment,
	}, nil
}

func (s *Service) publish(ctx context.Context, session Session) {
	if s.hub == nil {
		return
	}
	ev, err := PreviewEventFor(session)
	if err == nil {
		err = s.hub.Publish(ctx, ev)
	}
	if err == nil {
		metrics.IncPreviewPushed()
		return
	}
	telemetry.Warn("preview.publish_failed", map[string]any{"session_id": session.ID, "error": err.Error()})
}

// Subscribe streams preview events of a session. The returned event is
// the current state; it is read after the subscription is registered, so
// events on the channel may repeat it and should be skipped when their
// revision is not newer.
func (s *Service) Subscribe(ctx context.Context, id string) (PreviewEvent, <-chan PreviewEvent, func(), error) {
	if s.hub == nil {
		return PreviewEvent{}, nil, nil, errors.New("preview hub not configured")
	}
	events, cancel, err := s.hub.Subscribe(ctx, id)
	if err != nil {
		return PreviewEvent{}, nil, nil, err
	}
	session, err := s.store.Get(ctx, id)
	if err != nil {
		cancel()
		return PreviewEvent{}, nil, nil, err
	}
	current, err := PreviewEventFor(session)
	if err != nil {
		cancel()
		return PreviewEvent{}, nil, nil, err
	}
	return current, events, cancel, nil
}

// Validate checks the session document for a save.
func (s *Service) Validate(ctx context.Context, id string) error {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return err
	}
	return Validate(session.Document)
}

// SaveAsMaster posts the session document as the master resume. A
// revision is saved at most once: concurrent calls share one request and
// later calls for the same revision replay the result kept on the session.
func (s *Service) SaveAsMaster(ctx context.Context, id string) (SaveResult, error) {
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return SaveResult{}, err
	}
	if err := Validate(session.Document); err != nil {
		return SaveResult{}, err
	}
	if result, ok := session.savedAt(session.Revision); ok {
		result.Replayed = true
		return result, nil
	}
	key := session.ID + ":" + strconv.FormatInt(session.Revision, 10)

	ch := s.saveGroup.DoChan(key, func() (any, error) {
		work, cancel := s.detach(ctx)
		defer cancel()
		if current, err := s.store.Get(work, session.ID); err == nil {
			if result, ok := current.savedAt(session.Revision); ok {
				result.Replayed = true
				return result, nil
			}
		}
		raw, err := s.requireBackend().SaveMaster(work, session.Document, key)
		if err != nil {
			return nil, err
		}
		result := SaveResult{SessionID: session.ID, Revision: session.Revision, Resume: raw}
		if err := s.store.RecordSave(work, session.ID, result); err != nil && !errors.Is(err, ErrNotFound) {
			telemetry.Warn("session.save_record_failed", map[string]any{"session_id": session.ID, "error": err.Error()})
		}
		metrics.IncMasterSaved()
		telemetry.Info("session.saved", map[string]any{"session_id": session.ID, "revision": session.Revision})
		return result, nil
	})
	res, err := await(ctx, ch)
	if err != nil {
		return SaveResult{}, err
	}
	result := res.Val.(SaveResult)
	result.Replayed = result.Replayed || res.Shared
	return result, nil
}

// detach returns a context for work shared by several callers. It keeps
// the values of ctx but not its cancellation.
func (s *Service) detach(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(ctx), s.workTimeout)
}

// await waits for a shared call or for the caller's own ctx.
func await(ctx context.Context, ch <-chan singleflight.Result) (singleflight.Result, error) {
	select {
	case <-ctx.Done():
		return singleflight.Result{}, ctx.Err()
	case res := <-ch:
		return res, res.Err
	}
}

// ExportSession exports the session in its current template. Concurrent
// requests for the same revision, template and format share one render.
func (s *Service) ExportSession(ctx context.Context, id, format string) (Export, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return Export{}, err
	}
	session, err := s.store.Get(ctx, id)
	if err != nil {
		return Export{}, err
	}
	key := strings.Join([]string{session.ID, strconv.FormatInt(session.Revision, 10), session.Template.String(), format}, ":")
	ch := s.exportGroup.DoChan(key, func() (any, error) {
		work, cancel := s.detach(ctx)
		defer cancel()
		out, err := s.Export(work, session.Document, session.Template, format)
		if err != nil {
			return nil, err
		}
		s.record(work, session, format, out)
		return out, nil
	})
	res, err := await(ctx, ch)
	if err != nil {
		return Export{}, err
	}
	return res.Val.(Export), nil
}

// Export renders doc in template t as format without a session.
func (s *Service) Export(ctx context.Context, doc model.ResumeDocument, t model.Template, format string) (Export, error) {
	format, err := ParseFormat(format)
	if err != nil {
		return Export{}, err
	}
	t = s.templateOr(t)

	metrics.IncExportStarted(format)
	start := time.Now()
	out, err := s.export(ctx, doc, t, format)
	metrics.ObserveExportDuration(format, time.Since(start))
	if err != nil {
		metrics.IncExportFailed(format)
		return Export{}, err
	}
	metrics.IncExportCompleted(format)
	return out, nil
}

func (s *Service) export(ctx context.Context, doc model.ResumeDocument, t model.Template, format string) (Export, error) {
	switch format {
	case model.FormatDOCX:
		data, err := render.RenderDocx(doc, t)
		if err != nil {
			return Export{}, err
		}
		return Export{
			FileName:    model.ExportFileName(doc.PersonalInformation, t, model.FormatDOCX),
			ContentType: render.ContentType,
			Data:        data,
		}, nil
	default:
		if s.pdf == nil {
			return Export{}, pdf.ErrRasterizerUnavailable
		}
		file, err := s.pdf.ExportPDF(ctx, doc, t)
		if err != nil {
			if errors.Is(err, pdf.ErrRasterizerUnavailable) {
				telemetry.Error("export.pdf.unavailable", map[string]any{"template": t.String(), "error": err.Error()})
			}
			return Export{}, err
		}
		return Export{FileName: file.Name, ContentType: file.ContentType, Data: file.Bytes}, nil
	}
}

func (s *Service) record(ctx context.Context, session Session, format string, out Export) {
	if s.history == nil {
		return
	}
	record := exports.NewRecord(session.ID, session.Revision, session.Template.String(), format, out.FileName, out.Data)
	if s.archive != nil {
		key, err := archiveKey(session.ID, record.ID, out.FileName)
		if err == nil {
			_, err = s.archive.SaveWithKey(ctx, key, out.ContentType, bytes.NewReader(out.Data))
		}
		if err != nil {
			telemetry.Warn("export.archive_failed", map[string]any{"session_id": session.ID, "error": err.Error()})
		} else {
			record.StorageKey = key
		}
	}
	if err := s.history.Create(ctx, record); err != nil {
		telemetry.Warn("export.record_failed", map[string]any{"session_id": session.ID, "error": err.Error()})
	}
}

func archiveKey(sessionID string, exportID uuid.UUID, fileName string) (string, error) {
	name, err := util.SanitizeFileName(fileName)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("sessions/%s/%s_%s", sessionID, exportID, name), nil
}

// OpenExport reopens an archived export of the session.
func (s *Service) OpenExport(ctx context.Context, sessionID, exportID string) (Export, error) {
	if _, err := s.store.Get(ctx, sessionID); err != nil {
		return Export{}, err
	}
	id, err := uuid.Parse(exportID)
	if err != nil || s.history == nil {
		return Export{}, exports.ErrNotFound
	}
	record, err := s.history.Get(ctx, id)
	if err == nil && record.SessionID != sessionID {
		return Export{}, exports.ErrNotFound
	}
	if err != nil {
		return Export{}, err
	}
	if !record.Archived() || s.archive == nil {
		return Export{}, ErrExportNotArchived
	}
	rc, err := s.archive.Open(ctx, record.StorageKey)
	if errors.Is(err, object.ErrNotFound) {
		return Export{}, ErrExportNotArchived
	}
	if err != nil {
		return Export{}, err
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return Export{}, err
	}
	return Export{FileName: record.FileName, ContentType: contentTypeFor(record.Format), Data: data}, nil
}

func contentTypeFor(format string) string {
	if format == model.FormatDOCX {
		return render.ContentType
	}
	return pdf.ContentType
}

// History lists the session's exports, newest first.
func (s *Service) History(ctx context.Context, id string, limit int) ([]exports.Record, error) {
	if _, err := s.store.Get(ctx, id); err != nil {
		return nil, err
	}
	if s.history == nil {
		return []exports.Record{}, nil
	}
	return s.history.ListBySession(ctx, id, limit)
}

type unconfiguredBackend struct{}

func (unconfiguredBackend) GetResume(context.Context, string) (json.RawMessage, error) {
	return nil, backend.ErrNotConfigured
}

func (unconfiguredBackend) SaveMaster(context.Context, model.ResumeDocument, string) (json.RawMessage, error) {
	return nil, backend.ErrNotConfigured
}

func (unconfiguredBackend) Generate(context.Context, backend.GenerateRequest) (json.RawMessage, error) {
	return nil, backend.ErrNotConfigured
}

func (unconfiguredBackend) UploadResume(context.Context, string, io.Reader) (json.RawMessage, error) {
	return nil, backend.ErrNotConfigured
}

func (s *Service) requireBackend() Backend {
	if s.backend == nil {
		return unconfiguredBackend{}
	}
	return s.backend
}

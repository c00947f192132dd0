package editor

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"resume-builder/internal/backend"
	"resume-builder/internal/exports"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/resume/model"
	"resume-builder/resume/pdf"
	"resume-builder/resume/pdf/pdftest"
	"resume-builder/resume/render"
)

type memArchive struct {
	mu      sync.Mutex
	objects map[string][]byte
	fail    bool
}

func (m *memArchive) SaveWithKey(_ context.Context, key, _ string, r io.Reader) (int64, error) {
	if m.fail {
		return 0, errors.New("disk full")
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.objects[key] = data
	return int64(len(data)), nil
}

func (m *memArchive) Open(_ context.Context, key string) (io.ReadCloser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	data, ok := m.objects[key]
	if !ok {
		return nil, object.ErrNotFound
	}
	return io.NopCloser(strings.NewReader(string(data))), nil
}

type fakeBackend struct {
	saves    atomic.Int32
	saveKeys []string
	mu       sync.Mutex
	release  chan struct{}
	resume   json.RawMessage
	uploaded string
	job      backend.GenerateRequest
}

func (f *fakeBackend) GetResume(_ context.Context, id string) (json.RawMessage, error) {
	if id == "missing" {
		return nil, &backend.Error{Status: 404, Body: "not found"}
	}
	return f.resume, nil
}

func (f *fakeBackend) SaveMaster(_ context.Context, _ model.ResumeDocument, key string) (json.RawMessage, error) {
	f.saves.Add(1)
	if f.release != nil {
		<-f.release
	}
	f.mu.Lock()
	f.saveKeys = append(f.saveKeys, key)
	f.mu.Unlock()
	return json.RawMessage(`{"id":1}`), nil
}

func (f *fakeBackend) Generate(_ context.Context, req backend.GenerateRequest) (json.RawMessage, error) {
	f.job = req
	return f.resume, nil
}

func (f *fakeBackend) UploadResume(_ context.Context, fileName string, file io.Reader) (json.RawMessage, error) {
	data, _ := io.ReadAll(file)
	f.uploaded = fileName + ":" + string(data)
	return f.resume, nil
}

func newTestService(t *testing.T) (*Service, *fakeBackend, *pdftest.Rasterizer, *exports.MemoryRepo) {
	t.Helper()
	fb := &fakeBackend{resume: json.RawMessage(`{"personal_information":{"name":"Grace Hopper","profession":"Admiral"},"skills":"COBOL • Go"}`)}
	raster := &pdftest.Rasterizer{}
	history := exports.NewMemoryRepo()
	svc := NewService(Deps{
		Store:   NewMemoryStore(time.Hour),
		Hub:     NewMemoryHub(),
		Backend: fb,
		PDF:     pdf.NewExporter(raster),
		History: history,
	})
	return svc, fb, raster, history
}

func TestServiceCreateFromResumeNormalizes(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	session, err := svc.CreateFromResume(ctx, "12", "")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if session.Document.PersonalInformation.Name != "Grace Hopper" || session.SourceResumeID != "12" {
		t.Fatalf("unexpected session %+v", session)
	}
	if session.Template != model.TemplateClassic {
		t.Fatalf("template = %q, want default", session.Template)
	}
	if len(session.Document.Skills) != 2 {
		t.Fatalf("skills = %v", session.Document.Skills)
	}
	if _, err := svc.CreateFromResume(ctx, "missing", ""); !backend.IsNotFound(err) {
		t.Fatalf("expected backend 404, got %v", err)
	}
}

func TestServiceCreateFromUploadRejectsUnknownTypes(t *testing.T) {
	svc, fb, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateFromUpload(ctx, "notes.txt", "text/plain", []byte("hello"), ""); err == nil {
		t.Fatalf("expected unsupported type error")
	}
	if fb.uploaded != "" {
		t.Fatalf("unsupported file forwarded to backend")
	}
	session, err := svc.CreateFromUpload(ctx, "cv.pdf", "application/pdf", pdftest.Document("cv"), model.TemplateModern)
	if err != nil {
		t.Fatalf("upload: %v", err)
	}
	if !strings.HasPrefix(fb.uploaded, "cv.pdf:%PDF") || session.Template != model.TemplateModern {
		t.Fatalf("unexpected upload %q / %q", fb.uploaded, session.Template)
	}
}

func TestServiceCreateFromJob(t *testing.T) {
	svc, fb, _, _ := newTestService(t)
	ctx := context.Background()
	if _, err := svc.CreateFromJob(ctx, " ", "", ""); !errors.Is(err, ErrIncompleteItem) {
		t.Fatalf("expected error for blank job description, got %v", err)
	}
	if _, err := svc.CreateFromJob(ctx, "Go engineer", "7", model.TemplateCreative); err != nil {
		t.Fatalf("generate: %v", err)
	}
	if fb.job.JobDescription != "Go engineer" || fb.job.Template != "creative" || fb.job.ResumeID != "7" {
		t.Fatalf("unexpected request %+v", fb.job)
	}
}

func TestServiceMutationsPublishPreview(t *testing.T) {
	svc, _, _, _ := newTestService(t)
	ctx := context.Background()
	session, err := svc.Create(ctx, sampleDoc(), model.TemplateClassic)
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	current, events, cancel, err := svc.Subscribe(ctx, session.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	if current.Revision != 1 || !strings.Contains(current.HTML, "Ada Lovelace") {
		t.Fatalf("unexpected initial event %+v", current)
	}

	if _, err := svc.UpdateSummary(ctx, session.ID, "Poet of science"); err != nil {
		t.Fatalf("summary: %v", err)
	}
	select {
	case ev := <-events:
		if ev.Revision != 2 || !strings.Contains(ev.HTML, "Poet of science") {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("timed out waiting for preview")
	}

	updated, err := svc.SelectTemplate(ctx, session.ID, model.TemplateModern)
	if err != nil {
		t.Fatalf("select: %v", err)
	}
	if updated.Template != model.TemplateModern || updated.Document.Summary != "Poet of science" {
		t.Fatalf("unexpected session %+v", updated)
	}
	if _, err := svc.SelectTemplate(ctx, session.ID, model.Template("neon")); !errors.Is(err, model.ErrInvalidTemplate) {
		t.Fatalf("expected ErrInvalidTemplate, got %v", err)
	}
	if _, err := svc.AddItem(ctx, session.ID, model.SectionAwards, map[string]any{}); !errors.Is(err, ErrIncompleteItem) {
		t.Fatalf("expected ErrIncompleteItem, got %v", err)
	}
	if _, err := svc.UpdateSummary(ctx, "nope", "x"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestServiceSaveAsMasterBlocksInvalid(t *testing.T) {
	svc, fb, _, _ := newTestService(t)
	ctx := context.Background()
	session, _ := svc.Create(ctx, model.Empty(), "")
	_, err := svc.SaveAsMaster(ctx, session.ID)
	var verr *ValidationError
	if !errors.As(err, &verr) || len(verr.Fields) == 0 {
		t.Fatalf("expected validation error, got %v", err)
	}
	if fb.saves.Load() != 0 {
		t.Fatalf("invalid document posted to backend")
	}
}

func TestServiceSaveAsMasterOncePerRevision(t *testing.T) {
	svc, fb, _, _ := newTestService(t)
	fb.release = make(chan struct{})
	ctx := context.Background()
	session, _ := svc.Create(ctx, sampleDoc(), "")

	var wg sync.WaitGroup
	results := make([]SaveResult, 5)
	errs := make([]error, 5)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], errs[i] = svc.SaveAsMaster(ctx, session.ID)
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(fb.release)
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("save %d: %v", i, err)
		}
	}
	if fb.saves.Load() != 1 {
		t.Fatalf("backend saves = %d, want 1", fb.saves.Load())
	}
	again, err := svc.SaveAsMaster(ctx, session.ID)
	if err != nil || !again.Replayed || fb.saves.Load() != 1 {
		t.Fatalf("expected replay without a second post, got %+v %v (saves=%d)", again, err, fb.saves.Load())
	}
	if fb.saveKeys[0] != session.ID+":1" {
		t.Fatalf("idempotency key = %q", fb.saveKeys[0])
	}

	if _, err := svc.UpdateSummary(ctx, session.ID, "changed"); err != nil {
		t.Fatalf("summary: %v", err)
	}
	if _, err := svc.SaveAsMaster(ctx, session.ID); err != nil {
		t.Fatalf("save new revision: %v", err)
	}
	if fb.saves.Load() != 2 {
		t.Fatalf("expected a new revision to post again, saves=%d", fb.saves.Load())
	}
}

func TestServiceSaveReplayFollowsSessionStore(t *testing.T) {
	store := NewMemoryStore(0)
	fb := &fakeBackend{}
	first := NewService(Deps{Store: store, Backend: fb})
	second := NewService(Deps{Store: store, Backend: fb})
	ctx := context.Background()
	session, _ := first.Create(ctx, sampleDoc(), "")

	if _, err := first.SaveAsMaster(ctx, session.ID); err != nil {
		t.Fatalf("save: %v", err)
	}
	again, err := second.SaveAsMaster(ctx, session.ID)
	if err != nil || !again.Replayed || fb.saves.Load() != 1 {
		t.Fatalf("expected replay from another instance, got %+v %v (saves=%d)", again, err, fb.saves.Load())
	}

	if err := first.Delete(ctx, session.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := second.SaveAsMaster(ctx, session.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestServiceSharedSaveSurvivesFirstCallerCancel(t *testing.T) {
	svc, fb, _, _ := newTestService(t)
	fb.release = make(chan struct{})
	session, _ := svc.Create(context.Background(), sampleDoc(), "")

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.SaveAsMaster(firstCtx, session.ID)
		firstErr <- err
	}()
	waitFor(t, func() bool { return fb.saves.Load() == 1 })

	secondDone := make(chan SaveResult, 1)
	secondErr := make(chan error, 1)
	go func() {
		result, err := svc.SaveAsMaster(context.Background(), session.ID)
		secondDone <- result
		secondErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller: expected context.Canceled, got %v", err)
	}
	close(fb.release)
	result := <-secondDone
	if err := <-secondErr; err != nil {
		t.Fatalf("second caller: %v", err)
	}
	if string(result.Resume) != `{"id":1}` || fb.saves.Load() != 1 {
		t.Fatalf("unexpected result %+v (saves=%d)", result, fb.saves.Load())
	}
}

func TestServiceSharedExportSurvivesFirstCallerCancel(t *testing.T) {
	svc, _, raster, history := newTestService(t)
	raster.Block = make(chan struct{})
	session, _ := svc.Create(context.Background(), sampleDoc(), "")

	firstCtx, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.ExportSession(firstCtx, session.ID, "pdf")
		firstErr <- err
	}()
	waitFor(t, func() bool { return raster.Calls() == 1 })

	secondErr := make(chan error, 1)
	go func() {
		_, err := svc.ExportSession(context.Background(), session.ID, "pdf")
		secondErr <- err
	}()
	time.Sleep(50 * time.Millisecond)

	cancelFirst()
	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Fatalf("first caller: expected context.Canceled, got %v", err)
	}
	close(raster.Block)
	if err := <-secondErr; err != nil {
		t.Fatalf("second caller: %v", err)
	}
	if raster.Calls() != 1 {
		t.Fatalf("rasterizer calls = %d, want 1", raster.Calls())
	}
	records, _ := history.ListBySession(context.Background(), session.ID, 10)
	if len(records) != 1 {
		t.Fatalf("history = %d records, want 1", len(records))
	}
}

type racingStore struct {
	Store
	once  sync.Once
	after func()
}

func (r *racingStore) Get(ctx context.Context, id string) (Session, error) {
	session, err := r.Store.Get(ctx, id)
	if err == nil && r.after != nil {
		r.once.Do(r.after)
	}
	return session, err
}

func TestServiceSubscribeSeesChangeAfterSnapshot(t *testing.T) {
	store := &racingStore{Store: NewMemoryStore(0)}
	svc := NewService(Deps{Store: store, Hub: NewMemoryHub()})
	ctx := context.Background()
	session, _ := svc.Create(ctx, sampleDoc(), model.TemplateClassic)
	store.after = func() {
		if _, err := svc.UpdateSummary(ctx, session.ID, "Changed while subscribing"); err != nil {
			t.Errorf("summary: %v", err)
		}
	}

	current, events, cancel, err := svc.Subscribe(ctx, session.ID)
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer cancel()
	if current.Revision != 1 {
		t.Fatalf("snapshot revision = %d, want 1", current.Revision)
	}
	select {
	case ev := <-events:
		if ev.Revision != 2 || !strings.Contains(ev.HTML, "Changed while subscribing") {
			t.Fatalf("unexpected event %+v", ev)
		}
	case <-time.After(time.Second):
		t.Fatalf("change made after the snapshot was not delivered")
	}
}

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("condition not met in time")
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestServiceExportSessionRecordsHistory(t *testing.T) {
	svc, _, raster, history := newTestService(t)
	ctx := context.Background()
	session, _ := svc.Create(ctx, sampleDoc(), model.TemplateMinimal)

	docx, err := svc.ExportSession(ctx, session.ID, "DOCX")
	if err != nil {
		t.Fatalf("docx: %v", err)
	}
	if docx.FileName != "ada-lovelace-resume-minimal.docx" || docx.ContentType != render.ContentType {
		t.Fatalf("unexpected docx export %s %s", docx.FileName, docx.ContentType)
	}
	file, err := svc.ExportSession(ctx, session.ID, "pdf")
	if err != nil {
		t.Fatalf("pdf: %v", err)
	}
	if file.FileName != "ada-lovelace-resume.pdf" || raster.Calls() != 1 {
		t.Fatalf("unexpected pdf export %s (calls=%d)", file.FileName, raster.Calls())
	}
	records, err := history.ListBySession(ctx, session.ID, 10)
	if err != nil || len(records) != 2 {
		t.Fatalf("history = %v (%v)", records, err)
	}
	if _, err := svc.ExportSession(ctx, session.ID, "odt"); !errors.Is(err, ErrInvalidFormat) {
		t.Fatalf("expected ErrInvalidFormat, got %v", err)
	}
}

func TestServiceExportWithoutRasterizer(t *testing.T) {
	svc := NewService(Deps{Store: NewMemoryStore(0)})
	_, err := svc.Export(context.Background(), model.Empty(), model.TemplateClassic, "pdf")
	if !errors.Is(err, pdf.ErrRasterizerUnavailable) {
		t.Fatalf("expected ErrRasterizerUnavailable, got %v", err)
	}
	out, err := svc.Export(context.Background(), model.Empty(), "", "docx")
	if err != nil || out.FileName != "resume-classic.docx" {
		t.Fatalf("empty docx export: %+v %v", out.FileName, err)
	}
}

func TestServiceArchivesExports(t *testing.T) {
	archive := &memArchive{objects: map[string][]byte{}}
	history := exports.NewMemoryRepo()
	svc := NewService(Deps{Store: NewMemoryStore(0), History: history, Archive: archive})
	ctx := context.Background()
	session, _ := svc.Create(ctx, sampleDoc(), model.TemplateModern)

	out, err := svc.ExportSession(ctx, session.ID, "docx")
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	records, _ := history.ListBySession(ctx, session.ID, 1)
	if len(records) != 1 || !strings.HasPrefix(records[0].StorageKey, "sessions/"+session.ID+"/") {
		t.Fatalf("unexpected records %+v", records)
	}

	again, err := svc.OpenExport(ctx, session.ID, records[0].ID.String())
	if err != nil {
		t.Fatalf("OpenExport: %v", err)
	}
	if string(again.Data) != string(out.Data) || again.FileName != out.FileName || again.ContentType != render.ContentType {
		t.Fatalf("archived export differs: %s %s", again.FileName, again.ContentType)
	}

	if _, err := svc.OpenExport(ctx, session.ID, "nope"); !errors.Is(err, exports.ErrNotFound) {
		t.Fatalf("expected exports.ErrNotFound, got %v", err)
	}
	if _, err := svc.OpenExport(ctx, "missing", records[0].ID.String()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}

	delete(archive.objects, records[0].StorageKey)
	if _, err := svc.OpenExport(ctx, session.ID, records[0].ID.String()); !errors.Is(err, ErrExportNotArchived) {
		t.Fatalf("expected ErrExportNotArchived, got %v", err)
	}
}

func TestServiceArchiveFailureKeepsExport(t *testing.T) {
	history := exports.NewMemoryRepo()
	svc := NewService(Deps{Store: NewMemoryStore(0), History: history, Archive: &memArchive{fail: true}})
	ctx := context.Background()
	session, _ := svc.Create(ctx, sampleDoc(), model.TemplateClassic)

	if _, err := svc.ExportSession(ctx, session.ID, "docx"); err != nil {
		t.Fatalf("export should not fail on archive errors: %v", err)
	}
	records, _ := history.ListBySession(ctx, session.ID, 1)
	if len(records) != 1 || records[0].Archived() {
		t.Fatalf("expected unarchived record, got %+v", records)
	}
	if _, err := svc.OpenExport(ctx, session.ID, records[0].ID.String()); !errors.Is(err, ErrExportNotArchived) {
		t.Fatalf("expected ErrExportNotArchived, got %v", err)
	}
}

package exports

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
)

func TestNewRecordHashesContent(t *testing.T) {
	record := NewRecord("s1", 2, "classic", "pdf", "resume.pdf", []byte("abc"))
	if record.SizeBytes != 3 {
		t.Fatalf("size = %d, want 3", record.SizeBytes)
	}
	if record.SHA256 != "ba7816bf8f01cfea414140de5dae2223b00361a396177a9cb410ff61f20015ad" {
		t.Fatalf("unexpected sha256 %s", record.SHA256)
	}
	if record.ID == uuid.Nil || record.CreatedAt.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", record)
	}
}

func TestPGRepoCreate(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	repo := &PGRepo{DB: db}
	record := NewRecord("s1", 4, "modern", "docx", "ada-lovelace-resume-modern.docx", []byte("zip"))
	record.StorageKey = "sessions/s1/ada-lovelace-resume-modern.docx"

	mock.ExpectExec("INSERT INTO exports").
		WithArgs(
			record.ID,
			record.SessionID,
			record.Revision,
			record.Template,
			record.Format,
			record.FileName,
			record.SizeBytes,
			record.SHA256,
			record.StorageKey,
			sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(1, 1))

	if err := repo.Create(context.Background(), record); err != nil {
		t.Fatalf("Create: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoListBySession(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	id := uuid.New()
	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"id", "session_id", "revision", "template", "format", "file_name", "size_bytes", "sha256", "storage_key", "created_at"}).
		AddRow(id.String(), "s1", int64(3), "classic", "pdf", "resume.pdf", int64(1024), "abc", "", now)

	mock.ExpectQuery("SELECT id, session_id").
		WithArgs("s1", 20).
		WillReturnRows(rows)

	repo := &PGRepo{DB: db}
	records, err := repo.ListBySession(context.Background(), "s1", 0)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(records) != 1 || records[0].ID != id || records[0].FileName != "resume.pdf" {
		t.Fatalf("unexpected records %+v", records)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestPGRepoGet(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })

	id := uuid.New()
	columns := []string{"id", "session_id", "revision", "template", "format", "file_name", "size_bytes", "sha256", "storage_key", "created_at"}
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(id.String(), "s1", int64(2), "minimal", "docx", "resume.docx", int64(10), "abc", "sessions/s1/x_resume.docx", time.Now().UTC()))
	missing := uuid.New()
	mock.ExpectQuery("SELECT id, session_id").
		WithArgs(missing).
		WillReturnRows(sqlmock.NewRows(columns))

	repo := &PGRepo{DB: db}
	record, err := repo.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if !record.Archived() || record.StorageKey != "sessions/s1/x_resume.docx" {
		t.Fatalf("unexpected record %+v", record)
	}
	if _, err := repo.Get(context.Background(), missing); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("ExpectationsWereMet: %v", err)
	}
}

func TestMemoryRepoNewestFirst(t *testing.T) {
	repo := NewMemoryRepo()
	ctx := context.Background()
	older := NewRecord("s1", 1, "classic", "pdf", "a.pdf", nil)
	older.CreatedAt = time.Now().Add(-time.Minute)
	newer := NewRecord("s1", 2, "classic", "pdf", "b.pdf", nil)
	for _, r := range []Record{older, newer, NewRecord("s2", 1, "modern", "docx", "c.docx", nil)} {
		if err := repo.Create(ctx, r); err != nil {
			t.Fatalf("Create: %v", err)
		}
	}
	records, err := repo.ListBySession(ctx, "s1", 10)
	if err != nil {
		t.Fatalf("ListBySession: %v", err)
	}
	if len(records) != 2 || records[0].FileName != "b.pdf" {
		t.Fatalf("unexpected order %+v", records)
	}
	if got, err := repo.Get(ctx, newer.ID); err != nil || got.FileName != "b.pdf" {
		t.Fatalf("Get = %+v, %v", got, err)
	}
	if _, err := repo.Get(ctx, uuid.New()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if err := repo.Create(ctx, Record{}); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

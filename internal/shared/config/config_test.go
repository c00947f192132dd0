package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{"PORT", "ENV", "SESSION_TTL", "BACKEND_TIMEOUT", "PDF_TIMEOUT", "DEFAULT_TEMPLATE", "BACKEND_BASE_URL", "CORS_ALLOW_ORIGINS", "OBJECT_STORE", "S3_PREFIX"} {
		t.Setenv(key, "")
	}
	cfg := Load()
	if cfg.Port != "8080" || cfg.Env != "dev" {
		t.Fatalf("unexpected defaults %+v", cfg)
	}
	if cfg.SessionTTL != 2*time.Hour || cfg.BackendTimeout != 30*time.Second || cfg.PDFTimeout != 60*time.Second {
		t.Fatalf("unexpected durations %+v", cfg)
	}
	if cfg.DefaultTemplate != "classic" {
		t.Fatalf("DefaultTemplate = %q", cfg.DefaultTemplate)
	}
	if cfg.ObjectStoreType != "none" || cfg.S3Prefix != "exports" {
		t.Fatalf("unexpected object store defaults %+v", cfg)
	}
	if !cfg.IsDevLike() {
		t.Fatalf("expected dev to be dev-like")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("ENV", "prod")
	t.Setenv("SESSION_TTL", "15m")
	t.Setenv("PDF_TIMEOUT", "not-a-duration")
	t.Setenv("CORS_ALLOW_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("BACKEND_BASE_URL", "https://api.example/")
	t.Setenv("DEFAULT_TEMPLATE", "Modern")
	t.Setenv("OBJECT_STORE", "S3")
	t.Setenv("S3_BUCKET", "resume-exports")

	cfg := Load()
	if cfg.Env != "production" || cfg.IsDevLike() {
		t.Fatalf("expected production, got %q", cfg.Env)
	}
	if cfg.SessionTTL != 15*time.Minute {
		t.Fatalf("SessionTTL = %s", cfg.SessionTTL)
	}
	if cfg.PDFTimeout != 60*time.Second {
		t.Fatalf("expected invalid duration to fall back, got %s", cfg.PDFTimeout)
	}
	if want := []string{"https://a.example", "https://b.example"}; !reflect.DeepEqual(cfg.CORSAllowOrigin, want) {
		t.Fatalf("CORSAllowOrigin = %v", cfg.CORSAllowOrigin)
	}
	if cfg.BackendBaseURL != "https://api.example" {
		t.Fatalf("BackendBaseURL = %q", cfg.BackendBaseURL)
	}
	if cfg.DefaultTemplate != "modern" {
		t.Fatalf("DefaultTemplate = %q", cfg.DefaultTemplate)
	}
	if cfg.ObjectStoreType != "s3" || cfg.S3Bucket != "resume-exports" {
		t.Fatalf("unexpected object store %+v", cfg)
	}
}

func TestLoadEnvFilesKeepsExistingValues(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	if err := os.WriteFile(path, []byte("RB_TEST_FROM_FILE=file\nRB_TEST_EXISTING=file\n"), 0o600); err != nil {
		t.Fatalf("write env file: %v", err)
	}
	t.Setenv("RB_TEST_EXISTING", "env")
	t.Cleanup(func() { os.Unsetenv("RB_TEST_FROM_FILE") })

	loadEnvFiles(filepath.Join(dir, "missing.env"), path)

	if got := os.Getenv("RB_TEST_FROM_FILE"); got != "file" {
		t.Fatalf("RB_TEST_FROM_FILE = %q", got)
	}
	if got := os.Getenv("RB_TEST_EXISTING"); got != "env" {
		t.Fatalf("RB_TEST_EXISTING = %q", got)
	}
}

package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"resume-builder/internal/backend"
	"resume-builder/internal/editor"
	"resume-builder/internal/exports"
	"resume-builder/internal/services/health"
	"resume-builder/internal/sessions"
	"resume-builder/internal/shared/config"
	"resume-builder/internal/shared/server"
	"resume-builder/internal/shared/storage/db"
	"resume-builder/internal/shared/storage/object"
	"resume-builder/internal/shared/storage/object/local"
	"resume-builder/internal/shared/storage/object/s3"
	"resume-builder/internal/shared/telemetry"
	"resume-builder/resume/model"
	"resume-builder/resume/pdf"
)

// App holds shared dependencies and the router.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Redis           *redis.Client
	Store           editor.Store
	Hub             editor.Hub
	ExportsRepo     exports.Repo
	Archive         object.ObjectStore
	Backend         *backend.Client
	Rasterizer      pdf.Rasterizer
	Editor          *editor.Service
	SessionsHandler *sessions.Handler
	Health          *health.Service
}

// Option overrides a dependency Build would otherwise construct.
type Option func(*App)

// WithRasterizer replaces the headless Chrome rasterizer.
func WithRasterizer(r pdf.Rasterizer) Option {
	return func(a *App) { a.Rasterizer = r }
}

// WithRedis uses an existing Redis client for sessions and previews.
func WithRedis(rdb *redis.Client) Option {
	return func(a *App) { a.Redis = rdb }
}

// Build prepares dependencies and wires routes.
func Build(cfg config.Config, opts ...Option) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	ctx := context.Background()

	app := &App{Config: cfg}
	for _, opt := range opts {
		opt(app)
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.DB = sqlDB

	if app.Redis == nil {
		rdb, err := buildRedis(ctx, cfg)
		if err != nil {
			return nil, err
		}
		app.Redis = rdb
	}

	archive, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}
	app.Archive = archive

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Health = buildHealth(app)
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		SessionsHandler: app.SessionsHandler,
		Health:          app.Health,
	})

	return app, nil
}

// Close releases database and Redis connections.
func (a *App) Close() error {
	var firstErr error
	if a.Redis != nil {
		if err := a.Redis.Close(); err != nil {
			firstErr = err
		}
	}
	if a.DB != nil {
		if err := a.DB.Close(); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if cfg.IsDevLike() {
			telemetry.Info("bootstrap.database.memory", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	opts := db.OptionsFromEnv(db.DefaultServerOptions())
	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, opts)
	if err == nil {
		err = db.RunMigrations(ctx, sqlDB)
		if err != nil {
			_ = sqlDB.Close()
		}
	}
	if err != nil {
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.database.memory", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	return sqlDB, nil
}

func buildRedis(ctx context.Context, cfg config.Config) (*redis.Client, error) {
	raw := strings.TrimSpace(cfg.RedisURL)
	if raw == "" {
		telemetry.Info("bootstrap.sessions.memory", map[string]any{"reason": "REDIS_URL empty"})
		return nil, nil
	}

	var rdb *redis.Client
	if strings.HasPrefix(raw, "redis://") || strings.HasPrefix(raw, "rediss://") {
		opt, err := redis.ParseURL(raw)
		if err != nil {
			return nil, fmt.Errorf("parse REDIS_URL: %w", err)
		}
		rdb = redis.NewClient(opt)
	} else {
		rdb = redis.NewClient(&redis.Options{Addr: raw})
	}

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		if cfg.IsDevLike() {
			telemetry.Warn("bootstrap.sessions.memory", map[string]any{"reason": "redis ping failed", "error": err.Error()})
			return nil, nil
		}
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return rdb, nil
}

func buildHealth(app *App) *health.Service {
	svc := health.NewService(2 * time.Second)
	if app.DB != nil {
		svc.Register("database", app.DB.PingContext)
	}
	if app.Redis != nil {
		rdb := app.Redis
		svc.Register("redis", func(ctx context.Context) error { return rdb.Ping(ctx).Err() })
	}
	if chrome, ok := app.Rasterizer.(*pdf.ChromeRasterizer); ok {
		svc.Register("pdf", func(context.Context) error {
			if !chrome.Available() {
				return pdf.ErrRasterizerUnavailable
			}
			return nil
		})
	}
	return svc
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.ObjectStoreType)) {
	case "", "none":
		return nil, nil
	case "local":
		dir := strings.TrimSpace(cfg.LocalStoreDir)
		if dir == "" {
			return nil, fmt.Errorf("LOCAL_STORE_DIR is required for OBJECT_STORE=local")
		}
		telemetry.Info("bootstrap.archive.local", map[string]any{"dir": dir})
		return local.New(dir), nil
	case "s3":
		store, err := s3.New(ctx, s3.Options{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			KMSKeyID: cfg.SSEKMSKeyID,
			Endpoint: cfg.S3Endpoint,
		})
		if err != nil {
			return nil, fmt.Errorf("init s3 store: %w", err)
		}
		telemetry.Info("bootstrap.archive.s3", map[string]any{"bucket": cfg.S3Bucket, "prefix": cfg.S3Prefix})
		return store, nil
	default:
		return nil, fmt.Errorf("unsupported OBJECT_STORE %q", cfg.ObjectStoreType)
	}
}

func buildServices(app *App) error {
	cfg := app.Config

	if app.Redis != nil {
		app.Store = editor.NewRedisStore(app.Redis, cfg.SessionTTL)
		app.Hub = editor.NewRedisHub(app.Redis)
	} else {
		app.Store = editor.NewMemoryStore(cfg.SessionTTL)
		app.Hub = editor.NewMemoryHub()
	}

	if app.DB != nil {
		app.ExportsRepo = &exports.PGRepo{DB: app.DB}
	} else {
		app.ExportsRepo = exports.NewMemoryRepo()
	}

	if strings.TrimSpace(cfg.BackendBaseURL) != "" {
		app.Backend = backend.New(cfg.BackendBaseURL, cfg.BackendTimeout)
	} else {
		telemetry.Warn("bootstrap.backend.unconfigured", map[string]any{"reason": "BACKEND_BASE_URL empty"})
	}

	if app.Rasterizer == nil {
		chrome := pdf.NewChromeRasterizer(cfg.ChromePath, cfg.PDFTimeout)
		if !chrome.Available() {
			telemetry.Warn("bootstrap.pdf.unavailable", map[string]any{"chrome_path": cfg.ChromePath})
		}
		app.Rasterizer = chrome
	}

	defaultTemplate, err := model.ParseTemplate(cfg.DefaultTemplate)
	if err != nil {
		if strings.TrimSpace(cfg.DefaultTemplate) != "" {
			return fmt.Errorf("DEFAULT_TEMPLATE: %w", err)
		}
		defaultTemplate = model.TemplateClassic
	}

	deps := editor.Deps{
		Store:           app.Store,
		Hub:             app.Hub,
		PDF:             pdf.NewExporter(app.Rasterizer),
		History:         app.ExportsRepo,
		Archive:         app.Archive,
		DefaultTemplate: defaultTemplate,
	}
	var resumes sessions.Resumes
	if app.Backend != nil {
		deps.Backend = app.Backend
		resumes = app.Backend
	}

	app.Editor = editor.NewService(deps)
	app.SessionsHandler = sessions.NewHandler(app.Editor, resumes)
	return nil
}

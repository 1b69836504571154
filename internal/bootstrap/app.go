package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"tokencount-backend/internal/analysis"
	"tokencount-backend/internal/documents"
	"tokencount-backend/internal/extract"
	"tokencount-backend/internal/shared/config"
	"tokencount-backend/internal/shared/server"
	"tokencount-backend/internal/shared/storage/db"
	"tokencount-backend/internal/shared/telemetry"
	"tokencount-backend/internal/tokenizer"
)

// App holds shared dependencies.
type App struct {
	Config          config.Config
	Router          *gin.Engine
	DB              *sql.DB
	Store           documents.Store
	Registry        *extract.Registry
	Tokenizer       *tokenizer.Tokenizer
	AnalysisService *analysis.Service
	AnalysisHandler *analysis.Handler
}

// Build prepares the dependency graph and router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	telemetry.Init(cfg.LogLevel)
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	app, err := BuildWithDB(cfg, sqlDB)
	if err != nil {
		return nil, err
	}
	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		AnalysisHandler: app.AnalysisHandler,
	})
	return app, nil
}

// BuildWithDB assembles the services on top of sqlDB. A nil sqlDB selects the
// in-memory store. The router is not built.
func BuildWithDB(cfg config.Config, sqlDB *sql.DB) (*App, error) {
	tok, err := tokenizer.New()
	if err != nil {
		return nil, fmt.Errorf("load tokenizer: %w", err)
	}

	var store documents.Store
	if sqlDB != nil {
		store = &documents.PGStore{DB: sqlDB}
	} else {
		store = documents.NewMemoryStore()
	}

	registry := extract.Default()
	svc := &analysis.Service{
		Extractor:      registry,
		Tokenizer:      tok,
		Store:          store,
		MaxInputBytes:  int(cfg.MaxUploadBytes),
		ExtractTimeout: cfg.ExtractTimeout,
	}

	app := &App{
		Config:          cfg,
		DB:              sqlDB,
		Store:           store,
		Registry:        registry,
		Tokenizer:       tok,
		AnalysisService: svc,
		AnalysisHandler: analysis.NewHandler(svc, registry.MediaTypes),
	}
	if app.AnalysisHandler == nil {
		return nil, errors.New("failed to initialize handlers")
	}
	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, fmt.Errorf("DATABASE_URL is required")
	}

	var (
		sqlDB *sql.DB
		err   error
	)
	if db.IsLambdaRuntime() {
		opts := db.OptionsFromEnv(db.DefaultLambdaOptions())
		sqlDB, err = db.GetSingleton(ctx, cfg.DatabaseURL, opts)
	} else {
		opts := db.OptionsFromEnv(db.DefaultServerOptions())
		sqlDB, err = db.Connect(ctx, cfg.DatabaseURL, opts)
	}
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "database connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

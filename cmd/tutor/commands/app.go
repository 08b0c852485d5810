package commands

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/learnsphere/tutor/config"
	"github.com/learnsphere/tutor/internal/extract"
	"github.com/learnsphere/tutor/internal/ingest"
	"github.com/learnsphere/tutor/internal/provider"
	"github.com/learnsphere/tutor/internal/rag"
	"github.com/learnsphere/tutor/internal/storage"
	"github.com/learnsphere/tutor/internal/store"
)

// App holds the wired dependencies shared by every command: configuration,
// logger, providers, the chunk store, and the ingestion/answer services.
type App struct {
	Config    *config.Config
	Logger    *zap.Logger
	DB        *store.DB
	Chunks    store.ChunkStore
	Embedder  provider.Embedder
	Generator provider.Generator
	Storage   *storage.Client
	Ingestion *ingest.Service
	Composer  *rag.Composer
}

// NewApp loads configuration and wires the full dependency graph. The
// database connection is only opened for the postgres backend.
func NewApp(configPath string) (*App, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}

	embedder, generator, err := provider.New(cfg)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config:    cfg,
		Logger:    logger,
		Embedder:  embedder,
		Generator: generator,
		Storage:   storage.New(cfg.Storage.BaseURL, cfg.Storage.APIKey, cfg.Storage.Bucket),
	}

	switch cfg.Store.Backend {
	case "memory":
		app.Chunks = store.NewMemory(embedder.Dimension())
	default:
		db, err := store.NewDB(cfg.Database.DSN)
		if err != nil {
			logger.Sync()
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
		app.DB = db
		app.Chunks = db
	}

	extractor := extract.NewExtractor(
		app.Storage,
		time.Duration(cfg.Ingest.DownloadTimeoutSeconds)*time.Second,
		nil,
		logger,
	)
	app.Ingestion = ingest.NewService(
		app.Chunks,
		extractor,
		embedder,
		cfg.Chunking.MaxChars,
		cfg.Chunking.OverlapChars,
		logger,
	)
	retriever := rag.NewRetriever(app.Chunks, embedder, cfg.Retrieval.TopK)
	app.Composer = rag.NewComposer(retriever, generator, logger)

	return app, nil
}

// Close releases the database connection and flushes buffered log entries.
func (a *App) Close() {
	if a.DB != nil {
		a.DB.Close()
	}
	a.Logger.Sync()
}

// requireDB guards commands that need document persistence.
func (a *App) requireDB() error {
	if a.DB == nil {
		return fmt.Errorf("this command requires the postgres store backend, current backend is %q", a.Config.Store.Backend)
	}
	return nil
}

func newLogger(cfg *config.Config) (*zap.Logger, error) {
	level, err := zap.ParseAtomicLevel(cfg.Logging.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Logging.Level, err)
	}

	zapCfg := zap.NewProductionConfig()
	if cfg.Logging.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	}
	zapCfg.Level = level

	return zapCfg.Build()
}

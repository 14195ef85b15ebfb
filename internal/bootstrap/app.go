package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"

	"novel-assistant/internal/analyses"
	"novel-assistant/internal/documents"
	"novel-assistant/internal/services/health"
	"novel-assistant/internal/shared/config"
	"novel-assistant/internal/shared/server"
	"novel-assistant/internal/shared/storage/db"
	"novel-assistant/internal/shared/storage/object"
	localstore "novel-assistant/internal/shared/storage/object/local"
	s3store "novel-assistant/internal/shared/storage/object/s3"
	"novel-assistant/internal/shared/telemetry"
	"novel-assistant/internal/textanalysis"
	"novel-assistant/internal/uploads"
)

// App holds every shared dependency of the running service. It is built once
// at startup and handed to whoever needs it.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore

	Resources *textanalysis.Resources
	Analyzer  *textanalysis.Analyzer

	DocumentsRepo    documents.Repo
	AnalysesRepo     analyses.Repo
	DocumentsService *documents.Service
	AnalysesService  *analyses.Service
	UploadsService   *uploads.Service
	Health           *health.Service

	DocumentsHandler *documents.Handler
	AnalysisHandler  *analyses.Handler
	UploadHandler    *uploads.Handler

	// OpenAIAPIKey is reserved for a generative helper; nothing reads it yet.
	OpenAIAPIKey string
}

// Build validates configuration, provisions linguistic resources and wires
// storage, services, handlers and the router. Missing resources fail here
// rather than on the first request.
func Build(cfg config.Config) (*App, error) {
	telemetry.SetLevel(cfg.LogLevel)
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = config.EnvDev
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = config.StoreLocal
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	ctx := context.Background()

	res, analyzer, err := buildAnalyzer(cfg)
	if err != nil {
		return nil, err
	}

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		closeDB(sqlDB)
		return nil, err
	}

	app := &App{
		Config:       cfg,
		DB:           sqlDB,
		Store:        store,
		Resources:    res,
		Analyzer:     analyzer,
		OpenAIAPIKey: cfg.OpenAIAPIKey,
	}
	buildServices(app)

	app.Router = server.NewRouter(server.RouterDeps{
		Config:          app.Config,
		Health:          app.Health,
		UploadHandler:   app.UploadHandler,
		DocumentHandler: app.DocumentsHandler,
		AnalysisHandler: app.AnalysisHandler,
	})

	telemetry.Info("bootstrap.ready", map[string]any{
		"env":          cfg.Env,
		"database":     sqlDB != nil,
		"object_store": cfg.ObjectStoreType,
		"language":     res.Language,
		"stop_words":   res.StopWordCount(),
	})
	return app, nil
}

// Close releases the database pool.
func (a *App) Close() error {
	if a.DB == nil {
		return nil
	}
	return a.DB.Close()
}

func buildAnalyzer(cfg config.Config) (*textanalysis.Resources, *textanalysis.Analyzer, error) {
	res, err := textanalysis.LoadResources(textanalysis.ResourceConfig{
		Language: cfg.NLPLanguage,
		Dir:      cfg.NLPResourcesDir,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("load linguistic resources: %w", err)
	}
	analyzer, err := textanalysis.New(res,
		textanalysis.WithSummarySentences(cfg.SummarySentences),
		textanalysis.WithMaxKeywords(cfg.MaxKeywords),
	)
	if err != nil {
		return nil, nil, fmt.Errorf("build analyzer: %w", err)
	}
	return res, analyzer, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "DATABASE_URL empty"})
			return nil, nil
		}
		return nil, config.ErrMissingDatabaseURL
	}

	sqlDB, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
	if err != nil {
		if isDevLike(cfg.Env) {
			telemetry.Warn("bootstrap.memory_store", map[string]any{"reason": "connect failed", "error": err.Error()})
			return nil, nil
		}
		return nil, err
	}
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case config.StoreS3:
		return s3store.New(ctx, s3store.Config{
			Region:   cfg.AWSRegion,
			Bucket:   cfg.S3Bucket,
			Prefix:   cfg.S3Prefix,
			KMSKeyID: cfg.SSEKMSKeyID,
			Endpoint: cfg.S3Endpoint,
		})
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildServices(app *App) {
	var docRepo documents.Repo
	var analysisRepo analyses.Repo
	var pinger health.Pinger

	if app.DB != nil {
		docRepo = &documents.PGRepo{DB: app.DB}
		analysisRepo = &analyses.PGRepo{DB: app.DB}
		pinger = app.DB
	} else {
		memDocs := documents.NewMemoryRepo()
		docRepo = memDocs
		analysisRepo = analyses.NewMemoryRepo(memDocs)
	}

	docSvc := &documents.Service{Store: app.Store, Repo: docRepo}
	analysisSvc := &analyses.Service{Repo: analysisRepo}
	uploadSvc := &uploads.Service{
		Docs:     docSvc,
		Analyses: analysisSvc,
		Analyzer: app.Analyzer,
		MaxBytes: app.Config.MaxUploadBytes,
	}

	app.DocumentsRepo = docRepo
	app.AnalysesRepo = analysisRepo
	app.DocumentsService = docSvc
	app.AnalysesService = analysisSvc
	app.UploadsService = uploadSvc
	app.Health = health.NewService(pinger, app.Resources.Language)
	app.DocumentsHandler = documents.NewHandler(docSvc)
	app.AnalysisHandler = analyses.NewHandler(analysisSvc, docRepo)
	app.UploadHandler = uploads.NewHandler(uploadSvc)
}

func closeDB(sqlDB *sql.DB) {
	if sqlDB != nil {
		_ = sqlDB.Close()
	}
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case config.EnvDev, "local":
		return true
	default:
		return false
	}
}

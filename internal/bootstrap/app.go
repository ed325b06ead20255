package bootstrap

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"ai-resume-saas/internal/analysis"
	"ai-resume-saas/internal/assist"
	googleauth "ai-resume-saas/internal/auth"
	"ai-resume-saas/internal/llm"
	"ai-resume-saas/internal/llm/gemini"
	"ai-resume-saas/internal/llm/openai"
	"ai-resume-saas/internal/ratelimit"
	"ai-resume-saas/internal/resumes"
	"ai-resume-saas/internal/services/health"
	"ai-resume-saas/internal/shared/auth"
	"ai-resume-saas/internal/shared/config"
	"ai-resume-saas/internal/shared/server"
	"ai-resume-saas/internal/shared/storage/db"
	"ai-resume-saas/internal/shared/storage/object"
	localstore "ai-resume-saas/internal/shared/storage/object/local"
	s3store "ai-resume-saas/internal/shared/storage/object/s3"
	"ai-resume-saas/internal/shared/telemetry"
)

// App holds shared dependencies and the wired router.
type App struct {
	Config  config.Config
	Router  *gin.Engine
	DB      *sql.DB
	Mongo   *mongo.Client
	Redis   *redis.Client
	Store   object.ObjectStore
	Signer  *auth.Signer
	LLM     *llm.Client
	Limiter ratelimit.Limiter

	ResumesRepo     resumes.Repo
	ResumesService  *resumes.Service
	AnalysisService *analysis.Service
	AssistService   *assist.Service
	GoogleAuth      *googleauth.GoogleService
	Health          *health.Service
}

// Build prepares dependencies and wires routes.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}

	app := &App{Config: cfg}

	secret, err := auth.SecretFromConfig(cfg.Env, cfg.JWTSecret)
	if err != nil {
		return nil, err
	}
	app.Signer = auth.NewSigner(secret, 0)

	if err := app.buildResumeRepo(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}
	if app.Store, err = buildStore(ctx, cfg); err != nil {
		app.Close(ctx)
		return nil, err
	}
	if err := app.buildLLM(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}
	if err := app.buildLimiter(ctx); err != nil {
		app.Close(ctx)
		return nil, err
	}

	app.ResumesService = resumes.NewService(app.Store, app.ResumesRepo)
	enricher := analysis.NewEnricher(app.LLM, cfg.EnrichWorkers, cfg.EnrichTimeout)
	analyzer := analysis.NewAnalyzer(app.LLM, enricher, analysis.AnalyzerOptions{RetryMalformed: cfg.AnalyzeRetryMalformed})
	app.AnalysisService = analysis.NewService(analysis.NewResolver(app.ResumesRepo), analyzer, cfg.AnalyzeBudget)
	app.AssistService = assist.NewService(app.LLM)
	app.GoogleAuth = googleauth.NewGoogleService(googleauth.GoogleConfig{
		ClientID:      cfg.GoogleClientID,
		ClientSecret:  cfg.GoogleClientSecret,
		RedirectURL:   cfg.GoogleRedirectURL,
		UIRedirectURL: cfg.UIRedirectURL,
	}, app.Signer)

	app.Health = app.healthChecks()

	deps := server.RouterDeps{
		Config:   cfg,
		Verifier: app.Signer,
		Health:   app.Health,
		Features: []server.RouteRegistrar{
			app.GoogleAuth,
			resumes.NewHandler(app.ResumesService),
			analysis.NewHandler(app.AnalysisService, app.Limiter),
			assist.NewHandler(app.AssistService),
		},
	}
	if local, ok := app.Store.(*localstore.Store); ok {
		deps.LocalFilesDir = local.Dir()
	}
	app.Router = server.NewRouter(deps)

	return app, nil
}

func (a *App) healthChecks() *health.Service {
	checks := health.NewService()
	if a.DB != nil {
		checks.Register("postgres", a.DB.PingContext)
	}
	if a.Mongo != nil {
		checks.Register("mongo", func(ctx context.Context) error { return a.Mongo.Ping(ctx, nil) })
	}
	if a.Redis != nil {
		checks.Register("redis", func(ctx context.Context) error { return a.Redis.Ping(ctx).Err() })
	}
	return checks
}

// Close releases connections opened by Build.
func (a *App) Close(ctx context.Context) {
	if a.DB != nil {
		_ = a.DB.Close()
	}
	if a.Mongo != nil {
		_ = a.Mongo.Disconnect(ctx)
	}
	if a.Redis != nil {
		_ = a.Redis.Close()
	}
}

func (a *App) buildResumeRepo(ctx context.Context) error {
	cfg := a.Config
	var err error
	switch cfg.ResumeStore {
	case "mongo":
		err = a.connectMongo(ctx)
	case "postgres":
		err = a.connectPostgres(ctx)
	}
	if err != nil {
		if !config.IsDevLike(cfg.Env) {
			return err
		}
		telemetry.Warn("bootstrap.resume_store_fallback", map[string]any{"store": cfg.ResumeStore, "err": err})
		a.Close(ctx)
		a.DB, a.Mongo, a.ResumesRepo = nil, nil, nil
	}
	if a.ResumesRepo == nil {
		a.ResumesRepo = resumes.NewMemoryRepo()
	}
	return nil
}

func (a *App) connectMongo(ctx context.Context) error {
	if strings.TrimSpace(a.Config.MongoURI) == "" {
		return errors.New("MONGODB_URI is required")
	}
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(a.Config.MongoURI))
	if err != nil {
		return fmt.Errorf("connect mongo: %w", err)
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(ctx)
		return fmt.Errorf("ping mongo: %w", err)
	}
	a.Mongo = client

	repo := resumes.NewMongoRepo(client.Database(a.Config.MongoDatabase).Collection(resumes.CollectionName))
	if err := repo.EnsureIndexes(ctx); err != nil {
		telemetry.Warn("bootstrap.mongo_index_failed", map[string]any{"err": err})
	}
	a.ResumesRepo = repo
	return nil
}

func (a *App) connectPostgres(ctx context.Context) error {
	sqlDB, err := db.Connect(ctx, a.Config.DatabaseURL, db.DefaultServerOptions().WithPool(a.Config.DBPool))
	if err != nil {
		return err
	}
	a.DB = sqlDB
	if err := db.RunMigrations(ctx, sqlDB); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	a.ResumesRepo = &resumes.PGRepo{DB: sqlDB}
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, s3store.Options{
			Region:        cfg.AWSRegion,
			Bucket:        cfg.S3Bucket,
			Prefix:        cfg.S3Prefix,
			KMSKeyID:      cfg.SSEKMSKeyID,
			PublicBaseURL: cfg.S3PublicBaseURL,
		})
	default:
		return localstore.New(cfg.LocalStoreDir, cfg.PublicBaseURL), nil
	}
}

func (a *App) buildLLM(ctx context.Context) error {
	cfg := a.Config
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		if !config.IsDevLike(cfg.Env) {
			return err
		}
		// Calls fail as upstream unavailable until a key is configured.
		telemetry.Warn("bootstrap.llm_unconfigured", map[string]any{"provider": cfg.LLMProvider, "err": err})
		provider = nil
	}
	a.LLM = llm.NewClient(provider, llm.Options{Timeout: cfg.LLMTimeout, MaxRPS: cfg.LLMMaxRPS})
	return nil
}

// NewLLMClient builds a client for the configured provider and fails when it is not usable.
func NewLLMClient(ctx context.Context, cfg config.Config) (*llm.Client, error) {
	provider, err := newProvider(ctx, cfg)
	if err != nil {
		return nil, err
	}
	return llm.NewClient(provider, llm.Options{Timeout: cfg.LLMTimeout, MaxRPS: cfg.LLMMaxRPS}), nil
}

func newProvider(ctx context.Context, cfg config.Config) (llm.Provider, error) {
	if cfg.LLMProvider == "gemini" {
		p, err := gemini.New(ctx, cfg.LLMAPIKey, cfg.LLMModel)
		if err != nil {
			return nil, err
		}
		return p, nil
	}
	p, err := openai.New(openai.Config{
		Name:    cfg.LLMProvider,
		BaseURL: cfg.LLMBaseURL,
		APIKey:  cfg.LLMAPIKey,
		Model:   cfg.LLMModel,
	})
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (a *App) buildLimiter(ctx context.Context) error {
	cfg := a.Config
	limits := ratelimit.Config{Window: cfg.RateLimitWindow, Max: cfg.RateLimitMax}
	if cfg.RateLimitBackend == "redis" {
		client, err := ratelimit.Connect(ctx, cfg.RedisURL)
		if err == nil {
			a.Redis = client
			a.Limiter = ratelimit.NewRedis(client, limits)
			return nil
		}
		if !config.IsDevLike(cfg.Env) {
			return err
		}
		telemetry.Warn("bootstrap.redis_fallback", map[string]any{"err": err})
	}
	a.Limiter = ratelimit.NewSlidingWindow(limits, nil)
	return nil
}

package bootstrap

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"engineo-backend/internal/account"
	googleauth "engineo-backend/internal/auth"
	"engineo-backend/internal/drafts"
	"engineo-backend/internal/evaluations"
	"engineo-backend/internal/llm"
	openai "engineo-backend/internal/llm/openai"
	"engineo-backend/internal/products"
	"engineo-backend/internal/queue"
	"engineo-backend/internal/services/health"
	"engineo-backend/internal/shared/config"
	"engineo-backend/internal/shared/server"
	"engineo-backend/internal/shared/storage/db"
	"engineo-backend/internal/shared/storage/object"
	localstore "engineo-backend/internal/shared/storage/object/local"
	s3store "engineo-backend/internal/shared/storage/object/s3"
	"engineo-backend/internal/sources"
	"engineo-backend/internal/usage"
	"engineo-backend/internal/users"
)

// App holds shared dependencies for the API server and the worker.
type App struct {
	Config config.Config
	Router *gin.Engine
	DB     *sql.DB
	Store  object.ObjectStore
	Queue  queue.Client

	ProductsRepo    products.Repo
	EvaluationsRepo evaluations.Repo
	DraftsRepo      drafts.Repo
	SourcesRepo     sources.Repo
	UsersRepo       users.Repo

	Products    *products.Service
	Evaluations *evaluations.Service
	Drafts      *drafts.Service
	Sources     *sources.Service
	Usage       *usage.Service
	Users       *users.Service
	Account     *account.Service

	ProductsHandler    *products.Handler
	EvaluationsHandler *evaluations.Handler
	DraftsHandler      *drafts.Handler
	SourcesHandler     *sources.Handler
	UsageHandler       *usage.Handler
	UsersHandler       *users.Handler
	AccountHandler     *account.Handler
	GoogleAuth         *googleauth.GoogleService
}

// Build prepares shared dependencies and wires the router.
func Build(cfg config.Config) (*App, error) {
	if strings.TrimSpace(cfg.Env) == "" {
		cfg.Env = "dev"
	}
	if strings.TrimSpace(cfg.ObjectStoreType) == "" {
		cfg.ObjectStoreType = "local"
	}
	ctx := context.Background()

	sqlDB, err := buildDB(ctx, cfg)
	if err != nil {
		return nil, err
	}

	store, err := buildStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	queueClient, err := buildQueue(ctx)
	if err != nil {
		return nil, err
	}

	app := &App{
		Config: cfg,
		DB:     sqlDB,
		Store:  store,
		Queue:  queueClient,
	}

	if err := buildServices(app); err != nil {
		return nil, err
	}

	app.Router = server.NewRouter(server.RouterDeps{
		Config:      app.Config,
		Health:      health.NewService(),
		GoogleAuth:  app.GoogleAuth,
		Users:       app.UsersHandler,
		Account:     app.AccountHandler,
		Products:    app.ProductsHandler,
		Evaluations: app.EvaluationsHandler,
		Drafts:      app.DraftsHandler,
		Sources:     app.SourcesHandler,
		Usage:       app.UsageHandler,
	})

	return app, nil
}

func buildDB(ctx context.Context, cfg config.Config) (*sql.DB, error) {
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		if isDevLike(cfg.Env) {
			log.Printf("bootstrap: DATABASE_URL empty; using in-memory repositories")
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
			log.Printf("bootstrap: database connect failed; using in-memory repositories: %v", err)
			return nil, nil
		}
		return nil, err
	}

	return sqlDB, nil
}

func buildStore(ctx context.Context, cfg config.Config) (object.ObjectStore, error) {
	switch cfg.ObjectStoreType {
	case "s3":
		return s3store.New(ctx, cfg.AWSRegion, cfg.S3Bucket, cfg.S3Prefix, cfg.SSEKMSKeyID)
	default:
		return localstore.New(cfg.LocalStoreDir), nil
	}
}

func buildQueue(ctx context.Context) (queue.Client, error) {
	if strings.TrimSpace(os.Getenv("ENGINEO_SQS_QUEUE_URL")) == "" {
		return nil, nil
	}
	return queue.NewSQSClient(ctx)
}

func isDevLike(env string) bool {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "dev", "local":
		return true
	default:
		return false
	}
}

func buildServices(app *App) error {
	if app.DB != nil {
		app.ProductsRepo = &products.PGRepo{DB: app.DB}
		app.EvaluationsRepo = &evaluations.PGRepo{DB: app.DB}
		app.DraftsRepo = &drafts.PGRepo{DB: app.DB}
		app.SourcesRepo = &sources.PGRepo{DB: app.DB}
		app.UsersRepo = &users.PGRepo{DB: app.DB}
	} else {
		app.ProductsRepo = products.NewMemoryRepo()
		app.EvaluationsRepo = evaluations.NewMemoryRepo()
		app.DraftsRepo = drafts.NewMemoryRepo()
		app.SourcesRepo = sources.NewMemoryRepo()
		app.UsersRepo = users.NewMemoryRepo()
	}

	if app.DB != nil {
		app.Usage = usage.NewPostgresService(usage.NewPGStore(app.DB))
	} else {
		app.Usage = usage.NewService()
	}

	llmClient := llm.Client(llm.PlaceholderClient{})
	if app.Config.LLMProvider == "openai" {
		openaiClient, err := openai.NewClient(os.Getenv("OPENAI_API_KEY"), app.Config.LLMModel)
		if err != nil {
			return err
		}
		llmClient = openaiClient
	}

	app.Products = &products.Service{Repo: app.ProductsRepo}
	app.Evaluations = &evaluations.Service{
		Repo:     app.EvaluationsRepo,
		Products: app.Products,
	}
	app.Sources = &sources.Service{
		Store:    app.Store,
		Repo:     app.SourcesRepo,
		Products: app.Products,
		Queue:    app.Queue,
	}
	app.Drafts = &drafts.Service{
		Repo:          app.DraftsRepo,
		Products:      app.Products,
		Evals:         app.Evaluations,
		LLM:           llmClient,
		Usage:         app.Usage,
		Sources:       app.Sources,
		PromptVersion: app.Config.PromptVersion,
		TTL:           time.Duration(app.Config.DraftTTLHours) * time.Hour,
	}

	app.Users = users.NewService(app.UsersRepo)
	app.Account = account.NewService(app.ProductsRepo, app.EvaluationsRepo)
	app.GoogleAuth = googleauth.NewGoogleService(
		app.Config.GoogleClientID,
		app.Config.GoogleClientSecret,
		app.Config.GoogleRedirectURL,
		app.Config.UIRedirectURL,
		app.Users,
	)

	app.ProductsHandler = products.NewHandler(app.Products)
	app.EvaluationsHandler = evaluations.NewHandler(app.Evaluations)
	app.DraftsHandler = drafts.NewHandler(app.Drafts)
	app.SourcesHandler = sources.NewHandler(app.Sources)
	app.UsageHandler = usage.NewHandler(app.Usage)
	app.UsersHandler = users.NewHandler(app.Users)
	app.AccountHandler = account.NewHandler(app.Account)

	return nil
}

package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"engineo-backend/internal/account"
	googleauth "engineo-backend/internal/auth"
	"engineo-backend/internal/drafts"
	"engineo-backend/internal/evaluations"
	"engineo-backend/internal/products"
	"engineo-backend/internal/services/health"
	"engineo-backend/internal/shared/config"
	"engineo-backend/internal/shared/metrics"
	"engineo-backend/internal/shared/server/middleware"
	"engineo-backend/internal/shared/server/respond"
	"engineo-backend/internal/sources"
	"engineo-backend/internal/uploads"
	"engineo-backend/internal/usage"
	"engineo-backend/internal/users"
)

// RouterDeps carries the handlers the router mounts. Nil handlers are
// skipped, which keeps tests free to wire only what they exercise.
type RouterDeps struct {
	Config      config.Config
	Health      *health.Service
	GoogleAuth  *googleauth.GoogleService
	Users       *users.Handler
	Account     *account.Handler
	Products    *products.Handler
	Evaluations *evaluations.Handler
	Drafts      *drafts.Handler
	Sources     *sources.Handler
	Usage       *usage.Handler
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	cfg := deps.Config
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(cfg.CORSAllowOrigin),
		middleware.Auth(cfg.Env),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules: map[string]middleware.RateLimitRule{
				"GENERATE": {Rate: 0.5, Burst: 3},
				"EVALUATE": {Rate: 1, Burst: 5},
			},
			GroupFor: rateLimitGroup,
		}),
	)

	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}

	api := r.Group("/api/v1")
	api.GET("/health", func(c *gin.Context) {
		respond.JSON(c, http.StatusOK, healthSvc.Status())
	})
	api.GET("/metrics", metrics.Handler())

	if deps.GoogleAuth != nil {
		deps.GoogleAuth.RegisterRoutes(api)
	}
	if deps.Users != nil {
		deps.Users.RegisterRoutes(api)
	}
	if deps.Account != nil {
		deps.Account.RegisterRoutes(api)
	}
	if deps.Products != nil {
		deps.Products.RegisterRoutes(api)
	}
	if deps.Evaluations != nil {
		deps.Evaluations.RegisterRoutes(api)
	}
	if deps.Drafts != nil {
		deps.Drafts.RegisterRoutes(api)
	}
	if deps.Sources != nil {
		deps.Sources.RegisterRoutes(api)
	}
	uploads.RegisterRoutes(api)
	if deps.Usage != nil {
		deps.Usage.RegisterRoutes(api)
		if cfg.Env == "dev" {
			dev := api.Group("/dev")
			deps.Usage.RegisterDevRoutes(dev)
		}
	}

	return r
}

// rateLimitGroup buckets LLM generation and evaluation runs; everything else
// passes through unlimited.
func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method != http.MethodPost {
		return ""
	}
	path := c.Request.URL.Path
	switch {
	case strings.HasSuffix(path, "/drafts"):
		return "GENERATE"
	case strings.HasSuffix(path, "/evaluate"):
		return "EVALUATE"
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}

package handler

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"project_tracker/internal/middleware"
	"project_tracker/internal/model"
	"project_tracker/internal/response"
	"project_tracker/internal/service"

	"github.com/gin-gonic/gin"
)

const apiPrefix = "/api/v1"

// Policy lists the roles allowed on each guarded route
var Policy = middleware.Policy{
	middleware.Route(http.MethodGet, apiPrefix+"/project"):                 {model.RoleVerified, model.RoleAdmin},
	middleware.Route(http.MethodGet, apiPrefix+"/project/:slug"):           {model.RoleVerified, model.RoleAdmin},
	middleware.Route(http.MethodPost, apiPrefix+"/project/new"):            {model.RoleAdmin},
	middleware.Route(http.MethodDelete, apiPrefix+"/project/:slug"):        {model.RoleAdmin},
	middleware.Route(http.MethodPatch, apiPrefix+"/project/:slug/access"):  {model.RoleAdmin},
	middleware.Route(http.MethodPost, apiPrefix+"/project/:slug/data/new"): {model.RoleVerified},
}

// HealthCheck reports whether a dependency is reachable
type HealthCheck func(ctx context.Context) error

// RouterDeps carries everything NewRouter wires together
type RouterDeps struct {
	Auth     service.AuthService
	Projects service.ProjectService
	Tokens   middleware.TokenValidator
	Logger   *slog.Logger
	// SigninLimiter may be nil
	SigninLimiter gin.HandlerFunc
	HealthChecks  map[string]HealthCheck
	// MaxMultipartMemory caps the in-memory part of multipart uploads
	MaxMultipartMemory int64
	// TrustedProxies may set the client IP through X-Forwarded-For; nil trusts none
	TrustedProxies []string
}

// NewRouter builds the gin engine with authentication and the role guard on every route
func NewRouter(deps RouterDeps) *gin.Engine {
	router := gin.New()
	if err := router.SetTrustedProxies(deps.TrustedProxies); err != nil {
		deps.Logger.Error("invalid trusted proxies", "proxies", deps.TrustedProxies, "error", err)
	}
	if deps.MaxMultipartMemory > 0 {
		router.MaxMultipartMemory = deps.MaxMultipartMemory
	}
	router.Use(
		gin.Recovery(),
		middleware.RequestLogger(deps.Logger),
		middleware.CORS(),
		middleware.Authenticate(deps.Tokens),
		middleware.RoleGuard(Policy),
	)

	apiGroup := router.Group(apiPrefix)
	NewAuthHandler(deps.Auth).RegisterAuthRoutes(apiGroup, deps.SigninLimiter)
	NewProjectHandler(deps.Projects).RegisterProjectRoutes(apiGroup)

	router.GET("/health", healthHandler(deps.Logger, deps.HealthChecks))
	return router
}

func healthHandler(logger *slog.Logger, checks map[string]HealthCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()

		status := http.StatusOK
		report := gin.H{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed", "dependency", name, "error", err)
				report[name] = "unhealthy"
				report["status"] = "error"
				status = http.StatusServiceUnavailable
				continue
			}
			report[name] = "healthy"
		}

		if status != http.StatusOK {
			c.JSON(status, response.Envelope{ErrCode: status, ErrMsg: "Service Unavailable", Data: report})
			return
		}
		response.OK(c, status, report)
	}
}

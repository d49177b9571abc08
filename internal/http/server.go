package http

import (
	"context"
	"fmt"
	stdhttp "net/http"
	"sort"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"project-service/internal/auth"
	"project-service/internal/config"
	"project-service/internal/http/handler"
	"project-service/internal/http/middleware"
	"project-service/pkg/profiling"
)

const (
	jsonKeyStatus    = "status"
	jsonKeyChecks    = "checks"
	jsonKeyMemory    = "memory"
	statusOK         = "ok"
	statusDegraded   = "degraded"
	requestBodyLimit = "1M"
	projectsPrefix   = "/api/projects"
	// multipart framing and text fields on top of the file payload
	writeBodySlack     = 2 << 20
	healthCheckTimeout = 2 * time.Second
)

// Pinger is a dependency reported by /health.
type Pinger interface {
	Ping(ctx context.Context) error
}

type ServerDependencies struct {
	Config         *config.Config
	Service        handler.ProjectService
	Reader         handler.ProjectReader
	Cache          handler.ProjectCache
	AuditLogger    handler.AuditLogger
	AuditReader    handler.AuditReader
	AuthMiddleware *auth.Middleware
	HealthChecks   map[string]Pinger
	// UploadRoot is served under Storage.PublicBaseURL when the local
	// backend is in use.
	UploadRoot string
}

type Server struct {
	echo *echo.Echo
	deps *ServerDependencies
}

func NewServer(deps *ServerDependencies) *Server {
	cfg := deps.Config

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	e.HTTPErrorHandler = CustomHTTPErrorHandler

	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	// Request ID first so every log line carries it.
	e.Use(middleware.RequestID())
	e.Use(middleware.SecurityHeaders(cfg.IsProduction()))
	e.Use(echomiddleware.Logger())
	e.Use(echomiddleware.Recover())
	e.Use(middleware.Metrics())
	e.Use(echomiddleware.BodyLimitWithConfig(echomiddleware.BodyLimitConfig{
		Skipper: isMultipartWrite,
		Limit:   requestBodyLimit,
	}))

	globalRateLimiter := middleware.NewRateLimiter(cfg.Server.RateLimitRPS, cfg.Server.RateLimitBurst)
	e.Use(globalRateLimiter.Middleware())

	writeRateLimiter := middleware.NewWriteRateLimiter()
	writeBodyLimit := echomiddleware.BodyLimit(writeBodyLimitFor(&cfg.Storage))

	projectHandler := handler.NewProjectHandler(deps.Service, deps.Reader, deps.Cache, deps.AuditLogger, deps.AuditReader, handler.Options{
		MaxFileSize: cfg.Storage.MaxFileSize,
		PageSize:    cfg.App.PageSize,
		MaxPageSize: cfg.App.MaxPageSize,
	})

	e.GET("/health", healthCheck(deps.HealthChecks))
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	if cfg.Storage.Backend == config.StorageBackendLocal && deps.UploadRoot != "" {
		e.Static(cfg.Storage.PublicBaseURL, deps.UploadRoot)
	}

	admin := func(permission auth.Permission, extra ...echo.MiddlewareFunc) []echo.MiddlewareFunc {
		return append([]echo.MiddlewareFunc{
			deps.AuthMiddleware.RequireAdmin(),
			deps.AuthMiddleware.RequirePermission(permission),
		}, extra...)
	}

	if cfg.Server.EnableProfiling {
		profiling.Register(e.Group("/debug/pprof", admin(auth.PermissionDebugProfile)...))
	}

	projects := e.Group(projectsPrefix)
	projects.GET("", projectHandler.ListProjects)
	projects.GET("/stats", projectHandler.GetStats)
	projects.GET("/search", projectHandler.SearchProjects)
	projects.GET("/state/:state", projectHandler.ListByState)
	projects.GET("/type/:type", projectHandler.ListByType)
	projects.GET("/slug/:slug", projectHandler.GetProjectBySlug)
	projects.GET("/slug-available", projectHandler.CheckSlugAvailable)
	projects.GET("/:id", projectHandler.GetProject)

	projects.POST("", projectHandler.CreateProject,
		admin(auth.PermissionProjectsCreate, writeRateLimiter.Middleware(), writeBodyLimit)...)
	projects.PUT("/:id", projectHandler.UpdateProject,
		admin(auth.PermissionProjectsUpdate, writeRateLimiter.Middleware(), writeBodyLimit)...)
	projects.DELETE("/:id", projectHandler.DeleteProject, admin(auth.PermissionProjectsDelete)...)
	projects.PATCH("/:id/status", projectHandler.SetProjectStatus, admin(auth.PermissionProjectsUpdate)...)
	projects.GET("/:id/history", projectHandler.ProjectHistory, admin(auth.PermissionAuditRead)...)

	return &Server{
		echo: e,
		deps: deps,
	}
}

// Handler exposes the router for tests.
func (s *Server) Handler() stdhttp.Handler {
	return s.echo
}

func (s *Server) Start(address string) error {
	return s.echo.Start(address)
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// isMultipartWrite skips the global body limit for project submissions,
// which carry their own limit sized from the upload settings.
func isMultipartWrite(c echo.Context) bool {
	method := c.Request().Method
	if method != stdhttp.MethodPost && method != stdhttp.MethodPut {
		return false
	}
	return strings.HasPrefix(c.Request().URL.Path, projectsPrefix)
}

func writeBodyLimitFor(cfg *config.StorageConfig) string {
	limit := cfg.MaxFileSize*int64(cfg.MaxFilesPerRequest) + writeBodySlack
	return fmt.Sprintf("%dB", limit)
}

func healthCheck(checks map[string]Pinger) echo.HandlerFunc {
	names := make([]string, 0, len(checks))
	for name := range checks {
		names = append(names, name)
	}
	sort.Strings(names)

	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), healthCheckTimeout)
		defer cancel()

		status := statusOK
		code := stdhttp.StatusOK
		results := make(map[string]string, len(names))
		for _, name := range names {
			if err := checks[name].Ping(ctx); err != nil {
				c.Logger().Warnf("health check %s failed: %v", name, err)
				results[name] = err.Error()
				status = statusDegraded
				code = stdhttp.StatusServiceUnavailable
				continue
			}
			results[name] = statusOK
		}

		return c.JSON(code, map[string]any{
			jsonKeyStatus: status,
			jsonKeyChecks: results,
			jsonKeyMemory: profiling.ReadMemoryStats(),
		})
	}
}

// Package http provides the HTTP server implementation and routing.
package http

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-contrib/requestid"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"

	auditHTTP "github.com/allisson/planexec/internal/audit/http"
	"github.com/allisson/planexec/internal/metrics"
	planHTTP "github.com/allisson/planexec/internal/plan/http"
	tokenHTTP "github.com/allisson/planexec/internal/token/http"
)

// Server represents the HTTP server.
type Server struct {
	server *http.Server
	router *gin.Engine
	db     *sql.DB
	logger *slog.Logger
	host   string
	port   int
}

// NewServer creates a new HTTP server. The router is empty until SetupRouter
// is called; the database handle may be nil when running on the in-memory
// backend, in which case readiness reports the database as not configured
// and the server as ready.
func NewServer(db *sql.DB, host string, port int, logger *slog.Logger) *Server {
	return &Server{
		db:     db,
		logger: logger,
		host:   host,
		port:   port,
	}
}

// RouterConfig carries the handlers and surface options for SetupRouter.
type RouterConfig struct {
	TokenHandler    *tokenHTTP.TokenHandler
	AuditLogHandler *auditHTTP.AuditLogHandler
	PlanHandler     *planHTTP.PlanHandler

	MeterProvider    metric.MeterProvider
	MetricsNamespace string

	RateLimitEnabled        bool
	RateLimitRequestsPerSec float64
	RateLimitBurst          int

	CORSEnabled      bool
	CORSAllowOrigins string
}

// SetupRouter builds the full router: middleware chain, health endpoints,
// and the versioned API surface.
func (s *Server) SetupRouter(cfg RouterConfig) {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(requestid.New(requestid.WithGenerator(func() string {
		return uuid.Must(uuid.NewV7()).String()
	})))
	router.Use(CustomLoggerMiddleware(s.logger))

	if corsMiddleware := createCORSMiddleware(cfg.CORSEnabled, cfg.CORSAllowOrigins, s.logger); corsMiddleware != nil {
		router.Use(corsMiddleware)
	}

	if cfg.RateLimitEnabled {
		router.Use(RateLimitMiddleware(cfg.RateLimitRequestsPerSec, cfg.RateLimitBurst, s.logger))
	}

	if cfg.MeterProvider != nil {
		router.Use(metrics.HTTPMetricsMiddleware(cfg.MeterProvider, cfg.MetricsNamespace))
	}

	router.GET("/health", s.healthHandler)
	router.GET("/ready", s.readinessHandler)

	v1 := router.Group("/v1")
	{
		if cfg.TokenHandler != nil {
			v1.POST("/tokens", cfg.TokenHandler.IssueHandler)
			v1.GET("/tokens/:fingerprint", cfg.TokenHandler.GetHandler)
			v1.POST("/tokens/:fingerprint/revoke", cfg.TokenHandler.RevokeHandler)
		}

		if cfg.AuditLogHandler != nil {
			v1.GET("/audit-events", cfg.AuditLogHandler.ListHandler)
			v1.GET("/audit-events/verify", cfg.AuditLogHandler.VerifyHandler)
		}

		if cfg.PlanHandler != nil {
			v1.POST("/plans/execute", cfg.PlanHandler.ExecuteHandler)
		}
	}

	s.router = router
}

// healthHandler reports process liveness.
func (s *Server) healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "healthy"})
}

// readinessHandler reports whether the server can take traffic, checking the
// database when one is configured. The in-memory backend has no database, so
// its absence does not block readiness.
func (s *Server) readinessHandler(c *gin.Context) {
	components := gin.H{}

	if s.db == nil {
		components["database"] = "not_configured"
		c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
		return
	}

	ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
	defer cancel()

	if err := s.db.PingContext(ctx); err != nil {
		components["database"] = "error"
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "components": components})
		return
	}

	components["database"] = "ok"
	c.JSON(http.StatusOK, gin.H{"status": "ready", "components": components})
}

// Start starts the HTTP server.
func (s *Server) Start(ctx context.Context) error {
	s.server = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", s.host, s.port),
		Handler:      s.router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.logger.Info("starting http server", slog.String("addr", s.server.Addr))

	if err := s.server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("failed to start server: %w", err)
	}

	return nil
}

// Shutdown gracefully shuts down the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("shutting down http server")
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

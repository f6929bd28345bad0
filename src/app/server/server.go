// Package server provides HTTP server initialization and lifecycle management.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/sync/errgroup"

	"catalog/src/app/http/handler"
	"catalog/src/app/http/response"
	"catalog/src/app/middleware"
	"catalog/src/core/ports"
	"catalog/src/core/usecase"
	"catalog/src/infra/config"
	"catalog/src/infra/logger"
)

// Dependencies are the adapters the server's use cases run on.
type Dependencies struct {
	Products ports.ProductRepository
	Database ports.DatabaseProbe
	// Gatherer backs the metrics endpoint. Nil disables it.
	Gatherer prometheus.Gatherer
}

// Server wraps the HTTP server and its dependencies.
type Server struct {
	cfg      *config.Config
	log      *slog.Logger
	router   *gin.Engine
	http     *http.Server
	gatherer prometheus.Gatherer

	// Handlers
	healthHandler  *handler.HealthHandler
	productHandler *handler.ProductHandler
}

// New creates a new Server with all dependencies wired up.
func New(cfg *config.Config, log *slog.Logger, deps Dependencies) *Server {
	// Set Gin mode based on log level
	if cfg.Log.Level == "debug" {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}

	// Create router without default middleware
	router := gin.New()

	healthService := usecase.NewHealthService(deps.Database, log)
	productService := usecase.NewProductService(deps.Products, log)

	s := &Server{
		cfg:            cfg,
		log:            logger.WithComponent(log, "http"),
		router:         router,
		gatherer:       deps.Gatherer,
		healthHandler:  handler.NewHealthHandler(healthService),
		productHandler: handler.NewProductHandler(productService),
	}

	s.setupMiddleware()
	s.setupRoutes()
	s.setupHTTPServer()

	return s
}

// setupMiddleware configures global middleware.
func (s *Server) setupMiddleware() {
	// Order matters: Recovery should be first to catch all panics
	s.router.Use(middleware.Recovery(s.log))
	s.router.Use(middleware.RequestID())
	if s.cfg.Server.IsDevelopment() {
		s.router.Use(func(c *gin.Context) {
			c.Set(response.ExposeDetailsKey, true)
			c.Next()
		})
	}
	s.router.Use(middleware.SecurityHeaders())
	s.router.Use(middleware.CORS())
	s.router.Use(middleware.Logging(s.log))
	if s.cfg.RateLimit.Enabled {
		s.router.Use(middleware.RateLimit(s.cfg.RateLimit, s.log, "/health", s.cfg.Metrics.Path))
	}
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	s.router.GET("/health", s.healthHandler.Health)
	s.router.GET("/health/server", s.healthHandler.Server)
	s.router.GET("/health/db", s.healthHandler.Database)
	s.router.GET("/health/detailed", s.healthHandler.DetailedHealth)

	if s.cfg.Metrics.Enabled && s.gatherer != nil {
		s.router.GET(s.cfg.Metrics.Path, gin.WrapH(promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{})))
	}

	api := s.router.Group("/api")
	{
		api.GET("/products", s.productHandler.List)
		api.POST("/products", s.productHandler.Create)
		api.GET("/products/:id", s.productHandler.Get)
		api.PUT("/products/:id", s.productHandler.Update)
		api.DELETE("/products/:id", s.productHandler.Delete)
	}

	// Handle 404
	s.router.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, response.Error{
			Error: response.ErrorDetail{
				Code:      "NOT_FOUND",
				Message:   fmt.Sprintf("Route %s %s not found", c.Request.Method, c.Request.URL.Path),
				RequestID: middleware.GetRequestID(c),
			},
		})
	})
}

// setupHTTPServer configures the underlying HTTP server.
func (s *Server) setupHTTPServer() {
	s.http = &http.Server{
		Addr:              s.cfg.Server.Addr(),
		Handler:           s.router,
		ReadTimeout:       s.cfg.Server.ReadTimeout,
		ReadHeaderTimeout: s.cfg.Server.ReadTimeout,
		WriteTimeout:      s.cfg.Server.WriteTimeout,
	}
}

// Run starts the HTTP server and blocks until ctx is cancelled or the
// listener fails, then shuts the server down gracefully.
func (s *Server) Run(ctx context.Context) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		s.log.Info("starting HTTP server",
			"addr", s.cfg.Server.Addr(),
		)
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		return s.Shutdown()
	})

	return g.Wait()
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown() error {
	s.log.Info("shutting down server", "timeout", s.cfg.Server.ShutdownTimeout)

	ctx, cancel := context.WithTimeout(context.Background(), s.cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := s.http.Shutdown(ctx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	s.log.Info("server stopped gracefully")
	return nil
}

// Router returns the Gin router for testing.
func (s *Server) Router() *gin.Engine {
	return s.router
}

// WaitForReady waits until the server is ready to accept connections.
// Useful for integration tests.
func (s *Server) WaitForReady(timeout time.Duration) error {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		resp, err := http.Get(fmt.Sprintf("http://%s/health", s.cfg.Server.Addr()))
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return nil
			}
		}
		time.Sleep(10 * time.Millisecond)
	}
	return fmt.Errorf("server not ready after %v", timeout)
}

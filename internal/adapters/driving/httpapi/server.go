// Package httpapi exposes the driving ports as a JSON API served with gin.
package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docsift/internal/core/ports/driving"
	"github.com/custodia-labs/docsift/internal/logger"
)

// ErrMissingSearchService is returned when the search service is not provided.
var ErrMissingSearchService = errors.New("httpapi: search service is required")

// Ports aggregates the driving ports the API calls into. Only Search is
// required; routes backed by a missing port answer 503.
type Ports struct {
	Scan        driving.ScanOrchestrator
	Search      driving.SearchService
	Document    driving.DocumentService
	Settings    driving.SettingsService
	Maintenance driving.MaintenanceService
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p == nil || p.Search == nil {
		return ErrMissingSearchService
	}
	return nil
}

// Server serves the JSON API.
type Server struct {
	ports  *Ports
	engine *gin.Engine

	// base outlives individual requests; background scans run under it.
	base context.Context
}

// NewServer builds the router for ports.
func NewServer(ports *Ports) (*Server, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("validating ports: %w", err)
	}
	s := &Server{ports: ports, base: context.Background()}
	s.engine = s.routes()
	return s, nil
}

// Handler returns the HTTP handler, for tests and embedding.
func (s *Server) Handler() http.Handler {
	return s.engine
}

// Run listens on addr until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context, addr string) error {
	s.base = ctx

	httpServer := &http.Server{
		Addr:              addr,
		Handler:           s.engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx) //nolint:errcheck
	}()

	logger.Info("HTTP API listening on %s", addr)
	err := httpServer.ListenAndServe()
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

func (s *Server) routes() *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(requestLogger())

	r.GET("/health", s.health)

	api := r.Group("/api")
	{
		api.GET("/search", s.search)
		api.GET("/search/suggestions", s.suggestions)

		docs := api.Group("/documents")
		{
			docs.GET("", s.listDocuments)
			docs.GET("/:id", s.getDocument)
			docs.DELETE("/:id", s.deleteDocument)
			docs.POST("/:id/ask", s.askDocument)
			docs.GET("/:id/download", s.downloadDocument)
			docs.POST("/:id/reveal", s.revealDocument)
		}

		api.GET("/categories", s.categories)
		api.GET("/stats", s.stats)

		scan := api.Group("/scan")
		{
			scan.POST("", s.startScan)
			scan.GET("/status", s.scanStatus)
			scan.GET("/history", s.scanHistory)
		}

		settings := api.Group("/settings")
		{
			settings.GET("", s.getSettings)
			settings.PUT("", s.updateSettings)
			settings.POST("/test", s.testSettings)
		}

		admin := api.Group("/admin")
		{
			admin.POST("/reindex", s.reindex)
			admin.POST("/clear", s.clear)
		}
	}

	return r
}

func (s *Server) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":  "healthy",
		"service": "docsift",
	})
}

// requestLogger logs each request through the package logger.
func requestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		logger.Debug("%s %s -> %d (%s)", c.Request.Method, c.Request.URL.Path, c.Writer.Status(), time.Since(start))
	}
}

// Package server provides the HTTP API and page for nextbest.
package server

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/hyperjump/nextbest/internal/config"
	"github.com/hyperjump/nextbest/internal/keyword"
	"github.com/hyperjump/nextbest/internal/recommend"
	"github.com/hyperjump/nextbest/pkg/utils"
)

// Server is the HTTP server. Local and hosted modes serve the same routes;
// they differ in bind address and the page banner.
type Server struct {
	service *recommend.Service
	names   keyword.NameIndex
	config  *config.Config
	metrics http.Handler
	logger  *zap.Logger
	server  *http.Server
}

// Option configures NewServer.
type Option func(*Server)

// WithMetricsHandler mounts h at the configured metrics path.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.metrics = h
	}
}

// WithNameIndex enables product name search.
func WithNameIndex(idx keyword.NameIndex) Option {
	return func(s *Server) {
		s.names = idx
	}
}

// NewServer creates a server with the given dependencies.
func NewServer(service *recommend.Service, cfg *config.Config, logger *zap.Logger, opts ...Option) *Server {
	s := &Server{
		service: service,
		config:  cfg,
		logger:  utils.OrNop(logger),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Router builds the route table.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	if s.config.Server.RequestTimeout > 0 {
		r.Use(middleware.Timeout(s.config.Server.RequestTimeout))
	}

	r.Get("/", s.handleIndex)
	r.Post("/recommend", s.handleRecommend)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/recommendations/{id}", s.handleRecommendations)
		r.Get("/products", s.handleListProducts)
		r.Get("/products/{id}", s.handleGetProduct)
		r.Get("/status", s.handleStatus)
	})
	r.Get("/health", s.handleHealth)
	if s.metrics != nil && s.config.Metrics.Enabled {
		r.Method(http.MethodGet, s.config.Metrics.Path, s.metrics)
	}
	return r
}

// Start starts the HTTP server and blocks until it stops.
func (s *Server) Start() error {
	addr := s.config.Server.Addr()
	s.server = &http.Server{
		Addr:    addr,
		Handler: s.Router(),
	}
	s.logger.Info("Starting server",
		zap.String("addr", addr),
		zap.String("mode", s.config.Server.Mode),
		zap.Int("items", s.service.Index().Size()))
	return s.server.ListenAndServe()
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}

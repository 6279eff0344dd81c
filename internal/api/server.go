// Package api provides the HTTP API server and handlers for the covers service.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-playground/validator/v10"

	"github.com/coverscafe/covers-server/internal/config"
	"github.com/coverscafe/covers-server/internal/http/response"
	"github.com/coverscafe/covers-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	catalogService  *service.CatalogService
	identityService *service.IdentityService
	uploadService   *service.UploadService
	router          *chi.Mux
	validate        *validator.Validate
	apiKey          string
	logger          *slog.Logger
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(catalogService *service.CatalogService, identityService *service.IdentityService, uploadService *service.UploadService, cfg config.ServerConfig, logger *slog.Logger) *Server {
	s := &Server{
		catalogService:  catalogService,
		identityService: identityService,
		uploadService:   uploadService,
		router:          chi.NewRouter(),
		validate:        validator.New(),
		apiKey:          cfg.APIKey,
		logger:          logger,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		MaxAge:         300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Catalog search is public; mirroring writes and needs the key.
		r.Route("/catalog", func(r chi.Router) {
			r.Get("/search", s.handleSearchCatalog)
			r.With(s.requireKey).Post("/mirror", s.handleMirrorCatalog)
		})

		// Artist identity management.
		r.Route("/artists", func(r chi.Router) {
			r.Get("/suggestions", s.handleMergeSuggestions)
			r.With(s.requireKey).Post("/merge", s.handleMergeArtists)
			r.With(s.requireKey).Post("/merge/undo", s.handleUndoMerge)
		})

		// Uploads.
		r.Route("/uploads", func(r chi.Router) {
			r.Use(s.requireKey)
			r.Post("/", s.handleUpload)
			r.Post("/check", s.handleUploadCheck)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}

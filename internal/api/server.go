// Package api provides the HTTP API server and handlers for the Inkwell application.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/inkwellapp/inkwell-server/internal/http/response"
	"github.com/inkwellapp/inkwell-server/internal/ratelimit"
	"github.com/inkwellapp/inkwell-server/internal/service"
)

// Server holds dependencies for HTTP handlers.
type Server struct {
	authService   *service.AuthService
	folderService *service.FolderService
	noteService   *service.NoteService
	adminService  *service.AdminService
	authLimiter   *ratelimit.KeyedRateLimiter
	router        *chi.Mux
	logger        *slog.Logger
	secureCookies bool
}

// NewServer creates a new HTTP server with all routes configured.
func NewServer(
	authService *service.AuthService,
	folderService *service.FolderService,
	noteService *service.NoteService,
	adminService *service.AdminService,
	logger *slog.Logger,
	secureCookies bool,
) *Server {
	s := &Server{
		authService:   authService,
		folderService: folderService,
		noteService:   noteService,
		adminService:  adminService,
		// Credential endpoints allow short bursts then 1 req/s per client IP
		authLimiter:   ratelimit.New(1, 5),
		router:        chi.NewRouter(),
		logger:        logger,
		secureCookies: secureCookies,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Close releases server-held resources.
func (s *Server) Close() {
	s.authLimiter.Stop()
}

// setupMiddleware configures middleware stack.
func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Logger)
	s.router.Use(middleware.Recoverer)
	s.router.Use(middleware.Compress(5))
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))
}

// setupRoutes configures all HTTP routes.
func (s *Server) setupRoutes() {
	// Health check.
	s.router.Get("/health", s.handleHealthCheck)

	// API v1.
	s.router.Route("/api/v1", func(r chi.Router) {
		// Auth endpoints (public, rate limited).
		r.Route("/auth", func(r chi.Router) {
			r.With(s.rateLimitByIP).Post("/register", s.handleRegister)
			r.With(s.rateLimitByIP).Post("/login", s.handleLogin)
			r.Post("/logout", s.handleLogout)
		})

		// Protected user endpoints.
		r.Route("/users", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/me", s.handleGetCurrentUser)
		})

		// Folders (require auth).
		r.Route("/folders", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListFolders)
			r.Post("/", s.handleCreateFolder)
			r.Patch("/{id}", s.handleRenameFolder)
		})

		// Notes (require auth).
		r.Route("/notes", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/", s.handleListNotes)
			r.Post("/", s.handleCreateNote)
			r.Get("/search", s.handleSearchNotes)
			r.Get("/{id}", s.handleGetNote)
			r.Put("/{id}", s.handleUpdateNote)
			r.Delete("/{id}", s.handleDeleteNote)
		})

		// Admin governance (require auth + admin).
		r.Route("/admin", func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Use(s.requireAdmin)
			r.Get("/users", s.handleAdminListUsers)
			r.Get("/users/{id}", s.handleAdminConfirmDeleteUser)
			r.Delete("/users/{id}", s.handleAdminDeleteUser)
			r.Post("/users/{id}/toggle-admin", s.handleAdminToggleAdmin)
		})
	})
}

// handleHealthCheck returns server health status.
func (s *Server) handleHealthCheck(w http.ResponseWriter, _ *http.Request) {
	response.Success(w, map[string]string{
		"status": "healthy",
	}, s.logger)
}

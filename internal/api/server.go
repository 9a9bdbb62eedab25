// Package api exposes the series service over HTTP using huma on a chi
// router.
package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/danielgtaylor/huma/v2"
	"github.com/danielgtaylor/huma/v2/adapters/humachi"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/listenupapp/seriesd/internal/auth"
	"github.com/listenupapp/seriesd/internal/domain"
	domainerrors "github.com/listenupapp/seriesd/internal/errors"
	"github.com/listenupapp/seriesd/internal/logger"
	"github.com/listenupapp/seriesd/internal/metrics"
	"github.com/listenupapp/seriesd/internal/ratelimit"
	"github.com/listenupapp/seriesd/internal/service"
	"github.com/listenupapp/seriesd/internal/store"
)

// Version is reported in the OpenAPI document.
const Version = "1.0.0"

// Options are the server's dependencies.
type Options struct {
	Series      *service.SeriesService
	Store       store.Store
	Tokens      *auth.TokenService
	Metrics     *metrics.Metrics
	// Limiter throttles writes per client IP; nil disables it.
	Limiter     *ratelimit.KeyedRateLimiter
	CORSOrigins []string
	Logger      *logger.Logger
}

// Server holds dependencies for HTTP handlers.
type Server struct {
	series  *service.SeriesService
	store   store.Store
	metrics *metrics.Metrics
	router  *chi.Mux
	api     huma.API
	logger  *logger.Logger
}

// NewServer creates the HTTP server with all routes configured.
func NewServer(opts Options) *Server {
	log := opts.Logger
	if log == nil {
		log = logger.Discard()
	}
	s := &Server{
		series:  opts.Series,
		store:   opts.Store,
		metrics: opts.Metrics,
		router:  chi.NewRouter(),
		logger:  log.WithComponent("api"),
	}

	s.setupMiddleware(opts)

	config := huma.DefaultConfig("Series API", Version)
	config.Components.SecuritySchemes = map[string]*huma.SecurityScheme{
		"bearer": {
			Type:         "http",
			Scheme:       "bearer",
			BearerFormat: "PASETO",
		},
	}
	config.Transformers = append(config.Transformers, EnvelopeTransformer)
	s.api = humachi.New(s.router, config)
	RegisterErrorHandler()

	s.registerHealthRoutes()
	s.registerSeriesRoutes()
	s.registerAuthorRoutes()
	s.registerMembershipRoutes()
	if s.metrics != nil {
		s.router.Handle("/metrics", s.metrics.Handler())
	}
	return s
}

// ServeHTTP implements http.Handler.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// API returns the huma API, for tests and OpenAPI export.
func (s *Server) API() huma.API {
	return s.api
}

func (s *Server) setupMiddleware(opts Options) {
	origins := opts.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(observeMiddleware(s.metrics, s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type"},
		ExposedHeaders: []string{"Retry-After"},
		MaxAge:         300,
	}))
	if opts.Limiter != nil {
		s.router.Use(rateLimitMiddleware(opts.Limiter, s.logger))
	}
	if opts.Tokens != nil {
		s.router.Use(authMiddleware(opts.Tokens))
	}
}

// viewer resolves the caller. A token whose user no longer exists is
// treated as invalid.
func (s *Server) viewer(ctx context.Context) (domain.Viewer, error) {
	v, err := s.series.ResolveViewer(ctx, userIDFrom(ctx))
	if errors.Is(err, domainerrors.ErrNotFound) {
		return domain.Viewer{}, domainerrors.Unauthorized("token user no longer exists")
	}
	return v, err
}

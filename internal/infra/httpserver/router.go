package httpserver

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	applabreports "github.com/bryanwahyu/labsight/internal/application/labreports"
	"github.com/bryanwahyu/labsight/internal/infra/httpserver/respond"
	"github.com/bryanwahyu/labsight/internal/middleware"
)

// Options carries the transport-level collaborators. Only Gate is required.
type Options struct {
	Gate           middleware.Authenticator
	Logger         *zap.Logger
	Metrics        *middleware.Metrics
	Gatherer       prometheus.Gatherer
	HealthCheckers map[string]middleware.HealthChecker
	Readiness      *middleware.Readiness
	AllowedOrigins []string
	MaxUploadBytes int64
}

type Router struct {
	reports   *applabreports.Service
	log       *zap.Logger
	maxUpload int64
}

func NewRouter(reports *applabreports.Service, opts Options) http.Handler {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	r := &Router{reports: reports, log: log, maxUpload: opts.MaxUploadBytes}
	mux := chi.NewRouter()

	mux.Use(chimw.RequestID, chimw.RealIP, chimw.Recoverer)
	if opts.Metrics != nil {
		mux.Use(opts.Metrics.Middleware)
	}
	mux.Use(middleware.Logging(log))
	mux.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins(opts.AllowedOrigins),
		AllowedMethods:   []string{http.MethodGet, http.MethodPost, http.MethodDelete, http.MethodOptions},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	mux.Get("/health", middleware.LivenessHandler)
	mux.Get("/healthz", middleware.HealthHandler(opts.HealthCheckers))
	ready := opts.Readiness
	if ready == nil {
		ready = &middleware.Readiness{}
	}
	mux.Method(http.MethodGet, "/ready", ready)
	if opts.Gatherer != nil {
		mux.Method(http.MethodGet, "/metrics", middleware.Handler(opts.Gatherer))
	}

	mux.Group(func(rt chi.Router) {
		rt.Use(middleware.RequireSession(opts.Gate, log))

		rt.Post("/upload", r.wrap(r.handleUpload))
		rt.Get("/reports", r.wrap(r.handleList))
		rt.Get("/reports/{id}", r.wrap(r.handleGet))
		rt.Delete("/reports/{id}", r.wrap(r.handleDelete))
		rt.Post("/reports/{id}/chat", r.wrap(r.handleReportChat))
		rt.Post("/chat", r.wrap(r.handleChat))
		rt.Post("/analyze", r.wrap(r.handleAnalyze))
	})

	return mux
}

func allowedOrigins(origins []string) []string {
	if len(origins) == 0 {
		return []string{"http://localhost:3000"}
	}
	return origins
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

func (r *Router) wrap(h handlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, req *http.Request) {
		if err := h(w, req); err != nil {
			respond.Error(w, r.log, err)
		}
	}
}

package api

import (
	"context"
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/Harshitk-cp/filinggraph/internal/api/handlers"
	mw "github.com/Harshitk-cp/filinggraph/internal/api/middleware"
	"github.com/Harshitk-cp/filinggraph/internal/buildconfig"
	"github.com/Harshitk-cp/filinggraph/internal/domain"
	"github.com/Harshitk-cp/filinggraph/internal/service"
	"github.com/Harshitk-cp/filinggraph/internal/store"
)

// Deps are the collaborators the HTTP API serves. Store, Embedder and Ping
// are optional.
type Deps struct {
	Extractor *service.ExtractionService
	Store     *store.ExtractionStore
	Embedder  domain.EmbeddingClient
	Ping      func(ctx context.Context) error

	APIKey         string
	RateLimitRPS   float64
	RateLimitBurst int
}

// App holds the router and the state shared by its operational endpoints.
type App struct {
	Router      *chi.Mux
	Metrics     *mw.Metrics
	RateLimiter *mw.RateLimiter
	startTime   time.Time
}

func NewApp(deps Deps, logger *zap.Logger) *App {
	var (
		sink      domain.ResultSink
		documents handlers.DocumentStore
	)
	if deps.Store != nil {
		sink = deps.Store
		documents = deps.Store
	}
	return newApp(deps, deps.Extractor, deps.Extractor, sink, documents, logger)
}

func newApp(deps Deps, extractor handlers.Extractor, resolver handlers.CompanyResolver, sink domain.ResultSink, documents handlers.DocumentStore, logger *zap.Logger) *App {
	extractHandler := handlers.NewExtractHandler(extractor, sink, logger)
	registryHandler := handlers.NewRegistryHandler(resolver)

	r := chi.NewRouter()
	app := &App{
		Router:      r,
		Metrics:     mw.NewMetrics(),
		RateLimiter: mw.NewRateLimiter(deps.RateLimitRPS, deps.RateLimitBurst),
		startTime:   time.Now(),
	}

	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.Metrics.Middleware)
	r.Use(mw.Logging(logger))
	r.Use(middleware.Recoverer)
	r.Use(app.RateLimiter.Middleware)

	r.Get("/health", healthHandler(deps.Ping))
	r.Get("/metrics", app.metricsHandler())
	r.Get("/version", versionHandler)

	r.Route("/v1", func(r chi.Router) {
		r.Use(mw.APIKeyAuth(deps.APIKey))

		r.Post("/extract", extractHandler.Extract)
		r.Get("/registry/lookup", registryHandler.Lookup)

		if documents != nil {
			documentHandler := handlers.NewDocumentHandler(documents, deps.Embedder, logger)
			r.Route("/documents", func(r chi.Router) {
				r.Get("/", documentHandler.List)
				r.Get("/result", documentHandler.GetResult)
			})
			r.Get("/relationships/similar", documentHandler.Similar)
		}
	})

	return app
}

func NewRouter(deps Deps, logger *zap.Logger) *chi.Mux {
	return NewApp(deps, logger).Router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func healthHandler(ping func(ctx context.Context) error) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if ping != nil {
			if err := ping(r.Context()); err != nil {
				writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "error", "error": err.Error()})
				return
			}
		}
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

func versionHandler(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, buildconfig.VersionInfo())
}

func (app *App) metricsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var memStats runtime.MemStats
		runtime.ReadMemStats(&memStats)

		uptime := time.Since(app.startTime)

		writeJSON(w, http.StatusOK, map[string]any{
			"uptime_seconds":     uptime.Seconds(),
			"uptime_human":       uptime.Round(time.Second).String(),
			"requests":           app.Metrics.Snapshot(),
			"rate_limit_clients": app.RateLimiter.Len(),
			"goroutines":         runtime.NumGoroutine(),
			"memory": map[string]any{
				"alloc_mb":       float64(memStats.Alloc) / 1024 / 1024,
				"total_alloc_mb": float64(memStats.TotalAlloc) / 1024 / 1024,
				"sys_mb":         float64(memStats.Sys) / 1024 / 1024,
				"num_gc":         memStats.NumGC,
			},
			"go_version": runtime.Version(),
		})
	}
}

var (
	_ handlers.Extractor       = (*service.ExtractionService)(nil)
	_ handlers.CompanyResolver = (*service.ExtractionService)(nil)
	_ handlers.DocumentStore   = (*store.ExtractionStore)(nil)
)

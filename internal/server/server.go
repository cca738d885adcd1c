// Package server assembles the HTTP router and runs it until the context is
// cancelled.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"golang.org/x/sync/errgroup"
	"golang.org/x/time/rate"

	"github.com/s1natex/tasks-comments-api/internal/middleware"
	"github.com/s1natex/tasks-comments-api/internal/tasks"
)

type Options struct {
	Store          tasks.Store
	Logger         *slog.Logger
	RequestTimeout time.Duration
	AllowedOrigins []string
	Limiter        *rate.Limiter // nil disables rate limiting
}

// NewRouter wires the health, readiness and metrics endpoints, the task and
// comment routes, and the middleware stack.
func NewRouter(opts Options) *chi.Mux {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	timeout := opts.RequestTimeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	origins := opts.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()

	// RequestID first so everything below can log and trace it.
	r.Use(chimw.RequestID)
	r.Use(middleware.RequestLogger(logger, "/health", "/metrics"))
	r.Use(chimw.Recoverer)
	r.Use(chimw.StripSlashes)
	r.Use(middleware.MetricsMiddleware)
	r.Use(middleware.TracingMiddleware)
	r.Use(chimw.Timeout(timeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", "Traceparent", "X-Request-ID"},
		ExposedHeaders:   []string{"Trace-Id", "X-Request-ID"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		writeStatus(w, http.StatusOK, "ok")
	})
	r.Get("/ready", func(w http.ResponseWriter, r *http.Request) {
		if err := opts.Store.Ping(r.Context()); err != nil {
			logger.Warn("readiness_failed", slog.String("error", err.Error()))
			writeStatus(w, http.StatusServiceUnavailable, "unavailable")
			return
		}
		writeStatus(w, http.StatusOK, "ready")
	})
	r.Method(http.MethodGet, "/metrics", middleware.MetricsHandler())

	r.Group(func(r chi.Router) {
		r.Use(middleware.RateLimitMiddleware(opts.Limiter))
		tasks.RegisterRoutes(r, opts.Store, logger)
	})

	return r
}

func writeStatus(w http.ResponseWriter, code int, status string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(map[string]string{"status": status})
}

// Run serves h on addr until ctx is cancelled, then shuts down gracefully,
// giving in-flight requests up to grace to finish.
func Run(ctx context.Context, addr string, h http.Handler, logger *slog.Logger, grace time.Duration) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           h,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("server_listen", slog.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("server_shutdown")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), grace)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

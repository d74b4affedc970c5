// Package server wires the HTTP surface: health endpoints plus one
// webhook route per configured integration.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

const requestIDHeader = "X-Request-ID"

// Route pairs an HTTP path with the handler that should serve it.
type Route struct {
	Path    string
	Handler http.Handler
}

// New builds the top-level router: structured request logging, panic
// recovery, always-200 health endpoints, a Prometheus scrape endpoint,
// and the caller-supplied webhook routes.
func New(routes []Route, log *zap.Logger) http.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	r := chi.NewRouter()
	r.Use(requestID)
	r.Use(requestLogger(log))
	r.Use(middleware.Recoverer)

	r.Get("/-/healthz", healthz)
	r.Get("/-/ready", ready)
	r.Handle("/metrics", promhttp.Handler())

	for _, route := range routes {
		r.Method(http.MethodPost, route.Path, route.Handler)
	}

	return r
}

func healthz(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

func ready(w http.ResponseWriter, _ *http.Request) {
	w.WriteHeader(http.StatusOK)
}

// requestID assigns a UUID to every request lacking one already, so log
// lines for a single webhook delivery can be correlated end to end.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get(requestIDHeader) == "" {
			r.Header.Set(requestIDHeader, uuid.NewString())
		}
		w.Header().Set(requestIDHeader, r.Header.Get(requestIDHeader))
		next.ServeHTTP(w, r)
	})
}

// requestLogger logs one structured line per request at debug level.
func requestLogger(log *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)
			log.Debug("handled request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Int("bytes", ww.BytesWritten()),
				zap.String("request_id", r.Header.Get(requestIDHeader)),
			)
		})
	}
}

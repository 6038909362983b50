// Package admin serves a small management API next to the proxy.
package admin

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"

	"github.com/ashpect/cacheproxy/pkg/accesslog"
	"github.com/ashpect/cacheproxy/pkg/cache"
)

const defaultLogLimit = 100

// LogReader returns recent access log entries, newest first.
type LogReader interface {
	Recent(ctx context.Context, n int) ([]accesslog.Entry, error)
}

type handler struct {
	cache cache.Cache
	logs  LogReader
	log   zerolog.Logger
}

// NewRouter builds the management routes. logs may be nil when the access
// log is disabled.
func NewRouter(c cache.Cache, logs LogReader, logger zerolog.Logger) http.Handler {
	h := &handler{cache: c, logs: logs, log: logger}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(requestLogger(logger))

	r.Get("/stats", h.stats)
	r.Get("/cache", h.entries)
	r.Delete("/cache", h.purge)
	r.Delete("/cache/entry", h.remove)
	r.Get("/logs", h.recentLogs)
	return r
}

// requestLogger logs every admin request with its duration.
func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			start := time.Now()

			next.ServeHTTP(ww, r)

			logger.Debug().
				Str("method", r.Method).
				Str("path", r.URL.Path).
				Int("status", ww.Status()).
				Dur("took", time.Since(start)).
				Msg("admin request")
		})
	}
}

func (h *handler) stats(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.cache.Snapshot())
}

func (h *handler) entries(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, h.cache.Entries())
}

func (h *handler) purge(w http.ResponseWriter, r *http.Request) {
	h.cache.Purge()
	h.log.Info().Msg("cache purged")
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) remove(w http.ResponseWriter, r *http.Request) {
	url := r.URL.Query().Get("url")
	if url == "" {
		http.Error(w, "missing url parameter", http.StatusBadRequest)
		return
	}
	if !h.cache.Remove(url) {
		http.Error(w, "not cached", http.StatusNotFound)
		return
	}
	h.log.Info().Str("url", url).Msg("cache entry removed")
	w.WriteHeader(http.StatusNoContent)
}

func (h *handler) recentLogs(w http.ResponseWriter, r *http.Request) {
	if h.logs == nil {
		http.Error(w, "access log disabled", http.StatusNotFound)
		return
	}
	limit := defaultLogLimit
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
			return
		}
		limit = n
	}
	entries, err := h.logs.Recent(r.Context(), limit)
	if err != nil {
		h.log.Error().Err(err).Msg("read access log")
		http.Error(w, "could not read access log", http.StatusInternalServerError)
		return
	}
	h.writeJSON(w, entries)
}

func (h *handler) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.log.Warn().Err(err).Msg("write admin response")
	}
}

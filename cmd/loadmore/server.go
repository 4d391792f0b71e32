package main

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/JohannesKaufmann/html-to-markdown/v2/converter"
	"github.com/Sternrassler/loadmore/pkg/metrics"
	"github.com/Sternrassler/loadmore/pkg/pagination"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

type server struct {
	scroller *pagination.Scroller
	redis    *redis.Client // nil with the in-memory ledger
	md       *converter.Converter
	logger   zerolog.Logger
}

func newServer(scroller *pagination.Scroller, rdb *redis.Client, logger zerolog.Logger) *server {
	return &server{
		scroller: scroller,
		redis:    rdb,
		md:       newMarkdownConverter(),
		logger:   logger,
	}
}

func (s *server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", s.handleHealth)
	r.Get("/ready", s.handleReady)
	r.Handle("/metrics", metrics.Handler())
	r.Get("/expand", s.handleExpand)

	return r
}

func (s *server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "OK")
}

func (s *server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.redis != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := s.redis.Ping(ctx).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("Readiness check failed")
			http.Error(w, "redis unavailable", http.StatusServiceUnavailable)
			return
		}
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, "READY")
}

// handleExpand answers GET /expand?url=...&format=html|markdown. A listing
// that failed midway is still returned, flagged by X-Loadmore-Error.
func (s *server) handleExpand(w http.ResponseWriter, r *http.Request) {
	target := r.URL.Query().Get("url")
	u, err := url.Parse(target)
	if target == "" || err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		http.Error(w, "url must be an absolute http(s) URL", http.StatusBadRequest)
		return
	}

	format := r.URL.Query().Get("format")
	if format == "" {
		format = formatHTML
	}
	if err := checkFormat(format); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	doc, stats, err := s.scroller.Expand(r.Context(), target)
	if doc == nil {
		s.logger.Warn().Err(err).Str("url", target).Msg("Expansion failed")
		http.Error(w, fmt.Sprintf("expansion failed: %v", err), http.StatusBadGateway)
		return
	}

	body, renderErr := render(s.md, doc, format)
	if renderErr != nil {
		http.Error(w, renderErr.Error(), http.StatusInternalServerError)
		return
	}

	if format == formatMarkdown {
		w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	} else {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
	}
	w.Header().Set("X-Loadmore-Pages", strconv.Itoa(stats.Pages))
	w.Header().Set("X-Loadmore-Stop", string(stats.Stop))
	if err != nil {
		w.Header().Set("X-Loadmore-Error", err.Error())
	}

	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, body)
}

package web

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/KNICEX/trade-monitor/internal/entity"
	"github.com/KNICEX/trade-monitor/internal/repo"
	"github.com/KNICEX/trade-monitor/internal/service/monitor"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

const (
	defaultAlertLimit = 20
	maxAlertLimit     = 200
)

type StatsProvider interface {
	Stats() monitor.Stats
}

// StatusServer 只读的运行状态接口, journal 为 nil 时 /alerts 返回 404
type StatusServer struct {
	stats   StatsProvider
	journal repo.AlertRepo
	log     zerolog.Logger
	router  chi.Router
	server  *http.Server
}

func NewStatusServer(addr string, stats StatsProvider, journal repo.AlertRepo, log zerolog.Logger) *StatusServer {
	s := &StatusServer{
		stats:   stats,
		journal: journal,
		log:     log.With().Str("component", "status").Logger(),
	}

	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequest)
	r.Get("/healthz", s.handleHealth)
	r.Get("/status", s.handleStatus)
	if journal != nil {
		r.Get("/alerts", s.handleAlerts)
	}
	s.router = r

	s.server = &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *StatusServer) Handler() http.Handler {
	return s.router
}

// Run 监听直到 ctx 结束, 随后优雅关闭
func (s *StatusServer) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.log.Info().Str("addr", s.server.Addr).Msg("status server listening")
		errCh <- s.server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := s.server.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *StatusServer) handleStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.stats.Stats())
}

func (s *StatusServer) handleAlerts(w http.ResponseWriter, r *http.Request) {
	limit := defaultAlertLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			writeJSON(w, http.StatusBadRequest, map[string]string{"error": "limit must be a positive integer"})
			return
		}
		limit = min(n, maxAlertLimit)
	}

	alerts, err := s.journal.FindRecent(r.Context(), limit)
	if err != nil {
		s.log.Error().Err(err).Msg("failed to load alerts")
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load alerts"})
		return
	}
	if alerts == nil {
		alerts = []entity.Alert{}
	}
	writeJSON(w, http.StatusOK, alerts)
}

func (s *StatusServer) logRequest(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", ww.Status()).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

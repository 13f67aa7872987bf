// Package server exposes the scraper over HTTP: a liveness page on GET /
// and a synchronous trigger on POST /run-scraper.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/ymakhloufi/kiwi-rates/internal/pkg/model"
	"go.uber.org/zap"
)

const livenessBody = "Mortgage Rate Scraper Service"

// Runner triggers one scrape cycle.
type Runner interface {
	Run(ctx context.Context) (model.Result, error)
}

type Server struct {
	runner Runner
	logger *zap.Logger
	http   *http.Server
}

func New(port int, scrapeTimeout time.Duration, runner Runner, logger *zap.Logger) *Server {
	s := &Server{runner: runner, logger: logger}
	s.http = &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           s.routes(),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		// a trigger blocks for the whole scrape; allow it headroom past
		// the fetch timeout before the connection is cut
		WriteTimeout: scrapeTimeout + 30*time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return s
}

func (s *Server) routes() *mux.Router {
	r := mux.NewRouter()
	r.HandleFunc("/", s.handleRoot).Methods(http.MethodGet)
	r.HandleFunc("/run-scraper", s.handleRun).Methods(http.MethodPost)
	return r
}

// Handler exposes the routing table.
func (s *Server) Handler() http.Handler {
	return s.http.Handler
}

// Run serves until the context is cancelled or the listener fails, then
// drains in-flight requests.
func (s *Server) Run(ctx context.Context) error {
	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("http server listening", zap.String("addr", s.http.Addr))
		if err := s.http.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("http server failed: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down http server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := s.http.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down cleanly: %w", err)
	}
	return nil
}

func (s *Server) handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(livenessBody))
}

type runSuccess struct {
	Status       string `json:"status"`
	RatesFound   int    `json:"rates_found"`
	RatesUpdated int    `json:"rates_updated"`
	AsOf         string `json:"as_of"`
	TookMs       int64  `json:"took_ms"`
}

type runFailure struct {
	Status string `json:"status"`
	Error  string `json:"error"`
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	s.logger.Info("scrape triggered", zap.String("remote", r.RemoteAddr))

	result, err := s.runner.Run(r.Context())
	if err != nil {
		s.logger.Error("scrape run failed", zap.Error(err))
		writeJSON(w, http.StatusInternalServerError, runFailure{Status: "error", Error: err.Error()})
		return
	}

	writeJSON(w, http.StatusOK, runSuccess{
		Status:       "ok",
		RatesFound:   result.Unique,
		RatesUpdated: result.Updated,
		AsOf:         result.AsOf.String(),
		TookMs:       result.Took.Milliseconds(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"msg-generator/pkg/interfaces"
)

const defaultRunsLimit = 20

// MetricsHTTPServer exposes Prometheus metrics, a health check and, when a
// run repository is configured, the recent run history.
type MetricsHTTPServer struct {
	server    *http.Server
	addr      string
	gatherer  prometheus.Gatherer
	runs      interfaces.RunRepository
	isRunning bool
}

// NewMetricsHTTPServer creates the server. runs may be nil.
func NewMetricsHTTPServer(addr string, gatherer prometheus.Gatherer, runs interfaces.RunRepository) *MetricsHTTPServer {
	return &MetricsHTTPServer{
		addr:     addr,
		gatherer: gatherer,
		runs:     runs,
	}
}

func (s *MetricsHTTPServer) Start() error {
	if s.isRunning {
		return nil
	}

	s.server = &http.Server{
		Addr:         s.addr,
		Handler:      s.Handler(),
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	s.isRunning = true

	go func() {
		slog.Info("HTTP server started", "address", s.addr)
		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed to start or encountered runtime error",
				"error", err,
				"address", s.addr)
		}
	}()

	return nil
}

// Handler returns the routed handler wrapped in request logging.
func (s *MetricsHTTPServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	mux.HandleFunc("/health", s.healthCheckHandler())
	mux.HandleFunc("/runs", s.listRunsHandler())

	return s.loggingMiddleware(mux)
}

func (s *MetricsHTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		ww := &responseWriterWrapper{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(ww, r)

		slog.Debug("HTTP request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", ww.statusCode,
			"duration", time.Since(start),
			"remote_addr", r.RemoteAddr,
		)
	})
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (w *responseWriterWrapper) WriteHeader(statusCode int) {
	w.statusCode = statusCode
	w.ResponseWriter.WriteHeader(statusCode)
}

func (s *MetricsHTTPServer) healthCheckHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{
			"status": "ok",
			"time":   time.Now().Format(time.RFC3339),
		})
	}
}

type runResponse struct {
	CorrelationID string    `json:"cid"`
	Publisher     string    `json:"publisher"`
	Topic         string    `json:"topic"`
	Sent          int       `json:"sent"`
	Failed        int       `json:"failed"`
	Bytes         int64     `json:"bytes"`
	StartedAt     time.Time `json:"started_at"`
	FinishedAt    time.Time `json:"finished_at"`
	Rate          float64   `json:"msgs_per_second"`
}

func (s *MetricsHTTPServer) listRunsHandler() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
			return
		}
		if s.runs == nil {
			http.Error(w, "run history is disabled", http.StatusNotFound)
			return
		}

		limit := defaultRunsLimit
		if v := r.URL.Query().Get("limit"); v != "" {
			n, err := strconv.Atoi(v)
			if err != nil || n < 1 {
				http.Error(w, "limit must be a positive integer", http.StatusBadRequest)
				return
			}
			limit = n
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		runs, err := s.runs.ListRuns(ctx, limit)
		if err != nil {
			slog.Error("Failed to list runs", "error", err)
			http.Error(w, "failed to list runs", http.StatusInternalServerError)
			return
		}

		resp := make([]runResponse, 0, len(runs))
		for _, run := range runs {
			resp = append(resp, runResponse{
				CorrelationID: run.CorrelationID,
				Publisher:     run.Publisher,
				Topic:         run.Topic,
				Sent:          run.Sent,
				Failed:        run.Failed,
				Bytes:         run.Bytes,
				StartedAt:     run.StartedAt,
				FinishedAt:    run.FinishedAt,
				Rate:          run.Rate(),
			})
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Failed to encode response", "error", err)
	}
}

func (s *MetricsHTTPServer) Shutdown(ctx context.Context) error {
	if !s.isRunning || s.server == nil {
		return nil
	}

	err := s.server.Shutdown(ctx)
	switch {
	case err == nil:
		slog.Info("Metrics server stopped")
	case errors.Is(err, context.DeadlineExceeded):
		slog.Warn("Metrics server did not drain in time, closing connections", "error", err)
	default:
		slog.Error("Metrics server shutdown failed", "error", err)
	}
	if err != nil {
		if closeErr := s.server.Close(); closeErr != nil {
			slog.Error("Failed to close metrics server", "error", closeErr)
		}
	}

	s.isRunning = false
	return err
}

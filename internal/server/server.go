// Package server exposes the analysis engine over a small JSON HTTP API.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/ppiankov/newsintel/internal/model"
	"github.com/ppiankov/newsintel/internal/pipeline"
	"github.com/ppiankov/newsintel/internal/worker"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
)

// Analyzer is the engine surface the API needs
type Analyzer interface {
	Analyze(ctx context.Context, input string) (*model.AnalysisReport, error)
	AnalyzeURL(ctx context.Context, rawURL string) (*model.AnalysisReport, error)
	AnalyzeSource(ctx context.Context, source string) (*model.AnalysisReport, error)
}

// maxBatchInputs bounds one /v1/batch request
const maxBatchInputs = 50

// Server holds the routes and their dependencies
type Server struct {
	analyzer     Analyzer
	cfg          model.ServerConfig
	batchWorkers int
	router       chi.Router
}

// New creates a server; routes are mounted immediately
func New(analyzer Analyzer, cfg model.ServerConfig, batchWorkers int) *Server {
	if cfg.RequestTimeout <= 0 {
		cfg.RequestTimeout = 45 * time.Second
	}
	if cfg.MaxInputBytes <= 0 {
		cfg.MaxInputBytes = 1 << 20
	}
	if batchWorkers <= 0 {
		batchWorkers = 4
	}
	s := &Server{analyzer: analyzer, cfg: cfg, batchWorkers: batchWorkers}
	s.router = s.routes()
	return s
}

// Handler returns the root http.Handler
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) routes() chi.Router {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: s.cfg.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/healthz", s.handleHealth)
	r.Route("/v1", func(r chi.Router) {
		r.Use(middleware.Timeout(s.cfg.RequestTimeout))
		r.Post("/analyze", s.handleAnalyze)
		r.Post("/batch", s.handleBatch)
	})
	return r
}

// ListenAndServe runs until ctx is cancelled, then shuts down gracefully
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.cfg.Addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		zap.L().Info("starting server", zap.String("addr", s.cfg.Addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return eris.Wrap(err, "server listen")
		}
		return nil
	case <-ctx.Done():
		zap.L().Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	}
}

type analyzeRequest struct {
	Text string `json:"text"`
	URL  string `json:"url"`
}

type errorResponse struct {
	Error string `json:"error"`
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleAnalyze(w http.ResponseWriter, r *http.Request) {
	var req analyzeRequest
	if !s.decode(w, r, &req) {
		return
	}

	var (
		report *model.AnalysisReport
		err    error
	)
	switch {
	case strings.TrimSpace(req.URL) != "":
		if !pipeline.IsURL(req.URL) {
			writeJSON(w, http.StatusBadRequest, errorResponse{Error: "url must be an absolute http(s) URL"})
			return
		}
		report, err = s.analyzer.AnalyzeURL(r.Context(), strings.TrimSpace(req.URL))
	default:
		report, err = s.analyzer.Analyze(r.Context(), req.Text)
	}
	if err != nil {
		status, msg := statusFor(err)
		zap.L().Warn("analysis failed", zap.String("request_id", middleware.GetReqID(r.Context())), zap.Error(err))
		writeJSON(w, status, errorResponse{Error: msg})
		return
	}
	writeJSON(w, http.StatusOK, report)
}

type batchRequest struct {
	Inputs []string `json:"inputs"`
}

type batchItem struct {
	Index  int                   `json:"index"`
	Source string                `json:"source"`
	Report *model.AnalysisReport `json:"report,omitempty"`
	Error  string                `json:"error,omitempty"`
}

func (s *Server) handleBatch(w http.ResponseWriter, r *http.Request) {
	var req batchRequest
	if !s.decode(w, r, &req) {
		return
	}
	if len(req.Inputs) == 0 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "inputs must not be empty"})
		return
	}
	if len(req.Inputs) > maxBatchInputs {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "too many inputs"})
		return
	}

	results := worker.NewBatchProcessor(s.analyzer, s.batchWorkers).ProcessInputs(r.Context(), req.Inputs)
	items := make([]batchItem, len(results))
	for i, res := range results {
		items[i] = batchItem{Index: res.Index, Source: res.Source, Report: res.Report}
		if res.Error != nil {
			_, items[i].Error = statusFor(res.Error)
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"results": items})
}

func (s *Server) decode(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxInputBytes)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeJSON(w, http.StatusRequestEntityTooLarge, errorResponse{Error: "request body too large"})
			return false
		}
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid request body"})
		return false
	}
	return true
}

// statusFor maps engine errors onto HTTP statuses
func statusFor(err error) (int, string) {
	var fetchStatus *pipeline.StatusError
	switch {
	case errors.Is(err, pipeline.ErrEmptyInput):
		return http.StatusBadRequest, "input is empty"
	case errors.Is(err, pipeline.ErrDisallowed):
		return http.StatusForbidden, "fetching this URL is disallowed by robots.txt"
	case errors.As(err, &fetchStatus):
		return http.StatusBadGateway, fetchStatus.Error()
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "analysis timed out"
	default:
		return http.StatusInternalServerError, "analysis failed"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		zap.L().Debug("write response", zap.Error(err))
	}
}

func requestLogger(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		zap.L().Debug("request",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("took", time.Since(start)),
		)
	})
}

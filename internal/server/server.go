// Package server exposes render passes over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/KaramelBytes/loanlens-cli/internal/dashboard"
	"github.com/KaramelBytes/loanlens-cli/internal/display"
	"github.com/KaramelBytes/loanlens-cli/internal/logging"
	"github.com/KaramelBytes/loanlens-cli/internal/regression"
	"golang.org/x/sync/errgroup"
)

// Options configures the HTTP server.
type Options struct {
	Addr           string
	RateLimitRPS   float64
	RateLimitBurst int
	// DataDir is the only directory request paths may name. Empty disables
	// path overrides; requests then use the configured dataset.
	DataDir string
	// TrustProxy keys rate limits on the first X-Forwarded-For hop.
	TrustProxy bool
	// LimiterIdle evicts unused client limiters; 0 means DefaultLimiterIdle.
	LimiterIdle time.Duration
	// ShutdownTimeout bounds graceful shutdown; 0 means 5s.
	ShutdownTimeout time.Duration
}

// Server serves dashboard pages and predictions.
type Server struct {
	svc     *dashboard.Service
	opts    Options
	limiter *Limiter
	logger  *slog.Logger
	mux     *http.ServeMux
}

// New builds a server around svc.
func New(svc *dashboard.Service, opts Options) *Server {
	s := &Server{
		svc:     svc,
		opts:    opts,
		limiter: NewLimiter(opts.RateLimitRPS, opts.RateLimitBurst, opts.LimiterIdle),
		logger:  logging.New("server"),
		mux:     http.NewServeMux(),
	}
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /api/dashboard", s.handleDashboard)
	s.mux.HandleFunc("POST /api/predict", s.handlePredict)
	return s
}

// Handler returns the routed handler wrapped in logging and rate limiting.
func (s *Server) Handler() http.Handler {
	return s.logRequests(s.rateLimit(s.mux))
}

// ListenAndServe serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:              s.opts.Addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	timeout := s.opts.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		s.logger.Info("listening", "addr", s.opts.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Info("request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"client", clientKey(r, s.opts.TrustProxy),
			"elapsed", time.Since(start),
		)
	})
}

func (s *Server) rateLimit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.Allow(clientKey(r, s.opts.TrustProxy)) {
			w.Header().Set("Retry-After", "1")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type dashboardResponse struct {
	Page    display.Page       `json:"page"`
	Outcome *dashboard.Outcome `json:"outcome"`
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	path, err := s.resolveDataset(q.Get("path"))
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	req := dashboard.Request{Path: path}
	if q.Has("age") {
		raw := q.Get("age")
		age, err := strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid age %q", raw))
			return
		}
		req.Age = &age
	}
	secs, err := dashboard.ParseSections(q.Get("sections"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	req.Sections = secs

	rec := display.NewRecorder()
	oc, err := s.svc.Render(r.Context(), req, rec)
	if err != nil {
		s.writeRenderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, dashboardResponse{Page: rec.Page(), Outcome: oc})
}

type predictRequest struct {
	Path string `json:"path"`
	Age  *int   `json:"age"`
}

type predictResponse struct {
	Age        int     `json:"age"`
	Prediction float64 `json:"prediction"`
	RMSE       float64 `json:"rmse"`
	R2         float64 `json:"r2"`
	Slope      float64 `json:"slope"`
	Intercept  float64 `json:"intercept"`
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var in predictRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<16))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&in); err != nil {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("invalid request body: %v", err))
		return
	}
	path, err := s.resolveDataset(in.Path)
	if err != nil {
		writeError(w, http.StatusForbidden, err.Error())
		return
	}
	req := dashboard.Request{Path: path, Age: in.Age, Sections: []dashboard.Section{dashboard.SectionModel}}
	oc, err := s.svc.Render(r.Context(), req, display.NewRecorder())
	if err != nil {
		s.writeRenderError(w, err)
		return
	}
	switch {
	case oc.FileMissing:
		writeError(w, http.StatusNotFound, fmt.Sprintf("file %q not found", oc.Path))
		return
	case oc.TrainErr != nil:
		writeError(w, http.StatusUnprocessableEntity, oc.TrainErr.Error())
		return
	case oc.Training == nil || oc.Prediction == nil:
		writeError(w, http.StatusUnprocessableEntity, "no data available to train the model")
		return
	}
	writeJSON(w, http.StatusOK, predictResponse{
		Age:        oc.Prediction.Age,
		Prediction: oc.Prediction.Amount,
		RMSE:       oc.Training.Metrics.RMSE,
		R2:         oc.Training.Metrics.R2,
		Slope:      oc.Training.Model.Slope,
		Intercept:  oc.Training.Model.Intercept,
	})
}

// errPathNotAllowed rejects request paths outside the data directory.
var errPathNotAllowed = errors.New("dataset path not allowed")

// resolveDataset maps a request path to a file inside DataDir. An empty path
// selects the configured dataset.
func (s *Server) resolveDataset(raw string) (string, error) {
	if raw == "" {
		return "", nil
	}
	if s.opts.DataDir == "" {
		return "", fmt.Errorf("%w: path overrides are disabled", errPathNotAllowed)
	}
	root, err := filepath.Abs(s.opts.DataDir)
	if err != nil {
		return "", fmt.Errorf("resolve data dir: %w", err)
	}
	p := raw
	if !filepath.IsAbs(p) {
		p = filepath.Join(root, p)
	}
	p = filepath.Clean(p)
	outside := fmt.Errorf("%w: %q is outside the data directory", errPathNotAllowed, raw)
	if !within(root, p) {
		return "", outside
	}
	// Symlinks must not lead out of the data directory either.
	if real, err := filepath.EvalSymlinks(p); err == nil {
		realRoot, err := filepath.EvalSymlinks(root)
		if err != nil || !within(realRoot, real) {
			return "", outside
		}
	}
	return p, nil
}

func within(root, p string) bool {
	rel, err := filepath.Rel(root, p)
	return err == nil && rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator))
}

func (s *Server) writeRenderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, regression.ErrAgeOutOfRange):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		writeError(w, http.StatusServiceUnavailable, err.Error())
	case errors.Is(err, regression.ErrDegenerateSplit):
		writeError(w, http.StatusUnprocessableEntity, err.Error())
	default:
		s.logger.Error("render failed", "error", err)
		writeError(w, http.StatusInternalServerError, err.Error())
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}

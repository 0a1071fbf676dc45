// Package api serves the community tracking pipeline over HTTP.
//
// Clients upload one CSV edge list per snapshot to POST /analyze/ and get
// back one record per snapshot. GET /health and GET /metrics expose
// liveness and Prometheus metrics.
package api

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/dd0wney/cluso-dyncomm/pkg/algorithms"
	"github.com/dd0wney/cluso-dyncomm/pkg/api/middleware"
	"github.com/dd0wney/cluso-dyncomm/pkg/config"
	"github.com/dd0wney/cluso-dyncomm/pkg/logging"
	"github.com/dd0wney/cluso-dyncomm/pkg/metrics"
)

// multipartMemory is how much of an upload is buffered in memory before
// spilling to temporary files.
const multipartMemory = 8 << 20

// Server represents the HTTP API server
type Server struct {
	detection atomic.Pointer[config.DetectionConfig]
	maxFiles  int
	logger    logging.Logger
	metrics   *metrics.Registry
	limiter   *middleware.RateLimiter
	handler   http.Handler
	startTime time.Time
}

// NewServer creates a new API server from cfg. A nil logger discards logs
// and a nil registry gets a private one.
func NewServer(cfg *config.Config, logger logging.Logger, reg *metrics.Registry) (*Server, error) {
	if logger == nil {
		logger = logging.NewNopLogger()
	}
	if reg == nil {
		reg = metrics.NewRegistry()
	}

	trusted, err := middleware.ParseTrustedProxies(cfg.Server.TrustedProxies)
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	s := &Server{
		maxFiles:  cfg.Server.MaxFiles,
		logger:    logger,
		metrics:   reg,
		startTime: time.Now(),
	}
	if err := s.SetDetection(cfg.Detection); err != nil {
		return nil, err
	}

	if cfg.Server.RateLimitRPS > 0 {
		rlConfig := middleware.DefaultRateLimitConfig()
		rlConfig.RequestsPerSecond = cfg.Server.RateLimitRPS
		if cfg.Server.RateLimitBurst > 0 {
			rlConfig.BurstSize = cfg.Server.RateLimitBurst
		}
		s.limiter = middleware.NewRateLimiter(rlConfig, logger)
	}

	cors := middleware.DefaultCORSConfig()
	if len(cfg.Server.CORSOrigins) > 0 {
		cors.AllowedOrigins = cfg.Server.CORSOrigins
	}

	s.handler = chain(s.routes(),
		middleware.PanicRecovery(logger),
		middleware.RequestID(),
		middleware.Logging(logger),
		middleware.Metrics(reg, pathLabel),
		middleware.CORS(cors),
		middleware.SecurityHeaders(&middleware.SecurityHeadersConfig{}),
		middleware.RateLimit(s.limiter, middleware.ClientIP(trusted)),
		middleware.BodySizeLimit(cfg.Server.MaxUploadBytes),
	)
	return s, nil
}

func (s *Server) routes() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/analyze/{$}", s.handleAnalyze)
	mux.HandleFunc("/analyze", s.handleAnalyze)
	mux.HandleFunc("/health", s.handleHealth)
	mux.Handle("/metrics", s.metricsHandler())
	return mux
}

// chain wraps h so that the first middleware is outermost.
func chain(h http.Handler, mws ...func(http.Handler) http.Handler) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

// pathLabel keeps the metrics path label bounded.
func pathLabel(r *http.Request) string {
	switch r.URL.Path {
	case "/analyze", "/analyze/":
		return "/analyze/"
	case "/health", "/metrics":
		return r.URL.Path
	default:
		return "other"
	}
}

// Handler returns the root handler with the full middleware chain.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// SetDetection swaps the detection settings used by later requests.
// Requests already running keep the settings they started with.
func (s *Server) SetDetection(d config.DetectionConfig) error {
	if _, err := algorithms.NewPartitioner(d.Partitioner, d.Resolution, d.Seed); err != nil {
		return err
	}
	s.detection.Store(&d)
	return nil
}

// Detection returns the detection settings currently in effect.
func (s *Server) Detection() config.DetectionConfig {
	return *s.detection.Load()
}

// Close releases background resources.
func (s *Server) Close() {
	if s.limiter != nil {
		s.limiter.Stop()
	}
}

func (s *Server) metricsHandler() http.Handler {
	h := promhttp.HandlerFor(s.metrics.GetPrometheusRegistry(), promhttp.HandlerOpts{})
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.metrics.UpdateSystemMetrics(s.startTime)
		h.ServeHTTP(w, r)
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		s.methodNotAllowed(w, http.MethodGet, http.MethodHead)
		return
	}
	s.respondJSON(w, http.StatusOK, HealthResponse{
		Status: "ok",
		Uptime: time.Since(s.startTime).Round(time.Second).String(),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		s.logger.Error("encode response", logging.Error(err))
	}
}

func (s *Server) respondError(w http.ResponseWriter, status int, message string) {
	s.respondJSON(w, status, ErrorResponse{Error: message})
}

func (s *Server) methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	for _, m := range allowed {
		w.Header().Add("Allow", m)
	}
	s.respondError(w, http.StatusMethodNotAllowed, "method not allowed")
}

package shimhttp

import (
	"context"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sirupsen/logrus"

	"github.com/practicearena/coachcore/internal/model"
)

// Executor is EXEC's contract as SHIM consumes it. internal/sandbox.Service
// implements this; tests substitute a stub.
type Executor interface {
	Execute(ctx context.Context, req *model.ExecutionRequest) (*model.ExecutionResult, error)
	DockerAvailable() bool
}

// Scorer is SCORE's contract as SHIM consumes it.
type Scorer func(raw *model.RawSessionMetrics) *model.CESResult

// Service is SHIM: the HTTP façade gluing EXEC and SCORE to the outside
// world. Grounded on the Service/NewService/GetHTTPHandler contract
// kubernaut's gateway unit tests describe for pkg/gateway.
type Service struct {
	cfg      Config
	exec     Executor
	score    Scorer
	log      *logrus.Entry
	limiter  *Limiter
	metrics  *Metrics
	registry *prometheus.Registry
	handler  http.Handler
}

// NewService wires exec and score behind chi middleware (request id,
// recovery, CORS, auth, rate limit, gzip) and returns a Service ready for
// GetHTTPHandler. limiter may be nil to disable rate limiting; reg may be
// nil, in which case a fresh private Prometheus registry is created.
func NewService(cfg Config, exec Executor, score Scorer, limiter *Limiter, reg *prometheus.Registry, log *logrus.Logger) *Service {
	if log == nil {
		log = logrus.New()
	}
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	s := &Service{
		cfg:      cfg,
		exec:     exec,
		score:    score,
		log:      log.WithField("component", "shim"),
		limiter:  limiter,
		metrics:  NewMetrics(reg),
		registry: reg,
	}

	s.handler = s.buildRouter()
	return s
}

func (s *Service) buildRouter() http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RealIP)
	r.Use(requestIDMiddleware)
	r.Use(s.recoveryMiddleware)
	r.Use(corsMiddleware(s.cfg.AllowedOrigins))
	r.Use(gzipMiddleware(s.cfg.CompressThresholdBytes))

	// Unauthenticated, unmetered probes.
	r.Get("/health", s.handleHealth)
	r.Get("/languages", s.handleLanguages)
	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Group(func(authed chi.Router) {
		authed.Use(s.authMiddleware)
		authed.Use(s.rateLimitMiddleware("global", s.cfg.GlobalRateLimit))

		authed.With(s.rateLimitMiddleware("execute", s.cfg.ExecuteRateLimit)).
			Post("/api/execute", s.handleExecute)
		authed.Post("/api/telemetry", s.handleTelemetry)
	})

	return r
}

// GetHTTPHandler returns the fully wired HTTP handler, ready to pass to
// http.Server or httptest.NewServer.
func (s *Service) GetHTTPHandler() http.Handler {
	return s.handler
}

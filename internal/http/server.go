package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"rewards/internal/core"
	applog "rewards/internal/log"
	"rewards/internal/middleware/ratelimit"
	"rewards/internal/middleware/security"
	"rewards/internal/middleware/trace"
	"rewards/internal/store"
)

// Ledger records customers and purchases.
type Ledger interface {
	CreateCustomer(ctx context.Context, c core.Customer) (core.Customer, error)
	RecordTransaction(ctx context.Context, customerID string, amount decimal.Decimal, date core.Date) (core.Customer, core.Transaction, error)
}

// Calculator derives reward summaries.
type Calculator interface {
	ComputeAllSummaries(ctx context.Context) ([]core.RewardSummary, error)
	ComputeSummaryForCustomer(ctx context.Context, customerID string, start, end core.Date) (core.RewardSummary, error)
}

// Options tunes the middleware chain. Zero values fall back to defaults.
type Options struct {
	RateLimitPerMinute int
	// TrustedProxies lists CIDRs whose X-Forwarded-For and X-Real-IP
	// headers are honored, on top of loopback and private ranges.
	TrustedProxies []string
	Logger         *applog.Logger
}

type Server struct {
	http.Server
	ledger     Ledger
	calculator Calculator
	ready      store.Pinger
	logger     *applog.Logger

	tracer      *trace.Middleware
	detector    *security.Detector
	rateLimiter *ratelimit.Limiter
	started     time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server. ready may be nil, in which case /readyz only reports the
// process as up.
func NewServer(addr string, ledger Ledger, calc Calculator, ready store.Pinger, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.FromContext(context.Background())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	limiterCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limiterCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	detector := security.NewDetector()
	for _, cidr := range opts.TrustedProxies {
		if err := detector.AddTrustedProxy(cidr); err != nil {
			logger.Warn("Ignoring trusted proxy", applog.FieldError, err.Error())
		}
	}

	s := &Server{
		ledger:      ledger,
		calculator:  calc,
		ready:       ready,
		logger:      logger,
		detector:    detector,
		tracer:      trace.NewMiddleware(detector.ExtractClientIP, logger),
		rateLimiter: ratelimit.NewLimiter(limiterCfg),
		started:     time.Now(),
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /customers", s.handleCreateCustomer)
	mux.HandleFunc("POST /transactions", s.handleRecordTransaction)
	mux.HandleFunc("GET /rewards/calculate/all", s.handleAllRewards)
	mux.HandleFunc("GET /rewards/calculate/{customerId}", s.handleCustomerRewards)
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      30 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
	return s
}

// middleware wraps h outermost-first: tracing, logger context, security
// headers, detection and rate limiting.
func (s *Server) middleware(h http.Handler) http.Handler {
	h = s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		fields := applog.NewFields().
			WithClientIP(s.detector.ExtractClientIP(r)).
			WithRequestID(trace.RequestIDFromRequest(r)).
			WithComponent(applog.ComponentRateLimit)
		fields[applog.FieldPath] = r.URL.Path
		s.logger.Logger.WarnContext(r.Context(), "Rate limit exceeded", fields.ToSlice()...)
		TooManyRequestsError(r).Write(w)
	})(h)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = applog.RequestIDMiddleware(trace.RequestIDFromRequest)(h)
	h = applog.Middleware(s.logger)(h)
	return s.tracer.Middleware(h)
}

// Shutdown gracefully shuts down the server and the rate limiter cleanup.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

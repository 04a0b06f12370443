package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	applog "garagetracker/internal/log"
	"garagetracker/internal/middleware/auth"
	"garagetracker/internal/middleware/ratelimit"
	"garagetracker/internal/middleware/security"
	"garagetracker/internal/middleware/trace"
	"garagetracker/internal/photostore"
	"garagetracker/internal/services"
)

const (
	readyTimeout  = 5 * time.Second
	uploadsMaxAge = 24 * 60 * 60
)

// Services are the operations the API exposes.
type Services struct {
	Ledger    *services.LedgerService
	Summary   *services.Summarizer
	Customers *services.CustomerDirectory
	Employees *services.EmployeeService
}

// Options configures NewServer.
type Options struct {
	Addr               string
	User               string
	Password           string
	RateLimitPerMinute int
	Photos             photostore.PhotoStore
	// Ready reports whether the record store is reachable; nil means always.
	Ready  func(ctx context.Context) error
	Logger *applog.Logger
}

type Server struct {
	http.Server
	svc      Services
	photos   photostore.PhotoStore
	ready    func(ctx context.Context) error
	logger   *applog.Logger
	ledger   *applog.StructuredLogger
	limiter  *ratelimit.Limiter
	detector *security.Detector
	tracer   *trace.Middleware
	auth     *auth.Authenticator
	mux      *http.ServeMux
	started  time.Time

	shutdownOnce sync.Once
}

// NewServer wires routes and middleware, returning a ready-to-run server.
func NewServer(svc Services, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	limitCfg := ratelimit.DefaultConfig()
	if opts.RateLimitPerMinute > 0 {
		limitCfg.RequestsPerMinute = opts.RateLimitPerMinute
	}

	s := &Server{
		svc:      svc,
		photos:   opts.Photos,
		ready:    opts.Ready,
		logger:   logger,
		ledger:   applog.NewStructuredLogger(logger.WithComponent(applog.ComponentLedger)),
		limiter:  ratelimit.NewLimiter(limitCfg),
		detector: security.NewDetector(),
		auth:     auth.NewAuthenticator(opts.User, opts.Password),
		mux:      http.NewServeMux(),
		started:  time.Now(),
	}
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger.WithComponent(applog.ComponentTrace))
	s.registerRoutes()

	s.Server = http.Server{
		Addr:              opts.Addr,
		Handler:           s.handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) registerRoutes() {
	s.mux.HandleFunc("GET /healthz", s.handleHealth)
	s.mux.HandleFunc("GET /readyz", s.handleReady)
	s.mux.Handle("GET /uploads/{key...}",
		security.StaticAssetMiddleware(uploadsMaxAge)(http.HandlerFunc(s.handleUpload)))

	s.api("POST /api/income", s.handleRecordIncome)
	s.api("GET /api/income", s.handleDayIncome)
	s.api("POST /api/service-records", s.handleRecordService)
	s.api("DELETE /api/service-records/{id}", s.handleDeleteServiceRecord)

	s.api("GET /api/summary", s.handleSummary)
	s.api("GET /api/summary/daily", s.handleDailySummary)
	s.api("GET /api/summary/monthly", s.handleMonthlySummary)

	s.api("GET /api/customers", s.handleListCustomers)
	s.api("POST /api/customers", s.handleCreateCustomer)
	s.api("GET /api/customers/search", s.handleSearchCustomers)
	s.api("PUT /api/customers/{id}", s.handleUpdateCustomer)
	s.api("DELETE /api/customers/{id}", s.handleDeleteCustomer)
	s.api("GET /api/customers/{id}/history", s.handleCustomerHistory)

	s.api("GET /api/employees", s.handleListEmployees)
	s.api("POST /api/employees", s.handleCreateEmployee)
	s.api("GET /api/employees/active", s.handleActiveEmployees)
	s.api("PUT /api/employees/{id}", s.handleUpdateEmployee)
	s.api("DELETE /api/employees/{id}", s.handleDeleteEmployee)
	s.api("POST /api/employees/{id}/toggle", s.handleToggleEmployee)
	s.api("GET /api/employees/{id}/suggested-salary", s.handleSuggestedSalary)

	s.api("POST /api/salary-payments", s.handleRecordSalary)
	s.api("DELETE /api/salary-payments/{id}", s.handleDeleteSalary)
	s.api("POST /api/marketing-expenses", s.handleRecordMarketing)
	s.api("DELETE /api/marketing-expenses/{id}", s.handleDeleteMarketing)
}

// api registers an authenticated route.
func (s *Server) api(pattern string, h http.HandlerFunc) {
	onFail := func(w http.ResponseWriter, r *http.Request) {
		UnauthorizedError().Write(w)
	}
	s.mux.Handle(pattern, s.auth.Middleware(onFail)(h))
}

// handler builds the middleware chain, outermost first: tracing, request
// logger, security headers, probe detection, rate limiting, routes.
func (s *Server) handler() http.Handler {
	onLimit := func(w http.ResponseWriter, r *http.Request) {
		ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	}

	var h http.Handler = s.mux
	h = s.limiter.Middleware(s.detector.ExtractClientIP, onLimit,
		http.MethodPost, http.MethodPut, http.MethodDelete)(h)
	h = s.detector.Middleware(s.logger.WithComponent(applog.ComponentSecurity).Logger)(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	h = applog.RequestIDMiddleware(trace.FromRequest)(h)
	h = applog.Middleware(s.logger)(h)
	return s.tracer.Middleware(h)
}

// Shutdown stops the rate limiter and drains the server, once.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	requests := s.tracer.GetMetrics()
	limits := s.limiter.GetMetrics()
	counters := map[string]int64{
		"total":           requests.TotalRequests,
		"errors":          requests.ErrorResponses,
		"avg_response_us": requests.AverageResponseTime,
		"rate_limited":    limits.TotalHits,
		"tracked_clients": limits.ClientCount,
		"suspicious":      s.detector.GetMetrics().SuspiciousRequests,
	}
	NewJSONResponse().Body(map[string]any{
		"status":   "ok",
		"uptime":   time.Since(s.started).Round(time.Second).String(),
		"requests": counters,
	}).Write(w)
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), readyTimeout)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", applog.FieldError, err)
			NewJSONResponse().Status(http.StatusServiceUnavailable).Body(map[string]any{
				"status": "not_ready",
				"error":  "record store unreachable",
			}).Write(w)
			return
		}
	}
	NewJSONResponse().Body(map[string]any{"status": "ready"}).Write(w)
}

// handleUpload streams a stored attachment.
func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if s.photos == nil {
		NotFoundError("not found").Write(w)
		return
	}
	key := r.PathValue("key")
	body, mimeType, err := s.photos.Get(r.Context(), key)
	if err != nil {
		if !errors.Is(err, photostore.ErrNotFound) {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Attachment lookup failed",
				"key", key, applog.FieldError, err)
		}
		NotFoundError("not found").Write(w)
		return
	}
	defer func() {
		if cerr := body.Close(); cerr != nil {
			applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to close attachment", applog.FieldError, cerr)
		}
	}()

	w.Header().Set("Content-Type", mimeType)
	if _, err := io.Copy(w, body); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Failed to stream attachment",
			"key", key, applog.FieldError, err)
	}
}

// parse decodes the request body; on failure it writes the error response
// and returns nil. Callers must Close the parser.
func parse(w http.ResponseWriter, r *http.Request) *RequestBodyParser {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		_ = p.Close()
		writeError(w, r, "parse", err)
		return nil
	}
	return p
}

func closeParser(r *http.Request, p *RequestBodyParser) {
	if err := p.Close(); err != nil {
		applog.FromContext(r.Context()).WarnContext(r.Context(), "Failed to release request body", applog.FieldError, err)
	}
}

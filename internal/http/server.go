package http

import (
	"context"
	"net/http"
	"sync"
	"time"

	"teambudget/internal/cache"
	"teambudget/internal/log"
	"teambudget/internal/metrics"
	"teambudget/internal/middleware/ratelimit"
	"teambudget/internal/middleware/security"
	"teambudget/internal/middleware/trace"
	"teambudget/internal/report"
	"teambudget/internal/store"
)

// ReadinessChecker reports whether the persistence backend can serve.
type ReadinessChecker interface {
	Ready(ctx context.Context) error
}

// Options configures NewServer. Store is required.
type Options struct {
	Store     *store.Store
	Readiness ReadinessChecker
	Metrics   *metrics.Metrics
	Logger    *log.Logger
	RateLimit ratelimit.Config
	// Now stamps backup file names; defaults to time.Now.
	Now func() time.Time
}

type Server struct {
	http.Server

	store     *store.Store
	readiness ReadinessChecker
	metrics   *metrics.Metrics
	logger    *log.Logger
	now       func() time.Time

	limiter  *ratelimit.Limiter
	detector *security.Detector

	// Reports are immutable per store version.
	budgetCache  *cache.LRU[int64, report.Budget]
	ledgerCache  *cache.LRU[int64, report.Ledger]
	cacheManager *cache.Manager

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run
// server.
func NewServer(addr string, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.Nop()
	}
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		store:        opts.Store,
		readiness:    opts.Readiness,
		metrics:      opts.Metrics,
		logger:       logger.WithComponent(log.ComponentHTTP),
		now:          now,
		limiter:      ratelimit.NewLimiter(opts.RateLimit),
		detector:     security.NewDetector(),
		budgetCache:  cache.NewLRU[int64, report.Budget](16, 30*time.Minute),
		ledgerCache:  cache.NewLRU[int64, report.Ledger](16, 30*time.Minute),
		cacheManager: cache.NewManager(),
	}
	s.cacheManager.Register(s.budgetCache)
	s.cacheManager.Register(s.ledgerCache)
	s.cacheManager.StartCleanup(10 * time.Minute)

	mux := http.NewServeMux()
	s.routes(mux)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           s.middleware(mux),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

func (s *Server) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	if s.metrics != nil {
		mux.Handle("GET /metrics", s.metrics.Handler())
	}

	mux.HandleFunc("GET /api/state", s.handleState)
	mux.HandleFunc("GET /api/financials", s.handleFinancials)
	mux.HandleFunc("PUT /api/team", s.handleUpdateTeam)
	mux.HandleFunc("PUT /api/fees/{key}", s.handleUpdateFee)

	mux.HandleFunc("POST /api/roster", s.handleAddPerson)
	mux.HandleFunc("PATCH /api/roster/{id}", s.handleUpdatePerson)
	mux.HandleFunc("POST /api/roster/{id}/extras/{extra}", s.handleToggleExtra)
	mux.HandleFunc("DELETE /api/roster/{id}", s.handleRemovePerson)

	mux.HandleFunc("POST /api/tournaments", s.handleAddLineItem(s.store.AddTournament))
	mux.HandleFunc("PATCH /api/tournaments/{id}", s.handleUpdateLineItem(s.store.UpdateTournament))
	mux.HandleFunc("DELETE /api/tournaments/{id}", s.handleRemoveByID(s.store.RemoveTournament))
	mux.HandleFunc("POST /api/expenses", s.handleAddLineItem(s.store.AddExpense))
	mux.HandleFunc("PATCH /api/expenses/{id}", s.handleUpdateLineItem(s.store.UpdateExpense))
	mux.HandleFunc("DELETE /api/expenses/{id}", s.handleRemoveByID(s.store.RemoveExpense))
	mux.HandleFunc("POST /api/sponsorships", s.handleAddSponsorship)
	mux.HandleFunc("PATCH /api/sponsorships/{id}", s.handleUpdateSponsorship)
	mux.HandleFunc("DELETE /api/sponsorships/{id}", s.handleRemoveByID(s.store.RemoveSponsorship))

	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("PUT /api/transactions/{id}", s.handleUpdateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleRemoveTransaction)
	mux.HandleFunc("POST /api/transactions/bulk-delete", s.handleBulkDeleteTransactions)

	mux.HandleFunc("GET /api/reports/budget", s.handleBudgetReport)
	mux.HandleFunc("GET /api/reports/ledger", s.handleLedgerReport)

	mux.HandleFunc("GET /api/backup", s.handleExportBackup)
	mux.HandleFunc("POST /api/backup", s.handleImportBackup)
	mux.HandleFunc("POST /api/reset", s.handleReset)
}

// middleware wraps mux outermost first: tracing, security headers, probe
// detection, then rate limiting of writes.
func (s *Server) middleware(mux http.Handler) http.Handler {
	var observe trace.Observer
	if s.metrics != nil {
		observe = s.metrics.ObserveRequest
	}

	h := s.limiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		writeError(w, r, http.StatusTooManyRequests, "rate limit exceeded, try again later")
	})(mux)
	h = s.detector.Middleware(h)
	h = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(h)
	return trace.NewMiddleware(s.logger, s.detector.ExtractClientIP, observe).Middleware(h)
}

// Shutdown stops background cleanup and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.cacheManager.Stop()
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte("ok"))
}

func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.readiness != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
		defer cancel()
		if err := s.readiness.Ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(r.Context(), "Readiness check failed", log.FieldError, err)
			writeError(w, r, http.StatusServiceUnavailable, "storage not ready")
			return
		}
	}
	status := map[string]any{"status": "ready", "version": s.store.Version()}
	if err := s.store.LastPersistError(); err != nil {
		status["lastPersistError"] = err.Error()
	}
	writeJSON(w, http.StatusOK, status)
}

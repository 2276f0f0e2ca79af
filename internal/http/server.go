// Package http serves the ledger as a JSON API.
package http

import (
	"context"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/format"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
	"github.com/davidsheshee-hash/shop-ledger/internal/middleware/ratelimit"
	"github.com/davidsheshee-hash/shop-ledger/internal/middleware/security"
	"github.com/davidsheshee-hash/shop-ledger/internal/middleware/trace"
)

// Ledger is what the handlers need from the ledger service.
type Ledger interface {
	Record(ctx context.Context, d core.TransactionDraft) (core.Transaction, error)
	Remove(ctx context.Context, id string) error
	Recent(limit int) []core.Transaction
	Get(id string) (core.Transaction, error)
	Monthly() []core.MonthlyStat
	Categories(t core.TransactionType) []core.CategoryShare
	Totals() core.Totals
	Catalog(t core.TransactionType) []core.CategoryDef
	Export(w io.Writer) error
}

// Config holds server settings.
type Config struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	RateLimit    int // mutating requests per minute per client

	// Ready reports whether dependencies are usable; nil means always ready
	Ready func(ctx context.Context) error
}

type Server struct {
	http.Server
	ledger    Ledger
	formatter *format.Formatter
	logger    *log.Logger
	ready     func(ctx context.Context) error
	started   time.Time

	rateLimiter *ratelimit.Limiter
	detector    *security.Detector
	tracer      *trace.Middleware
	idempotency *idempotency

	shutdownOnce sync.Once
}

// NewServer configures routes and middleware, returning a ready-to-run server.
func NewServer(cfg Config, ledger Ledger, formatter *format.Formatter, logger *log.Logger) *Server {
	if formatter == nil {
		formatter = format.New(format.DefaultLocale)
	}
	logger = log.OrDefault(logger, log.ComponentHTTP)

	s := &Server{
		ledger:    ledger,
		formatter: formatter,
		logger:    logger,
		ready:     cfg.Ready,
		started:   time.Now(),
		detector:  security.NewDetector(logger),
	}
	s.idempotency = newIdempotency(logger)
	limitCfg := ratelimit.DefaultConfig()
	if cfg.RateLimit > 0 {
		limitCfg.RequestsPerMinute = cfg.RateLimit
	}
	s.rateLimiter = ratelimit.NewLimiter(limitCfg)
	s.tracer = trace.NewMiddleware(s.detector.ExtractClientIP, logger)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("GET /api/transactions/{id}", s.handleGetTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/categories", s.handleCategories)
	mux.HandleFunc("GET /api/stats/monthly", s.handleMonthlyStats)
	mux.HandleFunc("GET /api/stats/categories", s.handleCategoryStats)
	mux.HandleFunc("GET /api/stats/totals", s.handleTotals)
	mux.HandleFunc("GET /api/export", s.handleExport)

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.detector.ExtractClientIP, func(w http.ResponseWriter, r *http.Request) {
		s.logger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, s.detector.ExtractClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		ErrorJSON(http.StatusTooManyRequests, "rate limit exceeded, try again later").Write(w)
	})(handler)
	handler = security.NoStore(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.detector.Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              cfg.Addr,
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	return s
}

// Shutdown gracefully shuts down the server and its background goroutines
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		s.idempotency.stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// Package http exposes the reporting engine and the ledger writes as a
// JSON REST API. Every data route runs behind bearer-token auth; report
// responses are cached per owner and invalidated by writes.
package http

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"bilancio/internal/auth"
	"bilancio/internal/cache"
	"bilancio/internal/core"
	applog "bilancio/internal/log"
	"bilancio/internal/report"
)

// Store is the ledger surface the handlers write to and list from.
// *storage.SQLiteRepository satisfies it.
type Store interface {
	CreateCategory(ctx context.Context, c core.Category) (core.Category, error)
	ListCategories(ctx context.Context, ownerID string) ([]core.Category, error)
	GetCategory(ctx context.Context, ownerID, id string) (core.Category, error)
	CreateExpense(ctx context.Context, e core.Expense) (core.Expense, error)
	ListExpenses(ctx context.Context, ownerID string, p core.Period) ([]core.Expense, error)
	CreateIncome(ctx context.Context, in core.Income) (core.Income, error)
	ListIncome(ctx context.Context, ownerID string, p core.Period) ([]core.Income, error)
}

// Publisher enqueues summary export requests for the worker.
type Publisher interface {
	PublishSummaryExport(ctx context.Context, ownerID, month string) error
}

type Server struct {
	http.Server

	engine    *report.Engine
	store     Store
	resolver  auth.Resolver
	publisher Publisher

	rateLimiter *rateLimiter
	reportCache *cache.LRUCache[[]byte]

	shutdownOnce sync.Once
}

type Options struct {
	Addr      string
	Engine    *report.Engine
	Store     Store
	Resolver  auth.Resolver
	Publisher Publisher // optional; export endpoint answers 503 without it
	Logger    *applog.Logger
	CacheSize int
	CacheTTL  time.Duration
}

// NewServer configures routes and middleware, returning a ready-to-run
// http.Server.
func NewServer(opts Options) *Server {
	if opts.CacheSize <= 0 {
		opts.CacheSize = 256
	}
	if opts.CacheTTL <= 0 {
		opts.CacheTTL = time.Minute
	}
	if opts.Logger == nil {
		opts.Logger = applog.New(applog.DefaultConfig())
	}

	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    opts.Addr,
			Handler: applog.Middleware(opts.Logger)(mux),
		},
		engine:      opts.Engine,
		store:       opts.Store,
		resolver:    opts.Resolver,
		publisher:   opts.Publisher,
		rateLimiter: newRateLimiter(),
		reportCache: cache.NewLRUCache[[]byte](opts.CacheSize, opts.CacheTTL),
	}

	mux.HandleFunc("/healthz", handleHealth)
	mux.HandleFunc("/readyz", handleReady)

	mux.HandleFunc("/reports/monthly-summary", s.secured(s.handleMonthlySummary))
	mux.HandleFunc("/reports/category-breakdown", s.secured(s.handleCategoryBreakdown))
	mux.HandleFunc("/reports/daily-trend", s.secured(s.handleDailyTrend))
	mux.HandleFunc("/reports/insights", s.secured(s.handleInsights))
	mux.HandleFunc("/reports/trends", s.secured(s.handleTrends))
	mux.HandleFunc("/reports/export", s.secured(s.handleExport))

	mux.HandleFunc("/expenses", s.secured(s.handleExpenses))
	mux.HandleFunc("/income", s.secured(s.handleIncome))
	mux.HandleFunc("/categories", s.secured(s.handleCategories))

	return s
}

// secured chains the ambient middleware with bearer-token auth.
func (s *Server) secured(next http.HandlerFunc) http.HandlerFunc {
	return s.withSecurityHeaders(s.withAuth(next))
}

// withAuth resolves the bearer token and stores the owner id in the
// request context. Missing or unknown tokens answer 401.
func (s *Server) withAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token := bearerToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing bearer token")
			return
		}
		ownerID, err := s.resolver.Resolve(r.Context(), token)
		if err != nil {
			applog.FromContext(r.Context()).WarnContext(r.Context(), "Token resolution failed", "error", err)
			writeError(w, http.StatusUnauthorized, "invalid token")
			return
		}
		next(w, r.WithContext(auth.WithOwner(r.Context(), ownerID)))
	}
}

func bearerToken(r *http.Request) string {
	header := r.Header.Get("Authorization")
	const prefix = "Bearer "
	if !strings.HasPrefix(header, prefix) {
		return ""
	}
	return strings.TrimSpace(header[len(prefix):])
}

// withSecurityHeaders adds security headers, rate limiting, request ids,
// and request logging.
func (s *Server) withSecurityHeaders(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		clientIP := r.Header.Get("X-Forwarded-For")
		if clientIP == "" {
			clientIP = r.Header.Get("X-Real-IP")
		}
		if clientIP == "" {
			clientIP = r.RemoteAddr
		}

		requestID := generateRequestID()
		logger := applog.FromContext(r.Context()).With("request_id", requestID)
		ctx := context.WithValue(r.Context(), requestIDKey, requestID)
		ctx = applog.NewContext(ctx, logger)
		r = r.WithContext(ctx)

		logger.InfoContext(ctx, "Request started",
			"method", r.Method,
			"url", r.URL.Path,
			"client_ip", clientIP)

		if r.Method == http.MethodPost && !s.rateLimiter.allow(clientIP) {
			logger.WarnContext(ctx, "Rate limit exceeded", "client_ip", clientIP, "url", r.URL.Path)
			w.Header().Set("Retry-After", "60")
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")

		rw := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next(rw, r)

		logger.InfoContext(ctx, "Request completed",
			"method", r.Method,
			"url", r.URL.Path,
			"status", rw.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"client_ip", clientIP)
	}
}

type contextKey string

const requestIDKey contextKey = "request_id"

// responseWriter wraps http.ResponseWriter to capture the status code.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func generateRequestID() string {
	bytes := make([]byte, 8)
	if _, err := rand.Read(bytes); err != nil {
		return fmt.Sprintf("req_%d", time.Now().UnixNano())
	}
	return "req_" + hex.EncodeToString(bytes)
}

func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func handleReady(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ready"))
}

// Shutdown stops the rate limiter janitor and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		if s.rateLimiter != nil {
			s.rateLimiter.stop()
		}
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

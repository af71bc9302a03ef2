package http

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"pocket/internal/cache"
	applog "pocket/internal/log"
	"pocket/internal/storage"
)

// pinger is implemented by backends with a cheap connectivity check.
type pinger interface {
	Ping(ctx context.Context) error
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]interface{}{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.appMetrics.uptime).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	status := "ready"
	httpStatus := http.StatusOK
	checks := make(map[string]interface{})
	fail := func(name string, err error) {
		checks[name] = fmt.Sprintf("failed: %v", err)
		status = "not_ready"
		httpStatus = http.StatusServiceUnavailable
	}

	if s.templates == nil {
		fail("templates", fmt.Errorf("templates not loaded"))
	} else {
		checks["templates"] = "ok"
	}

	if s.kv == nil {
		fail("storage", fmt.Errorf("not configured"))
	} else if p, ok := s.kv.(pinger); ok {
		if err := p.Ping(ctx); err != nil {
			fail("storage", err)
		} else {
			checks["storage"] = "ok"
		}
	} else if _, _, err := s.kv.Get(ctx, storage.KeyTheme); err != nil {
		fail("storage", err)
	} else {
		checks["storage"] = "ok"
	}

	if s.chat != nil && s.chat.Offline() {
		checks["assistant"] = "offline"
	} else {
		checks["assistant"] = "ok"
	}
	checks["rate_limiter"] = map[string]interface{}{
		"active_clients": s.rateLimiter.ActiveClients(),
		"status":         "ok",
	}

	if httpStatus != http.StatusOK {
		s.requestLogger(r).WarnContext(ctx, "Readiness check failed", "checks", checks)
	}
	NewResponse().Status(httpStatus).JSON(map[string]interface{}{
		"status":    status,
		"timestamp": time.Now().Format(time.RFC3339),
		"checks":    checks,
	}).Write(w)
}

// handleMetrics provides application and security metrics in plain text format
func (s *Server) handleMetrics(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")

	traceMetrics := s.traceMiddleware.GetMetrics()
	uptime := time.Since(s.appMetrics.uptime)

	var cacheStats cache.Stats
	if s.reports != nil {
		cacheStats = s.reports.Cache().Stats()
	}
	var txCount int
	if s.txs != nil {
		txCount = len(s.txs.List())
	}

	w.WriteHeader(http.StatusOK)

	metric := func(name, help, typ string, value any) {
		fmt.Fprintf(w, "# HELP %s %s\n", name, help)
		fmt.Fprintf(w, "# TYPE %s %s\n", name, typ)
		fmt.Fprintf(w, "%s %v\n\n", name, value)
	}
	metric("http_requests_total", "Total number of HTTP requests", "counter", traceMetrics.TotalRequests)
	metric("http_response_time_microseconds", "Smoothed average response time", "gauge", traceMetrics.AverageResponseTime)
	metric("transactions", "Transactions currently stored", "gauge", txCount)
	metric("ledger_mutations_total", "Transactions created, updated or deleted over the API", "counter", atomic.LoadInt64(&s.appMetrics.mutations))
	metric("chat_turns_total", "Chat requests answered", "counter", atomic.LoadInt64(&s.appMetrics.chatTurns))
	metric("reports_served_total", "Report documents served", "counter", atomic.LoadInt64(&s.appMetrics.reportsServed))
	metric("backups_imported_total", "Backups imported", "counter", atomic.LoadInt64(&s.appMetrics.backupsLoaded))
	metric("report_cache_entries", "Rendered reports held in cache", "gauge", cacheStats.Size)
	metric("report_cache_hits_total", "Report downloads served from cache", "counter", cacheStats.Hits)
	metric("report_cache_misses_total", "Report downloads that had to render", "counter", cacheStats.Misses)
	metric("rate_limit_hits_total", "Total rate limit hits", "counter", s.rateLimiter.Hits())
	metric("suspicious_requests_total", "Total suspicious requests detected", "counter", s.securityDetector.SuspiciousCount())
	metric("active_rate_limit_clients", "Currently tracked rate limit clients", "gauge", s.rateLimiter.ActiveClients())
	metric("uptime_seconds", "Application uptime in seconds", "gauge", fmt.Sprintf("%.0f", uptime.Seconds()))
}

// logFailure records an unexpected handler error with the operation name.
func (s *Server) logFailure(r *http.Request, msg string, op string, err error) {
	s.requestLogger(r).ErrorContext(r.Context(), msg,
		applog.FieldOperation, op,
		applog.FieldError, err,
		applog.FieldPath, r.URL.Path)
}

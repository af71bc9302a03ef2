package log

import (
	"context"
	"log/slog"
	"net/http"
)

// StructuredLogger writes the fixed-shape records other tools parse: one per
// completed request and one per committed ledger mutation.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

// LogHTTPEnd logs a completed request. 4xx logs at warn, 5xx at error.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, statusCode int, durationMs int64, clientIP string) {
	level := slog.LevelInfo
	switch {
	case statusCode >= 500:
		level = slog.LevelError
	case statusCode >= 400:
		level = slog.LevelWarn
	}

	fields := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent"), r.Header.Get("Referer")).
		WithHTTPResponse(statusCode, durationMs, statusCode < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP)

	FromContextOr(ctx, sl.logger).Logger.Log(ctx, level, "HTTP request completed", fields.ToSlice()...)
}

// LogTransaction records a committed ledger mutation. op is one of OpCreate,
// OpUpdate or OpDelete.
func (sl *StructuredLogger) LogTransaction(ctx context.Context, op, id, desc string, amountCents int64, category, typ string) {
	fields := NewFields().
		WithTransaction(id, desc, amountCents, category, typ).
		WithOperation(op).
		WithComponent(ComponentLedger)

	FromContextOr(ctx, sl.logger).Logger.InfoContext(ctx, "Transaction "+op+"d", fields.ToSlice()...)
}

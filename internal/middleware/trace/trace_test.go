package trace

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	applog "pocket/internal/log"
)

func newTestMiddleware(buf *bytes.Buffer) *Middleware {
	cfg := applog.DefaultConfig()
	cfg.Output = buf
	cfg.Level = applog.ParseLevel("debug")
	return NewMiddleware(applog.New(cfg), func(*http.Request) string { return "9.9.9.9" })
}

func TestMiddleware_AssignsRequestID(t *testing.T) {
	var logs bytes.Buffer
	m := newTestMiddleware(&logs)

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		applog.FromContext(r.Context()).InfoContext(r.Context(), "inside handler")
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/api/transactions", nil))

	if seen == "" {
		t.Fatal("request id missing from context")
	}
	if got := rec.Header().Get(HeaderRequestID); got != seen {
		t.Errorf("response header = %q, want %q", got, seen)
	}
	out := logs.String()
	if !strings.Contains(out, "request_id="+seen) {
		t.Errorf("handler log lacks request id:\n%s", out)
	}
	if !strings.Contains(out, "status_code=201") {
		t.Errorf("completion log lacks status:\n%s", out)
	}
	if m.GetMetrics().TotalRequests != 1 {
		t.Errorf("TotalRequests = %d", m.GetMetrics().TotalRequests)
	}
}

func TestMiddleware_EchoesValidIncomingID(t *testing.T) {
	var logs bytes.Buffer
	m := newTestMiddleware(&logs)
	h := m.Middleware(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))

	for _, tc := range []struct {
		in   string
		echo bool
	}{
		{"abc-123", true},
		{"bad id with spaces", false},
		{strings.Repeat("x", 65), false},
	} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(HeaderRequestID, tc.in)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		if got := rec.Header().Get(HeaderRequestID) == tc.in; got != tc.echo {
			t.Errorf("incoming %q echoed = %v, want %v", tc.in, got, tc.echo)
		}
	}
}

func TestResponseWriter_Flushes(t *testing.T) {
	rec := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rec, statusCode: http.StatusOK}
	var w http.ResponseWriter = rw
	f, ok := w.(http.Flusher)
	if !ok {
		t.Fatal("wrapper must implement http.Flusher")
	}
	f.Flush()
	if !rec.Flushed {
		t.Error("flush not forwarded")
	}
	if _, _, err := rw.Hijack(); err == nil {
		t.Error("recorder cannot be hijacked")
	}
}

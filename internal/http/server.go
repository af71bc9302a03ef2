package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"

	"pocket/internal/backup"
	"pocket/internal/chat"
	"pocket/internal/core"
	applog "pocket/internal/log"
	"pocket/internal/middleware/ratelimit"
	"pocket/internal/middleware/security"
	"pocket/internal/middleware/trace"
	"pocket/internal/profile"
	"pocket/internal/report"
	"pocket/internal/storage"
	appweb "pocket/web"
)

// TransactionStore is what the API needs from the ledger service.
type TransactionStore interface {
	chat.Ledger
	List() []core.Transaction
	Aggregates() core.Aggregates
	Breakdown(typ core.TransactionType) []core.CategoryAmount
	Revision() uint64
}

// Deps are the stores and services behind the routes.
type Deps struct {
	Transactions TransactionStore
	Profile      *profile.Store
	Theme        *profile.ThemeStore
	Chat         *chat.Bridge
	Reports      *report.Exporter
	Backup       *backup.Service
	// KV is probed by /readyz.
	KV storage.KV
}

// Options tune the server.
type Options struct {
	Addr               string
	RateLimitPerMinute int
	Currency           string
	Location           *time.Location
	Now                func() time.Time
}

type Server struct {
	http.Server
	templates *template.Template
	logger    *applog.Logger

	txs     TransactionStore
	profile *profile.Store
	theme   *profile.ThemeStore
	chat    *chat.Bridge
	reports *report.Exporter
	backup  *backup.Service
	kv      storage.KV

	currency string
	loc      *time.Location
	now      func() time.Time
	upgrader websocket.Upgrader

	securityDetector *security.Detector
	rateLimiter      *ratelimit.Limiter
	traceMiddleware  *trace.Middleware
	appMetrics       *appMetrics

	shutdownOnce sync.Once
}

// appMetrics holds application-level counters
type appMetrics struct {
	mutations     int64
	chatTurns     int64
	reportsServed int64
	backupsLoaded int64
	uptime        time.Time
}

func (m *appMetrics) inc(counter *int64) { atomic.AddInt64(counter, 1) }

// NewServer configures routes, templates and middleware, returning a
// ready-to-run http.Server.
func NewServer(opts Options, deps Deps, logger *applog.Logger) *Server {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	if opts.Location == nil {
		opts.Location = time.Local
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger = logger.WithComponent(applog.ComponentHTTP)

	mux := http.NewServeMux()
	s := &Server{
		Server: http.Server{
			Addr:              opts.Addr,
			ReadHeaderTimeout: 10 * time.Second,
			IdleTimeout:       120 * time.Second,
		},
		logger:           logger,
		txs:              deps.Transactions,
		profile:          deps.Profile,
		theme:            deps.Theme,
		chat:             deps.Chat,
		reports:          deps.Reports,
		backup:           deps.Backup,
		kv:               deps.KV,
		currency:         opts.Currency,
		loc:              opts.Location,
		now:              opts.Now,
		upgrader:         websocket.Upgrader{ReadBufferSize: 4096, WriteBufferSize: 4096},
		securityDetector: security.NewDetector(),
		rateLimiter:      ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		appMetrics:       &appMetrics{uptime: time.Now()},
	}
	s.traceMiddleware = trace.NewMiddleware(logger, s.securityDetector.ExtractClientIP)

	// Parse embedded templates at startup.
	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.WithComponent(applog.ComponentTemplate).Error("Failed parsing templates", applog.FieldError, err)
	} else {
		s.templates = t
	}

	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", applog.FieldError, err)
	}

	api := func(h http.HandlerFunc) http.Handler { return security.NoStore(h) }

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /metrics", s.handleMetrics)

	mux.HandleFunc("GET /{$}", s.handleDashboard)
	mux.HandleFunc("GET /settings", s.handleSettings)
	mux.HandleFunc("POST /settings", s.handleSettingsSubmit)

	mux.Handle("GET /api/profile", api(s.handleGetProfile))
	mux.Handle("PUT /api/profile", api(s.handleUpdateProfile))
	mux.Handle("PATCH /api/profile", api(s.handleUpdateProfile))
	mux.Handle("GET /api/theme", api(s.handleGetTheme))
	mux.Handle("PUT /api/theme", api(s.handleSetTheme))

	mux.Handle("GET /api/transactions", api(s.handleListTransactions))
	mux.Handle("POST /api/transactions", api(s.handleCreateTransaction))
	mux.Handle("GET /api/transactions/{id}", api(s.handleGetTransaction))
	mux.Handle("PUT /api/transactions/{id}", api(s.handleUpdateTransaction))
	mux.Handle("PATCH /api/transactions/{id}", api(s.handleUpdateTransaction))
	mux.Handle("DELETE /api/transactions/{id}", api(s.handleDeleteTransaction))
	mux.Handle("GET /api/summary", api(s.handleSummary))
	mux.Handle("GET /api/categories", api(s.handleCategories))

	mux.Handle("POST /api/chat", api(s.handleChat))
	mux.HandleFunc("GET /api/chat/ws", s.handleChatSocket)

	mux.Handle("GET /api/report.pdf", api(s.handleReport(report.FormatPDF)))
	mux.Handle("GET /api/report.xlsx", api(s.handleReport(report.FormatXLSX)))
	mux.Handle("GET /api/backup", api(s.handleBackupExport))
	mux.Handle("POST /api/backup", api(s.handleBackupImport))

	var handler http.Handler = mux
	handler = s.rateLimiter.Middleware(s.securityDetector.ExtractClientIP, ratelimit.MutatingOnly, s.onRateLimited)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.securityDetector.Middleware(logger)(handler)
	handler = s.traceMiddleware.Middleware(handler)
	s.Handler = handler

	return s
}

func (s *Server) onRateLimited(w http.ResponseWriter, r *http.Request) {
	s.requestLogger(r).WithComponent(applog.ComponentRateLimit).WarnContext(r.Context(), "Rate limit exceeded",
		applog.FieldMethod, r.Method,
		applog.FieldPath, r.URL.Path)
	ErrorResponse(http.StatusTooManyRequests, "rate limit exceeded, please try again later").Write(w)
}

// Shutdown gracefully shuts down the server and its background routines.
func (s *Server) Shutdown(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.rateLimiter.Stop()
		shutdownErr = s.Server.Shutdown(ctx)
	})
	return shutdownErr
}

// requestLogger returns the request-scoped logger set by the trace middleware.
func (s *Server) requestLogger(r *http.Request) *applog.Logger {
	return applog.FromContextOr(r.Context(), s.logger).WithComponent(applog.ComponentHTTP)
}

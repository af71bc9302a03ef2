package main

import (
	"context"
	"errors"
	"io"
	"net/http"
	"os"
	"time"

	"pocket/internal/amqp"
	"pocket/internal/backup"
	"pocket/internal/cache"
	"pocket/internal/chat"
	"pocket/internal/cli"
	apphttp "pocket/internal/http"
	"pocket/internal/ledger"
	applog "pocket/internal/log"
	"pocket/internal/profile"
	"pocket/internal/report"
	"pocket/internal/services"
)

func main() {
	cli.LoadEnvFile()
	logger := cli.SetupLogger(applog.ComponentApp)
	cfg := cli.LoadAndValidateConfig(logger)

	startCtx, cancelStart := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancelStart()

	store := cli.OpenStorage(startCtx, logger, cfg)
	defer func() {
		if err := store.Cleanup(); err != nil {
			logger.Error("Failed to close storage", applog.FieldError, err)
		}
	}()

	l, err := ledger.Open(startCtx, store.Store)
	if err != nil {
		logger.Error("Failed to load transactions", applog.FieldError, err)
		os.Exit(1)
	}
	prof, err := profile.Open(startCtx, store.Store)
	if err != nil {
		logger.Error("Failed to load profile", applog.FieldError, err)
		os.Exit(1)
	}
	theme, err := profile.OpenTheme(startCtx, store.Store)
	if err != nil {
		logger.Error("Failed to load theme", applog.FieldError, err)
		os.Exit(1)
	}

	// Events are optional: without a broker the mirror worker has nothing to do.
	var publisher services.Publisher
	if cfg.AMQPEnabled() {
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue, logger)
		if err != nil {
			logger.Warn("AMQP unavailable, transaction events disabled", applog.FieldError, err)
		} else {
			publisher = client
		}
	}
	txs := services.NewTransactionService(l, publisher, logger)
	defer txs.Close()

	model, err := chat.NewModel(startCtx, chat.ProviderConfig{
		Provider:      cfg.LLMProvider,
		GeminiAPIKey:  cfg.GeminiAPIKey,
		GeminiModel:   cfg.GeminiModel,
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		OpenAIBaseURL: cfg.OpenAIBaseURL,
		OpenAIModel:   cfg.OpenAIModel,
	})
	if err != nil {
		logger.Error("Failed to initialize chat model", applog.FieldError, err, applog.FieldProvider, cfg.LLMProvider)
		os.Exit(1)
	}
	if c, ok := model.(io.Closer); ok {
		defer c.Close()
	}
	loc := cfg.Location()
	bridge := chat.NewBridge(model, txs, chat.Config{
		Window:   cfg.ChatWindow,
		Timeout:  cfg.ChatTimeout,
		Currency: cfg.CurrencySymbol,
		Location: loc,
	}, logger)
	if bridge.Offline() {
		logger.Info("Chat assistant offline")
	} else {
		logger.Info("Chat assistant ready", applog.FieldProvider, cfg.LLMProvider)
	}

	exporter := report.NewExporter(txs, report.ExporterConfig{
		Currency:  cfg.CurrencySymbol,
		Location:  loc,
		CacheSize: cfg.ReportCacheSize,
		CacheTTL:  cfg.ReportCacheTTL,
	}, logger)
	caches := cache.NewManager(logger)
	caches.Register(exporter.Cache())
	caches.StartCleanup(cfg.ReportCacheTTL)
	defer caches.Stop()

	srv := apphttp.NewServer(apphttp.Options{
		Addr:               ":" + cfg.Port,
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Currency:           cfg.CurrencySymbol,
		Location:           loc,
	}, apphttp.Deps{
		Transactions: txs,
		Profile:      prof,
		Theme:        theme,
		Chat:         bridge,
		Reports:      exporter,
		Backup:       backup.NewService(store.Store, logger, l, prof, theme),
		KV:           store.Store,
	}, logger)

	srv.ReadTimeout = 10 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16 // 64KB
	// No WriteTimeout: chat responses stream for as long as the model talks.

	ctx, done := cli.GracefulShutdown(logger, 30*time.Second, func(ctx context.Context) {
		if err := srv.Shutdown(ctx); err != nil {
			logger.Error("Server shutdown error", applog.FieldError, err)
		}
	})

	logger.Info("Starting pocket server",
		"port", cfg.Port,
		"backend", store.Type.String(),
		"currency", cfg.CurrencySymbol,
		"timezone", loc.String())
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Error("Server error", applog.FieldError, err, "port", cfg.Port)
		os.Exit(1)
	}

	cli.WaitForShutdown(ctx, done)
	logger.Info("Server stopped gracefully")
}

package services

import (
	"context"
	"fmt"
	"sync"
	"time"

	"pocket/internal/ledger"
	applog "pocket/internal/log"
	"pocket/internal/sheets"
	"pocket/internal/storage"
)

// SyncProcessorConfig holds configuration for the sync processor
type SyncProcessorConfig struct {
	// PollInterval is how often the stored collection is compared with the last sync (default: 10m)
	PollInterval time.Duration

	// Timeout bounds a single full rewrite of the mirror (default: 1m)
	Timeout time.Duration
}

// DefaultSyncProcessorConfig returns sensible defaults
func DefaultSyncProcessorConfig() SyncProcessorConfig {
	return SyncProcessorConfig{
		PollInterval: 10 * time.Minute,
		Timeout:      time.Minute,
	}
}

// SyncProcessor periodically rewrites the mirror from the stored collection.
// Events keep the mirror current between passes; this loop repairs anything
// an event missed (worker downtime, dropped messages, backup imports).
type SyncProcessor struct {
	kv     storage.KV
	mirror sheets.MirrorReplacer
	config SyncProcessorConfig
	logger *applog.Logger

	// last raw value written to the mirror
	lastRaw string
	synced  bool

	// Lifecycle management
	mu      sync.Mutex
	running bool
	stopCh  chan struct{}
	doneCh  chan struct{}
}

// NewSyncProcessor creates a new sync processor
func NewSyncProcessor(kv storage.KV, mirror sheets.MirrorReplacer, config SyncProcessorConfig, logger *applog.Logger) *SyncProcessor {
	def := DefaultSyncProcessorConfig()
	if config.PollInterval <= 0 {
		config.PollInterval = def.PollInterval
	}
	if config.Timeout <= 0 {
		config.Timeout = def.Timeout
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SyncProcessor{
		kv:     kv,
		mirror: mirror,
		config: config,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// Start begins the processing loop. Returns an error if already running.
func (p *SyncProcessor) Start(ctx context.Context) error {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return fmt.Errorf("sync processor is already running")
	}
	p.running = true
	p.stopCh = make(chan struct{})
	p.doneCh = make(chan struct{})
	p.mu.Unlock()

	go p.runLoop(ctx)

	p.logger.InfoContext(ctx, "Sync processor started", "poll_interval", p.config.PollInterval)
	return nil
}

// Stop gracefully stops the processor and waits for completion.
func (p *SyncProcessor) Stop(ctx context.Context) error {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	close(p.stopCh)

	select {
	case <-p.doneCh:
		p.logger.InfoContext(ctx, "Sync processor stopped gracefully")
	case <-ctx.Done():
		p.logger.WarnContext(ctx, "Sync processor stop timed out")
		return ctx.Err()
	}

	p.mu.Lock()
	p.running = false
	p.mu.Unlock()

	return nil
}

// IsRunning returns whether the processor is currently running
func (p *SyncProcessor) IsRunning() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.running
}

func (p *SyncProcessor) runLoop(ctx context.Context) {
	defer close(p.doneCh)

	ticker := time.NewTicker(p.config.PollInterval)
	defer ticker.Stop()

	// Sync immediately on startup
	p.syncOnce(ctx)

	for {
		select {
		case <-p.stopCh:
			return
		case <-ctx.Done():
			return
		case <-ticker.C:
			p.syncOnce(ctx)
		}
	}
}

func (p *SyncProcessor) syncOnce(ctx context.Context) {
	if _, err := p.SyncNow(ctx); err != nil {
		p.logger.ErrorContext(ctx, "Mirror sync failed", applog.FieldOperation, applog.OpSync, applog.FieldError, err)
	}
}

// SyncNow rewrites the mirror when the stored collection changed since the
// last successful pass. It reports whether a rewrite happened.
func (p *SyncProcessor) SyncNow(ctx context.Context) (bool, error) {
	raw, ok, err := p.kv.Get(ctx, storage.KeyTransactions)
	if err != nil {
		return false, fmt.Errorf("read transactions: %w", err)
	}
	if p.synced && raw == p.lastRaw {
		return false, nil
	}
	txs, err := ledger.Decode(raw, ok)
	if err != nil {
		return false, err
	}

	ctx, cancel := context.WithTimeout(ctx, p.config.Timeout)
	defer cancel()
	if err := p.mirror.ReplaceAll(ctx, txs); err != nil {
		return false, fmt.Errorf("replace mirror: %w", err)
	}

	p.lastRaw, p.synced = raw, true
	p.logger.InfoContext(ctx, "Mirror reconciled", applog.FieldCount, len(txs))
	return true, nil
}

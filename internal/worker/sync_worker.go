package worker

import (
	"context"
	"fmt"

	"pocket/internal/amqp"
	applog "pocket/internal/log"
	"pocket/internal/sheets"
)

// SyncWorker applies transaction events to the spreadsheet mirror
type SyncWorker struct {
	mirror sheets.TransactionMirror
	logger *applog.Logger
}

func NewSyncWorker(mirror sheets.TransactionMirror, logger *applog.Logger) *SyncWorker {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &SyncWorker{
		mirror: mirror,
		logger: logger.WithComponent(applog.ComponentWorker),
	}
}

// HandleEvent processes a single transaction event from AMQP. A returned
// error makes the consumer requeue the message.
func (w *SyncWorker) HandleEvent(ctx context.Context, e *amqp.TransactionEvent) error {
	t := e.Transaction
	w.logger.InfoContext(ctx, "Processing transaction event",
		applog.FieldTransactionID, t.ID,
		"kind", e.Kind)

	switch e.Kind {
	case amqp.TransactionCreated, amqp.TransactionUpdated:
		if err := w.mirror.Upsert(ctx, t); err != nil {
			return fmt.Errorf("upsert %s in mirror: %w", t.ID, err)
		}
	case amqp.TransactionDeleted:
		if err := w.mirror.Remove(ctx, t.ID); err != nil {
			return fmt.Errorf("remove %s from mirror: %w", t.ID, err)
		}
	default:
		// unknown kinds are acknowledged and dropped
		w.logger.WarnContext(ctx, "Ignoring unknown event kind", "kind", e.Kind)
		return nil
	}

	w.logger.InfoContext(ctx, "Mirror updated",
		applog.FieldTransactionID, t.ID,
		"kind", e.Kind)
	return nil
}

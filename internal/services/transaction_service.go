package services

import (
	"context"
	"fmt"
	"io"

	"pocket/internal/amqp"
	"pocket/internal/core"
	"pocket/internal/ledger"
	applog "pocket/internal/log"
)

// Publisher sends transaction events to the message broker.
type Publisher interface {
	PublishTransactionEvent(ctx context.Context, e *amqp.TransactionEvent) error
}

// TransactionService orchestrates ledger mutations and event publishing.
// Publishing is best effort: the ledger is the source of truth.
type TransactionService struct {
	ledger    *ledger.Store
	publisher Publisher
	logger    *applog.Logger
	audit     *applog.StructuredLogger
}

// NewTransactionService wires the ledger with an optional publisher (nil disables events).
func NewTransactionService(l *ledger.Store, publisher Publisher, logger *applog.Logger) *TransactionService {
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &TransactionService{
		ledger:    l,
		publisher: publisher,
		logger:    logger.WithComponent(applog.ComponentLedger),
		audit:     applog.NewStructuredLogger(logger),
	}
}

// Add stores the draft and publishes transaction.created
func (s *TransactionService) Add(ctx context.Context, d core.Draft) (core.Transaction, error) {
	t, err := s.ledger.Add(ctx, d)
	if err != nil {
		return core.Transaction{}, fmt.Errorf("add transaction: %w", err)
	}
	s.logMutation(ctx, applog.OpCreate, t)
	s.publish(ctx, amqp.TransactionCreated, t)
	return t, nil
}

// Update merges the patch and publishes transaction.updated when something changed
func (s *TransactionService) Update(ctx context.Context, id string, p core.Patch) (core.Transaction, bool, error) {
	t, found, err := s.ledger.Update(ctx, id, p)
	if err != nil {
		return t, found, fmt.Errorf("update transaction %s: %w", id, err)
	}
	if found && !p.IsEmpty() {
		s.logMutation(ctx, applog.OpUpdate, t)
		s.publish(ctx, amqp.TransactionUpdated, t)
	}
	return t, found, nil
}

// Delete removes the transaction and publishes transaction.deleted with the prior record
func (s *TransactionService) Delete(ctx context.Context, id string) (core.Transaction, bool, error) {
	t, found, err := s.ledger.Delete(ctx, id)
	if err != nil {
		return t, found, fmt.Errorf("delete transaction %s: %w", id, err)
	}
	if found {
		s.logMutation(ctx, applog.OpDelete, t)
		s.publish(ctx, amqp.TransactionDeleted, t)
	}
	return t, found, nil
}

func (s *TransactionService) Get(id string) (core.Transaction, bool) { return s.ledger.Get(id) }
func (s *TransactionService) List() []core.Transaction               { return s.ledger.List() }
func (s *TransactionService) Recent(n int) []core.Transaction        { return s.ledger.Recent(n) }
func (s *TransactionService) Aggregates() core.Aggregates            { return s.ledger.Aggregates() }
func (s *TransactionService) Revision() uint64                       { return s.ledger.Revision() }

func (s *TransactionService) Breakdown(typ core.TransactionType) []core.CategoryAmount {
	return s.ledger.Breakdown(typ)
}

func (s *TransactionService) Snapshot() ([]core.Transaction, uint64) { return s.ledger.Snapshot() }

func (s *TransactionService) logMutation(ctx context.Context, op string, t core.Transaction) {
	s.audit.LogTransaction(ctx, op, t.ID, t.Description, t.Amount.Cents, t.Category, string(t.Type))
}

func (s *TransactionService) publish(ctx context.Context, kind amqp.EventKind, t core.Transaction) {
	if s.publisher == nil {
		s.logger.DebugContext(ctx, "Publisher not configured, skipping event", "kind", kind)
		return
	}
	if err := s.publisher.PublishTransactionEvent(ctx, amqp.NewTransactionEvent(kind, t)); err != nil {
		// Don't fail the request - the ledger already committed
		s.logger.ErrorContext(ctx, "Failed to publish transaction event",
			applog.FieldTransactionID, t.ID,
			"kind", kind,
			applog.FieldError, err)
	}
}

// Close closes the publisher when it holds resources
func (s *TransactionService) Close() error {
	if c, ok := s.publisher.(io.Closer); ok {
		if err := c.Close(); err != nil {
			return fmt.Errorf("close publisher: %w", err)
		}
	}
	return nil
}

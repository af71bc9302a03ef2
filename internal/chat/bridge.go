package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/message"

	"pocket/internal/core"
	"pocket/internal/i18n"
	applog "pocket/internal/log"
)

// DefaultWindow is the number of recent transactions shown to the model.
const DefaultWindow = 25

// Ledger is the slice of the transaction store the bridge mutates.
type Ledger interface {
	Add(ctx context.Context, d core.Draft) (core.Transaction, error)
	Update(ctx context.Context, id string, p core.Patch) (core.Transaction, bool, error)
	Delete(ctx context.Context, id string) (core.Transaction, bool, error)
	Get(id string) (core.Transaction, bool)
	Recent(n int) []core.Transaction
}

// Sink receives streamed chunks as they arrive. Returning an error aborts
// the stream.
type Sink func(chunk string) error

type Config struct {
	Window   int
	Timeout  time.Duration
	Currency string
	Location *time.Location
	Now      func() time.Time
}

// Bridge runs one conversation turn against the model and applies the
// resulting command to the ledger.
type Bridge struct {
	model  Model
	ledger Ledger
	cfg    Config
	logger *applog.Logger
}

// NewBridge returns a bridge. A nil model puts it in offline mode.
func NewBridge(model Model, ledger Ledger, cfg Config, logger *applog.Logger) *Bridge {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.Location == nil {
		cfg.Location = time.Local
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if logger == nil {
		logger = applog.New(applog.DefaultConfig())
	}
	return &Bridge{model: model, ledger: ledger, cfg: cfg, logger: logger.WithComponent(applog.ComponentChat)}
}

// Offline reports whether no model is configured.
func (b *Bridge) Offline() bool { return b.model == nil }

// Reply streams the model's answer to sink and interprets it once complete.
// The returned error covers request validation and transport failures only;
// anything the model says ends up in the Reply.
func (b *Bridge) Reply(ctx context.Context, req Request, sink Sink) (Reply, error) {
	p := i18n.Printer(req.Language)
	if b.Offline() {
		return Reply{Kind: KindOffline, Text: p.Sprintf(i18n.ChatOffline)}, nil
	}
	if err := req.Validate(); err != nil {
		return Reply{}, err
	}

	var window []WindowItem
	if req.Data != nil && req.Data.Transactions != nil {
		window = req.Data.Transactions
		if len(window) > b.cfg.Window {
			window = window[:b.cfg.Window]
		}
	} else {
		window = Ground(b.ledger.Recent(b.cfg.Window), b.cfg.Location)
	}
	system, err := BuildSystemPrompt(b.cfg.Now().In(b.cfg.Location), window)
	if err != nil {
		return Reply{}, err
	}

	if b.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, b.cfg.Timeout)
		defer cancel()
	}

	text, err := b.collect(ctx, system, req.Messages, sink)
	if err != nil {
		return Reply{}, err
	}
	return b.interpret(ctx, text, p), nil
}

func (b *Bridge) collect(ctx context.Context, system string, msgs []Message, sink Sink) (string, error) {
	stream, err := b.model.Stream(ctx, system, msgs)
	if err != nil {
		return "", fmt.Errorf("chat: start stream: %w", err)
	}
	defer stream.Close()

	var buf strings.Builder
	for {
		chunk, err := stream.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return "", fmt.Errorf("chat: stream: %w", err)
		}
		buf.WriteString(chunk)
		if sink != nil && chunk != "" {
			if err := sink(chunk); err != nil {
				return "", fmt.Errorf("chat: sink: %w", err)
			}
		}
	}
	return buf.String(), nil
}

func (b *Bridge) interpret(ctx context.Context, text string, p *message.Printer) Reply {
	raw := Reply{Kind: KindText, Text: text}
	cmd, err := ParseCommand(text)
	if err != nil {
		b.logger.DebugContext(ctx, "Model output is not a command", applog.FieldError, err)
		return raw
	}
	logger := b.logger.With(applog.FieldAction, string(cmd.Action))

	switch cmd.Action {
	case ActionChat:
		return Reply{Kind: KindChat, Text: cmd.Message}

	case ActionAdd:
		a := cmd.Add
		d := core.Draft{
			Amount:      a.Amount,
			Description: a.Description,
			Category:    core.NormalizeCategory(a.Type, a.Category),
			Type:        a.Type,
		}
		if a.Date != "" {
			date, err := core.ParseDate(a.Date, b.cfg.Location)
			if err != nil {
				return raw
			}
			d.Date = date
		}
		t, err := b.ledger.Add(ctx, d)
		if err != nil {
			logger.ErrorContext(ctx, "Chat add failed", applog.FieldError, err)
			return raw
		}
		return Reply{Kind: KindAdded, Text: b.confirm(p, i18n.ChatAdded, t), Transaction: &t}

	case ActionUpdate:
		u := cmd.Update
		existing, ok := b.ledger.Get(u.ID)
		if !ok {
			return Reply{Kind: KindNotFound, Text: p.Sprintf(i18n.ChatNotFound)}
		}
		patch, err := b.patch(existing, u)
		if err != nil {
			return raw
		}
		t, found, err := b.ledger.Update(ctx, u.ID, patch)
		if err != nil {
			logger.ErrorContext(ctx, "Chat update failed", applog.FieldTransactionID, u.ID, applog.FieldError, err)
			return raw
		}
		if !found {
			return Reply{Kind: KindNotFound, Text: p.Sprintf(i18n.ChatNotFound)}
		}
		return Reply{Kind: KindUpdated, Text: b.confirm(p, i18n.ChatUpdated, t), Transaction: &t}

	case ActionDelete:
		prior, found, err := b.ledger.Delete(ctx, cmd.Delete)
		if err != nil {
			logger.ErrorContext(ctx, "Chat delete failed", applog.FieldTransactionID, cmd.Delete, applog.FieldError, err)
			return raw
		}
		if !found {
			return Reply{Kind: KindNotFound, Text: p.Sprintf(i18n.ChatNotFound)}
		}
		return Reply{Kind: KindDeleted, Text: b.confirm(p, i18n.ChatDeleted, prior), Transaction: &prior}
	}
	return raw
}

// patch builds the store patch for u. The category is normalized against the
// type the record will have after the update, so a type change drags an
// incompatible category along to a valid one.
func (b *Bridge) patch(existing core.Transaction, u *UpdateCommand) (core.Patch, error) {
	p := core.Patch{Amount: u.Amount, Description: u.Description, Type: u.Type}
	typ := existing.Type
	if u.Type != nil {
		typ = *u.Type
	}
	switch {
	case u.Category != nil:
		c := core.NormalizeCategory(typ, *u.Category)
		p.Category = &c
	case !core.IsValidCategory(typ, existing.Category):
		c := core.NormalizeCategory(typ, existing.Category)
		p.Category = &c
	}
	if u.Date != nil {
		d, err := core.ParseDate(*u.Date, b.cfg.Location)
		if err != nil {
			return core.Patch{}, err
		}
		p.Date = &d
	}
	return p, nil
}

func (b *Bridge) confirm(p *message.Printer, key string, t core.Transaction) string {
	typ := p.Sprintf(i18n.TypeExpense)
	if t.Type == core.Income {
		typ = p.Sprintf(i18n.TypeIncome)
	}
	return p.Sprintf(key, typ, b.cfg.Currency, t.Amount.String(), t.Category, t.Description,
		t.Date.In(b.cfg.Location).Format(time.DateOnly))
}

// Package chat turns a conversation into transaction commands using a hosted
// language model.
package chat

import (
	"errors"
	"fmt"
	"time"

	"pocket/internal/core"
)

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// WindowItem is a transaction reduced to the fields the model needs to
// resolve an id from a description.
type WindowItem struct {
	ID          string     `json:"id"`
	Amount      core.Money `json:"amount"`
	Description string     `json:"description"`
	Date        string     `json:"date"`
	Category    string     `json:"category"`
	Type        string     `json:"type"`
}

// Request is one turn of the conversation. History is owned by the caller.
type Request struct {
	Messages []Message `json:"messages"`
	Data     *struct {
		Transactions []WindowItem `json:"transactions,omitempty"`
	} `json:"data,omitempty"`

	// Language selects the reply language; set by the server from the profile.
	Language string `json:"-"`
}

type ReplyKind string

const (
	KindText     ReplyKind = "text"
	KindChat     ReplyKind = "chat"
	KindAdded    ReplyKind = "added"
	KindUpdated  ReplyKind = "updated"
	KindDeleted  ReplyKind = "deleted"
	KindNotFound ReplyKind = "not_found"
	KindOffline  ReplyKind = "offline"
)

// Reply is what the assistant says back, plus the affected record when a
// command changed the collection.
type Reply struct {
	Kind        ReplyKind         `json:"kind"`
	Text        string            `json:"text"`
	Transaction *core.Transaction `json:"transaction,omitempty"`
}

var (
	ErrNoMessages  = errors.New("chat: no messages")
	ErrInvalidRole = errors.New("chat: invalid message role")
)

// Validate checks the request shape before any model call.
func (r Request) Validate() error {
	if len(r.Messages) == 0 {
		return ErrNoMessages
	}
	for i, m := range r.Messages {
		if m.Role != RoleUser && m.Role != RoleAssistant {
			return fmt.Errorf("%w: message %d has role %q", ErrInvalidRole, i, m.Role)
		}
	}
	if r.Messages[len(r.Messages)-1].Role != RoleUser {
		return fmt.Errorf("%w: last message must come from the user", ErrInvalidRole)
	}
	return nil
}

// Ground reduces transactions to window items, dates rendered in loc.
func Ground(txs []core.Transaction, loc *time.Location) []WindowItem {
	if loc == nil {
		loc = time.Local
	}
	out := make([]WindowItem, len(txs))
	for i, t := range txs {
		out[i] = WindowItem{
			ID:          t.ID,
			Amount:      t.Amount,
			Description: t.Description,
			Date:        t.Date.In(loc).Format(time.DateOnly),
			Category:    t.Category,
			Type:        string(t.Type),
		}
	}
	return out
}

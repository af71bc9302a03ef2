package chat

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"pocket/internal/core"
)

type Action string

const (
	ActionAdd    Action = "add_transaction"
	ActionUpdate Action = "update_transaction"
	ActionDelete Action = "delete_transaction"
	ActionChat   Action = "chat"
)

// ErrInvalidCommand is returned for model output that is not exactly one
// well-formed command.
var ErrInvalidCommand = errors.New("chat: invalid command")

// Command is a parsed model response. Exactly one of the payload fields is
// set, matching Action.
type Command struct {
	Action  Action
	Add     *AddCommand
	Update  *UpdateCommand
	Delete  string // id
	Message string
}

type AddCommand struct {
	Amount      core.Money
	Description string
	Category    string
	Type        core.TransactionType
	Date        string // YYYY-MM-DD or empty
}

type UpdateCommand struct {
	ID          string
	Amount      *core.Money
	Description *string
	Category    *string
	Type        *core.TransactionType
	Date        *string
}

type envelope struct {
	Action  string          `json:"action"`
	Data    json.RawMessage `json:"data"`
	Message *string         `json:"message"`
}

type addPayload struct {
	Amount      *core.Money `json:"amount"`
	Description string      `json:"description"`
	Category    string      `json:"category"`
	Type        string      `json:"type"`
	Date        string      `json:"date"`
}

type updatePayload struct {
	ID          string      `json:"id"`
	Amount      *core.Money `json:"amount"`
	Description *string     `json:"description"`
	Category    *string     `json:"category"`
	Type        *string     `json:"type"`
	Date        *string     `json:"date"`
}

type deletePayload struct {
	ID string `json:"id"`
}

type chatPayload struct {
	Message *string `json:"message"`
}

// ParseCommand strictly decodes text as a single command object. A single
// surrounding markdown code fence is tolerated.
func ParseCommand(text string) (Command, error) {
	var env envelope
	if err := decodeStrict([]byte(stripFence(text)), &env); err != nil {
		return Command{}, err
	}

	switch Action(env.Action) {
	case ActionAdd:
		return parseAdd(env.Data)
	case ActionUpdate:
		return parseUpdate(env.Data)
	case ActionDelete:
		var p deletePayload
		if err := decodeStrict(env.Data, &p); err != nil {
			return Command{}, err
		}
		id := strings.TrimSpace(p.ID)
		if id == "" {
			return Command{}, fmt.Errorf("%w: delete without id", ErrInvalidCommand)
		}
		return Command{Action: ActionDelete, Delete: id}, nil
	case ActionChat:
		msg := env.Message
		if len(env.Data) > 0 && !isNull(env.Data) {
			var p chatPayload
			if err := decodeStrict(env.Data, &p); err != nil {
				return Command{}, err
			}
			if p.Message != nil {
				msg = p.Message
			}
		}
		if msg == nil {
			return Command{}, fmt.Errorf("%w: chat without message", ErrInvalidCommand)
		}
		return Command{Action: ActionChat, Message: *msg}, nil
	default:
		return Command{}, fmt.Errorf("%w: unknown action %q", ErrInvalidCommand, env.Action)
	}
}

func parseAdd(data json.RawMessage) (Command, error) {
	var p addPayload
	if err := decodeStrict(data, &p); err != nil {
		return Command{}, err
	}
	if p.Amount == nil || p.Amount.Validate() != nil {
		return Command{}, fmt.Errorf("%w: add needs a positive amount", ErrInvalidCommand)
	}
	desc := strings.TrimSpace(p.Description)
	if desc == "" {
		return Command{}, fmt.Errorf("%w: add needs a description", ErrInvalidCommand)
	}
	typ, err := core.ParseTransactionType(p.Type)
	if err != nil {
		return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	date := strings.TrimSpace(p.Date)
	if date != "" && !isDate(date) {
		return Command{}, fmt.Errorf("%w: bad date %q", ErrInvalidCommand, date)
	}
	return Command{Action: ActionAdd, Add: &AddCommand{
		Amount:      *p.Amount,
		Description: desc,
		Category:    strings.TrimSpace(p.Category),
		Type:        typ,
		Date:        date,
	}}, nil
}

func parseUpdate(data json.RawMessage) (Command, error) {
	var p updatePayload
	if err := decodeStrict(data, &p); err != nil {
		return Command{}, err
	}
	u := &UpdateCommand{ID: strings.TrimSpace(p.ID), Amount: p.Amount, Category: p.Category}
	if u.ID == "" {
		return Command{}, fmt.Errorf("%w: update without id", ErrInvalidCommand)
	}
	if u.Amount != nil && u.Amount.Validate() != nil {
		return Command{}, fmt.Errorf("%w: update amount must be positive", ErrInvalidCommand)
	}
	if p.Description != nil {
		d := strings.TrimSpace(*p.Description)
		if d == "" {
			return Command{}, fmt.Errorf("%w: empty description", ErrInvalidCommand)
		}
		u.Description = &d
	}
	if p.Type != nil {
		typ, err := core.ParseTransactionType(*p.Type)
		if err != nil {
			return Command{}, fmt.Errorf("%w: %v", ErrInvalidCommand, err)
		}
		u.Type = &typ
	}
	if p.Date != nil {
		d := strings.TrimSpace(*p.Date)
		if !isDate(d) {
			return Command{}, fmt.Errorf("%w: bad date %q", ErrInvalidCommand, d)
		}
		u.Date = &d
	}
	return Command{Action: ActionUpdate, Update: u}, nil
}

func decodeStrict(b []byte, v any) error {
	if len(bytes.TrimSpace(b)) == 0 || isNull(b) {
		return fmt.Errorf("%w: empty value", ErrInvalidCommand)
	}
	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidCommand, err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return fmt.Errorf("%w: trailing data after object", ErrInvalidCommand)
	}
	return nil
}

func isNull(b []byte) bool {
	return bytes.Equal(bytes.TrimSpace(b), []byte("null"))
}

func isDate(s string) bool {
	_, err := time.Parse(time.DateOnly, s)
	return err == nil
}

// stripFence removes one ```json ... ``` wrapper if present.
func stripFence(text string) string {
	s := strings.TrimSpace(text)
	if !strings.HasPrefix(s, "```") || !strings.HasSuffix(s, "```") || len(s) < 6 {
		return s
	}
	s = strings.TrimSuffix(s[3:], "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 && !strings.ContainsAny(s[:nl], "{[") {
		s = s[nl+1:]
	}
	return strings.TrimSpace(s)
}

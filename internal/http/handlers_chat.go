package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"pocket/internal/chat"
	applog "pocket/internal/log"
)

const (
	maxChatBytes   = 1 << 20
	wsWriteTimeout = 10 * time.Second
)

// chatEvent is one frame of a streamed chat turn, used by both transports.
type chatEvent struct {
	Type  string      `json:"type"`
	Text  string      `json:"text,omitempty"`
	Reply *chat.Reply `json:"reply,omitempty"`
	Error string      `json:"error,omitempty"`
}

// sseWriter writes Server-Sent Events, committing the stream headers on the
// first event so request errors can still be answered as plain JSON.
type sseWriter struct {
	w       http.ResponseWriter
	rc      *http.ResponseController
	started bool
}

func (s *sseWriter) send(event string, payload chatEvent) error {
	if !s.started {
		h := s.w.Header()
		h.Set("Content-Type", "text/event-stream")
		h.Set("Cache-Control", "no-cache")
		h.Set("X-Accel-Buffering", "no")
		s.w.WriteHeader(http.StatusOK)
		s.started = true
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, data); err != nil {
		return err
	}
	if err := s.rc.Flush(); err != nil && !errors.Is(err, http.ErrNotSupported) {
		return err
	}
	return nil
}

// handleChat answers one conversation turn over SSE: "delta" events while
// the model streams, then one "reply" event, or "error".
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chat.Request
	if err := json.NewDecoder(io.LimitReader(r.Body, maxChatBytes)).Decode(&req); err != nil {
		BadRequestError("invalid chat request: " + err.Error()).Write(w)
		return
	}
	req.Language = s.profile.Language()

	out := &sseWriter{w: w, rc: http.NewResponseController(w)}
	ctx := r.Context()
	reply, err := s.chat.Reply(ctx, req, func(chunk string) error {
		if err := out.send("delta", chatEvent{Type: "delta", Text: chunk}); err != nil {
			return err
		}
		return ctx.Err()
	})
	s.appMetrics.inc(&s.appMetrics.chatTurns)
	if err != nil {
		s.requestLogger(r).WithComponent(applog.ComponentChat).WarnContext(ctx, "Chat turn failed",
			applog.FieldOperation, applog.OpStream,
			applog.FieldError, err)
		if !out.started {
			if errors.Is(err, chat.ErrNoMessages) || errors.Is(err, chat.ErrInvalidRole) {
				ErrorFor(err).Write(w)
			} else {
				ErrorResponse(http.StatusBadGateway, "assistant unavailable").Write(w)
			}
			return
		}
		_ = out.send("error", chatEvent{Type: "error", Error: "assistant unavailable"})
		return
	}
	if err := out.send("reply", chatEvent{Type: "reply", Reply: &reply}); err != nil {
		s.requestLogger(r).DebugContext(ctx, "Client went away before the reply", applog.FieldError, err)
	}
}

// handleChatSocket serves the chat over a WebSocket. Turns on one connection
// are handled in order: the next request is read only after the previous
// reply has been sent.
func (s *Server) handleChatSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		s.requestLogger(r).DebugContext(r.Context(), "WebSocket upgrade failed", applog.FieldError, err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(maxChatBytes)

	logger := s.requestLogger(r).WithComponent(applog.ComponentChat)
	ctx := r.Context()
	write := func(ev chatEvent) error {
		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		return conn.WriteJSON(ev)
	}

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logger.DebugContext(ctx, "WebSocket closed", applog.FieldError, err)
			}
			return
		}
		// The frame was read whole, so a decode failure is the client's.
		var req chat.Request
		if err := json.Unmarshal(msg, &req); err != nil {
			if write(chatEvent{Type: "error", Error: "invalid chat request: " + err.Error()}) != nil {
				return
			}
			continue
		}
		req.Language = s.profile.Language()

		reply, err := s.chat.Reply(ctx, req, func(chunk string) error {
			return write(chatEvent{Type: "delta", Text: chunk})
		})
		s.appMetrics.inc(&s.appMetrics.chatTurns)
		if err != nil {
			logger.WarnContext(ctx, "Chat turn failed", applog.FieldOperation, applog.OpStream, applog.FieldError, err)
			msg := "assistant unavailable"
			if errors.Is(err, chat.ErrNoMessages) || errors.Is(err, chat.ErrInvalidRole) {
				msg = err.Error()
			}
			if write(chatEvent{Type: "error", Error: msg}) != nil {
				return
			}
			continue
		}
		if err := write(chatEvent{Type: "reply", Reply: &reply}); err != nil {
			return
		}
	}
}

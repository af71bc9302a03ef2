package chat

import "context"

// Model is a streaming completion endpoint.
type Model interface {
	// Stream starts a completion for msgs under the system instruction.
	Stream(ctx context.Context, system string, msgs []Message) (Stream, error)
}

// Stream yields text chunks. Recv returns io.EOF once the response is complete.
type Stream interface {
	Recv() (string, error)
	Close() error
}

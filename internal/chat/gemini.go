package chat

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
)

// DefaultGeminiModel is used when no model name is configured.
const DefaultGeminiModel = "gemini-2.5-flash"

// Gemini streams completions from the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
}

func NewGemini(ctx context.Context, apiKey, model string) (*Gemini, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("missing GEMINI_API_KEY")
	}
	if model == "" {
		model = DefaultGeminiModel
	}
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}
	return &Gemini{client: client, model: model}, nil
}

func (g *Gemini) Stream(ctx context.Context, system string, msgs []Message) (Stream, error) {
	if len(msgs) == 0 || msgs[len(msgs)-1].Role != RoleUser {
		return nil, ErrInvalidRole
	}
	m := g.client.GenerativeModel(g.model)
	m.SetTemperature(0)
	m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}

	cs := m.StartChat()
	cs.History = geminiHistory(msgs[:len(msgs)-1])
	iter := cs.SendMessageStream(ctx, genai.Text(msgs[len(msgs)-1].Content))
	return &geminiStream{iter: iter}, nil
}

func (g *Gemini) Close() error {
	return g.client.Close()
}

// geminiHistory maps prior turns to Gemini roles. Gemini expects the history
// to open with a user turn, so leading assistant greetings are dropped.
func geminiHistory(msgs []Message) []*genai.Content {
	var out []*genai.Content
	for _, msg := range msgs {
		role := "user"
		if msg.Role == RoleAssistant {
			if len(out) == 0 {
				continue
			}
			role = "model"
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(msg.Content)}})
	}
	return out
}

type geminiStream struct {
	iter *genai.GenerateContentResponseIterator
}

func (s *geminiStream) Recv() (string, error) {
	resp, err := s.iter.Next()
	if errors.Is(err, iterator.Done) {
		return "", io.EOF
	}
	if err != nil {
		return "", err
	}
	var b strings.Builder
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		for _, part := range c.Content.Parts {
			if txt, ok := part.(genai.Text); ok {
				b.WriteString(string(txt))
			}
		}
		break
	}
	return b.String(), nil
}

func (s *geminiStream) Close() error { return nil }

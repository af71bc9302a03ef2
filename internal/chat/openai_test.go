package chat

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOpenAIStream(t *testing.T) {
	var got struct {
		Model       string  `json:"model"`
		Stream      bool    `json:"stream"`
		Temperature float64 `json:"temperature"`
		Messages    []struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"messages"`
	}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/v1/chat/completions" {
			http.NotFound(w, r)
			return
		}
		if err := json.NewDecoder(r.Body).Decode(&got); err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/event-stream")
		for _, part := range []string{`{\"action\":`, `\"chat\",`, `\"message\":\"hi\"}`} {
			fmt.Fprintf(w, "data: {\"id\":\"1\",\"object\":\"chat.completion.chunk\",\"choices\":[{\"index\":0,\"delta\":{\"content\":\"%s\"}}]}\n\n", part)
		}
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	m, err := NewOpenAI("test-key", srv.URL+"/v1", "test-model")
	require.NoError(t, err)

	stream, err := m.Stream(context.Background(), "SYSTEM", []Message{
		{Role: RoleUser, Content: "hello"},
		{Role: RoleAssistant, Content: "hi"},
		{Role: RoleUser, Content: "again"},
	})
	require.NoError(t, err)
	defer stream.Close()

	var b strings.Builder
	for {
		chunk, err := stream.Recv()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		b.WriteString(chunk)
	}
	assert.Equal(t, `{"action":"chat","message":"hi"}`, b.String())

	assert.Equal(t, "test-model", got.Model)
	assert.True(t, got.Stream)
	assert.InDelta(t, 0.0001, got.Temperature, 1e-9)
	require.Len(t, got.Messages, 4)
	assert.Equal(t, "system", got.Messages[0].Role)
	assert.Equal(t, "SYSTEM", got.Messages[0].Content)
	assert.Equal(t, "assistant", got.Messages[2].Role)
	assert.Equal(t, "again", got.Messages[3].Content)
}

func TestNewModel(t *testing.T) {
	m, err := NewModel(context.Background(), ProviderConfig{Provider: "offline"})
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = NewModel(context.Background(), ProviderConfig{Provider: "openai"})
	assert.Error(t, err)

	_, err = NewModel(context.Background(), ProviderConfig{Provider: "gemini"})
	assert.Error(t, err)

	_, err = NewModel(context.Background(), ProviderConfig{Provider: "claude"})
	assert.Error(t, err)

	m, err = NewModel(context.Background(), ProviderConfig{Provider: "openai", OpenAIAPIKey: "k"})
	require.NoError(t, err)
	assert.IsType(t, &OpenAI{}, m)
}

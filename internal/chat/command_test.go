package chat

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocket/internal/core"
)

func TestParseCommand_Add(t *testing.T) {
	cmd, err := ParseCommand(`{"action":"add_transaction","data":{"amount":500,"description":"lunch","category":"food","type":"expense","date":"2024-03-15"}}`)
	require.NoError(t, err)
	assert.Equal(t, ActionAdd, cmd.Action)
	require.NotNil(t, cmd.Add)
	assert.Equal(t, int64(50000), cmd.Add.Amount.Cents)
	assert.Equal(t, "lunch", cmd.Add.Description)
	assert.Equal(t, "food", cmd.Add.Category)
	assert.Equal(t, core.Expense, cmd.Add.Type)
	assert.Equal(t, "2024-03-15", cmd.Add.Date)
}

func TestParseCommand_ExactDecimalAmount(t *testing.T) {
	cmd, err := ParseCommand(`{"action":"add_transaction","data":{"amount":19.99,"description":"book","category":"education","type":"expense"}}`)
	require.NoError(t, err)
	assert.Equal(t, int64(1999), cmd.Add.Amount.Cents)
	assert.Empty(t, cmd.Add.Date)
}

func TestParseCommand_Fenced(t *testing.T) {
	text := "```json\n{\"action\":\"delete_transaction\",\"data\":{\"id\":\"abc\"}}\n```"
	cmd, err := ParseCommand(text)
	require.NoError(t, err)
	assert.Equal(t, ActionDelete, cmd.Action)
	assert.Equal(t, "abc", cmd.Delete)
}

func TestParseCommand_Update(t *testing.T) {
	cmd, err := ParseCommand(`{"action":"update_transaction","data":{"id":"x1","amount":"75.5","type":"Income"}}`)
	require.NoError(t, err)
	u := cmd.Update
	require.NotNil(t, u)
	assert.Equal(t, "x1", u.ID)
	require.NotNil(t, u.Amount)
	assert.Equal(t, int64(7550), u.Amount.Cents)
	require.NotNil(t, u.Type)
	assert.Equal(t, core.Income, *u.Type)
	assert.Nil(t, u.Description)
	assert.Nil(t, u.Category)
	assert.Nil(t, u.Date)
}

func TestParseCommand_Chat(t *testing.T) {
	for _, text := range []string{
		`{"action":"chat","data":{"message":"Which one?"}}`,
		`{"action":"chat","message":"Which one?"}`,
	} {
		cmd, err := ParseCommand(text)
		require.NoError(t, err, text)
		assert.Equal(t, ActionChat, cmd.Action)
		assert.Equal(t, "Which one?", cmd.Message)
	}
}

func TestParseCommand_Rejects(t *testing.T) {
	tests := []struct {
		name string
		text string
	}{
		{"prose", "Sure! I added your lunch."},
		{"prose around json", `Here you go: {"action":"chat","message":"hi"}`},
		{"two objects", `{"action":"chat","message":"a"}{"action":"chat","message":"b"}`},
		{"unknown action", `{"action":"transfer","data":{}}`},
		{"unknown top field", `{"action":"chat","message":"hi","mood":"happy"}`},
		{"unknown data field", `{"action":"delete_transaction","data":{"id":"a","why":"x"}}`},
		{"add missing amount", `{"action":"add_transaction","data":{"description":"x","category":"food","type":"expense"}}`},
		{"add zero amount", `{"action":"add_transaction","data":{"amount":0,"description":"x","category":"food","type":"expense"}}`},
		{"add negative amount", `{"action":"add_transaction","data":{"amount":-3,"description":"x","category":"food","type":"expense"}}`},
		{"add blank description", `{"action":"add_transaction","data":{"amount":3,"description":"  ","category":"food","type":"expense"}}`},
		{"add bad type", `{"action":"add_transaction","data":{"amount":3,"description":"x","category":"food","type":"gift"}}`},
		{"add bad date", `{"action":"add_transaction","data":{"amount":3,"description":"x","category":"food","type":"expense","date":"15/03/2024"}}`},
		{"update without id", `{"action":"update_transaction","data":{"amount":3}}`},
		{"delete without id", `{"action":"delete_transaction","data":{}}`},
		{"delete null data", `{"action":"delete_transaction","data":null}`},
		{"chat without message", `{"action":"chat","data":{}}`},
		{"array", `[{"action":"chat","message":"hi"}]`},
		{"empty", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseCommand(tt.text)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrInvalidCommand), "got %v", err)
		})
	}
}

func TestStripFence(t *testing.T) {
	assert.Equal(t, `{"a":1}`, stripFence("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFence("```\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, stripFence("  {\"a\":1}  "))
	assert.Equal(t, "```", stripFence("```"))
}

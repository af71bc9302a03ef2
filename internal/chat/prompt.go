package chat

import (
	"fmt"
	"strings"
	"text/template"
	"time"

	"pocket/internal/core"
)

var promptTmpl = template.Must(template.New("system").
	Funcs(template.FuncMap{"inc": func(i int) int { return i + 1 }}).
	Parse(`You are a bookkeeping assistant inside a personal expense tracker.
Today's date is {{.Today}}.

Allowed income categories: {{.Income}}
Allowed expense categories: {{.Expense}}

Existing transactions (most recent first):
{{- if .Window}}
{{- range $i, $t := .Window}}
{{inc $i}}. id={{$t.ID}} | {{$t.Date}} | {{$t.Type}} | {{$t.Amount}} | {{$t.Category}} | {{$t.Description}}
{{- end}}
{{- else}}
(none)
{{- end}}

Respond with exactly one JSON object and nothing else. No prose, no markdown, no code fences.
The object must have one of these shapes:
{"action":"add_transaction","data":{"amount":<number>,"description":"<text>","category":"<category>","type":"income|expense","date":"YYYY-MM-DD"}}
{"action":"update_transaction","data":{"id":"<id>", ...only the fields that change}}
{"action":"delete_transaction","data":{"id":"<id>"}}
{"action":"chat","data":{"message":"<text>"}}

Rules:
- Use "chat" to ask a clarifying question when the amount, description or type is missing.
- Use "chat" to ask which one is meant when more than one existing transaction matches the user's description.
- Use "chat" when you cannot confidently resolve the id of the transaction to change or delete. Never invent ids.
- The category must be one of the allowed categories for the type. Map the user's words to the closest one; use "other" when nothing fits.
- Dates are YYYY-MM-DD. Resolve relative dates like "yesterday" against today's date. When no date is given use {{.Today}}.
- Amounts are positive numbers without currency symbols.
- Use "chat" for anything that is not a request to record, change or remove a transaction.
`))

type promptData struct {
	Today   string
	Income  string
	Expense string
	Window  []WindowItem
}

// BuildSystemPrompt renders the fixed instruction for the given date and
// grounding window.
func BuildSystemPrompt(now time.Time, window []WindowItem) (string, error) {
	var b strings.Builder
	data := promptData{
		Today:   now.Format(time.DateOnly),
		Income:  strings.Join(core.Categories(core.Income), ", "),
		Expense: strings.Join(core.Categories(core.Expense), ", "),
		Window:  window,
	}
	if err := promptTmpl.Execute(&b, data); err != nil {
		return "", fmt.Errorf("chat: render system prompt: %w", err)
	}
	return b.String(), nil
}


package http

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"golang.org/x/text/message"

	"pocket/internal/core"
	"pocket/internal/i18n"
	applog "pocket/internal/log"
	"pocket/internal/profile"
)

var templateFuncs = template.FuncMap{
	"selected": func(a, b string) bool { return a == b },
}

// labels are the localized strings the pages print.
type labels struct {
	Income, Expenses, Balance string
	Breakdown, Recent, NoData string
	Greeting, Settings        string
	Download, Assistant       string
	AddTransaction, Setup     string
}

func newLabels(p *message.Printer, name string) labels {
	return labels{
		Income:         p.Sprintf(i18n.LabelIncome),
		Expenses:       p.Sprintf(i18n.LabelExpenses),
		Balance:        p.Sprintf(i18n.LabelBalance),
		Breakdown:      p.Sprintf(i18n.LabelBreakdown),
		Recent:         p.Sprintf(i18n.LabelRecent),
		NoData:         p.Sprintf(i18n.LabelNoData),
		Greeting:       p.Sprintf(i18n.LabelGreeting, name),
		Settings:       p.Sprintf(i18n.LabelSettings),
		Download:       p.Sprintf(i18n.LabelDownload),
		Assistant:      p.Sprintf(i18n.LabelAssistant),
		AddTransaction: p.Sprintf(i18n.LabelAddTx),
		Setup:          p.Sprintf(i18n.LabelSetupTitle),
	}
}

type barRow struct {
	Category string
	Amount   string
	Width    int
}

type txRow struct {
	ID          string
	Date        string
	Description string
	Category    string
	Type        string
	TypeLabel   string
	Amount      string
}

type dashboardData struct {
	Theme      string
	Lang       string
	Offline    bool
	L          labels
	Income     string
	Expenses   string
	Balance    string
	Negative   bool
	Bars       []barRow
	IncomeBars []barRow
	Rows       []txRow
	Categories map[string][]string
	Today      string
}

// bars turns a breakdown into chart rows scaled against its largest entry.
func (s *Server) bars(breakdown []core.CategoryAmount) []barRow {
	var max int64
	for _, ca := range breakdown {
		if ca.Amount.Cents > max {
			max = ca.Amount.Cents
		}
	}
	rows := make([]barRow, 0, len(breakdown))
	for _, ca := range breakdown {
		rows = append(rows, barRow{
			Category: ca.Category,
			Amount:   formatMoney(s.currency, ca.Amount),
			Width:    barWidth(ca.Amount.Cents, max),
		})
	}
	return rows
}

// handleDashboard renders the main page. Until the profile has a name every
// visit is sent to the setup form.
func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	if s.profile.NeedsSetup() {
		http.Redirect(w, r, "/settings", http.StatusSeeOther)
		return
	}
	if s.templates == nil {
		s.requestLogger(r).ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	prof := s.profile.Get()
	p := i18n.Printer(prof.Language)
	agg := s.txs.Aggregates()

	data := dashboardData{
		Theme:      s.theme.Get(),
		Lang:       s.profile.Language(),
		Offline:    s.chat == nil || s.chat.Offline(),
		L:          newLabels(p, prof.Name),
		Income:     formatMoney(s.currency, agg.Income),
		Expenses:   formatMoney(s.currency, agg.Expenses),
		Balance:    formatMoney(s.currency, agg.Balance),
		Negative:   agg.Balance.Cents < 0,
		Bars:       s.bars(s.txs.Breakdown(core.Expense)),
		IncomeBars: s.bars(s.txs.Breakdown(core.Income)),
		Categories: core.AllCategories(),
		Today:      s.now().In(s.loc).Format("2006-01-02"),
	}
	for _, t := range s.txs.List() {
		typeKey := i18n.TypeExpense
		if t.Type == core.Income {
			typeKey = i18n.TypeIncome
		}
		data.Rows = append(data.Rows, txRow{
			ID:          t.ID,
			Date:        t.Date.In(s.loc).Format("2006-01-02"),
			Description: t.Description,
			Category:    t.Category,
			Type:        string(t.Type),
			TypeLabel:   p.Sprintf(typeKey),
			Amount:      formatSigned(s.currency, t),
		})
	}

	s.render(w, r, http.StatusOK, "dashboard_page", data)
}

type settingsData struct {
	Theme     string
	Lang      string
	L         labels
	Profile   core.Profile
	Languages []string
	Themes    []string
	FirstRun  bool
	Error     string
}

// handleSettings renders the profile and preferences form.
func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	s.renderSettings(w, r, http.StatusOK, "")
}

func (s *Server) renderSettings(w http.ResponseWriter, r *http.Request, status int, errMsg string) {
	if s.templates == nil {
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}
	prof := s.profile.Get()
	data := settingsData{
		Theme:     s.theme.Get(),
		Lang:      s.profile.Language(),
		L:         newLabels(i18n.Printer(prof.Language), prof.Name),
		Profile:   prof,
		Languages: i18n.Languages(),
		Themes:    []string{profile.ThemeSystem, profile.ThemeLight, profile.ThemeDark},
		FirstRun:  s.profile.NeedsSetup(),
		Error:     errMsg,
	}
	s.render(w, r, status, "settings_page", data)
}

// handleSettingsSubmit saves the settings form and returns to the dashboard.
func (s *Server) handleSettingsSubmit(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		s.renderSettings(w, r, http.StatusBadRequest, "invalid form")
		return
	}
	patch := ParseProfilePatch(p)
	next, err := profile.Merge(s.profile.Get(), patch)
	if err != nil {
		s.renderSettings(w, r, http.StatusUnprocessableEntity, err.Error())
		return
	}
	if missing := profile.Missing(next); len(missing) > 0 {
		s.renderSettings(w, r, http.StatusUnprocessableEntity,
			"please fill all fields: "+strings.Join(missing, ", "))
		return
	}
	if _, err := s.profile.Set(r.Context(), patch); err != nil {
		if isValidation(err) {
			s.renderSettings(w, r, http.StatusUnprocessableEntity, err.Error())
			return
		}
		s.logFailure(r, "Failed to save profile", applog.OpUpdate, err)
		s.renderSettings(w, r, http.StatusInternalServerError, "could not save settings")
		return
	}
	if theme := p.Get("theme"); theme != "" {
		if err := s.theme.Set(r.Context(), theme); err != nil {
			if isValidation(err) {
				s.renderSettings(w, r, http.StatusUnprocessableEntity, err.Error())
				return
			}
			s.logFailure(r, "Failed to save theme", applog.OpUpdate, err)
		}
	}
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

// render executes the template into a buffer first so a failure still gets a
// clean 500 instead of half a page.
func (s *Server) render(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, name, data); err != nil {
		s.requestLogger(r).WithComponent(applog.ComponentTemplate).ErrorContext(r.Context(), "Template execution failed",
			applog.FieldError, err, "template", name)
		http.Error(w, "render failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

package http

import (
	"net/http"
	"strconv"

	"pocket/internal/core"
	applog "pocket/internal/log"
)

type profileResponse struct {
	core.Profile
	NeedsSetup bool `json:"needs_setup"`
	Complete   bool `json:"complete"`
}

func (s *Server) profileResponse(p core.Profile) profileResponse {
	return profileResponse{Profile: p, NeedsSetup: s.profile.NeedsSetup(), Complete: s.profile.Complete()}
}

func (s *Server) handleGetProfile(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(s.profileResponse(s.profile.Get())).Write(w)
}

func (s *Server) handleUpdateProfile(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	prof, err := s.profile.Set(r.Context(), ParseProfilePatch(p))
	if err != nil {
		if !isValidation(err) {
			s.logFailure(r, "Failed to save profile", applog.OpUpdate, err)
		}
		ErrorFor(err).Write(w)
		return
	}
	NewResponse().
		TriggerProfileChanged().
		JSON(s.profileResponse(prof)).
		Write(w)
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(map[string]string{"theme": s.theme.Get()}).Write(w)
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	if !p.Has("theme") {
		ErrorFor(fieldError("theme", "is required")).Write(w)
		return
	}
	if err := s.theme.Set(r.Context(), p.Get("theme")); err != nil {
		if !isValidation(err) {
			s.logFailure(r, "Failed to save theme", applog.OpUpdate, err)
		}
		ErrorFor(err).Write(w)
		return
	}
	NewResponse().JSON(map[string]string{"theme": s.theme.Get()}).Write(w)
}

// handleListTransactions returns the collection newest first. An optional
// limit returns only the most recent entries.
func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.txs.List()
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			ErrorFor(fieldError("limit", "must be a non-negative integer")).Write(w)
			return
		}
		txs = s.txs.Recent(n)
	}
	if txs == nil {
		txs = []core.Transaction{}
	}
	NewResponse().JSON(txs).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	t, ok := s.txs.Get(r.PathValue("id"))
	if !ok {
		NotFoundError("transaction not found").Write(w)
		return
	}
	NewResponse().JSON(t).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	draft, err := ParseDraft(p, s.loc)
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}
	t, err := s.txs.Add(r.Context(), draft)
	if err != nil {
		if !isValidation(err) {
			s.logFailure(r, "Failed to save transaction", applog.OpCreate, err)
		}
		ErrorFor(err).Write(w)
		return
	}
	s.appMetrics.inc(&s.appMetrics.mutations)
	NewResponse().
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+t.ID).
		TriggerLedgerChanged(s.txs.Revision()).
		JSON(t).
		Write(w)
}

func (s *Server) handleUpdateTransaction(w http.ResponseWriter, r *http.Request) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	patch, err := ParsePatch(p, s.loc)
	if err != nil {
		ErrorFor(err).Write(w)
		return
	}
	id := r.PathValue("id")
	t, found, err := s.txs.Update(r.Context(), id, patch)
	if err != nil {
		if !isValidation(err) {
			s.logFailure(r, "Failed to update transaction", applog.OpUpdate, err)
		}
		ErrorFor(err).Write(w)
		return
	}
	if !found {
		NotFoundError("transaction not found").Write(w)
		return
	}
	s.appMetrics.inc(&s.appMetrics.mutations)
	NewResponse().TriggerLedgerChanged(s.txs.Revision()).JSON(t).Write(w)
}

// handleDeleteTransaction removes the record. Deleting an id that does not
// exist is not an error.
func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	_, found, err := s.txs.Delete(r.Context(), r.PathValue("id"))
	if err != nil {
		s.logFailure(r, "Failed to delete transaction", applog.OpDelete, err)
		ErrorFor(err).Write(w)
		return
	}
	if found {
		s.appMetrics.inc(&s.appMetrics.mutations)
	}
	NewResponse().
		Status(http.StatusNoContent).
		TriggerLedgerChanged(s.txs.Revision()).
		Write(w)
}

type summaryResponse struct {
	core.Aggregates
	ExpenseBreakdown []core.CategoryAmount `json:"expense_breakdown"`
	IncomeBreakdown  []core.CategoryAmount `json:"income_breakdown"`
	Count            int                   `json:"count"`
	Revision         uint64                `json:"revision"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(summaryResponse{
		Aggregates:       s.txs.Aggregates(),
		ExpenseBreakdown: s.txs.Breakdown(core.Expense),
		IncomeBreakdown:  s.txs.Breakdown(core.Income),
		Count:            len(s.txs.List()),
		Revision:         s.txs.Revision(),
	}).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	NewResponse().JSON(core.AllCategories()).Write(w)
}

package http

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/davidsheshee-hash/shop-ledger/internal/core"
	"github.com/davidsheshee-hash/shop-ledger/internal/ledger"
	"github.com/davidsheshee-hash/shop-ledger/internal/log"
)

// transactionView adds display strings for list rendering.
type transactionView struct {
	core.Transaction
	AmountDisplay string `json:"amountDisplay"`
	DateDisplay   string `json:"dateDisplay"`
}

func (s *Server) view(tx core.Transaction) transactionView {
	return transactionView{
		Transaction:   tx,
		AmountDisplay: s.formatter.Signed(tx.Type, tx.Amount),
		DateDisplay:   s.formatter.DateTime(tx.Date),
	}
}

// handleHealth performs basic liveness check
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(map[string]any{
		"status":    "ok",
		"timestamp": time.Now().Format(time.RFC3339),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
	}).Write(w)
}

// handleReady performs readiness check with dependency verification
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.ready != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ready(ctx); err != nil {
			log.FromContext(r.Context()).WarnContext(ctx, "Readiness check failed", log.FieldError, err)
			NewJSONResponse().Status(http.StatusServiceUnavailable).
				Data(map[string]string{"status": "not_ready"}).Write(w)
			return
		}
	}
	NewJSONResponse().Data(map[string]string{"status": "ready"}).Write(w)
}

func (s *Server) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	limit, err := parseLimit(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}
	txs := s.ledger.Recent(limit)
	views := make([]transactionView, 0, len(txs))
	for _, tx := range txs {
		views = append(views, s.view(tx))
	}
	NewJSONResponse().Data(views).Write(w)
}

func (s *Server) handleGetTransaction(w http.ResponseWriter, r *http.Request) {
	tx, err := s.ledger.Get(r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Data(s.view(tx)).Write(w)
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	key, err := idempotencyKey(r)
	if err != nil {
		BadRequestError(err.Error()).Write(w)
		return
	}

	parser := NewRequestBodyParser(w, r)
	if err := parser.Parse(); err != nil {
		if isBodyTooLarge(err) {
			ErrorJSON(http.StatusRequestEntityTooLarge, "request body too large").Write(w)
			return
		}
		BadRequestError("invalid request body").Write(w)
		return
	}

	draft, err := ParseDraft(parser)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	record := func() (core.Transaction, error) { return s.ledger.Record(r.Context(), draft) }
	var (
		tx       core.Transaction
		replayed bool
	)
	if key != "" {
		tx, replayed, err = s.idempotency.do(s.detector.ExtractClientIP(r), key, record)
	} else {
		tx, err = record()
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	resp := NewJSONResponse()
	if replayed {
		resp.Header(ReplayedHeader, "true")
	}
	resp.
		Status(http.StatusCreated).
		Header("Location", "/api/transactions/"+tx.ID).
		Data(s.view(tx)).
		Write(w)
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.Remove(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, r, err)
		return
	}
	NewJSONResponse().Status(http.StatusNoContent).Write(w)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	t, err := parseTypeParam(r, true)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	NewJSONResponse().Data(s.ledger.Catalog(t)).Write(w)
}

func (s *Server) handleMonthlyStats(w http.ResponseWriter, r *http.Request) {
	NewJSONResponse().Data(s.ledger.Monthly()).Write(w)
}

func (s *Server) handleCategoryStats(w http.ResponseWriter, r *http.Request) {
	t, err := parseTypeParam(r, false)
	if err != nil {
		UnprocessableEntityError(err.Error()).Write(w)
		return
	}
	NewJSONResponse().Data(s.ledger.Categories(t)).Write(w)
}

func (s *Server) handleTotals(w http.ResponseWriter, r *http.Request) {
	totals := s.ledger.Totals()
	NewJSONResponse().Data(struct {
		core.Totals
		IncomeDisplay  string `json:"incomeDisplay"`
		ExpenseDisplay string `json:"expenseDisplay"`
		ProfitDisplay  string `json:"profitDisplay"`
	}{
		Totals:         totals,
		IncomeDisplay:  s.formatter.Currency(totals.Income),
		ExpenseDisplay: s.formatter.Currency(totals.Expense),
		ProfitDisplay:  s.formatter.Currency(totals.Profit),
	}).Write(w)
}

func (s *Server) handleExport(w http.ResponseWriter, r *http.Request) {
	// Buffer so an encoding failure can still become a 500.
	var buf bytes.Buffer
	if err := s.ledger.Export(&buf); err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+ledger.ExportFileName+`"`)
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// writeError maps err to a status. Server errors are logged and their
// details kept out of the response.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusForError(err)
	if status >= http.StatusInternalServerError {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "Request failed",
			log.FieldMethod, r.Method, log.FieldPath, r.URL.Path, log.FieldError, err)
		InternalServerError("internal error").Write(w)
		return
	}
	ErrorJSON(status, err.Error()).Write(w)
}

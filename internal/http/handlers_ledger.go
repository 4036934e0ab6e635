package http

import (
	"encoding/json"
	"net/http"
	"time"

	"bilancio/internal/core"
)

// Wire shapes for the ledger CRUD. Amounts travel as strings and go
// through the strict parser, never through floats.

type expenseRequest struct {
	Description string `json:"description"`
	Amount      string `json:"amount"`
	CategoryID  string `json:"category_id"`
	Date        string `json:"date"`
	SplitAmount string `json:"split_amount"`
	IsSplit     bool   `json:"is_split"`
}

type expenseResponse struct {
	ID          string     `json:"id"`
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	SplitAmount core.Money `json:"split_amount"`
	IsSplit     bool       `json:"is_split"`
	CategoryID  string     `json:"category_id"`
	Date        string     `json:"date"`
}

type incomeRequest struct {
	Source      string `json:"source"`
	Description string `json:"description"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
}

type incomeResponse struct {
	ID          string     `json:"id"`
	Source      string     `json:"source"`
	Description string     `json:"description"`
	Amount      core.Money `json:"amount"`
	Date        string     `json:"date"`
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	IsActive bool   `json:"is_active"`
}

const dateLayout = "2006-01-02"

func toExpenseResponse(e core.Expense) expenseResponse {
	return expenseResponse{
		ID:          e.ID,
		Description: e.Description,
		Amount:      e.Amount,
		SplitAmount: e.SplitAmount,
		IsSplit:     e.IsSplit,
		CategoryID:  e.CategoryID,
		Date:        e.Date.Format(dateLayout),
	}
}

func toIncomeResponse(in core.Income) incomeResponse {
	return incomeResponse{
		ID:          in.ID,
		Source:      in.Source,
		Description: in.Description,
		Amount:      in.Amount,
		Date:        in.Date.Format(dateLayout),
	}
}

func toCategoryResponse(c core.Category) categoryResponse {
	return categoryResponse{ID: c.ID, Name: c.Name, IsActive: c.IsActive}
}

func (s *Server) handleExpenses(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createExpense(w, r)
	case http.MethodGet:
		s.listExpenses(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) createExpense(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}

	var req expenseRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	split, err := core.ParseOptionalAmount(req.SplitAmount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid split amount")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	expense := core.Expense{
		OwnerID:     ownerID,
		CategoryID:  req.CategoryID,
		Description: req.Description,
		Amount:      amount,
		SplitAmount: split,
		IsSplit:     req.IsSplit,
		Date:        date,
	}
	if err := expense.Validate(time.Now().UTC()); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	// Category must exist and belong to the caller.
	if _, err := s.store.GetCategory(r.Context(), ownerID, expense.CategoryID); err != nil {
		writeError(w, http.StatusBadRequest, "unknown category")
		return
	}

	created, err := s.store.CreateExpense(r.Context(), expense)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(ownerID)
	writeJSON(w, http.StatusCreated, toExpenseResponse(created))
}

func (s *Server) listExpenses(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}

	p, err := core.ResolvePeriod(monthParam(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	expenses, err := s.store.ListExpenses(r.Context(), ownerID, p)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]expenseResponse, 0, len(expenses))
	for _, e := range expenses {
		out = append(out, toExpenseResponse(e))
	}
	writeJSON(w, http.StatusOK, struct {
		Month    string            `json:"month"`
		Expenses []expenseResponse `json:"expenses"`
	}{Month: p.Token(), Expenses: out})
}

func (s *Server) handleIncome(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createIncome(w, r)
	case http.MethodGet:
		s.listIncome(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) createIncome(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}

	var req incomeRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount, err := core.ParseAmount(req.Amount)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid amount")
		return
	}
	date, err := core.ParseDate(req.Date)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid date")
		return
	}

	income := core.Income{
		OwnerID:     ownerID,
		Source:      req.Source,
		Description: req.Description,
		Amount:      amount,
		Date:        date,
	}
	if err := income.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateIncome(r.Context(), income)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(ownerID)
	writeJSON(w, http.StatusCreated, toIncomeResponse(created))
}

func (s *Server) listIncome(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}

	p, err := core.ResolvePeriod(monthParam(r))
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	incomes, err := s.store.ListIncome(r.Context(), ownerID, p)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]incomeResponse, 0, len(incomes))
	for _, in := range incomes {
		out = append(out, toIncomeResponse(in))
	}
	writeJSON(w, http.StatusOK, struct {
		Month  string           `json:"month"`
		Income []incomeResponse `json:"income"`
	}{Month: p.Token(), Income: out})
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodPost:
		s.createCategory(w, r)
	case http.MethodGet:
		s.listCategories(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (s *Server) createCategory(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	category := core.Category{
		OwnerID:  ownerID,
		Name:     req.Name,
		IsActive: true,
	}
	if err := category.Validate(); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := s.store.CreateCategory(r.Context(), category)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	s.invalidateReports(ownerID)
	writeJSON(w, http.StatusCreated, toCategoryResponse(created))
}

func (s *Server) listCategories(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := ownerOr401(w, r)
	if !ok {
		return
	}

	categories, err := s.store.ListCategories(r.Context(), ownerID)
	if err != nil {
		writeDomainError(w, r, err)
		return
	}

	out := make([]categoryResponse, 0, len(categories))
	for _, c := range categories {
		out = append(out, toCategoryResponse(c))
	}
	writeJSON(w, http.StatusOK, struct {
		Categories []categoryResponse `json:"categories"`
	}{Categories: out})
}

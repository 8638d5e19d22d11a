package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kostasdel/banking-backend/internal/api/httpx"
	"github.com/kostasdel/banking-backend/internal/middleware"
	"github.com/kostasdel/banking-backend/internal/models"
	"github.com/kostasdel/banking-backend/internal/services"
)

type BalanceHandler struct {
	Bal *services.BalanceService
	Acc *services.AccountService
}

func NewBalanceHandler(bal *services.BalanceService, acc *services.AccountService) *BalanceHandler {
	return &BalanceHandler{Bal: bal, Acc: acc}
}

type createBalanceReq struct {
	AccountID string          `json:"account_id"`
	Currency  string          `json:"currency"`
	Amount    decimal.Decimal `json:"amount"`
}

func (h *BalanceHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBalanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	if !h.accountVisible(w, r, req.AccountID) {
		return
	}
	b, err := h.Bal.Create(r.Context(), req.AccountID, models.Currency(req.Currency), req.Amount)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, b)
}

func (h *BalanceHandler) Get(w http.ResponseWriter, r *http.Request) {
	b, err := h.Bal.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if !h.accountVisible(w, r, b.AccountID) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

// List pages every balance in the system. Admin only; the route is
// gated by RequireRole.
func (h *BalanceHandler) List(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := paging(w, r)
	if !ok {
		return
	}
	bals, err := h.Bal.List(r.Context(), limit, offset)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, bals)
}

type adjustBalanceReq struct {
	Amount decimal.Decimal `json:"amount"`
}

// Adjust sets a balance to an absolute amount. Admin only; the route is
// gated by RequireRole.
func (h *BalanceHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req adjustBalanceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	b, err := h.Bal.Adjust(r.Context(), chi.URLParam(r, "id"), req.Amount, middleware.CustomerID(r.Context()))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, b)
}

func (h *BalanceHandler) accountVisible(w http.ResponseWriter, r *http.Request, accountID string) bool {
	if middleware.Role(r.Context()) == models.RoleAdmin {
		return true
	}
	owned, err := h.Acc.IsOwnedBy(r.Context(), accountID, middleware.CustomerID(r.Context()))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return false
	}
	if !owned {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your account", nil)
		return false
	}
	return true
}

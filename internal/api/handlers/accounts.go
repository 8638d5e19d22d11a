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

type AccountHandler struct {
	Acc *services.AccountService
	Bal *services.BalanceService
}

func NewAccountHandler(acc *services.AccountService, bal *services.BalanceService) *AccountHandler {
	return &AccountHandler{Acc: acc, Bal: bal}
}

type createAccountReq struct {
	OwnerID        string          `json:"owner_id"`
	Number         string          `json:"number"`
	Type           string          `json:"type"`
	AllowOverdraft bool            `json:"allow_overdraft"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
}

func (h *AccountHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createAccountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	ownerID := req.OwnerID
	if ownerID == "" {
		ownerID = middleware.CustomerID(r.Context())
	}
	if middleware.Role(r.Context()) != models.RoleAdmin && ownerID != middleware.CustomerID(r.Context()) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "cannot open accounts for another customer", nil)
		return
	}
	a, err := h.Acc.Create(r.Context(), services.CreateAccountRequest{
		OwnerID:        ownerID,
		Number:         req.Number,
		Type:           models.AccountType(req.Type),
		AllowOverdraft: req.AllowOverdraft,
		OverdraftLimit: req.OverdraftLimit,
	})
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, a)
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	a, err := h.Acc.Get(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if !h.visible(r, a) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your account", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *AccountHandler) GetByNumber(w http.ResponseWriter, r *http.Request) {
	a, err := h.Acc.GetByNumber(r.Context(), chi.URLParam(r, "number"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if !h.visible(r, a) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your account", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

// List returns accounts for ?owner_id=, defaulting to the caller.
func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	ownerID := r.URL.Query().Get("owner_id")
	if ownerID == "" {
		ownerID = middleware.CustomerID(r.Context())
	}
	if middleware.Role(r.Context()) != models.RoleAdmin && ownerID != middleware.CustomerID(r.Context()) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your accounts", nil)
		return
	}
	accounts, err := h.Acc.ListByOwner(r.Context(), ownerID)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, accounts)
}

type updateAccountReq struct {
	Type           *string          `json:"type"`
	Status         *string          `json:"status"`
	AllowOverdraft *bool            `json:"allow_overdraft"`
	OverdraftLimit *decimal.Decimal `json:"overdraft_limit"`
}

func (h *AccountHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.Acc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if !h.visible(r, a) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your account", nil)
		return
	}
	var req updateAccountReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	upd := services.UpdateAccountRequest{
		AllowOverdraft: req.AllowOverdraft,
		OverdraftLimit: req.OverdraftLimit,
	}
	if req.Type != nil {
		t := models.AccountType(*req.Type)
		upd.Type = &t
	}
	if req.Status != nil {
		st := models.AccountStatus(*req.Status)
		upd.Status = &st
	}
	a, err = h.Acc.Update(r.Context(), id, upd)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, a)
}

func (h *AccountHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.Acc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if !h.visible(r, a) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your account", nil)
		return
	}
	if err := h.Acc.Delete(r.Context(), id); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// Balances lists every currency balance held by the account.
func (h *AccountHandler) Balances(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	a, err := h.Acc.Get(r.Context(), id)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if !h.visible(r, a) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your account", nil)
		return
	}
	balances, err := h.Bal.ListByAccount(r.Context(), id)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, balances)
}

func (h *AccountHandler) visible(r *http.Request, a models.Account) bool {
	ctx := r.Context()
	return middleware.Role(ctx) == models.RoleAdmin || a.OwnerID == middleware.CustomerID(ctx)
}

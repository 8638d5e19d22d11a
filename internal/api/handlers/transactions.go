package handlers

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/kostasdel/banking-backend/internal/api/httpx"
	"github.com/kostasdel/banking-backend/internal/api/validate"
	"github.com/kostasdel/banking-backend/internal/middleware"
	"github.com/kostasdel/banking-backend/internal/models"
	repo "github.com/kostasdel/banking-backend/internal/repository"
	"github.com/kostasdel/banking-backend/internal/services"
)

type TransactionHandler struct {
	Trx *services.TransactionService
	Acc *services.AccountService
}

func NewTransactionHandler(trx *services.TransactionService, acc *services.AccountService) *TransactionHandler {
	return &TransactionHandler{Trx: trx, Acc: acc}
}

type createTransactionReq struct {
	Reference       string          `json:"reference"`
	DebitAccountID  *string         `json:"debit_account_id"`
	CreditAccountID *string         `json:"credit_account_id"`
	Amount          decimal.Decimal `json:"amount"`
	Currency        string          `json:"currency"`
	Type            string          `json:"type"`
}

func (h *TransactionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createTransactionReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	var errs validate.Errs
	for _, check := range []*validate.ErrField{
		validate.Required("currency", req.Currency),
		validate.Required("type", req.Type),
		validate.MaxLen("reference", req.Reference, 64),
	} {
		if check != nil {
			errs = append(errs, *check)
		}
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}

	// A non-admin caller must own the debited account. Crediting a
	// foreign account (a payment to someone else) is allowed.
	if middleware.Role(r.Context()) != models.RoleAdmin && req.DebitAccountID != nil {
		owned, err := h.Acc.IsOwnedBy(r.Context(), *req.DebitAccountID, middleware.CustomerID(r.Context()))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		if !owned {
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "debit account is not yours", nil)
			return
		}
	}

	t, err := h.Trx.Create(r.Context(), services.CreateTransactionRequest{
		Reference:       req.Reference,
		DebitAccountID:  req.DebitAccountID,
		CreditAccountID: req.CreditAccountID,
		Amount:          req.Amount,
		Currency:        models.Currency(req.Currency),
		Type:            models.TransactionType(req.Type),
	})
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, t)
}

func (h *TransactionHandler) Get(w http.ResponseWriter, r *http.Request) {
	t, err := h.Trx.GetByID(r.Context(), chi.URLParam(r, "id"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if !h.visible(w, r, t) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) GetByReference(w http.ResponseWriter, r *http.Request) {
	t, err := h.Trx.GetByReference(r.Context(), chi.URLParam(r, "reference"))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	if !h.visible(w, r, t) {
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

// ListByAccount serves /accounts/{id}/transactions with ?role=debit|credit
// and limit/offset paging.
func (h *TransactionHandler) ListByAccount(w http.ResponseWriter, r *http.Request) {
	accountID := chi.URLParam(r, "id")
	if middleware.Role(r.Context()) != models.RoleAdmin {
		owned, err := h.Acc.IsOwnedBy(r.Context(), accountID, middleware.CustomerID(r.Context()))
		if err != nil {
			httpx.WriteDomainError(w, err)
			return
		}
		if !owned {
			httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your account", nil)
			return
		}
	}

	role := repo.TxnRole(r.URL.Query().Get("role"))
	if role == "" {
		role = repo.RoleAny
	}
	if role != repo.RoleAny && role != repo.RoleDebit && role != repo.RoleCredit {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "role: want debit, credit or any", nil)
		return
	}
	limit, offset, ok := paging(w, r)
	if !ok {
		return
	}

	txns, err := h.Trx.ListByAccount(r.Context(), accountID, role, limit, offset)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txns)
}

// ListByStatus is an admin view over the whole ledger.
func (h *TransactionHandler) ListByStatus(w http.ResponseWriter, r *http.Request) {
	limit, offset, ok := paging(w, r)
	if !ok {
		return
	}
	txns, err := h.Trx.ListByStatus(r.Context(), models.TransactionStatus(r.URL.Query().Get("status")), limit, offset)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, txns)
}

type updateStatusReq struct {
	Status   string     `json:"status"`
	PostedAt *time.Time `json:"posted_at"`
}

func (h *TransactionHandler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req updateStatusReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	if check := validate.Required("status", req.Status); check != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", check.Msg, validate.Errs{*check})
		return
	}
	t, err := h.Trx.UpdateStatus(r.Context(), chi.URLParam(r, "id"), models.TransactionStatus(req.Status), req.PostedAt)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, t)
}

func (h *TransactionHandler) visible(w http.ResponseWriter, r *http.Request, t models.Transaction) bool {
	if middleware.Role(r.Context()) == models.RoleAdmin {
		return true
	}
	cid := middleware.CustomerID(r.Context())
	for _, id := range []*string{t.DebitAccountID, t.CreditAccountID} {
		if id == nil {
			continue
		}
		owned, err := h.Acc.IsOwnedBy(r.Context(), *id, cid)
		if err == nil && owned {
			return true
		}
	}
	httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your transaction", nil)
	return false
}

func paging(w http.ResponseWriter, r *http.Request) (limit, offset int, ok bool) {
	limit, offset = 50, 0
	q := r.URL.Query()
	if v := q.Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || validate.MinInt("limit", int64(n), 1) != nil {
			httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "limit: want a positive integer", nil)
			return 0, 0, false
		}
		if n > 500 {
			n = 500
		}
		limit = n
	}
	if v := q.Get("offset"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || validate.MinInt("offset", int64(n), 0) != nil {
			httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "offset: want a non-negative integer", nil)
			return 0, 0, false
		}
		offset = n
	}
	return limit, offset, true
}

package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kostasdel/banking-backend/internal/api/httpx"
	"github.com/kostasdel/banking-backend/internal/middleware"
	"github.com/kostasdel/banking-backend/internal/models"
	"github.com/kostasdel/banking-backend/internal/services"
)

type CustomerHandler struct {
	Cus *services.CustomerService
}

func NewCustomerHandler(cus *services.CustomerService) *CustomerHandler {
	return &CustomerHandler{Cus: cus}
}

func (h *CustomerHandler) List(w http.ResponseWriter, r *http.Request) {
	customers, err := h.Cus.List(r.Context())
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, customers)
}

func (h *CustomerHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	c, err := h.Cus.Get(r.Context(), id)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

// Me returns the authenticated customer's own record.
func (h *CustomerHandler) Me(w http.ResponseWriter, r *http.Request) {
	c, err := h.Cus.Get(r.Context(), middleware.CustomerID(r.Context()))
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

type updateCustomerReq struct {
	FullName string `json:"full_name"`
	Email    string `json:"email"`
}

func (h *CustomerHandler) Update(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canTouchCustomer(r, id) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your record", nil)
		return
	}
	var req updateCustomerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	c, err := h.Cus.Update(r.Context(), id, req.FullName, req.Email)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

type setRoleReq struct {
	Role string `json:"role"`
}

// SetRole promotes or demotes a customer. Admin only; the route is
// gated by RequireRole.
func (h *CustomerHandler) SetRole(w http.ResponseWriter, r *http.Request) {
	var req setRoleReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	c, err := h.Cus.SetRole(r.Context(), chi.URLParam(r, "id"), req.Role)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, c)
}

func (h *CustomerHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if !canTouchCustomer(r, id) {
		httpx.WriteError(w, http.StatusForbidden, "forbidden", "not your record", nil)
		return
	}
	if err := h.Cus.Delete(r.Context(), id); err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func canTouchCustomer(r *http.Request, id string) bool {
	ctx := r.Context()
	return middleware.Role(ctx) == models.RoleAdmin || middleware.CustomerID(ctx) == id
}

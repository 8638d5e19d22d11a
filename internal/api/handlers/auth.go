package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/kostasdel/banking-backend/internal/api/httpx"
	"github.com/kostasdel/banking-backend/internal/api/validate"
	"github.com/kostasdel/banking-backend/internal/auth"
	"github.com/kostasdel/banking-backend/internal/services"
)

type AuthHandler struct {
	TM  *auth.TokenManager
	Cus *services.CustomerService
}

func NewAuthHandler(tm *auth.TokenManager, cus *services.CustomerService) *AuthHandler {
	return &AuthHandler{TM: tm, Cus: cus}
}

type registerReq struct {
	FullName    string `json:"full_name"`
	Email       string `json:"email"`
	Password    string `json:"password"`
	DateOfBirth string `json:"date_of_birth"` // YYYY-MM-DD
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	var errs validate.Errs
	for _, check := range []*validate.ErrField{
		validate.Required("full_name", req.FullName),
		validate.Required("email", req.Email),
		validate.Required("password", req.Password),
		validate.Required("date_of_birth", req.DateOfBirth),
	} {
		if check != nil {
			errs = append(errs, *check)
		}
	}
	if len(errs) > 0 {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", errs.Error(), errs)
		return
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "validation_failed", "date_of_birth: want YYYY-MM-DD", nil)
		return
	}

	c, err := h.Cus.Register(r.Context(), req.FullName, req.Email, req.Password, dob)
	if err != nil {
		httpx.WriteDomainError(w, err)
		return
	}
	httpx.WriteJSON(w, http.StatusCreated, c)
}

type loginReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type tokenResp struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token"`
	ExpiresAt    time.Time `json:"expires_at"`
	CustomerID   string    `json:"customer_id"`
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.WriteError(w, http.StatusBadRequest, "bad_request", "invalid json", nil)
		return
	}
	c, err := h.Cus.Authenticate(r.Context(), req.Email, req.Password)
	if err != nil {
		httpx.WriteError(w, http.StatusUnauthorized, "invalid_credentials", "invalid credentials", nil)
		return
	}
	access, refresh, exp, err := h.TM.GeneratePair(c.ID, c.Role)
	if err != nil {
		httpx.WriteError(w, http.StatusInternalServerError, "internal_error", "token generation failed", nil)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, tokenResp{
		AccessToken:  access,
		RefreshToken: refresh,
		ExpiresAt:    exp,
		CustomerID:   c.ID,
	})
}

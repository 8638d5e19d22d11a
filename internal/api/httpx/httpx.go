package httpx

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/kostasdel/banking-backend/internal/ledger"
)

type APIError struct {
	Error   string      `json:"error"`
	Code    string      `json:"code"`
	Details interface{} `json:"details,omitempty"`
}

func WriteJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func WriteError(w http.ResponseWriter, status int, code, msg string, details interface{}) {
	WriteJSON(w, status, APIError{
		Error:   msg,
		Code:    code,
		Details: details,
	})
}

// WriteDomainError maps the ledger error kinds onto HTTP statuses.
// Busy gets 503 so clients know a backoff retry is safe; business rule
// rejections get 422 and are final.
func WriteDomainError(w http.ResponseWriter, err error) {
	var (
		validation   *ledger.ValidationError
		notFound     *ledger.NotFoundError
		conflict     *ledger.ConflictError
		insufficient *ledger.InsufficientFundsError
		ownership    *ledger.OwnershipMismatchError
		transition   *ledger.InvalidTransitionError
		inactive     *ledger.AccountInactiveError
	)
	switch {
	case errors.As(err, &validation):
		WriteError(w, http.StatusBadRequest, "validation_failed", validation.Error(),
			map[string]string{"field": validation.Field})
	case errors.As(err, &notFound):
		WriteError(w, http.StatusNotFound, "not_found", notFound.Error(), nil)
	case errors.As(err, &conflict):
		WriteError(w, http.StatusConflict, "conflict", conflict.Error(), nil)
	case errors.As(err, &insufficient):
		WriteError(w, http.StatusUnprocessableEntity, "insufficient_funds", insufficient.Error(),
			map[string]string{
				"available": insufficient.Available.StringFixed(4),
				"requested": insufficient.Requested.StringFixed(4),
				"currency":  string(insufficient.Currency),
			})
	case errors.As(err, &ownership):
		WriteError(w, http.StatusUnprocessableEntity, "ownership_mismatch", ownership.Error(), nil)
	case errors.As(err, &transition):
		WriteError(w, http.StatusConflict, "invalid_transition", transition.Error(), nil)
	case errors.As(err, &inactive):
		WriteError(w, http.StatusUnprocessableEntity, "account_inactive", inactive.Error(), nil)
	case errors.Is(err, ledger.ErrBusy):
		w.Header().Set("Retry-After", "1")
		WriteError(w, http.StatusServiceUnavailable, "busy", "ledger busy, retry with backoff", nil)
	default:
		slog.Error("unhandled error", "err", err)
		WriteError(w, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

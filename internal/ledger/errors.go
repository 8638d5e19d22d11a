// Package ledger holds the pieces the transaction engine is built from:
// the domain error kinds, the per-key consistency guard and the
// account/reference number generators.
package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/kostasdel/banking-backend/internal/models"
)

// ErrBusy is returned when the consistency guard cannot acquire a key
// within its bounded wait. No mutation happened; callers may retry.
var ErrBusy = errors.New("ledger: busy, try again")

// ValidationError rejects a malformed request before anything is
// resolved or persisted.
type ValidationError struct {
	Field string
	Msg   string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Msg)
}

// NotFoundError reports a missing entity. Distinct from business rule
// violations so callers can tell a bad reference from a rejected posting.
type NotFoundError struct {
	Entity string // "account", "balance", "transaction", "customer"
	Key    string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.Entity, e.Key)
}

// ConflictError reports a uniqueness violation: duplicate account number,
// duplicate (account, currency) balance, duplicate email.
type ConflictError struct {
	Entity string
	Key    string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.Entity, e.Key)
}

// InsufficientFundsError carries what was available next to what was
// asked for, for diagnostics.
type InsufficientFundsError struct {
	AccountID string
	Currency  models.Currency
	Available decimal.Decimal
	Requested decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds on account %s: available %s %s, requested %s %s",
		e.AccountID, e.Available, e.Currency, e.Requested, e.Currency)
}

// OwnershipMismatchError rejects an internal transfer between accounts
// of different owners.
type OwnershipMismatchError struct {
	DebitOwnerID  string
	CreditOwnerID string
}

func (e *OwnershipMismatchError) Error() string {
	return fmt.Sprintf("transfer between accounts of different owners (%s vs %s)",
		e.DebitOwnerID, e.CreditOwnerID)
}

// InvalidTransitionError rejects an illegal status change.
type InvalidTransitionError struct {
	From models.TransactionStatus
	To   models.TransactionStatus
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("invalid transition %s -> %s", e.From, e.To)
}

// AccountInactiveError rejects postings touching a frozen or closed account.
type AccountInactiveError struct {
	AccountID string
	Status    models.AccountStatus
}

func (e *AccountInactiveError) Error() string {
	return fmt.Sprintf("account %s is %s", e.AccountID, e.Status)
}

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type TransactionType string

const (
	TxnDeposit    TransactionType = "DEPOSIT"
	TxnWithdrawal TransactionType = "WITHDRAWAL"
	TxnTransfer   TransactionType = "TRANSFER"
	TxnPayment    TransactionType = "PAYMENT"
	TxnFee        TransactionType = "FEE"
	TxnInterest   TransactionType = "INTEREST"
)

func (t TransactionType) IsValid() bool {
	switch t {
	case TxnDeposit, TxnWithdrawal, TxnTransfer, TxnPayment, TxnFee, TxnInterest:
		return true
	}
	return false
}

type TransactionStatus string

const (
	TxnPending   TransactionStatus = "PENDING"
	TxnCompleted TransactionStatus = "COMPLETED"
	TxnFailed    TransactionStatus = "FAILED"
	TxnReversed  TransactionStatus = "REVERSED"
)

func (s TransactionStatus) IsValid() bool {
	switch s {
	case TxnPending, TxnCompleted, TxnFailed, TxnReversed:
		return true
	}
	return false
}

// Terminal statuses admit no further transition, with the single
// exception that COMPLETED may still be reversed.
func (s TransactionStatus) Terminal() bool {
	return s == TxnCompleted || s == TxnFailed || s == TxnReversed
}

// CanTransitionTo encodes the status state machine:
// PENDING -> COMPLETED | FAILED, COMPLETED -> REVERSED.
func (s TransactionStatus) CanTransitionTo(next TransactionStatus) bool {
	switch s {
	case TxnPending:
		return next == TxnCompleted || next == TxnFailed
	case TxnCompleted:
		return next == TxnReversed
	}
	return false
}

// Transaction records one movement of value. A nil DebitAccountID means
// funds entered from outside; a nil CreditAccountID means they left.
// Amount, accounts, reference and CreatedAt never change after creation.
type Transaction struct {
	ID              string            `json:"id"`
	Reference       string            `json:"reference"`
	DebitAccountID  *string           `json:"debit_account_id,omitempty"`
	CreditAccountID *string           `json:"credit_account_id,omitempty"`
	Amount          decimal.Decimal   `json:"amount"`
	Currency        Currency          `json:"currency"`
	Type            TransactionType   `json:"type"`
	Status          TransactionStatus `json:"status"`
	CreatedAt       time.Time         `json:"created_at"`
	PostedAt        *time.Time        `json:"posted_at,omitempty"`
}

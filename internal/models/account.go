package models

import (
	"time"

	"github.com/shopspring/decimal"
)

type AccountType string

const (
	AccountChecking AccountType = "CHECKING"
	AccountSavings  AccountType = "SAVINGS"
	AccountBusiness AccountType = "BUSINESS"
)

func (t AccountType) IsValid() bool {
	switch t {
	case AccountChecking, AccountSavings, AccountBusiness:
		return true
	}
	return false
}

type AccountStatus string

const (
	AccountActive AccountStatus = "ACTIVE"
	AccountFrozen AccountStatus = "FROZEN"
	AccountClosed AccountStatus = "CLOSED"
)

func (s AccountStatus) IsValid() bool {
	switch s {
	case AccountActive, AccountFrozen, AccountClosed:
		return true
	}
	return false
}

// Account holds identity and policy; money lives in Balance rows.
// Number and OwnerID are immutable after creation.
type Account struct {
	ID             string          `json:"id"`
	Number         string          `json:"number"`
	Type           AccountType     `json:"type"`
	Status         AccountStatus   `json:"status"`
	OwnerID        string          `json:"owner_id"`
	AllowOverdraft bool            `json:"allow_overdraft"`
	OverdraftLimit decimal.Decimal `json:"overdraft_limit"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// Floor is the lowest amount a debit may leave on any of the
// account's balances: zero, or -OverdraftLimit when overdraft is on.
func (a *Account) Floor() decimal.Decimal {
	if a.AllowOverdraft {
		return a.OverdraftLimit.Neg()
	}
	return decimal.Zero
}

// CanPost reports whether the account may participate in a posting.
func (a *Account) CanPost() bool { return a.Status == AccountActive }

package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Balance is the per (account, currency) amount, scale 4.
// At most one row exists per pair; only the transaction engine
// mutates Amount, always through the consistency guard.
type Balance struct {
	ID            string          `json:"id"`
	AccountID     string          `json:"account_id"`
	Currency      Currency        `json:"currency"`
	Amount        decimal.Decimal `json:"amount"`
	LastUpdatedAt time.Time       `json:"last_updated_at"`
}

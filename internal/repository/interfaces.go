package repository

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kostasdel/banking-backend/internal/models"
)

// TxnRole filters transaction listings by which side an account is on.
type TxnRole string

const (
	RoleDebit  TxnRole = "debit"
	RoleCredit TxnRole = "credit"
	RoleAny    TxnRole = "any"
)

// BalanceChange is one signed delta against a balance row. A set of
// changes handed to the transactions store commits atomically with the
// transaction record or not at all.
type BalanceChange struct {
	AccountID string
	Currency  models.Currency
	Delta     decimal.Decimal
}

type Customers interface {
	Create(ctx context.Context, c models.Customer) (models.Customer, error)
	GetByID(ctx context.Context, id string) (models.Customer, error)
	GetByEmail(ctx context.Context, email string) (models.Customer, error)
	List(ctx context.Context) ([]models.Customer, error)
	Update(ctx context.Context, c models.Customer) (models.Customer, error)
	Delete(ctx context.Context, id string) error
}

type Accounts interface {
	// Create persists the account and records its number in the issued
	// registry. Issued numbers survive account deletion forever.
	Create(ctx context.Context, a models.Account) (models.Account, error)
	GetByID(ctx context.Context, id string) (models.Account, error)
	GetByNumber(ctx context.Context, number string) (models.Account, error)
	ListByOwner(ctx context.Context, ownerID string) ([]models.Account, error)
	Update(ctx context.Context, a models.Account) (models.Account, error)
	Delete(ctx context.Context, id string) error
	NumberIssued(ctx context.Context, number string) (bool, error)
}

type Balances interface {
	Create(ctx context.Context, b models.Balance) (models.Balance, error)
	GetByID(ctx context.Context, id string) (models.Balance, error)
	Get(ctx context.Context, accountID string, currency models.Currency) (models.Balance, error)
	ListByAccount(ctx context.Context, accountID string) ([]models.Balance, error)
	// List pages over every balance row, ordered by account then currency.
	List(ctx context.Context, limit, offset int) ([]models.Balance, error)
	// SumForAccount totals the account's balances in one currency.
	// At most one row exists per pair; summing keeps the funds check
	// honest even if that invariant were ever violated.
	SumForAccount(ctx context.Context, accountID string, currency models.Currency) (decimal.Decimal, error)
	// SetAmount is the administrative absolute write, outside normal
	// posting flow.
	SetAmount(ctx context.Context, id string, amount decimal.Decimal) (models.Balance, error)
	ExistsForAccount(ctx context.Context, accountID string) (bool, error)
}

type Transactions interface {
	// CreateWithPosting inserts the transaction and applies changes as a
	// single atomic unit. changes is empty for FAILED records. A duplicate
	// reference yields a Conflict with nothing applied.
	CreateWithPosting(ctx context.Context, tx models.Transaction, changes []BalanceChange) (models.Transaction, error)
	GetByID(ctx context.Context, id string) (models.Transaction, error)
	GetByReference(ctx context.Context, ref string) (models.Transaction, error)
	ListByAccount(ctx context.Context, accountID string, role TxnRole, limit, offset int) ([]models.Transaction, error)
	// ListByStatus pages the ledger filtered by status; an empty status
	// lists every transaction.
	ListByStatus(ctx context.Context, status models.TransactionStatus, limit, offset int) ([]models.Transaction, error)
	// UpdateStatus writes the new status (and postedAt when non-nil) and
	// applies changes in the same atomic unit; used plain for PENDING
	// transitions and with inverse deltas for reversals.
	UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, postedAt *time.Time, changes []BalanceChange) (models.Transaction, error)
	ExistsForAccount(ctx context.Context, accountID string) (bool, error)
}

type AuditLogs interface {
	Create(ctx context.Context, l models.AuditLog) error
}

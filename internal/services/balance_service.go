package services

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
	repo "github.com/kostasdel/banking-backend/internal/repository"
	"github.com/kostasdel/banking-backend/internal/worker"
)

type BalanceService struct {
	bal   repo.Balances
	acc   repo.Accounts
	logs  repo.AuditLogs
	guard *ledger.Guard
	wp    *worker.Pool
}

func NewBalanceService(b repo.Balances, a repo.Accounts, l repo.AuditLogs, g *ledger.Guard, wp *worker.Pool) *BalanceService {
	return &BalanceService{bal: b, acc: a, logs: l, guard: g, wp: wp}
}

func (s *BalanceService) Get(ctx context.Context, id string) (models.Balance, error) {
	return s.bal.GetByID(ctx, id)
}

func (s *BalanceService) GetForAccount(ctx context.Context, accountID string, currency models.Currency) (models.Balance, error) {
	if !currency.IsValid() {
		return models.Balance{}, &ledger.ValidationError{Field: "currency", Msg: "unrecognized code"}
	}
	return s.bal.Get(ctx, accountID, currency)
}

func (s *BalanceService) ListByAccount(ctx context.Context, accountID string) ([]models.Balance, error) {
	if _, err := s.acc.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.bal.ListByAccount(ctx, accountID)
}

// List pages every balance row across all accounts.
func (s *BalanceService) List(ctx context.Context, limit, offset int) ([]models.Balance, error) {
	return s.bal.List(ctx, limit, offset)
}

// Create opens a balance row for a currency the account does not hold
// yet. The pair is unique; a second open for the same currency conflicts.
func (s *BalanceService) Create(ctx context.Context, accountID string, currency models.Currency, amount decimal.Decimal) (models.Balance, error) {
	if !currency.IsValid() {
		return models.Balance{}, &ledger.ValidationError{Field: "currency", Msg: "unrecognized code"}
	}
	if amount.IsNegative() {
		return models.Balance{}, &ledger.ValidationError{Field: "amount", Msg: "must be >= 0"}
	}
	if _, err := s.acc.GetByID(ctx, accountID); err != nil {
		return models.Balance{}, err
	}

	release, err := s.guard.Acquire(ctx, accountID, currency)
	if err != nil {
		return models.Balance{}, err
	}
	defer release()

	return s.bal.Create(ctx, models.Balance{
		AccountID: accountID,
		Currency:  currency,
		Amount:    amount,
	})
}

// Adjust is the administrative absolute write, outside the normal
// posting flow. It runs under the same per-key exclusivity as postings
// and leaves an audit trail.
func (s *BalanceService) Adjust(ctx context.Context, id string, amount decimal.Decimal, actor string) (models.Balance, error) {
	b, err := s.bal.GetByID(ctx, id)
	if err != nil {
		return models.Balance{}, err
	}

	release, err := s.guard.Acquire(ctx, b.AccountID, b.Currency)
	if err != nil {
		return models.Balance{}, err
	}
	defer release()

	updated, err := s.bal.SetAmount(ctx, id, amount)
	if err != nil {
		return models.Balance{}, err
	}

	entityID := id
	rec := models.AuditLog{
		EntityType: "balance",
		EntityID:   &entityID,
		Action:     "adjusted",
		Details: map[string]any{
			"actor": actor,
			"from":  b.Amount.String(),
			"to":    amount.String(),
		},
	}
	s.wp.Submit(func() { _ = s.logs.Create(context.Background(), rec) })
	return updated, nil
}

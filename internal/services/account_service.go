package services

import (
	"context"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
	repo "github.com/kostasdel/banking-backend/internal/repository"
)

type CreateAccountRequest struct {
	OwnerID        string
	Number         string // optional; generated when empty
	Type           models.AccountType
	AllowOverdraft bool
	OverdraftLimit decimal.Decimal
}

type UpdateAccountRequest struct {
	Type           *models.AccountType
	Status         *models.AccountStatus
	AllowOverdraft *bool
	OverdraftLimit *decimal.Decimal
}

type AccountService struct {
	acc repo.Accounts
	bal repo.Balances
	trx repo.Transactions
	cus repo.Customers
}

func NewAccountService(a repo.Accounts, b repo.Balances, t repo.Transactions, c repo.Customers) *AccountService {
	return &AccountService{acc: a, bal: b, trx: t, cus: c}
}

func (s *AccountService) Create(ctx context.Context, req CreateAccountRequest) (models.Account, error) {
	if !req.Type.IsValid() {
		return models.Account{}, &ledger.ValidationError{Field: "type", Msg: "unknown account type"}
	}
	if req.OverdraftLimit.IsNegative() {
		return models.Account{}, &ledger.ValidationError{Field: "overdraft_limit", Msg: "must be >= 0"}
	}
	if _, err := s.cus.GetByID(ctx, req.OwnerID); err != nil {
		return models.Account{}, err
	}

	number := strings.TrimSpace(req.Number)
	if number == "" {
		n, err := s.freshNumber(ctx)
		if err != nil {
			return models.Account{}, err
		}
		number = n
	}

	return s.acc.Create(ctx, models.Account{
		Number:         number,
		Type:           req.Type,
		Status:         models.AccountActive,
		OwnerID:        req.OwnerID,
		AllowOverdraft: req.AllowOverdraft,
		OverdraftLimit: req.OverdraftLimit,
	})
}

// freshNumber draws generated numbers until one is unissued. The
// registry holds every number ever handed out, so a collision retry is
// about a 1-in-10^9 event per draw.
func (s *AccountService) freshNumber(ctx context.Context) (string, error) {
	for i := 0; i < 5; i++ {
		n := ledger.NewAccountNumber()
		issued, err := s.acc.NumberIssued(ctx, n)
		if err != nil {
			return "", err
		}
		if !issued {
			return n, nil
		}
	}
	return "", &ledger.ConflictError{Entity: "account number", Key: "generator exhausted retries"}
}

func (s *AccountService) Get(ctx context.Context, id string) (models.Account, error) {
	return s.acc.GetByID(ctx, id)
}

func (s *AccountService) GetByNumber(ctx context.Context, number string) (models.Account, error) {
	return s.acc.GetByNumber(ctx, number)
}

func (s *AccountService) ListByOwner(ctx context.Context, ownerID string) ([]models.Account, error) {
	if _, err := s.cus.GetByID(ctx, ownerID); err != nil {
		return nil, err
	}
	return s.acc.ListByOwner(ctx, ownerID)
}

// IsOwnedBy reports whether the account belongs to the customer.
func (s *AccountService) IsOwnedBy(ctx context.Context, accountID, customerID string) (bool, error) {
	a, err := s.acc.GetByID(ctx, accountID)
	if err != nil {
		return false, err
	}
	return a.OwnerID == customerID, nil
}

func (s *AccountService) Update(ctx context.Context, id string, req UpdateAccountRequest) (models.Account, error) {
	a, err := s.acc.GetByID(ctx, id)
	if err != nil {
		return models.Account{}, err
	}
	if req.Type != nil {
		if !req.Type.IsValid() {
			return models.Account{}, &ledger.ValidationError{Field: "type", Msg: "unknown account type"}
		}
		a.Type = *req.Type
	}
	if req.Status != nil {
		if !req.Status.IsValid() {
			return models.Account{}, &ledger.ValidationError{Field: "status", Msg: "unknown account status"}
		}
		a.Status = *req.Status
	}
	if req.AllowOverdraft != nil {
		a.AllowOverdraft = *req.AllowOverdraft
	}
	if req.OverdraftLimit != nil {
		if req.OverdraftLimit.IsNegative() {
			return models.Account{}, &ledger.ValidationError{Field: "overdraft_limit", Msg: "must be >= 0"}
		}
		a.OverdraftLimit = *req.OverdraftLimit
	}
	return s.acc.Update(ctx, a)
}

// Delete removes an account that nothing references. Accounts with
// balances or transaction history cannot be deleted; close them instead.
// The account number stays issued either way.
func (s *AccountService) Delete(ctx context.Context, id string) error {
	if _, err := s.acc.GetByID(ctx, id); err != nil {
		return err
	}
	hasBalances, err := s.bal.ExistsForAccount(ctx, id)
	if err != nil {
		return err
	}
	if hasBalances {
		return &ledger.ConflictError{Entity: "account", Key: id + " has balances"}
	}
	hasTxns, err := s.trx.ExistsForAccount(ctx, id)
	if err != nil {
		return err
	}
	if hasTxns {
		return &ledger.ConflictError{Entity: "account", Key: id + " has transactions"}
	}
	return s.acc.Delete(ctx, id)
}

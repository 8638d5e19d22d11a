package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/metrics"
	"github.com/kostasdel/banking-backend/internal/models"
	repo "github.com/kostasdel/banking-backend/internal/repository"
	"github.com/kostasdel/banking-backend/internal/worker"
)

// CreateTransactionRequest is the engine's input. Reference doubles as
// the idempotency key; an empty one gets a system-assigned reference.
type CreateTransactionRequest struct {
	Reference       string
	DebitAccountID  *string
	CreditAccountID *string
	Amount          decimal.Decimal
	Currency        models.Currency
	Type            models.TransactionType
}

// TransactionService is the transaction engine: the only writer of
// balance amounts, and the owner of the transaction lifecycle.
type TransactionService struct {
	trx   repo.Transactions
	acc   repo.Accounts
	bal   repo.Balances
	logs  repo.AuditLogs
	guard *ledger.Guard
	wp    *worker.Pool

	// sameOwnerTransfers makes TRANSFER between two internal accounts
	// require a single owner.
	sameOwnerTransfers bool
}

func NewTransactionService(t repo.Transactions, a repo.Accounts, b repo.Balances, l repo.AuditLogs, g *ledger.Guard, wp *worker.Pool, sameOwnerTransfers bool) *TransactionService {
	return &TransactionService{trx: t, acc: a, bal: b, logs: l, guard: g, wp: wp, sameOwnerTransfers: sameOwnerTransfers}
}

// ----------------- helpers -----------------

func (s *TransactionService) audit(txID, action, details string) {
	id := txID
	rec := models.AuditLog{
		EntityType: "transaction",
		EntityID:   &id,
		Action:     action,
	}
	if details != "" {
		rec.Details = map[string]any{"message": details}
	}
	s.wp.Submit(func() { _ = s.logs.Create(context.Background(), rec) })
}

func (s *TransactionService) resolve(ctx context.Context, id *string) (*models.Account, error) {
	if id == nil {
		return nil, nil
	}
	a, err := s.acc.GetByID(ctx, *id)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func validateRequest(req CreateTransactionRequest) error {
	if !req.Amount.IsPositive() {
		return &ledger.ValidationError{Field: "amount", Msg: "must be > 0"}
	}
	if !req.Currency.IsValid() {
		return &ledger.ValidationError{Field: "currency", Msg: "unrecognized code"}
	}
	if !req.Type.IsValid() {
		return &ledger.ValidationError{Field: "type", Msg: "unknown transaction type"}
	}
	if req.DebitAccountID == nil && req.CreditAccountID == nil {
		return &ledger.ValidationError{Field: "accounts", Msg: "at least one of debit or credit account is required"}
	}
	switch req.Type {
	case models.TxnTransfer:
		if req.DebitAccountID == nil || req.CreditAccountID == nil {
			return &ledger.ValidationError{Field: "accounts", Msg: "transfer requires both accounts"}
		}
	case models.TxnWithdrawal:
		if req.DebitAccountID == nil {
			return &ledger.ValidationError{Field: "debit_account_id", Msg: "withdrawal requires a debit account"}
		}
	case models.TxnDeposit:
		if req.CreditAccountID == nil {
			return &ledger.ValidationError{Field: "credit_account_id", Msg: "deposit requires a credit account"}
		}
	}
	return nil
}

func guardKeys(req CreateTransactionRequest) []ledger.Key {
	var keys []ledger.Key
	if req.DebitAccountID != nil {
		keys = append(keys, ledger.Key{AccountID: *req.DebitAccountID, Currency: req.Currency})
	}
	if req.CreditAccountID != nil {
		keys = append(keys, ledger.Key{AccountID: *req.CreditAccountID, Currency: req.Currency})
	}
	return keys
}

// persistFailed records a rejected posting as a FAILED transaction with
// no balance effect. A reference race here means another submission of
// the same request already produced a record; that one wins.
func (s *TransactionService) persistFailed(ctx context.Context, req CreateTransactionRequest, reason string) {
	rec := models.Transaction{
		Reference:       req.Reference,
		DebitAccountID:  req.DebitAccountID,
		CreditAccountID: req.CreditAccountID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Type:            req.Type,
		Status:          models.TxnFailed,
	}
	created, err := s.trx.CreateWithPosting(ctx, rec, nil)
	if err != nil {
		return
	}
	metrics.PostingsFailed.WithLabelValues(reason).Inc()
	s.audit(created.ID, "failed", reason)
}

// ----------------- create -----------------

// Create runs the full posting flow: validation, account resolution,
// policy checks, then the atomic funds-check-and-post under the
// consistency guard. The returned transaction is terminal.
func (s *TransactionService) Create(ctx context.Context, req CreateTransactionRequest) (models.Transaction, error) {
	if req.Reference == "" {
		req.Reference = ledger.NewReference()
	}
	if err := validateRequest(req); err != nil {
		return models.Transaction{}, err
	}

	// Idempotency: a reference already on file returns its record.
	if existing, err := s.trx.GetByReference(ctx, req.Reference); err == nil {
		return existing, nil
	} else if !isNotFound(err) {
		return models.Transaction{}, err
	}

	debit, err := s.resolve(ctx, req.DebitAccountID)
	if err != nil {
		return models.Transaction{}, err
	}
	credit, err := s.resolve(ctx, req.CreditAccountID)
	if err != nil {
		return models.Transaction{}, err
	}

	for _, a := range []*models.Account{debit, credit} {
		if a != nil && !a.CanPost() {
			s.persistFailed(ctx, req, "account_inactive")
			return models.Transaction{}, &ledger.AccountInactiveError{AccountID: a.ID, Status: a.Status}
		}
	}

	if req.Type == models.TxnTransfer && s.sameOwnerTransfers && debit.OwnerID != credit.OwnerID {
		s.persistFailed(ctx, req, "ownership_mismatch")
		return models.Transaction{}, &ledger.OwnershipMismatchError{
			DebitOwnerID:  debit.OwnerID,
			CreditOwnerID: credit.OwnerID,
		}
	}

	release, err := s.guard.AcquireMany(ctx, guardKeys(req)...)
	if err != nil {
		if errors.Is(err, ledger.ErrBusy) {
			metrics.GuardTimeouts.Inc()
		}
		return models.Transaction{}, err
	}
	defer release()

	// Funds check and mutation happen inside the same critical section;
	// no concurrent posting against these keys can interleave.
	if debit != nil {
		available, err := s.bal.SumForAccount(ctx, debit.ID, req.Currency)
		if err != nil {
			return models.Transaction{}, err
		}
		if available.Sub(req.Amount).LessThan(debit.Floor()) {
			s.persistFailed(ctx, req, "insufficient_funds")
			return models.Transaction{}, &ledger.InsufficientFundsError{
				AccountID: debit.ID,
				Currency:  req.Currency,
				Available: available,
				Requested: req.Amount,
			}
		}
	}

	var changes []repo.BalanceChange
	if debit != nil {
		changes = append(changes, repo.BalanceChange{AccountID: debit.ID, Currency: req.Currency, Delta: req.Amount.Neg()})
	}
	if credit != nil {
		changes = append(changes, repo.BalanceChange{AccountID: credit.ID, Currency: req.Currency, Delta: req.Amount})
	}

	now := time.Now()
	created, err := s.trx.CreateWithPosting(ctx, models.Transaction{
		Reference:       req.Reference,
		DebitAccountID:  req.DebitAccountID,
		CreditAccountID: req.CreditAccountID,
		Amount:          req.Amount,
		Currency:        req.Currency,
		Type:            req.Type,
		Status:          models.TxnCompleted,
		PostedAt:        &now,
	}, changes)
	if err != nil {
		var conflict *ledger.ConflictError
		if errors.As(err, &conflict) {
			// Lost a reference race; nothing was applied. Return the
			// record the winner produced.
			return s.trx.GetByReference(ctx, req.Reference)
		}
		return models.Transaction{}, err
	}

	metrics.PostingsTotal.WithLabelValues(string(req.Type)).Inc()
	s.audit(created.ID, "posted", fmt.Sprintf("%s %s %s", req.Type, req.Amount, req.Currency))
	return created, nil
}

// ----------------- status -----------------

// UpdateStatus applies the status state machine. COMPLETED without an
// explicit postedAt is stamped with the current time; a reversal posts
// the inverse balance adjustment in the same atomic unit.
func (s *TransactionService) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, postedAt *time.Time) (models.Transaction, error) {
	if !status.IsValid() {
		return models.Transaction{}, &ledger.ValidationError{Field: "status", Msg: "unknown status"}
	}

	cur, err := s.trx.GetByID(ctx, id)
	if err != nil {
		return models.Transaction{}, err
	}
	if !cur.Status.CanTransitionTo(status) {
		return models.Transaction{}, &ledger.InvalidTransitionError{From: cur.Status, To: status}
	}

	if status == models.TxnCompleted && postedAt == nil {
		now := time.Now()
		postedAt = &now
	}

	if status == models.TxnReversed {
		return s.reverse(ctx, cur)
	}

	updated, err := s.trx.UpdateStatus(ctx, id, status, postedAt, nil)
	if err != nil {
		return models.Transaction{}, err
	}
	s.audit(id, "status_change", string(status))
	return updated, nil
}

func (s *TransactionService) reverse(ctx context.Context, cur models.Transaction) (models.Transaction, error) {
	var keys []ledger.Key
	var changes []repo.BalanceChange
	if cur.DebitAccountID != nil {
		keys = append(keys, ledger.Key{AccountID: *cur.DebitAccountID, Currency: cur.Currency})
		changes = append(changes, repo.BalanceChange{AccountID: *cur.DebitAccountID, Currency: cur.Currency, Delta: cur.Amount})
	}
	if cur.CreditAccountID != nil {
		keys = append(keys, ledger.Key{AccountID: *cur.CreditAccountID, Currency: cur.Currency})
		changes = append(changes, repo.BalanceChange{AccountID: *cur.CreditAccountID, Currency: cur.Currency, Delta: cur.Amount.Neg()})
	}

	release, err := s.guard.AcquireMany(ctx, keys...)
	if err != nil {
		if errors.Is(err, ledger.ErrBusy) {
			metrics.GuardTimeouts.Inc()
		}
		return models.Transaction{}, err
	}
	defer release()

	// Re-read under the guard so two concurrent reversals cannot both
	// see COMPLETED and apply the adjustment twice.
	cur, err = s.trx.GetByID(ctx, cur.ID)
	if err != nil {
		return models.Transaction{}, err
	}
	if !cur.Status.CanTransitionTo(models.TxnReversed) {
		return models.Transaction{}, &ledger.InvalidTransitionError{From: cur.Status, To: models.TxnReversed}
	}

	updated, err := s.trx.UpdateStatus(ctx, cur.ID, models.TxnReversed, nil, changes)
	if err != nil {
		return models.Transaction{}, err
	}
	metrics.PostingsTotal.WithLabelValues("REVERSAL").Inc()
	s.audit(cur.ID, "reversed", "compensating adjustment applied")
	return updated, nil
}

// ----------------- queries -----------------

func (s *TransactionService) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	return s.trx.GetByID(ctx, id)
}

func (s *TransactionService) GetByReference(ctx context.Context, ref string) (models.Transaction, error) {
	return s.trx.GetByReference(ctx, ref)
}

func (s *TransactionService) ListByAccount(ctx context.Context, accountID string, role repo.TxnRole, limit, offset int) ([]models.Transaction, error) {
	if _, err := s.acc.GetByID(ctx, accountID); err != nil {
		return nil, err
	}
	return s.trx.ListByAccount(ctx, accountID, role, limit, offset)
}

// ListByStatus pages the whole ledger; an empty status means every
// transaction regardless of status.
func (s *TransactionService) ListByStatus(ctx context.Context, status models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	if status != "" && !status.IsValid() {
		return nil, &ledger.ValidationError{Field: "status", Msg: "unknown status"}
	}
	return s.trx.ListByStatus(ctx, status, limit, offset)
}

func isNotFound(err error) bool {
	var nf *ledger.NotFoundError
	return errors.As(err, &nf)
}

package memory

import (
	"context"
	"time"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
	repo "github.com/kostasdel/banking-backend/internal/repository"
)

type transactionsRepo struct{ s *Store }

// applyChangesLocked mutates balance rows; callers hold the store lock.
func (r *transactionsRepo) applyChangesLocked(changes []repo.BalanceChange) {
	for _, ch := range changes {
		key := balanceKey{ch.AccountID, ch.Currency}
		id, ok := r.s.balanceByKey[key]
		if !ok {
			b := models.Balance{
				ID:            newID(),
				AccountID:     ch.AccountID,
				Currency:      ch.Currency,
				Amount:        ch.Delta,
				LastUpdatedAt: time.Now(),
			}
			r.s.balances[b.ID] = b
			r.s.balanceByKey[key] = b.ID
			continue
		}
		b := r.s.balances[id]
		b.Amount = b.Amount.Add(ch.Delta)
		b.LastUpdatedAt = time.Now()
		r.s.balances[id] = b
	}
}

func (r *transactionsRepo) CreateWithPosting(_ context.Context, t models.Transaction, changes []repo.BalanceChange) (models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.txnByRef[t.Reference]; ok {
		return models.Transaction{}, &ledger.ConflictError{Entity: "transaction", Key: t.Reference}
	}
	if t.ID == "" {
		t.ID = newID()
	}
	t.CreatedAt = time.Now()
	r.s.txns[t.ID] = t
	r.s.txnByRef[t.Reference] = t.ID
	r.applyChangesLocked(changes)
	return t, nil
}

func (r *transactionsRepo) GetByID(_ context.Context, id string) (models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	t, ok := r.s.txns[id]
	if !ok {
		return models.Transaction{}, &ledger.NotFoundError{Entity: "transaction", Key: id}
	}
	return t, nil
}

func (r *transactionsRepo) GetByReference(_ context.Context, ref string) (models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.txnByRef[ref]
	if !ok {
		return models.Transaction{}, &ledger.NotFoundError{Entity: "transaction", Key: ref}
	}
	return r.s.txns[id], nil
}

func (r *transactionsRepo) ListByAccount(_ context.Context, accountID string, role repo.TxnRole, limit, offset int) ([]models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Transaction
	for _, t := range r.s.txns {
		debit := t.DebitAccountID != nil && *t.DebitAccountID == accountID
		credit := t.CreditAccountID != nil && *t.CreditAccountID == accountID
		switch role {
		case repo.RoleDebit:
			if !debit {
				continue
			}
		case repo.RoleCredit:
			if !credit {
				continue
			}
		default:
			if !debit && !credit {
				continue
			}
		}
		out = append(out, t)
	}
	sortTxnsNewestFirst(out)
	return page(out, limit, offset), nil
}

func (r *transactionsRepo) ListByStatus(_ context.Context, status models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Transaction
	for _, t := range r.s.txns {
		if status != "" && t.Status != status {
			continue
		}
		out = append(out, t)
	}
	sortTxnsNewestFirst(out)
	return page(out, limit, offset), nil
}

func (r *transactionsRepo) UpdateStatus(_ context.Context, id string, status models.TransactionStatus, postedAt *time.Time, changes []repo.BalanceChange) (models.Transaction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t, ok := r.s.txns[id]
	if !ok {
		return models.Transaction{}, &ledger.NotFoundError{Entity: "transaction", Key: id}
	}
	t.Status = status
	if postedAt != nil {
		t.PostedAt = postedAt
	}
	r.s.txns[id] = t
	r.applyChangesLocked(changes)
	return t, nil
}

func (r *transactionsRepo) ExistsForAccount(_ context.Context, accountID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, t := range r.s.txns {
		if (t.DebitAccountID != nil && *t.DebitAccountID == accountID) ||
			(t.CreditAccountID != nil && *t.CreditAccountID == accountID) {
			return true, nil
		}
	}
	return false, nil
}

type auditLogsRepo struct{ s *Store }

func (r *auditLogsRepo) Create(_ context.Context, l models.AuditLog) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l.ID == "" {
		l.ID = newID()
	}
	l.CreatedAt = time.Now()
	r.s.audits = append(r.s.audits, l)
	return nil
}

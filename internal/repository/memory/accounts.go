package memory

import (
	"context"
	"sort"
	"time"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
)

type accountsRepo struct{ s *Store }

func (r *accountsRepo) Create(_ context.Context, a models.Account) (models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, issued := r.s.issuedNumbers[a.Number]; issued {
		return models.Account{}, &ledger.ConflictError{Entity: "account number", Key: a.Number}
	}
	if a.ID == "" {
		a.ID = newID()
	}
	now := time.Now()
	a.CreatedAt, a.UpdatedAt = now, now
	r.s.accounts[a.ID] = a
	r.s.accountsByNumber[a.Number] = a.ID
	r.s.issuedNumbers[a.Number] = struct{}{}
	return a, nil
}

func (r *accountsRepo) GetByID(_ context.Context, id string) (models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return models.Account{}, &ledger.NotFoundError{Entity: "account", Key: id}
	}
	return a, nil
}

func (r *accountsRepo) GetByNumber(_ context.Context, number string) (models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.accountsByNumber[number]
	if !ok {
		return models.Account{}, &ledger.NotFoundError{Entity: "account", Key: number}
	}
	return r.s.accounts[id], nil
}

func (r *accountsRepo) ListByOwner(_ context.Context, ownerID string) ([]models.Account, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Account
	for _, a := range r.s.accounts {
		if a.OwnerID == ownerID {
			out = append(out, a)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *accountsRepo) Update(_ context.Context, a models.Account) (models.Account, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.accounts[a.ID]
	if !ok {
		return models.Account{}, &ledger.NotFoundError{Entity: "account", Key: a.ID}
	}
	// number and owner are immutable
	cur.Type = a.Type
	cur.Status = a.Status
	cur.AllowOverdraft = a.AllowOverdraft
	cur.OverdraftLimit = a.OverdraftLimit
	cur.UpdatedAt = time.Now()
	r.s.accounts[a.ID] = cur
	return cur, nil
}

func (r *accountsRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	a, ok := r.s.accounts[id]
	if !ok {
		return &ledger.NotFoundError{Entity: "account", Key: id}
	}
	delete(r.s.accounts, id)
	delete(r.s.accountsByNumber, a.Number)
	// issuedNumbers keeps the number so it is never handed out again
	return nil
}

func (r *accountsRepo) NumberIssued(_ context.Context, number string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	_, ok := r.s.issuedNumbers[number]
	return ok, nil
}

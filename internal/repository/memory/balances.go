package memory

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
)

type balancesRepo struct{ s *Store }

func (r *balancesRepo) Create(_ context.Context, b models.Balance) (models.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	key := balanceKey{b.AccountID, b.Currency}
	if _, ok := r.s.balanceByKey[key]; ok {
		return models.Balance{}, &ledger.ConflictError{Entity: "balance", Key: b.AccountID + "/" + string(b.Currency)}
	}
	if b.ID == "" {
		b.ID = newID()
	}
	b.LastUpdatedAt = time.Now()
	r.s.balances[b.ID] = b
	r.s.balanceByKey[key] = b.ID
	return b, nil
}

func (r *balancesRepo) GetByID(_ context.Context, id string) (models.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	b, ok := r.s.balances[id]
	if !ok {
		return models.Balance{}, &ledger.NotFoundError{Entity: "balance", Key: id}
	}
	return b, nil
}

func (r *balancesRepo) Get(_ context.Context, accountID string, currency models.Currency) (models.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.balanceByKey[balanceKey{accountID, currency}]
	if !ok {
		return models.Balance{}, &ledger.NotFoundError{Entity: "balance", Key: accountID + "/" + string(currency)}
	}
	return r.s.balances[id], nil
}

func (r *balancesRepo) ListByAccount(_ context.Context, accountID string) ([]models.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	var out []models.Balance
	for _, b := range r.s.balances {
		if b.AccountID == accountID {
			out = append(out, b)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Currency < out[j].Currency })
	return out, nil
}

func (r *balancesRepo) List(_ context.Context, limit, offset int) ([]models.Balance, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	all := make([]models.Balance, 0, len(r.s.balances))
	for _, b := range r.s.balances {
		all = append(all, b)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].AccountID != all[j].AccountID {
			return all[i].AccountID < all[j].AccountID
		}
		return all[i].Currency < all[j].Currency
	})
	if offset >= len(all) {
		return nil, nil
	}
	all = all[offset:]
	if limit < len(all) {
		all = all[:limit]
	}
	return all, nil
}

func (r *balancesRepo) SumForAccount(_ context.Context, accountID string, currency models.Currency) (decimal.Decimal, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	sum := decimal.Zero
	for _, b := range r.s.balances {
		if b.AccountID == accountID && b.Currency == currency {
			sum = sum.Add(b.Amount)
		}
	}
	return sum, nil
}

func (r *balancesRepo) SetAmount(_ context.Context, id string, amount decimal.Decimal) (models.Balance, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	b, ok := r.s.balances[id]
	if !ok {
		return models.Balance{}, &ledger.NotFoundError{Entity: "balance", Key: id}
	}
	b.Amount = amount
	b.LastUpdatedAt = time.Now()
	r.s.balances[id] = b
	return b, nil
}

func (r *balancesRepo) ExistsForAccount(_ context.Context, accountID string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	for _, b := range r.s.balances {
		if b.AccountID == accountID {
			return true, nil
		}
	}
	return false, nil
}

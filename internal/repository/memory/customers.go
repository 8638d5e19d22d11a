package memory

import (
	"context"
	"sort"
	"time"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
)

type customersRepo struct{ s *Store }

func (r *customersRepo) Create(_ context.Context, c models.Customer) (models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customersByEmail[c.Email]; ok {
		return models.Customer{}, &ledger.ConflictError{Entity: "customer", Key: c.Email}
	}
	if c.ID == "" {
		c.ID = newID()
	}
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.s.customers[c.ID] = c
	r.s.customersByEmail[c.Email] = c.ID
	return c, nil
}

func (r *customersRepo) GetByID(_ context.Context, id string) (models.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	c, ok := r.s.customers[id]
	if !ok {
		return models.Customer{}, &ledger.NotFoundError{Entity: "customer", Key: id}
	}
	return c, nil
}

func (r *customersRepo) GetByEmail(_ context.Context, email string) (models.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	id, ok := r.s.customersByEmail[email]
	if !ok {
		return models.Customer{}, &ledger.NotFoundError{Entity: "customer", Key: email}
	}
	return r.s.customers[id], nil
}

func (r *customersRepo) List(_ context.Context) ([]models.Customer, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()
	out := make([]models.Customer, 0, len(r.s.customers))
	for _, c := range r.s.customers {
		out = append(out, c)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (r *customersRepo) Update(_ context.Context, c models.Customer) (models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	cur, ok := r.s.customers[c.ID]
	if !ok {
		return models.Customer{}, &ledger.NotFoundError{Entity: "customer", Key: c.ID}
	}
	if c.Email != cur.Email {
		if _, taken := r.s.customersByEmail[c.Email]; taken {
			return models.Customer{}, &ledger.ConflictError{Entity: "customer", Key: c.Email}
		}
		delete(r.s.customersByEmail, cur.Email)
		r.s.customersByEmail[c.Email] = c.ID
	}
	cur.FullName = c.FullName
	cur.Email = c.Email
	if c.Role != "" {
		cur.Role = c.Role
	}
	cur.UpdatedAt = time.Now()
	r.s.customers[c.ID] = cur
	return cur, nil
}

func (r *customersRepo) Delete(_ context.Context, id string) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	c, ok := r.s.customers[id]
	if !ok {
		return &ledger.NotFoundError{Entity: "customer", Key: id}
	}
	delete(r.s.customers, id)
	delete(r.s.customersByEmail, c.Email)
	return nil
}

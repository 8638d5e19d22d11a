package services

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/kostasdel/banking-backend/internal/auth"
	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
	repo "github.com/kostasdel/banking-backend/internal/repository"
)

var ErrInvalidCredentials = errors.New("invalid credentials")

type CustomerService struct {
	cus repo.Customers
	acc repo.Accounts

	// adminEmail bootstraps the first admin: registering with it grants
	// the admin role, which can then promote others via SetRole.
	adminEmail string
}

func NewCustomerService(c repo.Customers, a repo.Accounts, adminEmail string) *CustomerService {
	return &CustomerService{cus: c, acc: a, adminEmail: strings.ToLower(strings.TrimSpace(adminEmail))}
}

func (s *CustomerService) Register(ctx context.Context, fullName, email, password string, dateOfBirth time.Time) (models.Customer, error) {
	c := models.Customer{
		FullName:    strings.TrimSpace(fullName),
		Email:       strings.ToLower(strings.TrimSpace(email)),
		DateOfBirth: dateOfBirth,
		Role:        models.RoleCustomer,
	}
	if s.adminEmail != "" && c.Email == s.adminEmail {
		c.Role = models.RoleAdmin
	}
	if err := c.Validate(); err != nil {
		return models.Customer{}, &ledger.ValidationError{Field: "customer", Msg: err.Error()}
	}
	if len(password) < 8 {
		return models.Customer{}, &ledger.ValidationError{Field: "password", Msg: "must be at least 8 characters"}
	}
	hash, err := auth.HashPassword(password)
	if err != nil {
		return models.Customer{}, err
	}
	c.PasswordHash = hash
	return s.cus.Create(ctx, c)
}

// Authenticate returns the customer when the credentials match. A
// missing customer and a wrong password return the same error.
func (s *CustomerService) Authenticate(ctx context.Context, email, password string) (models.Customer, error) {
	c, err := s.cus.GetByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if err != nil {
		if isNotFound(err) {
			return models.Customer{}, ErrInvalidCredentials
		}
		return models.Customer{}, err
	}
	if auth.VerifyPassword(password, c.PasswordHash) != nil {
		return models.Customer{}, ErrInvalidCredentials
	}
	return c, nil
}

func (s *CustomerService) Get(ctx context.Context, id string) (models.Customer, error) {
	return s.cus.GetByID(ctx, id)
}

func (s *CustomerService) List(ctx context.Context) ([]models.Customer, error) {
	return s.cus.List(ctx)
}

func (s *CustomerService) Update(ctx context.Context, id, fullName, email string) (models.Customer, error) {
	c, err := s.cus.GetByID(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}
	c.FullName = strings.TrimSpace(fullName)
	c.Email = strings.ToLower(strings.TrimSpace(email))
	if err := c.Validate(); err != nil {
		return models.Customer{}, &ledger.ValidationError{Field: "customer", Msg: err.Error()}
	}
	return s.cus.Update(ctx, c)
}

// SetRole changes a customer's role; callers gate this behind the
// admin role at the HTTP boundary.
func (s *CustomerService) SetRole(ctx context.Context, id, role string) (models.Customer, error) {
	if !models.ValidRole(role) {
		return models.Customer{}, &ledger.ValidationError{Field: "role", Msg: "unknown role"}
	}
	c, err := s.cus.GetByID(ctx, id)
	if err != nil {
		return models.Customer{}, err
	}
	c.Role = role
	return s.cus.Update(ctx, c)
}

// Delete refuses while the customer still owns accounts.
func (s *CustomerService) Delete(ctx context.Context, id string) error {
	accounts, err := s.acc.ListByOwner(ctx, id)
	if err != nil {
		return err
	}
	if len(accounts) > 0 {
		return &ledger.ConflictError{Entity: "customer", Key: id + " owns accounts"}
	}
	return s.cus.Delete(ctx, id)
}

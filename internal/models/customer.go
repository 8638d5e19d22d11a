package models

import (
	"errors"
	"strings"
	"time"
)

const (
	RoleCustomer = "customer"
	RoleAdmin    = "admin"
)

type Customer struct {
	ID           string    `json:"id"`
	FullName     string    `json:"full_name"`
	Email        string    `json:"email"`
	DateOfBirth  time.Time `json:"date_of_birth"`
	PasswordHash string    `json:"-"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

func ValidRole(role string) bool {
	return role == RoleCustomer || role == RoleAdmin
}

func (c *Customer) Validate() error {
	if len(strings.TrimSpace(c.FullName)) < 2 {
		return errors.New("full name too short")
	}
	if !strings.Contains(c.Email, "@") {
		return errors.New("invalid email")
	}
	if c.Role == "" {
		c.Role = RoleCustomer
	}
	if !ValidRole(c.Role) {
		return errors.New("unknown role")
	}
	if !c.DateOfBirth.IsZero() && c.DateOfBirth.After(time.Now()) {
		return errors.New("date of birth in the future")
	}
	return nil
}

package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
)

type customersRepo struct{ pool *pgxpool.Pool }

const customerCols = `id, full_name, email, date_of_birth, password_hash, role, created_at, updated_at`

func (r *customersRepo) Create(ctx context.Context, c models.Customer) (models.Customer, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := r.pool.QueryRow(ctx,
		`INSERT INTO customers (id, full_name, email, date_of_birth, password_hash, role)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+customerCols,
		c.ID, c.FullName, c.Email, c.DateOfBirth, c.PasswordHash, c.Role,
	).Scan(&c.ID, &c.FullName, &c.Email, &c.DateOfBirth, &c.PasswordHash, &c.Role, &c.CreatedAt, &c.UpdatedAt)
	return c, mapErr("customer", c.Email, err)
}

func (r *customersRepo) GetByID(ctx context.Context, id string) (models.Customer, error) {
	var c models.Customer
	err := r.pool.QueryRow(ctx,
		`SELECT `+customerCols+` FROM customers WHERE id=$1`, id,
	).Scan(&c.ID, &c.FullName, &c.Email, &c.DateOfBirth, &c.PasswordHash, &c.Role, &c.CreatedAt, &c.UpdatedAt)
	return c, mapErr("customer", id, err)
}

func (r *customersRepo) GetByEmail(ctx context.Context, email string) (models.Customer, error) {
	var c models.Customer
	err := r.pool.QueryRow(ctx,
		`SELECT `+customerCols+` FROM customers WHERE email=$1`, email,
	).Scan(&c.ID, &c.FullName, &c.Email, &c.DateOfBirth, &c.PasswordHash, &c.Role, &c.CreatedAt, &c.UpdatedAt)
	return c, mapErr("customer", email, err)
}

func (r *customersRepo) List(ctx context.Context) ([]models.Customer, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+customerCols+` FROM customers ORDER BY created_at`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Customer
	for rows.Next() {
		var c models.Customer
		if err := rows.Scan(&c.ID, &c.FullName, &c.Email, &c.DateOfBirth, &c.PasswordHash, &c.Role, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (r *customersRepo) Update(ctx context.Context, c models.Customer) (models.Customer, error) {
	err := r.pool.QueryRow(ctx,
		`UPDATE customers
		    SET full_name=$2, email=$3, role=$4, updated_at=now()
		  WHERE id=$1
		  RETURNING `+customerCols,
		c.ID, c.FullName, c.Email, c.Role,
	).Scan(&c.ID, &c.FullName, &c.Email, &c.DateOfBirth, &c.PasswordHash, &c.Role, &c.CreatedAt, &c.UpdatedAt)
	return c, mapErr("customer", c.ID, err)
}

func (r *customersRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM customers WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &ledger.NotFoundError{Entity: "customer", Key: id}
	}
	return nil
}

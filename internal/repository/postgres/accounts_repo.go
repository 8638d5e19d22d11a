package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
)

type accountsRepo struct{ pool *pgxpool.Pool }

const accountCols = `id, number, type, status, owner_id, allow_overdraft, overdraft_limit, created_at, updated_at`

func scanAccount(row pgx.Row) (models.Account, error) {
	var a models.Account
	err := row.Scan(&a.ID, &a.Number, &a.Type, &a.Status, &a.OwnerID,
		&a.AllowOverdraft, &a.OverdraftLimit, &a.CreatedAt, &a.UpdatedAt)
	return a, err
}

func (r *accountsRepo) Create(ctx context.Context, a models.Account) (models.Account, error) {
	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Account{}, err
	}
	defer tx.Rollback(ctx)

	// Issued numbers are recorded first and kept forever; the registry's
	// primary key is what makes a number unique across deleted accounts.
	if _, err := tx.Exec(ctx,
		`INSERT INTO account_numbers (number) VALUES ($1)`, a.Number); err != nil {
		return models.Account{}, mapErr("account number", a.Number, err)
	}
	number := a.Number
	a, err = scanAccount(tx.QueryRow(ctx,
		`INSERT INTO accounts (id, number, type, status, owner_id, allow_overdraft, overdraft_limit)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 RETURNING `+accountCols,
		a.ID, a.Number, a.Type, a.Status, a.OwnerID, a.AllowOverdraft, a.OverdraftLimit))
	if err != nil {
		return models.Account{}, mapErr("account", number, err)
	}
	return a, tx.Commit(ctx)
}

func (r *accountsRepo) GetByID(ctx context.Context, id string) (models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE id=$1`, id))
	return a, mapErr("account", id, err)
}

func (r *accountsRepo) GetByNumber(ctx context.Context, number string) (models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE number=$1`, number))
	return a, mapErr("account", number, err)
}

func (r *accountsRepo) ListByOwner(ctx context.Context, ownerID string) ([]models.Account, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+accountCols+` FROM accounts WHERE owner_id=$1 ORDER BY created_at`, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Account
	for rows.Next() {
		a, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// Update writes the mutable columns only; number and owner never change.
func (r *accountsRepo) Update(ctx context.Context, a models.Account) (models.Account, error) {
	a, err := scanAccount(r.pool.QueryRow(ctx,
		`UPDATE accounts
		    SET type=$2, status=$3, allow_overdraft=$4, overdraft_limit=$5, updated_at=now()
		  WHERE id=$1
		  RETURNING `+accountCols,
		a.ID, a.Type, a.Status, a.AllowOverdraft, a.OverdraftLimit))
	return a, mapErr("account", a.ID, err)
}

func (r *accountsRepo) Delete(ctx context.Context, id string) error {
	// Only the accounts row goes; the account_numbers row outlives it.
	tag, err := r.pool.Exec(ctx, `DELETE FROM accounts WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return &ledger.NotFoundError{Entity: "account", Key: id}
	}
	return nil
}

func (r *accountsRepo) NumberIssued(ctx context.Context, number string) (bool, error) {
	var issued bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM account_numbers WHERE number=$1)`, number,
	).Scan(&issued)
	return issued, err
}

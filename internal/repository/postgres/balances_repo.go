package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"

	"github.com/kostasdel/banking-backend/internal/models"
)

type balancesRepo struct{ pool *pgxpool.Pool }

const balanceCols = `id, account_id, currency, amount, last_updated_at`

func scanBalance(row pgx.Row) (models.Balance, error) {
	var b models.Balance
	err := row.Scan(&b.ID, &b.AccountID, &b.Currency, &b.Amount, &b.LastUpdatedAt)
	return b, err
}

func (r *balancesRepo) Create(ctx context.Context, b models.Balance) (models.Balance, error) {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	key := b.AccountID + "/" + string(b.Currency)
	b, err := scanBalance(r.pool.QueryRow(ctx,
		`INSERT INTO balances (id, account_id, currency, amount)
		 VALUES ($1, $2, $3, $4)
		 RETURNING `+balanceCols,
		b.ID, b.AccountID, b.Currency, b.Amount))
	return b, mapErr("balance", key, err)
}

func (r *balancesRepo) GetByID(ctx context.Context, id string) (models.Balance, error) {
	b, err := scanBalance(r.pool.QueryRow(ctx,
		`SELECT `+balanceCols+` FROM balances WHERE id=$1`, id))
	return b, mapErr("balance", id, err)
}

func (r *balancesRepo) Get(ctx context.Context, accountID string, currency models.Currency) (models.Balance, error) {
	b, err := scanBalance(r.pool.QueryRow(ctx,
		`SELECT `+balanceCols+` FROM balances WHERE account_id=$1 AND currency=$2`,
		accountID, currency))
	return b, mapErr("balance", accountID+"/"+string(currency), err)
}

func (r *balancesRepo) ListByAccount(ctx context.Context, accountID string) ([]models.Balance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+balanceCols+` FROM balances WHERE account_id=$1 ORDER BY currency`, accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *balancesRepo) List(ctx context.Context, limit, offset int) ([]models.Balance, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+balanceCols+` FROM balances
		 ORDER BY account_id, currency LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.Balance
	for rows.Next() {
		b, err := scanBalance(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, b)
	}
	return out, rows.Err()
}

func (r *balancesRepo) SumForAccount(ctx context.Context, accountID string, currency models.Currency) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(amount), 0) FROM balances WHERE account_id=$1 AND currency=$2`,
		accountID, currency,
	).Scan(&sum)
	return sum, err
}

func (r *balancesRepo) SetAmount(ctx context.Context, id string, amount decimal.Decimal) (models.Balance, error) {
	b, err := scanBalance(r.pool.QueryRow(ctx,
		`UPDATE balances SET amount=$2, last_updated_at=now() WHERE id=$1
		 RETURNING `+balanceCols,
		id, amount))
	return b, mapErr("balance", id, err)
}

func (r *balancesRepo) ExistsForAccount(ctx context.Context, accountID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM balances WHERE account_id=$1)`, accountID,
	).Scan(&exists)
	return exists, err
}

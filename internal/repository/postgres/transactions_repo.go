package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/kostasdel/banking-backend/internal/models"
	repo "github.com/kostasdel/banking-backend/internal/repository"
)

type transactionsRepo struct{ pool *pgxpool.Pool }

const txnCols = `id, reference, debit_account_id, credit_account_id, amount, currency, type, status, created_at, posted_at`

func scanTxn(row pgx.Row) (models.Transaction, error) {
	var t models.Transaction
	err := row.Scan(&t.ID, &t.Reference, &t.DebitAccountID, &t.CreditAccountID,
		&t.Amount, &t.Currency, &t.Type, &t.Status, &t.CreatedAt, &t.PostedAt)
	return t, err
}

// withTx runs fn in one serializable transaction; the record write and
// its balance deltas commit together or not at all.
func (r *transactionsRepo) withTx(ctx context.Context, fn func(pgx.Tx) error) error {
	tx, err := r.pool.BeginTx(ctx, pgx.TxOptions{
		IsoLevel:   pgx.Serializable,
		AccessMode: pgx.ReadWrite,
	})
	if err != nil {
		return err
	}
	if err := fn(tx); err != nil {
		_ = tx.Rollback(ctx)
		return err
	}
	return tx.Commit(ctx)
}

func applyChanges(ctx context.Context, tx pgx.Tx, changes []repo.BalanceChange) error {
	for _, ch := range changes {
		_, err := tx.Exec(ctx,
			`INSERT INTO balances (id, account_id, currency, amount)
			 VALUES ($1, $2, $3, $4)
			 ON CONFLICT (account_id, currency)
			 DO UPDATE SET amount = balances.amount + EXCLUDED.amount,
			               last_updated_at = now()`,
			uuid.NewString(), ch.AccountID, ch.Currency, ch.Delta)
		if err != nil {
			return err
		}
	}
	return nil
}

func (r *transactionsRepo) CreateWithPosting(ctx context.Context, t models.Transaction, changes []repo.BalanceChange) (models.Transaction, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	reference := t.Reference
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		t, err = scanTxn(tx.QueryRow(ctx,
			`INSERT INTO transactions (id, reference, debit_account_id, credit_account_id, amount, currency, type, status, posted_at)
			 VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			 RETURNING `+txnCols,
			t.ID, t.Reference, t.DebitAccountID, t.CreditAccountID,
			t.Amount, t.Currency, t.Type, t.Status, t.PostedAt))
		if err != nil {
			return err
		}
		return applyChanges(ctx, tx, changes)
	})
	if err != nil {
		return models.Transaction{}, mapErr("transaction", reference, err)
	}
	return t, nil
}

func (r *transactionsRepo) GetByID(ctx context.Context, id string) (models.Transaction, error) {
	t, err := scanTxn(r.pool.QueryRow(ctx,
		`SELECT `+txnCols+` FROM transactions WHERE id=$1`, id))
	return t, mapErr("transaction", id, err)
}

func (r *transactionsRepo) GetByReference(ctx context.Context, ref string) (models.Transaction, error) {
	t, err := scanTxn(r.pool.QueryRow(ctx,
		`SELECT `+txnCols+` FROM transactions WHERE reference=$1`, ref))
	return t, mapErr("transaction", ref, err)
}

func (r *transactionsRepo) ListByAccount(ctx context.Context, accountID string, role repo.TxnRole, limit, offset int) ([]models.Transaction, error) {
	var where string
	switch role {
	case repo.RoleDebit:
		where = `debit_account_id=$1`
	case repo.RoleCredit:
		where = `credit_account_id=$1`
	default:
		where = `(debit_account_id=$1 OR credit_account_id=$1)`
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+txnCols+` FROM transactions
		  WHERE `+where+`
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		accountID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTxns(rows)
}

func (r *transactionsRepo) ListByStatus(ctx context.Context, status models.TransactionStatus, limit, offset int) ([]models.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+txnCols+` FROM transactions
		  WHERE ($1 = '' OR status=$1)
		  ORDER BY created_at DESC
		  LIMIT $2 OFFSET $3`,
		status, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectTxns(rows)
}

func collectTxns(rows pgx.Rows) ([]models.Transaction, error) {
	var out []models.Transaction
	for rows.Next() {
		t, err := scanTxn(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (r *transactionsRepo) UpdateStatus(ctx context.Context, id string, status models.TransactionStatus, postedAt *time.Time, changes []repo.BalanceChange) (models.Transaction, error) {
	var t models.Transaction
	err := r.withTx(ctx, func(tx pgx.Tx) error {
		var err error
		t, err = scanTxn(tx.QueryRow(ctx,
			`UPDATE transactions
			    SET status=$2, posted_at=COALESCE($3, posted_at)
			  WHERE id=$1
			  RETURNING `+txnCols,
			id, status, postedAt))
		if err != nil {
			return err
		}
		return applyChanges(ctx, tx, changes)
	})
	if err != nil {
		return models.Transaction{}, mapErr("transaction", id, err)
	}
	return t, nil
}

func (r *transactionsRepo) ExistsForAccount(ctx context.Context, accountID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		`SELECT EXISTS(SELECT 1 FROM transactions
		  WHERE debit_account_id=$1 OR credit_account_id=$1)`, accountID,
	).Scan(&exists)
	return exists, err
}

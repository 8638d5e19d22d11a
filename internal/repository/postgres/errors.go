package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/kostasdel/banking-backend/internal/ledger"
)

const uniqueViolation = "23505"

// mapErr turns driver errors into the domain kinds callers branch on.
func mapErr(entity, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, pgx.ErrNoRows) {
		return &ledger.NotFoundError{Entity: entity, Key: key}
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
		return &ledger.ConflictError{Entity: entity, Key: key}
	}
	return err
}

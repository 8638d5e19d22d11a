package postgres

import (
	"github.com/jackc/pgx/v5/pgxpool"

	repo "github.com/kostasdel/banking-backend/internal/repository"
)

type Repositories struct {
	Customers    repo.Customers
	Accounts     repo.Accounts
	Balances     repo.Balances
	Transactions repo.Transactions
	AuditLogs    repo.AuditLogs
}

func NewRepositories(pool *pgxpool.Pool) Repositories {
	return Repositories{
		Customers:    &customersRepo{pool},
		Accounts:     &accountsRepo{pool},
		Balances:     &balancesRepo{pool},
		Transactions: &transactionsRepo{pool},
		AuditLogs:    &auditLogsRepo{pool},
	}
}

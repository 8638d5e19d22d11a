// Package memory keeps the whole store in process memory. It backs the
// test suites and DB-less development runs; the consistency guard above
// it provides the per-key exclusivity the durable store gets from
// serializable transactions.
package memory

import (
	"sort"
	"sync"

	"github.com/google/uuid"

	"github.com/kostasdel/banking-backend/internal/models"
	repo "github.com/kostasdel/banking-backend/internal/repository"
)

type balanceKey struct {
	accountID string
	currency  models.Currency
}

// Store holds every table under one mutex. Uniqueness indexes are the
// secondary maps; issuedNumbers never shrinks.
type Store struct {
	mu sync.RWMutex

	customers        map[string]models.Customer
	customersByEmail map[string]string

	accounts         map[string]models.Account
	accountsByNumber map[string]string
	issuedNumbers    map[string]struct{}

	balances     map[string]models.Balance
	balanceByKey map[balanceKey]string

	txns     map[string]models.Transaction
	txnByRef map[string]string

	audits []models.AuditLog
}

func NewStore() *Store {
	return &Store{
		customers:        make(map[string]models.Customer),
		customersByEmail: make(map[string]string),
		accounts:         make(map[string]models.Account),
		accountsByNumber: make(map[string]string),
		issuedNumbers:    make(map[string]struct{}),
		balances:         make(map[string]models.Balance),
		balanceByKey:     make(map[balanceKey]string),
		txns:             make(map[string]models.Transaction),
		txnByRef:         make(map[string]string),
	}
}

type Repositories struct {
	Customers    repo.Customers
	Accounts     repo.Accounts
	Balances     repo.Balances
	Transactions repo.Transactions
	AuditLogs    repo.AuditLogs
}

func NewRepositories(s *Store) Repositories {
	return Repositories{
		Customers:    &customersRepo{s},
		Accounts:     &accountsRepo{s},
		Balances:     &balancesRepo{s},
		Transactions: &transactionsRepo{s},
		AuditLogs:    &auditLogsRepo{s},
	}
}

func newID() string { return uuid.NewString() }

func sortTxnsNewestFirst(out []models.Transaction) {
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
}

func page(txns []models.Transaction, limit, offset int) []models.Transaction {
	if offset >= len(txns) {
		return nil
	}
	txns = txns[offset:]
	if limit > 0 && limit < len(txns) {
		txns = txns[:limit]
	}
	return txns
}

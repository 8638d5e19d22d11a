package memory

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
	repo "github.com/kostasdel/banking-backend/internal/repository"
)

func newRepos() Repositories {
	return NewRepositories(NewStore())
}

func TestAccountNumberNeverReissued(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	a, err := r.Accounts.Create(ctx, models.Account{Number: "7992739875", Type: models.AccountChecking, Status: models.AccountActive, OwnerID: "cust-1"})
	require.NoError(t, err)

	require.NoError(t, r.Accounts.Delete(ctx, a.ID))

	_, err = r.Accounts.GetByID(ctx, a.ID)
	var nf *ledger.NotFoundError
	require.ErrorAs(t, err, &nf)

	issued, err := r.Accounts.NumberIssued(ctx, "7992739875")
	require.NoError(t, err)
	assert.True(t, issued, "deleted account's number left the registry")

	_, err = r.Accounts.Create(ctx, models.Account{Number: "7992739875", Type: models.AccountChecking, Status: models.AccountActive, OwnerID: "cust-2"})
	var conflict *ledger.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestBalanceUniquePerPair(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	_, err := r.Balances.Create(ctx, models.Balance{AccountID: "acc-1", Currency: models.USD, Amount: decimal.NewFromInt(10)})
	require.NoError(t, err)

	_, err = r.Balances.Create(ctx, models.Balance{AccountID: "acc-1", Currency: models.USD})
	var conflict *ledger.ConflictError
	assert.ErrorAs(t, err, &conflict)

	_, err = r.Balances.Create(ctx, models.Balance{AccountID: "acc-1", Currency: models.EUR})
	assert.NoError(t, err)
}

func TestCreateWithPostingAppliesChanges(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	debit, credit := "acc-1", "acc-2"
	_, err := r.Balances.Create(ctx, models.Balance{AccountID: debit, Currency: models.USD, Amount: decimal.NewFromInt(100)})
	require.NoError(t, err)

	amount := decimal.NewFromInt(30)
	created, err := r.Transactions.CreateWithPosting(ctx, models.Transaction{
		Reference:       "TXN-A",
		DebitAccountID:  &debit,
		CreditAccountID: &credit,
		Amount:          amount,
		Currency:        models.USD,
		Type:            models.TxnTransfer,
		Status:          models.TxnCompleted,
	}, []repo.BalanceChange{
		{AccountID: debit, Currency: models.USD, Delta: amount.Neg()},
		{AccountID: credit, Currency: models.USD, Delta: amount},
	})
	require.NoError(t, err)
	assert.NotEmpty(t, created.ID)

	db, err := r.Balances.Get(ctx, debit, models.USD)
	require.NoError(t, err)
	assert.True(t, db.Amount.Equal(decimal.NewFromInt(70)), "debit side: %s", db.Amount)

	// The credit side had no row; posting opens one.
	cb, err := r.Balances.Get(ctx, credit, models.USD)
	require.NoError(t, err)
	assert.True(t, cb.Amount.Equal(amount), "credit side: %s", cb.Amount)
}

func TestCreateWithPostingDuplicateReference(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	acc := "acc-1"
	_, err := r.Transactions.CreateWithPosting(ctx, models.Transaction{
		Reference: "TXN-DUP", CreditAccountID: &acc,
		Amount: decimal.NewFromInt(5), Currency: models.USD,
		Type: models.TxnDeposit, Status: models.TxnCompleted,
	}, []repo.BalanceChange{{AccountID: acc, Currency: models.USD, Delta: decimal.NewFromInt(5)}})
	require.NoError(t, err)

	_, err = r.Transactions.CreateWithPosting(ctx, models.Transaction{
		Reference: "TXN-DUP", CreditAccountID: &acc,
		Amount: decimal.NewFromInt(5), Currency: models.USD,
		Type: models.TxnDeposit, Status: models.TxnCompleted,
	}, []repo.BalanceChange{{AccountID: acc, Currency: models.USD, Delta: decimal.NewFromInt(5)}})
	var conflict *ledger.ConflictError
	require.ErrorAs(t, err, &conflict)

	// The rejected posting must not have touched the balance.
	b, err := r.Balances.Get(ctx, acc, models.USD)
	require.NoError(t, err)
	assert.True(t, b.Amount.Equal(decimal.NewFromInt(5)), "balance after duplicate: %s", b.Amount)
}

func TestListByAccountRoles(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	a, b := "acc-1", "acc-2"
	mk := func(ref string, debit, credit *string) {
		_, err := r.Transactions.CreateWithPosting(ctx, models.Transaction{
			Reference: ref, DebitAccountID: debit, CreditAccountID: credit,
			Amount: decimal.NewFromInt(1), Currency: models.USD,
			Type: models.TxnTransfer, Status: models.TxnCompleted,
		}, nil)
		require.NoError(t, err)
	}
	mk("TXN-1", &a, &b)
	mk("TXN-2", &b, &a)
	mk("TXN-3", &a, nil)

	all, err := r.Transactions.ListByAccount(ctx, a, repo.RoleAny, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	debits, err := r.Transactions.ListByAccount(ctx, a, repo.RoleDebit, 50, 0)
	require.NoError(t, err)
	assert.Len(t, debits, 2)

	credits, err := r.Transactions.ListByAccount(ctx, a, repo.RoleCredit, 50, 0)
	require.NoError(t, err)
	assert.Len(t, credits, 1)

	paged, err := r.Transactions.ListByAccount(ctx, a, repo.RoleAny, 2, 0)
	require.NoError(t, err)
	assert.Len(t, paged, 2)

	rest, err := r.Transactions.ListByAccount(ctx, a, repo.RoleAny, 2, 2)
	require.NoError(t, err)
	assert.Len(t, rest, 1)
}

func TestUpdateStatusStampsPostedAt(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	acc := "acc-1"
	created, err := r.Transactions.CreateWithPosting(ctx, models.Transaction{
		Reference: "TXN-P", CreditAccountID: &acc,
		Amount: decimal.NewFromInt(5), Currency: models.USD,
		Type: models.TxnDeposit, Status: models.TxnPending,
	}, nil)
	require.NoError(t, err)
	require.Nil(t, created.PostedAt)

	now := time.Now()
	updated, err := r.Transactions.UpdateStatus(ctx, created.ID, models.TxnCompleted, &now, nil)
	require.NoError(t, err)
	assert.Equal(t, models.TxnCompleted, updated.Status)
	require.NotNil(t, updated.PostedAt)
	assert.True(t, updated.PostedAt.Equal(now))
}

func TestCustomerEmailUnique(t *testing.T) {
	ctx := context.Background()
	r := newRepos()

	_, err := r.Customers.Create(ctx, models.Customer{FullName: "Ada Lovelace", Email: "ada@example.com"})
	require.NoError(t, err)

	_, err = r.Customers.Create(ctx, models.Customer{FullName: "Someone Else", Email: "ada@example.com"})
	var conflict *ledger.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

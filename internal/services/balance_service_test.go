package services

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kostasdel/banking-backend/internal/ledger"
	"github.com/kostasdel/banking-backend/internal/models"
)

func TestBalanceCreateAndGet(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.customer(t, "owner@example.com")
	a := f.account(t, owner.ID, decimal.Zero)

	b, err := f.bal.Create(ctx, a.ID, models.GBP, d("12.5000"))
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.AccountID)

	got, err := f.bal.GetForAccount(ctx, a.ID, models.GBP)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(d("12.50")))

	// Second open for the held currency conflicts.
	_, err = f.bal.Create(ctx, a.ID, models.GBP, decimal.Zero)
	var conflict *ledger.ConflictError
	assert.ErrorAs(t, err, &conflict)
}

func TestBalanceCreateValidation(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.customer(t, "owner@example.com")
	a := f.account(t, owner.ID, decimal.Zero)

	var ve *ledger.ValidationError
	_, err := f.bal.Create(ctx, a.ID, "XXX", decimal.Zero)
	assert.ErrorAs(t, err, &ve)

	_, err = f.bal.Create(ctx, a.ID, models.USD, d("-1.00"))
	assert.ErrorAs(t, err, &ve)

	var nf *ledger.NotFoundError
	_, err = f.bal.Create(ctx, "no-such-account", models.USD, decimal.Zero)
	assert.ErrorAs(t, err, &nf)
}

func TestBalanceListAll(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.customer(t, "owner@example.com")
	a1 := f.account(t, owner.ID, decimal.Zero)
	a2 := f.account(t, owner.ID, decimal.Zero)

	_, err := f.bal.Create(ctx, a1.ID, models.USD, d("1.00"))
	require.NoError(t, err)
	_, err = f.bal.Create(ctx, a2.ID, models.EUR, d("2.00"))
	require.NoError(t, err)

	all, err := f.bal.List(ctx, 50, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)

	// Paging walks the same ordering.
	first, err := f.bal.List(ctx, 1, 0)
	require.NoError(t, err)
	require.Len(t, first, 1)
	second, err := f.bal.List(ctx, 1, 1)
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.NotEqual(t, first[0].ID, second[0].ID)

	rest, err := f.bal.List(ctx, 50, 2)
	require.NoError(t, err)
	assert.Empty(t, rest)
}

func TestBalanceAdjust(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.customer(t, "owner@example.com")
	a := f.account(t, owner.ID, decimal.Zero)

	b, err := f.bal.Create(ctx, a.ID, models.USD, d("100.00"))
	require.NoError(t, err)

	adjusted, err := f.bal.Adjust(ctx, b.ID, d("42.00"), "admin-1")
	require.NoError(t, err)
	assert.True(t, adjusted.Amount.Equal(d("42.00")))

	got, err := f.bal.Get(ctx, b.ID)
	require.NoError(t, err)
	assert.True(t, got.Amount.Equal(d("42.00")))
}

func TestBalanceListByAccount(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	owner := f.customer(t, "owner@example.com")
	a := f.account(t, owner.ID, decimal.Zero)

	_, err := f.bal.Create(ctx, a.ID, models.USD, d("1.00"))
	require.NoError(t, err)
	_, err = f.bal.Create(ctx, a.ID, models.JPY, d("2.00"))
	require.NoError(t, err)

	balances, err := f.bal.ListByAccount(ctx, a.ID)
	require.NoError(t, err)
	assert.Len(t, balances, 2)

	_, err = f.bal.ListByAccount(ctx, "no-such-account")
	var nf *ledger.NotFoundError
	assert.ErrorAs(t, err, &nf)
}

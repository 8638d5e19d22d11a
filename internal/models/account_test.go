package models

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestAccountFloor(t *testing.T) {
	a := Account{OverdraftLimit: decimal.NewFromInt(250)}
	assert.True(t, a.Floor().IsZero())

	a.AllowOverdraft = true
	assert.True(t, a.Floor().Equal(decimal.NewFromInt(-250)))
}

func TestAccountCanPost(t *testing.T) {
	a := Account{Status: AccountActive}
	assert.True(t, a.CanPost())

	a.Status = AccountFrozen
	assert.False(t, a.CanPost())

	a.Status = AccountClosed
	assert.False(t, a.CanPost())
}

func TestCurrencyIsValid(t *testing.T) {
	for _, c := range []Currency{USD, EUR, GBP, JPY, AUD, CAD, CNY, NZD} {
		assert.True(t, c.IsValid(), string(c))
	}
	assert.False(t, Currency("BTC").IsValid())
	assert.False(t, Currency("usd").IsValid())
	assert.False(t, Currency("").IsValid())
}

package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatusStateMachine(t *testing.T) {
	cases := []struct {
		from, to TransactionStatus
		allowed  bool
	}{
		{TxnPending, TxnCompleted, true},
		{TxnPending, TxnFailed, true},
		{TxnPending, TxnReversed, false},
		{TxnPending, TxnPending, false},
		{TxnCompleted, TxnReversed, true},
		{TxnCompleted, TxnFailed, false},
		{TxnCompleted, TxnPending, false},
		{TxnCompleted, TxnCompleted, false},
		{TxnFailed, TxnCompleted, false},
		{TxnFailed, TxnReversed, false},
		{TxnFailed, TxnPending, false},
		{TxnReversed, TxnCompleted, false},
		{TxnReversed, TxnPending, false},
		{TxnReversed, TxnFailed, false},
	}
	for _, c := range cases {
		assert.Equal(t, c.allowed, c.from.CanTransitionTo(c.to), "%s -> %s", c.from, c.to)
	}
}

func TestStatusTerminal(t *testing.T) {
	assert.False(t, TxnPending.Terminal())
	assert.True(t, TxnCompleted.Terminal())
	assert.True(t, TxnFailed.Terminal())
	assert.True(t, TxnReversed.Terminal())
}

func TestTransactionTypeIsValid(t *testing.T) {
	for _, typ := range []TransactionType{TxnDeposit, TxnWithdrawal, TxnTransfer, TxnPayment, TxnFee, TxnInterest} {
		assert.True(t, typ.IsValid(), string(typ))
	}
	assert.False(t, TransactionType("REFUND").IsValid())
	assert.False(t, TransactionType("deposit").IsValid())
}

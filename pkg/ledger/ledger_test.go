// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/log"
)

func newAdvertiser(balance float64) *core.User {
	return &core.User{
		ID:      "adv-1",
		Type:    core.UserAdvertiser,
		Balance: decimal.NewFromFloat(balance),
	}
}

func newOwner() *core.User {
	return &core.User{
		ID:   "owner-1",
		Type: core.UserZoneOwner,
	}
}

func TestAddFunds(t *testing.T) {
	require := require.New(t)
	l := New(log.NoOp())

	u := newAdvertiser(100)
	require.NoError(l.AddFunds(u, decimal.NewFromInt(50)))
	require.True(u.Balance.Equal(decimal.NewFromInt(150)))

	require.ErrorIs(l.AddFunds(u, decimal.Zero), ErrNonPositiveAmount)
	require.ErrorIs(l.AddFunds(u, decimal.NewFromInt(-5)), ErrNonPositiveAmount)
	require.True(u.Balance.Equal(decimal.NewFromInt(150)))
}

func TestWithdrawBalance(t *testing.T) {
	require := require.New(t)
	l := New(log.NoOp())

	u := newOwner()
	_, err := l.WithdrawBalance(u)
	require.ErrorIs(err, ErrNoFunds)

	u.Balance = decimal.NewFromFloat(540.20)
	amount, err := l.WithdrawBalance(u)
	require.NoError(err)
	require.True(amount.Equal(decimal.NewFromFloat(540.20)))
	require.True(u.Balance.IsZero())
}

func TestWithdrawPointsToTokens(t *testing.T) {
	require := require.New(t)
	l := New(log.NoOp())

	u := &core.User{ID: "reg-1", Type: core.UserRegular, Points: 499}

	_, err := l.WithdrawPointsToTokens(u, "0xabc")
	require.ErrorIs(err, ErrBelowMinWithdrawal)
	require.Equal(int64(499), u.Points)

	u.Points = 500
	_, err = l.WithdrawPointsToTokens(u, "")
	require.ErrorIs(err, ErrMissingAddress)
	require.Equal(int64(500), u.Points)

	tokens, err := l.WithdrawPointsToTokens(u, "0xabc")
	require.NoError(err)
	require.True(tokens.Equal(decimal.NewFromInt(5)), tokens.String())
	require.Zero(u.Points)
}

func TestDebitForCampaign(t *testing.T) {
	require := require.New(t)
	l := New(log.NoOp())

	adv := newAdvertiser(100)
	price := decimal.NewFromInt(125)

	err := l.DebitForCampaign(adv, price)
	require.Error(err)

	var insufficient *InsufficientFundsError
	require.True(errors.As(err, &insufficient))
	require.True(insufficient.Shortfall.Equal(decimal.NewFromInt(25)))
	require.True(adv.Balance.Equal(decimal.NewFromInt(100))) // unchanged

	require.NoError(l.AddFunds(adv, decimal.NewFromInt(900)))
	require.NoError(l.DebitForCampaign(adv, price))
	require.True(adv.Balance.Equal(decimal.NewFromInt(875)))
}

func TestSettle(t *testing.T) {
	require := require.New(t)
	l := New(log.NoOp())

	owner := newOwner()
	total := decimal.NewFromInt(125)
	l.CreditEscrow(owner, total)
	require.True(owner.EscrowBalance.Equal(total))

	payout, fee := l.Settle(owner, total)
	require.True(payout.Equal(decimal.NewFromFloat(112.5)))
	require.True(fee.Equal(decimal.NewFromFloat(12.5)))
	require.True(owner.EscrowBalance.IsZero())
	require.True(owner.Balance.Equal(decimal.NewFromFloat(112.5)))
	require.True(owner.TotalEarnings.Equal(decimal.NewFromFloat(112.5)))
}

func TestSettleFloorsEscrowAtZero(t *testing.T) {
	require := require.New(t)
	l := New(log.NoOp())

	owner := newOwner()
	l.CreditEscrow(owner, decimal.NewFromInt(50))

	// Settling more than is escrowed must clamp, never go negative
	l.Settle(owner, decimal.NewFromInt(125))
	require.True(owner.EscrowBalance.IsZero())
	require.False(owner.EscrowBalance.IsNegative())
}

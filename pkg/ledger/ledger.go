// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/log"
	"github.com/adxyz/adinci/pkg/pricing"
)

var (
	ErrNonPositiveAmount  = errors.New("amount must be positive")
	ErrNoFunds            = errors.New("no funds available for withdrawal")
	ErrBelowMinWithdrawal = errors.New("point balance below minimum withdrawal")
	ErrMissingAddress     = errors.New("destination wallet address required")
)

// InsufficientFundsError reports a balance shortfall on a campaign debit.
// The shortfall is surfaced to the zone owner so the advertiser can be asked
// to top up.
type InsufficientFundsError struct {
	Balance   decimal.Decimal
	Required  decimal.Decimal
	Shortfall decimal.Decimal
}

func (e *InsufficientFundsError) Error() string {
	return fmt.Sprintf("insufficient funds: balance %s, required %s (short %s)",
		e.Balance.StringFixed(2), e.Required.StringFixed(2), e.Shortfall.StringFixed(2))
}

// Ledger performs balance, escrow and point bookkeeping on marketplace users.
// All monetary fields clamp at zero; no operation may drive a balance
// negative.
type Ledger struct {
	log log.Logger
}

// New creates a wallet ledger
func New(logger log.Logger) *Ledger {
	return &Ledger{log: logger}
}

// AddFunds tops up a user's spendable balance
func (l *Ledger) AddFunds(u *core.User, amount decimal.Decimal) error {
	if amount.LessThanOrEqual(decimal.Zero) {
		return ErrNonPositiveAmount
	}

	u.Balance = u.Balance.Add(amount)

	l.log.Info("funds added",
		zap.String("user", u.ID),
		zap.String("amount", amount.StringFixed(2)))

	return nil
}

// WithdrawBalance transfers the user's entire spendable balance to an
// external payout target and returns the amount moved. Fails when there is
// nothing to withdraw.
func (l *Ledger) WithdrawBalance(u *core.User) (decimal.Decimal, error) {
	if u.Balance.LessThanOrEqual(decimal.Zero) {
		return decimal.Zero, ErrNoFunds
	}

	amount := u.Balance
	u.Balance = decimal.Zero

	l.log.Info("balance withdrawn",
		zap.String("user", u.ID),
		zap.String("amount", amount.StringFixed(2)))

	return amount, nil
}

// WithdrawPointsToTokens converts the user's full point balance to ADT
// tokens sent to the given wallet address. Requires the minimum point
// balance and a non-empty address; zeroes points on success.
func (l *Ledger) WithdrawPointsToTokens(u *core.User, address string) (decimal.Decimal, error) {
	if address == "" {
		return decimal.Zero, ErrMissingAddress
	}
	if u.Points < pricing.MinPointWithdrawal {
		return decimal.Zero, ErrBelowMinWithdrawal
	}

	tokens := pricing.PointsToTokens(u.Points)
	u.Points = 0

	l.log.Info("points withdrawn",
		zap.String("user", u.ID),
		zap.String("tokens", tokens.String()),
		zap.String("address", address))

	return tokens, nil
}

// CreditPoints adds reward points to a user
func (l *Ledger) CreditPoints(u *core.User, points int64) {
	if points <= 0 {
		return
	}
	u.Points += points
}

// DebitForCampaign deducts a campaign's total price from an advertiser at
// approval time. Returns an InsufficientFundsError carrying the shortfall
// when the balance does not cover the price.
func (l *Ledger) DebitForCampaign(adv *core.User, amount decimal.Decimal) error {
	if adv.Balance.LessThan(amount) {
		return &InsufficientFundsError{
			Balance:   adv.Balance,
			Required:  amount,
			Shortfall: amount.Sub(adv.Balance),
		}
	}

	adv.Balance = adv.Balance.Sub(amount)

	l.log.Info("advertiser debited",
		zap.String("user", adv.ID),
		zap.String("amount", amount.StringFixed(2)))

	return nil
}

// CreditEscrow holds a campaign's funds against the owner pending completion
func (l *Ledger) CreditEscrow(owner *core.User, amount decimal.Decimal) {
	owner.EscrowBalance = owner.EscrowBalance.Add(amount)

	l.log.Info("escrow credited",
		zap.String("user", owner.ID),
		zap.String("amount", amount.StringFixed(2)))
}

// Settle releases a completed campaign: the escrow hold is removed (floored
// at zero) and the owner is paid the total minus the platform commission.
// Returns the payout and fee.
func (l *Ledger) Settle(owner *core.User, totalPrice decimal.Decimal) (payout, fee decimal.Decimal) {
	payout, fee = pricing.SettlementSplit(totalPrice)

	owner.EscrowBalance = owner.EscrowBalance.Sub(totalPrice)
	if owner.EscrowBalance.IsNegative() {
		owner.EscrowBalance = decimal.Zero
	}

	owner.Balance = owner.Balance.Add(payout)
	owner.TotalEarnings = owner.TotalEarnings.Add(payout)

	l.log.Info("campaign settled",
		zap.String("owner", owner.ID),
		zap.String("payout", payout.StringFixed(2)),
		zap.String("fee", fee.StringFixed(2)))

	return payout, fee
}

// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import "github.com/shopspring/decimal"

// Platform-wide financial constants
var (
	// Commission is the platform fee taken from every settled campaign
	Commission = decimal.NewFromFloat(0.10)

	// DefaultCPM is the price per 1,000 views a new zone starts with
	DefaultCPM = decimal.NewFromFloat(15.00)

	// ZoneRatePerSqmMonth is the owner activation rate:
	// 10,000 m² per month costs 1 USD.
	ZoneRatePerSqmMonth = decimal.NewFromFloat(0.0001)

	// TokenRate converts reward points to ADT tokens (100 points = 1 ADT)
	TokenRate = decimal.NewFromInt(100)
)

const (
	// MinZoneArea is the smallest billable zone surface in square meters
	MinZoneArea = 50.0

	// MinPointWithdrawal is the smallest point balance that can be
	// converted to tokens
	MinPointWithdrawal = 500
)

// ClampArea raises the requested area to the billable floor. Used before
// pricing and before resize-by-area.
func ClampArea(area float64) float64 {
	if area < MinZoneArea {
		return MinZoneArea
	}
	return area
}

// ZoneRentalPrice returns what an owner pays to keep a zone active:
// area * rate * months. The caller clamps the area first when it comes from
// a budget slider.
func ZoneRentalPrice(area float64, ratePerSqmMonth decimal.Decimal, months int) decimal.Decimal {
	return decimal.NewFromFloat(area).
		Mul(ratePerSqmMonth).
		Mul(decimal.NewFromInt(int64(months)))
}

// CampaignPrice returns what an advertiser pays for a campaign:
// cpm * targetViews / 1000. Full precision, no rounding.
func CampaignPrice(cpm decimal.Decimal, targetViews int64) decimal.Decimal {
	return cpm.Mul(decimal.NewFromInt(targetViews)).Div(decimal.NewFromInt(1000))
}

// SettlementSplit divides a completed campaign's total between the platform
// fee and the owner payout.
func SettlementSplit(totalPrice decimal.Decimal) (payout, fee decimal.Decimal) {
	fee = totalPrice.Mul(Commission)
	payout = totalPrice.Sub(fee)
	return payout, fee
}

// PointsToTokens converts a reward point balance to ADT tokens
func PointsToTokens(points int64) decimal.Decimal {
	return decimal.NewFromInt(points).Div(TokenRate)
}

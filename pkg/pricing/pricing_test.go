// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package pricing

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestClampArea(t *testing.T) {
	require := require.New(t)

	require.Equal(MinZoneArea, ClampArea(10))
	require.Equal(MinZoneArea, ClampArea(0))
	require.Equal(200.0, ClampArea(200))
}

func TestZoneRentalPrice(t *testing.T) {
	require := require.New(t)

	// 10,000 m² for one month costs 1 USD at the base rate
	price := ZoneRentalPrice(10000, ZoneRatePerSqmMonth, 1)
	require.True(price.Equal(decimal.NewFromInt(1)), price.String())

	// Three months scale linearly
	price = ZoneRentalPrice(10000, ZoneRatePerSqmMonth, 3)
	require.True(price.Equal(decimal.NewFromInt(3)), price.String())
}

func TestCampaignPrice(t *testing.T) {
	require := require.New(t)

	// 5,000 views at $25 CPM = $125
	price := CampaignPrice(decimal.NewFromFloat(25.00), 5000)
	require.True(price.Equal(decimal.NewFromInt(125)), price.String())

	// Fractional result keeps full precision
	price = CampaignPrice(decimal.NewFromFloat(18.50), 250)
	require.True(price.Equal(decimal.NewFromFloat(4.625)), price.String())
}

func TestSettlementSplit(t *testing.T) {
	require := require.New(t)

	payout, fee := SettlementSplit(decimal.NewFromInt(125))
	require.True(fee.Equal(decimal.NewFromFloat(12.5)), fee.String())
	require.True(payout.Equal(decimal.NewFromFloat(112.5)), payout.String())
	require.True(payout.Add(fee).Equal(decimal.NewFromInt(125)))
}

func TestPointsToTokens(t *testing.T) {
	require := require.New(t)

	require.True(PointsToTokens(500).Equal(decimal.NewFromInt(5)))
	require.True(PointsToTokens(150).Equal(decimal.NewFromFloat(1.5)))
}

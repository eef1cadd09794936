// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package collect

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/geo"
	"github.com/adxyz/adinci/pkg/log"
)

var (
	burjCenter = geo.Point{Lat: 25.1972, Lng: 55.2744}
	farAway    = geo.Point{Lat: 25.30, Lng: 55.40}
)

func noRental(string) *core.AdRentalRequest { return nil }

func eligibleZone() *core.AdZone {
	expiry := time.Now().Add(30 * 24 * time.Hour)
	return &core.AdZone{
		ID:         "zone-1",
		OwnerID:    "owner-1",
		Name:       "Burj Khalifa Plaza",
		Center:     burjCenter,
		Shape:      geo.Circle{RadiusM: 300},
		IsActive:   true,
		ExpiryDate: &expiry,
		PricePer1k: decimal.NewFromFloat(25.00),
		AdContent: &core.AdContent{
			Title:        "Dubai Fountain Show",
			Description:  "Catch the evening show.",
			RewardPoints: 50,
			CompanyName:  "Atmosphere",
		},
	}
}

func regularUser() *core.User {
	return &core.User{ID: "u-reg-1", Name: "Sara", Type: core.UserRegular}
}

func TestEvaluateCollects(t *testing.T) {
	require := require.New(t)
	e := NewEngine(log.NoOp())

	zone := eligibleZone()
	ads := e.Evaluate(burjCenter, []*core.AdZone{zone}, noRental, regularUser(), time.Now())
	require.Len(ads, 1)
	require.Equal("zone-1", ads[0].CampaignID)
	require.Equal("Dubai Fountain Show", ads[0].AdContent.Title)
	require.False(ads[0].Redeemed)
	require.NotEmpty(ads[0].ID)
}

func TestEvaluateOutsideGeofence(t *testing.T) {
	require := require.New(t)
	e := NewEngine(log.NoOp())

	ads := e.Evaluate(farAway, []*core.AdZone{eligibleZone()}, noRental, regularUser(), time.Now())
	require.Empty(ads)
}

func TestEvaluateSkipsIneligibleZones(t *testing.T) {
	require := require.New(t)
	e := NewEngine(log.NoOp())
	now := time.Now()

	inactive := eligibleZone()
	inactive.IsActive = false

	expired := eligibleZone()
	past := now.Add(-time.Hour)
	expired.ExpiryDate = &past

	noContent := eligibleZone()
	noContent.AdContent = nil

	ads := e.Evaluate(burjCenter, []*core.AdZone{inactive, expired, noContent}, noRental, regularUser(), now)
	require.Empty(ads)
}

func TestEvaluateNilExpiryIsEligible(t *testing.T) {
	require := require.New(t)
	e := NewEngine(log.NoOp())

	zone := eligibleZone()
	zone.ExpiryDate = nil
	ads := e.Evaluate(burjCenter, []*core.AdZone{zone}, noRental, regularUser(), time.Now())
	require.Len(ads, 1)
}

func TestEvaluateActiveRentalOverridesContent(t *testing.T) {
	require := require.New(t)
	e := NewEngine(log.NoOp())

	req := &core.AdRentalRequest{
		ID:     "rent-1",
		ZoneID: "zone-1",
		Status: core.RentalActive,
		AdContent: core.AdContent{
			Title:        "New Year Bash",
			RewardPoints: 75,
			CompanyName:  "Events DXB",
		},
	}
	withRental := func(zoneID string) *core.AdRentalRequest {
		if zoneID == "zone-1" {
			return req
		}
		return nil
	}

	// The rental's creative wins even when the zone has its own
	ads := e.Evaluate(burjCenter, []*core.AdZone{eligibleZone()}, withRental, regularUser(), time.Now())
	require.Len(ads, 1)
	require.Equal("rent-1", ads[0].CampaignID)
	require.Equal("New Year Bash", ads[0].AdContent.Title)
}

func TestEvaluateRentalOnZoneWithoutNativeContent(t *testing.T) {
	require := require.New(t)
	e := NewEngine(log.NoOp())

	zone := eligibleZone()
	zone.AdContent = nil
	req := &core.AdRentalRequest{
		ID:        "rent-1",
		ZoneID:    zone.ID,
		Status:    core.RentalActive,
		AdContent: core.AdContent{Title: "New Year Bash", RewardPoints: 75},
	}
	ads := e.Evaluate(burjCenter, []*core.AdZone{zone},
		func(string) *core.AdRentalRequest { return req }, regularUser(), time.Now())
	require.Len(ads, 1)
	require.Equal("rent-1", ads[0].CampaignID)
}

func TestEvaluateDuplicateGuard(t *testing.T) {
	require := require.New(t)
	e := NewEngine(log.NoOp())

	zone := eligibleZone()
	user := regularUser()

	ads := e.Evaluate(burjCenter, []*core.AdZone{zone}, noRental, user, time.Now())
	require.Len(ads, 1)
	user.Inventory = append(ads, user.Inventory...)

	// Unredeemed duplicate blocks re-collection
	again := e.Evaluate(burjCenter, []*core.AdZone{zone}, noRental, user, time.Now())
	require.Empty(again)

	// Redeeming unlocks the campaign again
	user.Inventory[0].Redeemed = true
	third := e.Evaluate(burjCenter, []*core.AdZone{zone}, noRental, user, time.Now())
	require.Len(third, 1)
}

func TestWatchSessionProgress(t *testing.T) {
	require := require.New(t)
	s := NewWatchSession(&core.CollectedAd{ID: "ad-1"})

	require.Zero(s.Progress())
	require.False(s.CanClaim())

	require.Equal(WatchStep, s.Advance())
	require.False(s.CanClaim())

	// 20 ticks of 5 reach 100
	for i := 0; i < 19; i++ {
		s.Advance()
	}
	require.Equal(WatchComplete, s.Progress())
	require.True(s.CanClaim())

	// Clamped at completion
	require.Equal(WatchComplete, s.Advance())
}

func TestWatchSessionComplete(t *testing.T) {
	require := require.New(t)
	s := NewWatchSession(&core.CollectedAd{ID: "ad-1"})

	s.Complete()
	require.Equal(WatchComplete, s.Progress())
	require.True(s.CanClaim())
}

func TestWatchSessionRunCancelled(t *testing.T) {
	require := require.New(t)
	s := NewWatchSession(&core.CollectedAd{ID: "ad-1"})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.False(s.Run(ctx))
	require.False(s.CanClaim())
}

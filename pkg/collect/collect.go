// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package collect

import (
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/geo"
	"github.com/adxyz/adinci/pkg/log"
)

// ActiveRentalFn resolves a zone's currently ACTIVE campaign, nil when none
type ActiveRentalFn func(zoneID string) *core.AdRentalRequest

// Engine evaluates geofence entry events against the zone list and decides
// which ads a regular user collects.
type Engine struct {
	log log.Logger
}

// NewEngine creates a collection engine
func NewEngine(logger log.Logger) *Engine {
	return &Engine{log: logger}
}

// Evaluate scans every eligible zone against the user's location and returns
// the newly collected ads. It does not mutate the user; the caller prepends
// the results to the inventory and emits notifications.
//
// A zone yields an ad when all of these hold:
//   - the zone is active and unexpired at now
//   - it has effective content: the ACTIVE rental's creative, or the zone's
//     native creative when no rental is running (neither -> skip, there is
//     nothing to show)
//   - the location is inside the geofence
//   - the user holds no unredeemed ad for the same campaign
func (e *Engine) Evaluate(
	location geo.Point,
	zones []*core.AdZone,
	activeRental ActiveRentalFn,
	user *core.User,
	now time.Time,
) []*core.CollectedAd {
	var collected []*core.CollectedAd

	for _, zone := range zones {
		if !zone.EligibleAt(now) {
			continue
		}

		campaignID := zone.ID
		var content *core.AdContent
		if req := activeRental(zone.ID); req != nil {
			campaignID = req.ID
			content = &req.AdContent
		} else {
			content = zone.AdContent
		}
		if content == nil {
			continue
		}

		if !zone.Contains(location) {
			continue
		}
		if user.UnredeemedAd(campaignID) != nil {
			continue
		}

		ad := &core.CollectedAd{
			ID:          uuid.NewString(),
			CampaignID:  campaignID,
			AdContent:   *content,
			CollectedAt: now,
			Redeemed:    false,
		}
		collected = append(collected, ad)

		e.log.Info("ad collected",
			zap.String("user", user.ID),
			zap.String("zone", zone.ID),
			zap.String("campaign", campaignID))
	}

	return collected
}

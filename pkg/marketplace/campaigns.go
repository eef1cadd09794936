// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package marketplace

import (
	"errors"
	"time"

	"go.uber.org/zap"

	"github.com/adxyz/adinci/pkg/collect"
	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/geo"
	"github.com/adxyz/adinci/pkg/rental"
)

var (
	ErrAdNotFound      = errors.New("collected ad not found")
	ErrAlreadyRedeemed = errors.New("ad reward already claimed")
	ErrWatchIncomplete = errors.New("watch the ad to the end before claiming")
	ErrNoWatchSession  = errors.New("no watch in progress for this ad")
)

// SubmitRental creates a PENDING campaign proposal against a zone. The price
// is fixed from the zone's current CPM; no funds move until approval.
func (m *Marketplace) SubmitRental(zoneID, advertiserID string, content core.AdContent, targetViews int64) (*core.AdRentalRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	zone, ok := m.zones[zoneID]
	if !ok {
		return nil, ErrZoneNotFound
	}
	adv, ok := m.users[advertiserID]
	if !ok {
		return nil, ErrUserNotFound
	}
	if adv.Type != core.UserAdvertiser {
		return nil, ErrWrongRole
	}

	req, err := m.rentals.Submit(zone, adv, content, targetViews, m.clock())
	if err != nil {
		return nil, err
	}

	m.persist()
	if m.metrics != nil {
		m.metrics.RequestsSubmitted.Inc()
	}
	return req, nil
}

// ApproveRental is the owner action accepting a PENDING proposal. The
// advertiser is debited and the owner's escrow credited; on a shortfall the
// request stays PENDING and the error names the missing amount.
func (m *Marketplace) ApproveRental(requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.rentals.Get(requestID)
	if !ok {
		return rental.ErrRequestNotFound
	}

	adv, ok := m.users[req.AdvertiserID]
	if !ok {
		return ErrUserNotFound
	}
	owner, err := m.ownerOfZoneLocked(req.ZoneID)
	if err != nil {
		return err
	}

	if err := m.rentals.Approve(requestID, adv, owner); err != nil {
		if m.metrics != nil {
			m.metrics.ApprovalsBlocked.Inc()
		}
		return err
	}

	m.persist()
	if m.metrics != nil {
		m.metrics.RequestsApproved.Inc()
	}
	return nil
}

// RejectRental is the owner action declining a PENDING proposal
func (m *Marketplace) RejectRental(requestID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.rentals.Reject(requestID); err != nil {
		return err
	}

	m.persist()
	if m.metrics != nil {
		m.metrics.RequestsRejected.Inc()
	}
	return nil
}

// Rental returns a request by id
func (m *Marketplace) Rental(id string) (*core.AdRentalRequest, bool) {
	return m.rentals.Get(id)
}

// Rentals returns all requests in submission order
func (m *Marketplace) Rentals() []*core.AdRentalRequest {
	return m.rentals.List()
}

// RentalsByAdvertiser returns an advertiser's proposals
func (m *Marketplace) RentalsByAdvertiser(advertiserID string) []*core.AdRentalRequest {
	return m.rentals.ByAdvertiser(advertiserID)
}

// RentalsForOwner returns all proposals against the owner's zones
func (m *Marketplace) RentalsForOwner(ownerID string) []*core.AdRentalRequest {
	m.mu.Lock()
	owned := make(map[string]bool)
	for _, id := range m.zoneOrder {
		if z := m.zones[id]; z.OwnerID == ownerID {
			owned[z.ID] = true
		}
	}
	m.mu.Unlock()

	var out []*core.AdRentalRequest
	for _, req := range m.rentals.List() {
		if owned[req.ZoneID] {
			out = append(out, req)
		}
	}
	return out
}

func (m *Marketplace) ownerOfZoneLocked(zoneID string) (*core.User, error) {
	zone, ok := m.zones[zoneID]
	if !ok {
		return nil, ErrZoneNotFound
	}
	owner, ok := m.users[zone.OwnerID]
	if !ok {
		return nil, ErrUserNotFound
	}
	return owner, nil
}

// UpdateLocation dispatches a regular user's location change. Every eligible
// zone is scanned; newly collected ads are prepended to the inventory and
// returned so the caller can notify the user. Non-regular users never
// collect.
func (m *Marketplace) UpdateLocation(userID string, location geo.Point) ([]*core.CollectedAd, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}
	if m.metrics != nil {
		m.metrics.LocationUpdates.Inc()
	}
	if u.Type != core.UserRegular {
		return nil, nil
	}

	scanStart := time.Now()
	collected := m.collector.Evaluate(location, m.zonesLocked(), m.rentals.ActiveForZone, u, m.clock())
	if m.metrics != nil {
		m.metrics.CollectionScan.Observe(time.Since(scanStart).Seconds())
	}
	if len(collected) == 0 {
		return nil, nil
	}

	u.Inventory = append(collected, u.Inventory...)
	m.persist()

	if m.metrics != nil {
		for range collected {
			m.metrics.AdsCollected.Inc()
		}
	}
	if m.stats != nil {
		now := m.clock()
		for _, ad := range collected {
			m.stats.RecordCollection(m.zoneOfCampaignLocked(ad.CampaignID), ad.CampaignID, userID, now)
		}
	}

	return collected, nil
}

// zoneOfCampaignLocked maps a campaign id back to its zone. Native creatives
// use the zone id itself as the campaign id.
func (m *Marketplace) zoneOfCampaignLocked(campaignID string) string {
	if req, ok := m.rentals.Get(campaignID); ok {
		return req.ZoneID
	}
	return campaignID
}

// StartWatch opens a watch session for a collected ad. Any previous session
// for the user is replaced (modal dismissed and reopened).
func (m *Marketplace) StartWatch(userID, adID string) (*collect.WatchSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return nil, ErrUserNotFound
	}

	ad := inventoryAd(u, adID)
	if ad == nil {
		return nil, ErrAdNotFound
	}
	if ad.Redeemed {
		return nil, ErrAlreadyRedeemed
	}

	session := collect.NewWatchSession(ad)
	m.watches[userID] = session
	return session, nil
}

// WatchSession returns the user's current watch, nil when none
func (m *Marketplace) WatchSession(userID string) *collect.WatchSession {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.watches[userID]
}

// ClaimReward finishes the watch flow: the ad is redeemed, the reward points
// credited, and — when the ad came from an ACTIVE campaign — one view is
// recorded against it, which can complete the campaign and trigger
// settlement.
func (m *Marketplace) ClaimReward(userID, adID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	u, ok := m.users[userID]
	if !ok {
		return 0, ErrUserNotFound
	}

	ad := inventoryAd(u, adID)
	if ad == nil {
		return 0, ErrAdNotFound
	}
	if ad.Redeemed {
		return 0, ErrAlreadyRedeemed
	}

	session := m.watches[userID]
	if session == nil || session.Ad().ID != adID {
		return 0, ErrNoWatchSession
	}
	if !session.CanClaim() {
		return 0, ErrWatchIncomplete
	}

	ad.Redeemed = true
	delete(m.watches, userID)

	points := ad.AdContent.RewardPoints
	m.wallets.CreditPoints(u, points)

	var advertiserID string
	if req, ok := m.rentals.Get(ad.CampaignID); ok {
		advertiserID = req.AdvertiserID
		if req.Status == core.RentalActive {
			owner, err := m.ownerOfZoneLocked(req.ZoneID)
			if err != nil {
				m.log.Error("view not recorded", zap.String("request", req.ID), zap.Error(err))
			} else {
				completed, err := m.rentals.RecordView(req.ID, owner)
				if err != nil {
					m.log.Error("view not recorded", zap.String("request", req.ID), zap.Error(err))
				} else if completed {
					if m.metrics != nil {
						m.metrics.CampaignsCompleted.Inc()
						m.metrics.SettlementVolume.Add(req.TotalPrice.InexactFloat64())
					}
					if m.stats != nil {
						m.stats.RecordSettlement(req.ZoneID, req.AdvertiserID, req.TotalPrice, m.clock())
					}
				}
			}
		}
	}
	if m.stats != nil {
		m.stats.RecordClaim(m.zoneOfCampaignLocked(ad.CampaignID), advertiserID, userID, points, m.clock())
	}

	m.persist()

	if m.metrics != nil {
		m.metrics.RewardsClaimed.Inc()
		m.metrics.PointsAwarded.Add(float64(points))
	}
	m.log.Info("reward claimed",
		zap.String("user", userID),
		zap.String("ad", adID),
		zap.Int64("points", points))

	return points, nil
}

func inventoryAd(u *core.User, adID string) *core.CollectedAd {
	for _, ad := range u.Inventory {
		if ad.ID == adID {
			return ad
		}
	}
	return nil
}

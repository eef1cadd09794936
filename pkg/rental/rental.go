// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package rental

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/ledger"
	"github.com/adxyz/adinci/pkg/log"
	"github.com/adxyz/adinci/pkg/pricing"
)

var (
	ErrRequestNotFound = errors.New("rental request not found")
	ErrNotPending      = errors.New("rental request is not pending")
	ErrNotActive       = errors.New("rental request is not active")
	ErrNoTargetViews   = errors.New("target views must be positive")
)

// Manager owns the rental-request lifecycle: PENDING -> ACTIVE -> COMPLETED,
// or PENDING -> REJECTED. Approval moves the campaign price from the
// advertiser into the owner's escrow; completion settles the escrow minus
// the platform commission. Approve and Reject are idempotent-safe: a request
// already out of PENDING returns ErrNotPending instead of re-running.
type Manager struct {
	mu       sync.RWMutex
	requests map[string]*core.AdRentalRequest
	order    []string
	wallets  *ledger.Ledger
	log      log.Logger
}

// NewManager creates a rental lifecycle manager
func NewManager(wallets *ledger.Ledger, logger log.Logger) *Manager {
	return &Manager{
		requests: make(map[string]*core.AdRentalRequest),
		wallets:  wallets,
		log:      logger,
	}
}

// Submit creates a PENDING proposal against a zone. The total price is fixed
// here from the zone's current CPM and never recomputed. No funds move.
func (m *Manager) Submit(
	zone *core.AdZone,
	advertiser *core.User,
	content core.AdContent,
	targetViews int64,
	now time.Time,
) (*core.AdRentalRequest, error) {
	if targetViews <= 0 {
		return nil, ErrNoTargetViews
	}

	req := &core.AdRentalRequest{
		ID:             uuid.NewString(),
		ZoneID:         zone.ID,
		AdvertiserID:   advertiser.ID,
		AdvertiserName: advertiser.Name,
		AdContent:      content,
		TargetViews:    targetViews,
		CurrentViews:   0,
		PricePer1k:     zone.PricePer1k,
		TotalPrice:     pricing.CampaignPrice(zone.PricePer1k, targetViews),
		Status:         core.RentalPending,
		CreatedAt:      now,
	}

	m.mu.Lock()
	m.requests[req.ID] = req
	m.order = append(m.order, req.ID)
	m.mu.Unlock()

	m.log.Info("rental request submitted",
		zap.String("request", req.ID),
		zap.String("zone", zone.ID),
		zap.String("advertiser", advertiser.ID),
		zap.Int64("target_views", targetViews),
		zap.String("total_price", req.TotalPrice.StringFixed(2)))

	return req, nil
}

// Approve transitions a PENDING request to ACTIVE. The advertiser must cover
// the full price at approval time; on success the price moves into the
// owner's escrow. On a shortfall the request stays PENDING and the returned
// error carries the missing amount.
func (m *Manager) Approve(id string, advertiser, owner *core.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return ErrRequestNotFound
	}
	if req.Status != core.RentalPending {
		return ErrNotPending
	}

	if err := m.wallets.DebitForCampaign(advertiser, req.TotalPrice); err != nil {
		m.log.Warn("approval blocked",
			zap.String("request", id),
			zap.Error(err))
		return err
	}

	m.wallets.CreditEscrow(owner, req.TotalPrice)
	req.Status = core.RentalActive

	m.log.Info("rental request approved",
		zap.String("request", id),
		zap.String("total_price", req.TotalPrice.StringFixed(2)))

	return nil
}

// Reject declines a PENDING request. No funds move; REJECTED is terminal.
func (m *Manager) Reject(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return ErrRequestNotFound
	}
	if req.Status != core.RentalPending {
		return ErrNotPending
	}

	req.Status = core.RentalRejected

	m.log.Info("rental request rejected", zap.String("request", id))

	return nil
}

// RecordView counts one fulfilled view against an ACTIVE campaign, clamped
// to the target. Reaching the target completes the campaign and fires
// settlement exactly once, paying the owner out of escrow.
func (m *Manager) RecordView(id string, owner *core.User) (completed bool, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	req, ok := m.requests[id]
	if !ok {
		return false, ErrRequestNotFound
	}
	if req.Status != core.RentalActive {
		return false, ErrNotActive
	}

	req.CurrentViews++
	if req.CurrentViews > req.TargetViews {
		req.CurrentViews = req.TargetViews
	}

	if req.CurrentViews < req.TargetViews {
		return false, nil
	}

	req.Status = core.RentalCompleted
	payout, fee := m.wallets.Settle(owner, req.TotalPrice)

	m.log.Info("campaign completed",
		zap.String("request", id),
		zap.String("payout", payout.StringFixed(2)),
		zap.String("fee", fee.StringFixed(2)))

	return true, nil
}

// Get returns a request by id
func (m *Manager) Get(id string) (*core.AdRentalRequest, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	req, ok := m.requests[id]
	return req, ok
}

// ActiveForZone returns the zone's currently ACTIVE campaign, nil when none
func (m *Manager) ActiveForZone(zoneID string) *core.AdRentalRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	for _, id := range m.order {
		req := m.requests[id]
		if req.ZoneID == zoneID && req.Status == core.RentalActive {
			return req
		}
	}
	return nil
}

// List returns all requests in submission order
func (m *Manager) List() []*core.AdRentalRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]*core.AdRentalRequest, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.requests[id])
	}
	return out
}

// ByZone returns all requests against a zone in submission order
func (m *Manager) ByZone(zoneID string) []*core.AdRentalRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*core.AdRentalRequest
	for _, id := range m.order {
		if req := m.requests[id]; req.ZoneID == zoneID {
			out = append(out, req)
		}
	}
	return out
}

// ByAdvertiser returns all requests submitted by an advertiser
func (m *Manager) ByAdvertiser(advertiserID string) []*core.AdRentalRequest {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*core.AdRentalRequest
	for _, id := range m.order {
		if req := m.requests[id]; req.AdvertiserID == advertiserID {
			out = append(out, req)
		}
	}
	return out
}

// Restore replaces the manager's requests from a snapshot, preserving order
func (m *Manager) Restore(reqs []*core.AdRentalRequest) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.requests = make(map[string]*core.AdRentalRequest, len(reqs))
	m.order = m.order[:0]
	for _, req := range reqs {
		m.requests[req.ID] = req
		m.order = append(m.order, req.ID)
	}
}

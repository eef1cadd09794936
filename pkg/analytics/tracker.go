// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package analytics tracks marketplace performance: collections, reward
// claims and settled revenue, broken down per zone and per advertiser. It is
// a reporting surface for owners and advertisers, separate from the
// operational Prometheus metrics.
package analytics

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/shopspring/decimal"
)

// EventType classifies a marketplace analytics event
type EventType string

const (
	EventCollection EventType = "collection"
	EventClaim      EventType = "claim"
	EventSettlement EventType = "settlement"
)

// Event is a single analytics record
type Event struct {
	Type       EventType       `json:"type"`
	Timestamp  time.Time       `json:"timestamp"`
	ZoneID     string          `json:"zone_id,omitempty"`
	CampaignID string          `json:"campaign_id,omitempty"`
	UserID     string          `json:"user_id,omitempty"`
	Points     int64           `json:"points,omitempty"`
	Amount     decimal.Decimal `json:"amount,omitempty"`
}

// ZoneStats aggregates a zone's delivery performance
type ZoneStats struct {
	ZoneID       string          `json:"zone_id"`
	Collections  uint64          `json:"collections"`
	Claims       uint64          `json:"claims"`
	Revenue      decimal.Decimal `json:"revenue"`
	LastActivity time.Time       `json:"last_activity"`
}

// AdvertiserStats aggregates an advertiser's campaign delivery
type AdvertiserStats struct {
	AdvertiserID string          `json:"advertiser_id"`
	Views        uint64          `json:"views"`
	PointsIssued int64           `json:"points_issued"`
	TotalSpend   decimal.Decimal `json:"total_spend"`
}

// Bucket holds one time slice of marketplace activity
type Bucket struct {
	Timestamp   time.Time       `json:"timestamp"`
	Collections uint64          `json:"collections"`
	Claims      uint64          `json:"claims"`
	Revenue     decimal.Decimal `json:"revenue"`
}

// Tracker accumulates marketplace analytics in memory. Counters are atomic;
// the per-zone and per-advertiser maps are mutex-guarded.
type Tracker struct {
	TotalCollections atomic.Uint64
	TotalClaims      atomic.Uint64
	TotalPoints      atomic.Int64

	mu          sync.RWMutex
	revenue     decimal.Decimal
	zones       map[string]*ZoneStats
	advertisers map[string]*AdvertiserStats
	buckets     map[int64]*Bucket
	bucketSize  time.Duration
}

// NewTracker creates an empty tracker with one-minute time buckets
func NewTracker() *Tracker {
	return &Tracker{
		revenue:     decimal.Zero,
		zones:       make(map[string]*ZoneStats),
		advertisers: make(map[string]*AdvertiserStats),
		buckets:     make(map[int64]*Bucket),
		bucketSize:  time.Minute,
	}
}

// RecordCollection tracks a user picking up an ad inside a zone
func (t *Tracker) RecordCollection(zoneID, campaignID, userID string, now time.Time) {
	t.TotalCollections.Add(1)

	t.mu.Lock()
	defer t.mu.Unlock()

	z := t.zoneLocked(zoneID)
	z.Collections++
	z.LastActivity = now

	b := t.bucketLocked(now)
	b.Collections++
}

// RecordClaim tracks a completed watch and its reward payout. advertiserID is
// empty when the ad came from the zone's native creative.
func (t *Tracker) RecordClaim(zoneID, advertiserID, userID string, points int64, now time.Time) {
	t.TotalClaims.Add(1)
	t.TotalPoints.Add(points)

	t.mu.Lock()
	defer t.mu.Unlock()

	z := t.zoneLocked(zoneID)
	z.Claims++
	z.LastActivity = now

	if advertiserID != "" {
		a := t.advertiserLocked(advertiserID)
		a.Views++
		a.PointsIssued += points
	}

	b := t.bucketLocked(now)
	b.Claims++
}

// RecordSettlement tracks a campaign completing and its escrow paying out
func (t *Tracker) RecordSettlement(zoneID, advertiserID string, total decimal.Decimal, now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.revenue = t.revenue.Add(total)

	z := t.zoneLocked(zoneID)
	z.Revenue = z.Revenue.Add(total)
	z.LastActivity = now

	if advertiserID != "" {
		a := t.advertiserLocked(advertiserID)
		a.TotalSpend = a.TotalSpend.Add(total)
	}

	b := t.bucketLocked(now)
	b.Revenue = b.Revenue.Add(total)
}

// Summary is the marketplace-wide rollup
type Summary struct {
	Collections  uint64          `json:"collections"`
	Claims       uint64          `json:"claims"`
	PointsIssued int64           `json:"points_issued"`
	Revenue      decimal.Decimal `json:"revenue"`
}

// Snapshot returns the current marketplace-wide totals
func (t *Tracker) Snapshot() Summary {
	t.mu.RLock()
	revenue := t.revenue
	t.mu.RUnlock()

	return Summary{
		Collections:  t.TotalCollections.Load(),
		Claims:       t.TotalClaims.Load(),
		PointsIssued: t.TotalPoints.Load(),
		Revenue:      revenue,
	}
}

// Zone returns a copy of one zone's stats, nil when the zone has no activity
func (t *Tracker) Zone(zoneID string) *ZoneStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	z, ok := t.zones[zoneID]
	if !ok {
		return nil
	}
	cp := *z
	return &cp
}

// Advertiser returns a copy of one advertiser's stats, nil when inactive
func (t *Tracker) Advertiser(advertiserID string) *AdvertiserStats {
	t.mu.RLock()
	defer t.mu.RUnlock()

	a, ok := t.advertisers[advertiserID]
	if !ok {
		return nil
	}
	cp := *a
	return &cp
}

// Series returns the time buckets overlapping [start, end], oldest first
func (t *Tracker) Series(start, end time.Time) []Bucket {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var out []Bucket
	for _, b := range t.buckets {
		if b.Timestamp.Before(start) || b.Timestamp.After(end) {
			continue
		}
		out = append(out, *b)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out
}

func (t *Tracker) zoneLocked(zoneID string) *ZoneStats {
	z, ok := t.zones[zoneID]
	if !ok {
		z = &ZoneStats{ZoneID: zoneID, Revenue: decimal.Zero}
		t.zones[zoneID] = z
	}
	return z
}

func (t *Tracker) advertiserLocked(advertiserID string) *AdvertiserStats {
	a, ok := t.advertisers[advertiserID]
	if !ok {
		a = &AdvertiserStats{
			AdvertiserID: advertiserID,
			TotalSpend:   decimal.Zero,
		}
		t.advertisers[advertiserID] = a
	}
	return a
}

func (t *Tracker) bucketLocked(now time.Time) *Bucket {
	key := now.Unix() / int64(t.bucketSize.Seconds())
	b, ok := t.buckets[key]
	if !ok {
		b = &Bucket{
			Timestamp: time.Unix(key*int64(t.bucketSize.Seconds()), 0),
			Revenue:   decimal.Zero,
		}
		t.buckets[key] = b
	}
	return b
}

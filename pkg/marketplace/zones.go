// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package marketplace

import (
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/geo"
	"github.com/adxyz/adinci/pkg/pricing"
)

var (
	ErrZoneNotFound = errors.New("zone not found")
	ErrZoneActive   = errors.New("cannot delete an active zone; deactivate it first")
	ErrZoneTooSmall = errors.New("zone area is below the billable minimum")
	ErrBadDuration  = errors.New("activation duration must be at least one month")
	ErrNotZoneOwner = errors.New("zone belongs to another owner")
)

// activationMonth is the billing month used when extending zone expiry
const activationMonth = 30 * 24 * time.Hour

// CreateZone registers a new geofenced zone for an owner. Zones drawn on the
// map start active with the platform default CPM and no expiry.
func (m *Marketplace) CreateZone(ownerID, name string, center geo.Point, shape geo.Shape) (*core.AdZone, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	owner, ok := m.users[ownerID]
	if !ok {
		return nil, ErrUserNotFound
	}
	if owner.Type != core.UserZoneOwner {
		return nil, ErrWrongRole
	}

	z := &core.AdZone{
		ID:         uuid.NewString(),
		OwnerID:    ownerID,
		Name:       name,
		Center:     center,
		Shape:      shape,
		IsActive:   true,
		PricePer1k: pricing.DefaultCPM,
	}

	m.zones[z.ID] = z
	m.zoneOrder = append(m.zoneOrder, z.ID)
	m.persist()

	if m.metrics != nil {
		m.metrics.ZonesCreated.Inc()
	}
	m.log.Info("zone created",
		zap.String("zone", z.ID),
		zap.String("owner", ownerID),
		zap.String("name", name))

	return z, nil
}

// Zone returns a zone by id
func (m *Marketplace) Zone(id string) (*core.AdZone, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	z, ok := m.zones[id]
	return z, ok
}

// Zones returns all zones in creation order
func (m *Marketplace) Zones() []*core.AdZone {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.zonesLocked()
}

// ZonesByOwner returns an owner's zones in creation order
func (m *Marketplace) ZonesByOwner(ownerID string) []*core.AdZone {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []*core.AdZone
	for _, id := range m.zoneOrder {
		if z := m.zones[id]; z.OwnerID == ownerID {
			out = append(out, z)
		}
	}
	return out
}

// RenameZone changes a zone's display name
func (m *Marketplace) RenameZone(zoneID, name string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return ErrZoneNotFound
	}
	z.Name = name
	m.persist()
	return nil
}

// MoveZone recenters a zone's geofence
func (m *Marketplace) MoveZone(zoneID string, center geo.Point) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return ErrZoneNotFound
	}
	z.Center = center
	m.persist()
	return nil
}

// SetZoneCPM updates the price the owner charges per 1,000 views. Running
// campaigns keep the price they were submitted at.
func (m *Marketplace) SetZoneCPM(zoneID string, cpm decimal.Decimal) error {
	if cpm.LessThanOrEqual(decimal.Zero) {
		return errors.New("CPM must be positive")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return ErrZoneNotFound
	}
	z.PricePer1k = cpm
	m.persist()
	return nil
}

// SetZoneContent replaces the zone's native fallback creative
func (m *Marketplace) SetZoneContent(zoneID string, content *core.AdContent) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return ErrZoneNotFound
	}
	z.AdContent = content
	m.persist()
	return nil
}

// ResizeZone replaces a zone's geometry from a direct drag gesture
func (m *Marketplace) ResizeZone(zoneID string, shape geo.Shape) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return ErrZoneNotFound
	}
	z.Shape = shape
	m.persist()
	return nil
}

// ResizeZoneByArea scales a zone to a target area from the budget slider.
// The requested area is clamped to the billable floor; rectangles keep their
// aspect ratio.
func (m *Marketplace) ResizeZoneByArea(zoneID string, area float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return ErrZoneNotFound
	}
	z.Shape = z.Shape.WithArea(pricing.ClampArea(area))
	m.persist()
	return nil
}

// ActivateZone records an owner activation payment for the given number of
// months. The expiry extends from the later of now and the current expiry;
// the payment lands in the zone's history. The fee itself is collected by an
// external payment surface, not from the owner's marketplace balance.
func (m *Marketplace) ActivateZone(zoneID string, months int) (decimal.Decimal, error) {
	if months < 1 {
		return decimal.Zero, ErrBadDuration
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return decimal.Zero, ErrZoneNotFound
	}

	area := z.Area()
	if area < pricing.MinZoneArea {
		return decimal.Zero, ErrZoneTooSmall
	}

	price := pricing.ZoneRentalPrice(area, pricing.ZoneRatePerSqmMonth, months)
	now := m.clock()

	base := now
	if z.ExpiryDate != nil && z.ExpiryDate.After(now) {
		base = *z.ExpiryDate
	}
	expiry := base.Add(time.Duration(months) * activationMonth)

	z.IsActive = true
	z.ExpiryDate = &expiry
	z.TotalCostPaid = z.TotalCostPaid.Add(price)
	z.PaymentHistory = append([]core.PaymentRecord{{
		ID:             uuid.NewString(),
		Amount:         price,
		Date:           now,
		DurationMonths: months,
	}}, z.PaymentHistory...)

	m.persist()

	if m.metrics != nil {
		m.metrics.ZonesActivated.Inc()
	}
	m.log.Info("zone activated",
		zap.String("zone", zoneID),
		zap.Int("months", months),
		zap.String("price", price.StringFixed(2)))

	return price, nil
}

// DeactivateZone stops ad delivery for a zone
func (m *Marketplace) DeactivateZone(zoneID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return ErrZoneNotFound
	}
	z.IsActive = false
	m.persist()
	return nil
}

// DeleteZone removes an inactive zone. Deleting an active zone is rejected;
// deleting a zone that is already gone is a no-op.
func (m *Marketplace) DeleteZone(zoneID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	z, ok := m.zones[zoneID]
	if !ok {
		return nil
	}
	if z.IsActive {
		return ErrZoneActive
	}

	delete(m.zones, zoneID)
	for i, id := range m.zoneOrder {
		if id == zoneID {
			m.zoneOrder = append(m.zoneOrder[:i], m.zoneOrder[i+1:]...)
			break
		}
	}
	m.persist()

	if m.metrics != nil {
		m.metrics.ZonesDeleted.Inc()
	}
	m.log.Info("zone deleted", zap.String("zone", zoneID))

	return nil
}

// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package marketplace

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/adxyz/adinci/pkg/core"
	"github.com/adxyz/adinci/pkg/geo"
)

// DubaiCenter is the default map cursor for the demo marketplace
var DubaiCenter = geo.Point{Lat: 25.1972, Lng: 55.2744}

// Seed installs the demo dataset when the marketplace is empty: one test
// account per role, two Dubai zones with native creatives, and a pending
// campaign proposal. A restored snapshot is left untouched.
func (m *Marketplace) Seed() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if len(m.users) > 0 || len(m.zones) > 0 {
		return
	}

	now := m.clock()

	users := []*core.User{
		{
			ID:            "u-owner-1",
			Name:          "Test Owner",
			Email:         "zone@test.com",
			Type:          core.UserZoneOwner,
			PhoneNumber:   "+971501112233",
			Bio:           "Premium zone management.",
			Avatar:        "#1e293b",
			Balance:       decimal.NewFromFloat(540.20),
			TotalEarnings: decimal.NewFromFloat(1250.00),
			EscrowBalance: decimal.Zero,
		},
		{
			ID:          "u-adv-1",
			Name:        "Test Advertiser",
			Email:       "ads@test.com",
			Type:        core.UserAdvertiser,
			PhoneNumber: "+971556677889",
			Bio:         "Looking for local reach.",
			Avatar:      "#7c3aed",
			Balance:     decimal.NewFromFloat(1000.00),
		},
		{
			ID:          "u-reg-1",
			Name:        "Test User",
			Email:       "usr@test.com",
			Type:        core.UserRegular,
			PhoneNumber: "+971550001111",
			Bio:         "Exploring and earning.",
			Avatar:      "#3b82f6",
			Points:      150,
			Balance:     decimal.Zero,
		},
	}
	for _, u := range users {
		m.users[u.ID] = u
		m.userOrder = append(m.userOrder, u.ID)
	}

	expiry1 := now.Add(30 * 24 * time.Hour)
	expiry2 := now.Add(15 * 24 * time.Hour)

	zones := []*core.AdZone{
		{
			ID:         "zone-burj-khalifa",
			OwnerID:    "u-owner-1",
			Name:       "Burj Khalifa Plaza",
			Center:     geo.Point{Lat: 25.1972, Lng: 55.2744},
			Shape:      geo.Circle{RadiusM: 300},
			IsActive:   true,
			ExpiryDate: &expiry1,
			PricePer1k: decimal.NewFromFloat(25.00),
			AdContent: &core.AdContent{
				Title:        "Burj Luxury Dining",
				Description:  "Experience fine dining at the top. 20% off for Adinci users.",
				RewardPoints: 50,
				CompanyName:  "Atmosphere",
				VideoURL:     "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ForBiggerJoyrides.mp4",
			},
		},
		{
			ID:         "zone-difc-gateway",
			OwnerID:    "u-owner-1",
			Name:       "DIFC Gateway",
			Center:     geo.Point{Lat: 25.2048, Lng: 55.2708},
			Shape:      geo.Rectangle{WidthM: 500, HeightM: 400},
			IsActive:   true,
			ExpiryDate: &expiry2,
			PricePer1k: decimal.NewFromFloat(18.50),
			AdContent: &core.AdContent{
				Title:        "Crypto Expo 2024",
				Description:  "Join the biggest blockchain event in DIFC. Free entry for the first 100 users.",
				RewardPoints: 100,
				CompanyName:  "FutureTech",
			},
		},
	}
	for _, z := range zones {
		m.zones[z.ID] = z
		m.zoneOrder = append(m.zoneOrder, z.ID)
	}

	m.rentals.Restore([]*core.AdRentalRequest{
		{
			ID:             "rent-demo-1",
			ZoneID:         "zone-burj-khalifa",
			AdvertiserID:   "u-adv-1",
			AdvertiserName: "Test Advertiser",
			AdContent: core.AdContent{
				Title:        "New Year Bash 2025",
				Description:  "The biggest party in Dubai. Book tickets now!",
				RewardPoints: 75,
				CompanyName:  "Events DXB",
				VideoURL:     "https://commondatastorage.googleapis.com/gtv-videos-bucket/sample/ElephantsDream.mp4",
			},
			TargetViews:  5000,
			CurrentViews: 0,
			PricePer1k:   decimal.NewFromFloat(25.00),
			TotalPrice:   decimal.NewFromFloat(125.00),
			Status:       core.RentalPending,
			CreatedAt:    now.Add(-time.Hour),
		},
	})

	m.persist()
	m.log.Info("demo dataset seeded")
}

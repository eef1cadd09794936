// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package core

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"github.com/adxyz/adinci/pkg/geo"
)

// UserType discriminates the three marketplace roles
type UserType string

const (
	UserRegular    UserType = "REGULAR"
	UserAdvertiser UserType = "ADVERTISER"
	UserZoneOwner  UserType = "ZONE_OWNER"
)

// PrivacyLevel controls who can see a profile attribute
type PrivacyLevel string

const (
	PrivacyEveryone PrivacyLevel = "Everyone"
	PrivacyContacts PrivacyLevel = "My Contacts"
	PrivacyNobody   PrivacyLevel = "Nobody"
)

// UserSettings holds accessibility and privacy flags
type UserSettings struct {
	IsVisuallyImpaired bool         `json:"is_visually_impaired"`
	LastSeen           PrivacyLevel `json:"last_seen,omitempty"`
	ProfilePhoto       PrivacyLevel `json:"profile_photo,omitempty"`
	ReadReceipts       bool         `json:"read_receipts,omitempty"`
}

// AdContent is the creative shown when an ad is watched
type AdContent struct {
	Title        string `json:"title"`
	Description  string `json:"description"`
	RewardPoints int64  `json:"reward_points"`
	CompanyName  string `json:"company_name"`
	VideoURL     string `json:"video_url,omitempty"`
}

// CollectedAd is a reward-eligible ad instance in a regular user's inventory.
// CampaignID references the rental request that supplied the content, or the
// zone itself when the zone's native content was served.
type CollectedAd struct {
	ID          string    `json:"id"`
	CampaignID  string    `json:"campaign_id"`
	AdContent   AdContent `json:"ad_content"`
	CollectedAt time.Time `json:"collected_at"`
	Redeemed    bool      `json:"redeemed"`
}

// User is a marketplace participant. Balance is spendable funds; escrow and
// total earnings are only meaningful for zone owners, points and inventory
// for regular users.
type User struct {
	ID          string          `json:"id"`
	Name        string          `json:"name"`
	Type        UserType        `json:"type"`
	Email       string          `json:"email,omitempty"`
	PhoneNumber string          `json:"phone_number,omitempty"`
	Bio         string          `json:"bio,omitempty"`
	Avatar      string          `json:"avatar,omitempty"`
	Settings    UserSettings    `json:"settings"`
	Points      int64           `json:"points"`
	Inventory   []*CollectedAd  `json:"inventory"`
	Balance     decimal.Decimal `json:"balance"`

	// Zone owner bookkeeping
	TotalEarnings decimal.Decimal `json:"total_earnings"`
	EscrowBalance decimal.Decimal `json:"escrow_balance"`
}

// UnredeemedAd returns the unredeemed inventory entry for a campaign, nil if
// none exists
func (u *User) UnredeemedAd(campaignID string) *CollectedAd {
	for _, ad := range u.Inventory {
		if ad.CampaignID == campaignID && !ad.Redeemed {
			return ad
		}
	}
	return nil
}

// PaymentRecord captures one zone activation payment by the owner
type PaymentRecord struct {
	ID             string          `json:"id"`
	Amount         decimal.Decimal `json:"amount"`
	Date           time.Time       `json:"date"`
	DurationMonths int             `json:"duration"`
}

// AdZone is a geofenced advertising location offered by an owner
type AdZone struct {
	ID      string    `json:"id"`
	OwnerID string    `json:"owner_id"`
	Name    string    `json:"name"`
	Center  geo.Point `json:"center"`
	Shape   geo.Shape `json:"-"`

	IsActive   bool            `json:"is_active"`
	ExpiryDate *time.Time      `json:"expiry_date,omitempty"`
	PricePer1k decimal.Decimal `json:"price_per_1k"`

	// Native fallback creative served when no rental is active
	AdContent *AdContent `json:"ad_content,omitempty"`

	TotalCostPaid  decimal.Decimal `json:"total_cost_paid"`
	PaymentHistory []PaymentRecord `json:"payment_history,omitempty"`
}

// Area returns the zone's surface area in square meters
func (z *AdZone) Area() float64 {
	return z.Shape.Area()
}

// Contains reports whether the point falls inside the zone's geofence
func (z *AdZone) Contains(p geo.Point) bool {
	return z.Shape.Contains(z.Center, p)
}

// EligibleAt reports whether the zone may deliver ads at the given time:
// active, and either no expiry or an expiry still in the future.
func (z *AdZone) EligibleAt(now time.Time) bool {
	if !z.IsActive {
		return false
	}
	return z.ExpiryDate == nil || z.ExpiryDate.After(now)
}

// zoneJSON is the flat wire form of AdZone. The shape union is encoded as a
// tag plus the fields of the tagged kind, matching the snapshot layout the
// mobile prototype persisted.
type zoneJSON struct {
	ID             string          `json:"id"`
	OwnerID        string          `json:"owner_id"`
	Name           string          `json:"name"`
	Center         geo.Point       `json:"center"`
	Shape          geo.ShapeKind   `json:"shape"`
	Radius         float64         `json:"radius,omitempty"`
	Width          float64         `json:"width,omitempty"`
	Height         float64         `json:"height,omitempty"`
	IsActive       bool            `json:"is_active"`
	ExpiryDate     *time.Time      `json:"expiry_date,omitempty"`
	PricePer1k     decimal.Decimal `json:"price_per_1k"`
	AdContent      *AdContent      `json:"ad_content,omitempty"`
	TotalCostPaid  decimal.Decimal `json:"total_cost_paid"`
	PaymentHistory []PaymentRecord `json:"payment_history,omitempty"`
}

// MarshalJSON flattens the shape union into the tagged wire form
func (z *AdZone) MarshalJSON() ([]byte, error) {
	out := zoneJSON{
		ID:             z.ID,
		OwnerID:        z.OwnerID,
		Name:           z.Name,
		Center:         z.Center,
		IsActive:       z.IsActive,
		ExpiryDate:     z.ExpiryDate,
		PricePer1k:     z.PricePer1k,
		AdContent:      z.AdContent,
		TotalCostPaid:  z.TotalCostPaid,
		PaymentHistory: z.PaymentHistory,
	}

	switch s := z.Shape.(type) {
	case geo.Circle:
		out.Shape = geo.KindCircle
		out.Radius = s.RadiusM
	case geo.Rectangle:
		out.Shape = geo.KindRectangle
		out.Width = s.WidthM
		out.Height = s.HeightM
	default:
		return nil, fmt.Errorf("zone %s: unknown shape %T", z.ID, z.Shape)
	}

	return json.Marshal(out)
}

// UnmarshalJSON restores the shape union from the tagged wire form
func (z *AdZone) UnmarshalJSON(data []byte) error {
	var in zoneJSON
	if err := json.Unmarshal(data, &in); err != nil {
		return err
	}

	switch in.Shape {
	case geo.KindCircle:
		z.Shape = geo.Circle{RadiusM: in.Radius}
	case geo.KindRectangle:
		z.Shape = geo.Rectangle{WidthM: in.Width, HeightM: in.Height}
	default:
		return fmt.Errorf("zone %s: unknown shape tag %q", in.ID, in.Shape)
	}

	z.ID = in.ID
	z.OwnerID = in.OwnerID
	z.Name = in.Name
	z.Center = in.Center
	z.IsActive = in.IsActive
	z.ExpiryDate = in.ExpiryDate
	z.PricePer1k = in.PricePer1k
	z.AdContent = in.AdContent
	z.TotalCostPaid = in.TotalCostPaid
	z.PaymentHistory = in.PaymentHistory

	return nil
}

// RentalStatus is the campaign proposal state
type RentalStatus string

const (
	RentalPending   RentalStatus = "PENDING"
	RentalActive    RentalStatus = "ACTIVE"
	RentalCompleted RentalStatus = "COMPLETED"
	RentalRejected  RentalStatus = "REJECTED"
)

// Terminal reports whether no further status transitions are possible
func (s RentalStatus) Terminal() bool {
	return s == RentalCompleted || s == RentalRejected
}

// AdRentalRequest is an advertiser's campaign proposal against a zone.
// TotalPrice is fixed at submission and never recomputed; CurrentViews is
// monotonically increasing and clamped to TargetViews.
type AdRentalRequest struct {
	ID             string          `json:"id"`
	ZoneID         string          `json:"zone_id"`
	AdvertiserID   string          `json:"advertiser_id"`
	AdvertiserName string          `json:"advertiser_name"`
	AdContent      AdContent       `json:"ad_content"`
	TargetViews    int64           `json:"target_views"`
	CurrentViews   int64           `json:"current_views"`
	PricePer1k     decimal.Decimal `json:"price_per_1k"`
	TotalPrice     decimal.Decimal `json:"total_price"`
	Status         RentalStatus    `json:"status"`
	CreatedAt      time.Time       `json:"created_at"`
}

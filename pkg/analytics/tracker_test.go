// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package analytics

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

func TestRecordCollection(t *testing.T) {
	require := require.New(t)
	tr := NewTracker()
	now := time.Now()

	tr.RecordCollection("zone-1", "rent-1", "u-reg-1", now)
	tr.RecordCollection("zone-1", "zone-1", "u-reg-2", now)
	tr.RecordCollection("zone-2", "zone-2", "u-reg-1", now)

	require.Equal(uint64(3), tr.TotalCollections.Load())

	z := tr.Zone("zone-1")
	require.NotNil(z)
	require.Equal(uint64(2), z.Collections)
	require.Equal(now, z.LastActivity)

	require.Nil(tr.Zone("zone-missing"))
}

func TestRecordClaim(t *testing.T) {
	require := require.New(t)
	tr := NewTracker()
	now := time.Now()

	tr.RecordClaim("zone-1", "u-adv-1", "u-reg-1", 75, now)
	tr.RecordClaim("zone-1", "", "u-reg-2", 50, now)

	require.Equal(uint64(2), tr.TotalClaims.Load())
	require.Equal(int64(125), tr.TotalPoints.Load())

	require.Equal(uint64(2), tr.Zone("zone-1").Claims)

	// Native-creative claims carry no advertiser
	adv := tr.Advertiser("u-adv-1")
	require.NotNil(adv)
	require.Equal(uint64(1), adv.Views)
	require.Equal(int64(75), adv.PointsIssued)
	require.Nil(tr.Advertiser(""))
}

func TestRecordSettlement(t *testing.T) {
	require := require.New(t)
	tr := NewTracker()
	now := time.Now()

	total := decimal.NewFromInt(125)
	tr.RecordSettlement("zone-1", "u-adv-1", total, now)

	require.True(tr.Zone("zone-1").Revenue.Equal(total))
	require.True(tr.Advertiser("u-adv-1").TotalSpend.Equal(total))
	require.True(tr.Snapshot().Revenue.Equal(total))
}

func TestSnapshot(t *testing.T) {
	require := require.New(t)
	tr := NewTracker()
	now := time.Now()

	tr.RecordCollection("zone-1", "zone-1", "u-reg-1", now)
	tr.RecordClaim("zone-1", "", "u-reg-1", 50, now)
	tr.RecordSettlement("zone-1", "u-adv-1", decimal.NewFromFloat(12.50), now)

	s := tr.Snapshot()
	require.Equal(uint64(1), s.Collections)
	require.Equal(uint64(1), s.Claims)
	require.Equal(int64(50), s.PointsIssued)
	require.True(s.Revenue.Equal(decimal.NewFromFloat(12.50)))
}

func TestSeries(t *testing.T) {
	require := require.New(t)
	tr := NewTracker()

	base := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)
	tr.RecordCollection("zone-1", "zone-1", "u-reg-1", base)
	tr.RecordCollection("zone-1", "zone-1", "u-reg-1", base.Add(30*time.Second))
	tr.RecordClaim("zone-1", "", "u-reg-1", 50, base.Add(5*time.Minute))

	buckets := tr.Series(base.Add(-time.Minute), base.Add(10*time.Minute))
	require.Len(buckets, 2)
	require.True(buckets[0].Timestamp.Before(buckets[1].Timestamp))
	require.Equal(uint64(2), buckets[0].Collections)
	require.Equal(uint64(1), buckets[1].Claims)

	// Out-of-range buckets are excluded
	require.Empty(tr.Series(base.Add(time.Hour), base.Add(2*time.Hour)))
}

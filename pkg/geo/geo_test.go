// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

var dubai = Point{Lat: 25.1972, Lng: 55.2744}

func TestDistance(t *testing.T) {
	require := require.New(t)

	require.Zero(Distance(dubai, dubai))

	difc := Point{Lat: 25.2048, Lng: 55.2708}
	d1 := Distance(dubai, difc)
	d2 := Distance(difc, dubai)

	require.Greater(d1, 0.0)
	require.InDelta(d1, d2, 1e-9) // symmetric

	// DIFC is roughly 900m from the Burj Khalifa area
	require.InDelta(900, d1, 100)
}

func TestCircleContains(t *testing.T) {
	require := require.New(t)

	c := Circle{RadiusM: 300}

	require.True(c.Contains(dubai, dubai))

	// ~222m north of center
	inside := Point{Lat: dubai.Lat + 0.002, Lng: dubai.Lng}
	require.True(c.Contains(dubai, inside))

	// ~444m north of center
	outside := Point{Lat: dubai.Lat + 0.004, Lng: dubai.Lng}
	require.False(c.Contains(dubai, outside))
}

func TestCircleBoundary(t *testing.T) {
	c := Circle{RadiusM: 300}

	// Walk north until just past the radius; the first point beyond must
	// not be contained.
	beyond := Point{Lat: dubai.Lat + (c.RadiusM+1)/MetersPerDegreeLat, Lng: dubai.Lng}
	require.Greater(t, Distance(dubai, beyond), c.RadiusM)
	require.False(t, c.Contains(dubai, beyond))
}

func TestRectangleContains(t *testing.T) {
	require := require.New(t)

	r := Rectangle{WidthM: 500, HeightM: 400}

	require.True(r.Contains(dubai, dubai))

	// Inside: 150m north (< half height of 200m)
	inside := Point{Lat: dubai.Lat + 150/MetersPerDegreeLat, Lng: dubai.Lng}
	require.True(r.Contains(dubai, inside))

	// Outside: 250m north
	north := Point{Lat: dubai.Lat + 250/MetersPerDegreeLat, Lng: dubai.Lng}
	require.False(r.Contains(dubai, north))

	// Outside: 300m east (> half width of 250m)
	lngOffset := 300 / (MetersPerDegreeLat * math.Cos(dubai.Lat*math.Pi/180))
	east := Point{Lat: dubai.Lat, Lng: dubai.Lng + lngOffset}
	require.False(r.Contains(dubai, east))
}

func TestArea(t *testing.T) {
	require := require.New(t)

	require.InDelta(math.Pi*300*300, Circle{RadiusM: 300}.Area(), 1e-6)
	require.InDelta(200000, Rectangle{WidthM: 500, HeightM: 400}.Area(), 1e-6)
}

func TestWithArea(t *testing.T) {
	require := require.New(t)

	c := Circle{RadiusM: 300}.WithArea(50000)
	require.InDelta(50000, c.Area(), 1e-6)

	r := Rectangle{WidthM: 500, HeightM: 400}
	resized := r.WithArea(80000).(Rectangle)
	require.InDelta(80000, resized.Area(), 1e-6)

	// Aspect ratio is preserved
	require.InDelta(r.WidthM/r.HeightM, resized.WidthM/resized.HeightM, 1e-9)
}

func TestWithAreaRoundTrip(t *testing.T) {
	// Repeated resizes must not drift
	var s Shape = Rectangle{WidthM: 500, HeightM: 400}
	for i := 0; i < 100; i++ {
		s = s.WithArea(123456)
	}
	require.InDelta(t, 123456, s.Area(), 1e-6)
}

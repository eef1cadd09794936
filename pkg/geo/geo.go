// Copyright (C) 2025, ADXYZ Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package geo

import "math"

const (
	// EarthRadiusM is the mean Earth radius used for haversine distances
	EarthRadiusM = 6371000.0

	// MetersPerDegreeLat approximates one degree of latitude in meters.
	// Longitude degrees shrink by cos(lat).
	MetersPerDegreeLat = 111111.0
)

// Point is a WGS84 coordinate in degrees
type Point struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Distance returns the great-circle distance between two points in meters.
// Symmetric, zero for identical points.
func Distance(p1, p2 Point) float64 {
	phi1 := p1.Lat * math.Pi / 180
	phi2 := p2.Lat * math.Pi / 180
	dPhi := (p2.Lat - p1.Lat) * math.Pi / 180
	dLambda := (p2.Lng - p1.Lng) * math.Pi / 180

	a := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLambda/2)*math.Sin(dLambda/2)
	c := 2 * math.Atan2(math.Sqrt(a), math.Sqrt(1-a))

	return EarthRadiusM * c
}

// Shape is the geometry of a zone, tagged by kind
type Shape interface {
	// Kind returns the wire tag (CIRCLE or RECTANGLE)
	Kind() ShapeKind

	// Contains reports whether point falls inside the shape centered at center
	Contains(center, point Point) bool

	// Area returns the surface area in square meters
	Area() float64

	// WithArea returns a new shape of the same kind scaled to the given
	// area. Rectangles keep their aspect ratio. The caller is responsible
	// for clamping the area to any marketplace minimum first.
	WithArea(area float64) Shape
}

// ShapeKind tags the concrete geometry of a Shape
type ShapeKind string

const (
	KindCircle    ShapeKind = "CIRCLE"
	KindRectangle ShapeKind = "RECTANGLE"
)

// Circle is a circular geofence
type Circle struct {
	RadiusM float64
}

func (c Circle) Kind() ShapeKind { return KindCircle }

func (c Circle) Contains(center, point Point) bool {
	return Distance(point, center) <= c.RadiusM
}

func (c Circle) Area() float64 {
	return math.Pi * c.RadiusM * c.RadiusM
}

func (c Circle) WithArea(area float64) Shape {
	return Circle{RadiusM: math.Sqrt(area / math.Pi)}
}

// Rectangle is an axis-aligned rectangular geofence
type Rectangle struct {
	WidthM  float64
	HeightM float64
}

func (r Rectangle) Kind() ShapeKind { return KindRectangle }

// Contains checks the point against a lat/lng bounding box centered on the
// zone. Width runs east-west, height north-south.
func (r Rectangle) Contains(center, point Point) bool {
	latOffset := (r.HeightM / 2) / MetersPerDegreeLat
	lngOffset := (r.WidthM / 2) / (MetersPerDegreeLat * math.Cos(center.Lat*math.Pi/180))

	return point.Lat >= center.Lat-latOffset &&
		point.Lat <= center.Lat+latOffset &&
		point.Lng >= center.Lng-lngOffset &&
		point.Lng <= center.Lng+lngOffset
}

func (r Rectangle) Area() float64 {
	return r.WidthM * r.HeightM
}

func (r Rectangle) WithArea(area float64) Shape {
	ratio := r.WidthM / r.HeightM
	height := math.Sqrt(area / ratio)
	return Rectangle{WidthM: height * ratio, HeightM: height}
}

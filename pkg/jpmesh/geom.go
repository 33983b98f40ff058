// Package jpmesh converts between WGS84 coordinates and Japan's
// Standard Grid Square codes (JIS X 0410 regional mesh), from the
// 80km first-order squares down to the 125m eighth-division meshes,
// including the irregular 5km and 2km variants.
package jpmesh

import (
	"errors"
	"fmt"
)

// ErrOutOfRangeCoordinate is returned for longitudes outside
// [-180,180] or latitudes outside [-90,90].
var ErrOutOfRangeCoordinate = errors.New("jpmesh: coordinate out of WGS84 range")

// Coordinates is a (longitude, latitude) pair in decimal degrees.
type Coordinates struct {
	Lng float64
	Lat float64
}

// NewCoordinates validates the pair against WGS84 bounds.
func NewCoordinates(lng, lat float64) (Coordinates, error) {
	if lng < -180 || lng > 180 {
		return Coordinates{}, fmt.Errorf("%w: lng=%v", ErrOutOfRangeCoordinate, lng)
	}
	if lat < -90 || lat > 90 {
		return Coordinates{}, fmt.Errorf("%w: lat=%v", ErrOutOfRangeCoordinate, lat)
	}
	return Coordinates{Lng: lng, Lat: lat}, nil
}

// BBox is an axis-aligned rectangle in (lng, lat) space.
type BBox struct {
	Min Coordinates
	Max Coordinates
}

func NewBBox(min, max Coordinates) BBox {
	return BBox{Min: min, Max: max}
}

func (b BBox) Center() Coordinates {
	return Coordinates{
		Lng: (b.Min.Lng + b.Max.Lng) / 2,
		Lat: (b.Min.Lat + b.Max.Lat) / 2,
	}
}

// Includes reports whether the coordinate lies inside the box.
// South and west edges are inclusive, north and east exclusive, so
// that adjacent mesh cells partition the plane without overlap.
func (b BBox) Includes(c Coordinates) bool {
	return c.Lat >= b.Min.Lat && c.Lat < b.Max.Lat &&
		c.Lng >= b.Min.Lng && c.Lng < b.Max.Lng
}

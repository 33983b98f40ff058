// Package model defines core domain types shared across the service.
package model

import (
	"fmt"

	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

type BBox struct {
	X1, Y1 float64
	X2, Y2 float64
	SRID   string
}

// String representation matching the wfs/wms bbox query format
func (b BBox) String() string {
	return fmt.Sprintf("%.6f,%.6f,%.6f,%.6f,%s", b.X1, b.Y1, b.X2, b.Y2, b.SRID)
}

type Point struct {
	Lng, Lat float64
}

func (p Point) String() string {
	return fmt.Sprintf("%.6f,%.6f", p.Lng, p.Lat)
}

// Codes is a list of mesh numbers, sorted and unique when produced by
// the mapper.
type Codes []uint64

type QueryRequest struct {
	Layer string
	BBox  *BBox
	Point *Point
	Codes Codes
	Level jpmesh.Level
	// HasLevel marks an explicit level in the request, as opposed to
	// the server default filled in by the handler.
	HasLevel bool
}

// Package jpmeshmapper implements the mapper seam on the Standard
// Grid Square arithmetic in pkg/jpmesh.
package jpmeshmapper

import (
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/jpgrid/meshcache/internal/core/model"
	"github.com/jpgrid/meshcache/internal/core/observability"
	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

type Mapper struct {
	// MaxCells bounds area query fan-out; 0 means unlimited.
	MaxCells int
}

func New(maxCells int) *Mapper { return &Mapper{MaxCells: maxCells} }

// CodesForBBox returns the sorted, de-duplicated mesh numbers of
// every cell at the level intersecting the box.
func (m *Mapper) CodesForBBox(bb model.BBox, lv jpmesh.Level) (model.Codes, error) {
	bounds, err := toBounds(bb)
	if err != nil {
		return nil, err
	}
	if m.MaxCells > 0 {
		if est := estimateCells(bounds, lv); est > m.MaxCells {
			return nil, fmt.Errorf("bbox covers about %d cells at level %s (limit %d)", est, lv, m.MaxCells)
		}
	}

	start := time.Now()
	meshes, err := jpmesh.FromOnBounds(bounds, lv)
	if err != nil {
		return nil, fmt.Errorf("mesh cover: %w", err)
	}

	out := make(model.Codes, 0, len(meshes))
	seen := make(map[uint64]struct{}, len(meshes))
	for _, mesh := range meshes {
		n := mesh.ToNumber()
		if _, ok := seen[n]; ok {
			continue
		}
		seen[n] = struct{}{}
		out = append(out, n)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	observability.ObserveMeshMapping(lv.String(), len(out), time.Since(start).Seconds())
	return out, nil
}

func (m *Mapper) CodeForPoint(pt model.Point, lv jpmesh.Level) (uint64, error) {
	mesh, err := jpmesh.New(jpmesh.Coordinates{Lng: pt.Lng, Lat: pt.Lat}, lv)
	if err != nil {
		return 0, fmt.Errorf("encode point: %w", err)
	}
	return mesh.ToNumber(), nil
}

// ToParent maps a mesh number to its enclosing cell at a coarser
// level, by digit truncation.
func (m *Mapper) ToParent(code uint64, lv, parent jpmesh.Level) (uint64, error) {
	mesh, err := jpmesh.FromNumber(code, lv)
	if err != nil {
		return 0, fmt.Errorf("parse code: %w", err)
	}
	p, err := mesh.Parent(parent)
	if err != nil {
		return 0, err
	}
	return p.ToNumber(), nil
}

// ToChildren maps a mesh number to the sorted cells tiling it at a
// finer level.
func (m *Mapper) ToChildren(code uint64, lv, child jpmesh.Level) (model.Codes, error) {
	mesh, err := jpmesh.FromNumber(code, lv)
	if err != nil {
		return nil, fmt.Errorf("parse code: %w", err)
	}
	kids, err := mesh.Children(child)
	if err != nil {
		return nil, err
	}
	out := make(model.Codes, 0, len(kids))
	for _, k := range kids {
		out = append(out, k.ToNumber())
	}
	return out, nil
}

func toBounds(bb model.BBox) (jpmesh.BBox, error) {
	if bb.X2 <= bb.X1 || bb.Y2 <= bb.Y1 {
		return jpmesh.BBox{}, errors.New("bbox must satisfy x2>x1 and y2>y1")
	}
	min, err := jpmesh.NewCoordinates(bb.X1, bb.Y1)
	if err != nil {
		return jpmesh.BBox{}, err
	}
	max, err := jpmesh.NewCoordinates(bb.X2, bb.Y2)
	if err != nil {
		return jpmesh.BBox{}, err
	}
	return jpmesh.NewBBox(min, max), nil
}

func estimateCells(b jpmesh.BBox, lv jpmesh.Level) int {
	rows := int((b.Max.Lat-b.Min.Lat)/lv.LatInterval()) + 2
	cols := int((b.Max.Lng-b.Min.Lng)/lv.LngInterval()) + 2
	return rows * cols
}

package jpmesh

import (
	"fmt"
	"iter"
	"math"
	"sort"
)

// Cover lazily yields every mesh at the given level whose cell
// intersects the bounding box, south-west first, row by row. The
// sequence is finite, duplicate-free and restartable (pure
// computation from its inputs). Bounds outside the grid's code space
// yield nothing.
func Cover(bounds BBox, lv Level) iter.Seq[Mesh] {
	return func(yield func(Mesh) bool) {
		first, err := New(bounds.Min, lv)
		if err != nil {
			return
		}
		start := first.ToBounds().Center()
		latN := int(math.Ceil((bounds.Max.Lat - bounds.Min.Lat) / lv.LatInterval()))
		lngN := int(math.Ceil((bounds.Max.Lng - bounds.Min.Lng) / lv.LngInterval()))

		for i := 0; i <= latN; i++ {
			for j := 0; j <= lngN; j++ {
				c := Coordinates{
					Lng: start.Lng + float64(j)*lv.LngInterval(),
					Lat: start.Lat + float64(i)*lv.LatInterval(),
				}
				m, err := New(c, lv)
				if err != nil {
					continue // stepped past the grid edge
				}
				if !yield(m) {
					return
				}
			}
		}
	}
}

// FromOnBounds materializes Cover into a slice. The order is
// deterministic but callers should not rely on it.
func FromOnBounds(bounds BBox, lv Level) ([]Mesh, error) {
	if _, err := New(bounds.Min, lv); err != nil {
		return nil, err
	}
	var out []Mesh
	for m := range Cover(bounds, lv) {
		out = append(out, m)
	}
	return out, nil
}

// truncatableTo reports whether a mesh number at src can be reduced
// to dst by dropping trailing digits. Every level shares the six
// leading 80km/10km digits; beyond those, only the binary chain
// levels share their digit positions, so e.g. a 2km mesh has no 1km
// parent by truncation.
func truncatableTo(src, dst Level) bool {
	if src.CodeLength() <= dst.CodeLength() {
		return false
	}
	switch dst {
	case Level80km, Level10km:
		return true
	case Level1km, Level500m, Level250m:
		return binaryChain(src)
	default:
		return false
	}
}

func binaryChain(lv Level) bool {
	switch lv {
	case Level1km, Level500m, Level250m, Level125m:
		return true
	}
	return false
}

// Parent returns the enclosing mesh at a coarser level by digit
// truncation. Requesting the mesh's own level returns it unchanged.
func (m Mesh) Parent(lv Level) (Mesh, error) {
	if !lv.valid() {
		return Mesh{}, fmt.Errorf("jpmesh: unknown level %d", int(lv))
	}
	if lv == m.level {
		return m, nil
	}
	if !truncatableTo(m.level, lv) {
		return Mesh{}, fmt.Errorf("jpmesh: level %s mesh has no %s parent", m.level, lv)
	}
	shift := m.level.CodeLength() - lv.CodeLength()
	return Mesh{level: lv, code: m.code / pow10(shift)}, nil
}

// Children enumerates the meshes at a finer level tiling this cell,
// sorted by mesh number. The finer level's spans must divide this
// level's spans exactly (a 5km cell has no 2km children: their grids
// do not align).
func (m Mesh) Children(lv Level) ([]Mesh, error) {
	if !lv.valid() {
		return nil, fmt.Errorf("jpmesh: unknown level %d", int(lv))
	}
	if lv == m.level {
		return []Mesh{m}, nil
	}
	if !lv.Finer(m.level) {
		return nil, fmt.Errorf("jpmesh: level %s is not finer than %s", lv, m.level)
	}
	rows, ok := spanRatio(m.level.LatInterval(), lv.LatInterval())
	cols, okLng := spanRatio(m.level.LngInterval(), lv.LngInterval())
	if !ok || !okLng {
		return nil, fmt.Errorf("jpmesh: %s cells do not tile a %s cell", lv, m.level)
	}

	b := m.ToBounds()
	out := make([]Mesh, 0, rows*cols)
	for i := 0; i < rows; i++ {
		for j := 0; j < cols; j++ {
			c := Coordinates{
				Lng: b.Min.Lng + (float64(j)+0.5)*lv.LngInterval(),
				Lat: b.Min.Lat + (float64(i)+0.5)*lv.LatInterval(),
			}
			child, err := New(c, lv)
			if err != nil {
				return nil, err
			}
			out = append(out, child)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].code < out[j].code })
	return out, nil
}

// spanRatio returns parent/child if the division is exact.
func spanRatio(parent, child float64) (int, bool) {
	r := parent / child
	n := math.Round(r)
	if math.Abs(r-n) > 1e-9 || n < 1 {
		return 0, false
	}
	return int(n), true
}

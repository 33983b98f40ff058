package jpmesh

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidMeshNumber is returned by FromNumber when a mesh number's
// digit count or digit values do not match the level's encoding.
var ErrInvalidMeshNumber = errors.New("jpmesh: invalid mesh number")

// Mesh is one grid square: a mesh level paired with its mesh number.
//
//	coords := jpmesh.Coordinates{Lng: 139.767125, Lat: 35.681236}
//	m, _ := jpmesh.New(coords, jpmesh.Level1km)
//	m.ToNumber()            // 53394611
//	m.ToBounds().Includes(coords) // true
type Mesh struct {
	level Level
	code  uint64
}

// New encodes a coordinate at the given level. The grid's code space
// starts at latitude 0, longitude 100 and spans 100 first-order cells
// per axis; coordinates outside that domain (which includes anything
// outside WGS84 bounds) are rejected with ErrOutOfRangeCoordinate.
func New(c Coordinates, lv Level) (Mesh, error) {
	if !lv.valid() {
		return Mesh{}, fmt.Errorf("jpmesh: unknown level %d", int(lv))
	}
	if _, err := NewCoordinates(c.Lng, c.Lat); err != nil {
		return Mesh{}, err
	}
	if c.Lat < 0 || c.Lng < lngOrigin {
		return Mesh{}, fmt.Errorf("%w: (%v, %v) is south or west of the grid origin",
			ErrOutOfRangeCoordinate, c.Lng, c.Lat)
	}

	var d []uint8
	switch lv {
	case Level5km:
		d = encode5km(c)
	case Level2km:
		d = encode2km(c)
	default:
		d = standardDigits(c, lv)
	}
	return Mesh{level: lv, code: digitsToNumber(d)}, nil
}

// FromNumber validates a mesh number against the level's digit width
// and per-digit value ranges. It never truncates or pads.
func FromNumber(code uint64, lv Level) (Mesh, error) {
	if !lv.valid() {
		return Mesh{}, fmt.Errorf("jpmesh: unknown level %d", int(lv))
	}
	d, err := numberToDigits(code, lv.CodeLength())
	if err != nil {
		return Mesh{}, err
	}
	if err := validateDigits(d, lv); err != nil {
		return Mesh{}, err
	}
	return Mesh{level: lv, code: code}, nil
}

// Level returns the mesh's granularity.
func (m Mesh) Level() Level { return m.level }

// ToNumber returns the mesh number.
func (m Mesh) ToNumber() uint64 { return m.code }

// ToBounds returns the cell rectangle. South and west edges belong to
// this mesh, north and east to its neighbours (see BBox.Includes).
func (m Mesh) ToBounds() BBox {
	d, _ := numberToDigits(m.code, m.level.CodeLength())
	switch m.level {
	case Level5km:
		return bounds5km(d)
	case Level2km:
		return bounds2km(d)
	default:
		return standardBounds(d, m.level)
	}
}

func digitsToNumber(d []uint8) uint64 {
	var n uint64
	for _, x := range d {
		n = n*10 + uint64(x)
	}
	return n
}

func numberToDigits(code uint64, codeLen int) ([]uint8, error) {
	lo := pow10(codeLen - 1)
	if code < lo || code >= lo*10 {
		return nil, fmt.Errorf("%w: %d has wrong digit count (want %d digits)",
			ErrInvalidMeshNumber, code, codeLen)
	}
	d := make([]uint8, codeLen)
	for i := codeLen - 1; i >= 0; i-- {
		d[i] = uint8(code % 10)
		code /= 10
	}
	return d, nil
}

func validateDigits(d []uint8, lv Level) error {
	bad := func(pos int, why string) error {
		return fmt.Errorf("%w: digit %d %s at level %s", ErrInvalidMeshNumber, pos+1, why, lv)
	}
	if len(d) >= 6 {
		// 10km cells subdivide 8x8
		if d[4] > 7 {
			return bad(4, "must be 0-7")
		}
		if d[5] > 7 {
			return bad(5, "must be 0-7")
		}
	}
	switch lv {
	case Level5km:
		if d[6] < 1 || d[6] > 4 {
			return bad(6, "must be 1-4")
		}
	case Level2km:
		if d[6]%2 != 0 || d[6] > 8 {
			return bad(6, "must be even 0-8")
		}
		if d[7]%2 != 0 || d[7] > 8 {
			return bad(7, "must be even 0-8")
		}
		if d[8] != 5 {
			return bad(8, "must be 5")
		}
	case Level500m, Level250m, Level125m:
		for i := 8; i < len(d); i++ {
			if d[i] < 1 || d[i] > 4 {
				return bad(i, "must be 1-4")
			}
		}
	}
	return nil
}

func pow10(n int) uint64 {
	return uint64(math.Pow10(n))
}

package jpmesh

import "fmt"

// Level identifies one of the supported mesh granularities.
type Level int

const (
	Level80km Level = iota // first-order square
	Level10km              // second-order square
	Level5km               // half square (irregular)
	Level2km               // fifth square (irregular)
	Level1km               // base mesh
	Level500m              // half mesh
	Level250m              // quarter mesh
	Level125m              // eighth mesh
)

// Meshes are indexed from 100 degrees east; the first two code digits
// are latitude*1.5, the next two longitude-100.
const lngOrigin = 100.0

// levelSpec holds the fixed per-level parameters. Spans are kept in
// arc-seconds, matching the tables in the statistics bureau standard;
// every calculator reads spans from here rather than hard-coding them.
type levelSpec struct {
	name    string
	codeLen int   // decimal digits in a full mesh number
	latSec  float64
	lngSec  float64
	parent  Level // immediate coarser level, self for the root
	latDiv  int   // subdivision factor vs parent, per axis
	lngDiv  int
}

var levelSpecs = map[Level]levelSpec{
	Level80km: {"80km", 4, 2400, 3600, Level80km, 1, 1},
	Level10km: {"10km", 6, 300, 450, Level80km, 8, 8},
	Level5km:  {"5km", 7, 150, 225, Level10km, 2, 2},
	Level2km:  {"2km", 9, 60, 90, Level10km, 5, 5},
	Level1km:  {"1km", 8, 30, 45, Level10km, 10, 10},
	Level500m: {"500m", 9, 15, 22.5, Level1km, 2, 2},
	Level250m: {"250m", 10, 7.5, 11.25, Level500m, 2, 2},
	Level125m: {"125m", 11, 3.75, 5.625, Level250m, 2, 2},
}

// Levels lists every supported level, coarse to fine.
func Levels() []Level {
	return []Level{
		Level80km, Level10km, Level5km, Level2km,
		Level1km, Level500m, Level250m, Level125m,
	}
}

// ParseLevel resolves a level from its conventional name ("80km",
// "10km", "5km", "2km", "1km", "500m", "250m", "125m").
func ParseLevel(s string) (Level, error) {
	for lv, spec := range levelSpecs {
		if spec.name == s {
			return lv, nil
		}
	}
	return 0, fmt.Errorf("jpmesh: unknown mesh level %q", s)
}

func (lv Level) valid() bool {
	_, ok := levelSpecs[lv]
	return ok
}

func (lv Level) String() string {
	if spec, ok := levelSpecs[lv]; ok {
		return spec.name
	}
	return fmt.Sprintf("Level(%d)", int(lv))
}

// CodeLength is the number of decimal digits in a mesh number at
// this level.
func (lv Level) CodeLength() int { return levelSpecs[lv].codeLen }

// LatInterval is the latitude span of one cell, in degrees.
func (lv Level) LatInterval() float64 { return levelSpecs[lv].latSec / 3600 }

// LngInterval is the longitude span of one cell, in degrees.
func (lv Level) LngInterval() float64 { return levelSpecs[lv].lngSec / 3600 }

// ParentLevel returns the immediate coarser level and false for the
// root 80km level.
func (lv Level) ParentLevel() (Level, bool) {
	spec := levelSpecs[lv]
	return spec.parent, lv != Level80km
}

// Subdivision returns the per-axis factors by which this level
// subdivides its immediate parent (lat, lng).
func (lv Level) Subdivision() (int, int) {
	spec := levelSpecs[lv]
	return spec.latDiv, spec.lngDiv
}

// Finer reports whether lv subdivides other strictly. Levels are
// ordered by cell area; the irregular 5km and 2km levels sit between
// 10km and 1km.
func (lv Level) Finer(other Level) bool {
	return lv.LatInterval() < other.LatInterval()
}

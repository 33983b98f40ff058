package jpmeshmapper

import (
	"sort"
	"testing"

	"github.com/jpgrid/meshcache/internal/core/model"
	"github.com/jpgrid/meshcache/pkg/jpmesh"
)

func TestCodesForBBox_SortedUnique(t *testing.T) {
	m := New(0)
	bb := model.BBox{X1: 139.70, Y1: 35.60, X2: 139.90, Y2: 35.75, SRID: "EPSG:4326"}

	codes, err := m.CodesForBBox(bb, jpmesh.Level1km)
	if err != nil {
		t.Fatalf("CodesForBBox err: %v", err)
	}
	if len(codes) == 0 {
		t.Fatalf("expected non-empty codes for bbox")
	}
	if !sort.SliceIsSorted(codes, func(i, j int) bool { return codes[i] < codes[j] }) {
		t.Fatalf("codes must be sorted")
	}
	if hasDups(codes) {
		t.Fatalf("codes must be de-duplicated")
	}
}

func TestCodeForPoint_TokyoStation(t *testing.T) {
	m := New(0)
	code, err := m.CodeForPoint(model.Point{Lng: 139.767125, Lat: 35.681236}, jpmesh.Level1km)
	if err != nil {
		t.Fatalf("CodeForPoint err: %v", err)
	}
	if code != 53394611 {
		t.Fatalf("code=%d want 53394611", code)
	}
}

func TestCodesForBBox_RejectsDegenerateAndHugeBoxes(t *testing.T) {
	m := New(100)

	bad := model.BBox{X1: 140, Y1: 36, X2: 139, Y2: 35, SRID: "EPSG:4326"}
	if _, err := m.CodesForBBox(bad, jpmesh.Level1km); err == nil {
		t.Fatalf("expected error for inverted bbox")
	}

	huge := model.BBox{X1: 130, Y1: 30, X2: 145, Y2: 45, SRID: "EPSG:4326"}
	if _, err := m.CodesForBBox(huge, jpmesh.Level125m); err == nil {
		t.Fatalf("expected cell limit error")
	}
}

func TestToParentToChildren(t *testing.T) {
	m := New(0)

	parent, err := m.ToParent(53394611, jpmesh.Level1km, jpmesh.Level10km)
	if err != nil {
		t.Fatalf("ToParent err: %v", err)
	}
	if parent != 533946 {
		t.Fatalf("parent=%d want 533946", parent)
	}

	kids, err := m.ToChildren(53394611, jpmesh.Level1km, jpmesh.Level500m)
	if err != nil {
		t.Fatalf("ToChildren err: %v", err)
	}
	want := model.Codes{533946111, 533946112, 533946113, 533946114}
	if len(kids) != len(want) {
		t.Fatalf("children=%v want %v", kids, want)
	}
	for i := range want {
		if kids[i] != want[i] {
			t.Fatalf("children=%v want %v", kids, want)
		}
	}

	if _, err := m.ToParent(99, jpmesh.Level1km, jpmesh.Level10km); err == nil {
		t.Fatalf("expected error for malformed code")
	}
}

func hasDups(s model.Codes) bool {
	seen := map[uint64]struct{}{}
	for _, v := range s {
		if _, ok := seen[v]; ok {
			return true
		}
		seen[v] = struct{}{}
	}
	return false
}

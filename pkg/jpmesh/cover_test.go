package jpmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromOnBounds_FirstOrderSquares(t *testing.T) {
	bounds := NewBBox(Coordinates{Lng: 139, Lat: 35}, Coordinates{Lng: 140, Lat: 36})

	meshes, err := FromOnBounds(bounds, Level80km)
	require.NoError(t, err)

	got := map[uint64]bool{}
	for _, m := range meshes {
		assert.False(t, got[m.ToNumber()], "duplicate mesh %d", m.ToNumber())
		got[m.ToNumber()] = true
	}
	for _, code := range []uint64{5239, 5339} {
		assert.True(t, got[code], "expected mesh %d in coverage", code)
	}
}

func TestFromOnBounds_AllMeshesIntersect(t *testing.T) {
	bounds := NewBBox(
		Coordinates{Lng: 139.76, Lat: 35.67},
		Coordinates{Lng: 139.78, Lat: 35.69},
	)
	meshes, err := FromOnBounds(bounds, Level1km)
	require.NoError(t, err)
	require.NotEmpty(t, meshes)

	found := false
	for _, m := range meshes {
		if m.ToNumber() == 53394611 {
			found = true
		}
		b := m.ToBounds()
		assert.Less(t, b.Min.Lng, bounds.Max.Lng+m.Level().LngInterval())
		assert.Greater(t, b.Max.Lng, bounds.Min.Lng)
		assert.Greater(t, b.Max.Lat, bounds.Min.Lat)
	}
	assert.True(t, found, "coverage must include the Tokyo Station base mesh")
}

func TestCover_LazyAndRestartable(t *testing.T) {
	bounds := NewBBox(Coordinates{Lng: 139.7, Lat: 35.6}, Coordinates{Lng: 139.8, Lat: 35.7})

	var first uint64
	for m := range Cover(bounds, Level1km) {
		first = m.ToNumber()
		break // early stop must be safe
	}
	require.NotZero(t, first)

	// restarting yields the same sequence head
	for m := range Cover(bounds, Level1km) {
		assert.Equal(t, first, m.ToNumber())
		break
	}
}

func TestFromOnBounds_OutsideGrid(t *testing.T) {
	bounds := NewBBox(Coordinates{Lng: -10, Lat: 35}, Coordinates{Lng: -9, Lat: 36})
	_, err := FromOnBounds(bounds, Level1km)
	assert.ErrorIs(t, err, ErrOutOfRangeCoordinate)

	for range Cover(bounds, Level1km) {
		t.Fatal("cover outside the grid must yield nothing")
	}
}

func TestParent_ByTruncation(t *testing.T) {
	m, err := FromNumber(53394611323, Level125m)
	require.NoError(t, err)

	cases := map[Level]uint64{
		Level250m: 5339461132,
		Level500m: 533946113,
		Level1km:  53394611,
		Level10km: 533946,
		Level80km: 5339,
	}
	for lv, want := range cases {
		p, err := m.Parent(lv)
		require.NoError(t, err, "parent at %s", lv)
		assert.Equal(t, want, p.ToNumber())
		assert.Equal(t, lv, p.Level())
	}

	same, err := m.Parent(Level125m)
	require.NoError(t, err)
	assert.Equal(t, m.ToNumber(), same.ToNumber())
}

func TestParent_IrregularLevels(t *testing.T) {
	five, err := FromNumber(5339461, Level5km)
	require.NoError(t, err)
	p, err := five.Parent(Level10km)
	require.NoError(t, err)
	assert.Equal(t, uint64(533946), p.ToNumber())

	two, err := FromNumber(533946005, Level2km)
	require.NoError(t, err)
	p, err = two.Parent(Level80km)
	require.NoError(t, err)
	assert.Equal(t, uint64(5339), p.ToNumber())

	// 2km codes do not embed a base mesh prefix
	_, err = two.Parent(Level1km)
	assert.Error(t, err)

	// no upward truncation from coarse to fine
	coarse, err := FromNumber(533946, Level10km)
	require.NoError(t, err)
	_, err = coarse.Parent(Level1km)
	assert.Error(t, err)
}

func TestChildren_TileTheParent(t *testing.T) {
	base, err := FromNumber(53394611, Level1km)
	require.NoError(t, err)

	halves, err := base.Children(Level500m)
	require.NoError(t, err)
	require.Len(t, halves, 4)
	assert.Equal(t, []uint64{533946111, 533946112, 533946113, 533946114},
		[]uint64{halves[0].ToNumber(), halves[1].ToNumber(), halves[2].ToNumber(), halves[3].ToNumber()})

	pb := base.ToBounds()
	for _, c := range halves {
		assert.True(t, pb.Includes(c.ToBounds().Center()))
		p, err := c.Parent(Level1km)
		require.NoError(t, err)
		assert.Equal(t, base.ToNumber(), p.ToNumber())
	}

	second, err := FromNumber(533946, Level10km)
	require.NoError(t, err)
	kids, err := second.Children(Level1km)
	require.NoError(t, err)
	assert.Len(t, kids, 100)
}

func TestChildren_MisalignedGrids(t *testing.T) {
	five, err := FromNumber(5339461, Level5km)
	require.NoError(t, err)
	_, err = five.Children(Level2km)
	assert.Error(t, err)

	base, err := FromNumber(53394611, Level1km)
	require.NoError(t, err)
	_, err = base.Children(Level10km)
	assert.Error(t, err)
}

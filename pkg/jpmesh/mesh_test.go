package jpmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// small offset nudging a cell corner strictly inside the cell
const innerOffset = 0.000003

var tokyo = Coordinates{Lng: 139.767125, Lat: 35.681236} // Tokyo Station

func TestNew_TokyoStationAllLevels(t *testing.T) {
	want := map[Level]uint64{
		Level80km: 5339,
		Level10km: 533946,
		Level5km:  5339461,
		Level2km:  533946005,
		Level1km:  53394611,
		Level500m: 533946113,
		Level250m: 5339461132,
		Level125m: 53394611323,
	}
	for lv, code := range want {
		m, err := New(tokyo, lv)
		require.NoError(t, err, "level %s", lv)
		assert.Equal(t, code, m.ToNumber(), "level %s", lv)
		assert.Equal(t, lv, m.Level())
	}
}

func TestNew_BaseMeshReferencePoints(t *testing.T) {
	cases := []struct {
		code       uint64
		southWest  Coordinates
	}{
		{64414277, Coordinates{Lng: 141.3375, Lat: 43.058333}}, // Sapporo
		{61401589, Coordinates{Lng: 140.7375, Lat: 40.816667}}, // Aomori
		{59414142, Coordinates{Lng: 141.15, Lat: 39.7}},        // Morioka
		{57403629, Coordinates{Lng: 140.8625, Lat: 38.266667}}, // Sendai
	}
	for _, tc := range cases {
		inner := Coordinates{Lng: tc.southWest.Lng + innerOffset, Lat: tc.southWest.Lat + innerOffset}
		m, err := New(inner, Level1km)
		require.NoError(t, err)
		assert.Equal(t, tc.code, m.ToNumber())

		b := m.ToBounds()
		assert.InDelta(t, tc.southWest.Lng, b.Min.Lng, 1e-6)
		assert.InDelta(t, tc.southWest.Lat, b.Min.Lat, 1e-6)
		assert.InDelta(t, 45.0/3600, b.Max.Lng-b.Min.Lng, 1e-9)
		assert.InDelta(t, 30.0/3600, b.Max.Lat-b.Min.Lat, 1e-9)
	}
}

func TestNew_ExactCellCorner(t *testing.T) {
	// a coordinate on a cell's south-west corner belongs to that cell
	m, err := New(Coordinates{Lng: 141.15, Lat: 39.7}, Level1km)
	require.NoError(t, err)

	b := m.ToBounds()
	assert.InDelta(t, 141.15, b.Min.Lng, 1e-6)
	assert.InDelta(t, 39.7, b.Min.Lat, 1e-6)
}

func TestNew_RejectsCoordinatesOutsideGrid(t *testing.T) {
	_, err := New(Coordinates{Lng: 139, Lat: -5}, Level1km)
	assert.ErrorIs(t, err, ErrOutOfRangeCoordinate)

	_, err = New(Coordinates{Lng: 99.9, Lat: 35}, Level1km)
	assert.ErrorIs(t, err, ErrOutOfRangeCoordinate)

	_, err = New(Coordinates{Lng: 200, Lat: 35}, Level1km)
	assert.ErrorIs(t, err, ErrOutOfRangeCoordinate)
}

func TestToBounds_Containment(t *testing.T) {
	for _, lv := range Levels() {
		m, err := New(tokyo, lv)
		require.NoError(t, err)
		assert.True(t, m.ToBounds().Includes(tokyo), "level %s bounds must contain the source point", lv)
	}
}

func TestToBounds_SpanMatchesLevel(t *testing.T) {
	for _, lv := range Levels() {
		m, err := New(tokyo, lv)
		require.NoError(t, err)
		b := m.ToBounds()
		assert.InDelta(t, lv.LatInterval(), b.Max.Lat-b.Min.Lat, 1e-9, "level %s", lv)
		assert.InDelta(t, lv.LngInterval(), b.Max.Lng-b.Min.Lng, 1e-9, "level %s", lv)
	}
}

func TestFromNumber_RoundTrip(t *testing.T) {
	codes := map[Level]uint64{
		Level80km: 5339,
		Level10km: 533946,
		Level5km:  5339461,
		Level2km:  533946005,
		Level1km:  53394611,
		Level500m: 533946113,
		Level250m: 5339461132,
		Level125m: 53394611323,
	}
	for lv, code := range codes {
		m, err := FromNumber(code, lv)
		require.NoError(t, err, "level %s", lv)
		assert.Equal(t, code, m.ToNumber())

		// decode, then re-encode a point just inside the south-west
		// corner: must land in the same cell
		sw := m.ToBounds().Min
		again, err := New(Coordinates{Lng: sw.Lng + 1e-9, Lat: sw.Lat + 1e-9}, lv)
		require.NoError(t, err)
		assert.Equal(t, code, again.ToNumber(), "level %s round trip", lv)
	}
}

func TestFromNumber_Invalid(t *testing.T) {
	cases := []struct {
		name string
		code uint64
		lv   Level
	}{
		{"too few digits", 5339461, Level1km},
		{"too many digits", 533946112, Level1km},
		{"second order lat index over 7", 53398611, Level1km},
		{"second order lng index over 7", 53394811, Level1km},
		{"half mesh digit zero", 533946110, Level500m},
		{"half mesh digit over 4", 533946115, Level500m},
		{"quarter mesh digit over 4", 5339461135, Level250m},
		{"5km quadrant zero", 5339460, Level5km},
		{"5km quadrant over 4", 5339465, Level5km},
		{"2km odd lat digit", 533946105, Level2km},
		{"2km odd lng digit", 533946015, Level2km},
		{"2km trailing digit not 5", 533946004, Level2km},
	}
	for _, tc := range cases {
		_, err := FromNumber(tc.code, tc.lv)
		assert.ErrorIs(t, err, ErrInvalidMeshNumber, tc.name)
	}
}

func TestHierarchy_FinerBoundsNestInCoarser(t *testing.T) {
	levels := Levels()
	for i := 1; i < len(levels); i++ {
		fine, err := New(tokyo, levels[i])
		require.NoError(t, err)
		coarse, err := New(tokyo, levels[i-1])
		require.NoError(t, err)

		fb, cb := fine.ToBounds(), coarse.ToBounds()
		assert.GreaterOrEqual(t, fb.Min.Lat+1e-9, cb.Min.Lat, "%s in %s", levels[i], levels[i-1])
		assert.GreaterOrEqual(t, fb.Min.Lng+1e-9, cb.Min.Lng, "%s in %s", levels[i], levels[i-1])
		assert.LessOrEqual(t, fb.Max.Lat-1e-9, cb.Max.Lat, "%s in %s", levels[i], levels[i-1])
		assert.LessOrEqual(t, fb.Max.Lng-1e-9, cb.Max.Lng, "%s in %s", levels[i], levels[i-1])
	}
}

func TestPartition_AdjacentCellsShareEdgesOnly(t *testing.T) {
	m, err := FromNumber(53394611, Level1km)
	require.NoError(t, err)
	east, err := FromNumber(53394612, Level1km)
	require.NoError(t, err)

	mb, eb := m.ToBounds(), east.ToBounds()
	assert.InDelta(t, mb.Max.Lng, eb.Min.Lng, 1e-9)

	// the shared edge belongs to the eastern cell only
	edge := Coordinates{Lng: eb.Min.Lng, Lat: mb.Min.Lat + m.Level().LatInterval()/2}
	assert.False(t, mb.Includes(edge))
	assert.True(t, eb.Includes(edge))
}

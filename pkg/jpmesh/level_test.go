package jpmesh

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestLevel_Registry(t *testing.T) {
	assert.Equal(t, 4, Level80km.CodeLength())
	assert.Equal(t, 6, Level10km.CodeLength())
	assert.Equal(t, 7, Level5km.CodeLength())
	assert.Equal(t, 9, Level2km.CodeLength())
	assert.Equal(t, 8, Level1km.CodeLength())
	assert.Equal(t, 9, Level500m.CodeLength())
	assert.Equal(t, 10, Level250m.CodeLength())
	assert.Equal(t, 11, Level125m.CodeLength())

	// spans in arc seconds
	assert.InDelta(t, 2400.0, Level80km.LatInterval()*3600, 1e-9)
	assert.InDelta(t, 3600.0, Level80km.LngInterval()*3600, 1e-9)
	assert.InDelta(t, 30.0, Level1km.LatInterval()*3600, 1e-9)
	assert.InDelta(t, 45.0, Level1km.LngInterval()*3600, 1e-9)
	assert.InDelta(t, 3.75, Level125m.LatInterval()*3600, 1e-9)
	assert.InDelta(t, 5.625, Level125m.LngInterval()*3600, 1e-9)
}

func TestLevel_SubdivisionAgreesWithSpans(t *testing.T) {
	for _, lv := range Levels() {
		parent, ok := lv.ParentLevel()
		if !ok {
			continue
		}
		latDiv, lngDiv := lv.Subdivision()
		assert.InDelta(t, parent.LatInterval()/float64(latDiv), lv.LatInterval(), 1e-12, "lat span of %s", lv)
		assert.InDelta(t, parent.LngInterval()/float64(lngDiv), lv.LngInterval(), 1e-12, "lng span of %s", lv)
	}
}

func TestParseLevel(t *testing.T) {
	for _, lv := range Levels() {
		got, err := ParseLevel(lv.String())
		assert.NoError(t, err)
		assert.Equal(t, lv, got)
	}

	_, err := ParseLevel("3km")
	assert.Error(t, err)
}

func TestLevel_Finer(t *testing.T) {
	order := Levels() // coarse to fine
	for i := 1; i < len(order); i++ {
		assert.True(t, order[i].Finer(order[i-1]), "%s finer than %s", order[i], order[i-1])
	}
}

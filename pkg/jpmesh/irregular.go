package jpmesh

// The 5km and 2km levels do not follow the binary subdivision chain.
// Both derive directly from the 10km cell's fractional offset with
// their own digit conventions, but satisfy the same round-trip and
// partition contract as the hierarchical levels.

// encode5km appends a single quadrant digit (1=SW 2=SE 3=NW 4=NE) to
// the six-digit 10km code.
func encode5km(c Coordinates) []uint8 {
	d, latRem, lngRem := digitsThrough10km(c)
	r, _ := cellIndex(latRem, Level5km.LatInterval())
	w, _ := cellIndex(lngRem, Level5km.LngInterval())
	return append(d, r*2+w+1)
}

func bounds5km(d []uint8) BBox {
	base := standardBounds(d[:6], Level10km)
	quad := d[6] - 1
	min := Coordinates{
		Lng: base.Min.Lng + float64(quad%2)*Level5km.LngInterval(),
		Lat: base.Min.Lat + float64(quad/2)*Level5km.LatInterval(),
	}
	max := Coordinates{
		Lng: min.Lng + Level5km.LngInterval(),
		Lat: min.Lat + Level5km.LatInterval(),
	}
	return BBox{Min: min, Max: max}
}

// encode2km subdivides the 10km cell 5x5 and stores the doubled cell
// indices followed by a literal digit 5, per the standard's 2km code
// convention.
func encode2km(c Coordinates) []uint8 {
	d, latRem, lngRem := digitsThrough10km(c)
	r, _ := cellIndex(latRem, Level2km.LatInterval())
	w, _ := cellIndex(lngRem, Level2km.LngInterval())
	return append(d, r*2, w*2, 5)
}

func bounds2km(d []uint8) BBox {
	base := standardBounds(d[:6], Level10km)
	min := Coordinates{
		Lng: base.Min.Lng + float64(d[7]/2)*Level2km.LngInterval(),
		Lat: base.Min.Lat + float64(d[6]/2)*Level2km.LatInterval(),
	}
	max := Coordinates{
		Lng: min.Lng + Level2km.LngInterval(),
		Lat: min.Lat + Level2km.LatInterval(),
	}
	return BBox{Min: min, Max: max}
}

package jpmesh

import "math"

// cellIndex floors offset into cells of the given span and returns
// the cell index together with the residual offset inside that cell.
// Flooring keeps a coordinate sitting exactly on a cell's south or
// west boundary inside that cell, not its neighbour.
func cellIndex(offset, span float64) (uint8, float64) {
	return uint8(math.Floor(offset / span)), math.Mod(offset, span)
}

// digitsThrough10km computes the six leading digits shared by every
// mesh level: two latitude digits (lat / 80km span), two longitude
// digits (lng - 100), then the 8x8 second-order cell indices. The
// residual offsets within the 10km cell are returned for the finer
// levels to subdivide.
func digitsThrough10km(c Coordinates) (d []uint8, latRem, lngRem float64) {
	p := int(math.Floor(c.Lat / Level80km.LatInterval()))
	latRem = math.Mod(c.Lat, Level80km.LatInterval())
	u := int(math.Floor(c.Lng - lngOrigin))
	lngRem = c.Lng - lngOrigin - float64(u)

	d = []uint8{uint8(p / 10 % 10), uint8(p % 10), uint8(u / 10 % 10), uint8(u % 10)}

	var q, v uint8
	q, latRem = cellIndex(latRem, Level10km.LatInterval())
	v, lngRem = cellIndex(lngRem, Level10km.LngInterval())
	d = append(d, q, v)
	return d, latRem, lngRem
}

// standardDigits encodes a coordinate along the hierarchical chain
// 80km -> 10km -> 1km -> 500m -> 250m -> 125m. Each half division
// appends one quadrant digit: 1=SW 2=SE 3=NW 4=NE.
func standardDigits(c Coordinates, lv Level) []uint8 {
	d, latRem, lngRem := digitsThrough10km(c)
	switch lv {
	case Level80km:
		return d[:4]
	case Level10km:
		return d
	}

	var r, w uint8
	r, latRem = cellIndex(latRem, Level1km.LatInterval())
	w, lngRem = cellIndex(lngRem, Level1km.LngInterval())
	d = append(d, r, w)
	if lv == Level1km {
		return d
	}

	for _, half := range []Level{Level500m, Level250m, Level125m} {
		var s, x uint8
		s, latRem = cellIndex(latRem, half.LatInterval())
		x, lngRem = cellIndex(lngRem, half.LngInterval())
		d = append(d, s*2+x+1)
		if lv == half {
			return d
		}
	}
	return d
}

// standardBounds reconstructs the cell rectangle from a standard
// chain digit sequence. The south-west corner is the sum of the per
// level offsets; the north-east corner is one span further.
func standardBounds(d []uint8, lv Level) BBox {
	lat := (float64(d[0])*10 + float64(d[1])) * Level80km.LatInterval()
	lng := lngOrigin + float64(d[2])*10 + float64(d[3])
	if len(d) >= 6 {
		lat += float64(d[4]) * Level10km.LatInterval()
		lng += float64(d[5]) * Level10km.LngInterval()
	}
	if len(d) >= 8 {
		lat += float64(d[6]) * Level1km.LatInterval()
		lng += float64(d[7]) * Level1km.LngInterval()
	}
	for i, half := range []Level{Level500m, Level250m, Level125m} {
		if len(d) <= 8+i {
			break
		}
		quad := d[8+i] - 1
		lat += float64(quad/2) * half.LatInterval()
		lng += float64(quad%2) * half.LngInterval()
	}
	min := Coordinates{Lng: lng, Lat: lat}
	max := Coordinates{Lng: lng + lv.LngInterval(), Lat: lat + lv.LatInterval()}
	return BBox{Min: min, Max: max}
}

package geo

import "github.com/paulmach/orb"

// LatLonBounds is [[minLat, minLon], [maxLat, maxLon]], or empty when
// nothing polygonal was seen. The pair order matches web map fitBounds calls.
type LatLonBounds [][2]float64

// Empty reports whether the bounds hold no box.
func (b LatLonBounds) Empty() bool {
	return len(b) == 0
}

// Bound converts back to an orb.Bound in (lon, lat) order.
func (b LatLonBounds) Bound() orb.Bound {
	if b.Empty() {
		return orb.Bound{}
	}

	return orb.Bound{
		Min: orb.Point{b[0][1], b[0][0]},
		Max: orb.Point{b[1][1], b[1][0]},
	}
}

// ComputeBounds returns the minimal box over every point of every ring
// (outer boundaries and holes) of every polygonal feature.
func ComputeBounds(features []Feature) LatLonBounds {
	var (
		bound orb.Bound
		seen  bool
	)

	for _, f := range features {
		for _, part := range ExtractParts(f.Geometry) {
			for _, ring := range part.Rings() {
				for _, pt := range ring {
					if !seen {
						bound = orb.Bound{Min: pt, Max: pt}
						seen = true
						continue
					}
					bound = bound.Extend(pt)
				}
			}
		}
	}

	if !seen {
		return LatLonBounds{}
	}

	return LatLonBounds{
		{bound.Min.Lat(), bound.Min.Lon()},
		{bound.Max.Lat(), bound.Max.Lon()},
	}
}

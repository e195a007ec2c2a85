package geo

import "github.com/paulmach/orb"

// Ring is an ordered sequence of (lon, lat) points.
type Ring = orb.Ring

// Polygon is one polygon part: an outer boundary plus optional holes.
type Polygon struct {
	Outer Ring
	Holes []Ring
}

// Rings returns the outer ring followed by the holes.
func (p Polygon) Rings() []Ring {
	rings := make([]Ring, 0, 1+len(p.Holes))
	rings = append(rings, p.Outer)
	return append(rings, p.Holes...)
}

// CloseRing returns r with its first point appended when the ring is open.
// A closed or empty ring is returned unchanged and r is never modified.
func CloseRing(r Ring) Ring {
	if len(r) == 0 || r[0] == r[len(r)-1] {
		return r
	}

	closed := make(Ring, len(r), len(r)+1)
	copy(closed, r)

	return append(closed, r[0])
}

// Orient returns the ring closed and wound in the wanted direction,
// reversing a copy when needed. Degenerate rings keep their order.
func Orient(r Ring, want orb.Orientation) Ring {
	r = CloseRing(r)
	if len(r) < 4 {
		return r
	}

	if o := r.Orientation(); o != 0 && o != want {
		r = r.Clone()
		r.Reverse()
	}

	return r
}

// ExtractParts splits a geometry into polygon parts.
// Unsupported geometries yield no parts. Polygons without an outer ring, or
// with an empty one, are skipped and empty holes are dropped.
func ExtractParts(g Geometry) []Polygon {
	switch g.Kind {
	case KindPolygon:
		return appendPart(nil, g.Polygon)
	case KindMultiPolygon:
		parts := make([]Polygon, 0, len(g.MultiPolygon))
		for _, poly := range g.MultiPolygon {
			parts = appendPart(parts, poly)
		}
		return parts
	default:
		return nil
	}
}

func appendPart(parts []Polygon, poly orb.Polygon) []Polygon {
	if len(poly) == 0 || len(poly[0]) == 0 {
		return parts
	}

	holes := poly[1:]
	for _, h := range holes {
		if len(h) == 0 {
			holes = nonEmpty(holes)
			break
		}
	}

	return append(parts, Polygon{Outer: poly[0], Holes: holes})
}

func nonEmpty(rings []orb.Ring) []Ring {
	out := make([]Ring, 0, len(rings))
	for _, r := range rings {
		if len(r) > 0 {
			out = append(out, r)
		}
	}

	return out
}

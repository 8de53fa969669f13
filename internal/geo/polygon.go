package geo

import (
	"math"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// CloseRing returns ring with the first point appended when the last point
// differs from it. The input slice is never modified.
func CloseRing(ring orb.Ring) orb.Ring {
	if len(ring) == 0 || ring[0] == ring[len(ring)-1] {
		return ring
	}
	out := make(orb.Ring, len(ring), len(ring)+1)
	copy(out, ring)
	return append(out, ring[0])
}

// Centroid returns the area-weighted centroid of a simple ring in a planar
// CRS. The ring is closed first if needed.
func Centroid(ring orb.Ring) (orb.Point, error) {
	if n := distinctPoints(ring); n < 3 {
		return orb.Point{}, domain.InputErrorf("centroid: ring has %d distinct points, need 3", n)
	}

	// Grid coordinates are ~1e5..1e6; work relative to the first vertex.
	origin := ring[0]
	local := make(orb.Ring, len(ring))
	for i, p := range ring {
		local[i] = orb.Point{p[0] - origin[0], p[1] - origin[1]}
	}

	lc, area := planar.CentroidArea(orb.Polygon{CloseRing(local)})
	if area == 0 || math.IsNaN(area) {
		return orb.Point{}, domain.InputErrorf("centroid: ring of %d points encloses no area", len(ring))
	}
	c := orb.Point{lc[0] + origin[0], lc[1] + origin[1]}
	if !finite(c) {
		return orb.Point{}, domain.CoordinateErrorf("centroid: non-finite result (%v, %v)", c[0], c[1])
	}
	return c, nil
}

// Contains reports whether p lies inside ring or on its boundary, using the
// even-odd rule. The ring is closed first if needed.
func Contains(ring orb.Ring, p orb.Point) bool {
	if len(ring) < 3 {
		return false
	}
	return planar.RingContains(CloseRing(ring), p)
}

func distinctPoints(ring orb.Ring) int {
	seen := make(map[orb.Point]struct{}, len(ring))
	for _, p := range ring {
		seen[p] = struct{}{}
	}
	return len(seen)
}

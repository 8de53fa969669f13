package geo

import (
	"fmt"
	"math"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/wroge/wgs84"
)

// CRS identifies one of the coordinate reference systems this service speaks.
type CRS int

const (
	// WGS84 is geographic longitude/latitude; X is longitude, Y is latitude.
	WGS84 CRS = iota
	// GridA is EPSG:2180 (PUWG 1992), used by ULDK and UUG.
	// +proj=tmerc +lat_0=0 +lon_0=19 +k=0.9993 +x_0=500000 +y_0=-5300000 +ellps=GRS80
	GridA
	// GridB is EPSG:2177 (PUWG 2000 zone 6), used by the catchment dataset.
	// +proj=tmerc +lat_0=0 +lon_0=18 +k=0.999923 +x_0=6500000 +y_0=0 +ellps=GRS80
	GridB
)

func (c CRS) String() string {
	switch c {
	case WGS84:
		return "WGS84"
	case GridA:
		return "EPSG:2180"
	case GridB:
		return "EPSG:2177"
	default:
		return fmt.Sprintf("CRS(%d)", int(c))
	}
}

type spheroid struct {
	a, fi float64
}

func (s spheroid) A() float64  { return s.a }
func (s spheroid) Fi() float64 { return s.fi }

// grs80 is the ellipsoid of both Polish grids. ETRS89 and WGS84 coincide at
// the precision of these grids, so no datum shift is applied and geographic
// coordinates are taken on GRS80 directly.
var grs80 = wgs84.Datum{
	Spheroid: spheroid{a: 6378137, fi: 298.257222101},
	Area: wgs84.AreaFunc(func(lon, lat float64) bool {
		return lon >= 13.0 && lon <= 25.0 && lat >= 48.0 && lat <= 56.0
	}),
}

var (
	gridA = wgs84.ProjectedReferenceSystem{
		Datum:      grs80,
		Projection: newTransverseMercator(grs80, 19, 0, 0.9993, 500000, -5300000),
	}
	gridB = wgs84.ProjectedReferenceSystem{
		Datum:      grs80,
		Projection: newTransverseMercator(grs80, 18, 0, 0.999923, 6500000, 0),
	}
	lonLat = grs80.LonLat()
)

// transforms holds every supported directed pair. Built once; the funcs are
// pure so they are shared by all goroutines.
var transforms = map[[2]CRS]func(a, b, c float64) (a2, b2, c2 float64){
	{WGS84, GridA}: wgs84.Transform(lonLat, gridA),
	{GridA, WGS84}: wgs84.Transform(gridA, lonLat),
	{WGS84, GridB}: wgs84.Transform(lonLat, gridB),
	{GridB, WGS84}: wgs84.Transform(gridB, lonLat),
	{GridA, GridB}: wgs84.Transform(gridA, gridB),
	{GridB, GridA}: wgs84.Transform(gridB, gridA),
}

// Transform converts p from one CRS to another. Points are (x, y); for WGS84
// that is (longitude, latitude).
func Transform(p orb.Point, from, to CRS) (orb.Point, error) {
	if !finite(p) {
		return orb.Point{}, domain.CoordinateErrorf("transform %s -> %s: non-finite input (%v, %v)", from, to, p[0], p[1])
	}
	if from == to {
		return p, nil
	}
	fn, ok := transforms[[2]CRS{from, to}]
	if !ok {
		return orb.Point{}, fmt.Errorf("transform %s -> %s: unsupported", from, to)
	}
	x, y, _ := fn(p[0], p[1], 0)
	out := orb.Point{x, y}
	if !finite(out) {
		return orb.Point{}, domain.CoordinateErrorf("transform %s -> %s: (%v, %v) has no finite image", from, to, p[0], p[1])
	}
	return out, nil
}

// FromLatLng projects a WGS84 position into the target grid.
func FromLatLng(ll domain.LatLng, to CRS) (orb.Point, error) {
	return Transform(orb.Point{ll.Lng, ll.Lat}, WGS84, to)
}

// ToLatLng unprojects a grid point into WGS84.
func ToLatLng(p orb.Point, from CRS) (domain.LatLng, error) {
	out, err := Transform(p, from, WGS84)
	if err != nil {
		return domain.LatLng{}, err
	}
	return domain.LatLng{Lat: out[1], Lng: out[0]}, nil
}

func finite(p orb.Point) bool {
	for _, v := range p {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

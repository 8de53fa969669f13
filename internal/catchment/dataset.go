package catchment

import (
	"strings"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// GeoJSON property names used by the zlewnie_kd dataset.
const (
	propName       = "nazwa_zlewni"
	propOverloaded = "przeciazona"
	overloadedFlag = "TAK"
)

// Feature is one catchment polygon in EPSG:2177. A MultiPolygon contributes
// one outer ring per member; holes are not kept.
type Feature struct {
	Name  string
	Flag  string
	Rings []orb.Ring
}

// Contains reports whether p (EPSG:2177) lies inside or on any outer ring.
func (f Feature) Contains(p orb.Point) bool {
	for _, r := range f.Rings {
		if geo.Contains(r, p) {
			return true
		}
	}
	return false
}

// Catchment converts the feature's properties to the public record.
func (f Feature) Catchment() *domain.Catchment {
	return &domain.Catchment{
		Name:       DisplayName(f.Name),
		Overloaded: f.Flag == overloadedFlag,
	}
}

// Dataset is the read-only, ordered catchment collection.
type Dataset struct {
	Features []Feature
	// Skipped counts features without polygonal geometry.
	Skipped int
}

// ParseDataset decodes a GeoJSON FeatureCollection, keeping feature order.
func ParseDataset(data []byte) (*Dataset, error) {
	fc, err := geojson.UnmarshalFeatureCollection(data)
	if err != nil {
		return nil, domain.WrapParse(err, "decode catchment dataset")
	}

	ds := &Dataset{Features: make([]Feature, 0, len(fc.Features))}
	for _, f := range fc.Features {
		rings := outerRings(f.Geometry)
		if len(rings) == 0 {
			ds.Skipped++
			continue
		}
		ds.Features = append(ds.Features, Feature{
			Name:  f.Properties.MustString(propName, ""),
			Flag:  f.Properties.MustString(propOverloaded, ""),
			Rings: rings,
		})
	}

	if len(ds.Features) == 0 && len(fc.Features) > 0 {
		return nil, domain.ParseErrorf("catchment dataset: none of %d features is a polygon", len(fc.Features))
	}
	return ds, nil
}

// Find returns the first feature containing p, or nil.
func (d *Dataset) Find(p orb.Point) *Feature {
	for i := range d.Features {
		if d.Features[i].Contains(p) {
			return &d.Features[i]
		}
	}
	return nil
}

func outerRings(g orb.Geometry) []orb.Ring {
	switch g := g.(type) {
	case orb.Polygon:
		if len(g) == 0 {
			return nil
		}
		return []orb.Ring{g[0]}
	case orb.MultiPolygon:
		rings := make([]orb.Ring, 0, len(g))
		for _, poly := range g {
			if len(poly) > 0 {
				rings = append(rings, poly[0])
			}
		}
		return rings
	default:
		return nil
	}
}

// DisplayName strips a trailing bracketed tag: "Name [1]" becomes "Name". A
// name that is nothing but a tag is kept as is rather than emptied.
func DisplayName(name string) string {
	trimmed := strings.TrimSpace(name)
	if !strings.HasSuffix(trimmed, "]") {
		return trimmed
	}
	open := strings.LastIndexByte(trimmed, '[')
	if open <= 0 {
		return trimmed
	}
	return strings.TrimSpace(trimmed[:open])
}

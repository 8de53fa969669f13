package geo

import (
	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// ParcelFeature renders a parcel as a GeoJSON Feature: a closed ring in
// lng/lat order, with the textual fields and centroid as properties.
func ParcelFeature(p domain.Parcel) *geojson.Feature {
	ring := make(orb.Ring, len(p.Boundary))
	for i, ll := range p.Boundary {
		ring[i] = orb.Point{ll.Lng, ll.Lat}
	}

	f := geojson.NewFeature(orb.Polygon{CloseRing(ring)})
	f.ID = p.ID
	f.Properties["id"] = p.ID
	f.Properties["voivodeship"] = p.Voivodeship
	f.Properties["county"] = p.County
	f.Properties["commune"] = p.Commune
	f.Properties["region"] = p.Region
	f.Properties["parcel"] = p.Number
	f.Properties["centroid"] = p.Centroid
	return f
}

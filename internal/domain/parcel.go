package domain

import "time"

// LatLng is a WGS-84 latitude/longitude coordinate pair.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Parcel is a cadastral land unit resolved from ULDK.
// Boundary keeps the vertex order returned by the registry and is not closed.
type Parcel struct {
	ID          string   `json:"id"`
	Voivodeship string   `json:"voivodeship"`
	County      string   `json:"county"`
	Commune     string   `json:"commune"`
	Region      string   `json:"region"`
	Number      string   `json:"parcel"`
	Boundary    []LatLng `json:"boundary"`
	Centroid    LatLng   `json:"centroid"`
}

// AddressResult is a geocoded free-text address.
type AddressResult struct {
	Lat     float64 `json:"lat"`
	Lng     float64 `json:"lng"`
	Address string  `json:"address"`
}

// Catchment is the stormwater catchment containing a point.
type Catchment struct {
	Name       string `json:"name"`
	Overloaded bool   `json:"overloaded"`
}

// LookupKind names the lookup that produced a LookupEvent.
type LookupKind string

const (
	LookupParcelByID    LookupKind = "parcel_by_id"
	LookupParcelByPoint LookupKind = "parcel_by_point"
	LookupAddress       LookupKind = "address"
	LookupCatchment     LookupKind = "catchment"
)

// LookupEvent records one successful lookup for downstream consumers.
type LookupEvent struct {
	Kind       LookupKind `json:"kind"`
	Query      string     `json:"query"`
	Result     any        `json:"result"`
	ResolvedAt time.Time  `json:"resolved_at"`
}

// NewLookupEvent stamps a lookup result with the package clock.
func NewLookupEvent(kind LookupKind, query string, result any) LookupEvent {
	return LookupEvent{
		Kind:       kind,
		Query:      query,
		Result:     result,
		ResolvedAt: clock.Now().UTC(),
	}
}

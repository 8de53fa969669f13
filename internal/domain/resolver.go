package domain

import "context"

// ParcelResolver looks up cadastral parcels.
type ParcelResolver interface {
	// ResolveByID fetches the parcel with the given TERYT identifier,
	// e.g. "306401_1.0021.AR_12.19/1".
	ResolveByID(ctx context.Context, id string) (Parcel, error)

	// ResolveByPoint fetches the parcel under a WGS84 position.
	ResolveByPoint(ctx context.Context, lat, lng float64) (Parcel, error)
}

// AddressResolver geocodes free-text addresses.
type AddressResolver interface {
	Resolve(ctx context.Context, address string) (AddressResult, error)
}

// CatchmentLocator finds the catchment containing a WGS84 position.
// It never fails: a nil result means "no catchment" or "lookup unavailable".
type CatchmentLocator interface {
	Locate(ctx context.Context, lat, lng float64) *Catchment
}

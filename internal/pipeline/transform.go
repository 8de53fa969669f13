package pipeline

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
)

// Kind selects how a batch query is interpreted.
type Kind string

const (
	KindParcel    Kind = "parcel"    // TERYT identifier
	KindPoint     Kind = "point"     // "lat,lng", resolved to a parcel
	KindAddress   Kind = "address"   // free text
	KindCatchment Kind = "catchment" // "lat,lng"
)

// Lookups is the subset of the lookup service a batch needs.
type Lookups interface {
	ParcelByID(ctx context.Context, id string) (domain.Parcel, error)
	ParcelByPoint(ctx context.Context, lat, lng float64) (domain.Parcel, error)
	Address(ctx context.Context, address string) (domain.AddressResult, error)
	Catchment(ctx context.Context, lat, lng float64) *domain.Catchment
}

// LookupTransformer resolves every request with the same Kind.
type LookupTransformer struct {
	svc  Lookups
	kind Kind
}

// NewTransformer creates a LookupTransformer for kind.
func NewTransformer(svc Lookups, kind Kind) (*LookupTransformer, error) {
	switch kind {
	case KindParcel, KindPoint, KindAddress, KindCatchment:
		return &LookupTransformer{svc: svc, kind: kind}, nil
	default:
		return nil, fmt.Errorf("unknown batch kind %q (parcel|point|address|catchment)", kind)
	}
}

func (t *LookupTransformer) Transform(ctx context.Context, req Request) (any, error) {
	switch t.kind {
	case KindParcel:
		return t.svc.ParcelByID(ctx, req.Query)
	case KindAddress:
		return t.svc.Address(ctx, req.Query)
	}

	lat, lng, err := parseLatLng(req.Query)
	if err != nil {
		return nil, err
	}
	if t.kind == KindPoint {
		return t.svc.ParcelByPoint(ctx, lat, lng)
	}
	return t.svc.Catchment(ctx, lat, lng), nil
}

func parseLatLng(s string) (lat, lng float64, err error) {
	a, b, ok := strings.Cut(s, ",")
	if !ok {
		return 0, 0, domain.InputErrorf("position %q is not lat,lng", s)
	}
	lat, err = strconv.ParseFloat(strings.TrimSpace(a), 64)
	if err != nil {
		return 0, 0, domain.InputErrorf("latitude %q is not a number", a)
	}
	lng, err = strconv.ParseFloat(strings.TrimSpace(b), 64)
	if err != nil {
		return 0, 0, domain.InputErrorf("longitude %q is not a number", b)
	}
	return lat, lng, nil
}

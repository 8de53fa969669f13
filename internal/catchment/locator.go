// Package catchment locates the stormwater catchment (zlewnia) containing a
// position, using a GeoJSON dataset held in memory after the first lookup.
package catchment

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/geo"
)

// Locator implements domain.CatchmentLocator. It fails soft: every error is
// logged and reported as "no catchment".
type Locator struct {
	loader *Loader
	logger *slog.Logger
}

// NewLocator creates a Locator backed by loader.
func NewLocator(loader *Loader, logger *slog.Logger) *Locator {
	return &Locator{loader: loader, logger: logger}
}

// Locate returns the first catchment, in dataset order, whose polygon
// contains the WGS84 position, or nil.
func (l *Locator) Locate(ctx context.Context, lat, lng float64) (c *domain.Catchment) {
	defer func() {
		if r := recover(); r != nil {
			l.logger.Error("catchment lookup panicked", "lat", lat, "lng", lng, "panic", fmt.Sprint(r))
			c = nil
		}
	}()

	c, err := l.locate(ctx, lat, lng)
	if err != nil {
		l.logger.Warn("catchment lookup failed",
			"lat", lat,
			"lng", lng,
			"kind", domain.KindOf(err).String(),
			"error", err,
		)
		return nil
	}
	return c
}

func (l *Locator) locate(ctx context.Context, lat, lng float64) (*domain.Catchment, error) {
	ds, err := l.loader.Load(ctx)
	if err != nil {
		return nil, err
	}

	p, err := geo.FromLatLng(domain.LatLng{Lat: lat, Lng: lng}, geo.GridB)
	if err != nil {
		return nil, err
	}

	f := ds.Find(p)
	if f == nil {
		l.logger.Debug("no catchment contains position", "lat", lat, "lng", lng)
		return nil, nil
	}
	return f.Catchment(), nil
}

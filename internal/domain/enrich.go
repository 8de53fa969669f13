package domain

import (
	"context"
	"log/slog"
)

// EnrichWithCatchment fills CatchmentOverloaded from the catchment containing
// the investment's position. The locator is consulted only when the
// coefficient depends on it. If locator is nil or nothing contains the point,
// the input is returned with the flag cleared (graceful degradation).
func EnrichWithCatchment(ctx context.Context, in RetentionInput, at LatLng, locator CatchmentLocator, logger *slog.Logger) (RetentionInput, *Catchment) {
	in.CatchmentOverloaded = false

	if !in.NeedsCatchment() || locator == nil {
		return in, nil
	}

	c := locator.Locate(ctx, at.Lat, at.Lng)
	if c == nil {
		logger.Info("position is outside every catchment",
			"lat", at.Lat,
			"lng", at.Lng,
		)
		return in, nil
	}

	in.CatchmentOverloaded = c.Overloaded
	return in, c
}

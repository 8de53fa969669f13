// Package lookup is the application layer: it runs parcel, address and
// catchment lookups against the configured resolvers, records metrics and
// publishes lookup events.
package lookup

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/observability"
)

const publishTimeout = 5 * time.Second

// EventPublisher delivers lookup events to downstream consumers.
type EventPublisher interface {
	Publish(ctx context.Context, events ...domain.LookupEvent) error
}

// Service orchestrates lookups. The publisher is optional.
type Service struct {
	parcels    domain.ParcelResolver
	addresses  domain.AddressResolver
	catchments domain.CatchmentLocator
	publisher  EventPublisher
	logger     *slog.Logger
	metrics    *observability.Metrics
}

// New creates a Service. publisher may be nil to disable lookup events.
func New(
	parcels domain.ParcelResolver,
	addresses domain.AddressResolver,
	catchments domain.CatchmentLocator,
	publisher EventPublisher,
	logger *slog.Logger,
	metrics *observability.Metrics,
) *Service {
	return &Service{
		parcels:    parcels,
		addresses:  addresses,
		catchments: catchments,
		publisher:  publisher,
		logger:     logger,
		metrics:    metrics,
	}
}

// ParcelByID resolves a parcel by TERYT identifier.
func (s *Service) ParcelByID(ctx context.Context, id string) (domain.Parcel, error) {
	p, err := s.parcels.ResolveByID(ctx, id)
	s.record(ctx, domain.LookupParcelByID, id, p, err)
	return p, err
}

// ParcelByPoint resolves the parcel under a WGS84 position.
func (s *Service) ParcelByPoint(ctx context.Context, lat, lng float64) (domain.Parcel, error) {
	p, err := s.parcels.ResolveByPoint(ctx, lat, lng)
	s.record(ctx, domain.LookupParcelByPoint, formatLatLng(lat, lng), p, err)
	return p, err
}

// Address geocodes a free-text address.
func (s *Service) Address(ctx context.Context, address string) (domain.AddressResult, error) {
	a, err := s.addresses.Resolve(ctx, address)
	s.record(ctx, domain.LookupAddress, address, a, err)
	return a, err
}

// Catchment returns the catchment containing a WGS84 position, or nil.
func (s *Service) Catchment(ctx context.Context, lat, lng float64) *domain.Catchment {
	c := s.catchments.Locate(ctx, lat, lng)
	if c == nil {
		s.metrics.Lookups.WithLabelValues(string(domain.LookupCatchment), "none").Inc()
		return nil
	}
	s.record(ctx, domain.LookupCatchment, formatLatLng(lat, lng), c, nil)
	return c
}

// RetentionRequest is a retention calculation, optionally positioned so the
// catchment overload flag can be looked up.
type RetentionRequest struct {
	domain.RetentionInput
	Position *domain.LatLng `json:"position,omitempty"`
}

// RetentionResult is the computed requirement plus the catchment consulted.
type RetentionResult struct {
	domain.RetentionRequirement
	Catchment *domain.Catchment `json:"catchment"`
}

// Retention validates the request and computes the retention requirement.
// With a position, the overload flag comes from the catchment lookup;
// otherwise the caller's flag is used.
func (s *Service) Retention(ctx context.Context, req RetentionRequest) (RetentionResult, error) {
	if err := req.Validate(); err != nil {
		s.metrics.Lookups.WithLabelValues("retention", domain.KindOf(err).String()).Inc()
		return RetentionResult{}, err
	}

	in := req.RetentionInput
	var c *domain.Catchment
	if req.Position != nil {
		in, c = domain.EnrichWithCatchment(ctx, in, *req.Position, s.catchments, s.logger)
	}

	s.metrics.Lookups.WithLabelValues("retention", "success").Inc()
	return RetentionResult{
		RetentionRequirement: domain.ComputeRetention(in),
		Catchment:            c,
	}, nil
}

func (s *Service) record(ctx context.Context, kind domain.LookupKind, query string, result any, err error) {
	if err != nil {
		k := domain.KindOf(err)
		s.metrics.Lookups.WithLabelValues(string(kind), k.String()).Inc()
		level := slog.LevelInfo
		if k == domain.KindUnknown || k == domain.KindParse {
			level = slog.LevelWarn
		}
		s.logger.Log(ctx, level, "lookup failed",
			"kind", string(kind),
			"query", query,
			"error_kind", k.String(),
			"error", err,
		)
		return
	}

	s.metrics.Lookups.WithLabelValues(string(kind), "success").Inc()
	s.publish(ctx, domain.NewLookupEvent(kind, query, result))
}

// publish sends the event best-effort; failures never fail the lookup.
func (s *Service) publish(ctx context.Context, event domain.LookupEvent) {
	if s.publisher == nil {
		return
	}

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := s.publisher.Publish(pctx, event); err != nil {
		s.metrics.EventsPublished.WithLabelValues("error").Inc()
		s.logger.Warn("publish lookup event failed",
			"kind", string(event.Kind),
			"query", event.Query,
			"error", err,
		)
		return
	}
	s.metrics.EventsPublished.WithLabelValues("success").Inc()
}

func formatLatLng(lat, lng float64) string {
	return strconv.FormatFloat(lat, 'f', 6, 64) + "," + strconv.FormatFloat(lng, 'f', 6, 64)
}

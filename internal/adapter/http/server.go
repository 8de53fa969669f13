package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/lookup"
	sharedobs "github.com/couchcryptid/storm-data-shared/observability"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// LookupService is the application surface served over HTTP.
type LookupService interface {
	ParcelByID(ctx context.Context, id string) (domain.Parcel, error)
	ParcelByPoint(ctx context.Context, lat, lng float64) (domain.Parcel, error)
	Address(ctx context.Context, address string) (domain.AddressResult, error)
	Catchment(ctx context.Context, lat, lng float64) *domain.Catchment
	Retention(ctx context.Context, req lookup.RetentionRequest) (lookup.RetentionResult, error)
}

// Server exposes the lookup API plus health, readiness, and metrics endpoints.
type Server struct {
	httpServer *http.Server
	svc        LookupService
	logger     *slog.Logger
}

// NewServer creates an HTTP server with the /v1 lookup routes and
// /healthz, /readyz, and /metrics.
func NewServer(addr string, svc LookupService, ready sharedobs.ReadinessChecker, logger *slog.Logger) *Server {
	mux := http.NewServeMux()

	s := &Server{
		httpServer: &http.Server{
			Addr:         addr,
			Handler:      mux,
			ReadTimeout:  10 * time.Second,
			WriteTimeout: 60 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		svc:    svc,
		logger: logger,
	}

	// Parcel identifiers contain "/", e.g. 306401_1.0021.AR_12.19/1.
	mux.HandleFunc("GET /v1/parcels/{id...}", s.handleParcelByID)
	mux.HandleFunc("GET /v1/parcels", s.handleParcelByPoint)
	mux.HandleFunc("GET /v1/addresses", s.handleAddress)
	mux.HandleFunc("GET /v1/catchments", s.handleCatchment)
	mux.HandleFunc("POST /v1/retention", s.handleRetention)

	mux.HandleFunc("GET /healthz", sharedobs.LivenessHandler())
	mux.HandleFunc("GET /readyz", sharedobs.ReadinessHandler(ready))
	mux.Handle("GET /metrics", promhttp.Handler())

	return s
}

// Start begins listening. Returns http.ErrServerClosed on graceful shutdown.
func (s *Server) Start() error {
	s.logger.Info("http server starting", "addr", s.httpServer.Addr)
	return s.httpServer.ListenAndServe()
}

// Shutdown gracefully drains connections within the given context deadline.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

// ServeHTTP delegates to the underlying handler, useful for testing.
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.httpServer.Handler.ServeHTTP(w, r)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	writeTyped(w, status, "application/json", v)
}

func writeTyped(w http.ResponseWriter, status int, contentType string, v any) {
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v) //nolint:errcheck // client may have gone away
}

package main

import (
	"encoding/json"
	"io"
	"log/slog"
	"time"

	"github.com/couchcryptid/parcel-geodata-service/internal/adapter/cadastre"
	"github.com/couchcryptid/parcel-geodata-service/internal/adapter/geocoding"
	"github.com/couchcryptid/parcel-geodata-service/internal/catchment"
	"github.com/couchcryptid/parcel-geodata-service/internal/config"
	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/lookup"
	"github.com/couchcryptid/parcel-geodata-service/internal/observability"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
)

// options are the persistent flags shared by every subcommand. Unset flags
// fall back to the service configuration (environment and .env).
type options struct {
	logLevel     string
	dataset      string
	cadastreURL  string
	geocodingURL string
	timeout      time.Duration
}

// app is built once per invocation in PersistentPreRunE.
type app struct {
	svc    *lookup.Service
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	var opts options
	a := &app{}

	cmd := &cobra.Command{
		Use:           "geolookup",
		Short:         "Resolve Polish parcels, addresses and stormwater catchments",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.init(cmd, opts)
		},
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&opts.logLevel, "log-level", "", "debug|info|warn|error (default from LOG_LEVEL, logs go to stderr)")
	flags.StringVar(&opts.dataset, "dataset", "", "catchment GeoJSON file or URL (default from CATCHMENT_DATASET)")
	flags.StringVar(&opts.cadastreURL, "cadastre-url", "", "ULDK endpoint (default from CADASTRE_URL)")
	flags.StringVar(&opts.geocodingURL, "geocoding-url", "", "UUG endpoint (default from GEOCODING_URL)")
	flags.DurationVar(&opts.timeout, "timeout", 0, "upstream request timeout (default from UPSTREAM_TIMEOUT)")

	cmd.AddCommand(
		parcelCmd(a),
		addressCmd(a),
		catchmentCmd(a),
		retentionCmd(a),
		batchCmd(a),
	)
	return cmd
}

func (a *app) init(cmd *cobra.Command, opts options) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	override(&cfg.LogLevel, opts.logLevel)
	override(&cfg.CatchmentDataset, opts.dataset)
	override(&cfg.CadastreURL, opts.cadastreURL)
	override(&cfg.GeocodingURL, opts.geocodingURL)
	if opts.timeout > 0 {
		cfg.UpstreamTimeout = opts.timeout
	}

	// Logs go to stderr so stdout stays valid JSON.
	a.logger = slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
		Level: observability.ParseLevel(cfg.LogLevel),
	}))
	metrics := observability.NewMetricsWith(prometheus.NewRegistry())

	var addresses domain.AddressResolver = geocoding.NewClient(cfg.GeocodingURL, cfg.UpstreamTimeout, metrics, a.logger)
	if cfg.GeocodeCacheSize > 0 {
		addresses = geocoding.NewCachedResolver(addresses, cfg.GeocodeCacheSize)
	}

	loader := catchment.NewLoader(catchment.NewSource(cfg.CatchmentDataset, cfg.UpstreamTimeout), metrics, a.logger)
	a.svc = lookup.New(
		cadastre.NewClient(cfg.CadastreURL, cfg.UpstreamTimeout, metrics, a.logger),
		addresses,
		catchment.NewLocator(loader, a.logger),
		nil,
		a.logger,
		metrics,
	)
	return nil
}

func override(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/parcel-geodata-service/internal/adapter/cadastre"
	"github.com/couchcryptid/parcel-geodata-service/internal/adapter/geocoding"
	httpadapter "github.com/couchcryptid/parcel-geodata-service/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/parcel-geodata-service/internal/adapter/kafka"
	"github.com/couchcryptid/parcel-geodata-service/internal/catchment"
	"github.com/couchcryptid/parcel-geodata-service/internal/config"
	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/lookup"
	"github.com/couchcryptid/parcel-geodata-service/internal/observability"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	parcels := cadastre.NewClient(cfg.CadastreURL, cfg.UpstreamTimeout, metrics, logger)
	var addresses domain.AddressResolver = geocoding.NewClient(cfg.GeocodingURL, cfg.UpstreamTimeout, metrics, logger)
	if cfg.GeocodeCacheSize > 0 {
		addresses = geocoding.NewCachedResolver(addresses, cfg.GeocodeCacheSize)
	}

	loader := catchment.NewLoader(catchment.NewSource(cfg.CatchmentDataset, cfg.UpstreamTimeout), metrics, logger)
	locator := catchment.NewLocator(loader, logger)

	// Lookup events are feature-flagged via KAFKA_ENABLED.
	var publisher lookup.EventPublisher
	var writer *kafkaadapter.Writer
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("lookup events enabled", "topic", cfg.KafkaLookupTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("lookup events disabled")
	}

	svc := lookup.New(parcels, addresses, locator, publisher, logger, metrics)
	srv := httpadapter.NewServer(cfg.HTTPAddr, svc, loader, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
		}
	}()

	// Warm the catchment dataset so /readyz turns green without waiting for
	// the first retention request.
	if cfg.CatchmentPreload {
		go func() {
			if _, err := loader.Load(ctx); err != nil && ctx.Err() == nil {
				logger.Warn("catchment dataset preload failed", "source", cfg.CatchmentDataset, "error", err)
			}
		}()
	}

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

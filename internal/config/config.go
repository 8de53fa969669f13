package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"strconv"
	"time"

	sharedcfg "github.com/couchcryptid/storm-data-shared/config"
	"github.com/joho/godotenv"
)

// Config holds all service settings, populated from environment variables.
type Config struct {
	HTTPAddr        string
	LogLevel        string
	LogFormat       string
	ShutdownTimeout time.Duration

	// GUGiK upstreams.
	CadastreURL      string
	GeocodingURL     string
	UpstreamTimeout  time.Duration
	GeocodeCacheSize int // 0 disables the address cache

	// Catchment dataset: a file path or an http(s) URL.
	CatchmentDataset string
	CatchmentPreload bool

	// Lookup event publishing.
	KafkaEnabled     bool
	KafkaBrokers     []string
	KafkaLookupTopic string
}

// Load reads configuration from environment variables, applying defaults where
// unset. Variables from an optional .env file (ENV_FILE) are loaded first and
// never override the real environment. ENV_FILE set to "" disables the file.
func Load() (*Config, error) {
	if err := loadEnvFile(lookupOrDefault("ENV_FILE", ".env")); err != nil {
		return nil, err
	}

	shutdownTimeout, err := sharedcfg.ParseShutdownTimeout()
	if err != nil {
		return nil, err
	}

	upstreamTimeout, err := time.ParseDuration(sharedcfg.EnvOrDefault("UPSTREAM_TIMEOUT", "10s"))
	if err != nil || upstreamTimeout <= 0 {
		return nil, errors.New("invalid UPSTREAM_TIMEOUT")
	}

	cacheSize, err := strconv.Atoi(sharedcfg.EnvOrDefault("GEOCODE_CACHE_SIZE", "1024"))
	if err != nil || cacheSize < 0 {
		return nil, errors.New("invalid GEOCODE_CACHE_SIZE")
	}

	cfg := &Config{
		HTTPAddr:        sharedcfg.EnvOrDefault("HTTP_ADDR", ":8080"),
		LogLevel:        sharedcfg.EnvOrDefault("LOG_LEVEL", "info"),
		LogFormat:       sharedcfg.EnvOrDefault("LOG_FORMAT", "json"),
		ShutdownTimeout: shutdownTimeout,

		CadastreURL:      sharedcfg.EnvOrDefault("CADASTRE_URL", "https://uldk.gugik.gov.pl/"),
		GeocodingURL:     sharedcfg.EnvOrDefault("GEOCODING_URL", "https://services.gugik.gov.pl/uug/"),
		UpstreamTimeout:  upstreamTimeout,
		GeocodeCacheSize: cacheSize,

		CatchmentDataset: sharedcfg.EnvOrDefault("CATCHMENT_DATASET", "data/zlewnie_kd.geojson"),
		CatchmentPreload: os.Getenv("CATCHMENT_PRELOAD") != "false",

		KafkaEnabled:     os.Getenv("KAFKA_ENABLED") == "true",
		KafkaBrokers:     sharedcfg.ParseBrokers(sharedcfg.EnvOrDefault("KAFKA_BROKERS", "localhost:9092")),
		KafkaLookupTopic: lookupOrDefault("KAFKA_LOOKUP_TOPIC", "parcel-geodata-lookups"),
	}

	if err := validateURL("CADASTRE_URL", cfg.CadastreURL); err != nil {
		return nil, err
	}
	if err := validateURL("GEOCODING_URL", cfg.GeocodingURL); err != nil {
		return nil, err
	}
	if cfg.CatchmentDataset == "" {
		return nil, errors.New("CATCHMENT_DATASET is required")
	}
	if cfg.KafkaEnabled {
		if len(cfg.KafkaBrokers) == 0 {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_BROKERS is empty")
		}
		if cfg.KafkaLookupTopic == "" {
			return nil, errors.New("KAFKA_ENABLED is true but KAFKA_LOOKUP_TOPIC is empty")
		}
	}

	return cfg, nil
}

// lookupOrDefault is EnvOrDefault for variables where an explicit empty value
// means something: only an unset variable falls back.
func lookupOrDefault(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return fallback
}

func loadEnvFile(path string) error {
	if path == "" {
		return nil
	}
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

func validateURL(name, raw string) error {
	u, err := url.Parse(raw)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%s must be an absolute http(s) URL, got %q", name, raw)
	}
	return nil
}

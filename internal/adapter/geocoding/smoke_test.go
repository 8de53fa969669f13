//go:build gugik

package geocoding

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/couchcryptid/parcel-geodata-service/internal/observability"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// These tests hit the live UUG service.
// Run with: go test -tags=gugik ./internal/adapter/geocoding/ -v -count=1

func TestSmoke_Resolve(t *testing.T) {
	c := NewClient("https://services.gugik.gov.pl/uug/", 20*time.Second,
		observability.NewMetricsForTesting(), slog.New(slog.NewTextHandler(io.Discard, nil)))

	result, err := c.Resolve(context.Background(), "Poznań, Święty Marcin 80")
	require.NoError(t, err)

	assert.InDelta(t, 52.40, result.Lat, 0.05, "lat should be near Poznań")
	assert.InDelta(t, 16.92, result.Lng, 0.05, "lng should be near Poznań")
	assert.Contains(t, result.Address, "Poznań")
}

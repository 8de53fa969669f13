// Package cadastre resolves parcels through the GUGiK ULDK service.
package cadastre

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/geo"
	"github.com/couchcryptid/parcel-geodata-service/internal/observability"
	"github.com/paulmach/orb"
)

// DefaultBaseURL is the public ULDK endpoint.
const DefaultBaseURL = "https://uldk.gugik.gov.pl/"

const (
	resultFields = "teryt,voivodeship,county,commune,region,parcel,geom_wkt"
	fieldCount   = 7
	maxBodyBytes = 8 << 20
)

// Client implements domain.ParcelResolver using ULDK.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a ULDK client. The timeout applies to each request.
func NewClient(baseURL string, timeout time.Duration, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    baseURL,
		metrics:    metrics,
		logger:     logger,
	}
}

// ResolveByID fetches a parcel by its TERYT identifier.
func (c *Client) ResolveByID(ctx context.Context, id string) (domain.Parcel, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Parcel{}, domain.InputErrorf("parcel identifier is empty")
	}

	body, err := c.doRequest(ctx, url.Values{
		"request": {"GetParcelById"},
		"id":      {id},
		"result":  {resultFields},
	})
	if err != nil {
		return domain.Parcel{}, err
	}
	return parseResponse(body, fmt.Sprintf("identifier %q", id))
}

// ResolveByPoint fetches the parcel under a WGS84 position.
func (c *Client) ResolveByPoint(ctx context.Context, lat, lng float64) (domain.Parcel, error) {
	p, err := geo.FromLatLng(domain.LatLng{Lat: lat, Lng: lng}, geo.GridA)
	if err != nil {
		return domain.Parcel{}, err
	}

	body, err := c.doRequest(ctx, url.Values{
		"request": {"GetParcelByXY"},
		"xy":      {formatXY(p)},
		"result":  {resultFields},
	})
	if err != nil {
		return domain.Parcel{}, err
	}
	return parseResponse(body, fmt.Sprintf("point %.6f,%.6f", lat, lng))
}

func (c *Client) doRequest(ctx context.Context, params url.Values) (string, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return "", fmt.Errorf("parse uldk url: %w", err)
	}
	u.RawQuery = params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return "", fmt.Errorf("create request: %w", err)
	}

	start := domain.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues("uldk").Observe(domain.Since(start).Seconds())
	if err != nil {
		return "", fmt.Errorf("uldk %s request: %w", params.Get("request"), err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return "", fmt.Errorf("read uldk response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("uldk API error: status %d: %s", resp.StatusCode, truncate(string(body)))
	}

	c.logger.Debug("uldk response",
		"request", params.Get("request"),
		"bytes", len(body),
	)
	return string(body), nil
}

// parseResponse turns a ULDK text response into a Parcel. query describes the
// lookup for error messages.
func parseResponse(body, query string) (domain.Parcel, error) {
	text := strings.TrimSpace(body)
	if text == "0" {
		return domain.Parcel{}, domain.NotFoundErrorf("no parcel for %s", query)
	}

	// Successful responses are prefixed with a status line holding "0",
	// terminated by LF or CRLF.
	if status, rest, ok := strings.Cut(text, "\n"); ok && strings.TrimSpace(status) == "0" {
		text = rest
	}

	fields := strings.Split(text, "|")
	if len(fields) < fieldCount {
		return domain.Parcel{}, domain.NotFoundErrorf("no parcel for %s: unexpected record %q", query, truncate(text))
	}
	for i := range fields {
		fields[i] = strings.TrimSpace(fields[i])
	}

	ring, err := geo.ParseWKTPolygon(fields[6])
	if err != nil {
		return domain.Parcel{}, err
	}

	centroid, err := geo.Centroid(ring)
	if err != nil {
		return domain.Parcel{}, domain.ParseErrorf("parcel %s geometry: %v", fields[0], err)
	}
	centroidLL, err := geo.ToLatLng(centroid, geo.GridA)
	if err != nil {
		return domain.Parcel{}, err
	}

	boundary, err := toLatLngs(ring)
	if err != nil {
		return domain.Parcel{}, err
	}

	return domain.Parcel{
		ID:          fields[0],
		Voivodeship: fields[1],
		County:      fields[2],
		Commune:     fields[3],
		Region:      fields[4],
		Number:      fields[5],
		Boundary:    boundary,
		Centroid:    centroidLL,
	}, nil
}

func toLatLngs(ring orb.Ring) ([]domain.LatLng, error) {
	out := make([]domain.LatLng, len(ring))
	for i, p := range ring {
		ll, err := geo.ToLatLng(p, geo.GridA)
		if err != nil {
			return nil, err
		}
		out[i] = ll
	}
	return out, nil
}

func formatXY(p orb.Point) string {
	return strconv.FormatFloat(p.X(), 'f', 2, 64) + "," + strconv.FormatFloat(p.Y(), 'f', 2, 64)
}

func truncate(s string) string {
	const limit = 120
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

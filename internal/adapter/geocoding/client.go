// Package geocoding resolves free-text Polish addresses through the GUGiK UUG
// service.
package geocoding

import (
	"bytes"
	"context"
	"encoding/json"
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

// DefaultBaseURL is the public UUG endpoint.
const DefaultBaseURL = "https://services.gugik.gov.pl/uug/"

const maxBodyBytes = 1 << 20

// Client implements domain.AddressResolver using UUG.
type Client struct {
	httpClient *http.Client
	baseURL    string
	metrics    *observability.Metrics
	logger     *slog.Logger
}

// NewClient creates a UUG client. The timeout applies to each request.
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

// Resolve geocodes address and returns the first candidate UUG reports.
func (c *Client) Resolve(ctx context.Context, address string) (domain.AddressResult, error) {
	if strings.TrimSpace(address) == "" {
		return domain.AddressResult{}, domain.InputErrorf("address is empty")
	}

	body, err := c.doRequest(ctx, address)
	if err != nil {
		return domain.AddressResult{}, err
	}
	return parseResponse(body, address)
}

func (c *Client) doRequest(ctx context.Context, address string) ([]byte, error) {
	u, err := url.Parse(c.baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse uug url: %w", err)
	}
	u.RawQuery = url.Values{
		"request":  {"GetAddress"},
		"location": {address},
	}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u.String(), nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	start := domain.Now()
	resp, err := c.httpClient.Do(req)
	c.metrics.UpstreamDuration.WithLabelValues("uug").Observe(domain.Since(start).Seconds())
	if err != nil {
		return nil, fmt.Errorf("uug GetAddress request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return nil, fmt.Errorf("read uug response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, fmt.Errorf("uug API error: status %d: %s", resp.StatusCode, bytes.TrimSpace(body))
	}

	c.logger.Debug("uug response", "bytes", len(body))
	return body, nil
}

func parseResponse(body []byte, address string) (domain.AddressResult, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return domain.AddressResult{}, domain.NotFoundErrorf("address not found: %s", address)
	}

	var resp response
	if err := json.Unmarshal(body, &resp); err != nil {
		return domain.AddressResult{}, domain.WrapParse(err, "decode uug response")
	}

	rec, ok, err := firstResult(resp.Results)
	if err != nil {
		return domain.AddressResult{}, err
	}
	if !ok {
		return domain.AddressResult{}, domain.NotFoundErrorf("address not found: %s", address)
	}

	x, errX := strconv.ParseFloat(strings.TrimSpace(string(rec.X)), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(string(rec.Y)), 64)
	if errX != nil || errY != nil {
		return domain.AddressResult{}, domain.CoordinateErrorf("invalid coordinates for address %s: x=%q y=%q", address, rec.X, rec.Y)
	}

	ll, err := geo.ToLatLng(orb.Point{x, y}, geo.GridA)
	if err != nil {
		return domain.AddressResult{}, err
	}

	return domain.AddressResult{
		Lat:     ll.Lat,
		Lng:     ll.Lng,
		Address: fmt.Sprintf("%s %s, %s", rec.Street, rec.Number, rec.City),
	}, nil
}

// firstResult decodes the entry under the first key of the results object in
// document order, or the first element when results is an array. ok is false
// when results is absent, null or empty.
func firstResult(raw json.RawMessage) (rec record, ok bool, err error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return record{}, false, nil
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	tok, err := dec.Token()
	if err != nil {
		return record{}, false, domain.WrapParse(err, "decode uug results")
	}
	delim, isDelim := tok.(json.Delim)
	if !isDelim || (delim != '{' && delim != '[') {
		return record{}, false, domain.ParseErrorf("uug results: expected an object or array, got %v", tok)
	}
	if !dec.More() {
		return record{}, false, nil
	}
	if delim == '{' {
		if _, err := dec.Token(); err != nil {
			return record{}, false, domain.WrapParse(err, "decode uug results key")
		}
	}
	if err := dec.Decode(&rec); err != nil {
		return record{}, false, domain.WrapParse(err, "decode uug result")
	}
	return rec, true, nil
}

// UUG API response types.

type response struct {
	Results json.RawMessage `json:"results"`
}

type record struct {
	City     string     `json:"city"`
	Street   string     `json:"street"`
	Number   string     `json:"number"`
	X        flexString `json:"x"`
	Y        flexString `json:"y"`
	Accuracy string     `json:"accuracy"`
}

// flexString accepts a JSON string or number. UUG sends coordinates as
// strings but numbers are tolerated.
type flexString string

func (s *flexString) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var v string
		if err := json.Unmarshal(b, &v); err != nil {
			return err
		}
		*s = flexString(v)
		return nil
	}
	if bytes.Equal(b, []byte("null")) {
		*s = ""
		return nil
	}
	*s = flexString(b)
	return nil
}

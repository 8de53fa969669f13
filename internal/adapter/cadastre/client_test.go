package cadastre

import (
	"context"
	"io"
	"log/slog"
	"math"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/geo"
	"github.com/couchcryptid/parcel-geodata-service/internal/observability"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const jezyceRow = "0.0001.AR_1.19/1|wielkopolskie|Poznań|Poznań|Jeżyce|19/1|" +
	"SRID=2180;POLYGON((358855 506827,358850 506814,358840 506801))"

func testClient(baseURL string) *Client {
	return &Client{
		httpClient: &http.Client{Timeout: 5 * time.Second},
		baseURL:    baseURL,
		metrics:    observability.NewMetricsForTesting(),
		logger:     slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func textServer(t *testing.T, body string, check func(r *http.Request)) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if check != nil {
			check(r)
		}
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_ResolveByID_Blank(t *testing.T) {
	var calls atomic.Int32
	srv := textServer(t, jezyceRow, func(*http.Request) { calls.Add(1) })
	c := testClient(srv.URL)

	for _, id := range []string{"", "   ", "\n\t"} {
		_, err := c.ResolveByID(context.Background(), id)
		require.Error(t, err)
		assert.Equal(t, domain.KindInput, domain.KindOf(err), "id %q", id)
	}
	assert.Zero(t, calls.Load(), "blank ids must not reach the API")
}

func TestClient_ResolveByID_NotFound(t *testing.T) {
	srv := textServer(t, "0", nil)

	_, err := testClient(srv.URL).ResolveByID(context.Background(), "abc")
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Contains(t, err.Error(), "abc")
}

func TestClient_ResolveByID_Success(t *testing.T) {
	srv := textServer(t, "0\n"+jezyceRow+"\n", func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "GetParcelById", q.Get("request"))
		assert.Equal(t, "0.0001.AR_1.19/1", q.Get("id"))
		assert.Equal(t, resultFields, q.Get("result"))
	})

	p, err := testClient(srv.URL).ResolveByID(context.Background(), " 0.0001.AR_1.19/1 ")
	require.NoError(t, err)

	assert.Equal(t, "0.0001.AR_1.19/1", p.ID)
	assert.Equal(t, "wielkopolskie", p.Voivodeship)
	assert.Equal(t, "Poznań", p.County)
	assert.Equal(t, "Poznań", p.Commune)
	assert.Equal(t, "Jeżyce", p.Region)
	assert.Equal(t, "19/1", p.Number)
	require.Len(t, p.Boundary, 3)

	// Vertices keep their order and map back onto the grid.
	want := [][2]float64{{358855, 506827}, {358850, 506814}, {358840, 506801}}
	for i, ll := range p.Boundary {
		back, err := geo.FromLatLng(ll, geo.GridA)
		require.NoError(t, err)
		assert.InDelta(t, want[i][0], back.X(), 1e-4)
		assert.InDelta(t, want[i][1], back.Y(), 1e-4)
	}

	c, err := geo.FromLatLng(p.Centroid, geo.GridA)
	require.NoError(t, err)
	assert.InDelta(t, (358855.0+358850+358840)/3, c.X(), 1e-4)
	assert.InDelta(t, (506827.0+506814+506801)/3, c.Y(), 1e-4)
	assert.InDelta(t, 52.4, p.Centroid.Lat, 0.1)
	assert.InDelta(t, 16.9, p.Centroid.Lng, 0.1)
}

func TestClient_ResolveByPoint(t *testing.T) {
	lat, lng := 52.40637, 16.92517
	srv := textServer(t, jezyceRow, func(r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "GetParcelByXY", q.Get("request"))

		parts := strings.Split(q.Get("xy"), ",")
		require.Len(t, parts, 2)
		x, err := strconv.ParseFloat(parts[0], 64)
		require.NoError(t, err)
		y, err := strconv.ParseFloat(parts[1], 64)
		require.NoError(t, err)

		// The query point is sent in EPSG:2180 easting,northing order.
		ll, err := geo.ToLatLng(orb.Point{x, y}, geo.GridA)
		require.NoError(t, err)
		assert.InDelta(t, lat, ll.Lat, 1e-6)
		assert.InDelta(t, lng, ll.Lng, 1e-6)
	})

	p, err := testClient(srv.URL).ResolveByPoint(context.Background(), lat, lng)
	require.NoError(t, err)
	assert.Len(t, p.Boundary, 3)
	assert.Equal(t, "0.0001.AR_1.19/1", p.ID)
}

func TestClient_ResolveByPoint_NonFinite(t *testing.T) {
	srv := textServer(t, jezyceRow, func(*http.Request) { t.Error("unexpected request") })

	_, err := testClient(srv.URL).ResolveByPoint(context.Background(), 52.4, math.Inf(1))
	require.Error(t, err)
	assert.Equal(t, domain.KindCoordinate, domain.KindOf(err))
}

func TestClient_UpstreamError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = io.WriteString(w, "maintenance")
	}))
	defer srv.Close()

	_, err := testClient(srv.URL).ResolveByID(context.Background(), "abc")
	require.Error(t, err)
	assert.Equal(t, domain.KindUnknown, domain.KindOf(err))
	assert.Contains(t, err.Error(), "503")
}

func TestClient_Timeout(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		time.Sleep(200 * time.Millisecond)
		_, _ = io.WriteString(w, jezyceRow)
	}))
	defer srv.Close()

	c := testClient(srv.URL)
	c.httpClient.Timeout = 50 * time.Millisecond

	_, err := c.ResolveByID(context.Background(), "abc")
	require.Error(t, err)
	assert.Equal(t, domain.KindUnknown, domain.KindOf(err))
}

func TestParseResponse_Errors(t *testing.T) {
	tests := map[string]struct {
		body string
		kind domain.ErrorKind
	}{
		"literal zero":          {body: "0", kind: domain.KindNotFound},
		"zero with newline":     {body: "0\n", kind: domain.KindNotFound},
		"zero with crlf":        {body: "0\r\n", kind: domain.KindNotFound},
		"uldk no results":       {body: "-1 brak wyników", kind: domain.KindNotFound},
		"too few fields":        {body: "0\na|b|c|d|e|f", kind: domain.KindNotFound},
		"bad wkt":               {body: "a|b|c|d|e|f|SRID=2180;POLYGON((1 2,3))", kind: domain.KindParse},
		"non numeric wkt":       {body: "a|b|c|d|e|f|POLYGON((1 2,x 4,5 6))", kind: domain.KindParse},
		"two pairs":             {body: "a|b|c|d|e|f|POLYGON((1 2,3 4))", kind: domain.KindParse},
		"zero area geometry":    {body: "a|b|c|d|e|f|POLYGON((358855 506827,358850 506814,358845 506801))", kind: domain.KindParse},
		"empty geometry column": {body: "a|b|c|d|e|f|", kind: domain.KindParse},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := parseResponse(tc.body, "test")
			require.Error(t, err)
			assert.Equal(t, tc.kind, domain.KindOf(err), "error: %v", err)
		})
	}
}

func TestParseResponse_StatusLine(t *testing.T) {
	tests := map[string]string{
		"lf":          "0\n" + jezyceRow + "\n",
		"crlf":        "0\r\n" + jezyceRow + "\r\n",
		"padded":      " 0 \r\n" + jezyceRow,
		"no status":   jezyceRow,
		"blank lines": "\r\n0\r\n" + jezyceRow + "\r\n\r\n",
	}

	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			p, err := parseResponse(body, "test")
			require.NoError(t, err)
			assert.Equal(t, "0.0001.AR_1.19/1", p.ID)
			assert.Equal(t, "wielkopolskie", p.Voivodeship)
		})
	}
}

func TestParseResponse_ExtraFieldsIgnored(t *testing.T) {
	p, err := parseResponse(jezyceRow+"|extra", "test")
	require.NoError(t, err)
	assert.Equal(t, "19/1", p.Number)
	assert.Len(t, p.Boundary, 3)
}

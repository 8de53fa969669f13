package http_test

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	httpadapter "github.com/couchcryptid/parcel-geodata-service/internal/adapter/http"
	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/lookup"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockReadiness struct {
	err error
}

func (m *mockReadiness) CheckReadiness(_ context.Context) error { return m.err }

type mockService struct {
	parcel    domain.Parcel
	address   domain.AddressResult
	catchment *domain.Catchment
	err       error

	gotID        string
	gotLat       float64
	gotLng       float64
	gotAddress   string
	gotRetention lookup.RetentionRequest
}

func (m *mockService) ParcelByID(_ context.Context, id string) (domain.Parcel, error) {
	m.gotID = id
	return m.parcel, m.err
}

func (m *mockService) ParcelByPoint(_ context.Context, lat, lng float64) (domain.Parcel, error) {
	m.gotLat, m.gotLng = lat, lng
	return m.parcel, m.err
}

func (m *mockService) Address(_ context.Context, address string) (domain.AddressResult, error) {
	m.gotAddress = address
	return m.address, m.err
}

func (m *mockService) Catchment(_ context.Context, lat, lng float64) *domain.Catchment {
	m.gotLat, m.gotLng = lat, lng
	return m.catchment
}

func (m *mockService) Retention(_ context.Context, req lookup.RetentionRequest) (lookup.RetentionResult, error) {
	m.gotRetention = req
	if m.err != nil {
		return lookup.RetentionResult{}, m.err
	}
	return lookup.RetentionResult{
		RetentionRequirement: domain.ComputeRetention(req.RetentionInput),
		Catchment:            m.catchment,
	}, nil
}

var jezyce = domain.Parcel{
	ID:          "306401_1.0021.AR_12.19/1",
	Voivodeship: "wielkopolskie",
	County:      "Poznań",
	Commune:     "Poznań",
	Region:      "Jeżyce",
	Number:      "19/1",
	Boundary:    []domain.LatLng{{Lat: 52.41, Lng: 16.90}, {Lat: 52.41, Lng: 16.91}, {Lat: 52.42, Lng: 16.91}},
	Centroid:    domain.LatLng{Lat: 52.4133, Lng: 16.9067},
}

func newTestServer(svc *mockService, readyErr error) *httpadapter.Server {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return httpadapter.NewServer(":0", svc, &mockReadiness{err: readyErr}, logger)
}

func do(t *testing.T, srv *httpadapter.Server, method, target string, body io.Reader) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, httptest.NewRequest(method, target, body))
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) map[string]string {
	t.Helper()
	var body map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return body
}

func TestHealthzReturns200(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}, nil), http.MethodGet, "/healthz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns200WhenReady(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}, nil), http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestReadyzReturns503WhenNotReady(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}, fmt.Errorf("catchment dataset not loaded")), http.MethodGet, "/readyz", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}, nil), http.MethodGet, "/metrics", nil)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "go_goroutines")
}

func TestParcelByID_SlashInIdentifier(t *testing.T) {
	svc := &mockService{parcel: jezyce}
	rec := do(t, newTestServer(svc, nil), http.MethodGet, "/v1/parcels/306401_1.0021.AR_12.19/1", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "306401_1.0021.AR_12.19/1", svc.gotID)

	var got domain.Parcel
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.Equal(t, jezyce, got)
}

func TestParcelByPoint(t *testing.T) {
	svc := &mockService{parcel: jezyce}
	rec := do(t, newTestServer(svc, nil), http.MethodGet, "/v1/parcels?lat=52.4133&lng=16.9067", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.InDelta(t, 52.4133, svc.gotLat, 0)
	assert.InDelta(t, 16.9067, svc.gotLng, 0)
}

func TestParcel_GeoJSON(t *testing.T) {
	svc := &mockService{parcel: jezyce}
	rec := do(t, newTestServer(svc, nil), http.MethodGet, "/v1/parcels/306401_1.0021.AR_12.19/1?format=geojson", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/geo+json", rec.Header().Get("Content-Type"))

	f, err := geojson.UnmarshalFeature(rec.Body.Bytes())
	require.NoError(t, err)
	poly, ok := f.Geometry.(orb.Polygon)
	require.True(t, ok)
	require.Len(t, poly, 1)

	ring := poly[0]
	require.Len(t, ring, 4, "ring is closed")
	assert.Equal(t, ring[0], ring[3])
	assert.Equal(t, orb.Point{16.90, 52.41}, ring[0], "lng/lat order")
	assert.Equal(t, "Jeżyce", f.Properties.MustString("region"))
	assert.Equal(t, "19/1", f.Properties.MustString("parcel"))
}

func TestParcelByPoint_BadQuery(t *testing.T) {
	svc := &mockService{}
	for _, target := range []string{"/v1/parcels", "/v1/parcels?lat=52.4", "/v1/parcels?lat=abc&lng=16.9"} {
		rec := do(t, newTestServer(svc, nil), http.MethodGet, target, nil)
		assert.Equal(t, http.StatusBadRequest, rec.Code, target)
		assert.Equal(t, "input", decodeError(t, rec)["kind"], target)
	}
}

func TestErrorMapping(t *testing.T) {
	tests := map[string]struct {
		err    error
		status int
		kind   string
	}{
		"input":      {domain.InputErrorf("parcel identifier is empty"), http.StatusBadRequest, "input"},
		"not found":  {domain.NotFoundErrorf("no parcel"), http.StatusNotFound, "not_found"},
		"parse":      {domain.ParseErrorf("wkt: bad pair"), http.StatusUnprocessableEntity, "parse"},
		"coordinate": {domain.CoordinateErrorf("NaN"), http.StatusUnprocessableEntity, "coordinate"},
		"transport":  {fmt.Errorf("uldk request: %w", context.DeadlineExceeded), http.StatusBadGateway, "upstream"},
	}

	for name, tc := range tests {
		t.Run(name, func(t *testing.T) {
			rec := do(t, newTestServer(&mockService{err: tc.err}, nil), http.MethodGet, "/v1/parcels/abc", nil)
			assert.Equal(t, tc.status, rec.Code)
			body := decodeError(t, rec)
			assert.Equal(t, tc.kind, body["kind"])
			assert.Equal(t, tc.err.Error(), body["error"])
		})
	}
}

func TestAddress(t *testing.T) {
	svc := &mockService{address: domain.AddressResult{Lat: 52.4, Lng: 16.9, Address: "Święty Marcin 80/82, Poznań"}}
	rec := do(t, newTestServer(svc, nil), http.MethodGet, "/v1/addresses?q=%C5%9Awi%C4%99ty+Marcin+80%2F82", nil)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "Święty Marcin 80/82", svc.gotAddress)
	assert.JSONEq(t, `{"lat":52.4,"lng":16.9,"address":"Święty Marcin 80/82, Poznań"}`, rec.Body.String())
}

func TestCatchment(t *testing.T) {
	svc := &mockService{catchment: &domain.Catchment{Name: "Bogdanka", Overloaded: true}}
	rec := do(t, newTestServer(svc, nil), http.MethodGet, "/v1/catchments?lat=52.42&lng=16.88", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"name":"Bogdanka","overloaded":true}`, rec.Body.String())

	svc.catchment = nil
	rec = do(t, newTestServer(svc, nil), http.MethodGet, "/v1/catchments?lat=54.35&lng=18.64", nil)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "null", strings.TrimSpace(rec.Body.String()))
}

func TestRetention(t *testing.T) {
	svc := &mockService{catchment: &domain.Catchment{Name: "Bogdanka", Overloaded: true}}
	body := `{
		"roof_area": 400,
		"sealed_area": 300,
		"permeable_area": 300,
		"development": "multi_family",
		"connected_to_sewer": true,
		"catchment_overloaded": true,
		"position": {"lat": 52.42, "lng": 16.88}
	}`
	rec := do(t, newTestServer(svc, nil), http.MethodPost, "/v1/retention", strings.NewReader(body))
	require.Equal(t, http.StatusOK, rec.Code)

	require.NotNil(t, svc.gotRetention.Position)
	assert.InDelta(t, 52.42, svc.gotRetention.Position.Lat, 0)
	assert.Equal(t, domain.DevelopmentMultiFamily, svc.gotRetention.Development)

	var got map[string]any
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
	assert.InDelta(t, 1000.0, got["total_area"], 1e-9)
	assert.InDelta(t, 0.04, got["coefficient"], 1e-9)
	assert.InDelta(t, 80.0, got["detention_volume"], 1e-9)
	assert.NotNil(t, got["catchment"])
}

func TestRetention_BadBody(t *testing.T) {
	for name, body := range map[string]string{
		"not json":      "roof=400",
		"unknown field": `{"roof":400}`,
		"wrong type":    `{"roof_area":"400"}`,
	} {
		t.Run(name, func(t *testing.T) {
			rec := do(t, newTestServer(&mockService{}, nil), http.MethodPost, "/v1/retention", strings.NewReader(body))
			assert.Equal(t, http.StatusBadRequest, rec.Code)
			assert.Equal(t, "input", decodeError(t, rec)["kind"])
		})
	}
}

func TestMethodNotAllowed(t *testing.T) {
	rec := do(t, newTestServer(&mockService{}, nil), http.MethodGet, "/v1/retention", nil)
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

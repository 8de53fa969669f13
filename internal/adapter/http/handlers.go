package http

import (
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/geo"
	"github.com/couchcryptid/parcel-geodata-service/internal/lookup"
)

const maxRequestBytes = 64 << 10

type errorResponse struct {
	Error string `json:"error"`
	Kind  string `json:"kind"`
}

func (s *Server) handleParcelByID(w http.ResponseWriter, r *http.Request) {
	p, err := s.svc.ParcelByID(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeParcel(w, r, p)
}

func (s *Server) handleParcelByPoint(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := parseLatLng(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	p, err := s.svc.ParcelByPoint(r.Context(), lat, lng)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeParcel(w, r, p)
}

func (s *Server) handleAddress(w http.ResponseWriter, r *http.Request) {
	a, err := s.svc.Address(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, a)
}

// handleCatchment answers null when no catchment contains the position.
func (s *Server) handleCatchment(w http.ResponseWriter, r *http.Request) {
	lat, lng, err := parseLatLng(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Catchment(r.Context(), lat, lng))
}

func (s *Server) handleRetention(w http.ResponseWriter, r *http.Request) {
	var req lookup.RetentionRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxRequestBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		s.writeError(w, r, domain.InputErrorf("decode retention request: %v", err))
		return
	}

	res, err := s.svc.Retention(r.Context(), req)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	kind := domain.KindOf(err)
	status, label := statusFor(kind)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "path", r.URL.Path, "error", err)
	}
	writeJSON(w, status, errorResponse{Error: err.Error(), Kind: label})
}

func statusFor(kind domain.ErrorKind) (int, string) {
	switch kind {
	case domain.KindInput:
		return http.StatusBadRequest, kind.String()
	case domain.KindNotFound:
		return http.StatusNotFound, kind.String()
	case domain.KindParse, domain.KindCoordinate:
		return http.StatusUnprocessableEntity, kind.String()
	default:
		return http.StatusBadGateway, "upstream"
	}
}

func parseLatLng(r *http.Request) (lat, lng float64, err error) {
	q := r.URL.Query()
	lat, errLat := strconv.ParseFloat(strings.TrimSpace(q.Get("lat")), 64)
	lng, errLng := strconv.ParseFloat(strings.TrimSpace(q.Get("lng")), 64)
	if errLat != nil || errLng != nil {
		return 0, 0, domain.InputErrorf("lat and lng must be numbers, got lat=%q lng=%q", q.Get("lat"), q.Get("lng"))
	}
	return lat, lng, nil
}

func writeParcel(w http.ResponseWriter, r *http.Request, p domain.Parcel) {
	if r.URL.Query().Get("format") != "geojson" {
		writeJSON(w, http.StatusOK, p)
		return
	}
	writeTyped(w, http.StatusOK, "application/geo+json", geo.ParcelFeature(p))
}

package geo

import (
	"math"
	"strconv"
	"strings"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/paulmach/orb"
)

const (
	sridPrefix     = "SRID="
	polygonKeyword = "POLYGON"
)

// ParseWKTPolygon parses the outer ring of a ULDK polygon, e.g.
//
//	SRID=2180;POLYGON((358855.2 506827.9,358850.2 506814.6,358845.2 506801.4))
//
// The SRID prefix and POLYGON keyword are optional. Surrounding whitespace,
// newlines and surplus closing parentheses are ignored. The ring is returned
// as written: it is not closed here.
func ParseWKTPolygon(wkt string) (orb.Ring, error) {
	body, err := polygonBody(wkt)
	if err != nil {
		return nil, err
	}

	tokens := strings.Split(body, ",")
	ring := make(orb.Ring, 0, len(tokens))
	for i, tok := range tokens {
		parts := strings.Fields(tok)
		if len(parts) != 2 {
			return nil, domain.ParseErrorf("wkt: pair %d %q: expected 2 values, got %d", i+1, strings.TrimSpace(tok), len(parts))
		}
		x, okX := parseOrdinate(parts[0])
		y, okY := parseOrdinate(parts[1])
		if !okX || !okY {
			return nil, domain.ParseErrorf("wkt: pair %d %q: not a finite number", i+1, strings.TrimSpace(tok))
		}
		ring = append(ring, orb.Point{x, y})
	}

	if len(ring) < 3 {
		return nil, domain.ParseErrorf("wkt: polygon needs at least 3 pairs, got %d", len(ring))
	}
	return ring, nil
}

// polygonBody strips the SRID prefix and the POLYGON(( ... )) wrapper.
func polygonBody(wkt string) (string, error) {
	s := strings.TrimSpace(wkt)
	if s == "" {
		return "", domain.ParseErrorf("wkt: empty geometry")
	}

	if strings.HasPrefix(strings.ToUpper(s), sridPrefix) {
		end := strings.IndexByte(s, ';')
		if end == -1 {
			return "", domain.ParseErrorf("wkt: SRID declaration without ';' in %q", truncate(s))
		}
		if _, err := strconv.Atoi(s[len(sridPrefix):end]); err != nil {
			return "", domain.ParseErrorf("wkt: bad SRID %q", s[len(sridPrefix):end])
		}
		s = strings.TrimSpace(s[end+1:])
	}

	if strings.HasPrefix(strings.ToUpper(s), polygonKeyword) {
		s = strings.TrimSpace(s[len(polygonKeyword):])
	}

	if !strings.HasPrefix(s, "((") {
		return "", domain.ParseErrorf("wkt: expected '((' in %q", truncate(s))
	}
	if !strings.HasSuffix(s, "))") {
		return "", domain.ParseErrorf("wkt: expected '))' in %q", truncate(s))
	}
	s = strings.TrimPrefix(s, "((")
	s = strings.TrimRight(s, ")")
	return s, nil
}

func parseOrdinate(s string) (float64, bool) {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	return v, true
}

func truncate(s string) string {
	const limit = 48
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

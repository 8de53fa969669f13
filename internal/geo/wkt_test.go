package geo

import (
	"errors"
	"testing"

	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const uldkGeometry = "SRID=2180;POLYGON((358855.206308051 506827.929378615,358850.244847873 506814.692656992,358845.283387696 506801.455935369))"

func TestParseWKTPolygon(t *testing.T) {
	want := orb.Ring{
		{358855.206308051, 506827.929378615},
		{358850.244847873, 506814.692656992},
		{358845.283387696, 506801.455935369},
	}

	t.Run("ULDK geometry with SRID", func(t *testing.T) {
		ring, err := ParseWKTPolygon(uldkGeometry)
		require.NoError(t, err)
		assert.Equal(t, want, ring)
	})

	t.Run("bare double-paren form", func(t *testing.T) {
		ring, err := ParseWKTPolygon("((1 2,3 4,5 6))")
		require.NoError(t, err)
		assert.Equal(t, orb.Ring{{1, 2}, {3, 4}, {5, 6}}, ring)
	})

	t.Run("SRID with bare double-paren form", func(t *testing.T) {
		ring, err := ParseWKTPolygon("SRID=2180;((1.5 -2,3e2 4,5 6.25))")
		require.NoError(t, err)
		assert.Equal(t, orb.Ring{{1.5, -2}, {300, 4}, {5, 6.25}}, ring)
	})

	t.Run("whitespace, newlines and surplus parens", func(t *testing.T) {
		ring, err := ParseWKTPolygon("  \nSRID=2180;POLYGON((1 2, 3 4,\n5   6)))) \n")
		require.NoError(t, err)
		assert.Equal(t, orb.Ring{{1, 2}, {3, 4}, {5, 6}}, ring)
	})

	t.Run("POLYGON without SRID", func(t *testing.T) {
		ring, err := ParseWKTPolygon("POLYGON ((0 0,1 0,1 1,0 0))")
		require.NoError(t, err)
		assert.Len(t, ring, 4)
	})

	t.Run("open ring is not closed", func(t *testing.T) {
		ring, err := ParseWKTPolygon("((0 0,1 0,1 1))")
		require.NoError(t, err)
		assert.Len(t, ring, 3)
		assert.NotEqual(t, ring[0], ring[len(ring)-1])
	})
}

func TestParseWKTPolygon_Errors(t *testing.T) {
	cases := map[string]string{
		"empty":             "   ",
		"two pairs":         "SRID=2180;POLYGON((1 2,3 4))",
		"three values":      "((1 2 3,4 5,6 7))",
		"one value":         "((1,4 5,6 7))",
		"non-numeric":       "((a b,4 5,6 7))",
		"NaN ordinate":      "((NaN 1,4 5,6 7))",
		"infinite ordinate": "((1 +Inf,4 5,6 7))",
		"trailing comma":    "((1 2,4 5,6 7,))",
		"missing wrapper":   "SRID=2180;1 2,3 4,5 6",
		"unclosed wrapper":  "((1 2,3 4,5 6",
		"SRID without ;":    "SRID=2180 POLYGON((1 2,3 4,5 6))",
		"bad SRID":          "SRID=abc;POLYGON((1 2,3 4,5 6))",
	}

	for name, input := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseWKTPolygon(input)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrParse), "want parse error, got %v", err)
			assert.Equal(t, domain.KindParse, domain.KindOf(err))
		})
	}
}

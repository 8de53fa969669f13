package main

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/parcel-geodata-service/internal/catchment"
	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultSeedsProduceValidDataset(t *testing.T) {
	fc, err := buildCollection(defaultSeeds)
	require.NoError(t, err)
	data, err := fc.MarshalJSON()
	require.NoError(t, err)

	require.NoError(t, verify(data, defaultSeeds))

	ds, err := catchment.ParseDataset(data)
	require.NoError(t, err)
	require.Len(t, ds.Features, len(defaultSeeds))
	assert.Equal(t, "Bogdanka [2]", ds.Features[0].Name)
	assert.Equal(t, "TAK", ds.Features[0].Flag)
	assert.Equal(t, "NIE", ds.Features[1].Flag)
	assert.Len(t, ds.Features[0].Rings[0], vertices+1)
}

func TestVerify_DetectsOverlap(t *testing.T) {
	seeds := []seed{
		{Name: "Outer [1]", At: domain.LatLng{Lat: 52.40, Lng: 16.90}, Radius: 5000},
		{Name: "Inner [2]", At: domain.LatLng{Lat: 52.40, Lng: 16.90}, Radius: 100},
	}
	fc, err := buildCollection(seeds)
	require.NoError(t, err)
	data, err := fc.MarshalJSON()
	require.NoError(t, err)

	err = verify(data, seeds)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Inner [2]")
}

func TestReadSeeds(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seeds.csv")
	csv := "name,overloaded,lat,lng,radius_m\n" +
		"Bogdanka [2],true,52.4285,16.8840,1500\n" +
		"Cybina [7],false,52.4060,16.9950,1800\n"
	require.NoError(t, os.WriteFile(path, []byte(csv), 0o600))

	seeds, err := readSeeds(path)
	require.NoError(t, err)
	require.Len(t, seeds, 2)
	assert.Equal(t, seed{Name: "Bogdanka [2]", Overloaded: true, At: domain.LatLng{Lat: 52.4285, Lng: 16.8840}, Radius: 1500}, seeds[0])
	assert.False(t, seeds[1].Overloaded)

	bad := filepath.Join(t.TempDir(), "bad.csv")
	require.NoError(t, os.WriteFile(bad, []byte("name,overloaded,lat,lng,radius_m\nX,true,abc,16.9,10\n"), 0o600))
	_, err = readSeeds(bad)
	require.Error(t, err)
}

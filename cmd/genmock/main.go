// Command genmock builds a development catchment dataset (zlewnie_kd.geojson)
// from a CSV of catchment seeds. Each seed becomes a regular polygon in
// EPSG:2177 around its WGS84 position. The output is read back through the
// catchment package to check every seed resolves to its own catchment.
//
// Usage:
//
//	go run ./cmd/genmock -out data/zlewnie_kd.geojson
//	go run ./cmd/genmock -csv seeds.csv -out data/zlewnie_kd.geojson
//
// The CSV header is: name,overloaded,lat,lng,radius_m
package main

import (
	"encoding/csv"
	"flag"
	"fmt"
	"log"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/couchcryptid/parcel-geodata-service/internal/catchment"
	"github.com/couchcryptid/parcel-geodata-service/internal/domain"
	"github.com/couchcryptid/parcel-geodata-service/internal/geo"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

// seed is one catchment to synthesize.
type seed struct {
	Name       string
	Overloaded bool
	At         domain.LatLng
	Radius     float64
}

// defaultSeeds approximate a few Poznań catchments. Radii are chosen so the
// polygons do not overlap.
var defaultSeeds = []seed{
	{Name: "Bogdanka [2]", Overloaded: true, At: domain.LatLng{Lat: 52.4285, Lng: 16.8840}, Radius: 1500},
	{Name: "Cybina [7]", Overloaded: false, At: domain.LatLng{Lat: 52.4060, Lng: 16.9950}, Radius: 1800},
	{Name: "Junikowski Strumień [11]", Overloaded: true, At: domain.LatLng{Lat: 52.3830, Lng: 16.8500}, Radius: 1600},
	{Name: "Główna [4]", Overloaded: false, At: domain.LatLng{Lat: 52.4470, Lng: 16.9620}, Radius: 1400},
	{Name: "Warta Centrum [1]", Overloaded: true, At: domain.LatLng{Lat: 52.4080, Lng: 16.9330}, Radius: 900},
}

const vertices = 16

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	csvPath := flag.String("csv", "", "optional seed CSV (name,overloaded,lat,lng,radius_m)")
	out := flag.String("out", "data/zlewnie_kd.geojson", "output GeoJSON path")
	flag.Parse()

	seeds := defaultSeeds
	if *csvPath != "" {
		var err error
		if seeds, err = readSeeds(*csvPath); err != nil {
			return fmt.Errorf("reading %s: %w", *csvPath, err)
		}
	}

	fc, err := buildCollection(seeds)
	if err != nil {
		return err
	}
	data, err := fc.MarshalJSON()
	if err != nil {
		return fmt.Errorf("marshal dataset: %w", err)
	}

	if err := verify(data, seeds); err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(*out), 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(*out, append(data, '\n'), 0o600); err != nil {
		return err
	}

	overloaded := 0
	for _, s := range seeds {
		if s.Overloaded {
			overloaded++
		}
	}
	log.Printf("wrote %s: %d catchments, %d overloaded", *out, len(seeds), overloaded)
	return nil
}

func buildCollection(seeds []seed) (*geojson.FeatureCollection, error) {
	fc := geojson.NewFeatureCollection()
	for _, s := range seeds {
		ring, err := polygonAround(s.At, s.Radius)
		if err != nil {
			return nil, fmt.Errorf("seed %q: %w", s.Name, err)
		}
		f := geojson.NewFeature(orb.Polygon{ring})
		f.Properties["nazwa_zlewni"] = s.Name
		f.Properties["przeciazona"] = overloadFlag(s.Overloaded)
		fc.Append(f)
	}
	return fc, nil
}

// polygonAround returns a closed regular polygon in EPSG:2177.
func polygonAround(at domain.LatLng, radius float64) (orb.Ring, error) {
	c, err := geo.FromLatLng(at, geo.GridB)
	if err != nil {
		return nil, err
	}
	ring := make(orb.Ring, 0, vertices+1)
	for i := range vertices {
		a := 2 * math.Pi * float64(i) / vertices
		ring = append(ring, orb.Point{
			math.Round((c.X()+radius*math.Cos(a))*100) / 100,
			math.Round((c.Y()+radius*math.Sin(a))*100) / 100,
		})
	}
	return geo.CloseRing(ring), nil
}

// verify reads the dataset back and checks every seed maps to its own name.
func verify(data []byte, seeds []seed) error {
	ds, err := catchment.ParseDataset(data)
	if err != nil {
		return fmt.Errorf("generated dataset does not parse: %w", err)
	}
	for _, s := range seeds {
		p, err := geo.FromLatLng(s.At, geo.GridB)
		if err != nil {
			return err
		}
		f := ds.Find(p)
		if f == nil || f.Name != s.Name {
			return fmt.Errorf("seed %q does not resolve to its own catchment (overlap?)", s.Name)
		}
	}
	return nil
}

func readSeeds(path string) ([]seed, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open: %w", err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}
	if len(rows) < 2 {
		return nil, fmt.Errorf("no data rows")
	}

	colIdx := map[string]int{}
	for i, h := range rows[0] {
		colIdx[strings.TrimSpace(h)] = i
	}

	seeds := make([]seed, 0, len(rows)-1)
	for n, row := range rows[1:] {
		lat, errLat := strconv.ParseFloat(get(row, colIdx, "lat"), 64)
		lng, errLng := strconv.ParseFloat(get(row, colIdx, "lng"), 64)
		radius, errR := strconv.ParseFloat(get(row, colIdx, "radius_m"), 64)
		if errLat != nil || errLng != nil || errR != nil || radius <= 0 {
			return nil, fmt.Errorf("row %d: lat, lng and radius_m must be numbers", n+2)
		}
		seeds = append(seeds, seed{
			Name:       get(row, colIdx, "name"),
			Overloaded: strings.EqualFold(get(row, colIdx, "overloaded"), "true"),
			At:         domain.LatLng{Lat: lat, Lng: lng},
			Radius:     radius,
		})
	}
	return seeds, nil
}

func get(row []string, idx map[string]int, col string) string {
	i, ok := idx[col]
	if !ok || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

func overloadFlag(overloaded bool) string {
	if overloaded {
		return "TAK"
	}
	return "NIE"
}

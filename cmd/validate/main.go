// Command validate checks a catchment dataset (zlewnie_kd.geojson) before it
// is deployed: GeoJSON structure, the nazwa_zlewni / przeciazona properties,
// ring geometry, placement inside Poland, and features shadowed by an
// earlier feature under first-match lookup.
//
// Usage:
//
//	go run ./cmd/validate -dataset data/zlewnie_kd.geojson
package main

import (
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/couchcryptid/parcel-geodata-service/internal/catchment"
	"github.com/couchcryptid/parcel-geodata-service/internal/geo"
	"github.com/paulmach/orb"
)

// Rough WGS84 bounds of Poland.
const (
	minLat, maxLat = 49.0, 55.0
	minLng, maxLng = 14.0, 24.2
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	dataset := flag.String("dataset", "data/zlewnie_kd.geojson", "catchment GeoJSON file")
	flag.Parse()

	data, err := os.ReadFile(*dataset)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: %v\n", err)
		os.Exit(1)
	}
	if code := run(os.Stdout, *dataset, data); code != 0 {
		os.Exit(code)
	}
}

func run(w io.Writer, name string, data []byte) int {
	fmt.Fprintf(w, "=== Catchment Dataset Validation: %s ===\n\n", name)

	ds, err := catchment.ParseDataset(data)
	if err != nil {
		fmt.Fprintf(w, "FATAL: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateStructure(ds),
		validateProperties(ds),
		validateGeometry(ds),
		validateShadowing(ds),
	}

	allPassed := true
	for _, p := range phases {
		status := "PASS"
		if !p.passed() {
			status = fmt.Sprintf("FAIL (%d errors)", len(p.errors))
			allPassed = false
		}
		fmt.Fprintf(w, "  %-42s %s\n", p.name, status)
	}
	fmt.Fprintf(w, "\nFeatures: %d polygonal, %d skipped\n", len(ds.Features), ds.Skipped)

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Fprintf(w, "\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Fprintf(w, "  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Fprintln(w, "\nAll validations passed.")
		return 0
	}
	fmt.Fprintln(w, "\nValidation FAILED.")
	return 1
}

func validateStructure(ds *catchment.Dataset) *phase {
	p := &phase{name: "Structure"}
	if len(ds.Features) == 0 {
		p.errorf("dataset has no features")
	}
	if ds.Skipped > 0 {
		p.errorf("%d features have no polygon geometry", ds.Skipped)
	}
	return p
}

func validateProperties(ds *catchment.Dataset) *phase {
	p := &phase{name: "Properties (nazwa_zlewni, przeciazona)"}
	seen := map[string]int{}
	for i, f := range ds.Features {
		switch {
		case strings.TrimSpace(f.Name) == "":
			p.errorf("feature %d: empty nazwa_zlewni", i)
		case catchment.DisplayName(f.Name) == strings.TrimSpace(f.Name):
			p.errorf("feature %d: %q has no [tag] suffix", i, f.Name)
		}
		if f.Flag != "TAK" && f.Flag != "NIE" {
			p.errorf("feature %d (%s): przeciazona is %q, want TAK or NIE", i, f.Name, f.Flag)
		}
		if prev, dup := seen[f.Name]; dup && f.Name != "" {
			p.errorf("feature %d: name %q repeats feature %d", i, f.Name, prev)
		}
		seen[f.Name] = i
	}
	return p
}

func validateGeometry(ds *catchment.Dataset) *phase {
	p := &phase{name: "Geometry (EPSG:2177 rings inside Poland)"}
	for i, f := range ds.Features {
		for j, r := range f.Rings {
			c, err := geo.Centroid(r)
			if err != nil {
				p.errorf("feature %d (%s) ring %d: %v", i, f.Name, j, err)
				continue
			}
			ll, err := geo.ToLatLng(c, geo.GridB)
			if err != nil {
				p.errorf("feature %d (%s) ring %d: %v", i, f.Name, j, err)
				continue
			}
			if ll.Lat < minLat || ll.Lat > maxLat || ll.Lng < minLng || ll.Lng > maxLng {
				p.errorf("feature %d (%s) ring %d: centroid %.5f,%.5f is outside Poland (wrong CRS?)", i, f.Name, j, ll.Lat, ll.Lng)
			}
		}
	}
	return p
}

// validateShadowing flags features whose own centroid resolves to an earlier
// feature, so lookups there never reach them.
func validateShadowing(ds *catchment.Dataset) *phase {
	p := &phase{name: "Shadowing (first match wins)"}
	for i := range ds.Features {
		f := &ds.Features[i]
		c, ok := interiorPoint(f)
		if !ok {
			continue
		}
		if hit := ds.Find(c); hit != nil && hit != f {
			p.errorf("feature %d (%s) is shadowed by %s", i, f.Name, hit.Name)
		}
	}
	return p
}

func interiorPoint(f *catchment.Feature) (orb.Point, bool) {
	for _, r := range f.Rings {
		c, err := geo.Centroid(r)
		if err == nil && geo.Contains(r, c) {
			return c, true
		}
	}
	return orb.Point{}, false
}

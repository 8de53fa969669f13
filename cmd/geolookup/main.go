// Command geolookup resolves parcels, addresses and catchments from the
// command line and prints the result as JSON.
//
// Usage:
//
//	geolookup parcel 306401_1.0021.AR_12.19/1
//	geolookup parcel --lat 52.4133 --lng 16.9067 --format geojson
//	geolookup address "Święty Marcin 80/82, Poznań"
//	geolookup catchment --lat 52.42 --lng 16.88 --dataset data/zlewnie_kd.geojson
//	geolookup batch --kind point --workers 8 positions.txt
//	geolookup retention --roof 400 --sealed 300 --development multi_family --connected --lat 52.42 --lng 16.88
package main

import (
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

// Package domain models Polish cadastral parcels, geocoded addresses and
// stormwater catchments, and the retention requirement derived from them.
//
// # Data Sources
//
// Parcels come from the GUGiK ULDK service (https://uldk.gugik.gov.pl/).
// Addresses come from the GUGiK UUG geocoder (https://services.gugik.gov.pl/uug/).
// Catchments come from a static GeoJSON file published by the sewer operator.
// None of these records are stored; every lookup builds fresh values.
//
// # Coordinate Conventions
//
// Three coordinate reference systems are in play:
//
//	WGS84      geographic longitude/latitude in degrees (map clicks, output)
//	EPSG:2180  "PUWG 1992", used by ULDK geometry and UUG address points
//	EPSG:2177  "PUWG 2000 zone 6", used by the catchment dataset
//
// Values crossing a package boundary are always [LatLng] (lat first).
// Inside the geo package grid values are always (x, y) = (easting, northing).
//
// ULDK response format:
//
//	"0"                          no parcel for the identifier or point
//	"0\n<id>|<woj>|...|<wkt>"    one match; the leading status line is dropped
//	<wkt> = "SRID=2180;POLYGON((x1 y1,x2 y2,...))"
//
// UUG response format:
//
//	{"results": {"1": {"city": ..., "street": ..., "number": ..., "x": "...", "y": "..."}}}
//	The first key in document order is the best candidate. An empty body means no match.
//
// Catchment properties:
//
//	nazwa_zlewni  display name with a trailing tag, e.g. "Główna Zlewnia [2]"
//	przeciazona   "TAK" when the catchment is overloaded, anything else otherwise
//
// # Errors
//
// Failures are classified by [ErrorKind]: input, not found, parse and
// coordinate. Use [KindOf] or errors.Is with the Err* sentinels.
package domain

package geo

import (
	"math"

	"github.com/wroge/wgs84"
)

// transverseMercator is the Krüger n-series form of the ellipsoidal
// transverse Mercator, carried to sixth order in the third flattening. It is
// accurate to well under a millimetre across a Polish grid zone in both
// directions. Coefficients are derived once from the spheroid the projection
// is built for.
type transverseMercator struct {
	lon0, k0, e0, n0 float64

	e      float64    // first eccentricity
	radius float64    // rectifying radius
	xi0    float64    // scaled meridian distance of the latitude of origin
	alpha  [6]float64 // forward series
	beta   [6]float64 // inverse series
}

var _ wgs84.Projection = (*transverseMercator)(nil)

func newTransverseMercator(s wgs84.Spheroid, lon0, lat0, k0, falseEasting, falseNorthing float64) *transverseMercator {
	f := 1 / s.Fi()
	n := f / (2 - f)
	n2 := n * n
	n3 := n2 * n
	n4 := n3 * n
	n5 := n4 * n
	n6 := n5 * n

	tm := &transverseMercator{
		lon0:   lon0,
		k0:     k0,
		e0:     falseEasting,
		n0:     falseNorthing,
		e:      math.Sqrt(f * (2 - f)),
		radius: s.A() / (1 + n) * (1 + n2/4 + n4/64 + n6/256),
		alpha: [6]float64{
			n/2 - 2*n2/3 + 5*n3/16 + 41*n4/180 - 127*n5/288 + 7891*n6/37800,
			13*n2/48 - 3*n3/5 + 557*n4/1440 + 281*n5/630 - 1983433*n6/1935360,
			61*n3/240 - 103*n4/140 + 15061*n5/26880 + 167603*n6/181440,
			49561*n4/161280 - 179*n5/168 + 6601661*n6/7257600,
			34729*n5/80640 - 3418889*n6/1995840,
			212378941 * n6 / 319334400,
		},
		beta: [6]float64{
			n/2 - 2*n2/3 + 37*n3/96 - n4/360 - 81*n5/512 + 96199*n6/604800,
			n2/48 + n3/15 - 437*n4/1440 + 46*n5/105 - 1118711*n6/3870720,
			17*n3/480 - 37*n4/840 - 209*n5/4480 + 5569*n6/90720,
			4397*n4/161280 - 11*n5/504 - 830251*n6/7257600,
			4583*n5/161280 - 108847*n6/3991680,
			20648693 * n6 / 638668800,
		},
	}
	tm.xi0, _ = tm.gauss(radians(lat0), 0)
	return tm
}

// FromLonLat projects geodetic degrees to (easting, northing) metres. The
// spheroid argument is ignored; the series is bound to the spheroid given at
// construction.
func (tm *transverseMercator) FromLonLat(lon, lat float64, _ wgs84.Spheroid) (east, north float64) {
	xi, eta := tm.gauss(radians(lat), radians(lon-tm.lon0))
	return tm.e0 + tm.k0*tm.radius*eta, tm.n0 + tm.k0*tm.radius*(xi-tm.xi0)
}

// ToLonLat inverts FromLonLat.
func (tm *transverseMercator) ToLonLat(east, north float64, _ wgs84.Spheroid) (lon, lat float64) {
	xi := (north-tm.n0)/(tm.k0*tm.radius) + tm.xi0
	eta := (east - tm.e0) / (tm.k0 * tm.radius)

	xiP, etaP := xi, eta
	for j, b := range tm.beta {
		k := float64(2 * (j + 1))
		xiP -= b * math.Sin(k*xi) * math.Cosh(k*eta)
		etaP -= b * math.Cos(k*xi) * math.Sinh(k*eta)
	}

	tauP := math.Sin(xiP) / math.Hypot(math.Sinh(etaP), math.Cos(xiP))
	lambda := math.Atan2(math.Sinh(etaP), math.Cos(xiP))
	return tm.lon0 + degrees(lambda), degrees(math.Atan(tm.tau(tauP)))
}

// gauss maps geodetic latitude and longitude from the central meridian, both
// in radians, onto the normalised (xi, eta) plane.
func (tm *transverseMercator) gauss(phi, lambda float64) (xi, eta float64) {
	tauP := tm.tauPrime(math.Tan(phi))
	xiP := math.Atan2(tauP, math.Cos(lambda))
	etaP := math.Asinh(math.Sin(lambda) / math.Hypot(tauP, math.Cos(lambda)))

	xi, eta = xiP, etaP
	for j, a := range tm.alpha {
		k := float64(2 * (j + 1))
		xi += a * math.Sin(k*xiP) * math.Cosh(k*etaP)
		eta += a * math.Cos(k*xiP) * math.Sinh(k*etaP)
	}
	return xi, eta
}

// tauPrime converts tan(latitude) to tan(conformal latitude).
func (tm *transverseMercator) tauPrime(tau float64) float64 {
	sigma := math.Sinh(tm.e * math.Atanh(tm.e*tau/math.Hypot(1, tau)))
	return tau*math.Hypot(1, sigma) - sigma*math.Hypot(1, tau)
}

// tau inverts tauPrime by Newton iteration; it converges in two or three steps.
func (tm *transverseMercator) tau(tauP float64) float64 {
	e2m := 1 - tm.e*tm.e
	tau := tauP
	for range 10 {
		tp := tm.tauPrime(tau)
		d := (tauP - tp) / math.Hypot(1, tp) * (1 + e2m*tau*tau) / (e2m * math.Hypot(1, tau))
		tau += d
		if math.Abs(d) < 1e-14*math.Max(1, math.Abs(tau)) {
			break
		}
	}
	return tau
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }

package geodesy

import (
	"errors"
	"fmt"
	"math"
)

// ErrNonConvergence is returned when an iterative solve does not settle within
// MaxIterations. It does not happen for grid references on the OSGB36 grid.
var ErrNonConvergence = errors.New("geodesy: iterative solve did not converge")

// ErrOutsideGrid is returned for a finite reference beyond the National Grid.
var ErrOutsideGrid = errors.New("geodesy: grid reference outside the National Grid")

// MaxIterations caps both fixed-point loops in ToWGS84.
const MaxIterations = 1000

// Airy 1830 ellipsoid and the National Grid projection.
const (
	airyA = 6377563.396
	airyB = 6356256.909

	gridF0 = 0.9996012717
	gridN0 = -100000.0
	gridE0 = 400000.0
)

var (
	gridLat0 = radians(49)
	gridLon0 = radians(-2)
)

// GRS80 ellipsoid.
const (
	grs80A = 6378137.000
	grs80B = 6356752.3141
)

// Helmert parameters, OSGB36 to ETRS89/WGS84.
const (
	helmertTX = 446.448
	helmertTY = -125.157
	helmertTZ = 542.060
	helmertS  = -20.4894e-6

	helmertRXSec = 0.1502
	helmertRYSec = 0.2470
	helmertRZSec = 0.8421
)

const (
	arcTolerance = 1e-5 // metres
	latTolerance = 1e-16
)

// ToWGS84 converts an OSGB36 grid reference to WGS84 latitude/longitude.
// References outside the National Grid return ErrOutsideGrid.
func ToWGS84(g GridPoint) (GeoPoint, error) {
	if math.IsNaN(g.Easting) || math.IsNaN(g.Northing) || math.IsInf(g.Easting, 0) || math.IsInf(g.Northing, 0) {
		return GeoPoint{}, fmt.Errorf("grid point %v: %w", g, ErrNonConvergence)
	}
	if !g.InGrid() {
		return GeoPoint{}, fmt.Errorf("grid point %v: %w", g, ErrOutsideGrid)
	}

	e2 := 1 - (airyB*airyB)/(airyA*airyA)

	lat, err := footpointLatitude(g.Northing)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("meridional arc for northing %.3f: %w", g.Northing, err)
	}

	sinLat := math.Sin(lat)
	tanLat := math.Tan(lat)
	secLat := 1 / math.Cos(lat)

	nu := airyA * gridF0 / math.Sqrt(1-e2*sinLat*sinLat)
	rho := airyA * gridF0 * (1 - e2) * math.Pow(1-e2*sinLat*sinLat, -1.5)
	eta2 := nu/rho - 1

	tan2 := tanLat * tanLat
	tan4 := tan2 * tan2
	tan6 := tan4 * tan2

	vii := tanLat / (2 * rho * nu)
	viii := tanLat / (24 * rho * math.Pow(nu, 3)) * (5 + 3*tan2 + eta2 - 9*tan2*eta2)
	ix := tanLat / (720 * rho * math.Pow(nu, 5)) * (61 + 90*tan2 + 45*tan4)
	x := secLat / nu
	xi := secLat / (6 * math.Pow(nu, 3)) * (nu/rho + 2*tan2)
	xii := secLat / (120 * math.Pow(nu, 5)) * (5 + 28*tan2 + 24*tan4)
	xiia := secLat / (5040 * math.Pow(nu, 7)) * (61 + 662*tan2 + 1320*tan4 + 720*tan6)

	dE := g.Easting - gridE0

	// Still on Airy 1830 here.
	airyLat := lat - vii*math.Pow(dE, 2) + viii*math.Pow(dE, 4) - ix*math.Pow(dE, 6)
	airyLon := gridLon0 + x*dE - xi*math.Pow(dE, 3) + xii*math.Pow(dE, 5) - xiia*math.Pow(dE, 7)

	// Cartesian at height 0 on Airy 1830.
	x1 := (nu / gridF0) * math.Cos(airyLat) * math.Cos(airyLon)
	y1 := (nu / gridF0) * math.Cos(airyLat) * math.Sin(airyLon)
	z1 := ((1 - e2) * nu / gridF0) * math.Sin(airyLat)

	x2, y2, z2 := helmert(x1, y1, z1)

	outLat, outLon, err := cartesianToGRS80(x2, y2, z2)
	if err != nil {
		return GeoPoint{}, fmt.Errorf("grid point %v: %w", g, err)
	}
	return GeoPoint{Lat: degrees(outLat), Lon: degrees(outLon)}, nil
}

// MustToWGS84 is ToWGS84 for callers that treat a failed conversion as a
// broken precondition.
func MustToWGS84(g GridPoint) GeoPoint {
	p, err := ToWGS84(g)
	if err != nil {
		panic(err)
	}
	return p
}

// footpointLatitude solves for the Airy latitude whose meridional arc from the
// true origin matches the northing.
func footpointLatitude(northing float64) (float64, error) {
	n := (airyA - airyB) / (airyA + airyB)
	n2 := n * n
	n3 := n2 * n

	lat, m := gridLat0, 0.0
	for i := 0; ; i++ {
		residual := northing - gridN0 - m
		if math.Abs(residual) < arcTolerance {
			return lat, nil
		}
		if i >= MaxIterations {
			return 0, ErrNonConvergence
		}
		lat += residual / (airyA * gridF0)

		dLat := lat - gridLat0
		sLat := lat + gridLat0
		m1 := (1 + n + 1.25*n2 + 1.25*n3) * dLat
		m2 := (3*n + 3*n2 + (21.0/8)*n3) * math.Sin(dLat) * math.Cos(sLat)
		m3 := ((15.0/8)*n2 + (15.0/8)*n3) * math.Sin(2*dLat) * math.Cos(2*sLat)
		m4 := (35.0 / 24) * n3 * math.Sin(3*dLat) * math.Cos(3*sLat)
		m = airyB * gridF0 * (m1 - m2 + m3 - m4)
	}
}

func helmert(x, y, z float64) (float64, float64, float64) {
	rx := radians(helmertRXSec / 3600)
	ry := radians(helmertRYSec / 3600)
	rz := radians(helmertRZSec / 3600)
	s1 := 1 + helmertS

	return helmertTX + s1*x - rz*y + ry*z,
		helmertTY + rz*x + s1*y - rx*z,
		helmertTZ - ry*x + rx*y + s1*z
}

func cartesianToGRS80(x, y, z float64) (float64, float64, error) {
	e2 := 1 - (grs80B*grs80B)/(grs80A*grs80A)
	p := math.Hypot(x, y)

	lat := math.Atan2(z, p*(1-e2))
	for i := 0; ; i++ {
		if i >= MaxIterations {
			return 0, 0, ErrNonConvergence
		}
		prev := lat
		sinPrev := math.Sin(prev)
		nu := grs80A / math.Sqrt(1-e2*sinPrev*sinPrev)
		lat = math.Atan2(z+e2*nu*sinPrev, p)

		d := math.Abs(lat - prev)
		// Below 1e-16 rad the loop can only flip between adjacent floats.
		if d < latTolerance || d <= 2*ulp(lat) {
			break
		}
	}
	return lat, math.Atan2(y, x), nil
}

func ulp(v float64) float64 {
	return math.Abs(math.Nextafter(v, math.Inf(1)) - v)
}

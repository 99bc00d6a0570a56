package geodesy

import (
	"fmt"
	"math"

	"github.com/paulmach/orb"
)

// GeoPoint is a WGS84 position in decimal degrees.
type GeoPoint struct {
	Lat float64 `json:"latitude"`
	Lon float64 `json:"longitude"`
}

// GridPoint is an OSGB36 national grid reference in metres.
type GridPoint struct {
	Easting  float64 `json:"easting"`
	Northing float64 `json:"northing"`
}

// National Grid extent in metres. References outside it are not on the grid
// and convert to meaningless positions.
const (
	GridMaxEasting  = 700000
	GridMaxNorthing = 1300000
)

// InGrid reports whether the reference lies within the National Grid.
func (g GridPoint) InGrid() bool {
	return g.Easting >= 0 && g.Easting <= GridMaxEasting &&
		g.Northing >= 0 && g.Northing <= GridMaxNorthing
}

// FromOrb converts an orb point (lon, lat order) to a GeoPoint.
func FromOrb(p orb.Point) GeoPoint {
	return GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
}

// Orb returns the point in orb's lon/lat order.
func (p GeoPoint) Orb() orb.Point {
	return orb.Point{p.Lon, p.Lat}
}

// Valid reports whether both components are finite and within range.
func (p GeoPoint) Valid() bool {
	if math.IsNaN(p.Lat) || math.IsNaN(p.Lon) || math.IsInf(p.Lat, 0) || math.IsInf(p.Lon, 0) {
		return false
	}
	return p.Lat >= -90 && p.Lat <= 90 && p.Lon >= -180 && p.Lon <= 180
}

func (p GeoPoint) String() string {
	return fmt.Sprintf("(%.6f, %.6f)", p.Lat, p.Lon)
}

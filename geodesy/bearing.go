package geodesy

import (
	"errors"
	"fmt"
	"math"
)

// ErrInvalidPoint is returned when a point is not a well-formed lat/lon pair.
var ErrInvalidPoint = errors.New("geodesy: invalid geographic point")

// Bearing returns the initial compass bearing in degrees, in [0, 360), of the
// great-circle path from a to b.
//
//	θ = atan2(sin Δlon · cos lat2, cos lat1 · sin lat2 − sin lat1 · cos lat2 · cos Δlon)
func Bearing(a, b GeoPoint) (float64, error) {
	if !a.Valid() {
		return 0, fmt.Errorf("bearing start %s: %w", a, ErrInvalidPoint)
	}
	if !b.Valid() {
		return 0, fmt.Errorf("bearing end %s: %w", b, ErrInvalidPoint)
	}

	lat1 := radians(a.Lat)
	lat2 := radians(b.Lat)
	dLon := radians(b.Lon - a.Lon)

	x := math.Sin(dLon) * math.Cos(lat2)
	y := math.Cos(lat1)*math.Sin(lat2) - math.Sin(lat1)*math.Cos(lat2)*math.Cos(dLon)

	return NormalizeBearing(degrees(math.Atan2(x, y))), nil
}

// NormalizeBearing wraps any angle in degrees into [0, 360).
func NormalizeBearing(deg float64) float64 {
	b := math.Mod(deg+360, 360)
	if b < 0 {
		b += 360
	}
	if b >= 360 {
		b -= 360
	}
	return b
}

// Reverse returns the opposite bearing.
func Reverse(deg float64) float64 {
	return NormalizeBearing(deg + 180)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }

func degrees(rad float64) float64 { return rad * 180 / math.Pi }

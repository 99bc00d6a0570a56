package geodesy

// Octant is a coarse compass direction label.
type Octant string

const (
	North     Octant = "N"
	NorthEast Octant = "NE"
	East      Octant = "E"
	SouthEast Octant = "SE"
	South     Octant = "S"
	SouthWest Octant = "SW"
	West      Octant = "W"
	NorthWest Octant = "NW"

	// OctantUnknown labels sensors that have no bearing.
	OctantUnknown Octant = "Unknown"
)

type octantRange struct {
	lo, hi float64
	octant Octant
}

// Bounds are exclusive at both ends. A bearing exactly on a boundary
// (22.5, 67.5, ...) matches no range and falls through to North.
var octantRanges = []octantRange{
	{22.5, 67.5, NorthEast},
	{67.5, 112.5, East},
	{112.5, 157.5, SouthEast},
	{157.5, 202.5, South},
	{202.5, 247.5, SouthWest},
	{247.5, 292.5, West},
	{292.5, 337.5, NorthWest},
}

// Classify maps a bearing in degrees to its compass octant.
func Classify(bearing float64) Octant {
	for _, r := range octantRanges {
		if bearing > r.lo && bearing < r.hi {
			return r.octant
		}
	}
	return North
}

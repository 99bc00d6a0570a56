package lanes

import (
	"github.com/theoremus-urban-solutions/utmc-sensors/geodesy"
)

// LaneTags holds the lane tags as declared on a way. Nil means the tag was
// absent or unparseable.
type LaneTags struct {
	Lanes    *int
	Forward  *int
	Backward *int
	OneWay   bool
}

// Way is one road segment carrying sensor references.
type Way struct {
	ID        int64
	StartNode int64
	EndNode   int64

	// Start and End are nil when the endpoint node could not be found.
	Start *geodesy.GeoPoint
	End   *geodesy.GeoPoint

	Tags      LaneTags
	SensorRef string
	RoadName  string
}

// LaneConfig is the lane layout inferred from LaneTags.
type LaneConfig struct {
	Total    int
	Forward  int
	Backward int
	OneWay   bool
}

// Resolution records how a channel's lane data was derived.
type Resolution int

const (
	// Resolved channels come from ways whose token count matched the
	// declared lane count.
	Resolved Resolution = iota
	// Approximated channels come from the mismatch heuristic. Their bearing
	// is a guess and their lanes are unknown.
	Approximated
)

func (r Resolution) String() string {
	switch r {
	case Resolved:
		return "resolved"
	case Approximated:
		return "approximated"
	default:
		return "unknown"
	}
}

// LaneAssignment lists the lanes a sensor covers in one direction.
type LaneAssignment struct {
	Covered int   `json:"covered"`
	Numbers []int `json:"numbers"` // 1-based, strictly increasing
	Total   int   `json:"total"`   // lanes in the sensor's direction
}

// Channel is everything known about one sensor channel.
type Channel struct {
	ID         string
	WayID      int64
	Bearing    float64
	Lanes      *LaneAssignment // nil when unknown
	Resolution Resolution
}

// LastLane returns the highest lane number recorded, or -1 when unknown.
func (c *Channel) LastLane() int {
	if c.Lanes == nil || len(c.Lanes.Numbers) == 0 {
		return -1
	}
	return c.Lanes.Numbers[len(c.Lanes.Numbers)-1]
}

// Mismatch describes a way whose sensor tokens disagree with its lane count.
type Mismatch struct {
	WayID         int64
	RoadName      string
	SensorRef     string
	Tokens        int
	DeclaredLanes int
}

// Diagnostics counts what the resolver skipped or approximated.
type Diagnostics struct {
	WaysSeen        int
	UnresolvedWays  int
	EmptySensorRefs int
	Mismatches      []Mismatch
}

// Result is the output of a resolver run.
type Result struct {
	Lookup      Lookup
	Diagnostics Diagnostics
}

package formatter

import (
	"github.com/theoremus-urban-solutions/utmc-sensors/geodesy"
	"github.com/theoremus-urban-solutions/utmc-sensors/lanes"
	"github.com/theoremus-urban-solutions/utmc-sensors/snapshot"
)

// Unknown is written in place of any integer the feed cannot supply.
const Unknown = -1

// ChannelRecord is one entry of the published channel lookup.
type ChannelRecord struct {
	WayID        int64   `json:"OSM Way ID"`
	Bearing      float64 `json:"Sensor bearing"`
	LanesCovered int     `json:"Lanes covered"`
	LaneNumbers  []int   `json:"Lane numbers"`
	TotalLanes   int     `json:"Total lanes"`
}

// SnapshotRecord is one entry of the published sensor snapshot.
type SnapshotRecord struct {
	Location     string  `json:"Location"`
	Flow         int     `json:"Traffic flow"`
	Latitude     float64 `json:"Latitude"`
	Longitude    float64 `json:"Longitude"`
	Bearing      int     `json:"Sensor bearing"`
	Compass      string  `json:"Compass direction"`
	WayID        int64   `json:"OSM Way ID"`
	LanesCovered int     `json:"Lanes covered"`
	LaneNumbers  []int   `json:"Lane numbers"`
	TotalLanes   int     `json:"Total lanes"`
}

func laneFields(a *lanes.LaneAssignment) (covered int, numbers []int, total int) {
	if a == nil {
		return Unknown, []int{Unknown}, Unknown
	}
	return a.Covered, append([]int(nil), a.Numbers...), a.Total
}

func laneAssignment(covered int, numbers []int, total int) *lanes.LaneAssignment {
	if covered < 0 || len(numbers) == 0 || numbers[0] < 0 {
		return nil
	}
	return &lanes.LaneAssignment{
		Covered: covered,
		Numbers: append([]int(nil), numbers...),
		Total:   total,
	}
}

// NewChannelRecord flattens a channel into its wire form.
func NewChannelRecord(c *lanes.Channel) ChannelRecord {
	covered, numbers, total := laneFields(c.Lanes)
	return ChannelRecord{
		WayID:        c.WayID,
		Bearing:      c.Bearing,
		LanesCovered: covered,
		LaneNumbers:  numbers,
		TotalLanes:   total,
	}
}

// Channel rebuilds a channel from its wire form. Entries with unknown lanes
// can only have come from the mismatch heuristic.
func (r ChannelRecord) Channel(id string) *lanes.Channel {
	c := &lanes.Channel{
		ID:      id,
		WayID:   r.WayID,
		Bearing: r.Bearing,
		Lanes:   laneAssignment(r.LanesCovered, r.LaneNumbers, r.TotalLanes),
	}
	if c.Lanes == nil {
		c.Resolution = lanes.Approximated
	}
	return c
}

// NewSnapshotRecord flattens a snapshot into its wire form. The bearing is
// truncated to whole degrees.
func NewSnapshotRecord(s snapshot.Snapshot) SnapshotRecord {
	rec := SnapshotRecord{
		Location:  s.Location,
		Flow:      s.Flow,
		Latitude:  s.Position.Lat,
		Longitude: s.Position.Lon,
	}
	if s.Direction == nil {
		rec.Bearing = Unknown
		rec.Compass = string(geodesy.OctantUnknown)
		rec.WayID = Unknown
		rec.LanesCovered, rec.LaneNumbers, rec.TotalLanes = laneFields(nil)
		return rec
	}
	rec.Bearing = int(s.Direction.Bearing)
	rec.Compass = string(s.Direction.Octant)
	rec.WayID = s.Direction.WayID
	rec.LanesCovered, rec.LaneNumbers, rec.TotalLanes = laneFields(s.Direction.Lanes)
	return rec
}

// Snapshot rebuilds a snapshot from its wire form.
func (r SnapshotRecord) Snapshot(id string) snapshot.Snapshot {
	s := snapshot.Snapshot{
		ChannelID: id,
		Location:  r.Location,
		Flow:      r.Flow,
		Position:  geodesy.GeoPoint{Lat: r.Latitude, Lon: r.Longitude},
	}
	if r.Compass == string(geodesy.OctantUnknown) || r.Compass == "" {
		return s
	}
	d := &snapshot.Direction{
		Bearing: float64(r.Bearing),
		Octant:  geodesy.Octant(r.Compass),
		WayID:   r.WayID,
		Lanes:   laneAssignment(r.LanesCovered, r.LaneNumbers, r.TotalLanes),
	}
	if d.Lanes == nil {
		d.Resolution = lanes.Approximated
	}
	s.Direction = d
	return s
}

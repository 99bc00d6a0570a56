package lanes

import "sort"

// Lookup maps sensor channel numbers to their channel data.
type Lookup map[string]*Channel

// IDs returns the channel ids in sorted order.
func (l Lookup) IDs() []string {
	ids := make([]string, 0, len(l))
	for id := range l {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Get returns the channel for id.
func (l Lookup) Get(id string) (*Channel, bool) {
	c, ok := l[id]
	return c, ok
}

// CountByResolution returns how many channels were resolved and approximated.
func (l Lookup) CountByResolution() (resolved, approximated int) {
	for _, c := range l {
		if c.Resolution == Approximated {
			approximated++
		} else {
			resolved++
		}
	}
	return resolved, approximated
}

// mergeLane folds one resolved lane observation into the lookup.
//
// A new channel starts with that lane. A resolved channel gains the lane only
// if it lies beyond the highest lane already recorded, so Numbers stays
// strictly increasing. An approximated channel is replaced outright.
func (l Lookup) mergeLane(id string, wayID int64, bearing float64, laneIndex, dirTotal int) {
	existing, ok := l[id]
	if ok && existing.Resolution == Resolved && existing.Lanes != nil {
		if existing.LastLane() <= laneIndex {
			existing.Lanes.Numbers = append(existing.Lanes.Numbers, laneIndex+1)
			existing.Lanes.Covered++
		}
		return
	}
	l[id] = &Channel{
		ID:      id,
		WayID:   wayID,
		Bearing: bearing,
		Lanes: &LaneAssignment{
			Covered: 1,
			Numbers: []int{laneIndex + 1},
			Total:   dirTotal,
		},
		Resolution: Resolved,
	}
}

// mergeApproximate records a channel seen only through the mismatch
// heuristic. Any existing entry wins, so the first way to mention a channel
// keeps it.
func (l Lookup) mergeApproximate(id string, wayID int64, bearing float64) {
	if _, ok := l[id]; ok {
		return
	}
	l[id] = &Channel{
		ID:         id,
		WayID:      wayID,
		Bearing:    bearing,
		Resolution: Approximated,
	}
}

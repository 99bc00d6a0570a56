package lanes

import (
	"math"
	"reflect"
	"testing"

	"github.com/theoremus-urban-solutions/utmc-sensors/geodesy"
)

func intp(v int) *int { return &v }

// northbound returns a way drawn due north, so its forward bearing is 0 and
// its backward bearing 180.
func northbound(id int64, ref string, tags LaneTags) Way {
	return Way{
		ID:        id,
		StartNode: id * 10,
		EndNode:   id*10 + 1,
		Start:     &geodesy.GeoPoint{Lat: 52.48, Lon: -1.90},
		End:       &geodesy.GeoPoint{Lat: 52.49, Lon: -1.90},
		Tags:      tags,
		SensorRef: ref,
		RoadName:  "Test Road",
	}
}

func TestInferLaneConfig(t *testing.T) {
	tests := []struct {
		name     string
		tags     LaneTags
		expected LaneConfig
	}{
		{
			name:     "nothing declared, two way",
			tags:     LaneTags{},
			expected: LaneConfig{Total: 2, Forward: 1, Backward: 1},
		},
		{
			name:     "nothing declared, one way",
			tags:     LaneTags{OneWay: true},
			expected: LaneConfig{Total: 1, Forward: 1, Backward: 0, OneWay: true},
		},
		{
			name:     "one way with lane count",
			tags:     LaneTags{Lanes: intp(3), OneWay: true},
			expected: LaneConfig{Total: 3, Forward: 3, Backward: 0, OneWay: true},
		},
		{
			name:     "odd total splits remainder backward",
			tags:     LaneTags{Lanes: intp(3)},
			expected: LaneConfig{Total: 3, Forward: 1, Backward: 2},
		},
		{
			name:     "forward declared",
			tags:     LaneTags{Lanes: intp(5), Forward: intp(3)},
			expected: LaneConfig{Total: 5, Forward: 3, Backward: 2},
		},
		{
			name:     "backward declared",
			tags:     LaneTags{Lanes: intp(5), Backward: intp(1)},
			expected: LaneConfig{Total: 5, Forward: 4, Backward: 1},
		},
		{
			name:     "both declared",
			tags:     LaneTags{Lanes: intp(4), Forward: intp(1), Backward: intp(3)},
			expected: LaneConfig{Total: 4, Forward: 1, Backward: 3},
		},
		{
			name:     "contradictory forward clamps backward at zero",
			tags:     LaneTags{Lanes: intp(2), Forward: intp(3)},
			expected: LaneConfig{Total: 2, Forward: 3, Backward: 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := InferLaneConfig(tt.tags)
			if got != tt.expected {
				t.Errorf("expected %+v, got %+v", tt.expected, got)
			}
		})
	}
}

func TestSplitSensorRef(t *testing.T) {
	tests := []struct {
		in       string
		expected []string
	}{
		{"", nil},
		{"   ", nil},
		{"A", []string{"A"}},
		{"A|B|no|C", []string{"A", "B", "no", "C"}},
		{"A||C", []string{"A", "no", "C"}},
		{" A | B ", []string{"A", "B"}},
	}
	for _, tt := range tests {
		got := SplitSensorRef(tt.in)
		if !reflect.DeepEqual(got, tt.expected) {
			t.Errorf("SplitSensorRef(%q): expected %v, got %v", tt.in, tt.expected, got)
		}
	}
}

func assertChannel(t *testing.T, l Lookup, id string, wayID int64, bearing float64, numbers []int, total int) {
	t.Helper()
	c, ok := l[id]
	if !ok {
		t.Fatalf("channel %s missing", id)
	}
	if c.Resolution != Resolved {
		t.Errorf("channel %s: expected resolved, got %s", id, c.Resolution)
	}
	if c.WayID != wayID {
		t.Errorf("channel %s: expected way %d, got %d", id, wayID, c.WayID)
	}
	if math.Abs(c.Bearing-bearing) > 1e-9 {
		t.Errorf("channel %s: expected bearing %v, got %v", id, bearing, c.Bearing)
	}
	if c.Lanes == nil {
		t.Fatalf("channel %s: lanes unknown", id)
	}
	if !reflect.DeepEqual(c.Lanes.Numbers, numbers) {
		t.Errorf("channel %s: expected lane numbers %v, got %v", id, numbers, c.Lanes.Numbers)
	}
	if c.Lanes.Covered != len(numbers) {
		t.Errorf("channel %s: expected %d lanes covered, got %d", id, len(numbers), c.Lanes.Covered)
	}
	if c.Lanes.Total != total {
		t.Errorf("channel %s: expected total %d, got %d", id, total, c.Lanes.Total)
	}
}

func TestResolve_CountMatch(t *testing.T) {
	w := northbound(1, "A|B|no|C", LaneTags{Lanes: intp(4), Forward: intp(2), Backward: intp(2)})
	res := Resolve([]Way{w})

	if len(res.Lookup) != 3 {
		t.Fatalf("expected 3 channels, got %d", len(res.Lookup))
	}
	assertChannel(t, res.Lookup, "A", 1, 0, []int{1}, 2)
	assertChannel(t, res.Lookup, "B", 1, 0, []int{2}, 2)
	// Backward lane 2 reads the last token.
	assertChannel(t, res.Lookup, "C", 1, 180, []int{2}, 2)

	if len(res.Diagnostics.Mismatches) != 0 {
		t.Errorf("expected no mismatches, got %v", res.Diagnostics.Mismatches)
	}
}

func TestResolve_SensorSpanningLanes(t *testing.T) {
	w := northbound(1, "A|A|B|B", LaneTags{Lanes: intp(4)})
	res := Resolve([]Way{w})

	assertChannel(t, res.Lookup, "A", 1, 0, []int{1, 2}, 2)
	assertChannel(t, res.Lookup, "B", 1, 180, []int{1, 2}, 2)
}

func TestResolve_OneWay(t *testing.T) {
	w := northbound(7, "X|no|Y", LaneTags{Lanes: intp(3), OneWay: true})
	res := Resolve([]Way{w})

	assertChannel(t, res.Lookup, "X", 7, 0, []int{1}, 3)
	assertChannel(t, res.Lookup, "Y", 7, 0, []int{3}, 3)
}

func TestResolve_MergesAcrossWays(t *testing.T) {
	first := northbound(1, "A|no", LaneTags{})
	second := northbound(2, "no|A|no|no", LaneTags{Lanes: intp(4)})
	third := northbound(3, "A|no", LaneTags{})

	res := Resolve([]Way{first, second, third})

	// Way 2 adds lane 2; way 3 repeats lane 1 and is ignored.
	assertChannel(t, res.Lookup, "A", 1, 0, []int{1, 2}, 1)
}

func TestResolve_CountMismatch(t *testing.T) {
	tests := []struct {
		name     string
		ref      string
		tags     LaneTags
		bearings map[string]float64
	}{
		{
			name:     "value change flips",
			ref:      "A|A|B",
			tags:     LaneTags{},
			bearings: map[string]float64{"A": 0, "B": 180},
		},
		{
			name:     "each change flips again",
			ref:      "A|no|B|C",
			tags:     LaneTags{Lanes: intp(2)},
			bearings: map[string]float64{"A": 0, "B": 180, "C": 0},
		},
		{
			name:     "leading no does not flip",
			ref:      "no|A",
			tags:     LaneTags{Lanes: intp(3)},
			bearings: map[string]float64{"A": 0},
		},
		{
			name:     "returning value keeps first bearing",
			ref:      "A|B|A",
			tags:     LaneTags{Lanes: intp(2)},
			bearings: map[string]float64{"A": 0, "B": 180},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Resolve([]Way{northbound(9, tt.ref, tt.tags)})

			if len(res.Diagnostics.Mismatches) != 1 {
				t.Fatalf("expected 1 mismatch, got %d", len(res.Diagnostics.Mismatches))
			}
			if len(res.Lookup) != len(tt.bearings) {
				t.Fatalf("expected %d channels, got %d", len(tt.bearings), len(res.Lookup))
			}
			for id, want := range tt.bearings {
				c := res.Lookup[id]
				if c == nil {
					t.Fatalf("channel %s missing", id)
				}
				if c.Resolution != Approximated {
					t.Errorf("channel %s: expected approximated", id)
				}
				if c.Lanes != nil {
					t.Errorf("channel %s: expected unknown lanes, got %+v", id, c.Lanes)
				}
				if c.LastLane() != -1 {
					t.Errorf("channel %s: expected LastLane -1, got %d", id, c.LastLane())
				}
				if c.Bearing != want {
					t.Errorf("channel %s: expected bearing %v, got %v", id, want, c.Bearing)
				}
			}
		})
	}
}

func TestResolve_ResolvedReplacesApproximated(t *testing.T) {
	approx := northbound(1, "A|A|A", LaneTags{})
	resolved := northbound(2, "no|A", LaneTags{})

	res := Resolve([]Way{approx, resolved})
	assertChannel(t, res.Lookup, "A", 2, 180, []int{1}, 1)

	res = Resolve([]Way{resolved, approx})
	assertChannel(t, res.Lookup, "A", 2, 180, []int{1}, 1)

	resolvedCount, approxCount := res.Lookup.CountByResolution()
	if resolvedCount != 1 || approxCount != 0 {
		t.Errorf("expected 1 resolved and 0 approximated, got %d and %d", resolvedCount, approxCount)
	}
}

func TestResolve_SkipsUnresolvedGeometry(t *testing.T) {
	missing := northbound(1, "A|B", LaneTags{})
	missing.End = nil

	invalid := northbound(2, "C|D", LaneTags{})
	invalid.Start = &geodesy.GeoPoint{Lat: math.NaN(), Lon: 0}

	ok := northbound(3, "E|F", LaneTags{})

	res := Resolve([]Way{missing, invalid, ok})

	if res.Diagnostics.WaysSeen != 3 {
		t.Errorf("expected 3 ways seen, got %d", res.Diagnostics.WaysSeen)
	}
	if res.Diagnostics.UnresolvedWays != 2 {
		t.Errorf("expected 2 unresolved ways, got %d", res.Diagnostics.UnresolvedWays)
	}
	if got := res.Lookup.IDs(); !reflect.DeepEqual(got, []string{"E", "F"}) {
		t.Errorf("expected channels [E F], got %v", got)
	}
}

func TestResolve_EmptySensorRef(t *testing.T) {
	res := Resolve([]Way{
		northbound(1, "", LaneTags{}),
		northbound(2, "no|no", LaneTags{}),
	})
	if len(res.Lookup) != 0 {
		t.Errorf("expected empty lookup, got %d channels", len(res.Lookup))
	}
	if res.Diagnostics.EmptySensorRefs != 2 {
		t.Errorf("expected 2 empty refs, got %d", res.Diagnostics.EmptySensorRefs)
	}
}

func TestResolve_Idempotent(t *testing.T) {
	ways := []Way{
		northbound(1, "A|B|no|C", LaneTags{Lanes: intp(4)}),
		northbound(2, "C|C|D", LaneTags{}),
		northbound(3, "no|A", LaneTags{}),
	}
	a := Resolve(ways)
	b := Resolve(ways)
	if !reflect.DeepEqual(a.Lookup, b.Lookup) {
		t.Error("expected identical lookups from identical input")
	}
	if !reflect.DeepEqual(a.Lookup.IDs(), []string{"A", "B", "C", "D"}) {
		t.Errorf("unexpected ids %v", a.Lookup.IDs())
	}
}

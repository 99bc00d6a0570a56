// Package snapshot joins live flow readings with the sensor channel lookup to
// produce the current state of every working detector.
package snapshot

import (
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/theoremus-urban-solutions/utmc-sensors/flow"
	"github.com/theoremus-urban-solutions/utmc-sensors/geodesy"
	"github.com/theoremus-urban-solutions/utmc-sensors/lanes"
)

// DefaultMaxAge is how old a reading may be before it is dropped.
const DefaultMaxAge = 24 * time.Hour

// Locator finds a sensor's position when its reading has no grid reference.
type Locator interface {
	Locate(channelID string) (geodesy.GeoPoint, bool)
}

// Direction is the lookup data attached to a snapshot.
type Direction struct {
	Bearing    float64
	Octant     geodesy.Octant
	WayID      int64
	Lanes      *lanes.LaneAssignment // nil when unknown
	Resolution lanes.Resolution
}

// Snapshot is the current state of one detector.
type Snapshot struct {
	ChannelID string
	Location  string
	Flow      int
	Position  geodesy.GeoPoint
	Direction *Direction // nil when the channel is not in the lookup
}

// Stats counts what happened to each reading.
type Stats struct {
	Readings int
	Working  int // fresh readings
	Stale    int
	Unfound  int // fresh but no position
	Unknown  int // emitted without direction
}

// Result is the output of Build.
type Result struct {
	Snapshots []Snapshot // sorted by channel id
	Stats     Stats
}

// Builder turns readings into snapshots.
type Builder struct {
	MaxAge time.Duration
	logger *slog.Logger
}

// NewBuilder returns a builder with DefaultMaxAge.
func NewBuilder() *Builder {
	return &Builder{MaxAge: DefaultMaxAge, logger: slog.Default()}
}

// WithLogger sets the logger used for the summary line.
func (b *Builder) WithLogger(l *slog.Logger) *Builder {
	if l != nil {
		b.logger = l
	}
	return b
}

// Build produces one snapshot per channel with a fresh, locatable reading.
// A reading is stale once it is MaxAge or more older than asOf. Readings
// without a grid reference are placed through loc. Readings whose grid
// reference lies outside the National Grid count as unfound. When a channel
// has several fresh readings the newest is kept.
//
// The only error is geodesy.ErrNonConvergence from a grid conversion.
func (b *Builder) Build(readings []flow.Reading, lookup lanes.Lookup, loc Locator, asOf time.Time) (Result, error) {
	maxAge := b.MaxAge
	if maxAge <= 0 {
		maxAge = DefaultMaxAge
	}
	cutoff := asOf.Add(-maxAge)

	var stats Stats
	byChannel := map[string]Snapshot{}
	newest := map[string]time.Time{}

	for _, r := range readings {
		stats.Readings++
		if !r.Timestamp.After(cutoff) {
			stats.Stale++
			continue
		}
		stats.Working++

		pos, ok, err := b.position(r, loc)
		if err != nil {
			return Result{}, fmt.Errorf("channel %s: %w", r.ChannelID, err)
		}
		if !ok {
			stats.Unfound++
			continue
		}

		if prev, seen := newest[r.ChannelID]; seen && !r.Timestamp.After(prev) {
			continue
		}
		newest[r.ChannelID] = r.Timestamp
		byChannel[r.ChannelID] = Snapshot{
			ChannelID: r.ChannelID,
			Location:  r.Location,
			Flow:      r.Flow,
			Position:  pos,
			Direction: direction(lookup, r.ChannelID),
		}
	}

	out := make([]Snapshot, 0, len(byChannel))
	for _, s := range byChannel {
		if s.Direction == nil {
			stats.Unknown++
		}
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })

	b.logger.Info("built sensor snapshot",
		"working_detectors", stats.Working,
		"unfound_coordinates", stats.Unfound,
		"stale", stats.Stale,
		"without_bearing", stats.Unknown,
		"emitted", len(out))

	return Result{Snapshots: out, Stats: stats}, nil
}

func (b *Builder) position(r flow.Reading, loc Locator) (geodesy.GeoPoint, bool, error) {
	if r.HasGrid() {
		if !r.Grid.InGrid() {
			b.logger.Debug("grid reference outside the National Grid", "channel", r.ChannelID, "grid", r.Grid)
			return geodesy.GeoPoint{}, false, nil
		}
		p, err := geodesy.ToWGS84(r.Grid)
		if err != nil {
			return geodesy.GeoPoint{}, false, err
		}
		return p, p.Valid(), nil
	}
	if loc == nil {
		return geodesy.GeoPoint{}, false, nil
	}
	p, ok := loc.Locate(r.ChannelID)
	if !ok || !p.Valid() {
		return geodesy.GeoPoint{}, false, nil
	}
	return p, true, nil
}

func direction(lookup lanes.Lookup, id string) *Direction {
	c, ok := lookup.Get(id)
	if !ok {
		return nil
	}
	return &Direction{
		Bearing:    c.Bearing,
		Octant:     geodesy.Classify(c.Bearing),
		WayID:      c.WayID,
		Lanes:      c.Lanes,
		Resolution: c.Resolution,
	}
}

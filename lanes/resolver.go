package lanes

import (
	"log/slog"
	"strings"

	"github.com/theoremus-urban-solutions/utmc-sensors/geodesy"
)

// NoSensor is the token for a lane without a sensor.
const NoSensor = "no"

// Resolver builds a Lookup from ways. It is not safe for concurrent use.
type Resolver struct {
	lookup Lookup
	diag   Diagnostics
	logger *slog.Logger
}

// NewResolver returns an empty resolver logging through slog.Default.
func NewResolver() *Resolver {
	return &Resolver{lookup: Lookup{}, logger: slog.Default()}
}

// WithLogger sets the logger used for diagnostics.
func (r *Resolver) WithLogger(l *slog.Logger) *Resolver {
	if l != nil {
		r.logger = l
	}
	return r
}

// Resolve runs a fresh resolver over ways.
func Resolve(ways []Way) Result {
	r := NewResolver()
	for _, w := range ways {
		r.Add(w)
	}
	return r.Result()
}

// Result returns the lookup and diagnostics gathered so far. The lookup is
// shared with the resolver; stop calling Add once it is handed out.
func (r *Resolver) Result() Result {
	return Result{Lookup: r.lookup, Diagnostics: r.diag}
}

// Add folds one way into the lookup.
func (r *Resolver) Add(w Way) {
	r.diag.WaysSeen++

	if w.Start == nil || w.End == nil {
		r.diag.UnresolvedWays++
		r.logger.Debug("skipping way with unresolved endpoints", "way", w.ID, "start_node", w.StartNode, "end_node", w.EndNode)
		return
	}
	bearing, err := geodesy.Bearing(*w.Start, *w.End)
	if err != nil {
		r.diag.UnresolvedWays++
		r.logger.Debug("skipping way with invalid endpoints", "way", w.ID, "err", err)
		return
	}

	tokens := SplitSensorRef(w.SensorRef)
	if !hasSensor(tokens) {
		r.diag.EmptySensorRefs++
		return
	}

	cfg := InferLaneConfig(w.Tags)
	if len(tokens) != cfg.Total {
		r.diag.Mismatches = append(r.diag.Mismatches, Mismatch{
			WayID:         w.ID,
			RoadName:      w.RoadName,
			SensorRef:     w.SensorRef,
			Tokens:        len(tokens),
			DeclaredLanes: cfg.Total,
		})
		r.logger.Warn("lane count mismatch, approximating sensor bearings",
			"way", w.ID, "road", w.RoadName, "sensor_ref", w.SensorRef,
			"tokens", len(tokens), "lanes", cfg.Total)
		r.approximate(w.ID, bearing, tokens)
		return
	}

	r.resolveLanes(w.ID, bearing, tokens, cfg)
}

// resolveLanes handles ways whose tokens line up with the lane count.
// Forward lanes are read from the head of the token list, backward lanes
// from its tail, each numbered from 1 in its own direction.
func (r *Resolver) resolveLanes(wayID int64, bearing float64, tokens []string, cfg LaneConfig) {
	for i := 0; i < cfg.Forward && i < len(tokens); i++ {
		if tok := tokens[i]; tok != NoSensor {
			r.lookup.mergeLane(tok, wayID, bearing, i, cfg.Forward)
		}
	}

	back := geodesy.Reverse(bearing)
	for i := 0; i < cfg.Backward; i++ {
		pos := cfg.Total - (cfg.Backward - i)
		if pos < 0 || pos >= len(tokens) {
			continue
		}
		if tok := tokens[pos]; tok != NoSensor {
			r.lookup.mergeLane(tok, wayID, back, i, cfg.Backward)
		}
	}
}

// approximate guesses bearings when the lane layout can't be trusted. The
// direction flips whenever a sensor value differs from the token before it,
// once any sensor has been seen; each value is registered the first time it
// appears.
func (r *Resolver) approximate(wayID int64, bearing float64, tokens []string) {
	seen := map[string]bool{}
	last := ""
	for _, tok := range tokens {
		if tok == NoSensor {
			if last != "" {
				last = NoSensor
			}
			continue
		}
		if last != "" && tok != last {
			bearing = geodesy.Reverse(bearing)
		}
		last = tok
		if !seen[tok] {
			seen[tok] = true
			r.lookup.mergeApproximate(tok, wayID, bearing)
		}
	}
}

// SplitSensorRef splits a sensor_ref:lanes value into per-lane tokens.
// Blank tokens are normalised to NoSensor so they keep their lane slot.
func SplitSensorRef(ref string) []string {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil
	}
	parts := strings.Split(ref, "|")
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			p = NoSensor
		}
		parts[i] = p
	}
	return parts
}

func hasSensor(tokens []string) bool {
	for _, t := range tokens {
		if t != NoSensor {
			return true
		}
	}
	return false
}

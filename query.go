package utmcsensors

import (
	"encoding/json"
	"strings"

	"github.com/theoremus-urban-solutions/utmc-sensors/geodesy"
	"github.com/theoremus-urban-solutions/utmc-sensors/lanes"
	"github.com/theoremus-urban-solutions/utmc-sensors/snapshot"
)

type QueryError struct{ Msg string }

func (e *QueryError) Error() string { return e.Msg }

// sensorQuery holds the optional filters accepted by the sensor endpoints.
type sensorQuery struct {
	channels   map[string]bool
	resolution *lanes.Resolution
	octant     geodesy.Octant
}

var octants = []geodesy.Octant{
	geodesy.North, geodesy.NorthEast, geodesy.East, geodesy.SouthEast,
	geodesy.South, geodesy.SouthWest, geodesy.West, geodesy.NorthWest,
	geodesy.OctantUnknown,
}

func parseChannelList(s string) map[string]bool {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	out := map[string]bool{}
	for _, id := range strings.Split(s, ",") {
		if id = strings.TrimSpace(id); id != "" {
			out[id] = true
		}
	}
	return out
}

func parseResolution(s string) (*lanes.Resolution, error) {
	var r lanes.Resolution
	switch lower(strings.TrimSpace(s)) {
	case "":
		return nil, nil
	case "resolved":
		r = lanes.Resolved
	case "approximated":
		r = lanes.Approximated
	default:
		return nil, &QueryError{Msg: "Resolution must be either resolved or approximated."}
	}
	return &r, nil
}

func parseOctant(s string) (geodesy.Octant, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", nil
	}
	for _, o := range octants {
		if strings.EqualFold(s, string(o)) {
			return o, nil
		}
	}
	return "", &QueryError{Msg: "No such compass direction: " + s}
}

// parseSensorQuery reads scn, resolution and direction. Keys are case
// insensitive.
func parseSensorQuery(params map[string]string) (sensorQuery, error) {
	m := map[string]string{}
	for k, v := range params {
		m[lower(k)] = v
	}
	var q sensorQuery
	var err error
	q.channels = parseChannelList(m["scn"])
	if q.resolution, err = parseResolution(m["resolution"]); err != nil {
		return q, err
	}
	if q.octant, err = parseOctant(m["direction"]); err != nil {
		return q, err
	}
	return q, nil
}

func (q sensorQuery) keepChannel(c *lanes.Channel) bool {
	if q.channels != nil && !q.channels[c.ID] {
		return false
	}
	if q.resolution != nil && c.Resolution != *q.resolution {
		return false
	}
	if q.octant != "" && geodesy.Classify(c.Bearing) != q.octant {
		return false
	}
	return true
}

func (q sensorQuery) filterLookup(l lanes.Lookup) lanes.Lookup {
	if q.channels == nil && q.resolution == nil && q.octant == "" {
		return l
	}
	out := lanes.Lookup{}
	for id, c := range l {
		if q.keepChannel(c) {
			out[id] = c
		}
	}
	return out
}

func (q sensorQuery) filterSnapshots(snaps []snapshot.Snapshot) []snapshot.Snapshot {
	if q.channels == nil && q.resolution == nil && q.octant == "" {
		return snaps
	}
	out := make([]snapshot.Snapshot, 0, len(snaps))
	for _, s := range snaps {
		if q.channels != nil && !q.channels[s.ChannelID] {
			continue
		}
		d := s.Direction
		if q.resolution != nil && (d == nil || d.Resolution != *q.resolution) {
			continue
		}
		if q.octant != "" {
			o := geodesy.OctantUnknown
			if d != nil {
				o = d.Octant
			}
			if o != q.octant {
				continue
			}
		}
		out = append(out, s)
	}
	return out
}

func buildErrorPayload(format, msg string) []byte {
	if format == "xml" {
		return []byte("<Error><Description>" + xmlEscape(msg) + "</Description></Error>")
	}
	type errorCondition struct {
		Error struct {
			Description string `json:"Description"`
		} `json:"Error"`
	}
	var e errorCondition
	e.Error.Description = msg
	b, _ := json.Marshal(e)
	return b
}

func lower(s string) string {
	return strings.ToLower(s)
}

func xmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;", "\"", "&quot;", "'", "&apos;")
	return r.Replace(s)
}

// Package osmgraph reads OpenStreetMap XML (as returned by the Overpass XAPI)
// and turns it into the inputs the lane resolver and snapshot builder need.
package osmgraph

import (
	"encoding/xml"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/osm"

	"github.com/theoremus-urban-solutions/utmc-sensors/geodesy"
	"github.com/theoremus-urban-solutions/utmc-sensors/lanes"
)

// OSM tag keys read by this package.
const (
	TagSensorRefLanes = "sensor_ref:lanes"
	TagLanes          = "lanes"
	TagLanesForward   = "lanes:forward"
	TagLanesBackward  = "lanes:backward"
	TagOneWay         = "oneway"
	TagName           = "name"
	TagTrafficSensor  = "traffic:sensor:ref"
)

// Graph is a decoded OSM document with its nodes indexed by id.
type Graph struct {
	nodes     map[osm.NodeID]*osm.Node
	nodeOrder osm.Nodes
	ways      osm.Ways
}

// Parse decodes an OSM XML document.
func Parse(r io.Reader) (*Graph, error) {
	var doc osm.OSM
	if err := xml.NewDecoder(r).Decode(&doc); err != nil {
		return nil, fmt.Errorf("failed to decode OSM XML: %w", err)
	}
	g := &Graph{
		nodes:     make(map[osm.NodeID]*osm.Node, len(doc.Nodes)),
		nodeOrder: doc.Nodes,
		ways:      doc.Ways,
	}
	for _, n := range doc.Nodes {
		g.nodes[n.ID] = n
	}
	return g, nil
}

// NodeCount returns the number of nodes in the graph.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// WayCount returns the number of ways in the graph.
func (g *Graph) WayCount() int { return len(g.ways) }

// SensorWays returns every way tagged with sensor_ref:lanes, in document
// order, with endpoints resolved against the graph's nodes.
func (g *Graph) SensorWays() []lanes.Way {
	out := make([]lanes.Way, 0, len(g.ways))
	for _, w := range g.ways {
		if !w.Tags.HasTag(TagSensorRefLanes) || len(w.Nodes) == 0 {
			continue
		}
		first := w.Nodes[0]
		last := w.Nodes[len(w.Nodes)-1]
		out = append(out, lanes.Way{
			ID:        int64(w.ID),
			StartNode: int64(first.ID),
			EndNode:   int64(last.ID),
			Start:     g.position(first),
			End:       g.position(last),
			Tags:      laneTags(w.Tags),
			SensorRef: w.Tags.Find(TagSensorRefLanes),
			RoadName:  w.Tags.Find(TagName),
		})
	}
	return out
}

// position resolves a way node, preferring the node element and falling back
// to coordinates inlined on the nd reference (Overpass "out geom").
func (g *Graph) position(wn osm.WayNode) *geodesy.GeoPoint {
	if n, ok := g.nodes[wn.ID]; ok {
		p := geodesy.FromOrb(n.Point())
		return &p
	}
	if wn.Lat != 0 || wn.Lon != 0 {
		p := geodesy.FromOrb(orb.Point{wn.Lon, wn.Lat})
		return &p
	}
	return nil
}

func laneTags(tags osm.Tags) lanes.LaneTags {
	return lanes.LaneTags{
		Lanes:    intTag(tags, TagLanes),
		Forward:  intTag(tags, TagLanesForward),
		Backward: intTag(tags, TagLanesBackward),
		OneWay:   isOneWay(tags.Find(TagOneWay)),
	}
}

func intTag(tags osm.Tags, key string) *int {
	v := strings.TrimSpace(tags.Find(key))
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil || n < 0 {
		return nil
	}
	return &n
}

func isOneWay(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "yes", "true", "1":
		return true
	}
	return false
}

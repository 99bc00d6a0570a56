package osmgraph

import (
	"strings"

	"github.com/theoremus-urban-solutions/utmc-sensors/geodesy"
)

// Locator finds sensor positions from nodes tagged traffic:sensor:ref.
type Locator struct {
	byRef map[string]geodesy.GeoPoint
}

// SensorLocator indexes the graph's tagged sensor nodes. When several nodes
// carry the same reference the one appearing last in the document wins.
func (g *Graph) SensorLocator() *Locator {
	l := &Locator{byRef: map[string]geodesy.GeoPoint{}}
	for _, n := range g.nodeOrder {
		ref := strings.TrimSpace(n.Tags.Find(TagTrafficSensor))
		if ref == "" {
			continue
		}
		l.byRef[ref] = geodesy.FromOrb(n.Point())
	}
	return l
}

// NewLocator builds a locator from an explicit reference to position map.
func NewLocator(positions map[string]geodesy.GeoPoint) *Locator {
	l := &Locator{byRef: make(map[string]geodesy.GeoPoint, len(positions))}
	for ref, p := range positions {
		l.byRef[ref] = p
	}
	return l
}

// Locate returns the position of the node tagged with channelID.
func (l *Locator) Locate(channelID string) (geodesy.GeoPoint, bool) {
	if l == nil {
		return geodesy.GeoPoint{}, false
	}
	p, ok := l.byRef[strings.TrimSpace(channelID)]
	return p, ok
}

// Len returns the number of indexed sensor nodes.
func (l *Locator) Len() int {
	if l == nil {
		return 0
	}
	return len(l.byRef)
}

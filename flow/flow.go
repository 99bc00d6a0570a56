// Package flow parses the UTMC traffic flow feed.
//
// Each <Flow> element describes one detector channel:
//
//	<Flow>
//	  <SCN>N05171A</SCN>
//	  <Description>A38 Bristol Road</Description>
//	  <Northing>284123</Northing>
//	  <Easting>405210</Easting>
//	  <LastUpdated>2024-03-01 10:15:00</LastUpdated>
//	  <Value><Level>312</Level></Value>
//	</Flow>
//
// Flow elements are picked up wherever they sit in the document. Children
// are matched by name; a record with unfamiliar names is read by position
// in the order above.
package flow

import (
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/theoremus-urban-solutions/utmc-sensors/geodesy"
)

// TimestampLayout is the feed's LastUpdated format.
const TimestampLayout = "2006-01-02 15:04:05"

// Reading is one detector's latest flow count.
type Reading struct {
	ChannelID string
	Timestamp time.Time // UTC
	Grid      geodesy.GridPoint
	Flow      int
	Location  string
}

// HasGrid reports whether the reading carries a usable grid reference.
// The feed publishes a zero easting for detectors it has no survey for.
func (r Reading) HasGrid() bool {
	return r.Grid.Easting != 0
}

// Feed is a parsed flow document.
type Feed struct {
	Readings  []Reading
	Malformed int
}

type xmlFlow struct {
	SCN         string
	Description string
	Northing    string
	Easting     string
	LastUpdated string
	Level       string
}

// xmlNode keeps a Flow element's children in document order.
type xmlNode struct {
	XMLName  xml.Name
	Text     string    `xml:",chardata"`
	Children []xmlNode `xml:",any"`
}

func (n xmlNode) child(name string) (xmlNode, bool) {
	for _, c := range n.Children {
		if c.XMLName.Local == name {
			return c, true
		}
	}
	return xmlNode{}, false
}

func (n xmlNode) childText(name string) string {
	c, _ := n.child(name)
	return c.Text
}

var flowFieldNames = []string{"SCN", "Description", "Northing", "Easting", "LastUpdated", "Value"}

// fields reads a Flow element by child name. A record using none of the known
// names is read by position instead: SCN, Description, Northing, Easting,
// LastUpdated, then the level as the first child of the sixth element.
func (n xmlNode) fields() (xmlFlow, error) {
	for _, name := range flowFieldNames {
		if _, ok := n.child(name); ok {
			value, _ := n.child("Value")
			return xmlFlow{
				SCN:         n.childText("SCN"),
				Description: n.childText("Description"),
				Northing:    n.childText("Northing"),
				Easting:     n.childText("Easting"),
				LastUpdated: n.childText("LastUpdated"),
				Level:       value.childText("Level"),
			}, nil
		}
	}
	c := n.Children
	if len(c) < 6 || len(c[5].Children) == 0 {
		return xmlFlow{}, fmt.Errorf("unnamed Flow record has %d fields", len(c))
	}
	return xmlFlow{
		SCN:         c[0].Text,
		Description: c[1].Text,
		Northing:    c[2].Text,
		Easting:     c[3].Text,
		LastUpdated: c[4].Text,
		Level:       c[5].Children[0].Text,
	}, nil
}

// Parser decodes flow documents. LastUpdated values carry no zone and are
// read in Location.
type Parser struct {
	Location *time.Location
}

// NewParser returns a parser reading timestamps in loc (UTC when nil).
func NewParser(loc *time.Location) *Parser {
	if loc == nil {
		loc = time.UTC
	}
	return &Parser{Location: loc}
}

// Parse reads every Flow element in r. Records that cannot be read are
// counted in Feed.Malformed and skipped.
func (p *Parser) Parse(r io.Reader) (*Feed, error) {
	dec := xml.NewDecoder(r)
	feed := &Feed{}
	for {
		tok, err := dec.Token()
		if errors.Is(err, io.EOF) {
			return feed, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read flow XML: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok || start.Name.Local != "Flow" {
			continue
		}
		var node xmlNode
		if err := dec.DecodeElement(&node, &start); err != nil {
			return nil, fmt.Errorf("failed to decode Flow element: %w", err)
		}
		raw, err := node.fields()
		if err != nil {
			feed.Malformed++
			continue
		}
		reading, err := p.convert(raw)
		if err != nil {
			feed.Malformed++
			continue
		}
		feed.Readings = append(feed.Readings, reading)
	}
}

func (p *Parser) convert(raw xmlFlow) (Reading, error) {
	id := strings.TrimSpace(raw.SCN)
	if id == "" {
		return Reading{}, errors.New("missing SCN")
	}
	ts, err := time.ParseInLocation(TimestampLayout, strings.TrimSpace(raw.LastUpdated), p.Location)
	if err != nil {
		return Reading{}, fmt.Errorf("channel %s timestamp: %w", id, err)
	}
	easting, err := parseFloat(raw.Easting)
	if err != nil {
		return Reading{}, fmt.Errorf("channel %s easting: %w", id, err)
	}
	northing, err := parseFloat(raw.Northing)
	if err != nil {
		return Reading{}, fmt.Errorf("channel %s northing: %w", id, err)
	}
	count, err := strconv.Atoi(strings.TrimSpace(raw.Level))
	if err != nil {
		return Reading{}, fmt.Errorf("channel %s flow: %w", id, err)
	}
	return Reading{
		ChannelID: id,
		Timestamp: ts.UTC(),
		Grid:      geodesy.GridPoint{Easting: easting, Northing: northing},
		Flow:      count,
		Location:  strings.TrimSpace(raw.Description),
	}, nil
}

// Blank coordinates mean "not surveyed" and read as zero.
func parseFloat(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, err
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, fmt.Errorf("non-finite coordinate %q", s)
	}
	return v, nil
}

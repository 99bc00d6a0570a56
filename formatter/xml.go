package formatter

import (
	"strconv"
	"strings"

	"github.com/theoremus-urban-solutions/utmc-sensors/lanes"
	"github.com/theoremus-urban-solutions/utmc-sensors/snapshot"
)

// BuildLookupXML serializes the channel lookup to XML, ordered by SCN
func (rb *responseBuilder) BuildLookupXML(l lanes.Lookup) []byte {
	var b strings.Builder
	b.WriteString("<SensorBearings>")
	for _, id := range l.IDs() {
		rec := NewChannelRecord(l[id])
		b.WriteString("<Sensor SCN=\"")
		b.WriteString(xmlEscape(id))
		b.WriteString("\">")
		writeInt(&b, "OSMWayID", rec.WayID)
		writeFloat(&b, "SensorBearing", rec.Bearing)
		writeLanesXML(&b, rec.LanesCovered, rec.LaneNumbers, rec.TotalLanes)
		b.WriteString("</Sensor>")
	}
	b.WriteString("</SensorBearings>")
	return []byte(b.String())
}

// BuildSnapshotXML serializes snapshots to XML in the order given
func (rb *responseBuilder) BuildSnapshotXML(snaps []snapshot.Snapshot) []byte {
	var b strings.Builder
	b.WriteString("<SensorSnapshot>")
	for _, s := range snaps {
		rec := NewSnapshotRecord(s)
		b.WriteString("<Sensor SCN=\"")
		b.WriteString(xmlEscape(s.ChannelID))
		b.WriteString("\">")
		b.WriteString("<Location>")
		b.WriteString(xmlEscape(rec.Location))
		b.WriteString("</Location>")
		writeInt(&b, "TrafficFlow", int64(rec.Flow))
		writeFloat(&b, "Latitude", rec.Latitude)
		writeFloat(&b, "Longitude", rec.Longitude)
		writeInt(&b, "SensorBearing", int64(rec.Bearing))
		b.WriteString("<CompassDirection>")
		b.WriteString(xmlEscape(rec.Compass))
		b.WriteString("</CompassDirection>")
		writeInt(&b, "OSMWayID", rec.WayID)
		writeLanesXML(&b, rec.LanesCovered, rec.LaneNumbers, rec.TotalLanes)
		b.WriteString("</Sensor>")
	}
	b.WriteString("</SensorSnapshot>")
	return []byte(b.String())
}

func writeLanesXML(b *strings.Builder, covered int, numbers []int, total int) {
	writeInt(b, "LanesCovered", int64(covered))
	b.WriteString("<LaneNumbers>")
	for _, n := range numbers {
		writeInt(b, "Lane", int64(n))
	}
	b.WriteString("</LaneNumbers>")
	writeInt(b, "TotalLanes", int64(total))
}

func writeInt(b *strings.Builder, tag string, v int64) {
	b.WriteString("<" + tag + ">")
	b.WriteString(strconv.FormatInt(v, 10))
	b.WriteString("</" + tag + ">")
}

func writeFloat(b *strings.Builder, tag string, v float64) {
	b.WriteString("<" + tag + ">")
	b.WriteString(strconv.FormatFloat(v, 'f', -1, 64))
	b.WriteString("</" + tag + ">")
}

func xmlEscape(s string) string {
	replacer := strings.NewReplacer(
		"&", "&amp;",
		"<", "&lt;",
		">", "&gt;",
		"\"", "&quot;",
		"'", "&apos;",
	)
	return replacer.Replace(s)
}

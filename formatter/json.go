package formatter

import (
	"encoding/json"
	"fmt"
	"sort"

	"github.com/theoremus-urban-solutions/utmc-sensors/lanes"
	"github.com/theoremus-urban-solutions/utmc-sensors/snapshot"
)

type responseBuilder struct{}

func newResponseBuilder() *responseBuilder { return &responseBuilder{} }

// NewResponseBuilder creates a new response builder for lookup and snapshot output
func NewResponseBuilder() *responseBuilder {
	return newResponseBuilder()
}

// BuildLookupJSON serializes the channel lookup as an object keyed by SCN.
// encoding/json sorts map keys, so equal lookups give identical bytes.
func (rb *responseBuilder) BuildLookupJSON(l lanes.Lookup) ([]byte, error) {
	out := make(map[string]ChannelRecord, len(l))
	for id, c := range l {
		out[id] = NewChannelRecord(c)
	}
	return json.Marshal(out)
}

// BuildSnapshotJSON serializes snapshots as an object keyed by SCN.
func (rb *responseBuilder) BuildSnapshotJSON(snaps []snapshot.Snapshot) ([]byte, error) {
	out := make(map[string]SnapshotRecord, len(snaps))
	for _, s := range snaps {
		out[s.ChannelID] = NewSnapshotRecord(s)
	}
	return json.Marshal(out)
}

// ParseLookupJSON reads a lookup written by BuildLookupJSON.
func ParseLookupJSON(data []byte) (lanes.Lookup, error) {
	var raw map[string]ChannelRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode channel lookup: %w", err)
	}
	l := make(lanes.Lookup, len(raw))
	for id, rec := range raw {
		l[id] = rec.Channel(id)
	}
	return l, nil
}

// ParseSnapshotJSON reads snapshots written by BuildSnapshotJSON, sorted by
// channel id.
func ParseSnapshotJSON(data []byte) ([]snapshot.Snapshot, error) {
	var raw map[string]SnapshotRecord
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to decode sensor snapshot: %w", err)
	}
	out := make([]snapshot.Snapshot, 0, len(raw))
	for id, rec := range raw {
		out = append(out, rec.Snapshot(id))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ChannelID < out[j].ChannelID })
	return out, nil
}

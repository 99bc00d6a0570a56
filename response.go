package utmcsensors

import (
	"net/http"

	"github.com/theoremus-urban-solutions/utmc-sensors/formatter"
	"github.com/theoremus-urban-solutions/utmc-sensors/lanes"
	"github.com/theoremus-urban-solutions/utmc-sensors/snapshot"
)

func contentType(format string) string {
	if format == "xml" {
		return "application/xml"
	}
	return "application/json"
}

// RenderLookup serializes a lookup as json or xml.
func RenderLookup(l lanes.Lookup, format string) ([]byte, error) {
	rb := formatter.NewResponseBuilder()
	if format == "xml" {
		return rb.BuildLookupXML(l), nil
	}
	return rb.BuildLookupJSON(l)
}

// RenderSnapshots serializes snapshots as json or xml.
func RenderSnapshots(snaps []snapshot.Snapshot, format string) ([]byte, error) {
	rb := formatter.NewResponseBuilder()
	if format == "xml" {
		return rb.BuildSnapshotXML(snaps), nil
	}
	return rb.BuildSnapshotJSON(snaps)
}

func writeError(w http.ResponseWriter, status int, format, msg string) {
	w.WriteHeader(status)
	_, _ = w.Write(buildErrorPayload(format, msg))
}

// Package formatter serializes the channel lookup and sensor snapshots.
//
// This package is organized into:
// - records.go: wire records and the -1 / "Unknown" conventions of the feed
// - json.go: JSON objects keyed by SCN, plus decoding for the cache
// - xml.go: XML serialization with proper escaping
package formatter

package results

import (
	"net/url"
	"regexp"
	"time"
)

// CurrentSchemaVersion is the version of the Metadata struct below. It is
// included in serialized metadata files and should be incremented for every
// structure change, so historical archives stay parsable.
const CurrentSchemaVersion = 1

// NameValue is one "name"/"value" pair of client-provided metadata.
type NameValue struct {
	Name  string
	Value string
}

// StreamStats is one snapshot of the collector's view of a stream.
type StreamStats struct {
	// ElapsedTime is the time since the stream started, in microseconds.
	ElapsedTime int64
	// Records is the number of records received so far.
	Records int64
	// Bytes is the number of record bytes received so far.
	Bytes int64
	// Events counts received events by category.
	Events map[string]int64
}

// Metadata is the struct serialized as JSON next to each archive as the
// archival record of a received stream. It carries enough context to
// analyze archives without re-reading them.
type Metadata struct {
	// Version is the symbolic version (if any) of the running collector.
	Version string
	// SchemaVersion tracks changes to this structure over time.
	SchemaVersion int

	UUID       string
	Kind       string
	ServerAddr string
	ClientAddr string

	StartTime time.Time
	EndTime   time.Time

	// ClientMetadata is the metadata the client supplied in the request
	// query string.
	ClientMetadata []NameValue `json:",omitempty"`

	// ServerStats are the collector's periodic stream snapshots.
	ServerStats []StreamStats `json:",omitempty"`
}

// serverKeyRe matches query keys reserved to the server.
var serverKeyRe = regexp.MustCompile("^server_")

// InitMetadata fills meta's client metadata from the request query string.
// Keys reserved to the server are skipped.
func InitMetadata(meta *Metadata, values url.Values) {
	for name, vals := range values {
		if serverKeyRe.MatchString(name) {
			continue
		}
		meta.ClientMetadata = append(meta.ClientMetadata, NameValue{Name: name, Value: vals[0]})
	}
}

// Package qlog implements the qlog schema for structured endpoint logging
// of QUIC and HTTP/3 connections. It provides the event data model, a
// streaming JSON-SEQ serializer, and a reader that decodes events back into
// their concrete record types through a registry.
package qlog

// Version is the qlog schema version this package emits.
const Version = "0.3"

// Format enumerates the qlog container formats.
type Format string

// Supported container formats.
const (
	FormatJSON    Format = "JSON"
	FormatJSONSEQ Format = "JSON-SEQ"
)

// Qlog is the top-level container for one or more traces.
type Qlog struct {
	QlogVersion string  `json:"qlog_version"`
	QlogFormat  Format  `json:"qlog_format,omitempty"`
	Title       string  `json:"title,omitempty"`
	Description string  `json:"description,omitempty"`
	Traces      []Trace `json:"traces"`
}

// QlogSeq is the header record of a JSON-SEQ qlog stream. It is serialized
// once, before any event record.
type QlogSeq struct {
	QlogVersion string   `json:"qlog_version"`
	QlogFormat  Format   `json:"qlog_format,omitempty"`
	Title       string   `json:"title,omitempty"`
	Description string   `json:"description,omitempty"`
	Trace       TraceSeq `json:"trace"`
}

// Trace holds the events of a single vantage point.
type Trace struct {
	VantagePoint  VantagePoint   `json:"vantage_point"`
	Title         string         `json:"title,omitempty"`
	Description   string         `json:"description,omitempty"`
	Configuration *Configuration `json:"configuration,omitempty"`
	CommonFields  *CommonFields  `json:"common_fields,omitempty"`
	Events        []Event        `json:"events"`
}

// TraceSeq is the trace metadata of a JSON-SEQ stream. Events are not
// embedded; they follow as separate records.
type TraceSeq struct {
	VantagePoint  VantagePoint   `json:"vantage_point"`
	Title         string         `json:"title,omitempty"`
	Description   string         `json:"description,omitempty"`
	Configuration *Configuration `json:"configuration,omitempty"`
	CommonFields  *CommonFields  `json:"common_fields,omitempty"`
}

// VantagePointType classifies the position the trace was recorded from.
type VantagePointType string

// Vantage point types.
const (
	VantagePointClient  VantagePointType = "client"
	VantagePointServer  VantagePointType = "server"
	VantagePointNetwork VantagePointType = "network"
	VantagePointUnknown VantagePointType = "unknown"
)

// VantagePoint describes the recorder of a trace.
type VantagePoint struct {
	Name string           `json:"name,omitempty"`
	Type VantagePointType `json:"type"`
	// Flow disambiguates the observed direction for network vantage points.
	Flow VantagePointType `json:"flow,omitempty"`
}

// Configuration holds per-trace serialization settings.
type Configuration struct {
	// TimeOffset is subtracted from every event time, in milliseconds.
	TimeOffset   float64  `json:"time_offset,omitempty"`
	OriginalURIs []string `json:"original_uris,omitempty"`
}

// TimeFormat indicates how event times relate to the reference time.
type TimeFormat string

// Time formats.
const (
	TimeAbsolute TimeFormat = "absolute"
	TimeDelta    TimeFormat = "delta"
	TimeRelative TimeFormat = "relative"
)

// CommonFields are fields shared by all events in a trace, hoisted into the
// trace metadata to avoid repetition.
type CommonFields struct {
	GroupID       string     `json:"group_id,omitempty"`
	ProtocolType  []string   `json:"protocol_type,omitempty"`
	ReferenceTime float64    `json:"reference_time,omitempty"`
	TimeFormat    TimeFormat `json:"time_format,omitempty"`
}

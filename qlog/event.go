package qlog

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoEventData is returned when an Event carries no event record.
var ErrNoEventData = errors.New("qlog: event has no data")

// EventCategory groups event types by the protocol layer they describe.
type EventCategory string

// Event categories.
const (
	CategoryConnectivity EventCategory = "connectivity"
	CategoryTransport    EventCategory = "transport"
	CategorySecurity     EventCategory = "security"
	CategoryRecovery     EventCategory = "recovery"
	CategoryHTTP         EventCategory = "http"
	CategoryQpack        EventCategory = "qpack"
	CategoryGeneric      EventCategory = "generic"
)

// Importance ranks event types by how essential they are to a useful trace.
// Core events are required for baseline analysis, base events are commonly
// useful, extra events are purely informational.
type Importance int

// Importance levels, from most to least essential.
const (
	ImportanceCore Importance = iota
	ImportanceBase
	ImportanceExtra
)

func (i Importance) String() string {
	switch i {
	case ImportanceCore:
		return "core"
	case ImportanceBase:
		return "base"
	case ImportanceExtra:
		return "extra"
	}
	return fmt.Sprintf("importance(%d)", int(i))
}

// EventData is implemented by every concrete event record. The category and
// type together form the event name used on the wire.
type EventData interface {
	Category() EventCategory
	Type() string
}

// Name returns the qlog event name ("category:type") for a record.
func Name(d EventData) string {
	return string(d.Category()) + ":" + d.Type()
}

// ImportanceOf reports the importance of an event record. Records not listed
// in the importance table default to ImportanceExtra.
func ImportanceOf(d EventData) Importance {
	if imp, ok := eventImportance[Name(d)]; ok {
		return imp
	}
	return ImportanceExtra
}

// eventImportance ranks the built-in event types. Names absent from this
// table are extra.
var eventImportance = map[string]Importance{
	"connectivity:server_listening":         ImportanceExtra,
	"connectivity:connection_started":       ImportanceBase,
	"connectivity:connection_closed":        ImportanceBase,
	"connectivity:connection_id_updated":    ImportanceBase,
	"connectivity:spin_bit_updated":         ImportanceBase,
	"connectivity:connection_state_updated": ImportanceBase,
	"connectivity:mtu_updated":              ImportanceExtra,
	"transport:version_information":         ImportanceCore,
	"transport:alpn_information":            ImportanceCore,
	"transport:parameters_set":              ImportanceCore,
	"transport:parameters_restored":         ImportanceBase,
	"transport:packet_sent":                 ImportanceCore,
	"transport:packet_received":             ImportanceCore,
	"transport:packet_dropped":              ImportanceBase,
	"transport:packet_buffered":             ImportanceBase,
	"transport:packets_acked":               ImportanceExtra,
	"transport:datagrams_sent":              ImportanceExtra,
	"transport:datagrams_received":          ImportanceExtra,
	"transport:datagram_dropped":            ImportanceExtra,
	"transport:stream_state_updated":        ImportanceBase,
	"transport:frames_processed":            ImportanceExtra,
	"transport:data_moved":                  ImportanceBase,
	"security:key_updated":                  ImportanceBase,
	"security:key_discarded":                ImportanceBase,
	"recovery:parameters_set":               ImportanceBase,
	"recovery:metrics_updated":              ImportanceCore,
	"recovery:congestion_state_updated":     ImportanceBase,
	"recovery:loss_timer_updated":           ImportanceExtra,
	"recovery:packet_lost":                  ImportanceCore,
	"recovery:marked_for_retransmit":        ImportanceExtra,
	"recovery:ecn_state_updated":            ImportanceExtra,
	"http:parameters_set":                   ImportanceBase,
	"http:parameters_restored":              ImportanceBase,
	"http:stream_type_set":                  ImportanceBase,
	"http:frame_created":                    ImportanceCore,
	"http:frame_parsed":                     ImportanceCore,
	"http:push_resolved":                    ImportanceExtra,
	"qpack:state_updated":                   ImportanceBase,
	"qpack:stream_state_updated":            ImportanceBase,
	"qpack:dynamic_table_updated":           ImportanceExtra,
	"qpack:headers_encoded":                 ImportanceBase,
	"qpack:headers_decoded":                 ImportanceBase,
	"qpack:instruction_created":             ImportanceBase,
	"qpack:instruction_parsed":              ImportanceBase,
}

// Event is one record in a trace: a relative timestamp, an event name, and
// the concrete event data.
type Event struct {
	// Time is the event time in milliseconds, interpreted according to the
	// trace's time_format.
	Time float64

	// Data is the concrete event record. The event name on the wire is
	// derived from it.
	Data EventData
}

// eventWire is the serialized shape of an Event.
type eventWire struct {
	Time float64         `json:"time"`
	Name string          `json:"name"`
	Data json.RawMessage `json:"data"`
}

// Name returns the event name ("category:type").
func (e Event) Name() string {
	return Name(e.Data)
}

// MarshalJSON serializes the event in the qlog wire shape, deriving the name
// from the event data.
func (e Event) MarshalJSON() ([]byte, error) {
	if e.Data == nil {
		return nil, ErrNoEventData
	}
	data, err := json.Marshal(e.Data)
	if err != nil {
		return nil, err
	}
	return json.Marshal(eventWire{
		Time: e.Time,
		Name: e.Name(),
		Data: data,
	})
}

// UnmarshalJSON decodes an event using the package registry to select the
// concrete record type. Unknown event names decode into GenericEventData.
func (e *Event) UnmarshalJSON(b []byte) error {
	var wire eventWire
	if err := json.Unmarshal(b, &wire); err != nil {
		return err
	}
	data, err := DefaultRegistry().Decode(wire.Name, wire.Data)
	if err != nil {
		return err
	}
	e.Time = wire.Time
	e.Data = data
	return nil
}

// GenericEventData carries events whose name has no registered decoder. The
// raw payload is retained so that re-serialization is lossless.
type GenericEventData struct {
	EventName string          `json:"-"`
	Raw       json.RawMessage `json:"-"`
}

// Category returns the category component of the original event name.
func (g GenericEventData) Category() EventCategory {
	for i := 0; i < len(g.EventName); i++ {
		if g.EventName[i] == ':' {
			return EventCategory(g.EventName[:i])
		}
	}
	return CategoryGeneric
}

// Type returns the type component of the original event name.
func (g GenericEventData) Type() string {
	for i := 0; i < len(g.EventName); i++ {
		if g.EventName[i] == ':' {
			return g.EventName[i+1:]
		}
	}
	return g.EventName
}

// MarshalJSON emits the retained raw payload.
func (g GenericEventData) MarshalJSON() ([]byte, error) {
	if g.Raw == nil {
		return []byte("{}"), nil
	}
	return g.Raw, nil
}

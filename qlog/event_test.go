package qlog

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func u16p(v uint16) *uint16   { return &v }
func u64p(v uint64) *uint64   { return &v }
func f32p(v float32) *float32 { return &v }
func f64p(v float64) *float64 { return &v }

func TestEventMarshal(t *testing.T) {
	e := Event{
		Time: 12.5,
		Data: KeyUpdated{KeyType: KeyClient1RTTSecret, New: "aabb"},
	}
	b, err := json.Marshal(e)
	require.NoError(t, err)
	want := `{"time":12.5,"name":"security:key_updated","data":{"key_type":"client_1rtt_secret","new":"aabb"}}`
	assert.JSONEq(t, want, string(b))
}

func TestEventMarshalNoData(t *testing.T) {
	_, err := json.Marshal(Event{Time: 1})
	assert.Error(t, err)
}

func TestEventRoundTrip(t *testing.T) {
	events := []Event{
		{Time: 0, Data: ConnectionStarted{
			IPVersion: "ipv4",
			SrcIP:     "192.0.2.1",
			DstIP:     "192.0.2.2",
			SrcPort:   u16p(51004),
			DstPort:   u16p(443),
			DstCID:    "8394c8f03e515708",
		}},
		{Time: 1.25, Data: PacketSent{
			Header: PacketHeader{
				PacketType:   PacketInitial,
				PacketNumber: 0,
				Version:      "1",
				SCID:         "0001",
				DCID:         "8394c8f03e515708",
			},
			Frames: []Frame{
				{FrameType: FrameCrypto, Offset: u64p(0), Length: u64p(1200)},
			},
			Raw: &RawInfo{Length: 1252},
		}},
		{Time: 30.5, Data: PacketReceived{
			Header: PacketHeader{
				PacketType:   PacketOneRTT,
				PacketNumber: 7,
			},
			Frames: []Frame{
				{
					FrameType:   FrameAck,
					ACKDelay:    f64p(0.25),
					ACKedRanges: []AckRange{{Start: 0, End: 3}, {Start: 5, End: 5}},
				},
			},
		}},
		{Time: 31, Data: MetricsUpdated{
			SmoothedRTT:      f32p(29.8),
			CongestionWindow: u64p(24000),
			BytesInFlight:    u64p(1200),
		}},
		{Time: 45, Data: H3FrameParsed{
			StreamID: 0,
			Frame:    H3Frame{FrameType: H3FrameHeaders, Headers: []HTTPHeader{{Name: ":status", Value: "200"}}},
		}},
	}
	for _, want := range events {
		b, err := json.Marshal(want)
		require.NoError(t, err, "marshal %s", want.Name())
		var got Event
		require.NoError(t, json.Unmarshal(b, &got), "unmarshal %s", want.Name())
		assert.Equal(t, want, got)
	}
}

func TestEventUnknownName(t *testing.T) {
	in := `{"time":3,"name":"loglevel:error","data":{"message":"oops"}}`
	var e Event
	require.NoError(t, json.Unmarshal([]byte(in), &e))
	g, ok := e.Data.(GenericEventData)
	require.True(t, ok, "want GenericEventData, got %T", e.Data)
	assert.Equal(t, "loglevel:error", g.EventName)
	assert.Equal(t, EventCategory("loglevel"), g.Category())
	assert.Equal(t, "error", g.Type())

	// Re-serialization keeps the original payload.
	b, err := json.Marshal(e)
	require.NoError(t, err)
	assert.JSONEq(t, in, string(b))
}

func TestImportance(t *testing.T) {
	assert.Equal(t, ImportanceCore, ImportanceOf(PacketSent{}))
	assert.Equal(t, ImportanceBase, ImportanceOf(SpinBitUpdated{}))
	assert.Equal(t, ImportanceExtra, ImportanceOf(LossTimerUpdated{}))
	// Unlisted names default to extra.
	assert.Equal(t, ImportanceExtra, ImportanceOf(GenericEventData{EventName: "x:y"}))

	assert.Equal(t, "core", ImportanceCore.String())
	assert.Equal(t, "base", ImportanceBase.String())
	assert.Equal(t, "extra", ImportanceExtra.String())
}

func TestAckRange(t *testing.T) {
	b, err := json.Marshal(AckRange{Start: 2, End: 9})
	require.NoError(t, err)
	assert.Equal(t, "[2,9]", string(b))

	var r AckRange
	require.NoError(t, json.Unmarshal([]byte("[4]"), &r))
	assert.Equal(t, AckRange{Start: 4, End: 4}, r)

	require.NoError(t, json.Unmarshal([]byte("[1,3]"), &r))
	assert.Equal(t, AckRange{Start: 1, End: 3}, r)

	assert.Error(t, json.Unmarshal([]byte("[1,2,3]"), &r))
}

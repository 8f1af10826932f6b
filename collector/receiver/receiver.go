// Package receiver implements the record receiver for live qlog streams.
package receiver

import (
	"context"
	"errors"
	"io"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gorilla/websocket"
	"github.com/valyala/fastjson"

	"github.com/ansg191/quiche/collector/metrics"
	"github.com/ansg191/quiche/collector/spec"
	"github.com/ansg191/quiche/logging"
)

var parsers fastjson.ParserPool

var (
	errNoHeader = errors.New("first record is not a qlog header")
	errNoName   = errors.New("event record has no name")
)

// Counters are the running tallies of a stream, updated by the receiver
// and sampled concurrently by the measurer.
type Counters struct {
	Records atomic.Int64
	Bytes   atomic.Int64

	mu     sync.Mutex
	events map[string]int64
}

// CountEvent adds one received event to the per-category tally.
func (c *Counters) CountEvent(category string) {
	c.mu.Lock()
	if c.events == nil {
		c.events = make(map[string]int64)
	}
	c.events[category]++
	c.mu.Unlock()
}

// EventCounts returns a copy of the per-category event tally.
func (c *Counters) EventCounts() map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(c.events) == 0 {
		return nil
	}
	counts := make(map[string]int64, len(c.events))
	for category, n := range c.events {
		counts[category] = n
	}
	return counts
}

// Record is one validated qlog record as received from the client.
type Record struct {
	// Raw is the record payload, without JSON-SEQ framing.
	Raw []byte
	// Name is the event name, empty for the header record.
	Name string
	// Category is the category component of Name.
	Category string
}

// Validate parses a raw record and classifies it. The first record of a
// stream must be a qlog header; every following record must be a named
// event.
func Validate(raw []byte, first bool) (Record, error) {
	p := parsers.Get()
	defer parsers.Put(p)
	v, err := p.ParseBytes(raw)
	if err != nil {
		return Record{}, err
	}
	if first {
		if len(v.GetStringBytes("qlog_version")) == 0 {
			return Record{}, errNoHeader
		}
		return Record{Raw: raw}, nil
	}
	name := string(v.GetStringBytes("name"))
	if name == "" {
		return Record{}, errNoName
	}
	category := name
	for i := 0; i < len(name); i++ {
		if name[i] == ':' {
			category = name[:i]
			break
		}
	}
	return Record{Raw: raw, Name: name, Category: category}, nil
}

// Start reads RS-framed records from the websocket until the context
// expires, the client closes, or a record fails validation. Validated
// records are posted to the returned channel, which is closed when the
// receiver stops.
//
// Liveness guarantee: the goroutine always terminates after the
// MaxStreamRuntime timeout.
func Start(ctx context.Context, conn *websocket.Conn, kind string, counters *Counters) <-chan Record {
	out := make(chan Record)
	go func() {
		defer close(out)
		loop(ctx, conn, kind, counters, out)
	}()
	return out
}

func loop(ctx context.Context, conn *websocket.Conn, kind string, counters *Counters, out chan<- Record) {
	logging.Logger.Debug("receiver: start")
	defer logging.Logger.Debug("receiver: stop")
	conn.SetReadLimit(spec.MaxRecordSize)
	recvctx, cancel := context.WithTimeout(ctx, spec.MaxStreamRuntime)
	defer cancel()
	if err := conn.SetReadDeadline(time.Now().Add(spec.MaxStreamRuntime)); err != nil {
		logging.Logger.WithError(err).Warn("receiver: conn.SetReadDeadline failed")
		metrics.ReceiverErrors.WithLabelValues(kind, "set-read-deadline").Inc()
		return
	}
	first := true
	for recvctx.Err() == nil { // Liveness!
		mtype, r, err := conn.NextReader()
		if err != nil {
			if !websocket.IsCloseError(err, websocket.CloseNormalClosure) {
				metrics.ReceiverErrors.WithLabelValues(kind, "read-message").Inc()
			}
			return
		}
		if mtype != websocket.TextMessage {
			logging.Logger.Warn("receiver: got non-Text message")
			metrics.ReceiverErrors.WithLabelValues(kind, "wrong-message-type").Inc()
			return
		}
		raw, err := io.ReadAll(r)
		if err != nil {
			metrics.ReceiverErrors.WithLabelValues(kind, "read-record").Inc()
			return
		}
		rec, err := Validate(trimFraming(raw), first)
		if err != nil {
			logging.Logger.WithError(err).Warn("receiver: record validation failed")
			metrics.ReceiverErrors.WithLabelValues(kind, "validate-record").Inc()
			return
		}
		first = false
		counters.Records.Add(1)
		counters.Bytes.Add(int64(len(rec.Raw)))
		if rec.Name != "" {
			counters.CountEvent(rec.Category)
			metrics.EventsTotal.WithLabelValues(rec.Category).Inc()
		}
		select {
		case out <- rec:
		case <-recvctx.Done():
			return
		}
	}
	metrics.ReceiverErrors.WithLabelValues(kind, "receiver-context-expired").Inc()
}

// trimFraming strips optional JSON-SEQ framing from a record sent as one
// websocket message.
func trimFraming(raw []byte) []byte {
	if len(raw) > 0 && raw[0] == 0x1e {
		raw = raw[1:]
	}
	for len(raw) > 0 && (raw[len(raw)-1] == '\n' || raw[len(raw)-1] == '\r') {
		raw = raw[:len(raw)-1]
	}
	return raw
}

package qlog

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/valyala/fastjson"
)

// ErrNoHeader is returned when a stream does not begin with a qlog header
// record.
var ErrNoHeader = errors.New("qlog: stream has no header record")

// RecordError reports a malformed record together with its position in the
// stream. The header is record zero.
type RecordError struct {
	Record int
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("qlog: record %d: %v", e.Record, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}

// Reader consumes a qlog JSON-SEQ stream, decoding event payloads into
// their concrete record types through a registry.
type Reader struct {
	sc       *bufio.Scanner
	registry *Registry
	parsers  fastjson.ParserPool

	header *QlogSeq
	record int
}

// NewReader returns a reader decoding through the package registry.
func NewReader(r io.Reader) *Reader {
	return NewReaderWithRegistry(r, DefaultRegistry())
}

// NewReaderWithRegistry returns a reader decoding through reg.
func NewReaderWithRegistry(r io.Reader, reg *Registry) *Reader {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)
	sc.Split(SplitRecords)
	// The header is record 0, so counting starts below it.
	return &Reader{sc: sc, registry: reg, record: -1}
}

// Header reads the stream header, if it has not been read yet, and returns
// it.
func (r *Reader) Header() (*QlogSeq, error) {
	if r.header != nil {
		return r.header, nil
	}
	rec, err := r.nextRecord()
	if err != nil {
		if err == io.EOF {
			return nil, ErrNoHeader
		}
		return nil, err
	}
	var header QlogSeq
	if err := json.Unmarshal(rec, &header); err != nil {
		return nil, &RecordError{Record: 0, Err: err}
	}
	if header.QlogVersion == "" {
		return nil, &RecordError{Record: 0, Err: errors.New("missing qlog_version")}
	}
	r.header = &header
	return r.header, nil
}

// Next returns the next event of the stream. It reads the header first if
// the caller has not. io.EOF signals a clean end of stream.
func (r *Reader) Next() (Event, error) {
	if r.header == nil {
		if _, err := r.Header(); err != nil {
			return Event{}, err
		}
	}
	rec, err := r.nextRecord()
	if err != nil {
		return Event{}, err
	}

	// Peek at the name without a full unmarshal so that the payload is
	// only decoded once, into the registered type.
	p := r.parsers.Get()
	defer r.parsers.Put(p)
	v, err := p.ParseBytes(rec)
	if err != nil {
		return Event{}, &RecordError{Record: r.record, Err: err}
	}
	name := string(v.GetStringBytes("name"))
	if name == "" {
		return Event{}, &RecordError{Record: r.record, Err: errors.New("missing event name")}
	}
	t := v.GetFloat64("time")

	dataObj := v.Get("data")
	var payload []byte
	if dataObj != nil {
		payload = dataObj.MarshalTo(nil)
	} else {
		payload = []byte("{}")
	}
	data, err := r.registry.Decode(name, payload)
	if err != nil {
		return Event{}, &RecordError{Record: r.record, Err: err}
	}
	return Event{Time: t, Data: data}, nil
}

// All reads every remaining event.
func (r *Reader) All() ([]Event, error) {
	var events []Event
	for {
		e, err := r.Next()
		if err == io.EOF {
			return events, nil
		}
		if err != nil {
			return events, err
		}
		events = append(events, e)
	}
}

func (r *Reader) nextRecord() ([]byte, error) {
	for r.sc.Scan() {
		rec := bytes.TrimSpace(r.sc.Bytes())
		if len(rec) == 0 {
			continue
		}
		r.record++
		return rec, nil
	}
	if err := r.sc.Err(); err != nil {
		return nil, err
	}
	return nil, io.EOF
}

// SplitRecords is a bufio.SplitFunc tokenizing RS-framed JSON text
// sequences. Input before the
// first separator (a stream without framing, such as a single JSON record
// per line) is returned as-is.
func SplitRecords(data []byte, atEOF bool) (advance int, token []byte, err error) {
	if atEOF && len(data) == 0 {
		return 0, nil, nil
	}
	start := 0
	if data[0] == recordSeparator {
		start = 1
	}
	if i := bytes.IndexByte(data[start:], recordSeparator); i >= 0 {
		return start + i, data[start : start+i], nil
	}
	if atEOF {
		return len(data), data[start:], nil
	}
	return 0, nil, nil
}

package qlog

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"time"
)

// recordSeparator frames JSON text sequences (RFC 7464).
const recordSeparator = 0x1e

// Streamer state errors.
var (
	ErrNotStarted     = errors.New("qlog: streamer not started")
	ErrAlreadyStarted = errors.New("qlog: streamer already started")
	ErrFinished       = errors.New("qlog: streamer finished")
)

// Streamer writes a qlog JSON-SEQ stream incrementally: one header record
// followed by one record per event. Events are timestamped relative to the
// reference time and filtered by importance. A Streamer is not safe for
// concurrent use.
type Streamer struct {
	w   *bufio.Writer
	c   io.Closer
	seq QlogSeq

	level     Importance
	reference time.Time

	started  bool
	finished bool

	// Dropped counts events below the importance level.
	Dropped uint64
}

// NewStreamer returns a streamer writing to w. Events with an importance
// below level are dropped. The reference time of the stream defaults to the
// time of the Start call when zero. If w is also an io.Closer, Finish closes
// it.
func NewStreamer(w io.Writer, seq QlogSeq, level Importance, reference time.Time) *Streamer {
	s := &Streamer{
		w:         bufio.NewWriter(w),
		seq:       seq,
		level:     level,
		reference: reference,
	}
	if c, ok := w.(io.Closer); ok {
		s.c = c
	}
	return s
}

// Start emits the stream header. It must be called exactly once, before any
// event is added.
func (s *Streamer) Start() error {
	if s.started {
		return ErrAlreadyStarted
	}
	if s.finished {
		return ErrFinished
	}
	if s.reference.IsZero() {
		s.reference = time.Now()
	}
	if s.seq.QlogVersion == "" {
		s.seq.QlogVersion = Version
	}
	s.seq.QlogFormat = FormatJSONSEQ
	if s.seq.Trace.CommonFields == nil {
		s.seq.Trace.CommonFields = &CommonFields{}
	}
	if s.seq.Trace.CommonFields.TimeFormat == "" {
		s.seq.Trace.CommonFields.TimeFormat = TimeRelative
	}
	if s.seq.Trace.CommonFields.ReferenceTime == 0 {
		s.seq.Trace.CommonFields.ReferenceTime = float64(s.reference.UnixNano()) / float64(time.Millisecond)
	}
	s.started = true
	return s.writeRecord(s.seq)
}

// AddEvent appends a fully-formed event record.
func (s *Streamer) AddEvent(e Event) error {
	if !s.started {
		return ErrNotStarted
	}
	if s.finished {
		return ErrFinished
	}
	if e.Data == nil {
		return ErrNoEventData
	}
	if ImportanceOf(e.Data) > s.level {
		s.Dropped++
		return nil
	}
	return s.writeRecord(e)
}

// AddEventData appends an event for data, timestamped now.
func (s *Streamer) AddEventData(d EventData) error {
	return s.AddEventAt(time.Now(), d)
}

// AddEventAt appends an event for data with an explicit absolute timestamp,
// converted to the stream's relative time.
func (s *Streamer) AddEventAt(now time.Time, d EventData) error {
	return s.AddEvent(Event{
		Time: float64(now.Sub(s.reference)) / float64(time.Millisecond),
		Data: d,
	})
}

// Finish flushes the stream and closes the underlying writer if it is a
// closer. The streamer is unusable afterwards.
func (s *Streamer) Finish() error {
	if !s.started {
		return ErrNotStarted
	}
	if s.finished {
		return ErrFinished
	}
	s.finished = true
	err := s.w.Flush()
	if s.c != nil {
		if cerr := s.c.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

func (s *Streamer) writeRecord(v any) error {
	if err := s.w.WriteByte(recordSeparator); err != nil {
		return err
	}
	data, err := json.Marshal(v)
	if err != nil {
		return err
	}
	if _, err := s.w.Write(data); err != nil {
		return err
	}
	return s.w.WriteByte('\n')
}

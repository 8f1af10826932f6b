// Package handler implements the WebSocket and HTTP handlers of the qlog
// collector.
package handler

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzip"

	"github.com/ansg191/quiche/collector/measurer"
	"github.com/ansg191/quiche/collector/metrics"
	"github.com/ansg191/quiche/collector/receiver"
	"github.com/ansg191/quiche/collector/results"
	"github.com/ansg191/quiche/collector/saver"
	"github.com/ansg191/quiche/collector/spec"
	"github.com/ansg191/quiche/logging"
	"github.com/ansg191/quiche/qlog"
)

// Handler handles qlog stream intake.
type Handler struct {
	// Upgrader is the WebSocket upgrader.
	Upgrader websocket.Upgrader

	// DataDir is the directory where archives are saved.
	DataDir string

	// Compress enables gzip compression of archive files.
	Compress bool

	// Version is the collector version recorded in archival metadata.
	Version string

	// maxUploadSize overrides spec.MaxUploadSize when nonzero, for testing.
	maxUploadSize int64
}

func (h Handler) uploadLimit() int64 {
	if h.maxUploadSize > 0 {
		return h.maxUploadSize
	}
	return spec.MaxUploadSize
}

// warnAndClose emits message as a warning and sends a Bad Request response
// to the client using writer.
func warnAndClose(writer http.ResponseWriter, message string) {
	logging.Logger.Warn(message)
	writer.Header().Set("Connection", "Close")
	writer.WriteHeader(http.StatusBadRequest)
}

// newMeta builds the archival metadata shared by both intake paths.
func (h Handler) newMeta(request *http.Request, uuid, kind, serverAddr, clientAddr string) *results.Metadata {
	meta := &results.Metadata{
		Version:       h.Version,
		SchemaVersion: results.CurrentSchemaVersion,
		UUID:          uuid,
		Kind:          kind,
		ServerAddr:    serverAddr,
		ClientAddr:    clientAddr,
		StartTime:     time.Now().UTC(),
	}
	results.InitMetadata(meta, request.URL.Query())
	return meta
}

// Live handles a live qlog stream over WebSocket.
func (h Handler) Live(writer http.ResponseWriter, request *http.Request) {
	logging.Logger.Debug("live: upgrading to WebSockets")
	if request.Header.Get("Sec-WebSocket-Protocol") != spec.SecWebSocketProtocol {
		warnAndClose(writer, "live: missing Sec-WebSocket-Protocol in request")
		metrics.StreamsTotal.WithLabelValues("live", "rejected").Inc()
		return
	}
	headers := http.Header{}
	headers.Add("Sec-WebSocket-Protocol", spec.SecWebSocketProtocol)
	conn, err := h.Upgrader.Upgrade(writer, request, headers)
	if err != nil {
		warnAndClose(writer, fmt.Sprintf("live: cannot UPGRADE to WebSocket: %s", err))
		metrics.StreamsTotal.WithLabelValues("live", "rejected").Inc()
		return
	}
	defer conn.Close()

	streamUUID := uuid.NewString()
	resultfp, err := results.NewFile(streamUUID, h.DataDir, "live", h.Compress)
	if err != nil {
		metrics.StreamsTotal.WithLabelValues("live", "error").Inc()
		return // error already logged
	}

	metrics.ActiveStreams.WithLabelValues("live").Inc()
	defer metrics.ActiveStreams.WithLabelValues("live").Dec()

	meta := h.newMeta(request, streamUUID, "live",
		conn.LocalAddr().String(), conn.RemoteAddr().String())

	var counters receiver.Counters
	ctx, cancel := context.WithCancel(request.Context())
	defer cancel()
	received := receiver.Start(ctx, conn, "live", &counters)
	stats := measurer.New(&counters).Start(ctx)
	// Forward records so the measurer stops as soon as the stream ends,
	// rather than after the stream runtime cap.
	records := make(chan receiver.Record)
	go func() {
		defer cancel()
		defer close(records)
		for rec := range received {
			records <- rec
		}
	}()
	saver.SaveAll(resultfp, meta, records, stats)

	startClosing(conn)
	status := "ok"
	if counters.Records.Load() == 0 {
		status = "empty"
	}
	h.finish(resultfp, meta, status, "live")
}

// Upload handles a complete JSON-SEQ document posted over HTTP.
func (h Handler) Upload(writer http.ResponseWriter, request *http.Request) {
	if request.Method != http.MethodPost {
		writer.Header().Set("Allow", http.MethodPost)
		writer.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	body := io.Reader(http.MaxBytesReader(writer, request.Body, h.uploadLimit()))
	if request.Header.Get("Content-Encoding") == "gzip" {
		gz, err := gzip.NewReader(body)
		if err != nil {
			warnAndClose(writer, fmt.Sprintf("upload: bad gzip body: %s", err))
			metrics.StreamsTotal.WithLabelValues("upload", "rejected").Inc()
			return
		}
		defer gz.Close()
		// The size limit applies to the decompressed document, so the gzip
		// output needs its own cap.
		body = &maxSizeReader{r: gz, n: h.uploadLimit() + 1}
	}

	streamUUID := uuid.NewString()
	resultfp, err := results.NewFile(streamUUID, h.DataDir, "upload", h.Compress)
	if err != nil {
		writer.WriteHeader(http.StatusInternalServerError)
		metrics.StreamsTotal.WithLabelValues("upload", "error").Inc()
		return // error already logged
	}

	metrics.ActiveStreams.WithLabelValues("upload").Inc()
	defer metrics.ActiveStreams.WithLabelValues("upload").Dec()

	meta := h.newMeta(request, streamUUID, "upload", request.Host, request.RemoteAddr)

	records, err := h.copyRecords(resultfp, body)
	if err != nil {
		logging.Logger.WithError(err).Warn("upload: record copy failed")
		warnAndClose(writer, fmt.Sprintf("upload: %s", err))
		h.finish(resultfp, meta, "error", "upload")
		return
	}

	status := "ok"
	if records == 0 {
		status = "empty"
	}
	h.finish(resultfp, meta, status, "upload")
	writer.Header().Set("Content-Type", "application/json")
	writer.WriteHeader(http.StatusOK)
	fmt.Fprintf(writer, `{"uuid":%q,"records":%d}`+"\n", streamUUID, records)
}

// errUploadTooLarge terminates uploads whose decompressed size exceeds the
// limit.
var errUploadTooLarge = errors.New("document exceeds the upload size limit")

// maxSizeReader fails the read once more than n-1 bytes have come out of r.
// Unlike io.LimitReader it distinguishes an oversized document from EOF.
type maxSizeReader struct {
	r io.Reader
	n int64
}

func (m *maxSizeReader) Read(p []byte) (int, error) {
	if m.n <= 0 {
		return 0, errUploadTooLarge
	}
	if int64(len(p)) > m.n {
		p = p[:m.n]
	}
	n, err := m.r.Read(p)
	m.n -= int64(n)
	if m.n <= 0 && err == nil {
		err = errUploadTooLarge
	}
	return n, err
}

// copyRecords validates and archives every record of an uploaded document.
func (h Handler) copyRecords(resultfp *results.File, body io.Reader) (int64, error) {
	sc := bufio.NewScanner(body)
	sc.Buffer(make([]byte, 0, 64*1024), spec.MaxRecordSize)
	sc.Split(qlog.SplitRecords)
	var count int64
	first := true
	for sc.Scan() {
		raw := sc.Bytes()
		if len(raw) == 0 {
			continue
		}
		rec, err := receiver.Validate(raw, first)
		if err != nil {
			return count, err
		}
		first = false
		if rec.Name != "" {
			metrics.EventsTotal.WithLabelValues(rec.Category).Inc()
		}
		if err := resultfp.WriteRecord(rec.Raw); err != nil {
			return count, err
		}
		count++
	}
	if err := sc.Err(); err != nil {
		return count, err
	}
	if first {
		return count, qlog.ErrNoHeader
	}
	return count, nil
}

// finish closes the archive, writes its metadata, and accounts for the
// stream.
func (h Handler) finish(resultfp *results.File, meta *results.Metadata, status, kind string) {
	meta.EndTime = time.Now().UTC()
	if err := resultfp.Close(); err != nil {
		logging.Logger.WithError(err).Warn("finish: resultfp.Close failed")
	}
	if err := resultfp.WriteMetadata(meta); err != nil {
		logging.Logger.WithError(err).Warn("finish: resultfp.WriteMetadata failed")
	}
	metrics.StreamsTotal.WithLabelValues(kind, status).Inc()
	metrics.StreamDuration.WithLabelValues(kind).Observe(
		meta.EndTime.Sub(meta.StartTime).Seconds())
}

// startClosing starts closing the websocket connection.
func startClosing(conn *websocket.Conn) {
	msg := websocket.FormatCloseMessage(
		websocket.CloseNormalClosure, "Done receiving")
	d := time.Now().Add(time.Second) // Liveness!
	if err := conn.WriteControl(websocket.CloseMessage, msg, d); err != nil {
		logging.Logger.WithError(err).Warn("live: conn.WriteControl failed")
	}
}

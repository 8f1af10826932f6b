package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/klauspost/compress/gzip"

	"github.com/ansg191/quiche/collector/results"
	"github.com/ansg191/quiche/collector/spec"
)

const streamDoc = "\x1e{\"qlog_version\":\"0.3\",\"trace\":{\"vantage_point\":{\"type\":\"client\"}}}\n" +
	"\x1e{\"time\":1,\"name\":\"transport:packet_sent\",\"data\":{\"header\":{\"packet_type\":\"initial\",\"packet_number\":0}}}\n" +
	"\x1e{\"time\":2,\"name\":\"recovery:metrics_updated\",\"data\":{\"smoothed_rtt\":30}}\n"

func newHandler(t *testing.T) (Handler, string) {
	t.Helper()
	dir := t.TempDir()
	return Handler{
		Upgrader: websocket.Upgrader{},
		DataDir:  dir,
		Compress: false,
		Version:  "test",
	}, dir
}

// findArchive waits for the handler to finish the archive, which for live
// streams happens after the websocket closes.
func findArchive(t *testing.T, datadir, kind string) (archive, meta string) {
	t.Helper()
	pattern := filepath.Join(datadir, "qlog", "*", "*", "*", "qlog-"+kind+"-*.meta.json")
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if matches, _ := filepath.Glob(pattern); len(matches) == 1 {
			meta = matches[0]
			archive = strings.TrimSuffix(meta, ".meta.json") + ".sqlog"
			return archive, meta
		}
		time.Sleep(50 * time.Millisecond)
	}
	t.Fatalf("no archive of kind %q under %s", kind, datadir)
	return "", ""
}

func readMetadata(t *testing.T, name string) results.Metadata {
	t.Helper()
	data, err := os.ReadFile(name)
	if err != nil {
		t.Fatal(err)
	}
	var meta results.Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		t.Fatal(err)
	}
	return meta
}

func TestLiveStream(t *testing.T) {
	h, dir := newHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.Live))
	defer srv.Close()

	headers := http.Header{}
	headers.Add("Sec-WebSocket-Protocol", spec.SecWebSocketProtocol)
	url := strings.Replace(srv.URL, "http://", "ws://", 1) + "?client_name=quiche"
	conn, _, err := websocket.DefaultDialer.Dial(url, headers)
	if err != nil {
		t.Fatal(err)
	}
	for _, rec := range strings.SplitAfter(strings.TrimSuffix(streamDoc, "\n"), "\n") {
		if err := conn.WriteMessage(websocket.TextMessage, []byte(rec)); err != nil {
			t.Fatal(err)
		}
	}
	conn.WriteControl(websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, "done"),
		time.Now().Add(time.Second))
	conn.Close()

	archive, metaName := findArchive(t, dir, "live")
	data, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(data, []byte{0x1e}); n != 3 {
		t.Errorf("archive has %d records, want 3", n)
	}

	meta := readMetadata(t, metaName)
	if meta.Kind != "live" || meta.Version != "test" || meta.SchemaVersion != results.CurrentSchemaVersion {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if meta.UUID == "" || meta.EndTime.Before(meta.StartTime) {
		t.Errorf("unexpected metadata: %+v", meta)
	}
	if len(meta.ClientMetadata) != 1 || meta.ClientMetadata[0].Name != "client_name" {
		t.Errorf("client metadata not recorded: %+v", meta.ClientMetadata)
	}
}

func TestLiveRejectsMissingSubprotocol(t *testing.T) {
	h, _ := newHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.Live))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestUpload(t *testing.T) {
	h, dir := newHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.Upload))
	defer srv.Close()

	resp, err := http.Post(srv.URL+"?client_name=quiche", "application/json-seq",
		strings.NewReader(streamDoc))
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	var reply struct {
		UUID    string `json:"uuid"`
		Records int64  `json:"records"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&reply); err != nil {
		t.Fatal(err)
	}
	if reply.UUID == "" || reply.Records != 3 {
		t.Errorf("reply = %+v, want 3 records", reply)
	}

	archive, metaName := findArchive(t, dir, "upload")
	data, err := os.ReadFile(archive)
	if err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(data, []byte{0x1e}); n != 3 {
		t.Errorf("archive has %d records, want 3", n)
	}
	meta := readMetadata(t, metaName)
	if meta.Kind != "upload" || meta.UUID != reply.UUID {
		t.Errorf("unexpected metadata: %+v", meta)
	}
}

func TestUploadGzip(t *testing.T) {
	h, dir := newHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.Upload))
	defer srv.Close()

	var body bytes.Buffer
	gz := gzip.NewWriter(&body)
	if _, err := gz.Write([]byte(streamDoc)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL, &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Encoding", "gzip")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want %d", resp.StatusCode, http.StatusOK)
	}
	findArchive(t, dir, "upload")
}

func TestUploadRejectsOversizedGzip(t *testing.T) {
	h, _ := newHandler(t)
	h.maxUploadSize = 1 << 10
	srv := httptest.NewServer(http.HandlerFunc(h.Upload))
	defer srv.Close()

	// Highly compressible document: small on the wire, far beyond the
	// limit once decompressed.
	doc := streamDoc + "\x1e{\"time\":3,\"name\":\"transport:packet_sent\",\"data\":{\"trigger\":\"" +
		strings.Repeat("a", 1<<16) + "\"}}\n"
	var body bytes.Buffer
	gz := gzip.NewWriter(&body)
	if _, err := gz.Write([]byte(doc)); err != nil {
		t.Fatal(err)
	}
	if err := gz.Close(); err != nil {
		t.Fatal(err)
	}
	if body.Len() >= 1<<10 {
		t.Fatalf("compressed body is %d bytes, want < %d", body.Len(), 1<<10)
	}

	req, err := http.NewRequest(http.MethodPost, srv.URL, &body)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Encoding", "gzip")
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
	}
}

func TestUploadWrongMethod(t *testing.T) {
	h, _ := newHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.Upload))
	defer srv.Close()

	resp, err := http.Get(srv.URL)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusMethodNotAllowed)
	}
	if allow := resp.Header.Get("Allow"); allow != http.MethodPost {
		t.Errorf("Allow = %q, want POST", allow)
	}
}

func TestUploadRejectsStreamWithoutHeader(t *testing.T) {
	h, _ := newHandler(t)
	srv := httptest.NewServer(http.HandlerFunc(h.Upload))
	defer srv.Close()

	tests := []struct{ name, body string }{
		{"empty", ""},
		{"event-first", "\x1e{\"time\":1,\"name\":\"transport:packet_sent\",\"data\":{}}\n"},
		{"bad-gzip", "not gzip"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req, err := http.NewRequest(http.MethodPost, srv.URL, strings.NewReader(tt.body))
			if err != nil {
				t.Fatal(err)
			}
			if tt.name == "bad-gzip" {
				req.Header.Set("Content-Encoding", "gzip")
			}
			resp, err := http.DefaultClient.Do(req)
			if err != nil {
				t.Fatal(err)
			}
			defer resp.Body.Close()
			if resp.StatusCode != http.StatusBadRequest {
				t.Errorf("status = %d, want %d", resp.StatusCode, http.StatusBadRequest)
			}
		})
	}
}

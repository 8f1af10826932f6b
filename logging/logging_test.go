package logging

import (
	"bytes"
	golog "log"
	"net/http"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ansg191/quiche/collector/listener"
	"github.com/m-lab/go/rtx"
)

// syncBuffer is written by the server goroutine and read by the test.
type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestMakeAccessLogHandler(t *testing.T) {
	buff := &syncBuffer{}
	old := golog.Writer()
	golog.SetOutput(buff)
	defer golog.SetOutput(old)

	f := MakeAccessLogHandler(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	srv := http.Server{
		Addr:    "127.0.0.1:0",
		Handler: f,
	}
	rtx.Must(listener.ListenAndServeAsync(&srv), "Could not start server")
	defer srv.Close()

	_, err := http.Get("http://" + srv.Addr + "/test-path")
	rtx.Must(err, "Could not get")

	// The access log line is written after the wrapped handler returns,
	// concurrently with the response reaching the client.
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		if strings.Contains(buff.String(), "/test-path") {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("no access log line, got %q", buff.String())
}

func TestSetDebug(t *testing.T) {
	level := Logger.Level
	defer func() { Logger.Level = level }()
	SetDebug()
	if Logger.Level.String() != "debug" {
		t.Errorf("log level = %s, want debug", Logger.Level)
	}
}

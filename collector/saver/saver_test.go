package saver

import (
	"bytes"
	"os"
	"testing"

	"go.uber.org/goleak"

	"github.com/ansg191/quiche/collector/receiver"
	"github.com/ansg191/quiche/collector/results"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestSaveAll(t *testing.T) {
	dir := t.TempDir()
	resultfp, err := results.NewFile("save-uuid", dir, "live", false)
	if err != nil {
		t.Fatal(err)
	}

	records := make(chan receiver.Record)
	stats := make(chan results.StreamStats)
	go func() {
		records <- receiver.Record{Raw: []byte(`{"qlog_version":"0.3"}`)}
		records <- receiver.Record{
			Raw:      []byte(`{"time":1,"name":"transport:packet_sent","data":{}}`),
			Name:     "transport:packet_sent",
			Category: "transport",
		}
		close(records)
	}()
	go func() {
		stats <- results.StreamStats{ElapsedTime: 500000, Records: 1, Bytes: 22}
		stats <- results.StreamStats{ElapsedTime: 1500000, Records: 2, Bytes: 70}
		close(stats)
	}()

	meta := &results.Metadata{}
	SaveAll(resultfp, meta, records, stats)
	if err := resultfp.Close(); err != nil {
		t.Fatal(err)
	}

	if len(meta.ServerStats) != 2 {
		t.Fatalf("got %d stats snapshots, want 2", len(meta.ServerStats))
	}
	if meta.ServerStats[1].Records != 2 {
		t.Errorf("second snapshot = %+v", meta.ServerStats[1])
	}

	data, err := os.ReadFile(resultfp.Name)
	if err != nil {
		t.Fatal(err)
	}
	if n := bytes.Count(data, []byte{0x1e}); n != 2 {
		t.Errorf("archive has %d records, want 2", n)
	}
	if !bytes.Contains(data, []byte("transport:packet_sent")) {
		t.Errorf("archive misses the event record: %q", data)
	}
}

func TestSaveAllDrainsAfterWriteFailure(t *testing.T) {
	dir := t.TempDir()
	resultfp, err := results.NewFile("drain-uuid", dir, "live", false)
	if err != nil {
		t.Fatal(err)
	}
	// Closed file: every write fails and SaveAll must still drain the
	// producers so they do not leak.
	if err := resultfp.Close(); err != nil {
		t.Fatal(err)
	}

	records := make(chan receiver.Record)
	stats := make(chan results.StreamStats)
	go func() {
		for i := 0; i < 10; i++ {
			records <- receiver.Record{Raw: []byte(`{"time":1,"name":"a:b","data":{}}`)}
		}
		close(records)
	}()
	go func() {
		stats <- results.StreamStats{}
		close(stats)
	}()

	meta := &results.Metadata{}
	SaveAll(resultfp, meta, records, stats)
}

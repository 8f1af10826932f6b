package measurer

import (
	"context"
	"testing"
	"time"

	"go.uber.org/goleak"

	"github.com/ansg191/quiche/collector/receiver"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func TestMeasurerSamplesCounters(t *testing.T) {
	var counters receiver.Counters
	counters.Records.Store(42)
	counters.Bytes.Store(1337)
	counters.CountEvent("transport")
	counters.CountEvent("transport")
	counters.CountEvent("recovery")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	m := New(&counters)
	var got int
	for stats := range m.Start(ctx) {
		if stats.Records != 42 || stats.Bytes != 1337 {
			t.Errorf("stats = %+v, want Records=42 Bytes=1337", stats)
		}
		if stats.Events["transport"] != 2 || stats.Events["recovery"] != 1 {
			t.Errorf("Events = %v, want transport=2 recovery=1", stats.Events)
		}
		if stats.ElapsedTime <= 0 {
			t.Errorf("ElapsedTime = %d, want > 0", stats.ElapsedTime)
		}
		got++
	}
	// With a minimum interval of 250ms at least one snapshot fits into
	// the two second window.
	if got == 0 {
		t.Error("no snapshots before the context expired")
	}
}

func TestMeasurerStopsOnCancel(t *testing.T) {
	var counters receiver.Counters
	ctx, cancel := context.WithCancel(context.Background())

	ch := New(&counters).Start(ctx)
	cancel()

	select {
	case _, ok := <-ch:
		if ok {
			// A snapshot raced the cancellation. The channel must still
			// close afterwards.
			for range ch {
			}
		}
	case <-time.After(5 * time.Second):
		t.Fatal("measurer did not stop after cancellation")
	}
}

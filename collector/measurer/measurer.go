// Package measurer periodically snapshots the collector's view of a live
// stream.
package measurer

import (
	"context"
	"time"

	"github.com/m-lab/go/memoryless"

	"github.com/ansg191/quiche/collector/receiver"
	"github.com/ansg191/quiche/collector/results"
	"github.com/ansg191/quiche/collector/spec"
	"github.com/ansg191/quiche/logging"
)

// Measurer samples stream counters on a poisson schedule, so that
// aggregate statistics over many archives are unbiased.
type Measurer struct {
	counters *receiver.Counters
}

// New creates a measurer sampling the receiver's counters.
func New(counters *receiver.Counters) *Measurer {
	return &Measurer{counters: counters}
}

func (m *Measurer) sample(elapsed time.Duration) results.StreamStats {
	return results.StreamStats{
		ElapsedTime: int64(elapsed / time.Microsecond),
		Records:     m.counters.Records.Load(),
		Bytes:       m.counters.Bytes.Load(),
		Events:      m.counters.EventCounts(),
	}
}

func (m *Measurer) loop(ctx context.Context, dst chan<- results.StreamStats) {
	logging.Logger.Debug("measurer: start")
	defer logging.Logger.Debug("measurer: stop")
	defer close(dst)
	measurerctx, cancel := context.WithTimeout(ctx, spec.MaxStreamRuntime)
	defer cancel()
	start := time.Now()
	// The ticker closes its channel once the controlling context expires.
	ticker, err := memoryless.NewTicker(measurerctx, memoryless.Config{
		Min:      spec.MinStatsInterval,
		Expected: spec.AvgStatsInterval,
		Max:      spec.MaxStatsInterval,
	})
	if err != nil {
		logging.Logger.WithError(err).Warn("memoryless.NewTicker failed")
		return
	}
	defer ticker.Stop()
	for range ticker.C {
		stats := m.sample(time.Since(start))
		select {
		case dst <- stats:
		case <-measurerctx.Done():
			return
		}
	}
}

// Start starts the measurer in a background goroutine. Snapshots are
// posted to the returned channel, which is closed when the measurer stops.
func (m *Measurer) Start(ctx context.Context) <-chan results.StreamStats {
	dst := make(chan results.StreamStats)
	go m.loop(ctx, dst)
	return dst
}

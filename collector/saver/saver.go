// Package saver archives a live qlog stream.
//
// A live stream produces two independent channels that both need saving:
// the records received from the client, which go into the archive file, and
// the collector's periodic stream statistics, which go into the sidecar
// metadata. Both channels are zipped together so the saver is the single
// writer and needs no locking.
package saver

import (
	"sync"

	"github.com/ansg191/quiche/collector/receiver"
	"github.com/ansg191/quiche/collector/results"
	"github.com/ansg191/quiche/logging"
)

// imsg is an internal message.
type imsg struct {
	rec   *receiver.Record
	stats *results.StreamStats
}

// zip joins the channel of received records and the channel of stream
// statistics onto the returned channel.
//
// This function assumes that both inputs provide liveness and
// deadlock-freedom guarantees (they eventually terminate and never block
// forever). Under that assumption the returned channel is closed once both
// inputs are closed.
func zip(records <-chan receiver.Record, stats <-chan results.StreamStats) <-chan imsg {
	outch := make(chan imsg)
	var wg sync.WaitGroup
	wg.Add(2)
	go func(out chan<- imsg) {
		for rec := range records {
			rec := rec
			out <- imsg{rec: &rec}
		}
		wg.Done()
	}(outch)
	go func(out chan<- imsg) {
		for s := range stats {
			s := s
			out <- imsg{stats: &s}
		}
		wg.Done()
	}(outch)
	go func() {
		wg.Wait()
		close(outch)
	}()
	return outch
}

// SaveAll drains both channels, writing records into the archive file and
// appending statistics snapshots to meta. The input channels must be closed
// by their producers and must eventually terminate; SaveAll then
// terminates too.
func SaveAll(resultfp *results.File, meta *results.Metadata, records <-chan receiver.Record, stats <-chan results.StreamStats) {
	zipch := zip(records, stats)
	defer func() {
		// Drain so producers never block if we stop writing early.
		for range zipch {
		}
	}()
	logging.Logger.Debug("saver: start")
	defer logging.Logger.Debug("saver: stop")
	for m := range zipch {
		if m.stats != nil {
			meta.ServerStats = append(meta.ServerStats, *m.stats)
			continue
		}
		if err := resultfp.WriteRecord(m.rec.Raw); err != nil {
			logging.Logger.WithError(err).Warn("saver: resultfp.WriteRecord failed")
			break
		}
	}
}

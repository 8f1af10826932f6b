// Package metrics exports collector metrics to prometheus to aid in
// server monitoring.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ActiveStreams counts qlog streams currently being received.
	ActiveStreams = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "qlog_collector_active_streams",
			Help: "A gauge of qlog streams currently being received.",
		},
		[]string{"kind"},
	)
	// StreamsTotal counts completed streams by final status.
	StreamsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qlog_collector_streams_total",
			Help: "Number of qlog streams received by this collector.",
		},
		[]string{"kind", "status"},
	)
	// EventsTotal counts archived events by category.
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qlog_collector_events_total",
			Help: "Number of qlog events archived, by event category.",
		},
		[]string{"category"},
	)
	// ReceiverErrors counts receiver errors on all return paths.
	ReceiverErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "qlog_collector_receiver_errors_total",
			Help: "Number of receiver errors on all return paths.",
		},
		[]string{"kind", "error"},
	)
	// ArchiveBytes counts bytes written to archive files, before
	// compression.
	ArchiveBytes = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "qlog_collector_archive_bytes_total",
			Help: "Number of bytes written to qlog archive files.",
		},
	)
	// StreamDuration is a histogram of stream lifetimes.
	StreamDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name: "qlog_collector_stream_duration_seconds",
			Help: "A histogram of qlog stream lifetimes.",
			Buckets: []float64{
				.01, .05, .1, .5, 1, 5, 10, 30, 60,
				120, 300, 600, 1200, 1800},
		},
		[]string{"kind"},
	)
)

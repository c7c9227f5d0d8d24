// Package metrics holds the Prometheus collectors for the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	ModeCounted = "counted"
	ModePreview = "preview"

	OutcomeServed      = "served"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

var (
	PastesCreated = promauto.NewCounter(prometheus.CounterOpts{
		Name: "pastebin_pastes_created_total",
		Help: "no. of pastes created",
	})
	PasteReads = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pastebin_paste_reads_total",
			Help: "no. of paste reads by mode and outcome",
		},
		[]string{"mode", "outcome"},
	)
	RequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pastebin_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route", "status"},
	)
)

// ModeOf returns the read-mode label for a counted or display-only read.
func ModeOf(counted bool) string {
	if counted {
		return ModeCounted
	}
	return ModePreview
}

var buildInfo = promauto.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "pastebin_build_info",
		Help: "constant 1, labelled with the running service name and version",
	},
	[]string{"service", "version"},
)

// SetBuildInfo publishes the service identity as pastebin_build_info.
func SetBuildInfo(service, version string) {
	buildInfo.WithLabelValues(service, version).Set(1)
}

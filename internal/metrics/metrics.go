// Package metrics provides Prometheus instrumentation for the moderation
// pipeline.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Action labels for MessagesTotal.
const (
	ActionScanned  = "scanned"
	ActionClean    = "clean"
	ActionDeleted  = "deleted"
	ActionEchoed   = "echoed"
	ActionNoRights = "no_rights"
)

var (
	// MessagesTotal counts processed group messages by outcome.
	MessagesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safebot_messages_total",
		Help: "Total number of group messages processed",
	}, []string{"action"})

	// InvitesTotal counts private invite requests by result locale key, or
	// "joined".
	InvitesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "safebot_invites_total",
		Help: "Total number of invite links handled",
	}, []string{"result"})

	// DuplicatesTotal counts updates skipped by the dedup guard.
	DuplicatesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "safebot_duplicates_total",
		Help: "Total number of duplicate updates skipped",
	})

	// ProcessingSeconds records handler latency.
	ProcessingSeconds = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "safebot_processing_seconds",
		Help:    "Message handler latency in seconds",
		Buckets: []float64{.001, .005, .01, .05, .1, .25, .5, 1, 2.5},
	})
)

func init() {
	prometheus.MustRegister(
		MessagesTotal,
		InvitesTotal,
		DuplicatesTotal,
		ProcessingSeconds,
	)
}

// Handler returns the Prometheus metrics HTTP handler.
func Handler() http.Handler {
	return promhttp.Handler()
}

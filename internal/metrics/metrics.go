// Package metrics exposes the Prometheus instrumentation for the ledger
// service, served at /metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Transfers counts transfer executions by outcome code ("ok" or the
	// boundary error code).
	Transfers = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_transfers_total",
		Help: "Transfer executions by outcome.",
	}, []string{"outcome"})

	// FeedEvents counts change-feed events applied to caches, by kind.
	FeedEvents = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "ledger_feed_events_applied_total",
		Help: "Change feed events applied to ledger caches, by kind.",
	}, []string{"kind"})

	// ReconcilerResyncs counts full resyncs triggered by a dropped feed.
	ReconcilerResyncs = promauto.NewCounter(prometheus.CounterOpts{
		Name: "ledger_reconciler_resyncs_total",
		Help: "Full cache resyncs after a dropped change feed subscription.",
	})
)

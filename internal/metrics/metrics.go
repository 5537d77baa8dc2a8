// Package metrics holds the process-wide counters exposed on /metrics.
package metrics

import (
	"fmt"
	"io"

	"github.com/VictoriaMetrics/metrics"
)

var (
	EventsPublished = metrics.NewCounter("tictactoe_events_published_total")
	EventsReceived  = metrics.NewCounter("tictactoe_events_received_total")
	EventsDropped   = metrics.NewCounter("tictactoe_events_dropped_total")
	SlowConsumers   = metrics.NewCounter("tictactoe_slow_consumers_total")
)

// CASCommitted - one committed transaction of op that wrote something.
func CASCommitted(op string) {
	casCommits(op).Inc()
}

// CASCommits - how many transactions of op have been committed so far.
func CASCommits(op string) uint64 {
	return casCommits(op).Get()
}

func casCommits(op string) *metrics.Counter {
	return metrics.GetOrCreateCounter(fmt.Sprintf(`tictactoe_cas_commits_total{op=%q}`, op))
}

// CASConflict - one attempt of op discarded because a watched key changed.
func CASConflict(op string) {
	metrics.GetOrCreateCounter(fmt.Sprintf(`tictactoe_cas_conflicts_total{op=%q}`, op)).Inc()
}

// RegisterConnections - exposes the number of locally attached connections.
func RegisterConnections(count func() int) {
	metrics.GetOrCreateGauge("tictactoe_connections", func() float64 {
		return float64(count())
	})
}

func WritePrometheus(w io.Writer) {
	metrics.WritePrometheus(w, true)
}

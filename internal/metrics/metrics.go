// Package metrics provides Prometheus counters for a gxcopy run.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors for one process. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	registry *prometheus.Registry

	apiCalls        *prometheus.CounterVec
	apiRetries      *prometheus.CounterVec
	itemsDiscovered *prometheus.CounterVec
	foldersListed   prometheus.Counter
	placements      *prometheus.CounterVec
}

// New creates a Metrics instance backed by its own registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		apiCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gxcopy_api_calls_total",
				Help: "Remote directory calls by operation and outcome",
			},
			[]string{"op", "outcome"},
		),
		apiRetries: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gxcopy_api_retries_total",
				Help: "Retries after transient remote errors",
			},
			[]string{"op"},
		),
		itemsDiscovered: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gxcopy_items_discovered_total",
				Help: "Distinct items discovered while walking the source tree",
			},
			[]string{"kind"},
		),
		foldersListed: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "gxcopy_folders_listed_total",
				Help: "Folders whose children were listed",
			},
		),
		placements: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "gxcopy_placements_total",
				Help: "Destination placements by action",
			},
			[]string{"action"},
		),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// APICall records the outcome of one remote call attempt.
func (m *Metrics) APICall(op, outcome string) {
	if m == nil {
		return
	}
	m.apiCalls.WithLabelValues(op, outcome).Inc()
}

// APIRetry records a retry of op.
func (m *Metrics) APIRetry(op string) {
	if m == nil {
		return
	}
	m.apiRetries.WithLabelValues(op).Inc()
}

// ItemDiscovered records a newly registered item.
func (m *Metrics) ItemDiscovered(kind string) {
	if m == nil {
		return
	}
	m.itemsDiscovered.WithLabelValues(kind).Inc()
}

// FolderListed records one folder listing.
func (m *Metrics) FolderListed() {
	if m == nil {
		return
	}
	m.foldersListed.Inc()
}

// Placement records a placement action (folder, move, copy, multifile, move_failed).
func (m *Metrics) Placement(action string) {
	if m == nil {
		return
	}
	m.placements.WithLabelValues(action).Inc()
}

// WriteTextfile writes all metrics in the text exposition format, suitable
// for the node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.registry)
}

// ABOUTME: Prometheus metrics for list sync runs
// ABOUTME: Counts membership changes and failures per list and writes node_exporter textfiles
package metrics

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds the sync counters in a private registry.
type Metrics struct {
	ContactsAddedTotal   *prometheus.CounterVec
	ContactsRemovedTotal *prometheus.CounterVec
	ListSyncErrorsTotal  *prometheus.CounterVec
	LastSyncTimestamp    *prometheus.GaugeVec

	registry *prometheus.Registry
}

// New creates a Metrics instance with all metrics registered.
func New() *Metrics {
	reg := prometheus.NewRegistry()

	m := &Metrics{
		ContactsAddedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groupsync_contacts_added_total",
				Help: "Total number of contacts added to a destination group",
			},
			[]string{"list"},
		),
		ContactsRemovedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groupsync_contacts_removed_total",
				Help: "Total number of contacts removed from a destination group",
			},
			[]string{"list"},
		),
		ListSyncErrorsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "groupsync_list_sync_errors_total",
				Help: "Total number of failed list syncs",
			},
			[]string{"list"},
		),
		LastSyncTimestamp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "groupsync_last_sync_timestamp_seconds",
				Help: "Unix time of the last successful sync of a list",
			},
			[]string{"list"},
		),
		registry: reg,
	}

	reg.MustRegister(
		m.ContactsAddedTotal,
		m.ContactsRemovedTotal,
		m.ListSyncErrorsTotal,
		m.LastSyncTimestamp,
	)

	return m
}

// RecordSuccess counts applied changes for a list and stamps its last sync time.
func (m *Metrics) RecordSuccess(list string, added, removed int, at time.Time) {
	m.ContactsAddedTotal.WithLabelValues(list).Add(float64(added))
	m.ContactsRemovedTotal.WithLabelValues(list).Add(float64(removed))
	m.LastSyncTimestamp.WithLabelValues(list).Set(float64(at.Unix()))
}

// RecordError counts a failed list sync.
func (m *Metrics) RecordError(list string) {
	m.ListSyncErrorsTotal.WithLabelValues(list).Inc()
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes the current values in text exposition format for the
// node_exporter textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics textfile: %w", err)
	}
	return nil
}

// Package metrics holds the Prometheus collectors schemaddl updates while
// rendering statements and aligning relations.
package metrics

import (
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/common/expfmt"
)

// Store holds the Prometheus metrics collectors.
type Store struct {
	Registry             *prometheus.Registry
	StatementsTotal      *prometheus.CounterVec
	UnsupportedTotal     *prometheus.CounterVec
	AlignmentsTotal      *prometheus.CounterVec
	BatchDurationSeconds *prometheus.HistogramVec
	RenderErrorsTotal    *prometheus.CounterVec
}

// NewMetricsStore creates and registers the collectors on a private registry.
func NewMetricsStore() *Store {
	registry := prometheus.NewRegistry()

	return &Store{
		Registry: registry,
		StatementsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "schemaddl_statements_total",
			Help: "Total number of rendered statements, labeled by dialect and operation.",
		}, []string{"dialect", "operation"}),
		UnsupportedTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "schemaddl_unsupported_total",
			Help: "Total number of change requests the dialect cannot express.",
		}, []string{"dialect", "operation"}),
		AlignmentsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "schemaddl_m2m_alignments_total",
			Help: "Total number of many-to-many alignments, labeled by the rule that applied.",
		}, []string{"rule"}),
		BatchDurationSeconds: promauto.With(registry).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "schemaddl_batch_duration_seconds",
			Help:    "Duration histogram for rendering one batch of change requests.",
			Buckets: prometheus.ExponentialBuckets(0.0001, 4, 10),
		}, []string{"dialect"}),
		RenderErrorsTotal: promauto.With(registry).NewCounterVec(prometheus.CounterOpts{
			Name: "schemaddl_render_errors_total",
			Help: "Total number of change requests rejected as invalid.",
		}, []string{"dialect", "operation"}),
	}
}

// WriteText writes every collected metric in the Prometheus text format.
func (s *Store) WriteText(w io.Writer) error {
	families, err := s.Registry.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	enc := expfmt.NewEncoder(w, expfmt.NewFormat(expfmt.TypeTextPlain))
	for _, mf := range families {
		if err := enc.Encode(mf); err != nil {
			return fmt.Errorf("failed to encode metric %s: %w", mf.GetName(), err)
		}
	}
	return nil
}

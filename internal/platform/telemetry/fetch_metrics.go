package telemetry

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// Fetch outcomes recorded on quote_fetch_total.
const (
	OutcomeSuccess     = "success"
	OutcomeEmpty       = "empty"
	OutcomeUnavailable = "unavailable"
	OutcomeError       = "error"
)

// FetchMetrics counts quote fetches by category and outcome.
type FetchMetrics struct {
	total *prometheus.CounterVec
}

// NewFetchMetrics registers quote_fetch_total on reg. Registering twice on the
// same registry returns the existing collector.
func NewFetchMetrics(reg prometheus.Registerer) (*FetchMetrics, error) {
	total := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "quote_fetch_total",
		Help: "Quote fetches from the upstream API by category and outcome.",
	}, []string{"category", "outcome"})

	if err := reg.Register(total); err != nil {
		var are prometheus.AlreadyRegisteredError
		if !errors.As(err, &are) {
			return nil, err
		}
		existing, ok := are.ExistingCollector.(*prometheus.CounterVec)
		if !ok {
			return nil, err
		}
		total = existing
	}

	return &FetchMetrics{total: total}, nil
}

// RecordFetch increments the counter for one completed fetch.
func (m *FetchMetrics) RecordFetch(category, outcome string) {
	m.total.WithLabelValues(category, outcome).Inc()
}

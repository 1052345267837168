// Package observability exposes Prometheus metrics for the ephemeris engine.
package observability

import (
	"fmt"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// EngineCollector bundles the Prometheus metrics recorded by engines. One
// collector may be shared by many engines; the Prometheus types are safe for
// concurrent use.
type EngineCollector struct {
	gatherer prometheus.Gatherer

	CacheRequests *prometheus.CounterVec
	ProviderCalls *prometheus.CounterVec
	Fallbacks     *prometheus.CounterVec
	Errors        *prometheus.CounterVec
	CalcDurations *prometheus.HistogramVec
}

// NewEngineCollector registers engine metrics against reg, defaulting to the
// global Prometheus registry when nil. Collectors already registered under the
// same name are reused.
func NewEngineCollector(reg prometheus.Registerer) (*EngineCollector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	cache, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "astroeph_cache_requests_total",
		Help: "Body result cache lookups, labeled hit or miss.",
	}, []string{"result"}), "astroeph_cache_requests_total")
	if err != nil {
		return nil, err
	}
	calls, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "astroeph_provider_calls_total",
		Help: "Raw state evaluations, labeled by ephemeris model.",
	}, []string{"model"}), "astroeph_provider_calls_total")
	if err != nil {
		return nil, err
	}
	fallbacks, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "astroeph_fallbacks_total",
		Help: "Model downgrades, labeled by the model given up and the one used instead.",
	}, []string{"from", "to"}), "astroeph_fallbacks_total")
	if err != nil {
		return nil, err
	}
	errs, err := registerCounterVec(reg, prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "astroeph_errors_total",
		Help: "Failed computations, labeled by error kind.",
	}, []string{"kind"}), "astroeph_errors_total")
	if err != nil {
		return nil, err
	}
	durations, err := registerHistogramVec(reg, prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "astroeph_calc_duration_seconds",
		Help:    "Wall time of full pipeline computations, labeled by model.",
		Buckets: []float64{1e-6, 5e-6, 1e-5, 5e-5, 1e-4, 5e-4, 1e-3, 5e-3, 0.01, 0.05},
	}, []string{"model"}), "astroeph_calc_duration_seconds")
	if err != nil {
		return nil, err
	}

	return &EngineCollector{
		gatherer:      gatherer,
		CacheRequests: cache,
		ProviderCalls: calls,
		Fallbacks:     fallbacks,
		Errors:        errs,
		CalcDurations: durations,
	}, nil
}

// CacheRequest records a cache lookup.
func (c *EngineCollector) CacheRequest(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.CacheRequests.WithLabelValues(result).Inc()
}

// ProviderCall records one raw state evaluation by model.
func (c *EngineCollector) ProviderCall(model string) {
	if c == nil {
		return
	}
	c.ProviderCalls.WithLabelValues(model).Inc()
}

// Fallback records a downgrade from one model to another.
func (c *EngineCollector) Fallback(from, to string) {
	if c == nil {
		return
	}
	c.Fallbacks.WithLabelValues(from, to).Inc()
}

// Error records a failed computation.
func (c *EngineCollector) Error(kind string) {
	if c == nil {
		return
	}
	c.Errors.WithLabelValues(kind).Inc()
}

// ObserveCalc records the duration of a full computation.
func (c *EngineCollector) ObserveCalc(model string, d time.Duration) {
	if c == nil {
		return
	}
	c.CalcDurations.WithLabelValues(model).Observe(d.Seconds())
}

// Handler exposes a ready-to-use /metrics handler.
func (c *EngineCollector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

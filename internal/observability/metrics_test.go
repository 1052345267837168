package observability

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEngineCollector_Records(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewEngineCollector(reg)
	require.NoError(t, err)

	c.CacheRequest(true)
	c.CacheRequest(true)
	c.CacheRequest(false)
	c.ProviderCall("cheb")
	c.Fallback("jpl", "cheb")
	c.Error("out_of_range")
	c.ObserveCalc("cheb", 20*time.Microsecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(c.CacheRequests.WithLabelValues("hit")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.CacheRequests.WithLabelValues("miss")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.ProviderCalls.WithLabelValues("cheb")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Fallbacks.WithLabelValues("jpl", "cheb")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.Errors.WithLabelValues("out_of_range")))
	assert.Equal(t, 1, testutil.CollectAndCount(c.CalcDurations))
}

func TestEngineCollector_ReusesRegistered(t *testing.T) {
	reg := prometheus.NewRegistry()
	first, err := NewEngineCollector(reg)
	require.NoError(t, err)
	second, err := NewEngineCollector(reg)
	require.NoError(t, err)

	first.ProviderCall("jpl")
	second.ProviderCall("jpl")
	assert.Same(t, first.ProviderCalls, second.ProviderCalls)
	assert.Equal(t, 2.0, testutil.ToFloat64(first.ProviderCalls.WithLabelValues("jpl")))
}

func TestEngineCollector_IncompatibleRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "astroeph_cache_requests_total",
		Help: "clash",
	}))
	_, err := NewEngineCollector(reg)
	assert.Error(t, err)
}

func TestEngineCollector_NilSafe(t *testing.T) {
	var c *EngineCollector
	assert.NotPanics(t, func() {
		c.CacheRequest(true)
		c.ProviderCall("analytic")
		c.Fallback("cheb", "analytic")
		c.Error("io")
		c.ObserveCalc("analytic", time.Millisecond)
	})
}

func TestEngineCollector_Handler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := NewEngineCollector(reg)
	require.NoError(t, err)
	c.Fallback("cheb", "analytic")

	rr := httptest.NewRecorder()
	c.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `astroeph_fallbacks_total{from="cheb",to="analytic"} 1`)
}

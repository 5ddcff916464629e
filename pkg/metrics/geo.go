package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// GeoMetrics records metadata for proximity queries and reverse geocoding.
type GeoMetrics struct {
	nearbyDuration  *prometheus.HistogramVec
	nearbyResults   prometheus.Histogram
	geocodeFailures prometheus.Counter
	cacheHits       *prometheus.CounterVec
}

// NewGeoMetrics registers the geo metrics on the provided registerer.
func NewGeoMetrics(reg prometheus.Registerer) *GeoMetrics {
	if reg == nil {
		return &GeoMetrics{}
	}
	nearbyDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "nearby_query_duration_seconds",
		Help:    "Duration of nearby product queries in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"driver"})
	nearbyResults := prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "nearby_query_results",
		Help:    "Result counts returned by nearby product queries.",
		Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250},
	})
	geocodeFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "reverse_geocode_failures_total",
		Help: "Reverse geocode lookups that failed or timed out.",
	})
	cacheHits := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "nearby_cache_requests_total",
		Help: "Nearby cache lookups by outcome.",
	}, []string{"outcome"})
	reg.MustRegister(nearbyDuration, nearbyResults, geocodeFailures, cacheHits)
	return &GeoMetrics{
		nearbyDuration:  nearbyDuration,
		nearbyResults:   nearbyResults,
		geocodeFailures: geocodeFailures,
		cacheHits:       cacheHits,
	}
}

// ObserveNearbyQuery records one completed proximity query.
func (m *GeoMetrics) ObserveNearbyQuery(driver string, results int, elapsed time.Duration) {
	if m == nil || m.nearbyDuration == nil {
		return
	}
	m.nearbyDuration.WithLabelValues(driver).Observe(elapsed.Seconds())
	m.nearbyResults.Observe(float64(results))
}

// IncGeocodeFailure counts a failed reverse geocode lookup.
func (m *GeoMetrics) IncGeocodeFailure() {
	if m == nil || m.geocodeFailures == nil {
		return
	}
	m.geocodeFailures.Inc()
}

// IncCacheHit counts a nearby cache hit.
func (m *GeoMetrics) IncCacheHit() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues("hit").Inc()
}

// IncCacheMiss counts a nearby cache miss.
func (m *GeoMetrics) IncCacheMiss() {
	if m == nil || m.cacheHits == nil {
		return
	}
	m.cacheHits.WithLabelValues("miss").Inc()
}

package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// Registry holds all Prometheus metrics.
type Registry struct {
	*prometheus.Registry

	scanCycles      prometheus.Counter
	scanDuration    prometheus.Histogram
	scanExamined    prometheus.Gauge
	scanCandidates  *prometheus.GaugeVec
	providerErrors  *prometheus.CounterVec
	cacheHitsTotal  *prometheus.CounterVec
}

// NewRegistry creates a new metrics registry with all metrics registered.
func NewRegistry() *Registry {
	reg := prometheus.NewRegistry()

	// Register Go runtime metrics
	reg.MustRegister(collectors.NewGoCollector())
	reg.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &Registry{
		Registry: reg,

		scanCycles: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "pulse_scan_cycles_total",
				Help: "Total number of market scan passes completed",
			},
		),
		scanDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pulse_scan_duration_seconds",
				Help:    "Market scan duration in seconds",
				Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
			},
		),
		scanExamined: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "pulse_scan_symbols_examined",
				Help: "Symbols with a usable series in the last scan",
			},
		),
		scanCandidates: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pulse_scan_candidates",
				Help: "Qualified candidates in the last scan per side",
			},
			[]string{"side"},
		),
		providerErrors: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_provider_errors_total",
				Help: "Total provider request failures",
			},
			[]string{"provider"},
		),
		cacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pulse_cache_requests_total",
				Help: "Scan result cache lookups by outcome",
			},
			[]string{"outcome"},
		),
	}

	reg.MustRegister(r.scanCycles)
	reg.MustRegister(r.scanDuration)
	reg.MustRegister(r.scanExamined)
	reg.MustRegister(r.scanCandidates)
	reg.MustRegister(r.providerErrors)
	reg.MustRegister(r.cacheHitsTotal)

	return r
}

// RecordScan records one completed scan pass.
func (r *Registry) RecordScan(duration float64, examined, oversold, overbought int) {
	r.scanCycles.Inc()
	r.scanDuration.Observe(duration)
	r.scanExamined.Set(float64(examined))
	r.scanCandidates.WithLabelValues("oversold").Set(float64(oversold))
	r.scanCandidates.WithLabelValues("overbought").Set(float64(overbought))
}

// RecordProviderError records a failed provider request.
func (r *Registry) RecordProviderError(provider string) {
	r.providerErrors.WithLabelValues(provider).Inc()
}

// RecordCacheHit records a scan cache hit.
func (r *Registry) RecordCacheHit() {
	r.cacheHitsTotal.WithLabelValues("hit").Inc()
}

// RecordCacheMiss records a scan cache miss.
func (r *Registry) RecordCacheMiss() {
	r.cacheHitsTotal.WithLabelValues("miss").Inc()
}

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "stakedash"

// API request results.
const (
	ResultOK       = "ok"
	ResultRejected = "rejected"
	ResultNetwork  = "network"
	ResultDecode   = "decode"
)

// Collector holds the dashboard's Prometheus metrics in a dedicated registry
// so they do not interfere with the default global registry.
//
// All methods are safe on a nil *Collector, which records nothing.
type Collector struct {
	registry *prometheus.Registry

	apiRequests     *prometheus.CounterVec
	apiDuration     *prometheus.HistogramVec
	actions         *prometheus.CounterVec
	priceFallbacks  *prometheus.CounterVec
	ethUSD          prometheus.Gauge
	activeStakes    prometheus.Gauge
	refreshes       *prometheus.CounterVec
	lastRefresh     prometheus.Gauge
	snapshotsStored prometheus.Counter
}

// NewCollector creates a Collector with all metrics registered.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()

	apiRequests := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Backend API requests by endpoint and result.",
	}, []string{"endpoint", "result"})

	apiDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Backend API latency by endpoint.",
		Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
	}, []string{"endpoint"})

	actions := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "actions_total",
		Help:      "Staking actions by kind and outcome.",
	}, []string{"kind", "outcome"})

	priceFallbacks := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "price_fallbacks_total",
		Help:      "Price feed lookups that fell back to a cached or default quote, by reason.",
	}, []string{"reason"})

	ethUSD := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "eth_usd_price",
		Help:      "ETH/USD quote currently used for display conversion.",
	})

	activeStakes := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "active_stakes",
		Help:      "Stakes with status staked as of the last refresh.",
	})

	refreshes := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "refreshes_total",
		Help:      "Dashboard refresh cycles by result.",
	}, []string{"result"})

	lastRefresh := prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "last_refresh_timestamp_seconds",
		Help:      "Unix time of the last successful refresh.",
	})

	snapshots := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "snapshots_recorded_total",
		Help:      "Summary snapshots written to local history.",
	})

	reg.MustRegister(apiRequests, apiDuration, actions, priceFallbacks,
		ethUSD, activeStakes, refreshes, lastRefresh, snapshots)

	return &Collector{
		registry:        reg,
		apiRequests:     apiRequests,
		apiDuration:     apiDuration,
		actions:         actions,
		priceFallbacks:  priceFallbacks,
		ethUSD:          ethUSD,
		activeStakes:    activeStakes,
		refreshes:       refreshes,
		lastRefresh:     lastRefresh,
		snapshotsStored: snapshots,
	}
}

// Registry returns the Prometheus registry used by this collector.
func (c *Collector) Registry() *prometheus.Registry {
	if c == nil {
		return nil
	}
	return c.registry
}

// ObserveRequest records one backend round-trip.
func (c *Collector) ObserveRequest(endpoint, result string, d time.Duration) {
	if c == nil {
		return
	}
	c.apiRequests.WithLabelValues(endpoint, result).Inc()
	c.apiDuration.WithLabelValues(endpoint).Observe(d.Seconds())
}

// ObserveAction records the outcome of a coordinator action.
func (c *Collector) ObserveAction(kind, outcome string) {
	if c == nil {
		return
	}
	c.actions.WithLabelValues(kind, outcome).Inc()
}

// ObservePrice records the quote in use and, when reason is non-empty, that
// it came from a fallback.
func (c *Collector) ObservePrice(usd float64, fallbackReason string) {
	if c == nil {
		return
	}
	c.ethUSD.Set(usd)
	if fallbackReason != "" {
		c.priceFallbacks.WithLabelValues(fallbackReason).Inc()
	}
}

// ObserveRefresh records a refresh cycle.
func (c *Collector) ObserveRefresh(err error, activeStakes int, at time.Time) {
	if c == nil {
		return
	}
	if err != nil {
		c.refreshes.WithLabelValues("error").Inc()
		return
	}
	c.refreshes.WithLabelValues("ok").Inc()
	c.activeStakes.Set(float64(activeStakes))
	c.lastRefresh.Set(float64(at.Unix()))
}

// ObserveSnapshot counts a history row written.
func (c *Collector) ObserveSnapshot() {
	if c == nil {
		return
	}
	c.snapshotsStored.Inc()
}

// Handler returns an http.Handler that serves metrics in the Prometheus
// text exposition format.
func (c *Collector) Handler() http.Handler {
	if c == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// PrometheusHooks implements every hook interface with Prometheus collectors.
type PrometheusHooks struct {
	drops       *prometheus.HistogramVec
	members     *prometheus.HistogramVec
	snapshots   prometheus.Counter
	historyLen  prometheus.Gauge
	history     *prometheus.CounterVec
	violations  prometheus.Counter
	storeOps    *prometheus.HistogramVec
	storeErrors *prometheus.CounterVec
	cacheOps    *prometheus.CounterVec
	cacheBytes  prometheus.Counter
	requests    *prometheus.HistogramVec
}

// NewPrometheusHooks creates the collectors and registers them with reg.
// A nil reg skips registration.
func NewPrometheusHooks(reg prometheus.Registerer) *PrometheusHooks {
	h := &PrometheusHooks{
		drops: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stackcanvas",
			Subsystem: "editor",
			Name:      "drag_duration_seconds",
			Help:      "Duration of drag gestures by outcome.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10},
		}, []string{"outcome"}),
		members: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stackcanvas",
			Subsystem: "editor",
			Name:      "container_members",
			Help:      "Member count after a membership update.",
			Buckets:   prometheus.LinearBuckets(0, 2, 10),
		}, []string{"kind"}),
		snapshots: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stackcanvas",
			Subsystem: "history",
			Name:      "snapshots_total",
			Help:      "History snapshots taken.",
		}),
		historyLen: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stackcanvas",
			Subsystem: "history",
			Name:      "length",
			Help:      "History length after the last snapshot.",
		}),
		history: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stackcanvas",
			Subsystem: "history",
			Name:      "navigations_total",
			Help:      "Undo and redo requests by whether they moved.",
		}, []string{"action", "moved"}),
		violations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stackcanvas",
			Subsystem: "editor",
			Name:      "limit_violations_total",
			Help:      "Manual limit violations detected.",
		}),
		storeOps: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stackcanvas",
			Subsystem: "store",
			Name:      "operation_duration_seconds",
			Help:      "Store operation latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"backend", "op"}),
		storeErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stackcanvas",
			Subsystem: "store",
			Name:      "errors_total",
			Help:      "Failed store operations.",
		}, []string{"backend", "op"}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stackcanvas",
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Artifact cache lookups and writes.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stackcanvas",
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the artifact cache.",
		}),
		requests: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "stackcanvas",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP API latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route", "code"}),
	}

	if reg != nil {
		reg.MustRegister(h.Collectors()...)
	}
	return h
}

// Collectors returns every collector owned by h.
func (h *PrometheusHooks) Collectors() []prometheus.Collector {
	return []prometheus.Collector{
		h.drops, h.members, h.snapshots, h.historyLen, h.history, h.violations,
		h.storeOps, h.storeErrors, h.cacheOps, h.cacheBytes, h.requests,
	}
}

func (h *PrometheusHooks) OnDrop(outcome string, d time.Duration) {
	h.drops.WithLabelValues(outcome).Observe(d.Seconds())
}

func (h *PrometheusHooks) OnMembershipChange(kind string, members int) {
	h.members.WithLabelValues(kind).Observe(float64(members))
}

func (h *PrometheusHooks) OnSnapshot(length int) {
	h.snapshots.Inc()
	h.historyLen.Set(float64(length))
}

func (h *PrometheusHooks) OnHistory(action string, moved bool) {
	h.history.WithLabelValues(action, strconv.FormatBool(moved)).Inc()
}

func (h *PrometheusHooks) OnLimitViolation(string, []string) {
	h.violations.Inc()
}

func (h *PrometheusHooks) OnOperation(_ context.Context, backend, op string, d time.Duration, err error) {
	h.storeOps.WithLabelValues(backend, op).Observe(d.Seconds())
	if err != nil {
		h.storeErrors.WithLabelValues(backend, op).Inc()
	}
}

func (h *PrometheusHooks) OnCacheHit(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (h *PrometheusHooks) OnCacheMiss(_ context.Context, keyType string) {
	h.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (h *PrometheusHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	h.cacheOps.WithLabelValues(keyType, "set").Inc()
	h.cacheBytes.Add(float64(size))
}

func (h *PrometheusHooks) OnRequest(_ context.Context, method, route string, code int, d time.Duration) {
	h.requests.WithLabelValues(method, route, strconv.Itoa(code)).Observe(d.Seconds())
}

var (
	_ EditorHooks = (*PrometheusHooks)(nil)
	_ StoreHooks  = (*PrometheusHooks)(nil)
	_ CacheHooks  = (*PrometheusHooks)(nil)
	_ HTTPHooks   = (*PrometheusHooks)(nil)
)

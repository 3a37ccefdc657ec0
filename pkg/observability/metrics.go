package observability

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/mondrian/pkg/errors"
)

const namespace = "mondrian"

// MetricsHooks records pipeline, cache, and HTTP events as Prometheus
// metrics. The server exposes them on /metrics.
type MetricsHooks struct {
	stageSeconds *prometheus.HistogramVec
	lanes        prometheus.Histogram
	pages        prometheus.Histogram
	cacheOps     *prometheus.CounterVec
	cacheBytes   *prometheus.CounterVec
	requests     *prometheus.CounterVec
	reqSeconds   *prometheus.HistogramVec
	inFlight     prometheus.Gauge
	reqErrors    *prometheus.CounterVec
}

// NewMetricsHooks creates the collectors and registers them with reg.
// Registering twice with the same registry fails.
func NewMetricsHooks(reg prometheus.Registerer) (*MetricsHooks, error) {
	m := &MetricsHooks{
		stageSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "stage_duration_seconds",
			Help:      "Duration of layout, pack, and render stages, cache lookups included.",
			Buckets:   prometheus.ExponentialBuckets(0.0005, 4, 10),
		}, []string{"stage", "outcome"}),
		lanes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "layout_lanes",
			Help:      "Lanes used per successful layout.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
		pages: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "pipeline",
			Name:      "pack_pages",
			Help:      "Atlas pages produced per successful pack.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 8),
		}),
		cacheOps: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "operations_total",
			Help:      "Cache lookups and writes by key type and result.",
		}, []string{"key_type", "result"}),
		cacheBytes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "written_bytes_total",
			Help:      "Bytes written to the cache by key type.",
		}, []string{"key_type"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "HTTP responses by method, route, and status.",
		}, []string{"method", "route", "status"}),
		reqSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		inFlight: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_in_flight",
			Help:      "Requests currently being served.",
		}),
		reqErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "errors_total",
			Help:      "Failed requests by route and error code.",
		}, []string{"route", "code"}),
	}

	for _, c := range []prometheus.Collector{
		m.stageSeconds, m.lanes, m.pages, m.cacheOps, m.cacheBytes,
		m.requests, m.reqSeconds, m.inFlight, m.reqErrors,
	} {
		if err := reg.Register(c); err != nil {
			return nil, err
		}
	}
	return m, nil
}

// Install registers m for every event category.
func (m *MetricsHooks) Install() { InstallHooks(m) }

func outcome(err error) string {
	if err != nil {
		return "error"
	}
	return "ok"
}

func (m *MetricsHooks) observeStage(stage string, d time.Duration, err error) {
	m.stageSeconds.WithLabelValues(stage, outcome(err)).Observe(d.Seconds())
}

func (m *MetricsHooks) OnLayoutStart(context.Context, int) {}

func (m *MetricsHooks) OnLayoutComplete(_ context.Context, laneCount int, d time.Duration, err error) {
	m.observeStage("layout", d, err)
	if err == nil {
		m.lanes.Observe(float64(laneCount))
	}
}

func (m *MetricsHooks) OnPackStart(context.Context, int, int) {}

func (m *MetricsHooks) OnPackComplete(_ context.Context, pageCount int, d time.Duration, err error) {
	m.observeStage("pack", d, err)
	if err == nil {
		m.pages.Observe(float64(pageCount))
	}
}

func (m *MetricsHooks) OnRenderStart(context.Context, []string) {}

func (m *MetricsHooks) OnRenderComplete(_ context.Context, _ []string, d time.Duration, err error) {
	m.observeStage("render", d, err)
}

func (m *MetricsHooks) OnCacheHit(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "hit").Inc()
}

func (m *MetricsHooks) OnCacheMiss(_ context.Context, keyType string) {
	m.cacheOps.WithLabelValues(keyType, "miss").Inc()
}

func (m *MetricsHooks) OnCacheSet(_ context.Context, keyType string, size int) {
	m.cacheOps.WithLabelValues(keyType, "set").Inc()
	m.cacheBytes.WithLabelValues(keyType).Add(float64(size))
}

func (m *MetricsHooks) OnRequest(context.Context, string, string) { m.inFlight.Inc() }

func (m *MetricsHooks) OnResponse(_ context.Context, method, route string, status int, d time.Duration) {
	m.inFlight.Dec()
	m.requests.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.reqSeconds.WithLabelValues(method, route).Observe(d.Seconds())
}

func (m *MetricsHooks) OnError(_ context.Context, _, route string, err error) {
	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	m.reqErrors.WithLabelValues(route, string(code)).Inc()
}

var _ Hooks = (*MetricsHooks)(nil)

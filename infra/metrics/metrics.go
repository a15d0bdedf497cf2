// Package metrics exposes Prometheus counters for the timeline cache, the
// Mastodon client and the event relay.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/CrestNiraj12/fedtimeline/domain"
)

const namespace = "fedtimeline"

// Collector holds all Prometheus metrics for the client. It satisfies
// timeline.Recorder, mastodon.Recorder and redisbus.Recorder.
type Collector struct {
	registry *prometheus.Registry

	pagesFetched    *prometheus.CounterVec
	statusesFetched *prometheus.CounterVec
	fetchFailures   *prometheus.CounterVec
	statusesHidden  *prometheus.CounterVec

	apiRequests *prometheus.CounterVec
	apiDuration *prometheus.HistogramVec

	eventsRelayed *prometheus.CounterVec
}

// NewCollector registers every metric on a fresh registry.
func NewCollector() *Collector {
	c := &Collector{
		registry: prometheus.NewRegistry(),
		pagesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timeline_pages_fetched_total",
			Help:      "Pages fetched from the remote timeline",
		}, []string{"timeline"}),
		statusesFetched: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timeline_statuses_fetched_total",
			Help:      "Statuses received in fetched pages",
		}, []string{"timeline"}),
		fetchFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timeline_fetch_failures_total",
			Help:      "Failed page fetches by error kind",
		}, []string{"timeline", "kind"}),
		statusesHidden: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "timeline_statuses_hidden_total",
			Help:      "Statuses dropped by a hiding filter",
		}, []string{"timeline"}),
		apiRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "api_requests_total",
			Help:      "Mastodon API requests by method and status code, 0 for transport failures",
		}, []string{"method", "code"}),
		apiDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "api_request_duration_seconds",
			Help:      "Mastodon API request duration",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		eventsRelayed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_relayed_total",
			Help:      "Timeline events relayed through Redis",
		}, []string{"event", "direction"}),
	}

	c.registry.MustRegister(
		c.pagesFetched,
		c.statusesFetched,
		c.fetchFailures,
		c.statusesHidden,
		c.apiRequests,
		c.apiDuration,
		c.eventsRelayed,
		collectors.NewGoCollector(),
	)
	return c
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry { return c.registry }

func (c *Collector) PageFetched(timeline string, statuses int) {
	c.pagesFetched.WithLabelValues(timeline).Inc()
	c.statusesFetched.WithLabelValues(timeline).Add(float64(statuses))
}

func (c *Collector) FetchFailed(timeline string, kind domain.ErrorKind) {
	c.fetchFailures.WithLabelValues(timeline, kind.String()).Inc()
}

func (c *Collector) StatusesHidden(timeline string, n int) {
	c.statusesHidden.WithLabelValues(timeline).Add(float64(n))
}

func (c *Collector) Request(method string, status int, elapsed time.Duration) {
	c.apiRequests.WithLabelValues(method, strconv.Itoa(status)).Inc()
	c.apiDuration.WithLabelValues(method).Observe(elapsed.Seconds())
}

// EventRelayed counts one event; direction is "out" or "in".
func (c *Collector) EventRelayed(event, direction string) {
	c.eventsRelayed.WithLabelValues(event, direction).Inc()
}

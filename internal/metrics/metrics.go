package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "chorecal"

// Metrics owns a private registry so tests can build as many as they like.
type Metrics struct {
	registry *prometheus.Registry

	requestsTotal   *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec

	completions        prometheus.Counter
	uncompletions      prometheus.Counter
	pointsAwarded      prometheus.Counter
	badgesAwarded      *prometheus.CounterVec
	instancesGenerated prometheus.Counter
	assignments        *prometheus.CounterVec
	remindersEmitted   prometheus.Counter
	wsClients          prometheus.Gauge
}

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "pattern", "status"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "pattern"}),
		completions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completions_total",
			Help:      "Chore instances marked complete",
		}),
		uncompletions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "uncompletions_total",
			Help:      "Completions removed",
		}),
		pointsAwarded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "points_awarded_total",
			Help:      "Points awarded for completions",
		}),
		badgesAwarded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "badges_awarded_total",
			Help:      "Badges earned, by badge id",
		}, []string{"badge"}),
		instancesGenerated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "instances_generated_total",
			Help:      "Chore instances produced by expansion",
		}),
		assignments: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "assignments_total",
			Help:      "Assignments made, by strategy",
		}, []string{"strategy"}),
		remindersEmitted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "reminders_emitted_total",
			Help:      "instance_due reminders emitted",
		}),
		wsClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "websocket_clients",
			Help:      "Connected websocket clients",
		}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requestsTotal,
		m.requestDuration,
		m.completions,
		m.uncompletions,
		m.pointsAwarded,
		m.badgesAwarded,
		m.instancesGenerated,
		m.assignments,
		m.remindersEmitted,
		m.wsClients,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) ObserveRequest(method, pattern string, status int, d time.Duration) {
	if pattern == "" {
		pattern = "unmatched"
	}
	m.requestsTotal.WithLabelValues(method, pattern, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(method, pattern).Observe(d.Seconds())
}

func (m *Metrics) Completed(points int, badges []string) {
	m.completions.Inc()
	m.pointsAwarded.Add(float64(points))
	for _, b := range badges {
		m.badgesAwarded.WithLabelValues(b).Inc()
	}
}

func (m *Metrics) Uncompleted() { m.uncompletions.Inc() }

func (m *Metrics) InstancesGenerated(n int) { m.instancesGenerated.Add(float64(n)) }

func (m *Metrics) Assigned(strategy string, n int) {
	m.assignments.WithLabelValues(strategy).Add(float64(n))
}

func (m *Metrics) ReminderEmitted() { m.remindersEmitted.Inc() }

func (m *Metrics) ClientConnected()    { m.wsClients.Inc() }
func (m *Metrics) ClientDisconnected() { m.wsClients.Dec() }

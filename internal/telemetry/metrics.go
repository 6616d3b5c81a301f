package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
)

// MetricsClient records counters for the workflow and its serving modes.
type MetricsClient interface {
	IncrementWorkflowCounter(outcome string)
	IncrementToolRunCounter(tool, status string)
	IncrementQueuePushCounter(status string)
	IncrementServerRequestCounter(status string)
	ObserveTranscodeDuration(seconds float64)
}

// DefaultMetricsClient backs MetricsClient with Prometheus metrics.
type DefaultMetricsClient struct {
	workflowCounter      *prometheus.CounterVec
	toolRunCounter       *prometheus.CounterVec
	queuePushCounter     *prometheus.CounterVec
	serverRequestCounter *prometheus.CounterVec
	transcodeDuration    prometheus.Histogram
}

// NewDefaultMetricsClient initializes and registers Prometheus metrics
func NewDefaultMetricsClient() (*DefaultMetricsClient, error) {
	m := &DefaultMetricsClient{
		workflowCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "transcode_workflows_total",
				Help: "Total number of workflow runs by outcome",
			},
			[]string{"outcome"},
		),
		toolRunCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "external_tool_runs_total",
				Help: "Total number of external tool invocations",
			},
			[]string{"tool", "status"},
		),
		queuePushCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "queue_push_total",
				Help: "Total number of queue elements submitted",
			},
			[]string{"status"},
		),
		serverRequestCounter: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "server_request_total",
				Help: "Total number of server requests",
			},
			[]string{"status"},
		),
		transcodeDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "transcode_duration_seconds",
				Help:    "Wall-clock duration of encoder runs",
				Buckets: prometheus.ExponentialBuckets(60, 2, 10),
			},
		),
	}

	collectors := []prometheus.Collector{
		m.workflowCounter,
		m.toolRunCounter,
		m.queuePushCounter,
		m.serverRequestCounter,
		m.transcodeDuration,
	}
	for _, c := range collectors {
		if err := prometheus.Register(c); err != nil {
			Logger.Error("Failed to register metric", zap.Error(err))
			return nil, err
		}
	}

	return m, nil
}

func (m *DefaultMetricsClient) IncrementWorkflowCounter(outcome string) {
	m.workflowCounter.WithLabelValues(outcome).Inc()
}

func (m *DefaultMetricsClient) IncrementToolRunCounter(tool, status string) {
	m.toolRunCounter.WithLabelValues(tool, status).Inc()
}

func (m *DefaultMetricsClient) IncrementQueuePushCounter(status string) {
	m.queuePushCounter.WithLabelValues(status).Inc()
}

func (m *DefaultMetricsClient) IncrementServerRequestCounter(status string) {
	m.serverRequestCounter.WithLabelValues(status).Inc()
}

func (m *DefaultMetricsClient) ObserveTranscodeDuration(seconds float64) {
	m.transcodeDuration.Observe(seconds)
}

package monitoring

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Tool metrics
	ToolCalls    *prometheus.CounterVec
	ToolDuration *prometheus.HistogramVec
	ToolErrors   *prometheus.CounterVec

	// Shell session metrics
	SessionsActive prometheus.Gauge

	// System metrics
	Uptime    prometheus.Gauge
	startTime time.Time

	// done stops the background uptime updater.
	done chan struct{}
}

// NewMetrics creates a new metrics collector
func NewMetrics() *Metrics {
	m := &Metrics{
		startTime: time.Now(),
		done:      make(chan struct{}),

		RequestsTotal: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentshell_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		RequestDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentshell_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10},
			},
			[]string{"method", "path"},
		),

		ToolCalls: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentshell_tool_calls_total",
				Help: "Total number of tool executions",
			},
			[]string{"tool", "status"},
		),
		ToolDuration: promauto.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "agentshell_tool_duration_seconds",
				Help:    "Tool execution duration in seconds",
				Buckets: []float64{.01, .05, .1, .5, 1, 5, 15, 60, 120},
			},
			[]string{"tool"},
		),
		ToolErrors: promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "agentshell_tool_errors_total",
				Help: "Total number of failed tool executions",
			},
			[]string{"tool"},
		),

		SessionsActive: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentshell_sessions_active",
				Help: "Number of live shell sessions",
			},
		),
		Uptime: promauto.NewGauge(
			prometheus.GaugeOpts{
				Name: "agentshell_uptime_seconds",
				Help: "Server uptime in seconds",
			},
		),
	}

	go m.updateUptime()

	return m
}

func (m *Metrics) updateUptime() {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			m.Uptime.Set(time.Since(m.startTime).Seconds())
		case <-m.done:
			return
		}
	}
}

// Close stops the background uptime updater.
func (m *Metrics) Close() {
	close(m.done)
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, path, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, path, status).Inc()
	m.RequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// RecordToolCall records a tool execution
func (m *Metrics) RecordToolCall(tool, status string, duration time.Duration) {
	m.ToolCalls.WithLabelValues(tool, status).Inc()
	m.ToolDuration.WithLabelValues(tool).Observe(duration.Seconds())
	if status != "success" {
		m.ToolErrors.WithLabelValues(tool).Inc()
	}
}

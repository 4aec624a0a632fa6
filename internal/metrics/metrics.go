package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for pmagent.
// A nil *Metrics is valid and records nothing.
type Metrics struct {
	// Task store metrics
	TaskCreations    prometheus.Counter
	StatusUpdates    *prometheus.CounterVec
	StoreSaves       *prometheus.CounterVec
	StoreSaveLatency prometheus.Histogram

	// Snapshot gauges, refreshed from the store on demand
	TasksByStatus   *prometheus.GaugeVec
	TasksByPlatform *prometheus.GaugeVec
	StaleTasks      prometheus.Gauge

	// Sprint planning metrics
	SprintPlans       prometheus.Counter
	SprintUtilization prometheus.Gauge
	SprintTaskCount   prometheus.Histogram

	// Gateway metrics
	GatewayCalls   *prometheus.CounterVec
	GatewayLatency *prometheus.HistogramVec
	GatewayErrors  *prometheus.CounterVec

	// Report metrics
	ReportsWritten *prometheus.CounterVec

	// Error metrics (by error code from structured errors)
	Errors *prometheus.CounterVec
}

// NewMetrics creates a new Metrics instance with all metrics registered
func NewMetrics(registry prometheus.Registerer) *Metrics {
	factory := promauto.With(registry)

	return &Metrics{
		// Task store metrics
		TaskCreations: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pmagent_task_creations_total",
				Help: "Total number of tasks created",
			},
		),
		StatusUpdates: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmagent_status_updates_total",
				Help: "Total number of task status updates",
			},
			[]string{"status", "outcome"},
		),
		StoreSaves: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmagent_store_saves_total",
				Help: "Total number of task store saves",
			},
			[]string{"success"},
		),
		StoreSaveLatency: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pmagent_store_save_duration_seconds",
				Help:    "Task store save duration in seconds",
				Buckets: []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1.0},
			},
		),

		// Snapshot gauges
		TasksByStatus: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pmagent_tasks",
				Help: "Number of tasks in the store by status",
			},
			[]string{"status"},
		),
		TasksByPlatform: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "pmagent_platform_tasks",
				Help: "Number of tasks counting toward each platform",
			},
			[]string{"platform"},
		),
		StaleTasks: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pmagent_stale_tasks",
				Help: "Number of in-progress tasks not updated within the staleness threshold",
			},
		),

		// Sprint planning metrics
		SprintPlans: factory.NewCounter(
			prometheus.CounterOpts{
				Name: "pmagent_sprint_plans_total",
				Help: "Total number of sprint plans produced",
			},
		),
		SprintUtilization: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "pmagent_sprint_utilization_percent",
				Help: "Capacity utilization of the most recent sprint plan",
			},
		),
		SprintTaskCount: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "pmagent_sprint_task_count",
				Help:    "Number of tasks selected per sprint plan",
				Buckets: []float64{0, 1, 2, 5, 10, 20, 50},
			},
		),

		// Gateway metrics
		GatewayCalls: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmagent_gateway_calls_total",
				Help: "Total number of text generation calls",
			},
			[]string{"purpose", "success"},
		),
		GatewayLatency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "pmagent_gateway_latency_seconds",
				Help:    "Text generation call latency in seconds",
				Buckets: []float64{0.1, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0, 60.0},
			},
			[]string{"purpose"},
		),
		GatewayErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmagent_gateway_errors_total",
				Help: "Total number of text generation failures",
			},
			[]string{"purpose", "error_code"},
		),

		// Report metrics
		ReportsWritten: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmagent_reports_written_total",
				Help: "Total number of report files written",
			},
			[]string{"kind"},
		),

		// Error metrics
		Errors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pmagent_errors_total",
				Help: "Total number of errors by error code",
			},
			[]string{"error_code"},
		),
	}
}

func boolLabel(b bool) string {
	if b {
		return "true"
	}
	return "false"
}

// RecordTaskCreated counts one created task
func (m *Metrics) RecordTaskCreated() {
	if m == nil {
		return
	}
	m.TaskCreations.Inc()
}

// RecordStatusUpdate counts a status update attempt. outcome is "updated" or
// "not_found".
func (m *Metrics) RecordStatusUpdate(status, outcome string) {
	if m == nil {
		return
	}
	m.StatusUpdates.WithLabelValues(status, outcome).Inc()
}

// RecordStoreSave counts a store save and its duration
func (m *Metrics) RecordStoreSave(d time.Duration, err error) {
	if m == nil {
		return
	}
	m.StoreSaves.WithLabelValues(boolLabel(err == nil)).Inc()
	m.StoreSaveLatency.Observe(d.Seconds())
}

// RecordSprintPlan records a produced sprint plan
func (m *Metrics) RecordSprintPlan(taskCount int, utilization float64) {
	if m == nil {
		return
	}
	m.SprintPlans.Inc()
	m.SprintTaskCount.Observe(float64(taskCount))
	m.SprintUtilization.Set(utilization)
}

// RecordGatewayCall counts a text generation call. errorCode is empty on
// success.
func (m *Metrics) RecordGatewayCall(purpose string, d time.Duration, errorCode string) {
	if m == nil {
		return
	}
	m.GatewayCalls.WithLabelValues(purpose, boolLabel(errorCode == "")).Inc()
	m.GatewayLatency.WithLabelValues(purpose).Observe(d.Seconds())
	if errorCode != "" {
		m.GatewayErrors.WithLabelValues(purpose, errorCode).Inc()
	}
}

// RecordReport counts one written report file
func (m *Metrics) RecordReport(kind string) {
	if m == nil {
		return
	}
	m.ReportsWritten.WithLabelValues(kind).Inc()
}

// RecordError counts an error by code
func (m *Metrics) RecordError(code string) {
	if m == nil || code == "" {
		return
	}
	m.Errors.WithLabelValues(code).Inc()
}

// SetTaskCounts replaces the snapshot gauges. Keys absent from the maps are
// not reset, so callers pass every label they track.
func (m *Metrics) SetTaskCounts(byStatus, byPlatform map[string]int, stale int) {
	if m == nil {
		return
	}
	for status, n := range byStatus {
		m.TasksByStatus.WithLabelValues(status).Set(float64(n))
	}
	for platform, n := range byPlatform {
		m.TasksByPlatform.WithLabelValues(platform).Set(float64(n))
	}
	m.StaleTasks.Set(float64(stale))
}

package metrics

import (
	"net/http"

	"github.com/handiism/tubetunes/internal/download"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "tubetunes"

// Metrics holds the Prometheus collectors fed from manager events.
// Register Observe with download.WithObserver so counters see every event;
// a bus subscription may drop events under load.
type Metrics struct {
	registry *prometheus.Registry

	// Counters
	tasksAdded      prometheus.Counter
	tasksCompleted  prometheus.Counter
	tasksFailed     prometheus.Counter
	tasksRetried    prometheus.Counter
	tasksCancelled  prometheus.Counter
	downloadedBytes prometheus.Counter

	// Gauges
	tasksActive     prometheus.Gauge
	tasksPending    prometheus.Gauge
	overallProgress prometheus.Gauge

	// Histograms
	taskDuration *prometheus.HistogramVec
}

// New creates the collectors and registers them, together with the Go
// runtime and process collectors, on a private registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		tasksAdded: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_added_total",
			Help:      "Total number of tasks admitted",
		}),
		tasksCompleted: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_completed_total",
			Help:      "Total number of tasks completed",
		}),
		tasksFailed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_failed_total",
			Help:      "Total number of tasks failed after exhausting retries",
		}),
		tasksRetried: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "task_retries_total",
			Help:      "Total number of task retries scheduled",
		}),
		tasksCancelled: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tasks_cancelled_total",
			Help:      "Total number of tasks cancelled",
		}),
		downloadedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "downloaded_bytes_total",
			Help:      "Total size of completed artifacts in bytes",
		}),
		tasksActive: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_active",
			Help:      "Current number of running tasks",
		}),
		tasksPending: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tasks_pending",
			Help:      "Current number of queued and retrying tasks",
		}),
		overallProgress: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "overall_progress_ratio",
			Help:      "Mean progress of all non-cancelled tasks",
		}),
		taskDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "task_duration_seconds",
				Help:      "Time from first start to completion in seconds",
				Buckets:   []float64{.1, .5, 1, 2.5, 5, 10, 30, 60, 300, 600},
			},
			[]string{"format"},
		),
	}

	m.registry.MustRegister(
		m.tasksAdded,
		m.tasksCompleted,
		m.tasksFailed,
		m.tasksRetried,
		m.tasksCancelled,
		m.downloadedBytes,
		m.tasksActive,
		m.tasksPending,
		m.overallProgress,
		m.taskDuration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Observe updates the collectors for one event. It is safe for
// concurrent use.
func (m *Metrics) Observe(e download.Event) {
	switch e.Type {
	case download.EventTaskAdded:
		m.tasksAdded.Inc()
	case download.EventTaskCompleted:
		m.tasksCompleted.Inc()
		format := ""
		if a := e.Task.Artifact; a != nil {
			m.downloadedBytes.Add(float64(a.Size))
			format = a.FileFormat()
		}
		m.taskDuration.WithLabelValues(format).Observe(e.Task.Elapsed(e.Time).Seconds())
	case download.EventTaskFailed:
		m.tasksFailed.Inc()
	case download.EventTaskRetrying:
		m.tasksRetried.Inc()
	case download.EventTaskCancelled:
		m.tasksCancelled.Inc()
	case download.EventStatisticsUpdated, download.EventAllTasksCompleted:
		m.tasksActive.Set(float64(e.Statistics.Active))
		m.tasksPending.Set(float64(e.Statistics.Pending))
		m.overallProgress.Set(e.Statistics.OverallProgress)
	}
}

// Package metrics exports download manager activity to Prometheus.
//
// Metrics observes every manager event and keeps counters of task
// outcomes, gauges of the current queue and a histogram of download
// durations. Collectors live on their own registry so several managers,
// or tests, never collide on the global one.
//
//	m := metrics.New()
//	manager, err := download.NewManager(cfg, downloader, download.WithObserver(m.Observe))
//	http.Handle("/metrics", m.Handler())
package metrics

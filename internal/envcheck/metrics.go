package envcheck

import (
	"fmt"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics exposes the most recent report as Prometheus gauges.
type Metrics struct {
	registry *prometheus.Registry
	status   *prometheus.GaugeVec
	failed   prometheus.Gauge
	duration prometheus.Gauge
	lastRun  prometheus.Gauge
}

func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		status: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "envcheck",
			Name:      "check_status",
			Help:      "Outcome of each check in the last run: 1 pass, 0 fail, 0.5 warn.",
		}, []string{"project", "section", "check"}),
		failed: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "envcheck",
			Name:      "checks_failed",
			Help:      "Number of failed checks in the last run.",
		}),
		duration: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "envcheck",
			Name:      "run_duration_seconds",
			Help:      "Wall time of the last run.",
		}),
		lastRun: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "envcheck",
			Name:      "last_run_timestamp_seconds",
			Help:      "Unix time the last run started.",
		}),
	}
	m.registry.MustRegister(m.status, m.failed, m.duration, m.lastRun)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

func (m *Metrics) Observe(report *Report) {
	m.status.Reset()
	for _, check := range report.Checks {
		value := 0.0
		switch check.Status {
		case StatusPass:
			value = 1
		case StatusWarn:
			value = 0.5
		}
		m.status.WithLabelValues(report.Project, check.Section, check.Name).Set(value)
	}
	m.failed.Set(float64(report.Failed()))
	m.duration.Set(report.Elapsed.Seconds())
	m.lastRun.Set(float64(report.Started.Unix()))
}

// WriteTextfile writes the gauges in the node_exporter textfile format.
func (m *Metrics) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("write metrics: %w", err)
	}
	return nil
}

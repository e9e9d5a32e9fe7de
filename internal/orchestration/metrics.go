package orchestration

import (
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/provisioning/readiness"
)

// Metrics collects the metrics of deployment runs in a private registry.
// Nothing is served; WriteToTextfile exports them for the node exporter
// textfile collector.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal          *prometheus.CounterVec
	runDuration        prometheus.Gauge
	phaseDuration      *prometheus.GaugeVec
	instancesLaunched  *prometheus.GaugeVec
	readinessStates    *prometheus.CounterVec
	readinessQueryErrs *prometheus.CounterVec
}

// NewMetrics creates and registers the run metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kubedeploy",
				Subsystem: "run",
				Name:      "total",
				Help:      "Total number of deployment runs by result",
			},
			[]string{"provider", "result"},
		),
		runDuration: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "kubedeploy",
				Subsystem: "run",
				Name:      "duration_seconds",
				Help:      "Duration of the last deployment run in seconds",
			},
		),
		phaseDuration: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "kubedeploy",
				Subsystem: "phase",
				Name:      "duration_seconds",
				Help:      "Duration of each phase of the last run in seconds",
			},
			[]string{"phase", "result"},
		),
		instancesLaunched: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "kubedeploy",
				Subsystem: "cluster",
				Name:      "instances_launched",
				Help:      "Number of instances launched by role",
			},
			[]string{"role"},
		),
		readinessStates: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kubedeploy",
				Subsystem: "readiness",
				Name:      "transitions_total",
				Help:      "Readiness gate transitions by target state",
			},
			[]string{"state"},
		),
		readinessQueryErrs: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "kubedeploy",
				Subsystem: "readiness",
				Name:      "query_errors_total",
				Help:      "Failed provider queries of the readiness gate by state",
			},
			[]string{"state"},
		),
	}

	m.registry.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.phaseDuration,
		m.instancesLaunched,
		m.readinessStates,
		m.readinessQueryErrs,
	)
	return m
}

// Registry returns the registry holding the run metrics.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// WriteToTextfile writes the metrics in the text exposition format.
func (m *Metrics) WriteToTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return fmt.Errorf("failed to write metrics to %s: %w", path, err)
	}
	return nil
}

func (m *Metrics) recordRun(provider string, err error, duration time.Duration) {
	m.runsTotal.WithLabelValues(provider, result(err)).Inc()
	m.runDuration.Set(duration.Seconds())
}

func (m *Metrics) recordPhase(phase string, err error, duration time.Duration) {
	m.phaseDuration.WithLabelValues(phase, result(err)).Set(duration.Seconds())
}

func (m *Metrics) recordInstances(masters, slaves []cloud.Instance) {
	m.instancesLaunched.WithLabelValues(string(cloud.RoleMaster)).Set(float64(len(masters)))
	m.instancesLaunched.WithLabelValues(string(cloud.RoleSlave)).Set(float64(len(slaves)))
}

// readinessHooks feeds the readiness gate callbacks into the metrics.
func (m *Metrics) readinessHooks() readiness.Hooks {
	return readiness.Hooks{
		OnTransition: func(_, to readiness.State) {
			m.readinessStates.WithLabelValues(string(to)).Inc()
		},
		OnQueryError: func(state readiness.State, _ error) {
			m.readinessQueryErrs.WithLabelValues(string(state)).Inc()
		},
	}
}

func result(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

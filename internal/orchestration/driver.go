package orchestration

import (
	"context"
	"time"

	"github.com/lessanchos/kubedeploy/internal/config"
	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
	"github.com/lessanchos/kubedeploy/internal/provisioning/access"
	"github.com/lessanchos/kubedeploy/internal/provisioning/cluster"
	"github.com/lessanchos/kubedeploy/internal/provisioning/compute"
	"github.com/lessanchos/kubedeploy/internal/provisioning/readiness"
	"github.com/lessanchos/kubedeploy/internal/provisioning/topology"
)

// Driver orchestrates a deployment run.
type Driver struct {
	req          config.Request
	settings     *config.Settings
	provider     cloud.Provider
	bootstrapper provisioning.Bootstrapper

	clock    provisioning.Clock
	observer provisioning.Observer
	timeouts *config.Timeouts
	metrics  *Metrics
	keyBits  int
}

// Option configures a Driver.
type Option func(*Driver)

// WithClock replaces the wall clock used by the waiting phases.
func WithClock(c provisioning.Clock) Option {
	return func(d *Driver) {
		d.clock = c
	}
}

// WithObserver replaces the console observer.
func WithObserver(o provisioning.Observer) Option {
	return func(d *Driver) {
		d.observer = o
	}
}

// WithTimeouts replaces the timeouts loaded from the environment.
func WithTimeouts(t *config.Timeouts) Option {
	return func(d *Driver) {
		d.timeouts = t
	}
}

// WithMetrics records the run into m.
func WithMetrics(m *Metrics) Option {
	return func(d *Driver) {
		d.metrics = m
	}
}

// WithKeyBits sets the size of the generated RSA key pair.
func WithKeyBits(bits int) Option {
	return func(d *Driver) {
		d.keyBits = bits
	}
}

// NewDriver creates a Driver for one run.
func NewDriver(
	req config.Request,
	settings *config.Settings,
	provider cloud.Provider,
	bootstrapper provisioning.Bootstrapper,
	opts ...Option,
) *Driver {
	d := &Driver{
		req:          req,
		settings:     settings,
		provider:     provider,
		bootstrapper: bootstrapper,
	}
	for _, opt := range opts {
		opt(d)
	}
	if d.metrics == nil {
		d.metrics = NewMetrics()
	}
	return d
}

// Metrics returns the metrics the driver records into.
func (d *Driver) Metrics() *Metrics {
	return d.metrics
}

// Run provisions and bootstraps the cluster, returning its topology.
// The first failing phase aborts the run; nothing is cleaned up.
func (d *Driver) Run(ctx context.Context) (provisioning.ClusterTopology, error) {
	start := time.Now()

	pCtx := provisioning.NewContext(ctx, d.req, d.settings, d.provider, d.bootstrapper)
	if d.clock != nil {
		pCtx.Clock = d.clock
	}
	if d.observer != nil {
		pCtx.Observer = d.observer
	}
	if d.timeouts != nil {
		pCtx.Timeouts = d.timeouts
	}

	err := provisioning.RunPhases(pCtx, d.phases())
	d.metrics.recordInstances(pCtx.State.Masters, pCtx.State.Slaves)
	d.metrics.recordRun(d.provider.Name(), err, time.Since(start))
	if err != nil {
		return provisioning.ClusterTopology{}, err
	}

	pCtx.Observer.Printf("Deployed successfully")
	return pCtx.State.Topology, nil
}

func (d *Driver) phases() []provisioning.Phase {
	var accessOpts []access.Option
	if d.keyBits > 0 {
		accessOpts = append(accessOpts, access.WithKeyBits(d.keyBits))
	}

	phases := []provisioning.Phase{
		access.NewProvisioner(accessOpts...),
		compute.NewProvisioner(),
		readiness.NewProvisioner(d.metrics.readinessHooks()),
		topology.NewProvisioner(),
		cluster.NewSettleProvisioner(),
		cluster.NewProvisioner(),
	}

	timed := make([]provisioning.Phase, len(phases))
	for i, p := range phases {
		timed[i] = &timedPhase{Phase: p, metrics: d.metrics}
	}
	return timed
}

// timedPhase records the duration and result of the wrapped phase.
type timedPhase struct {
	provisioning.Phase
	metrics *Metrics
}

func (p *timedPhase) Provision(ctx *provisioning.Context) error {
	start := time.Now()
	err := p.Phase.Provision(ctx)
	p.metrics.recordPhase(p.Name(), err, time.Since(start))
	return err
}

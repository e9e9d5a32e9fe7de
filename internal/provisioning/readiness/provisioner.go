package readiness

import (
	"github.com/lessanchos/kubedeploy/internal/provisioning"
)

const phase = "readiness"

// Provisioner runs the readiness gate over every launched instance.
type Provisioner struct {
	hooks Hooks
}

// NewProvisioner creates a new readiness provisioner firing hooks.
func NewProvisioner(hooks Hooks) *Provisioner {
	return &Provisioner{hooks: hooks}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	ids := ctx.State.InstanceIDs()
	cfg := ConfigFrom(ctx.Timeouts, ctx.Settings.Readiness)

	ctx.Observer.Printf("[%s] Waiting for %d instance(s) to be running (about a minute)...", phase, len(ids))

	poller := NewPoller(ctx.Provider, ctx.Clock, ctx.Observer, cfg, p.hooks)
	if err := poller.Wait(ctx, ids); err != nil {
		return err
	}

	ctx.Observer.Printf("[%s] All instances are ready", phase)
	return nil
}

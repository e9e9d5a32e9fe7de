package topology

import (
	"github.com/lessanchos/kubedeploy/internal/provisioning"
)

const phase = "topology"

// Provisioner records the cluster topology in the run state.
type Provisioner struct {
	builder *Builder
}

// NewProvisioner creates a new topology provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{builder: NewBuilder()}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	topo, err := p.builder.Build(ctx, ctx.Provider, ctx.State.Masters, ctx.State.Slaves)
	if err != nil {
		return err
	}
	ctx.State.Topology = topo

	ctx.Observer.Printf("[%s] Cluster:", phase)
	for i, m := range topo.Masters {
		ctx.Observer.Printf("[%s]   master %d: %s %s %s (private %s)", phase, i+1, m.InstanceID, m.PublicIP, m.PublicDNS, m.PrivateIP)
	}
	for _, s := range topo.Slaves {
		ctx.Observer.Printf("[%s]   %s: %s %s %s", phase, s.SlaveID, s.InstanceID, s.PublicIP, s.PublicDNS)
	}
	return nil
}

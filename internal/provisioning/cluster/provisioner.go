package cluster

import (
	"errors"

	"github.com/lessanchos/kubedeploy/internal/provisioning"
)

const phase = "cluster"

// Bootstrap step names reported in BootstrapError.
const (
	StepKubernetes     = "kubernetes"
	StepDashboard      = "dashboard"
	StepDataProcessing = "data-processing"
)

// Provisioner runs the remote bootstrap steps in order.
type Provisioner struct{}

// NewProvisioner creates a new cluster provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	topo := ctx.State.Topology
	keyName := ctx.Request.KeyName

	primary, ok := topo.PrimaryMaster()
	if !ok {
		return &provisioning.BootstrapError{Step: StepKubernetes, Err: errors.New("topology has no master")}
	}

	ctx.Observer.Printf("[%s] Installing Kubernetes on %d node(s)...", phase, topo.NodeCount())
	if err := ctx.Bootstrapper.InstallKubernetes(ctx, topo, keyName); err != nil {
		return &provisioning.BootstrapError{Step: StepKubernetes, Err: err}
	}

	ctx.Observer.Printf("[%s] Installing the dashboard through %s...", phase, primary.PublicIP)
	if err := ctx.Bootstrapper.InstallDashboard(ctx, primary, keyName); err != nil {
		return &provisioning.BootstrapError{Step: StepDashboard, Err: err}
	}

	ctx.Observer.Printf("[%s] Installing the data-processing layer...", phase)
	if err := ctx.Bootstrapper.InstallDataProcessing(ctx, topo, keyName); err != nil {
		return &provisioning.BootstrapError{Step: StepDataProcessing, Err: err}
	}

	return nil
}

package compute

import (
	"strings"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
)

const phase = "compute"

// Provisioner handles instance creation for a run.
type Provisioner struct{}

// NewProvisioner creates a new compute provisioner.
func NewProvisioner() *Provisioner {
	return &Provisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	req := ctx.Request
	launcher := NewLauncher(LaunchSpec{
		UserName:           req.UserName,
		Image:              ctx.Settings.Image,
		InstanceType:       ctx.Settings.InstanceType,
		MasterInstanceType: ctx.Settings.MasterInstanceType,
	})

	ctx.Observer.Printf("[%s] Launching %d master(s) and %d slave(s) on %s...",
		phase, req.MasterCount, req.WorkerCount, ctx.Provider.Name())

	masters, slaves, err := launcher.Launch(ctx, ctx.Provider, ctx.State.AccessGroupID, req.KeyName, req.WorkerCount, req.MasterCount)
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phase, "instances", req.UserName, err)
		return err
	}

	ctx.State.Masters = masters
	ctx.State.Slaves = slaves

	provisioning.LogResourceCreated(ctx.Observer, phase, "instances", "masters", strings.Join(cloud.IDs(masters), ","))
	if len(slaves) > 0 {
		provisioning.LogResourceCreated(ctx.Observer, phase, "instances", "slaves", strings.Join(cloud.IDs(slaves), ","))
	}
	ctx.Observer.Printf("[%s] Instance ids: %s", phase, strings.Join(ctx.State.InstanceIDs(), " "))
	return nil
}

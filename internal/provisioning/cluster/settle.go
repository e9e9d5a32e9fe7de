package cluster

import (
	"fmt"

	"github.com/lessanchos/kubedeploy/internal/provisioning"
)

// SettleProvisioner waits the configured settle delay before bootstrap.
type SettleProvisioner struct{}

// NewSettleProvisioner creates a new settle provisioner.
func NewSettleProvisioner() *SettleProvisioner {
	return &SettleProvisioner{}
}

// Name implements the provisioning.Phase interface.
func (p *SettleProvisioner) Name() string {
	return "settle"
}

// Provision implements the provisioning.Phase interface.
func (p *SettleProvisioner) Provision(ctx *provisioning.Context) error {
	delay := ctx.Timeouts.SettleDelay
	ctx.Observer.Printf("[settle] Waiting %v before bootstrapping the cluster...", delay)
	if err := ctx.Clock.Sleep(ctx, delay); err != nil {
		return fmt.Errorf("interrupted while settling: %w", err)
	}
	return nil
}

package provisioning

import (
	"context"
	"time"
)

// Phase defines the interface for a provisioning phase.
type Phase interface {
	// Name returns the human-readable name of this phase.
	Name() string

	// Provision executes the provisioning logic for this phase.
	Provision(ctx *Context) error
}

// Bootstrapper performs the remote setup of a provisioned cluster.
// Implemented by internal/bootstrap.Installer.
type Bootstrapper interface {
	// InstallKubernetes installs the orchestration runtime on every node.
	InstallKubernetes(ctx context.Context, topology ClusterTopology, keyName string) error

	// InstallDashboard deploys the cost/usage dashboard, reached through the given master.
	InstallDashboard(ctx context.Context, master MasterRecord, keyName string) error

	// InstallDataProcessing deploys the data-processing layer onto the cluster.
	InstallDataProcessing(ctx context.Context, topology ClusterTopology, keyName string) error
}

// Clock abstracts time for the phases that wait.
type Clock interface {
	Now() time.Time
	// Sleep blocks for d or until ctx is done, whichever comes first.
	Sleep(ctx context.Context, d time.Duration) error
}

// SystemClock is the wall-clock implementation of Clock.
type SystemClock struct{}

// Now implements Clock.
func (SystemClock) Now() time.Time { return time.Now() }

// Sleep implements Clock.
func (SystemClock) Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

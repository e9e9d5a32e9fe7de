package cloud

import (
	"context"
	"errors"
)

// ErrAlreadyExists is wrapped by backends when a named resource exists already.
var ErrAlreadyExists = errors.New("already exists")

// KeyManager imports the public half of a locally generated key pair.
type KeyManager interface {
	ImportKeyPair(ctx context.Context, name string, publicKey []byte, labels map[string]string) error
}

// AccessGroupManager creates or finds the network-access group of a run.
type AccessGroupManager interface {
	// EnsureAccessGroup returns the provider handle of the group named name,
	// creating it and authorizing rules if it does not exist yet.
	EnsureAccessGroup(ctx context.Context, name, description string, rules []IngressRule) (string, error)
}

// InstanceLauncher creates instances.
type InstanceLauncher interface {
	// LaunchInstances creates opts.Count instances in one request and returns
	// them in provider creation order.
	LaunchInstances(ctx context.Context, opts LaunchOpts) ([]Instance, error)
}

// InstanceObserver answers per-instance state queries.
type InstanceObserver interface {
	// InstancePhases returns the lifecycle phase of each requested instance.
	// Instances the provider does not know about yet are absent from the map.
	InstancePhases(ctx context.Context, ids []string) (map[string]LifecyclePhase, error)

	// InstanceChecks returns the status-check outcome of each requested instance.
	InstanceChecks(ctx context.Context, ids []string) (map[string]CheckStatus, error)

	// InstanceAddresses re-fetches the address fields of a single instance.
	InstanceAddresses(ctx context.Context, id string) (Addresses, error)
}

// Provider combines every operation the provisioning pipeline needs.
type Provider interface {
	KeyManager
	AccessGroupManager
	InstanceLauncher
	InstanceObserver

	// Name identifies the backend in narration ("aws", "hcloud").
	Name() string
}

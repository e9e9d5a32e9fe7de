package hcloud

import (
	"context"
	"fmt"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
)

// LaunchInstances implements cloud.InstanceLauncher. Hetzner has no batch
// create, so one server is created per requested instance. Creation
// actions are not awaited; readiness polling covers the boot. A failed
// create is not retried and the servers created before it are returned
// with the error.
func (p *Provider) LaunchInstances(ctx context.Context, opts cloud.LaunchOpts) ([]cloud.Instance, error) {
	firewallID, networkID, err := parseGroupHandle(opts.AccessGroupID)
	if err != nil {
		return nil, err
	}

	serverType, _, err := p.client.ServerType.Get(ctx, opts.InstanceType)
	if err != nil {
		return nil, fmt.Errorf("failed to get server type %s: %w", opts.InstanceType, err)
	}
	if serverType == nil {
		return nil, fmt.Errorf("server type not found: %s", opts.InstanceType)
	}

	sshKey, _, err := p.client.SSHKey.Get(ctx, opts.KeyName)
	if err != nil {
		return nil, fmt.Errorf("failed to get ssh key %s: %w", opts.KeyName, err)
	}
	if sshKey == nil {
		return nil, fmt.Errorf("ssh key not found: %s", opts.KeyName)
	}

	instances := make([]cloud.Instance, 0, opts.Count)
	for i := range opts.Count {
		name := opts.NameAt(i)
		if name == "" {
			name = fmt.Sprintf("%s-%d", opts.Role, i+1)
		}

		createOpts := hcloud.ServerCreateOpts{
			Name:       name,
			ServerType: serverType,
			Image:      &hcloud.Image{Name: opts.Image},
			Location:   &hcloud.Location{Name: p.location},
			SSHKeys:    []*hcloud.SSHKey{sshKey},
			Labels:     opts.Labels,
			Networks:   []*hcloud.Network{{ID: networkID}},
			Firewalls:  []*hcloud.ServerCreateFirewall{{Firewall: hcloud.Firewall{ID: firewallID}}},
		}

		result, _, err := p.client.Server.Create(ctx, createOpts)
		if err != nil {
			return instances, fmt.Errorf("failed to create server %s: %w", name, err)
		}

		instances = append(instances, cloud.Instance{
			ID:   strconv.FormatInt(result.Server.ID, 10),
			Role: opts.Role,
		})
	}

	return instances, nil
}

// InstancePhases implements cloud.InstanceObserver. Unknown servers are
// left out of the result.
func (p *Provider) InstancePhases(ctx context.Context, ids []string) (map[string]cloud.LifecyclePhase, error) {
	phases := make(map[string]cloud.LifecyclePhase, len(ids))
	for _, id := range ids {
		server, err := p.server(ctx, id)
		if err != nil {
			return nil, err
		}
		if server == nil {
			continue
		}
		phases[id] = lifecyclePhase(server.Status)
	}
	return phases, nil
}

// InstanceChecks implements cloud.InstanceObserver. A server passes once it
// runs with a public IPv4 address.
func (p *Provider) InstanceChecks(ctx context.Context, ids []string) (map[string]cloud.CheckStatus, error) {
	checks := make(map[string]cloud.CheckStatus, len(ids))
	for _, id := range ids {
		server, err := p.server(ctx, id)
		if err != nil {
			return nil, err
		}
		if server == nil {
			continue
		}
		checks[id] = checkStatus(server)
	}
	return checks, nil
}

// InstanceAddresses implements cloud.InstanceObserver. The public DNS name
// is the reverse DNS entry of the primary IPv4 address.
func (p *Provider) InstanceAddresses(ctx context.Context, id string) (cloud.Addresses, error) {
	server, err := p.server(ctx, id)
	if err != nil {
		return cloud.Addresses{}, err
	}
	if server == nil {
		return cloud.Addresses{}, fmt.Errorf("server %s not found", id)
	}

	var addrs cloud.Addresses
	if ip := server.PublicNet.IPv4.IP; ip != nil && !ip.IsUnspecified() {
		addrs.PublicIP = ip.String()
		addrs.PublicDNS = server.PublicNet.IPv4.DNSPtr
	}
	for _, pn := range server.PrivateNet {
		if pn.IP != nil {
			addrs.PrivateIP = pn.IP.String()
			break
		}
	}
	return addrs, nil
}

func (p *Provider) server(ctx context.Context, id string) (*hcloud.Server, error) {
	serverID, err := parseServerID(id)
	if err != nil {
		return nil, err
	}
	server, _, err := p.client.Server.GetByID(ctx, serverID)
	if err != nil {
		return nil, fmt.Errorf("failed to get server %s: %w", id, err)
	}
	return server, nil
}

func lifecyclePhase(status hcloud.ServerStatus) cloud.LifecyclePhase {
	switch status {
	case hcloud.ServerStatusInitializing, hcloud.ServerStatusStarting,
		hcloud.ServerStatusMigrating, hcloud.ServerStatusRebuilding:
		return cloud.PhasePending
	case hcloud.ServerStatusRunning:
		return cloud.PhaseRunning
	case hcloud.ServerStatusStopping:
		return cloud.PhaseStopping
	case hcloud.ServerStatusOff:
		return cloud.PhaseStopped
	case hcloud.ServerStatusDeleting:
		return cloud.PhaseShuttingDown
	default:
		return cloud.PhaseUnknown
	}
}

func checkStatus(server *hcloud.Server) cloud.CheckStatus {
	if server.Status != hcloud.ServerStatusRunning {
		return cloud.CheckInitializing
	}
	ip := server.PublicNet.IPv4.IP
	if ip == nil || ip.IsUnspecified() {
		return cloud.CheckInitializing
	}
	return cloud.CheckPassed
}

package hcloud

import (
	"context"
	"fmt"
	"net"
	"strconv"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/util/naming"
	"github.com/lessanchos/kubedeploy/internal/util/retry"
)

// withRetry runs op, retrying only on transient API errors.
func (p *Provider) withRetry(ctx context.Context, op func() error) error {
	return retry.WithExponentialBackoff(ctx, func() error {
		err := op()
		if err != nil && !isResourceLocked(err) {
			return retry.Fatal(err)
		}
		return err
	}, retry.WithMaxRetries(p.maxRetries), retry.WithInitialDelay(p.initialDelay))
}

// ImportKeyPair implements cloud.KeyManager by uploading an SSH key.
func (p *Provider) ImportKeyPair(ctx context.Context, name string, publicKey []byte, labels map[string]string) error {
	err := p.withRetry(ctx, func() error {
		_, _, err := p.client.SSHKey.Create(ctx, hcloud.SSHKeyCreateOpts{
			Name:      name,
			PublicKey: string(publicKey),
			Labels:    labels,
		})
		return err
	})
	if err == nil {
		return nil
	}
	if isUniquenessError(err) {
		return fmt.Errorf("ssh key %s: %w: %w", name, cloud.ErrAlreadyExists, err)
	}
	return fmt.Errorf("failed to create ssh key %s: %w", name, err)
}

// EnsureAccessGroup implements cloud.AccessGroupManager. It finds or creates
// a firewall carrying rules and a private network of the same name. Hetzner
// firewalls have no description field, so description is not stored.
func (p *Provider) EnsureAccessGroup(ctx context.Context, name, _ string, rules []cloud.IngressRule) (string, error) {
	fwRules, err := firewallRules(rules)
	if err != nil {
		return "", err
	}

	firewall, err := p.ensureFirewall(ctx, name, fwRules)
	if err != nil {
		return "", err
	}

	network, err := p.ensureNetwork(ctx, naming.PrivateNetwork(name))
	if err != nil {
		return "", err
	}

	return groupHandle(firewall.ID, network.ID), nil
}

func (p *Provider) ensureFirewall(ctx context.Context, name string, rules []hcloud.FirewallRule) (*hcloud.Firewall, error) {
	existing, _, err := p.client.Firewall.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get firewall %s: %w", name, err)
	}

	if existing != nil {
		err := p.withRetry(ctx, func() error {
			_, _, err := p.client.Firewall.SetRules(ctx, existing, hcloud.FirewallSetRulesOpts{Rules: rules})
			return err
		})
		if err != nil {
			return nil, fmt.Errorf("failed to set rules on firewall %s: %w", name, err)
		}
		return existing, nil
	}

	var created *hcloud.Firewall
	err = p.withRetry(ctx, func() error {
		result, _, err := p.client.Firewall.Create(ctx, hcloud.FirewallCreateOpts{
			Name:  name,
			Rules: rules,
		})
		if err != nil {
			return err
		}
		created = result.Firewall
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create firewall %s: %w", name, err)
	}
	return created, nil
}

func (p *Provider) ensureNetwork(ctx context.Context, name string) (*hcloud.Network, error) {
	existing, _, err := p.client.Network.Get(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get network %s: %w", name, err)
	}
	if existing != nil {
		return existing, nil
	}

	location, _, err := p.client.Location.Get(ctx, p.location)
	if err != nil {
		return nil, fmt.Errorf("failed to get location %s: %w", p.location, err)
	}
	if location == nil {
		return nil, fmt.Errorf("location not found: %s", p.location)
	}

	_, ipRange, _ := net.ParseCIDR(privateIPRange)
	_, subnetRange, _ := net.ParseCIDR(privateSubnetRange)

	var created *hcloud.Network
	err = p.withRetry(ctx, func() error {
		network, _, err := p.client.Network.Create(ctx, hcloud.NetworkCreateOpts{
			Name:    name,
			IPRange: ipRange,
			Subnets: []hcloud.NetworkSubnet{{
				Type:        hcloud.NetworkSubnetTypeCloud,
				IPRange:     subnetRange,
				NetworkZone: location.NetworkZone,
			}},
		})
		if err != nil {
			return err
		}
		created = network
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create network %s: %w", name, err)
	}
	return created, nil
}

// firewallRules converts ingress rules into Hetzner inbound firewall rules.
// Intra-group rules are skipped: members talk over the private network.
func firewallRules(rules []cloud.IngressRule) ([]hcloud.FirewallRule, error) {
	out := make([]hcloud.FirewallRule, 0, len(rules))
	for _, r := range rules {
		if r.FromGroup {
			continue
		}

		_, source, err := net.ParseCIDR(r.CIDR)
		if err != nil {
			return nil, fmt.Errorf("invalid CIDR %q in rule %q: %w", r.CIDR, r.Description, err)
		}

		rule := hcloud.FirewallRule{
			Direction: hcloud.FirewallRuleDirectionIn,
			SourceIPs: []net.IPNet{*source},
		}
		if r.Description != "" {
			rule.Description = hcloud.Ptr(r.Description)
		}

		switch r.Protocol {
		case cloud.ProtocolTCP:
			rule.Protocol = hcloud.FirewallRuleProtocolTCP
			rule.Port = hcloud.Ptr(portRange(r.FromPort, r.ToPort))
		case cloud.ProtocolUDP:
			rule.Protocol = hcloud.FirewallRuleProtocolUDP
			rule.Port = hcloud.Ptr(portRange(r.FromPort, r.ToPort))
		case cloud.ProtocolICMP:
			rule.Protocol = hcloud.FirewallRuleProtocolICMP
		default:
			return nil, fmt.Errorf("unsupported protocol %q in rule %q", r.Protocol, r.Description)
		}

		out = append(out, rule)
	}
	return out, nil
}

func portRange(from, to int) string {
	if to <= from {
		return strconv.Itoa(from)
	}
	return fmt.Sprintf("%d-%d", from, to)
}

// Package cloudtest provides a function-field fake of cloud.Provider for tests.
package cloudtest

import (
	"context"
	"fmt"
	"sync"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
)

// Provider is a cloud.Provider whose behaviour is supplied per test through
// function fields. Unset functions return zero values. Every call is recorded.
type Provider struct {
	ImportKeyPairFunc     func(ctx context.Context, name string, publicKey []byte, labels map[string]string) error
	EnsureAccessGroupFunc func(ctx context.Context, name, description string, rules []cloud.IngressRule) (string, error)
	LaunchInstancesFunc   func(ctx context.Context, opts cloud.LaunchOpts) ([]cloud.Instance, error)
	InstancePhasesFunc    func(ctx context.Context, ids []string) (map[string]cloud.LifecyclePhase, error)
	InstanceChecksFunc    func(ctx context.Context, ids []string) (map[string]cloud.CheckStatus, error)
	InstanceAddressesFunc func(ctx context.Context, id string) (cloud.Addresses, error)

	mu    sync.Mutex
	calls []string
}

var _ cloud.Provider = (*Provider)(nil)

// Name implements cloud.Provider.
func (p *Provider) Name() string { return "fake" }

// Calls returns the names of the methods invoked so far, in order.
func (p *Provider) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, len(p.calls))
	copy(out, p.calls)
	return out
}

// CallCount returns how many times method was invoked.
func (p *Provider) CallCount(method string) int {
	n := 0
	for _, c := range p.Calls() {
		if c == method {
			n++
		}
	}
	return n
}

func (p *Provider) record(method string) {
	p.mu.Lock()
	p.calls = append(p.calls, method)
	p.mu.Unlock()
}

// ImportKeyPair implements cloud.Provider.
func (p *Provider) ImportKeyPair(ctx context.Context, name string, publicKey []byte, labels map[string]string) error {
	p.record("ImportKeyPair")
	if p.ImportKeyPairFunc == nil {
		return nil
	}
	return p.ImportKeyPairFunc(ctx, name, publicKey, labels)
}

// EnsureAccessGroup implements cloud.Provider.
func (p *Provider) EnsureAccessGroup(ctx context.Context, name, description string, rules []cloud.IngressRule) (string, error) {
	p.record("EnsureAccessGroup")
	if p.EnsureAccessGroupFunc == nil {
		return "sg-fake", nil
	}
	return p.EnsureAccessGroupFunc(ctx, name, description, rules)
}

// LaunchInstances implements cloud.Provider.
func (p *Provider) LaunchInstances(ctx context.Context, opts cloud.LaunchOpts) ([]cloud.Instance, error) {
	p.record("LaunchInstances")
	if p.LaunchInstancesFunc == nil {
		return nil, nil
	}
	return p.LaunchInstancesFunc(ctx, opts)
}

// InstancePhases implements cloud.Provider.
func (p *Provider) InstancePhases(ctx context.Context, ids []string) (map[string]cloud.LifecyclePhase, error) {
	p.record("InstancePhases")
	if p.InstancePhasesFunc == nil {
		return nil, nil
	}
	return p.InstancePhasesFunc(ctx, ids)
}

// InstanceChecks implements cloud.Provider.
func (p *Provider) InstanceChecks(ctx context.Context, ids []string) (map[string]cloud.CheckStatus, error) {
	p.record("InstanceChecks")
	if p.InstanceChecksFunc == nil {
		return nil, nil
	}
	return p.InstanceChecksFunc(ctx, ids)
}

// InstanceAddresses implements cloud.Provider.
func (p *Provider) InstanceAddresses(ctx context.Context, id string) (cloud.Addresses, error) {
	p.record("InstanceAddresses")
	if p.InstanceAddressesFunc == nil {
		return cloud.Addresses{}, nil
	}
	return p.InstanceAddressesFunc(ctx, id)
}

// SequentialIDs returns a LaunchInstancesFunc that hands out ids from the
// given list in order, one per requested instance.
func SequentialIDs(ids ...string) func(context.Context, cloud.LaunchOpts) ([]cloud.Instance, error) {
	var mu sync.Mutex
	next := 0
	return func(_ context.Context, opts cloud.LaunchOpts) ([]cloud.Instance, error) {
		mu.Lock()
		defer mu.Unlock()
		if next+opts.Count > len(ids) {
			return nil, fmt.Errorf("fake: out of instance ids (want %d, have %d)", opts.Count, len(ids)-next)
		}
		out := make([]cloud.Instance, 0, opts.Count)
		for i := 0; i < opts.Count; i++ {
			out = append(out, cloud.Instance{ID: ids[next], Role: opts.Role})
			next++
		}
		return out, nil
	}
}

// PhaseScript returns an InstancePhasesFunc that replays one map per call and
// keeps returning the last one once the script is exhausted.
func PhaseScript(steps ...map[string]cloud.LifecyclePhase) func(context.Context, []string) (map[string]cloud.LifecyclePhase, error) {
	var mu sync.Mutex
	i := 0
	return func(_ context.Context, _ []string) (map[string]cloud.LifecyclePhase, error) {
		mu.Lock()
		defer mu.Unlock()
		step := steps[i]
		if i < len(steps)-1 {
			i++
		}
		return step, nil
	}
}

// CheckScript is the InstanceChecks counterpart of PhaseScript.
func CheckScript(steps ...map[string]cloud.CheckStatus) func(context.Context, []string) (map[string]cloud.CheckStatus, error) {
	var mu sync.Mutex
	i := 0
	return func(_ context.Context, _ []string) (map[string]cloud.CheckStatus, error) {
		mu.Lock()
		defer mu.Unlock()
		step := steps[i]
		if i < len(steps)-1 {
			i++
		}
		return step, nil
	}
}

// AllPhases builds a phase map assigning phase to every id.
func AllPhases(phase cloud.LifecyclePhase, ids ...string) map[string]cloud.LifecyclePhase {
	m := make(map[string]cloud.LifecyclePhase, len(ids))
	for _, id := range ids {
		m[id] = phase
	}
	return m
}

// AllChecks builds a check map assigning status to every id.
func AllChecks(status cloud.CheckStatus, ids ...string) map[string]cloud.CheckStatus {
	m := make(map[string]cloud.CheckStatus, len(ids))
	for _, id := range ids {
		m[id] = status
	}
	return m
}

// StaticAddresses returns an InstanceAddressesFunc that serves a fixed table.
func StaticAddresses(table map[string]cloud.Addresses) func(context.Context, string) (cloud.Addresses, error) {
	return func(_ context.Context, id string) (cloud.Addresses, error) {
		addr, ok := table[id]
		if !ok {
			return cloud.Addresses{}, fmt.Errorf("fake: unknown instance %s", id)
		}
		return addr, nil
	}
}

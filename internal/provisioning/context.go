package provisioning

import (
	"context"

	"github.com/lessanchos/kubedeploy/internal/config"
	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
)

// State holds the shared results of provisioning phases.
// It is progressively populated as each phase completes and is passed
// to subsequent phases that need earlier results.
type State struct {
	// Access results (populated by access provisioner)
	KeyImported   bool
	AccessGroupID string

	// Compute results (populated by compute provisioner), in launch order
	Masters []cloud.Instance
	Slaves  []cloud.Instance

	// Topology results (populated by topology builder)
	Topology ClusterTopology
}

// NewState creates an empty provisioning state.
func NewState() *State {
	return &State{}
}

// InstanceIDs returns every launched instance id, masters first.
func (s *State) InstanceIDs() []string {
	return cloud.IDs(s.Masters, s.Slaves)
}

// Context wraps all dependencies and state needed for a provisioning phase.
type Context struct {
	context.Context
	Request      config.Request
	Settings     *config.Settings
	State        *State
	Provider     cloud.Provider
	Bootstrapper Bootstrapper
	Clock        Clock
	Observer     Observer
	Timeouts     *config.Timeouts
}

// NewContext creates a new provisioning context.
func NewContext(
	ctx context.Context,
	req config.Request,
	settings *config.Settings,
	provider cloud.Provider,
	bootstrapper Bootstrapper,
) *Context {
	return &Context{
		Context:      ctx,
		Request:      req,
		Settings:     settings,
		State:        NewState(),
		Provider:     provider,
		Bootstrapper: bootstrapper,
		Clock:        SystemClock{},
		Observer:     NewConsoleObserver(),
		Timeouts:     config.LoadTimeouts(),
	}
}

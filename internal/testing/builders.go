package testing

import (
	"testing"

	"github.com/lessanchos/kubedeploy/internal/config"
)

// SettingsBuilder provides a fluent interface for constructing test settings.
// Each method returns a new builder (immutable) for chaining.
type SettingsBuilder struct {
	settings config.Settings
}

// NewSettingsBuilder creates a new SettingsBuilder for the AWS provider.
func NewSettingsBuilder() *SettingsBuilder {
	return &SettingsBuilder{
		settings: config.Settings{
			Provider: config.ProviderAWS,
			UserName: "alice",
		},
	}
}

// WithProvider sets the cloud provider.
func (b *SettingsBuilder) WithProvider(provider string) *SettingsBuilder {
	nb := b.clone()
	nb.settings.Provider = provider
	return nb
}

// WithKeyDir sets the directory private keys are written to.
func (b *SettingsBuilder) WithKeyDir(dir string) *SettingsBuilder {
	nb := b.clone()
	nb.settings.KeyDir = dir
	return nb
}

// WithSSHUser sets the remote login user.
func (b *SettingsBuilder) WithSSHUser(user string) *SettingsBuilder {
	nb := b.clone()
	nb.settings.SSHUser = user
	return nb
}

// WithQueryErrorPolicy sets the readiness query-error policy and budget.
func (b *SettingsBuilder) WithQueryErrorPolicy(policy string, maxErrors int) *SettingsBuilder {
	nb := b.clone()
	nb.settings.Readiness.QueryErrorPolicy = policy
	nb.settings.Readiness.MaxQueryErrors = &maxErrors
	return nb
}

// Build returns the settings with defaults applied.
func (b *SettingsBuilder) Build() *config.Settings {
	s := b.clone().settings
	s.ApplyDefaults()
	return &s
}

func (b *SettingsBuilder) clone() *SettingsBuilder {
	s := b.settings
	if s.Readiness.MaxQueryErrors != nil {
		n := *s.Readiness.MaxQueryErrors
		s.Readiness.MaxQueryErrors = &n
	}
	return &SettingsBuilder{settings: s}
}

// NewRequest builds a validated run request for user and fails the test on error.
func NewRequest(t testing.TB, user string, masters, workers int) config.Request {
	t.Helper()
	req, err := config.NewRequest(user, masters, workers, config.SecurityGroupSettings{
		Name:        config.DefaultSecurityGroupName,
		Description: config.DefaultSecurityGroupDescription,
	})
	if err != nil {
		t.Fatalf("invalid test request: %v", err)
	}
	return req
}

// DefaultTimeouts returns the default timeouts without reading the environment.
func DefaultTimeouts() *config.Timeouts {
	return &config.Timeouts{
		RunningInterval: config.DefaultRunningInterval,
		CheckInterval:   config.DefaultCheckInterval,
		PostBootDelay:   config.DefaultPostBootDelay,
		SettleDelay:     config.DefaultSettleDelay,
		RunningTimeout:  config.DefaultRunningTimeout,
		CheckTimeout:    config.DefaultCheckTimeout,
		NodeReady:       config.DefaultNodeReady,
		SSHMaxRetries:   config.DefaultSSHMaxRetries,
		SSHRetryDelay:   config.DefaultSSHRetryDelay,
	}
}

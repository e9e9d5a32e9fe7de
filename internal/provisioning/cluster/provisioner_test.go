package cluster

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud/cloudtest"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
	kdtest "github.com/lessanchos/kubedeploy/internal/testing"
)

func newHarness(t *testing.T, fixture *kdtest.ClusterFixture, boot *kdtest.MockBootstrapper) *kdtest.Harness {
	t.Helper()
	h := kdtest.NewHarness(t, &cloudtest.Provider{}, kdtest.NewSettingsBuilder().Build())
	h.Ctx.State.Topology = fixture.Topology()
	h.Ctx.Bootstrapper = boot
	return h
}

func TestProvisioner_StepOrder(t *testing.T) {
	t.Parallel()
	fixture := kdtest.NewClusterFixture(1, 2)
	boot := kdtest.NewMockBootstrapper()
	h := newHarness(t, fixture, boot)

	p := NewProvisioner()
	assert.Equal(t, "cluster", p.Name())
	require.NoError(t, p.Provision(h.Ctx))

	assert.Equal(t, []string{"InstallKubernetes", "InstallDashboard", "InstallDataProcessing"}, boot.StepOrder())
	topo := fixture.Topology()
	boot.AssertCalled(t, "InstallKubernetes", mock.Anything, topo, "alice_key")
	boot.AssertCalled(t, "InstallDashboard", mock.Anything, topo.Masters[0], "alice_key")
	boot.AssertCalled(t, "InstallDataProcessing", mock.Anything, topo, "alice_key")
}

func TestProvisioner_StepFailures(t *testing.T) {
	t.Parallel()
	tests := []struct {
		method    string
		wantStep  string
		wantCalls int
	}{
		{"InstallKubernetes", StepKubernetes, 1},
		{"InstallDashboard", StepDashboard, 2},
		{"InstallDataProcessing", StepDataProcessing, 3},
	}

	for _, tt := range tests {
		t.Run(tt.method, func(t *testing.T) {
			t.Parallel()
			cause := errors.New("ssh: handshake failed")
			boot := kdtest.NewFailingBootstrapper(tt.method, cause)
			h := newHarness(t, kdtest.NewClusterFixture(1, 2), boot)

			err := NewProvisioner().Provision(h.Ctx)

			var bootErr *provisioning.BootstrapError
			require.ErrorAs(t, err, &bootErr)
			assert.Equal(t, tt.wantStep, bootErr.Step)
			assert.ErrorIs(t, err, cause)
			assert.Len(t, boot.StepOrder(), tt.wantCalls, "no step may run after a failure")
		})
	}
}

func TestProvisioner_EmptyTopology(t *testing.T) {
	t.Parallel()
	boot := kdtest.NewMockBootstrapper()
	h := newHarness(t, kdtest.NewClusterFixture(0, 0), boot)

	err := NewProvisioner().Provision(h.Ctx)

	var bootErr *provisioning.BootstrapError
	require.ErrorAs(t, err, &bootErr)
	assert.Empty(t, boot.StepOrder())
}

func TestSettleProvisioner(t *testing.T) {
	t.Parallel()
	h := newHarness(t, kdtest.NewClusterFixture(1, 0), kdtest.NewMockBootstrapper())

	p := NewSettleProvisioner()
	assert.Equal(t, "settle", p.Name())
	require.NoError(t, p.Provision(h.Ctx))
	assert.Equal(t, []time.Duration{40 * time.Second}, h.Clock.Sleeps())
}

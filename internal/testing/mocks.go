package testing

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/lessanchos/kubedeploy/internal/provisioning"
)

// MockBootstrapper is a mock implementation of provisioning.Bootstrapper.
// It can be used across all tests that drive the cluster phase.
type MockBootstrapper struct {
	mock.Mock
}

var _ provisioning.Bootstrapper = (*MockBootstrapper)(nil)

// InstallKubernetes records the call and returns the configured error.
func (m *MockBootstrapper) InstallKubernetes(ctx context.Context, topology provisioning.ClusterTopology, keyName string) error {
	args := m.Called(ctx, topology, keyName)
	return args.Error(0)
}

// InstallDashboard records the call and returns the configured error.
func (m *MockBootstrapper) InstallDashboard(ctx context.Context, master provisioning.MasterRecord, keyName string) error {
	args := m.Called(ctx, master, keyName)
	return args.Error(0)
}

// InstallDataProcessing records the call and returns the configured error.
func (m *MockBootstrapper) InstallDataProcessing(ctx context.Context, topology provisioning.ClusterTopology, keyName string) error {
	args := m.Called(ctx, topology, keyName)
	return args.Error(0)
}

// NewMockBootstrapper creates a MockBootstrapper where every step succeeds.
func NewMockBootstrapper() *MockBootstrapper {
	m := &MockBootstrapper{}
	m.On("InstallKubernetes", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.On("InstallDashboard", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	m.On("InstallDataProcessing", mock.Anything, mock.Anything, mock.Anything).Return(nil)
	return m
}

// NewFailingBootstrapper creates a MockBootstrapper whose step named method
// fails with err. Earlier steps succeed; later steps are not expected.
func NewFailingBootstrapper(method string, err error) *MockBootstrapper {
	m := &MockBootstrapper{}
	for _, step := range []string{"InstallKubernetes", "InstallDashboard", "InstallDataProcessing"} {
		if step == method {
			m.On(step, mock.Anything, mock.Anything, mock.Anything).Return(err)
			return m
		}
		m.On(step, mock.Anything, mock.Anything, mock.Anything).Return(nil)
	}
	return m
}

// StepOrder returns the names of the bootstrap steps invoked, in order.
func (m *MockBootstrapper) StepOrder() []string {
	var steps []string
	for _, call := range m.Calls {
		steps = append(steps, call.Method)
	}
	return steps
}

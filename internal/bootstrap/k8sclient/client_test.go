package k8sclient

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	dynamicfake "k8s.io/client-go/dynamic/fake"
	"k8s.io/client-go/kubernetes/fake"
	"k8s.io/client-go/restmapper"
	k8stesting "k8s.io/client-go/testing"
)

func readyNode(name string, ready bool) *corev1.Node {
	status := corev1.ConditionFalse
	if ready {
		status = corev1.ConditionTrue
	}
	return &corev1.Node{
		ObjectMeta: metav1.ObjectMeta{Name: name},
		Status: corev1.NodeStatus{
			Conditions: []corev1.NodeCondition{
				{Type: corev1.NodeMemoryPressure, Status: corev1.ConditionFalse},
				{Type: corev1.NodeReady, Status: status},
			},
		},
	}
}

func setupNodeClient(t *testing.T, objects ...runtime.Object) (Client, *fake.Clientset) {
	t.Helper()

	//nolint:staticcheck // SA1019: NewSimpleClientset is sufficient for our testing needs
	clientset := fake.NewSimpleClientset(objects...)
	scheme := runtime.NewScheme()
	_ = corev1.AddToScheme(scheme)

	return NewFromClients(clientset, dynamicfake.NewSimpleDynamicClient(scheme), createApplyTestMapper()), clientset
}

func TestIsNodeReady(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		node *corev1.Node
		want bool
	}{
		{"ready", readyNode("a", true), true},
		{"not ready", readyNode("a", false), false},
		{"no conditions", &corev1.Node{}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, IsNodeReady(tt.node))
		})
	}
}

func TestWaitForNodesReady_AllReady(t *testing.T) {
	t.Parallel()

	c, _ := setupNodeClient(t, readyNode("master-1", true), readyNode("slave1", true), readyNode("slave2", true))

	err := c.WaitForNodesReady(context.Background(), 3, time.Second)
	require.NoError(t, err)
}

func TestWaitForNodesReady_Timeout(t *testing.T) {
	t.Parallel()

	c, _ := setupNodeClient(t, readyNode("master-1", true), readyNode("slave1", false))

	err := c.WaitForNodesReady(context.Background(), 2, 100*time.Millisecond)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 of 2 nodes ready")
}

func TestWaitForNodesReady_ListErrorsAreRetried(t *testing.T) {
	t.Parallel()

	c, clientset := setupNodeClient(t, readyNode("master-1", true))

	calls := 0
	clientset.PrependReactor("list", "nodes", func(k8stesting.Action) (bool, runtime.Object, error) {
		calls++
		if calls < 3 {
			return true, nil, assert.AnError
		}
		return false, nil, nil
	})

	err := c.WaitForNodesReady(context.Background(), 1, 5*time.Second)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, calls, 3)
}

func TestLabelNode(t *testing.T) {
	t.Parallel()

	c, clientset := setupNodeClient(t, readyNode("slave1", true))

	err := c.LabelNode(context.Background(), "slave1", map[string]string{"kubedeploy.io/slave-id": "slave1"})
	require.NoError(t, err)

	node, err := clientset.CoreV1().Nodes().Get(context.Background(), "slave1", metav1.GetOptions{})
	require.NoError(t, err)
	assert.Equal(t, "slave1", node.Labels["kubedeploy.io/slave-id"])
}

func TestLabelNode_Missing(t *testing.T) {
	t.Parallel()

	c, _ := setupNodeClient(t)

	err := c.LabelNode(context.Background(), "ghost", map[string]string{"a": "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to label node ghost")
}

func TestNewFromKubeconfig_InvalidKubeconfig(t *testing.T) {
	t.Parallel()

	_, err := NewFromKubeconfig([]byte(`invalid kubeconfig content`))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to create REST config")
}

func TestNewFromKubeconfig_EmptyKubeconfig(t *testing.T) {
	t.Parallel()

	_, err := NewFromKubeconfig([]byte{})
	require.Error(t, err)
}

func TestClient_Interface(t *testing.T) {
	t.Parallel()

	var _ Client = &client{}
}

// createApplyTestMapper creates a REST mapper for testing
func createApplyTestMapper() meta.RESTMapper {
	resources := []*restmapper.APIGroupResources{
		{
			Group: metav1.APIGroup{
				Name: "",
				Versions: []metav1.GroupVersionForDiscovery{
					{GroupVersion: "v1", Version: "v1"},
				},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "namespaces", Namespaced: false, Kind: "Namespace"},
					{Name: "serviceaccounts", Namespaced: true, Kind: "ServiceAccount"},
					{Name: "services", Namespaced: true, Kind: "Service"},
					{Name: "nodes", Namespaced: false, Kind: "Node"},
				},
			},
		},
		{
			Group: metav1.APIGroup{
				Name: "apps",
				Versions: []metav1.GroupVersionForDiscovery{
					{GroupVersion: "apps/v1", Version: "v1"},
				},
				PreferredVersion: metav1.GroupVersionForDiscovery{GroupVersion: "apps/v1", Version: "v1"},
			},
			VersionedResources: map[string][]metav1.APIResource{
				"v1": {
					{Name: "deployments", Namespaced: true, Kind: "Deployment"},
				},
			},
		},
	}

	return restmapper.NewDiscoveryRESTMapper(resources)
}

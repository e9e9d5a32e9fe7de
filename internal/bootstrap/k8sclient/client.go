package k8sclient

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	corev1 "k8s.io/api/core/v1"
	"k8s.io/apimachinery/pkg/api/meta"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/types"
	"k8s.io/apimachinery/pkg/util/wait"
	"k8s.io/client-go/discovery"
	"k8s.io/client-go/dynamic"
	"k8s.io/client-go/kubernetes"
	"k8s.io/client-go/restmapper"
	"k8s.io/client-go/tools/clientcmd"
)

// nodePollInterval is how often node readiness is re-checked.
const nodePollInterval = 5 * time.Second

// Client provides the Kubernetes operations used during bootstrap.
type Client interface {
	// ApplyManifests applies multi-document YAML using Server-Side Apply.
	// The fieldManager identifies the actor applying the configuration.
	ApplyManifests(ctx context.Context, manifests []byte, fieldManager string) error

	// WaitForNodesReady blocks until at least count nodes report Ready.
	WaitForNodesReady(ctx context.Context, count int, timeout time.Duration) error

	// LabelNode merges labels into the labels of the named node.
	LabelNode(ctx context.Context, nodeName string, labels map[string]string) error
}

// client implements the Client interface using k8s.io/client-go.
type client struct {
	clientset     kubernetes.Interface
	dynamicClient dynamic.Interface
	mapper        meta.RESTMapper
	pollInterval  time.Duration
}

// NewFromKubeconfig creates a Client from kubeconfig bytes.
// This avoids the need to write kubeconfig to a temporary file.
func NewFromKubeconfig(kubeconfig []byte) (Client, error) {
	restConfig, err := clientcmd.RESTConfigFromKubeConfig(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create REST config from kubeconfig: %w", err)
	}

	clientset, err := kubernetes.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create kubernetes clientset: %w", err)
	}

	dynamicClient, err := dynamic.NewForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create dynamic client: %w", err)
	}

	discoveryClient, err := discovery.NewDiscoveryClientForConfig(restConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create discovery client: %w", err)
	}

	groupResources, err := restmapper.GetAPIGroupResources(discoveryClient)
	if err != nil {
		return nil, fmt.Errorf("failed to get API group resources: %w", err)
	}

	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        restmapper.NewDiscoveryRESTMapper(groupResources),
		pollInterval:  nodePollInterval,
	}, nil
}

// NewFromClients creates a Client from pre-configured clients.
// This is useful for testing with fake clients.
func NewFromClients(
	clientset kubernetes.Interface,
	dynamicClient dynamic.Interface,
	mapper meta.RESTMapper,
) Client {
	return &client{
		clientset:     clientset,
		dynamicClient: dynamicClient,
		mapper:        mapper,
		pollInterval:  10 * time.Millisecond,
	}
}

// WaitForNodesReady polls the node list until count nodes are Ready.
func (c *client) WaitForNodesReady(ctx context.Context, count int, timeout time.Duration) error {
	var ready int
	err := wait.PollUntilContextTimeout(ctx, c.pollInterval, timeout, true, func(ctx context.Context) (bool, error) {
		nodes, err := c.clientset.CoreV1().Nodes().List(ctx, metav1.ListOptions{})
		if err != nil {
			// The API server may still be coming up behind the endpoint.
			return false, nil
		}

		ready = 0
		for i := range nodes.Items {
			if IsNodeReady(&nodes.Items[i]) {
				ready++
			}
		}
		return ready >= count, nil
	})
	if err != nil {
		return fmt.Errorf("%d of %d nodes ready: %w", ready, count, err)
	}
	return nil
}

// LabelNode merges labels into the node's metadata with a JSON merge patch.
func (c *client) LabelNode(ctx context.Context, nodeName string, labels map[string]string) error {
	patch, err := json.Marshal(map[string]any{
		"metadata": map[string]any{"labels": labels},
	})
	if err != nil {
		return fmt.Errorf("failed to encode label patch: %w", err)
	}

	if _, err := c.clientset.CoreV1().Nodes().Patch(ctx, nodeName, types.MergePatchType, patch, metav1.PatchOptions{}); err != nil {
		return fmt.Errorf("failed to label node %s: %w", nodeName, err)
	}
	return nil
}

// IsNodeReady reports whether the node's Ready condition is true.
func IsNodeReady(node *corev1.Node) bool {
	for _, cond := range node.Status.Conditions {
		if cond.Type == corev1.NodeReady {
			return cond.Status == corev1.ConditionTrue
		}
	}
	return false
}

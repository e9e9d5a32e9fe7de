// Package k8sclient provides a Kubernetes client for cluster bootstrap,
// wrapping k8s.io/client-go for Server-Side Apply of multi-document YAML
// manifests and node readiness and labeling, directly from kubeconfig bytes.
package k8sclient

// Package netutil holds the well-known ports the cluster exposes.
package netutil

const (
	// SSHPort is the port remote bootstrap connects to.
	SSHPort = 22
	// KubeAPIPort is the port of the Kubernetes API server.
	KubeAPIPort = 6443
)

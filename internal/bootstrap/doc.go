// Package bootstrap installs Kubernetes, the kube-opex-analytics dashboard
// and Spark on a provisioned cluster.
//
// Node preparation, kubeadm init/join and host-level installs run over SSH.
// Cluster objects are rendered from typed k8s.io/api values and applied with
// Server-Side Apply through the k8sclient package, using the admin
// kubeconfig fetched from a master and re-pointed at its public address.
package bootstrap

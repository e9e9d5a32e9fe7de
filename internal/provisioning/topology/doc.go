// Package topology resolves the network identity of every launched
// instance into a provisioning.ClusterTopology.
package topology

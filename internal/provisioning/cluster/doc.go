// Package cluster drives the remote bootstrap of a provisioned cluster.
//
// The settle phase waits a fixed time after the topology is known so that
// instances finish their own boot work. The cluster phase then calls the
// Bootstrapper in a fixed order: orchestration runtime on every node, the
// cost/usage dashboard through the primary master, and the data-processing
// layer. Every failure is a *provisioning.BootstrapError naming the step.
package cluster

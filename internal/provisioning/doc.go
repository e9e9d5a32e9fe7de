// Package provisioning provides shared types, interfaces, and orchestration for cluster provisioning.
//
// # Subpackages
//
//   - access/: key pair import and network-access group
//   - compute/: role-scoped instance launches
//   - readiness/: the two-phase readiness gate
//   - topology/: address resolution into a ClusterTopology
//   - cluster/: remote bootstrap through a Bootstrapper
//
// # Core Types
//
// Context carries the run request, provider, bootstrapper, clock, observer and state.
// Phase defines a provisioning step with Name() and Provision() methods.
// State accumulates results from each phase (access group, instances, topology).
package provisioning

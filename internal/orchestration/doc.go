// Package orchestration provides high-level workflow coordination for a
// deployment run.
//
// This package sequences the provisioning phases in internal/provisioning
// subpackages. It defines the execution order and the state flow between
// phases and records run metrics.
//
// # Workflow
//
// The Driver executes the following phases in order:
//  1. Access - Key pair import and network-access group
//  2. Compute - Master and slave instance launch
//  3. Readiness - Polling until every instance is running and healthy
//  4. Topology - Address resolution into the cluster topology
//  5. Settle - Fixed delay before remote bootstrap
//  6. Cluster - Kubernetes, dashboard and data-processing installation
//
// # Usage
//
//	driver := orchestration.NewDriver(req, settings, provider, installer)
//	topology, err := driver.Run(ctx)
//
// A run is not idempotent and never cleans up: a failure leaves every
// resource created so far in place.
package orchestration

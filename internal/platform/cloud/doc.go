// Package cloud defines the provider-neutral boundary consumed by the
// provisioning pipeline.
//
// A Provider creates the access primitives of a run (key pair and
// network-access group), launches role-tagged instances and answers the
// three queries the readiness gate and the topology builder need:
// lifecycle phase, status-check outcome and addresses.
//
// Backends live next to this package:
//
//   - ec2/: Amazon EC2 (aws-sdk-go-v2)
//   - hcloud/: Hetzner Cloud (hcloud-go)
package cloud

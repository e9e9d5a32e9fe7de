// Package compute launches the master and slave instances of a run.
//
// Instances are created in two role-scoped requests, masters first. Each
// instance is labeled with its user and role and named after its ordinal
// (<user>-master-<n>, <user>-slave<n>). A rejected or short launch is a
// *provisioning.ProvisionError and is never retried.
package compute

// Package ssh provides an SSH client for executing commands on remote servers.
//
// It is used by remote bootstrap to prepare freshly booted instances,
// run kubeadm, and copy files such as the admin kubeconfig. The client
// supports key-based authentication with configurable retry logic,
// because sshd is often not accepting connections yet when an instance
// first reports its status checks as passed.
//
// Security: Host key verification is disabled by default for ephemeral infrastructure.
// Configure HostKeyCallback for environments with persistent servers.
package ssh

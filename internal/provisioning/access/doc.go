// Package access allocates the network and security primitives of a run:
// the SSH key pair used to reach every instance and the access group that
// opens the cluster ports.
package access

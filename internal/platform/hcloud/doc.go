// Package hcloud implements cloud.Provider on the Hetzner Cloud API.
//
// The provider maps the EC2-shaped provisioning model onto Hetzner
// resources:
//
//   - key pairs are SSH keys
//   - the access group is a firewall plus a private network of the same
//     name; every server joins both, and traffic between members flows
//     over the private network, which firewalls do not filter
//   - instance ids are decimal server ids
//
// Hetzner has no separate status checks. A server passes its check once it
// is running and has a public IPv4 address.
//
// Transient API errors (locked resources, rate limits) are retried with
// exponential backoff; everything else is returned to the caller.
package hcloud

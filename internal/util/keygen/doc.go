// Package keygen generates RSA key pairs for SSH authentication.
//
// Keys are produced in PEM format (private) and OpenSSH authorized_keys
// format (public). The public half is imported into the cloud provider,
// the private half is stored next to the run as <key name>.pem.
package keygen

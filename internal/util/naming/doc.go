// Package naming provides consistent naming functions for run resources.
//
// Instances are named {user}-master-{n} and {user}-slave{n}, the key pair
// {user}_key, and slave ids slave{n}, all with 1-based launch ordinals.
package naming

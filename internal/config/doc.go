// Package config defines the configuration model of a deployment run.
//
// [Request] is the immutable, validated description of one run (user,
// node counts, key and security-group names). [Settings] holds the
// provider credentials and instance defaults loaded from a YAML file,
// and [Timeouts] the poll intervals, delays and deadlines that can be
// tuned through environment variables.
package config

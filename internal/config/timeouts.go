package config

import (
	"os"
	"strconv"
	"time"
)

// Default timing values of a run.
const (
	DefaultRunningInterval = 3 * time.Second
	DefaultCheckInterval   = 10 * time.Second
	DefaultPostBootDelay   = 10 * time.Second
	DefaultSettleDelay     = 40 * time.Second
	DefaultRunningTimeout  = 10 * time.Minute
	DefaultCheckTimeout    = 20 * time.Minute
	DefaultNodeReady       = 10 * time.Minute
	DefaultSSHMaxRetries   = 30
	DefaultSSHRetryDelay   = 5 * time.Second
)

// Timeouts holds all configurable timing values of a run.
// These values can be customized via environment variables.
type Timeouts struct {
	RunningInterval time.Duration // Poll interval while waiting for instances to run
	CheckInterval   time.Duration // Poll interval while waiting for status checks
	PostBootDelay   time.Duration // Unconditional wait once every check passed
	SettleDelay     time.Duration // Unconditional wait before remote bootstrap
	RunningTimeout  time.Duration // Deadline for the running phase, 0 disables it
	CheckTimeout    time.Duration // Deadline for the status-check phase, 0 disables it
	NodeReady       time.Duration // Timeout for Kubernetes nodes to report Ready
	SSHMaxRetries   int           // Maximum number of SSH dial attempts
	SSHRetryDelay   time.Duration // Delay between SSH dial attempts
}

// LoadTimeouts loads timing configuration from environment variables.
// If an environment variable is not set or invalid, a default value is used.
// The two poll intervals must be positive.
//
// Environment Variables:
//   - KUBEDEPLOY_POLL_RUNNING_INTERVAL (default: 3s)
//   - KUBEDEPLOY_POLL_CHECK_INTERVAL (default: 10s)
//   - KUBEDEPLOY_POST_BOOT_DELAY (default: 10s)
//   - KUBEDEPLOY_SETTLE_DELAY (default: 40s)
//   - KUBEDEPLOY_TIMEOUT_RUNNING (default: 10m)
//   - KUBEDEPLOY_TIMEOUT_CHECKS (default: 20m)
//   - KUBEDEPLOY_TIMEOUT_NODE_READY (default: 10m)
//   - KUBEDEPLOY_SSH_MAX_RETRIES (default: 30)
//   - KUBEDEPLOY_SSH_RETRY_DELAY (default: 5s)
func LoadTimeouts() *Timeouts {
	return &Timeouts{
		RunningInterval: parseInterval("KUBEDEPLOY_POLL_RUNNING_INTERVAL", DefaultRunningInterval),
		CheckInterval:   parseInterval("KUBEDEPLOY_POLL_CHECK_INTERVAL", DefaultCheckInterval),
		PostBootDelay:   parseDuration("KUBEDEPLOY_POST_BOOT_DELAY", DefaultPostBootDelay),
		SettleDelay:     parseDuration("KUBEDEPLOY_SETTLE_DELAY", DefaultSettleDelay),
		RunningTimeout:  parseDuration("KUBEDEPLOY_TIMEOUT_RUNNING", DefaultRunningTimeout),
		CheckTimeout:    parseDuration("KUBEDEPLOY_TIMEOUT_CHECKS", DefaultCheckTimeout),
		NodeReady:       parseDuration("KUBEDEPLOY_TIMEOUT_NODE_READY", DefaultNodeReady),
		SSHMaxRetries:   parseInt("KUBEDEPLOY_SSH_MAX_RETRIES", DefaultSSHMaxRetries),
		SSHRetryDelay:   parseDuration("KUBEDEPLOY_SSH_RETRY_DELAY", DefaultSSHRetryDelay),
	}
}

// parseDuration parses a duration from an environment variable.
// If the variable is not set, fails to parse or is negative, the default value is returned.
func parseDuration(envVar string, defaultVal time.Duration) time.Duration {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	d, err := time.ParseDuration(val)
	if err != nil || d < 0 {
		return defaultVal
	}

	return d
}

// parseInterval is parseDuration for poll intervals: zero is rejected too,
// since a zero interval would query the provider in a tight loop.
func parseInterval(envVar string, defaultVal time.Duration) time.Duration {
	if d := parseDuration(envVar, defaultVal); d > 0 {
		return d
	}
	return defaultVal
}

// parseInt parses an integer from an environment variable.
// If the variable is not set or parsing fails, the default value is returned.
func parseInt(envVar string, defaultVal int) int {
	val := os.Getenv(envVar)
	if val == "" {
		return defaultVal
	}

	i, err := strconv.Atoi(val)
	if err != nil {
		return defaultVal
	}

	return i
}

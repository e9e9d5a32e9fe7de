package provisioning

import (
	"fmt"
	"strings"
	"time"
)

// KeyPairError reports that the key pair could not be imported.
// It is the only error a run tolerates: the pipeline logs it and continues.
type KeyPairError struct {
	KeyName string
	Err     error
}

func (e *KeyPairError) Error() string {
	return fmt.Sprintf("key pair %q: %v", e.KeyName, e.Err)
}

func (e *KeyPairError) Unwrap() error { return e.Err }

// ProvisionError reports that the provider rejected a launch, or that an
// instance reached a state from which it will not become running.
// InstanceIDs lists instances that exist despite the failure.
type ProvisionError struct {
	Op          string
	InstanceIDs []string
	Err         error
}

func (e *ProvisionError) Error() string {
	if len(e.InstanceIDs) > 0 {
		return fmt.Sprintf("provision %s: %v (instances left running: %s)", e.Op, e.Err, strings.Join(e.InstanceIDs, " "))
	}
	return fmt.Sprintf("provision %s: %v", e.Op, e.Err)
}

func (e *ProvisionError) Unwrap() error { return e.Err }

// PollingQueryError reports a failed state query during the readiness gate.
type PollingQueryError struct {
	State    string
	Attempts int
	Err      error
}

func (e *PollingQueryError) Error() string {
	if e.Attempts > 1 {
		return fmt.Sprintf("query failed while %s (%d consecutive attempts): %v", e.State, e.Attempts, e.Err)
	}
	return fmt.Sprintf("query failed while %s: %v", e.State, e.Err)
}

func (e *PollingQueryError) Unwrap() error { return e.Err }

// ReadinessTimeoutError reports that a readiness state exceeded its deadline.
type ReadinessTimeoutError struct {
	State   string
	Timeout time.Duration
	Pending []string
}

func (e *ReadinessTimeoutError) Error() string {
	return fmt.Sprintf("timed out after %v while %s (still waiting on: %s)",
		e.Timeout, e.State, strings.Join(e.Pending, ", "))
}

// AddressResolutionError reports an instance whose address could not be
// resolved. Field is empty when the query itself failed.
type AddressResolutionError struct {
	InstanceID string
	Field      string
	Err        error
}

func (e *AddressResolutionError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("resolve addresses of %s: %v", e.InstanceID, e.Err)
	}
	return fmt.Sprintf("instance %s has no %s", e.InstanceID, e.Field)
}

func (e *AddressResolutionError) Unwrap() error { return e.Err }

// BootstrapError reports a failed remote bootstrap step.
type BootstrapError struct {
	Step string
	Err  error
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("bootstrap %s: %v", e.Step, e.Err)
}

func (e *BootstrapError) Unwrap() error { return e.Err }

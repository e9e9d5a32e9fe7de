package readiness

// State is a step of the readiness gate.
type State string

const (
	AwaitingRunning     State = "awaiting-running"
	AwaitingHealthCheck State = "awaiting-health-check"
	PostBootDelay       State = "post-boot-delay"
	Ready               State = "ready"
)

// next returns the state that follows s. Ready is terminal.
func (s State) next() State {
	switch s {
	case AwaitingRunning:
		return AwaitingHealthCheck
	case AwaitingHealthCheck:
		return PostBootDelay
	default:
		return Ready
	}
}

// describe renders s for progress and error messages.
func (s State) describe() string {
	switch s {
	case AwaitingRunning:
		return "waiting for instances to run"
	case AwaitingHealthCheck:
		return "waiting for status checks"
	case PostBootDelay:
		return "waiting for services to start"
	default:
		return string(s)
	}
}

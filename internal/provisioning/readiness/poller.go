package readiness

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/lessanchos/kubedeploy/internal/config"
	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
)

// Config holds the timing and error policy of the gate.
type Config struct {
	RunningInterval time.Duration
	CheckInterval   time.Duration
	PostBootDelay   time.Duration

	// RunningTimeout and CheckTimeout bound the polling states; 0 disables the bound.
	RunningTimeout time.Duration
	CheckTimeout   time.Duration

	// QueryErrorPolicy is config.QueryErrorPolicyFatal or config.QueryErrorPolicyRetry.
	QueryErrorPolicy string
	// MaxQueryErrors is the consecutive-failure budget under the retry policy; 0 means unlimited.
	MaxQueryErrors int
}

// ConfigFrom assembles a Config from run timeouts and readiness settings.
func ConfigFrom(t *config.Timeouts, r config.ReadinessSettings) Config {
	return Config{
		RunningInterval:  t.RunningInterval,
		CheckInterval:    t.CheckInterval,
		PostBootDelay:    t.PostBootDelay,
		RunningTimeout:   t.RunningTimeout,
		CheckTimeout:     t.CheckTimeout,
		QueryErrorPolicy: r.QueryErrorPolicy,
		MaxQueryErrors:   r.MaxConsecutiveQueryErrors(),
	}
}

// Hooks are optional callbacks fired by the poller.
type Hooks struct {
	// OnTransition fires after every state change.
	OnTransition func(from, to State)
	// OnQueryError fires for every failed provider query.
	OnQueryError func(state State, err error)
}

// Poller drives the readiness state machine.
type Poller struct {
	provider cloud.InstanceObserver
	clock    provisioning.Clock
	observer provisioning.Observer
	cfg      Config
	hooks    Hooks
}

// NewPoller creates a poller. A nil observer discards narration.
func NewPoller(provider cloud.InstanceObserver, clock provisioning.Clock, observer provisioning.Observer, cfg Config, hooks Hooks) *Poller {
	if observer == nil {
		observer = discardObserver{}
	}
	return &Poller{
		provider: provider,
		clock:    clock,
		observer: observer,
		cfg:      cfg,
		hooks:    hooks,
	}
}

// Wait blocks until every instance in ids is Ready or the gate fails.
func (p *Poller) Wait(ctx context.Context, ids []string) error {
	state := AwaitingRunning
	for state != Ready {
		var err error
		switch state {
		case AwaitingRunning:
			err = p.poll(ctx, state, ids, p.cfg.RunningInterval, p.cfg.RunningTimeout)
		case AwaitingHealthCheck:
			err = p.poll(ctx, state, ids, p.cfg.CheckInterval, p.cfg.CheckTimeout)
		case PostBootDelay:
			p.observer.Printf("[%s] All status checks passed, waiting %v for services to start...", phase, p.cfg.PostBootDelay)
			err = p.sleep(ctx, state, p.cfg.PostBootDelay)
		}
		if err != nil {
			return err
		}

		next := state.next()
		p.transition(state, next)
		state = next
	}
	return nil
}

func (p *Poller) poll(ctx context.Context, state State, ids []string, interval, timeout time.Duration) error {
	start := p.clock.Now()
	pending := slices.Clone(ids)
	failures := 0

	for {
		statuses, queryErr := p.snapshot(ctx, state, ids)
		if queryErr != nil {
			failures++
			if err := p.queryFailed(state, failures, queryErr); err != nil {
				return err
			}
		} else {
			failures = 0
			blocking, err := evaluate(state, statuses)
			if err != nil {
				return err
			}
			if len(blocking) == 0 {
				return nil
			}
			pending = blocking
			p.observer.Progress(phase, len(ids)-len(pending), len(ids))
			p.observer.Printf("[%s] %d/%d instances ready, %s (next check in %v)...",
				phase, len(ids)-len(pending), len(ids), state.describe(), interval)
		}

		if timeout > 0 && p.clock.Now().Sub(start) >= timeout {
			return &provisioning.ReadinessTimeoutError{
				State:   state.describe(),
				Timeout: timeout,
				Pending: pending,
			}
		}

		if err := p.sleep(ctx, state, interval); err != nil {
			return err
		}
	}
}

// queryFailed applies the query-error policy. A nil return means the poll
// should be retried after the usual interval.
func (p *Poller) queryFailed(state State, failures int, err error) error {
	if p.hooks.OnQueryError != nil {
		p.hooks.OnQueryError(state, err)
	}

	if p.cfg.QueryErrorPolicy != config.QueryErrorPolicyRetry {
		return &provisioning.PollingQueryError{State: state.describe(), Attempts: failures, Err: err}
	}
	if p.cfg.MaxQueryErrors > 0 && failures >= p.cfg.MaxQueryErrors {
		return &provisioning.PollingQueryError{State: state.describe(), Attempts: failures, Err: err}
	}

	provisioning.LogWarning(p.observer, phase, fmt.Errorf("query failed while %s (attempt %d), retrying: %w",
		state.describe(), failures, err))
	return nil
}

func (p *Poller) sleep(ctx context.Context, state State, d time.Duration) error {
	if err := p.clock.Sleep(ctx, d); err != nil {
		return fmt.Errorf("interrupted while %s: %w", state.describe(), err)
	}
	return nil
}

func (p *Poller) transition(from, to State) {
	provisioning.LogStateTransition(p.observer, phase, string(from), string(to))
	if p.hooks.OnTransition != nil {
		p.hooks.OnTransition(from, to)
	}
}

// snapshot queries the provider for the attribute the state waits on.
// Instances missing from the answer keep their zero-progress defaults.
func (p *Poller) snapshot(ctx context.Context, state State, ids []string) ([]cloud.InstanceStatus, error) {
	statuses := make([]cloud.InstanceStatus, len(ids))
	for i, id := range ids {
		statuses[i] = cloud.InstanceStatus{ID: id, Phase: cloud.PhaseUnknown, Check: cloud.CheckInitializing}
	}

	switch state {
	case AwaitingRunning:
		phases, err := p.provider.InstancePhases(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range statuses {
			if ph, ok := phases[statuses[i].ID]; ok {
				statuses[i].Phase = ph
			}
		}
	case AwaitingHealthCheck:
		checks, err := p.provider.InstanceChecks(ctx, ids)
		if err != nil {
			return nil, err
		}
		for i := range statuses {
			statuses[i].Phase = cloud.PhaseRunning
			if c, ok := checks[statuses[i].ID]; ok {
				statuses[i].Check = c
			}
		}
	}
	return statuses, nil
}

// evaluate returns the ids still blocking state. A dead instance while
// awaiting running aborts the wait.
func evaluate(state State, statuses []cloud.InstanceStatus) ([]string, error) {
	var pending []string
	for _, s := range statuses {
		switch state {
		case AwaitingRunning:
			if s.Phase.IsDead() {
				return nil, &provisioning.ProvisionError{
					Op:  "await running",
					Err: fmt.Errorf("instance %s is %s", s.ID, s.Phase),
				}
			}
			if s.Phase != cloud.PhaseRunning {
				pending = append(pending, s.ID)
			}
		case AwaitingHealthCheck:
			if s.Check != cloud.CheckPassed {
				pending = append(pending, s.ID)
			}
		}
	}
	return pending, nil
}

type discardObserver struct{}

func (discardObserver) Printf(string, ...interface{})                        {}
func (discardObserver) Event(provisioning.Event)                             {}
func (discardObserver) Progress(string, int, int)                            {}
func (d discardObserver) WithFields(map[string]string) provisioning.Observer { return d }

// Package readiness gates a run until every launched instance can be reached.
//
// The gate is a state machine over the whole batch of instances:
//
//	AwaitingRunning -> AwaitingHealthCheck -> PostBootDelay -> Ready
//
// AwaitingRunning polls lifecycle phases until no instance is pending. An
// instance that is stopping, stopped, shutting down or terminated aborts the
// wait. AwaitingHealthCheck polls status checks until every instance has
// passed. PostBootDelay waits a fixed time so services finish starting.
// States are never re-entered.
//
// Each polling state may carry a deadline. Query failures either abort at
// once or are retried at the poll interval up to a budget of consecutive
// failures, depending on the configured policy.
package readiness

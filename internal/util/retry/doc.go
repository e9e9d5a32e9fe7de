// Package retry provides exponential backoff retry logic for transient failures.
//
// [WithExponentialBackoff] retries an operation with configurable max
// attempts, initial delay and maximum delay. It is used for SSH dials to
// freshly booted instances and for waiting on the Kubernetes API server.
// Errors wrapped with [Fatal] stop the loop immediately.
package retry

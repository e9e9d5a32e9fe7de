// Package testing provides test utilities, builders, and fixtures for the
// provisioning phases and the orchestration driver.
//
// This package centralizes common testing patterns to avoid duplication across test files:
//   - SettingsBuilder: Fluent builder for creating test settings
//   - ClusterFixture: Pre-configured fake provider for a cluster of a given shape
//   - MockBootstrapper: Shared testify mock of provisioning.Bootstrapper
//   - FakeClock: provisioning.Clock that advances instantly
//
// Usage:
//
//	fixture := testing.NewClusterFixture(1, 2)
//	h := testing.NewHarness(t, fixture.SuccessfulProvider(),
//	    testing.NewSettingsBuilder().WithKeyDir(t.TempDir()).Build())
//	err := phase.Provision(h.Ctx)
package testing

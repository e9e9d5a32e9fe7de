package testing

import (
	"bytes"
	"context"
	"log"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/lessanchos/kubedeploy/internal/config"
	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
)

// TestContext returns a context with a reasonable timeout for tests.
func TestContext(t testing.TB) context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	t.Cleanup(cancel)
	return ctx
}

// Harness bundles a provisioning context with the fakes behind it.
type Harness struct {
	Ctx   *provisioning.Context
	Clock *FakeClock
	log   *syncBuffer
}

// NewHarness creates a provisioning context for a 1-master, 2-worker run
// by user "alice" with a fake clock and a captured console observer.
func NewHarness(t testing.TB, provider cloud.Provider, settings *config.Settings) *Harness {
	t.Helper()
	return NewHarnessForRequest(t, NewRequest(t, "alice", config.DefaultMasterCount, config.DefaultWorkerCount), provider, settings)
}

// NewHarnessForRequest is NewHarness with an explicit request.
func NewHarnessForRequest(t testing.TB, req config.Request, provider cloud.Provider, settings *config.Settings) *Harness {
	t.Helper()
	buf := &syncBuffer{}
	clock := NewFakeClock()

	ctx := provisioning.NewContext(TestContext(t), req, settings, provider, NewMockBootstrapper())
	ctx.Clock = clock
	ctx.Observer = provisioning.NewConsoleObserverWithLogger(log.New(buf, "", 0))
	ctx.Timeouts = DefaultTimeouts()

	return &Harness{Ctx: ctx, Clock: clock, log: buf}
}

// Log returns everything the observer printed so far.
func (h *Harness) Log() string {
	return h.log.String()
}

// AssertContains fails the test if s does not contain substr.
func AssertContains(t testing.TB, s, substr string) {
	t.Helper()
	if !strings.Contains(s, substr) {
		t.Errorf("expected %q to contain %q", s, substr)
	}
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

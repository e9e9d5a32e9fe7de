package orchestration

import (
	"bytes"
	"context"
	"errors"
	"log"
	"os"
	"path/filepath"
	"sync"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/mock"

	"github.com/lessanchos/kubedeploy/internal/config"
	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/platform/cloud/cloudtest"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
	"github.com/lessanchos/kubedeploy/internal/provisioning/cluster"
	"github.com/lessanchos/kubedeploy/internal/provisioning/readiness"
	kdtest "github.com/lessanchos/kubedeploy/internal/testing"
	"github.com/lessanchos/kubedeploy/internal/util/keygen"
)

// lockedBuffer collects observer output.
type lockedBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *lockedBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *lockedBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

// scenarioProvider serves the three-instance cluster i-aaa, i-bbb, i-ccc:
// pending on the first poll, running afterwards, checks passing on the
// second check poll.
func scenarioProvider() *cloudtest.Provider {
	ids := []string{"i-aaa", "i-bbb", "i-ccc"}
	return &cloudtest.Provider{
		EnsureAccessGroupFunc: func(context.Context, string, string, []cloud.IngressRule) (string, error) {
			return "sg-0123", nil
		},
		LaunchInstancesFunc: cloudtest.SequentialIDs(ids...),
		InstancePhasesFunc: cloudtest.PhaseScript(
			cloudtest.AllPhases(cloud.PhasePending, ids...),
			cloudtest.AllPhases(cloud.PhaseRunning, ids...),
		),
		InstanceChecksFunc: cloudtest.CheckScript(
			cloudtest.AllChecks(cloud.CheckInitializing, ids...),
			cloudtest.AllChecks(cloud.CheckPassed, ids...),
		),
		InstanceAddressesFunc: cloudtest.StaticAddresses(map[string]cloud.Addresses{
			"i-aaa": {PublicIP: "203.0.113.10", PublicDNS: "master.example.com", PrivateIP: "172.31.0.10"},
			"i-bbb": {PublicIP: "203.0.113.100", PublicDNS: "slave1.example.com"},
			"i-ccc": {PublicIP: "203.0.113.101", PublicDNS: "slave2.example.com"},
		}),
	}
}

var _ = Describe("Driver", func() {
	var (
		provider     *cloudtest.Provider
		bootstrapper *kdtest.MockBootstrapper
		settings     *config.Settings
		clock        *kdtest.FakeClock
		out          *lockedBuffer
		metrics      *Metrics
		masters      int
		workers      int
	)

	newDriver := func() *Driver {
		req, err := config.NewRequest("alice", masters, workers, settings.SecurityGroup)
		Expect(err).NotTo(HaveOccurred())

		return NewDriver(req, settings, provider, bootstrapper,
			WithClock(clock),
			WithObserver(provisioning.NewConsoleObserverWithLogger(log.New(out, "", 0))),
			WithTimeouts(kdtest.DefaultTimeouts()),
			WithMetrics(metrics),
			WithKeyBits(1024),
		)
	}

	BeforeEach(func() {
		dir, err := os.MkdirTemp("", "kubedeploy-driver")
		Expect(err).NotTo(HaveOccurred())
		DeferCleanup(os.RemoveAll, dir)

		provider = scenarioProvider()
		bootstrapper = kdtest.NewMockBootstrapper()
		settings = kdtest.NewSettingsBuilder().WithKeyDir(dir).Build()
		clock = kdtest.NewFakeClock()
		out = &lockedBuffer{}
		metrics = NewMetrics()
		masters, workers = 1, 2
	})

	Context("with one master and two workers", func() {
		It("provisions, resolves and bootstraps the cluster", func() {
			topo, err := newDriver().Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			By("resolving the topology in launch order")
			Expect(topo.Masters).To(HaveLen(1))
			Expect(topo.Masters[0].InstanceID).To(Equal("i-aaa"))
			Expect(topo.Masters[0].PrivateIP).To(Equal("172.31.0.10"))
			Expect(topo.Slaves).To(HaveLen(2))
			Expect(topo.Slaves[0].SlaveID).To(Equal("slave1"))
			Expect(topo.Slaves[0].InstanceID).To(Equal("i-bbb"))
			Expect(topo.Slaves[1].SlaveID).To(Equal("slave2"))
			Expect(topo.Slaves[1].InstanceID).To(Equal("i-ccc"))

			By("passing every readiness state")
			for _, state := range []readiness.State{readiness.AwaitingHealthCheck, readiness.PostBootDelay, readiness.Ready} {
				Expect(testutil.ToFloat64(metrics.readinessStates.WithLabelValues(string(state)))).To(Equal(1.0))
			}

			By("bootstrapping in fixed order with the derived key name")
			Expect(bootstrapper.StepOrder()).To(Equal([]string{"InstallKubernetes", "InstallDashboard", "InstallDataProcessing"}))
			bootstrapper.AssertCalled(GinkgoT(), "InstallKubernetes", mock.Anything, topo, "alice_key")
			bootstrapper.AssertCalled(GinkgoT(), "InstallDashboard", mock.Anything, topo.Masters[0], "alice_key")

			By("writing the private key")
			_, err = os.Stat(keygen.PrivateKeyPath(settings.KeyDir, "alice_key"))
			Expect(err).NotTo(HaveOccurred())

			By("waiting the settle delay")
			Expect(clock.CountSleeps(kdtest.DefaultTimeouts().SettleDelay)).To(BeNumerically(">=", 1))

			Expect(out.String()).To(ContainSubstring("Instance ids: i-aaa i-bbb i-ccc"))
			Expect(out.String()).To(HaveSuffix("Deployed successfully\n"))

			Expect(testutil.ToFloat64(metrics.runsTotal.WithLabelValues("fake", "success"))).To(Equal(1.0))
			Expect(testutil.ToFloat64(metrics.instancesLaunched.WithLabelValues("slave"))).To(Equal(2.0))
		})
	})

	Context("when a state query fails under the fatal policy", func() {
		BeforeEach(func() {
			calls := 0
			provider.InstancePhasesFunc = func(_ context.Context, ids []string) (map[string]cloud.LifecyclePhase, error) {
				calls++
				if calls == 2 {
					return nil, errors.New("RequestLimitExceeded")
				}
				return cloudtest.AllPhases(cloud.PhasePending, ids...), nil
			}
		})

		It("aborts before the health checks and never builds the topology", func() {
			_, err := newDriver().Run(context.Background())
			Expect(err).To(HaveOccurred())

			var queryErr *provisioning.PollingQueryError
			Expect(errors.As(err, &queryErr)).To(BeTrue())
			Expect(err.Error()).To(HavePrefix("readiness phase failed"))

			Expect(provider.CallCount("InstanceChecks")).To(Equal(0))
			Expect(provider.CallCount("InstanceAddresses")).To(Equal(0))
			Expect(bootstrapper.Calls).To(BeEmpty())
			Expect(testutil.ToFloat64(metrics.readinessQueryErrs.WithLabelValues(string(readiness.AwaitingRunning)))).To(Equal(1.0))
			Expect(testutil.ToFloat64(metrics.runsTotal.WithLabelValues("fake", "error"))).To(Equal(1.0))
			Expect(out.String()).NotTo(ContainSubstring("Deployed successfully"))
		})
	})

	Context("when the key pair already exists", func() {
		BeforeEach(func() {
			provider.ImportKeyPairFunc = func(context.Context, string, []byte, map[string]string) error {
				return errors.New("InvalidKeyPair.Duplicate: The keypair already exists")
			}
		})

		It("logs the failure and continues to the access group", func() {
			_, err := newDriver().Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			calls := provider.Calls()
			Expect(calls[0]).To(Equal("ImportKeyPair"))
			Expect(calls[1]).To(Equal("EnsureAccessGroup"))
			Expect(out.String()).To(ContainSubstring("already exists"))
			Expect(bootstrapper.StepOrder()).To(HaveLen(3))
		})
	})

	Context("with one master and no workers", func() {
		BeforeEach(func() {
			masters, workers = 1, 0
		})

		It("launches only the master and bootstraps a single node", func() {
			topo, err := newDriver().Run(context.Background())
			Expect(err).NotTo(HaveOccurred())

			Expect(provider.CallCount("LaunchInstances")).To(Equal(1))
			Expect(topo.Masters).To(HaveLen(1))
			Expect(topo.Slaves).To(BeEmpty())
			Expect(bootstrapper.StepOrder()).To(HaveLen(3))
		})
	})

	Context("when a bootstrap step fails", func() {
		BeforeEach(func() {
			bootstrapper = kdtest.NewFailingBootstrapper("InstallDashboard", errors.New("apply failed"))
		})

		It("wraps the failure with its step and stops", func() {
			_, err := newDriver().Run(context.Background())

			var bootErr *provisioning.BootstrapError
			Expect(errors.As(err, &bootErr)).To(BeTrue())
			Expect(bootErr.Step).To(Equal(cluster.StepDashboard))
			Expect(err.Error()).To(HavePrefix("cluster phase failed"))
			Expect(bootstrapper.StepOrder()).To(Equal([]string{"InstallKubernetes", "InstallDashboard"}))
		})
	})

	Context("when the run is cancelled", func() {
		It("stops in the first waiting phase", func() {
			ctx, cancel := context.WithCancel(context.Background())
			cancel()

			_, err := newDriver().Run(ctx)
			Expect(err).To(MatchError(context.Canceled))
			Expect(bootstrapper.Calls).To(BeEmpty())
		})
	})

	It("exports the run metrics to a textfile", func() {
		_, err := newDriver().Run(context.Background())
		Expect(err).NotTo(HaveOccurred())

		path := filepath.Join(settings.KeyDir, "kubedeploy.prom")
		Expect(metrics.WriteToTextfile(path)).To(Succeed())

		data, err := os.ReadFile(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(ContainSubstring(`kubedeploy_run_total{provider="fake",result="success"} 1`))
		Expect(string(data)).To(ContainSubstring(`kubedeploy_phase_duration_seconds{phase="readiness",result="success"}`))
	})
})

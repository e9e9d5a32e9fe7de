package bootstrap

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-logr/logr"
	"github.com/stretchr/testify/require"

	"github.com/lessanchos/kubedeploy/internal/bootstrap/k8sclient"
	"github.com/lessanchos/kubedeploy/internal/util/keygen"
)

const testKubeconfig = `apiVersion: v1
kind: Config
clusters:
- name: kubernetes
  cluster:
    server: https://172.31.0.10:6443
contexts:
- name: kubernetes-admin@kubernetes
  context:
    cluster: kubernetes
    user: kubernetes-admin
current-context: kubernetes-admin@kubernetes
users:
- name: kubernetes-admin
  user:
    token: abc
`

const testJoin = "kubeadm join 172.31.0.10:6443 --token abcdef.0123456789abcdef --discovery-token-ca-cert-hash sha256:1234"

// command is one call observed by the fake fleet.
type command struct {
	host  string
	cmd   string
	input string
}

// fakeFleet hands out remotes that record every command and answer from a
// prefix table.
type fakeFleet struct {
	mu        sync.Mutex
	commands  []command
	responses map[string]string
	failures  map[string]error
	keys      [][]byte
}

func newFakeFleet() *fakeFleet {
	return &fakeFleet{
		responses: map[string]string{
			joinTokenCommand:       testJoin + "\n",
			uploadCertsCommand:     "0123456789abcdef0123456789abcdef0123456789abcdef0123456789abcdef\n",
			fetchKubeconfigCommand: testKubeconfig,
		},
		failures: map[string]error{},
	}
}

func (f *fakeFleet) factory(host string, key []byte) (Remote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.keys = append(f.keys, key)
	return &fakeRemote{fleet: f, host: host}, nil
}

// failOn makes every command on host containing substr fail.
func (f *fakeFleet) failOn(host, substr string, err error) {
	f.failures[host+"|"+substr] = err
}

func (f *fakeFleet) record(c command) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.commands = append(f.commands, c)
	for key, err := range f.failures {
		host, substr, _ := strings.Cut(key, "|")
		if host == c.host && strings.Contains(c.cmd+c.input, substr) {
			return "", err
		}
	}
	return f.responses[c.cmd], nil
}

// on returns the commands run on host, in order.
func (f *fakeFleet) on(host string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.commands {
		if c.host == host {
			out = append(out, c.cmd)
		}
	}
	return out
}

// inputs returns the stdin streamed to host, in command order.
func (f *fakeFleet) inputs(host string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.commands {
		if c.host == host {
			out = append(out, c.input)
		}
	}
	return out
}

// matching returns every command containing substr, as "host: cmd".
func (f *fakeFleet) matching(substr string) []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []string
	for _, c := range f.commands {
		if strings.Contains(c.cmd, substr) || strings.Contains(c.input, substr) {
			out = append(out, c.host+": "+c.cmd)
		}
	}
	return out
}

type fakeRemote struct {
	fleet *fakeFleet
	host  string
}

func (r *fakeRemote) Host() string { return r.host }

func (r *fakeRemote) Execute(_ context.Context, cmd string) (string, error) {
	return r.fleet.record(command{host: r.host, cmd: cmd})
}

func (r *fakeRemote) ExecuteWithInput(_ context.Context, cmd string, input []byte) (string, error) {
	return r.fleet.record(command{host: r.host, cmd: cmd, input: string(input)})
}

// fakeClient records the Kubernetes calls of an install.
type fakeClient struct {
	kubeconfigs [][]byte
	applied     []string
	waitedFor   []int
	labeled     map[string]map[string]string
	waitErr     error
	applyErr    error
}

func newFakeClient() *fakeClient {
	return &fakeClient{labeled: map[string]map[string]string{}}
}

func (c *fakeClient) factory(kubeconfig []byte) (k8sclient.Client, error) {
	c.kubeconfigs = append(c.kubeconfigs, kubeconfig)
	return c, nil
}

func (c *fakeClient) ApplyManifests(_ context.Context, manifests []byte, fieldManager string) error {
	if fieldManager != FieldManager {
		return fmt.Errorf("unexpected field manager %q", fieldManager)
	}
	c.applied = append(c.applied, string(manifests))
	return c.applyErr
}

func (c *fakeClient) WaitForNodesReady(_ context.Context, count int, _ time.Duration) error {
	c.waitedFor = append(c.waitedFor, count)
	return c.waitErr
}

func (c *fakeClient) LabelNode(_ context.Context, name string, labels map[string]string) error {
	c.labeled[name] = labels
	return nil
}

// newTestInstaller writes a key pair for keyName into a temp dir and wires
// the fakes into an Installer.
func newTestInstaller(t *testing.T, fleet *fakeFleet, client *fakeClient, keyName string) (*Installer, Config) {
	t.Helper()

	dir := t.TempDir()
	kp, err := keygen.GenerateRSAKeyPair(1024)
	require.NoError(t, err)
	require.NoError(t, kp.WritePrivateKey(keygen.PrivateKeyPath(dir, keyName)))

	cfg := Config{
		SSHUser:            "ubuntu",
		KeyDir:             dir,
		KubeconfigPath:     dir + "/kubeconfig",
		KubernetesVersion:  DefaultKubernetesVersion,
		PodNetworkCIDR:     DefaultPodNetworkCIDR,
		FlannelManifestURL: DefaultFlannelManifest,
		NodeReadyTimeout:   time.Minute,
		SparkVersion:       DefaultSparkVersion,
		SparkImage:         DefaultSparkImage,
	}

	inst := NewInstaller(cfg,
		WithLogger(logr.Discard()),
		WithRemoteFactory(fleet.factory),
		WithClientFactory(client.factory),
	)
	return inst, cfg
}

func readFile(t *testing.T, path string) []byte {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return data
}

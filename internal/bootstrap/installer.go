package bootstrap

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/go-logr/logr/funcr"

	"github.com/lessanchos/kubedeploy/internal/bootstrap/k8sclient"
	"github.com/lessanchos/kubedeploy/internal/config"
	"github.com/lessanchos/kubedeploy/internal/platform/ssh"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
	"github.com/lessanchos/kubedeploy/internal/util/keygen"
	"github.com/lessanchos/kubedeploy/internal/util/naming"
)

// Defaults of a bootstrap run.
const (
	DefaultKubernetesVersion = "v1.31"
	DefaultPodNetworkCIDR    = "10.244.0.0/16"
	DefaultFlannelManifest   = "https://github.com/flannel-io/flannel/releases/latest/download/kube-flannel.yml"
	DefaultSparkVersion      = "3.5.1"
	DefaultSparkImage        = "apache/spark:3.5.1"

	// FieldManager identifies kubedeploy in Server-Side Apply ownership.
	FieldManager = "kubedeploy"
)

// Config holds the settings of the remote bootstrap.
type Config struct {
	SSHUser string
	KeyDir  string

	// KubeconfigPath is where the admin kubeconfig is written locally.
	KubeconfigPath string

	KubernetesVersion  string
	PodNetworkCIDR     string
	FlannelManifestURL string
	NodeReadyTimeout   time.Duration

	SSHMaxRetries int
	SSHRetryDelay time.Duration

	SparkVersion string
	SparkImage   string
}

// ConfigFrom derives the bootstrap configuration from settings and timeouts.
func ConfigFrom(s *config.Settings, t *config.Timeouts) Config {
	return Config{
		SSHUser:            s.SSHUser,
		KeyDir:             s.KeyDir,
		KubeconfigPath:     naming.KubeconfigFile,
		KubernetesVersion:  DefaultKubernetesVersion,
		PodNetworkCIDR:     DefaultPodNetworkCIDR,
		FlannelManifestURL: DefaultFlannelManifest,
		NodeReadyTimeout:   t.NodeReady,
		SSHMaxRetries:      t.SSHMaxRetries,
		SSHRetryDelay:      t.SSHRetryDelay,
		SparkVersion:       DefaultSparkVersion,
		SparkImage:         DefaultSparkImage,
	}
}

// Remote runs commands on a single node.
type Remote interface {
	Host() string
	Execute(ctx context.Context, command string) (string, error)
	ExecuteWithInput(ctx context.Context, command string, input []byte) (string, error)
}

// RemoteFactory opens a Remote for host, authenticating with privateKey.
type RemoteFactory func(host string, privateKey []byte) (Remote, error)

// ClientFactory builds a Kubernetes client from kubeconfig bytes.
type ClientFactory func(kubeconfig []byte) (k8sclient.Client, error)

// Installer implements provisioning.Bootstrapper.
type Installer struct {
	cfg       Config
	log       logr.Logger
	newRemote RemoteFactory
	newClient ClientFactory
}

var _ provisioning.Bootstrapper = (*Installer)(nil)

// Option configures an Installer.
type Option func(*Installer)

// WithLogger replaces the default logger.
func WithLogger(l logr.Logger) Option {
	return func(i *Installer) {
		i.log = l
	}
}

// WithRemoteFactory replaces the SSH connection factory.
func WithRemoteFactory(f RemoteFactory) Option {
	return func(i *Installer) {
		i.newRemote = f
	}
}

// WithClientFactory replaces the Kubernetes client factory.
func WithClientFactory(f ClientFactory) Option {
	return func(i *Installer) {
		i.newClient = f
	}
}

// NewInstaller creates an Installer. Without options it connects over SSH
// and logs through the standard logger.
func NewInstaller(cfg Config, opts ...Option) *Installer {
	i := &Installer{
		cfg:       cfg,
		log:       NewLogger(),
		newClient: k8sclient.NewFromKubeconfig,
	}
	i.newRemote = i.sshRemote
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// NewLogger returns a logr.Logger writing onto the standard logger.
func NewLogger() logr.Logger {
	return funcr.New(func(prefix, args string) {
		if prefix != "" {
			log.Printf("%s: %s", prefix, args)
			return
		}
		log.Print(args)
	}, funcr.Options{}).WithName("bootstrap")
}

func (i *Installer) sshRemote(host string, privateKey []byte) (Remote, error) {
	client, err := ssh.NewClient(&ssh.Config{
		Host:       host,
		User:       i.cfg.SSHUser,
		PrivateKey: privateKey,
		MaxRetries: i.cfg.SSHMaxRetries,
		RetryDelay: i.cfg.SSHRetryDelay,
		OnDialRetry: func(attempt int, err error) {
			i.log.V(1).Info("ssh dial failed, retrying", "host", host, "attempt", attempt, "error", err.Error())
		},
	})
	if err != nil {
		return nil, err
	}
	return client, nil
}

// connector opens remotes with the private key of one key pair.
type connector struct {
	installer *Installer
	key       []byte
	remotes   map[string]Remote
}

func (i *Installer) connector(keyName string) (*connector, error) {
	path := keygen.PrivateKeyPath(i.cfg.KeyDir, keyName)
	// #nosec G304
	key, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key %s: %w", path, err)
	}
	return &connector{installer: i, key: key, remotes: make(map[string]Remote)}, nil
}

func (c *connector) remote(host string) (Remote, error) {
	if r, ok := c.remotes[host]; ok {
		return r, nil
	}
	r, err := c.installer.newRemote(host, c.key)
	if err != nil {
		return nil, fmt.Errorf("failed to open remote %s: %w", host, err)
	}
	c.remotes[host] = r
	return r, nil
}

// run executes command on host, logging the step.
func (c *connector) run(ctx context.Context, step, host, command string) (string, error) {
	r, err := c.remote(host)
	if err != nil {
		return "", err
	}
	c.installer.log.Info("running step", "step", step, "node", host)
	out, err := r.Execute(ctx, command)
	if err != nil {
		return out, fmt.Errorf("%s on %s: %w", step, host, err)
	}
	return out, nil
}

// runScript streams script into a root shell on host.
func (c *connector) runScript(ctx context.Context, step, host, script string) error {
	r, err := c.remote(host)
	if err != nil {
		return err
	}
	c.installer.log.Info("running step", "step", step, "node", host)
	if _, err := r.ExecuteWithInput(ctx, "sudo bash -s", []byte(script)); err != nil {
		return fmt.Errorf("%s on %s: %w", step, host, err)
	}
	return nil
}

// clusterClient fetches the admin kubeconfig from master and returns a
// client that talks to its public address.
func (c *connector) clusterClient(ctx context.Context, master provisioning.MasterRecord) (k8sclient.Client, []byte, error) {
	raw, err := c.run(ctx, "fetch kubeconfig", master.PublicIP, fetchKubeconfigCommand)
	if err != nil {
		return nil, nil, err
	}

	kubeconfig, err := RewriteServer([]byte(raw), master.PublicIP)
	if err != nil {
		return nil, nil, err
	}

	client, err := c.installer.newClient(kubeconfig)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to create kubernetes client: %w", err)
	}
	return client, kubeconfig, nil
}

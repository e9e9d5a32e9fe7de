package ssh

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"strconv"
	"time"

	"golang.org/x/crypto/ssh"

	"github.com/lessanchos/kubedeploy/internal/util/retry"
)

const (
	defaultPort        = 22
	defaultDialTimeout = 10 * time.Second
	defaultMaxRetries  = 30
	defaultRetryDelay  = 5 * time.Second
	defaultMaxDelay    = 10 * time.Second
)

// Config holds SSH client configuration.
type Config struct {
	Host       string
	Port       int
	User       string
	PrivateKey []byte

	// DialTimeout is the timeout for establishing the TCP connection.
	// If zero, defaultDialTimeout is used.
	DialTimeout time.Duration

	// MaxRetries is the maximum number of connection retry attempts.
	// If zero, defaultMaxRetries is used.
	MaxRetries int

	// RetryDelay is the initial delay between retry attempts.
	// If zero, defaultRetryDelay is used.
	RetryDelay time.Duration

	// HostKeyCallback handles host key verification.
	// If nil, ssh.InsecureIgnoreHostKey() is used.
	HostKeyCallback ssh.HostKeyCallback

	// OnDialRetry, when set, is called after each failed connection attempt.
	OnDialRetry func(attempt int, err error)
}

// Client executes commands on a remote server via SSH.
// It parses the private key once during construction and
// creates connections on-demand per Execute call.
type Client struct {
	config *Config
	signer ssh.Signer
}

// NewClient creates a new SSH client and validates the private key.
func NewClient(cfg *Config) (*Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	if cfg.Host == "" {
		return nil, fmt.Errorf("config host cannot be empty")
	}
	if cfg.User == "" {
		return nil, fmt.Errorf("config user cannot be empty")
	}
	if len(cfg.PrivateKey) == 0 {
		return nil, fmt.Errorf("config private key cannot be empty")
	}

	// Copy config to avoid mutating caller's struct
	configCopy := *cfg

	if configCopy.Port == 0 {
		configCopy.Port = defaultPort
	}
	if configCopy.DialTimeout == 0 {
		configCopy.DialTimeout = defaultDialTimeout
	}
	if configCopy.MaxRetries == 0 {
		configCopy.MaxRetries = defaultMaxRetries
	}
	if configCopy.RetryDelay == 0 {
		configCopy.RetryDelay = defaultRetryDelay
	}
	if configCopy.HostKeyCallback == nil {
		configCopy.HostKeyCallback = ssh.InsecureIgnoreHostKey() //nolint:gosec // Default for ephemeral infrastructure
	}

	signer, err := ssh.ParsePrivateKey(configCopy.PrivateKey)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key: %w", err)
	}

	return &Client{
		config: &configCopy,
		signer: signer,
	}, nil
}

// Host returns the address the client connects to.
func (c *Client) Host() string {
	return c.config.Host
}

// Execute runs a command on the remote host with retry logic.
// Returns command output (stdout+stderr) and any execution error.
func (c *Client) Execute(ctx context.Context, command string) (string, error) {
	return c.ExecuteWithInput(ctx, command, nil)
}

// ExecuteWithInput runs a command with input streamed to its stdin.
// It is used to write files on the remote host, e.g. "sudo tee /path".
func (c *Client) ExecuteWithInput(ctx context.Context, command string, input []byte) (string, error) {
	client, err := c.connect(ctx)
	if err != nil {
		return "", err
	}
	defer func() { _ = client.Close() }()

	return c.runCommand(ctx, client, command, input)
}

// connect establishes SSH connection with retry logic.
func (c *Client) connect(ctx context.Context) (*ssh.Client, error) {
	config := &ssh.ClientConfig{
		User: c.config.User,
		Auth: []ssh.AuthMethod{
			ssh.PublicKeys(c.signer),
		},
		HostKeyCallback: c.config.HostKeyCallback,
		Timeout:         c.config.DialTimeout,
	}

	addr := net.JoinHostPort(c.config.Host, strconv.Itoa(c.config.Port))
	var client *ssh.Client

	err := retry.WithExponentialBackoff(ctx, func() error {
		var dialErr error
		client, dialErr = c.dial(ctx, addr, config)
		return dialErr
	},
		retry.WithMaxRetries(c.config.MaxRetries),
		retry.WithInitialDelay(c.config.RetryDelay),
		retry.WithMaxDelay(defaultMaxDelay),
		retry.WithOnRetry(func(attempt int, err error, _ time.Duration) {
			if c.config.OnDialRetry != nil {
				c.config.OnDialRetry(attempt, err)
			}
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to establish SSH connection to %s: %w", addr, err)
	}

	return client, nil
}

// dial opens the TCP connection under ctx and performs the SSH handshake.
func (c *Client) dial(ctx context.Context, addr string, config *ssh.ClientConfig) (*ssh.Client, error) {
	if err := ctx.Err(); err != nil {
		return nil, retry.Fatal(err)
	}

	dialer := net.Dialer{Timeout: c.config.DialTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return nil, err
	}

	_ = conn.SetDeadline(time.Now().Add(c.config.DialTimeout))
	sshConn, chans, reqs, err := ssh.NewClientConn(conn, addr, config)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	_ = conn.SetDeadline(time.Time{})

	return ssh.NewClient(sshConn, chans, reqs), nil
}

// runCommand executes a command on an established SSH session.
// The session is closed when ctx is cancelled.
func (c *Client) runCommand(ctx context.Context, client *ssh.Client, command string, input []byte) (string, error) {
	session, err := client.NewSession()
	if err != nil {
		return "", fmt.Errorf("failed to create SSH session on %s: %w", c.config.Host, err)
	}
	defer func() { _ = session.Close() }()

	if input != nil {
		session.Stdin = bytes.NewReader(input)
	}

	stop := context.AfterFunc(ctx, func() { _ = session.Close() })
	defer stop()

	output, err := session.CombinedOutput(command)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return string(output), fmt.Errorf("command on %s interrupted: %w", c.config.Host, ctxErr)
		}
		return string(output), fmt.Errorf("command failed on %s: %w\nCommand: %s\nOutput: %s",
			c.config.Host, err, command, string(output))
	}

	return string(output), nil
}

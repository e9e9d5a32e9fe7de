package hcloud

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
)

// Default retry settings for transient API errors.
const (
	defaultMaxRetries   = 5
	defaultInitialDelay = 2 * time.Second

	// privateIPRange is the address space of the per-group private network.
	privateIPRange = "10.0.0.0/16"
	// privateSubnetRange is the cloud subnet servers are attached to.
	privateSubnetRange = "10.0.1.0/24"
)

// Config holds the connection settings of the Hetzner provider.
type Config struct {
	Token    string
	Location string
}

// Provider implements cloud.Provider using the Hetzner Cloud API.
type Provider struct {
	client       *hcloud.Client
	httpClient   *http.Client
	location     string
	maxRetries   int
	initialDelay time.Duration
}

var _ cloud.Provider = (*Provider)(nil)

// ClientOption configures a Provider.
type ClientOption func(*Provider)

// WithHTTPClient sets a custom HTTP client for API requests.
func WithHTTPClient(httpClient *http.Client) ClientOption {
	return func(p *Provider) {
		p.httpClient = httpClient
	}
}

// WithHCloudClient sets a pre-built hcloud client (useful for testing).
func WithHCloudClient(client *hcloud.Client) ClientOption {
	return func(p *Provider) {
		p.client = client
	}
}

// WithRetry overrides the backoff applied to transient API errors.
func WithRetry(maxRetries int, initialDelay time.Duration) ClientOption {
	return func(p *Provider) {
		p.maxRetries = maxRetries
		p.initialDelay = initialDelay
	}
}

// NewProvider creates a Hetzner provider for the given token and location.
func NewProvider(cfg Config, opts ...ClientOption) *Provider {
	p := &Provider{
		location:     cfg.Location,
		maxRetries:   defaultMaxRetries,
		initialDelay: defaultInitialDelay,
	}
	for _, opt := range opts {
		opt(p)
	}

	if p.client == nil {
		clientOpts := []hcloud.ClientOption{
			hcloud.WithToken(cfg.Token),
			hcloud.WithApplication("kubedeploy", "1"),
		}
		if p.httpClient != nil {
			clientOpts = append(clientOpts, hcloud.WithHTTPClient(p.httpClient))
		}
		p.client = hcloud.NewClient(clientOpts...)
	}

	return p
}

// Name implements cloud.Provider.
func (p *Provider) Name() string { return "hcloud" }

// groupHandle encodes the firewall and network that make up an access group.
func groupHandle(firewallID, networkID int64) string {
	return fmt.Sprintf("%d/%d", firewallID, networkID)
}

// parseGroupHandle reverses groupHandle.
func parseGroupHandle(handle string) (firewallID, networkID int64, err error) {
	fw, nw, ok := strings.Cut(handle, "/")
	if !ok {
		return 0, 0, fmt.Errorf("invalid access group handle %q", handle)
	}
	if firewallID, err = strconv.ParseInt(fw, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid firewall id in %q: %w", handle, err)
	}
	if networkID, err = strconv.ParseInt(nw, 10, 64); err != nil {
		return 0, 0, fmt.Errorf("invalid network id in %q: %w", handle, err)
	}
	return firewallID, networkID, nil
}

func parseServerID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid server id %q: %w", id, err)
	}
	return n, nil
}

package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Provider names accepted in Settings.Provider.
const (
	ProviderAWS    = "aws"
	ProviderHCloud = "hcloud"
)

// Query-error policies of the readiness gate.
const (
	QueryErrorPolicyFatal = "fatal"
	QueryErrorPolicyRetry = "retry"
)

// DefaultFile is the settings file read when no path is given.
const DefaultFile = "kubedeploy.yaml"

// Default values applied by ApplyDefaults.
const (
	DefaultAWSRegion                = "eu-west-3"
	DefaultAWSInstanceType          = "t2.medium"
	DefaultAWSImage                 = "ami-0c6ebbd55ab05f070"
	DefaultHCloudLocation           = "nbg1"
	DefaultHCloudServerType         = "cx22"
	DefaultHCloudImage              = "ubuntu-24.04"
	DefaultSecurityGroupName        = "lessanchos"
	DefaultSecurityGroupDescription = "Security group for the kubedeploy Kubernetes cluster"
	DefaultMaxQueryErrors           = 5
)

// Settings holds provider credentials and instance defaults.
type Settings struct {
	Provider string `yaml:"provider"`

	// AWS
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`

	// Hetzner Cloud
	HCloudToken string `yaml:"hcloud_token"`
	Location    string `yaml:"location"`

	UserName           string `yaml:"username"`
	Image              string `yaml:"image"`
	InstanceType       string `yaml:"instance_type"`
	MasterInstanceType string `yaml:"master_instance_type"`
	SSHUser            string `yaml:"ssh_user"`
	KeyDir             string `yaml:"key_dir"`

	SecurityGroup SecurityGroupSettings `yaml:"security_group"`
	Readiness     ReadinessSettings     `yaml:"readiness"`
}

// SecurityGroupSettings names the network-access group of a run.
type SecurityGroupSettings struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

// ReadinessSettings selects how the readiness gate reacts to failed queries.
type ReadinessSettings struct {
	QueryErrorPolicy string `yaml:"query_error_policy"`
	// MaxQueryErrors bounds consecutive failures under the retry policy. 0 means unlimited.
	MaxQueryErrors *int `yaml:"max_query_errors"`
}

// MaxConsecutiveQueryErrors returns the configured bound or its default.
func (r ReadinessSettings) MaxConsecutiveQueryErrors() int {
	if r.MaxQueryErrors == nil {
		return DefaultMaxQueryErrors
	}
	return *r.MaxQueryErrors
}

// Override adjusts decoded settings before defaults are applied.
type Override func(*Settings)

// WithProvider selects the provider regardless of the file's value.
func WithProvider(provider string) Override {
	return func(s *Settings) {
		if provider != "" {
			s.Provider = provider
		}
	}
}

// LoadFile reads and parses the settings from a YAML file, applies
// defaults and environment overrides, then validates the result.
func LoadFile(path string, overrides ...Override) (*Settings, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data, overrides...)
}

// Parse decodes settings from YAML bytes, applies defaults and
// environment overrides, then validates the result.
func Parse(data []byte, overrides ...Override) (*Settings, error) {
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("failed to unmarshal yaml: %w", err)
	}

	s.ApplyEnv()
	for _, o := range overrides {
		o(&s)
	}
	s.ApplyDefaults()

	if err := s.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return &s, nil
}

// ApplyEnv overrides settings from the environment.
func (s *Settings) ApplyEnv() {
	if v := os.Getenv("AWS_REGION"); v != "" {
		s.Region = v
	}
	if v := os.Getenv("HCLOUD_TOKEN"); v != "" {
		s.HCloudToken = v
	}
}

// ApplyDefaults fills empty fields with provider-specific defaults.
func (s *Settings) ApplyDefaults() {
	if s.Provider == "" {
		s.Provider = ProviderAWS
	}

	switch s.Provider {
	case ProviderAWS:
		setDefault(&s.Region, DefaultAWSRegion)
		setDefault(&s.InstanceType, DefaultAWSInstanceType)
		setDefault(&s.Image, DefaultAWSImage)
		setDefault(&s.SSHUser, "ubuntu")
	case ProviderHCloud:
		setDefault(&s.Location, DefaultHCloudLocation)
		setDefault(&s.InstanceType, DefaultHCloudServerType)
		setDefault(&s.Image, DefaultHCloudImage)
		setDefault(&s.SSHUser, "root")
	}

	setDefault(&s.MasterInstanceType, s.InstanceType)
	setDefault(&s.KeyDir, ".")
	setDefault(&s.SecurityGroup.Name, DefaultSecurityGroupName)
	setDefault(&s.SecurityGroup.Description, DefaultSecurityGroupDescription)
	setDefault(&s.Readiness.QueryErrorPolicy, QueryErrorPolicyFatal)
}

func setDefault(field *string, value string) {
	if *field == "" {
		*field = value
	}
}

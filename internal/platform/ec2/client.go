package ec2

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
)

const (
	defaultTagRetries    = 5
	defaultTagRetryDelay = time.Second
)

// ec2API is the subset of the EC2 client used by Provider.
type ec2API interface {
	ImportKeyPair(ctx context.Context, in *ec2.ImportKeyPairInput, optFns ...func(*ec2.Options)) (*ec2.ImportKeyPairOutput, error)
	CreateSecurityGroup(ctx context.Context, in *ec2.CreateSecurityGroupInput, optFns ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error)
	DescribeSecurityGroups(ctx context.Context, in *ec2.DescribeSecurityGroupsInput, optFns ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error)
	AuthorizeSecurityGroupIngress(ctx context.Context, in *ec2.AuthorizeSecurityGroupIngressInput, optFns ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	CreateTags(ctx context.Context, in *ec2.CreateTagsInput, optFns ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error)
	RunInstances(ctx context.Context, in *ec2.RunInstancesInput, optFns ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error)
	DescribeInstances(ctx context.Context, in *ec2.DescribeInstancesInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error)
	DescribeInstanceStatus(ctx context.Context, in *ec2.DescribeInstanceStatusInput, optFns ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error)
}

// Config holds the connection settings of the EC2 provider.
type Config struct {
	Region    string
	AccessKey string
	SecretKey string
}

// Provider implements cloud.Provider on Amazon EC2.
type Provider struct {
	api ec2API

	tagRetries    int
	tagRetryDelay time.Duration
}

var _ cloud.Provider = (*Provider)(nil)

// Option configures a Provider.
type Option func(*Provider)

// WithAPI sets a custom EC2 API implementation (useful for testing).
func WithAPI(api ec2API) Option {
	return func(p *Provider) {
		p.api = api
	}
}

// WithTagRetry sets how often and how soon a Name tag is retried while a new
// instance is not yet visible to the tagging API.
func WithTagRetry(maxRetries int, initialDelay time.Duration) Option {
	return func(p *Provider) {
		p.tagRetries = maxRetries
		p.tagRetryDelay = initialDelay
	}
}

// NewProvider creates an EC2 provider. Static credentials are used when
// both keys are set, otherwise the default AWS credential chain applies.
func NewProvider(ctx context.Context, cfg Config, opts ...Option) (*Provider, error) {
	p := &Provider{
		tagRetries:    defaultTagRetries,
		tagRetryDelay: defaultTagRetryDelay,
	}
	for _, opt := range opts {
		opt(p)
	}
	if p.api != nil {
		return p, nil
	}

	loadOpts := []func(*awsconfig.LoadOptions) error{
		awsconfig.WithRegion(cfg.Region),
	}
	if cfg.AccessKey != "" && cfg.SecretKey != "" {
		loadOpts = append(loadOpts, awsconfig.WithCredentialsProvider(
			credentials.NewStaticCredentialsProvider(cfg.AccessKey, cfg.SecretKey, ""),
		))
	}

	awsCfg, err := awsconfig.LoadDefaultConfig(ctx, loadOpts...)
	if err != nil {
		return nil, fmt.Errorf("failed to load AWS config: %w", err)
	}

	p.api = ec2.NewFromConfig(awsCfg)
	return p, nil
}

// Name implements cloud.Provider.
func (p *Provider) Name() string { return "aws" }

func tagsFrom(labels map[string]string) []ec2types.Tag {
	tags := make([]ec2types.Tag, 0, len(labels))
	for _, k := range slices.Sorted(maps.Keys(labels)) {
		tags = append(tags, ec2types.Tag{Key: aws.String(k), Value: aws.String(labels[k])})
	}
	return tags
}

func tagSpec(resource ec2types.ResourceType, labels map[string]string) []ec2types.TagSpecification {
	if len(labels) == 0 {
		return nil
	}
	return []ec2types.TagSpecification{{ResourceType: resource, Tags: tagsFrom(labels)}}
}

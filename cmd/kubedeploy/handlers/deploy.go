// Package handlers implements the business logic for CLI commands.
//
// This package contains handler functions that are called by command definitions
// in the commands package. Handlers are framework-agnostic and can be tested
// independently of the CLI framework.
package handlers

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/mattn/go-isatty"

	"github.com/lessanchos/kubedeploy/internal/bootstrap"
	"github.com/lessanchos/kubedeploy/internal/config"
	"github.com/lessanchos/kubedeploy/internal/orchestration"
	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/platform/ec2"
	"github.com/lessanchos/kubedeploy/internal/platform/hcloud"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
)

// DeployOptions carries the flags of the deploy command.
type DeployOptions struct {
	ConfigPath  string
	UserName    string
	Masters     int
	Workers     int
	Provider    string
	MetricsFile string

	// Out receives the parameter echo and the topology.
	Out io.Writer
}

// Runner interface for testing - matches orchestration.Driver.
type Runner interface {
	Run(ctx context.Context) (provisioning.ClusterTopology, error)
}

// Factory function variables - can be replaced in tests for dependency injection.
var (
	// loadSettings loads the settings file.
	loadSettings = config.LoadFile

	// loadTimeouts reads the timing configuration from the environment.
	loadTimeouts = config.LoadTimeouts

	// newProvider creates the cloud backend selected in the settings.
	newProvider = defaultProvider

	// newBootstrapper creates the remote installer.
	newBootstrapper = func(cfg bootstrap.Config) provisioning.Bootstrapper {
		return bootstrap.NewInstaller(cfg)
	}

	// newRunner creates the run driver.
	newRunner = func(req config.Request, s *config.Settings, p cloud.Provider, b provisioning.Bootstrapper, opts ...orchestration.Option) Runner {
		return orchestration.NewDriver(req, s, p, b, opts...)
	}

	// isTerminal reports whether stdout is an interactive terminal.
	isTerminal = func() bool {
		return isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd())
	}
)

// Deploy provisions the instances of a cluster and bootstraps Kubernetes on
// them.
//
// This function:
//  1. Loads the settings file, applying the --provider override
//  2. Resolves and validates the run parameters, echoing them
//  3. Creates the cloud backend and the remote installer
//  4. Runs the provisioning phases through the orchestration driver
//  5. Writes the run metrics when --metrics-file is set, even on failure
//  6. Prints the cluster topology
func Deploy(ctx context.Context, opts DeployOptions) error {
	out := opts.Out
	if out == nil {
		out = os.Stdout
	}

	settings, err := loadSettings(opts.ConfigPath, config.WithProvider(opts.Provider))
	if err != nil {
		return fmt.Errorf("failed to load settings: %w", err)
	}

	userName := opts.UserName
	if userName == "" {
		userName = settings.UserName
	}

	req, err := config.NewRequest(userName, opts.Masters, opts.Workers, settings.SecurityGroup)
	if err != nil {
		return fmt.Errorf("invalid deploy parameters: %w", err)
	}

	printParameters(out, req, settings)

	provider, err := newProvider(ctx, settings)
	if err != nil {
		return fmt.Errorf("failed to initialize %s provider: %w", settings.Provider, err)
	}

	timeouts := loadTimeouts()
	metrics := orchestration.NewMetrics()
	runner := newRunner(req, settings, provider,
		newBootstrapper(bootstrap.ConfigFrom(settings, timeouts)),
		orchestration.WithTimeouts(timeouts),
		orchestration.WithMetrics(metrics),
	)

	topology, runErr := runner.Run(ctx)

	if opts.MetricsFile != "" {
		if err := metrics.WriteToTextfile(opts.MetricsFile); err != nil {
			log.Printf("Warning: %v", err)
		}
	}

	if runErr != nil {
		return fmt.Errorf("deployment failed: %w", runErr)
	}

	fmt.Fprint(out, renderTopology(topology, isTerminal()))
	return nil
}

func defaultProvider(ctx context.Context, s *config.Settings) (cloud.Provider, error) {
	switch s.Provider {
	case config.ProviderAWS:
		p, err := ec2.NewProvider(ctx, ec2.Config{
			Region:    s.Region,
			AccessKey: s.AccessKey,
			SecretKey: s.SecretKey,
		})
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.ProviderHCloud:
		return hcloud.NewProvider(hcloud.Config{
			Token:    s.HCloudToken,
			Location: s.Location,
		}), nil
	default:
		return nil, fmt.Errorf("unsupported provider %q", s.Provider)
	}
}

// printParameters echoes the resolved run parameters.
func printParameters(out io.Writer, req config.Request, s *config.Settings) {
	fmt.Fprintln(out, "Deploying cluster with the following parameters:")
	fmt.Fprintf(out, "  user:           %s\n", req.UserName)
	fmt.Fprintf(out, "  masters:        %d\n", req.MasterCount)
	fmt.Fprintf(out, "  workers:        %d\n", req.WorkerCount)
	fmt.Fprintf(out, "  provider:       %s\n", s.Provider)
	switch s.Provider {
	case config.ProviderAWS:
		fmt.Fprintf(out, "  region:         %s\n", s.Region)
	case config.ProviderHCloud:
		fmt.Fprintf(out, "  location:       %s\n", s.Location)
	}
	fmt.Fprintf(out, "  image:          %s\n", s.Image)
	fmt.Fprintf(out, "  instance type:  %s (masters: %s)\n", s.InstanceType, s.MasterInstanceType)
	fmt.Fprintf(out, "  key pair:       %s\n", req.KeyName)
	fmt.Fprintf(out, "  security group: %s\n", req.SecurityGroupName)
}

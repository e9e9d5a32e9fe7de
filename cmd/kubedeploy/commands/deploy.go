package commands

import (
	"github.com/spf13/cobra"

	"github.com/lessanchos/kubedeploy/cmd/kubedeploy/handlers"
	"github.com/lessanchos/kubedeploy/internal/config"
)

// Deploy returns the command that provisions and bootstraps a cluster.
//
// Optional flags:
//
//	--user, -u: Owner of the run (default: username from the config file)
//	--masters, -m: Number of control-plane instances (default: 1)
//	--workers, -w: Number of worker instances (default: 2, 0 allowed)
//	--config, -c: Path to the settings file (default: kubedeploy.yaml)
//	--provider: aws or hcloud, overriding the settings file
//	--metrics-file: Write run metrics in Prometheus text format to this path
func Deploy() *cobra.Command {
	opts := handlers.DeployOptions{}

	cmd := &cobra.Command{
		Use:   "deploy",
		Short: "Create the instances and deploy the cluster",
		Long: `Create the cloud instances of a Kubernetes cluster and deploy it.

The run imports a fresh key pair, ensures the network-access group, launches
the masters and slaves, waits until every instance is running and healthy,
then installs Kubernetes, the kube-opex-analytics dashboard and Spark over SSH.

Nothing is cleaned up when a step fails.

Examples:
  # One master, two workers, owner taken from kubedeploy.yaml
  kubedeploy deploy

  # Three masters and five workers for bob on Hetzner Cloud
  kubedeploy deploy -u bob -m 3 -w 5 --provider hcloud

  # Single-node cluster
  kubedeploy deploy -w 0`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			opts.Out = cmd.OutOrStdout()
			return handlers.Deploy(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVarP(&opts.UserName, "user", "u", "", "User owning the cluster (default: username from the config file)")
	cmd.Flags().IntVarP(&opts.Masters, "masters", "m", config.DefaultMasterCount, "Number of master instances")
	cmd.Flags().IntVarP(&opts.Workers, "workers", "w", config.DefaultWorkerCount, "Number of worker instances")
	cmd.Flags().StringVarP(&opts.ConfigPath, "config", "c", config.DefaultFile, "Path to the settings file")
	cmd.Flags().StringVar(&opts.Provider, "provider", "", "Cloud provider: aws or hcloud (default: from the config file)")
	cmd.Flags().StringVar(&opts.MetricsFile, "metrics-file", "", "Write run metrics in Prometheus text format to this file")

	return cmd
}

// Package main is the entry point for the kubedeploy CLI.
//
// kubedeploy provisions a set of cloud instances (AWS EC2 or Hetzner
// Cloud), waits until they are healthy, and bootstraps a kubeadm
// Kubernetes cluster with the kube-opex-analytics dashboard and Spark on
// top.
//
// Commands: deploy, version.
//
// For detailed usage information, run:
//
//	kubedeploy --help
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/lessanchos/kubedeploy/cmd/kubedeploy/commands"
)

// Version information set at build time.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	commands.SetVersionInfo(version, commit, date)
	err := commands.Root().ExecuteContext(ctx)
	stop()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

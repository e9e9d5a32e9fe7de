package bootstrap

import (
	"fmt"
	"net"
	"os"
	"strconv"

	"k8s.io/client-go/tools/clientcmd"

	"github.com/lessanchos/kubedeploy/internal/util/netutil"
)

// RewriteServer points every cluster in kubeconfig at host on the API port.
func RewriteServer(kubeconfig []byte, host string) ([]byte, error) {
	cfg, err := clientcmd.Load(kubeconfig)
	if err != nil {
		return nil, fmt.Errorf("failed to parse kubeconfig: %w", err)
	}
	if len(cfg.Clusters) == 0 {
		return nil, fmt.Errorf("kubeconfig has no clusters")
	}

	server := "https://" + net.JoinHostPort(host, strconv.Itoa(netutil.KubeAPIPort))
	for _, cluster := range cfg.Clusters {
		cluster.Server = server
	}

	out, err := clientcmd.Write(*cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to encode kubeconfig: %w", err)
	}
	return out, nil
}

// writeKubeconfig stores kubeconfig readable by the owner only.
func writeKubeconfig(path string, kubeconfig []byte) error {
	if err := os.WriteFile(path, kubeconfig, 0600); err != nil {
		return fmt.Errorf("failed to write kubeconfig %s: %w", path, err)
	}
	return nil
}

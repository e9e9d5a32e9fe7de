package access

import (
	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/util/netutil"
)

const (
	anywhere = "0.0.0.0/0"

	// DashboardPort is the host port of the cost/usage dashboard on the masters.
	DashboardPort = 5483
)

// ClusterRules returns the ingress rules every cluster access group carries.
func ClusterRules() []cloud.IngressRule {
	return []cloud.IngressRule{
		tcp("ssh", netutil.SSHPort, netutil.SSHPort),
		tcp("kubernetes api", netutil.KubeAPIPort, netutil.KubeAPIPort),
		tcp("etcd", 2379, 2380),
		tcp("kubelet, controller-manager, scheduler", 10250, 10259),
		tcp("nodeports", 30000, 32767),
		tcp("dashboard", DashboardPort, DashboardPort),
		{Description: "icmp", Protocol: cloud.ProtocolICMP, FromPort: -1, ToPort: -1, CIDR: anywhere},
		{Description: "intra-cluster", Protocol: cloud.ProtocolAll, FromGroup: true},
	}
}

func tcp(description string, from, to int) cloud.IngressRule {
	return cloud.IngressRule{
		Description: description,
		Protocol:    cloud.ProtocolTCP,
		FromPort:    from,
		ToPort:      to,
		CIDR:        anywhere,
	}
}

package bootstrap

import (
	"fmt"
	"strings"

	"github.com/lessanchos/kubedeploy/internal/util/netutil"
)

const (
	adminKubeconfig        = "/etc/kubernetes/admin.conf"
	fetchKubeconfigCommand = "sudo cat " + adminKubeconfig
	joinTokenCommand       = "sudo kubeadm token create --print-join-command"
	uploadCertsCommand     = "sudo kubeadm init phase upload-certs --upload-certs 2>/dev/null | tail -1"

	// Without workers, workloads have to run on the control plane.
	untaintControlPlaneCommand = "sudo kubectl --kubeconfig " + adminKubeconfig + " taint nodes --all node-role.kubernetes.io/control-plane-"
)

// prepareNodeScript installs containerd and the kubeadm toolchain on an
// Ubuntu host and configures the kernel for Kubernetes networking. The
// kubelet advertises the address the host uses to reach clusterIP, so node
// traffic stays on the private network when the default route is public.
func prepareNodeScript(version, clusterIP string) string {
	var sb strings.Builder
	sb.WriteString("set -euo pipefail\n")
	sb.WriteString("export DEBIAN_FRONTEND=noninteractive\n")

	sb.WriteString("swapoff -a\n")
	sb.WriteString("sed -i '/ swap / s/^/#/' /etc/fstab\n")

	sb.WriteString("cat > /etc/modules-load.d/k8s.conf <<'MODULES'\noverlay\nbr_netfilter\nMODULES\n")
	sb.WriteString("modprobe overlay\n")
	sb.WriteString("modprobe br_netfilter\n")
	sb.WriteString("cat > /etc/sysctl.d/k8s.conf <<'SYSCTL'\n")
	sb.WriteString("net.bridge.bridge-nf-call-iptables = 1\n")
	sb.WriteString("net.bridge.bridge-nf-call-ip6tables = 1\n")
	sb.WriteString("net.ipv4.ip_forward = 1\n")
	sb.WriteString("SYSCTL\n")
	sb.WriteString("sysctl --system\n")

	sb.WriteString("apt-get update\n")
	sb.WriteString("apt-get install -y apt-transport-https ca-certificates curl gpg containerd\n")
	sb.WriteString("mkdir -p /etc/containerd\n")
	sb.WriteString("containerd config default | sed 's/SystemdCgroup = false/SystemdCgroup = true/' > /etc/containerd/config.toml\n")
	sb.WriteString("systemctl restart containerd\n")
	sb.WriteString("systemctl enable containerd\n")

	sb.WriteString("mkdir -p /etc/apt/keyrings\n")
	fmt.Fprintf(&sb, "curl -fsSL https://pkgs.k8s.io/core:/stable:/%s/deb/Release.key | gpg --dearmor --yes -o /etc/apt/keyrings/kubernetes-apt-keyring.gpg\n", version)
	fmt.Fprintf(&sb, "echo 'deb [signed-by=/etc/apt/keyrings/kubernetes-apt-keyring.gpg] https://pkgs.k8s.io/core:/stable:/%s/deb/ /' > /etc/apt/sources.list.d/kubernetes.list\n", version)
	sb.WriteString("apt-get update\n")
	sb.WriteString("apt-get install -y kubelet kubeadm kubectl\n")
	sb.WriteString("apt-mark hold kubelet kubeadm kubectl\n")
	sb.WriteString(kubeletNodeIPScript(clusterIP))
	sb.WriteString("systemctl enable --now kubelet\n")
	return sb.String()
}

// kubeadmInitCommand initializes the first control-plane node. The public
// address and DNS name are added as certificate SANs so the rewritten
// local kubeconfig validates.
func kubeadmInitCommand(privateIP, publicIP, publicDNS, podCIDR, nodeName string) string {
	sans := []string{publicIP}
	if publicDNS != "" {
		sans = append(sans, publicDNS)
	}
	return fmt.Sprintf(
		"sudo kubeadm init --control-plane-endpoint=%s:%d --apiserver-advertise-address=%s --apiserver-cert-extra-sans=%s --pod-network-cidr=%s --node-name=%s --upload-certs",
		privateIP, netutil.KubeAPIPort, privateIP, strings.Join(sans, ","), podCIDR, nodeName)
}

// kubeletNodeIPScript pins the kubelet node IP to the source address of the
// route towards clusterIP.
func kubeletNodeIPScript(clusterIP string) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "NODE_IP=$(ip -4 route get %s | sed -n 's/.* src \\([0-9.]*\\).*/\\1/p')\n", clusterIP)
	sb.WriteString("test -n \"$NODE_IP\"\n")
	sb.WriteString("echo \"KUBELET_EXTRA_ARGS=--node-ip=$NODE_IP\" > /etc/default/kubelet\n")
	return sb.String()
}

// applyFlannelCommand applies the Flannel manifest with the admin
// kubeconfig. Flannel picks the interface that reaches clusterIP instead of
// the default-route interface.
func applyFlannelCommand(url, clusterIP string) string {
	return fmt.Sprintf(
		`curl -fsSL %s | sed 's|^\( *\)- --kube-subnet-mgr$|&\n\1- --iface-can-reach=%s|' | sudo kubectl --kubeconfig %s apply -f -`,
		url, clusterIP, adminKubeconfig)
}

// controlPlaneJoinCommand turns a worker join command into a control-plane join.
func controlPlaneJoinCommand(join, certificateKey, nodeName string) string {
	return fmt.Sprintf("sudo %s --control-plane --certificate-key %s --node-name=%s", join, certificateKey, nodeName)
}

func workerJoinCommand(join, nodeName string) string {
	return fmt.Sprintf("sudo %s --node-name=%s", join, nodeName)
}

// parseJoinCommand extracts the "kubeadm join ..." line from command output.
func parseJoinCommand(out string) (string, error) {
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "kubeadm join ") {
			return line, nil
		}
	}
	return "", fmt.Errorf("no join command in output: %q", strings.TrimSpace(out))
}

// parseCertificateKey returns the last non-empty line of upload-certs output.
func parseCertificateKey(out string) (string, error) {
	lines := strings.Split(strings.TrimSpace(out), "\n")
	key := strings.TrimSpace(lines[len(lines)-1])
	if key == "" || strings.ContainsAny(key, " \t") {
		return "", fmt.Errorf("no certificate key in output: %q", strings.TrimSpace(out))
	}
	return key, nil
}

// installSparkScript installs a JRE and the Spark distribution under
// /opt/spark so spark-submit is available on the host.
func installSparkScript(version string) string {
	dist := fmt.Sprintf("spark-%s-bin-hadoop3", version)
	var sb strings.Builder
	sb.WriteString("set -euo pipefail\n")
	sb.WriteString("export DEBIAN_FRONTEND=noninteractive\n")
	sb.WriteString("apt-get update\n")
	sb.WriteString("apt-get install -y default-jre-headless curl\n")
	sb.WriteString("if [ ! -x /opt/spark/bin/spark-submit ]; then\n")
	fmt.Fprintf(&sb, "  curl -fsSL https://archive.apache.org/dist/spark/spark-%s/%s.tgz -o /tmp/%s.tgz\n", version, dist, dist)
	fmt.Fprintf(&sb, "  tar -xzf /tmp/%s.tgz -C /opt\n", dist)
	fmt.Fprintf(&sb, "  ln -sfn /opt/%s /opt/spark\n", dist)
	sb.WriteString("fi\n")
	sb.WriteString("echo 'export SPARK_HOME=/opt/spark' > /etc/profile.d/spark.sh\n")
	sb.WriteString("echo 'export PATH=$PATH:/opt/spark/bin' >> /etc/profile.d/spark.sh\n")
	return sb.String()
}

func pullImageCommand(image string) string {
	return "sudo crictl --runtime-endpoint unix:///run/containerd/containerd.sock pull " + image
}

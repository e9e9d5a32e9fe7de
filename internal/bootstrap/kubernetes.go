package bootstrap

import (
	"context"
	"fmt"

	"github.com/lessanchos/kubedeploy/internal/provisioning"
	"github.com/lessanchos/kubedeploy/internal/util/labels"
)

// MasterNodeName returns the Kubernetes node name of the ordinal-th master.
func MasterNodeName(ordinal int) string {
	return fmt.Sprintf("master-%d", ordinal)
}

// InstallKubernetes builds a kubeadm cluster over the topology: Masters[0]
// is initialized, the other masters join the control plane and slaves join
// as workers named after their slave id.
func (i *Installer) InstallKubernetes(ctx context.Context, topology provisioning.ClusterTopology, keyName string) error {
	primary, ok := topology.PrimaryMaster()
	if !ok {
		return fmt.Errorf("topology has no master")
	}

	conn, err := i.connector(keyName)
	if err != nil {
		return err
	}

	masters, slaves := topology.MasterList(), topology.SlaveList()
	prepare := prepareNodeScript(i.cfg.KubernetesVersion, primary.PrivateIP)
	for _, m := range masters {
		if err := conn.runScript(ctx, "prepare node", m.PublicIP, prepare); err != nil {
			return err
		}
	}
	for _, s := range slaves {
		i.log.Info("preparing node", "slaveId", s.SlaveID, "host", s.PublicIP)
		if err := conn.runScript(ctx, "prepare node", s.PublicIP, prepare); err != nil {
			return err
		}
	}

	initCmd := kubeadmInitCommand(primary.PrivateIP, primary.PublicIP, primary.PublicDNS, i.cfg.PodNetworkCIDR, MasterNodeName(1))
	if _, err := conn.run(ctx, "kubeadm init", primary.PublicIP, initCmd); err != nil {
		return err
	}

	if _, err := conn.run(ctx, "apply cni", primary.PublicIP, applyFlannelCommand(i.cfg.FlannelManifestURL, primary.PrivateIP)); err != nil {
		return err
	}

	if len(slaves) == 0 {
		if _, err := conn.run(ctx, "untaint control plane", primary.PublicIP, untaintControlPlaneCommand); err != nil {
			return err
		}
	}

	if err := i.joinNodes(ctx, conn, topology); err != nil {
		return err
	}

	client, kubeconfig, err := conn.clusterClient(ctx, primary)
	if err != nil {
		return err
	}
	if err := writeKubeconfig(i.cfg.KubeconfigPath, kubeconfig); err != nil {
		return err
	}
	i.log.Info("kubeconfig written", "path", i.cfg.KubeconfigPath)

	i.log.Info("waiting for nodes", "count", topology.NodeCount(), "timeout", i.cfg.NodeReadyTimeout.String())
	if err := client.WaitForNodesReady(ctx, topology.NodeCount(), i.cfg.NodeReadyTimeout); err != nil {
		return fmt.Errorf("nodes not ready: %w", err)
	}

	for _, s := range slaves {
		i.log.Info("labelling node", "slaveId", s.SlaveID)
		if err := client.LabelNode(ctx, s.SlaveID, map[string]string{labels.KeySlaveID: s.SlaveID}); err != nil {
			return err
		}
	}

	i.log.Info("kubernetes installed", "masters", len(masters), "slaves", len(slaves))
	return nil
}

// joinNodes adds the remaining masters and every slave to the cluster
// initialized on Masters[0].
func (i *Installer) joinNodes(ctx context.Context, conn *connector, topology provisioning.ClusterTopology) error {
	if topology.NodeCount() == 1 {
		return nil
	}
	masters, slaves := topology.MasterList(), topology.SlaveList()
	primary := masters[0]

	out, err := conn.run(ctx, "create join token", primary.PublicIP, joinTokenCommand)
	if err != nil {
		return err
	}
	join, err := parseJoinCommand(out)
	if err != nil {
		return err
	}

	if len(masters) > 1 {
		out, err := conn.run(ctx, "upload certs", primary.PublicIP, uploadCertsCommand)
		if err != nil {
			return err
		}
		certificateKey, err := parseCertificateKey(out)
		if err != nil {
			return err
		}

		for n, m := range masters[1:] {
			cmd := controlPlaneJoinCommand(join, certificateKey, MasterNodeName(n+2))
			if _, err := conn.run(ctx, "join control plane", m.PublicIP, cmd); err != nil {
				return err
			}
		}
	}

	for _, s := range slaves {
		i.log.Info("joining worker", "slaveId", s.SlaveID, "host", s.PublicIP)
		if _, err := conn.run(ctx, "join worker", s.PublicIP, workerJoinCommand(join, s.SlaveID)); err != nil {
			return err
		}
	}
	return nil
}

package bootstrap

import (
	"context"
	"fmt"

	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"

	"github.com/lessanchos/kubedeploy/internal/provisioning"
)

const sparkName = "spark"

// InstallDataProcessing prepares the cluster for Spark on Kubernetes: the
// spark namespace and service account, spark-submit on Masters[0] and the
// Spark image on every slave.
func (i *Installer) InstallDataProcessing(ctx context.Context, topology provisioning.ClusterTopology, keyName string) error {
	primary, ok := topology.PrimaryMaster()
	if !ok {
		return fmt.Errorf("topology has no master")
	}

	conn, err := i.connector(keyName)
	if err != nil {
		return err
	}

	client, _, err := conn.clusterClient(ctx, primary)
	if err != nil {
		return err
	}

	manifests, err := renderManifests(sparkObjects()...)
	if err != nil {
		return err
	}
	if err := client.ApplyManifests(ctx, manifests, FieldManager); err != nil {
		return fmt.Errorf("failed to apply spark manifests: %w", err)
	}

	if err := conn.runScript(ctx, "install spark", primary.PublicIP, installSparkScript(i.cfg.SparkVersion)); err != nil {
		return err
	}

	slaves := topology.SlaveList()
	for _, s := range slaves {
		i.log.Info("pulling spark image", "slaveId", s.SlaveID, "host", s.PublicIP)
		if _, err := conn.run(ctx, "pull spark image", s.PublicIP, pullImageCommand(i.cfg.SparkImage)); err != nil {
			return err
		}
	}

	i.log.Info("spark installed", "version", i.cfg.SparkVersion, "image", i.cfg.SparkImage, "slaves", len(slaves))
	return nil
}

func sparkObjects() []runtime.Object {
	return []runtime.Object{
		&corev1.Namespace{
			TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
			ObjectMeta: metav1.ObjectMeta{Name: sparkName},
		},
		&corev1.ServiceAccount{
			TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
			ObjectMeta: metav1.ObjectMeta{Name: sparkName, Namespace: sparkName},
		},
		&rbacv1.ClusterRoleBinding{
			TypeMeta:   metav1.TypeMeta{APIVersion: "rbac.authorization.k8s.io/v1", Kind: "ClusterRoleBinding"},
			ObjectMeta: metav1.ObjectMeta{Name: "spark-role"},
			RoleRef: rbacv1.RoleRef{
				APIGroup: "rbac.authorization.k8s.io",
				Kind:     "ClusterRole",
				Name:     "edit",
			},
			Subjects: []rbacv1.Subject{
				{Kind: "ServiceAccount", Name: sparkName, Namespace: sparkName},
			},
		},
	}
}

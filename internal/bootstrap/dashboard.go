package bootstrap

import (
	"context"
	"fmt"

	appsv1 "k8s.io/api/apps/v1"
	corev1 "k8s.io/api/core/v1"
	rbacv1 "k8s.io/api/rbac/v1"
	metav1 "k8s.io/apimachinery/pkg/apis/meta/v1"
	"k8s.io/apimachinery/pkg/runtime"
	"k8s.io/apimachinery/pkg/util/intstr"

	"github.com/lessanchos/kubedeploy/internal/provisioning"
	"github.com/lessanchos/kubedeploy/internal/provisioning/access"
)

const (
	dashboardName      = "kube-opex-analytics"
	dashboardImage     = "rchakode/kube-opex-analytics:latest"
	dashboardNodePort  = 30548
	controlPlaneLabel  = "node-role.kubernetes.io/control-plane"
	serviceAccountPath = "/var/run/secrets/kubernetes.io/serviceaccount"
)

// InstallDashboard deploys kube-opex-analytics onto the control plane,
// reachable on the dashboard port of the master's public address.
func (i *Installer) InstallDashboard(ctx context.Context, master provisioning.MasterRecord, keyName string) error {
	conn, err := i.connector(keyName)
	if err != nil {
		return err
	}

	client, _, err := conn.clusterClient(ctx, master)
	if err != nil {
		return err
	}

	manifests, err := renderManifests(dashboardObjects()...)
	if err != nil {
		return err
	}

	i.log.Info("applying dashboard", "node", master.PublicIP)
	if err := client.ApplyManifests(ctx, manifests, FieldManager); err != nil {
		return fmt.Errorf("failed to apply dashboard manifests: %w", err)
	}

	i.log.Info("dashboard installed", "url", fmt.Sprintf("http://%s:%d", master.PublicIP, access.DashboardPort))
	return nil
}

func dashboardObjects() []runtime.Object {
	meta := func(namespaced bool) metav1.ObjectMeta {
		m := metav1.ObjectMeta{
			Name:   dashboardName,
			Labels: map[string]string{"app": dashboardName},
		}
		if namespaced {
			m.Namespace = dashboardName
		}
		return m
	}
	selector := map[string]string{"app": dashboardName}
	replicas := int32(1)

	return []runtime.Object{
		&corev1.Namespace{
			TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Namespace"},
			ObjectMeta: metav1.ObjectMeta{Name: dashboardName},
		},
		&corev1.ServiceAccount{
			TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "ServiceAccount"},
			ObjectMeta: meta(true),
		},
		&rbacv1.ClusterRole{
			TypeMeta:   metav1.TypeMeta{APIVersion: "rbac.authorization.k8s.io/v1", Kind: "ClusterRole"},
			ObjectMeta: meta(false),
			Rules: []rbacv1.PolicyRule{
				{
					APIGroups: []string{""},
					Resources: []string{"nodes", "pods", "namespaces"},
					Verbs:     []string{"get", "list", "watch"},
				},
				{
					APIGroups: []string{"metrics.k8s.io"},
					Resources: []string{"nodes", "pods"},
					Verbs:     []string{"get", "list"},
				},
			},
		},
		&rbacv1.ClusterRoleBinding{
			TypeMeta:   metav1.TypeMeta{APIVersion: "rbac.authorization.k8s.io/v1", Kind: "ClusterRoleBinding"},
			ObjectMeta: meta(false),
			RoleRef: rbacv1.RoleRef{
				APIGroup: "rbac.authorization.k8s.io",
				Kind:     "ClusterRole",
				Name:     dashboardName,
			},
			Subjects: []rbacv1.Subject{
				{Kind: "ServiceAccount", Name: dashboardName, Namespace: dashboardName},
			},
		},
		&appsv1.Deployment{
			TypeMeta:   metav1.TypeMeta{APIVersion: "apps/v1", Kind: "Deployment"},
			ObjectMeta: meta(true),
			Spec: appsv1.DeploymentSpec{
				Replicas: &replicas,
				Selector: &metav1.LabelSelector{MatchLabels: selector},
				Template: corev1.PodTemplateSpec{
					ObjectMeta: metav1.ObjectMeta{Labels: selector},
					Spec: corev1.PodSpec{
						ServiceAccountName: dashboardName,
						NodeSelector:       map[string]string{controlPlaneLabel: ""},
						Tolerations: []corev1.Toleration{
							{Key: controlPlaneLabel, Operator: corev1.TolerationOpExists, Effect: corev1.TaintEffectNoSchedule},
						},
						Containers: []corev1.Container{
							{
								Name:  dashboardName,
								Image: dashboardImage,
								Env: []corev1.EnvVar{
									{Name: "KOA_K8S_API_ENDPOINT", Value: "https://kubernetes.default"},
									{Name: "KOA_K8S_CACERT", Value: serviceAccountPath + "/ca.crt"},
									{Name: "KOA_K8S_AUTH_TOKEN_FILE", Value: serviceAccountPath + "/token"},
									{Name: "KOA_COST_MODEL", Value: "CUMULATIVE_RATIO"},
								},
								Ports: []corev1.ContainerPort{
									{
										Name:          "http",
										ContainerPort: access.DashboardPort,
										HostPort:      access.DashboardPort,
										Protocol:      corev1.ProtocolTCP,
									},
								},
							},
						},
					},
				},
			},
		},
		&corev1.Service{
			TypeMeta:   metav1.TypeMeta{APIVersion: "v1", Kind: "Service"},
			ObjectMeta: meta(true),
			Spec: corev1.ServiceSpec{
				Type:     corev1.ServiceTypeNodePort,
				Selector: selector,
				Ports: []corev1.ServicePort{
					{
						Name:       "http",
						Port:       access.DashboardPort,
						TargetPort: intstr.FromString("http"),
						NodePort:   dashboardNodePort,
						Protocol:   corev1.ProtocolTCP,
					},
				},
			},
		},
	}
}

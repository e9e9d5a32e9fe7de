package labels

// Standard label keys.
const (
	// KeyUser identifies the user whose run created the resource.
	KeyUser = "kubedeploy.io/user"

	// KeyRole identifies the role of an instance (master, slave).
	KeyRole = "kubedeploy.io/role"

	// KeySlaveID carries the slave id as a label on Kubernetes worker nodes.
	KeySlaveID = "kubedeploy.io/slave-id"

	// KeyManagedBy identifies the management system.
	KeyManagedBy = "kubedeploy.io/managed-by"

	// KeyName is the display name tag understood by the EC2 console.
	KeyName = "Name"
)

// ManagedBy value set on every resource.
const ManagedByKubedeploy = "kubedeploy"

// LabelBuilder provides a fluent interface for building resource labels.
type LabelBuilder struct {
	labels map[string]string
}

// NewLabelBuilder creates a new label builder with the user pre-set.
func NewLabelBuilder(user string) *LabelBuilder {
	return &LabelBuilder{
		labels: map[string]string{
			KeyUser:      user,
			KeyManagedBy: ManagedByKubedeploy,
		},
	}
}

// WithRole adds a role label.
func (lb *LabelBuilder) WithRole(role string) *LabelBuilder {
	lb.labels[KeyRole] = role
	return lb
}

// Build returns a copy of the labels map.
func (lb *LabelBuilder) Build() map[string]string {
	result := make(map[string]string, len(lb.labels))
	for k, v := range lb.labels {
		result[k] = v
	}
	return result
}

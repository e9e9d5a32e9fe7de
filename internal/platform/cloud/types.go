package cloud

// Role is the designation of an instance within the cluster.
type Role string

const (
	// RoleMaster marks a control-plane instance.
	RoleMaster Role = "master"
	// RoleSlave marks a worker instance.
	RoleSlave Role = "slave"
)

// Instance is a provider-assigned instance identifier plus its role.
// It is never mutated; address fields are re-queried through the Provider.
type Instance struct {
	ID   string
	Role Role
}

// IDs returns the identifiers of the given instances, preserving order.
func IDs(instances ...[]Instance) []string {
	var ids []string
	for _, group := range instances {
		for _, inst := range group {
			ids = append(ids, inst.ID)
		}
	}
	return ids
}

// LifecyclePhase is the coarse provider-reported state of an instance.
type LifecyclePhase string

const (
	PhasePending      LifecyclePhase = "pending"
	PhaseRunning      LifecyclePhase = "running"
	PhaseStopping     LifecyclePhase = "stopping"
	PhaseStopped      LifecyclePhase = "stopped"
	PhaseShuttingDown LifecyclePhase = "shutting-down"
	PhaseTerminated   LifecyclePhase = "terminated"
	PhaseUnknown      LifecyclePhase = "unknown"
)

// IsDead reports whether an instance in this phase will never become running
// without operator intervention.
func (p LifecyclePhase) IsDead() bool {
	switch p {
	case PhaseStopping, PhaseStopped, PhaseShuttingDown, PhaseTerminated:
		return true
	default:
		return false
	}
}

// CheckStatus is the provider health-check outcome for an instance.
type CheckStatus string

const (
	CheckInitializing CheckStatus = "initializing"
	CheckPassed       CheckStatus = "passed"
	CheckFailed       CheckStatus = "failed"
)

// InstanceStatus is a single-poll snapshot for one instance.
type InstanceStatus struct {
	ID    string
	Phase LifecyclePhase
	Check CheckStatus
}

// Addresses holds the network identity of a booted instance.
// Fields may be empty until the instance has finished booting.
type Addresses struct {
	PublicIP  string
	PublicDNS string
	PrivateIP string
}

// Protocol is the transport protocol of an ingress rule.
type Protocol string

const (
	ProtocolTCP  Protocol = "tcp"
	ProtocolUDP  Protocol = "udp"
	ProtocolICMP Protocol = "icmp"
	// ProtocolAll matches every protocol. Only meaningful for intra-group rules.
	ProtocolAll Protocol = "all"
)

// IngressRule opens a port range to a CIDR, or to members of the same group
// when FromGroup is set.
type IngressRule struct {
	Description string
	Protocol    Protocol
	FromPort    int
	ToPort      int
	CIDR        string
	FromGroup   bool
}

// LaunchOpts describes a single role-scoped launch request.
type LaunchOpts struct {
	Role  Role
	Count int
	// Names holds one display name per instance, in launch order.
	Names         []string
	KeyName       string
	AccessGroupID string
	InstanceType  string
	Image         string
	Labels        map[string]string
}

// NameAt returns the display name of the i-th (0-based) instance, or "" if none was given.
func (o LaunchOpts) NameAt(i int) string {
	if i < len(o.Names) {
		return o.Names[i]
	}
	return ""
}

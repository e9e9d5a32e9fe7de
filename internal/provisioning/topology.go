package provisioning

// MasterRecord is the resolved network identity of a control-plane instance.
type MasterRecord struct {
	InstanceID string
	PublicIP   string
	PublicDNS  string
	PrivateIP  string
}

// SlaveRecord is the resolved network identity of a worker instance.
type SlaveRecord struct {
	// SlaveID is "slave" followed by the 1-based launch ordinal.
	SlaveID    string
	InstanceID string
	PublicIP   string
	PublicDNS  string
}

// ClusterTopology is the address book of a provisioned cluster.
// It is built once by the topology phase and only read afterwards.
type ClusterTopology struct {
	Masters []MasterRecord
	Slaves  []SlaveRecord
}

// MasterList returns a copy of the master records.
func (t ClusterTopology) MasterList() []MasterRecord {
	out := make([]MasterRecord, len(t.Masters))
	copy(out, t.Masters)
	return out
}

// SlaveList returns a copy of the slave records.
func (t ClusterTopology) SlaveList() []SlaveRecord {
	out := make([]SlaveRecord, len(t.Slaves))
	copy(out, t.Slaves)
	return out
}

// PrimaryMaster returns Masters[0], the node that hosts kubeadm init and the dashboard.
func (t ClusterTopology) PrimaryMaster() (MasterRecord, bool) {
	if len(t.Masters) == 0 {
		return MasterRecord{}, false
	}
	return t.Masters[0], true
}

// NodeCount returns the number of nodes in the topology.
func (t ClusterTopology) NodeCount() int {
	return len(t.Masters) + len(t.Slaves)
}

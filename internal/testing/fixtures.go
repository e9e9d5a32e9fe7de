package testing

import (
	"fmt"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/platform/cloud/cloudtest"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
	"github.com/lessanchos/kubedeploy/internal/util/naming"
)

// ClusterFixture describes a cluster shape and derives deterministic ids
// and addresses for it.
type ClusterFixture struct {
	masters int
	slaves  int
}

// NewClusterFixture creates a fixture for masters control-plane and slaves worker instances.
func NewClusterFixture(masters, slaves int) *ClusterFixture {
	return &ClusterFixture{masters: masters, slaves: slaves}
}

// MasterIDs returns the master instance ids in launch order.
func (f *ClusterFixture) MasterIDs() []string {
	ids := make([]string, f.masters)
	for i := range ids {
		ids[i] = fmt.Sprintf("i-m%d", i+1)
	}
	return ids
}

// SlaveIDs returns the slave instance ids in launch order.
func (f *ClusterFixture) SlaveIDs() []string {
	ids := make([]string, f.slaves)
	for i := range ids {
		ids[i] = fmt.Sprintf("i-s%d", i+1)
	}
	return ids
}

// IDs returns every instance id, masters first.
func (f *ClusterFixture) IDs() []string {
	return append(f.MasterIDs(), f.SlaveIDs()...)
}

// Masters returns the launch handles of the masters.
func (f *ClusterFixture) Masters() []cloud.Instance {
	return instances(f.MasterIDs(), cloud.RoleMaster)
}

// Slaves returns the launch handles of the slaves.
func (f *ClusterFixture) Slaves() []cloud.Instance {
	return instances(f.SlaveIDs(), cloud.RoleSlave)
}

// Addresses returns the address table of every instance.
func (f *ClusterFixture) Addresses() map[string]cloud.Addresses {
	table := make(map[string]cloud.Addresses, f.masters+f.slaves)
	for i, id := range f.MasterIDs() {
		table[id] = address(10+i, true)
	}
	for i, id := range f.SlaveIDs() {
		table[id] = address(100+i, false)
	}
	return table
}

// Topology returns the topology the fixture's provider resolves to.
func (f *ClusterFixture) Topology() provisioning.ClusterTopology {
	addrs := f.Addresses()
	var topo provisioning.ClusterTopology
	for _, id := range f.MasterIDs() {
		a := addrs[id]
		topo.Masters = append(topo.Masters, provisioning.MasterRecord{
			InstanceID: id, PublicIP: a.PublicIP, PublicDNS: a.PublicDNS, PrivateIP: a.PrivateIP,
		})
	}
	for i, id := range f.SlaveIDs() {
		a := addrs[id]
		topo.Slaves = append(topo.Slaves, provisioning.SlaveRecord{
			SlaveID: naming.SlaveID(i + 1), InstanceID: id, PublicIP: a.PublicIP, PublicDNS: a.PublicDNS,
		})
	}
	return topo
}

// SuccessfulProvider returns a fake provider for a run where every instance
// launches, runs and passes its checks on the first poll.
func (f *ClusterFixture) SuccessfulProvider() *cloudtest.Provider {
	ids := f.IDs()
	return &cloudtest.Provider{
		LaunchInstancesFunc:   cloudtest.SequentialIDs(ids...),
		InstancePhasesFunc:    cloudtest.PhaseScript(cloudtest.AllPhases(cloud.PhaseRunning, ids...)),
		InstanceChecksFunc:    cloudtest.CheckScript(cloudtest.AllChecks(cloud.CheckPassed, ids...)),
		InstanceAddressesFunc: cloudtest.StaticAddresses(f.Addresses()),
	}
}

func instances(ids []string, role cloud.Role) []cloud.Instance {
	out := make([]cloud.Instance, len(ids))
	for i, id := range ids {
		out[i] = cloud.Instance{ID: id, Role: role}
	}
	return out
}

func address(octet int, withPrivate bool) cloud.Addresses {
	a := cloud.Addresses{
		PublicIP:  fmt.Sprintf("203.0.113.%d", octet),
		PublicDNS: fmt.Sprintf("ec2-203-0-113-%d.eu-west-3.compute.amazonaws.com", octet),
	}
	if withPrivate {
		a.PrivateIP = fmt.Sprintf("172.31.0.%d", octet)
	}
	return a
}

package topology

import (
	"context"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
	"github.com/lessanchos/kubedeploy/internal/util/naming"
)

// Address fields checked on every record.
const (
	FieldPublicIP  = "public IP"
	FieldPublicDNS = "public DNS name"
	FieldPrivateIP = "private IP"
)

// Builder assembles the cluster topology from fresh address queries.
type Builder struct{}

// NewBuilder creates a topology builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// Build re-queries the addresses of every instance and returns the
// topology. Slaves get ids slave1..slaveN in launch order. Any empty
// required field, or a failed query, is a *provisioning.AddressResolutionError.
func (b *Builder) Build(ctx context.Context, provider cloud.InstanceObserver, masters, slaves []cloud.Instance) (provisioning.ClusterTopology, error) {
	topo := provisioning.ClusterTopology{
		Masters: make([]provisioning.MasterRecord, 0, len(masters)),
		Slaves:  make([]provisioning.SlaveRecord, 0, len(slaves)),
	}

	for _, inst := range masters {
		addrs, err := resolve(ctx, provider, inst.ID, FieldPublicIP, FieldPublicDNS, FieldPrivateIP)
		if err != nil {
			return provisioning.ClusterTopology{}, err
		}
		topo.Masters = append(topo.Masters, provisioning.MasterRecord{
			InstanceID: inst.ID,
			PublicIP:   addrs.PublicIP,
			PublicDNS:  addrs.PublicDNS,
			PrivateIP:  addrs.PrivateIP,
		})
	}

	for i, inst := range slaves {
		addrs, err := resolve(ctx, provider, inst.ID, FieldPublicIP, FieldPublicDNS)
		if err != nil {
			return provisioning.ClusterTopology{}, err
		}
		topo.Slaves = append(topo.Slaves, provisioning.SlaveRecord{
			SlaveID:    naming.SlaveID(i + 1),
			InstanceID: inst.ID,
			PublicIP:   addrs.PublicIP,
			PublicDNS:  addrs.PublicDNS,
		})
	}

	return topo, nil
}

func resolve(ctx context.Context, provider cloud.InstanceObserver, id string, required ...string) (cloud.Addresses, error) {
	addrs, err := provider.InstanceAddresses(ctx, id)
	if err != nil {
		return cloud.Addresses{}, &provisioning.AddressResolutionError{InstanceID: id, Err: err}
	}

	for _, field := range required {
		if fieldValue(addrs, field) == "" {
			return cloud.Addresses{}, &provisioning.AddressResolutionError{InstanceID: id, Field: field}
		}
	}
	return addrs, nil
}

func fieldValue(a cloud.Addresses, field string) string {
	switch field {
	case FieldPublicIP:
		return a.PublicIP
	case FieldPublicDNS:
		return a.PublicDNS
	case FieldPrivateIP:
		return a.PrivateIP
	default:
		return ""
	}
}

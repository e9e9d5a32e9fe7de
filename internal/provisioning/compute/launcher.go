package compute

import (
	"context"
	"errors"
	"fmt"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
	"github.com/lessanchos/kubedeploy/internal/util/labels"
	"github.com/lessanchos/kubedeploy/internal/util/naming"
)

// LaunchSpec holds the per-run machine parameters of a launch.
type LaunchSpec struct {
	UserName           string
	Image              string
	InstanceType       string
	MasterInstanceType string
}

// Launcher creates the instances of a run.
type Launcher struct {
	spec LaunchSpec
}

// NewLauncher creates a launcher for spec.
func NewLauncher(spec LaunchSpec) *Launcher {
	if spec.MasterInstanceType == "" {
		spec.MasterInstanceType = spec.InstanceType
	}
	return &Launcher{spec: spec}
}

// Launch creates masterCount masters, then workerCount slaves. The slave
// request is skipped when workerCount is zero. Handles keep the provider's
// creation order within each role. A failed launch returns a ProvisionError
// listing every instance the run has already created.
func (l *Launcher) Launch(
	ctx context.Context,
	provider cloud.InstanceLauncher,
	accessGroupID, keyName string,
	workerCount, masterCount int,
) (masters, slaves []cloud.Instance, err error) {
	masters, err = l.launchRole(ctx, provider, cloud.RoleMaster, masterCount, accessGroupID, keyName)
	if err != nil {
		return nil, nil, err
	}

	if workerCount == 0 {
		return masters, nil, nil
	}

	slaves, err = l.launchRole(ctx, provider, cloud.RoleSlave, workerCount, accessGroupID, keyName)
	if err != nil {
		var provErr *provisioning.ProvisionError
		if errors.As(err, &provErr) {
			provErr.InstanceIDs = append(cloud.IDs(masters), provErr.InstanceIDs...)
		}
		return nil, nil, err
	}
	return masters, slaves, nil
}

func (l *Launcher) launchRole(
	ctx context.Context,
	provider cloud.InstanceLauncher,
	role cloud.Role,
	count int,
	accessGroupID, keyName string,
) ([]cloud.Instance, error) {
	op := fmt.Sprintf("launch %ss", role)

	opts := cloud.LaunchOpts{
		Role:          role,
		Count:         count,
		Names:         l.names(role, count),
		KeyName:       keyName,
		AccessGroupID: accessGroupID,
		InstanceType:  l.spec.InstanceType,
		Image:         l.spec.Image,
		Labels:        labels.NewLabelBuilder(l.spec.UserName).WithRole(string(role)).Build(),
	}
	if role == cloud.RoleMaster {
		opts.InstanceType = l.spec.MasterInstanceType
	}

	instances, err := provider.LaunchInstances(ctx, opts)
	if err != nil {
		return nil, &provisioning.ProvisionError{Op: op, InstanceIDs: cloud.IDs(instances), Err: err}
	}
	if len(instances) != count {
		return nil, &provisioning.ProvisionError{
			Op:          op,
			InstanceIDs: cloud.IDs(instances),
			Err:         fmt.Errorf("requested %d instances, provider returned %d", count, len(instances)),
		}
	}

	for i := range instances {
		if instances[i].Role == "" {
			instances[i].Role = role
		}
	}
	return instances, nil
}

func (l *Launcher) names(role cloud.Role, count int) []string {
	names := make([]string, count)
	for i := range names {
		if role == cloud.RoleMaster {
			names[i] = naming.MasterInstance(l.spec.UserName, i+1)
		} else {
			names[i] = naming.SlaveInstance(l.spec.UserName, i+1)
		}
	}
	return names
}

package ec2

import (
	"context"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/util/labels"
	"github.com/lessanchos/kubedeploy/internal/util/retry"
)

// LaunchInstances runs opts.Count instances in a single request. Tags cannot
// differ within one RunInstances call, so each instance gets its Name tag
// in a follow-up CreateTags. On a tagging failure the launched instances are
// returned along with the error.
func (p *Provider) LaunchInstances(ctx context.Context, opts cloud.LaunchOpts) ([]cloud.Instance, error) {
	if opts.Count <= 0 {
		return nil, nil
	}

	out, err := p.api.RunInstances(ctx, &ec2.RunInstancesInput{
		ImageId:           aws.String(opts.Image),
		InstanceType:      ec2types.InstanceType(opts.InstanceType),
		MinCount:          aws.Int32(int32(opts.Count)),
		MaxCount:          aws.Int32(int32(opts.Count)),
		KeyName:           aws.String(opts.KeyName),
		SecurityGroupIds:  []string{opts.AccessGroupID},
		TagSpecifications: tagSpec(ec2types.ResourceTypeInstance, opts.Labels),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to run %d %s instances: %w", opts.Count, opts.Role, err)
	}

	instances := make([]cloud.Instance, 0, len(out.Instances))
	for _, inst := range out.Instances {
		instances = append(instances, cloud.Instance{ID: aws.ToString(inst.InstanceId), Role: opts.Role})
	}

	for i, inst := range instances {
		name := opts.NameAt(i)
		if name == "" {
			continue
		}
		if err := p.nameInstance(ctx, inst.ID, name); err != nil {
			return instances, fmt.Errorf("failed to name instance %s (launched: %s): %w",
				inst.ID, strings.Join(cloud.IDs(instances), " "), err)
		}
	}
	return instances, nil
}

// nameInstance sets the Name tag of id. A freshly launched instance may not
// be visible to CreateTags yet, so InvalidInstanceID.NotFound is retried.
func (p *Provider) nameInstance(ctx context.Context, id, name string) error {
	return retry.WithExponentialBackoff(ctx, func() error {
		_, err := p.api.CreateTags(ctx, &ec2.CreateTagsInput{
			Resources: []string{id},
			Tags:      []ec2types.Tag{{Key: aws.String(labels.KeyName), Value: aws.String(name)}},
		})
		if err != nil && !IsInstanceNotFound(err) {
			return retry.Fatal(err)
		}
		return err
	}, retry.WithMaxRetries(p.tagRetries), retry.WithInitialDelay(p.tagRetryDelay))
}

// InstancePhases implements cloud.InstanceObserver.
func (p *Provider) InstancePhases(ctx context.Context, ids []string) (map[string]cloud.LifecyclePhase, error) {
	phases := make(map[string]cloud.LifecyclePhase, len(ids))
	err := p.describe(ctx, ids, func(inst ec2types.Instance) {
		phase := cloud.PhaseUnknown
		if inst.State != nil {
			phase = phaseFrom(inst.State.Name)
		}
		phases[aws.ToString(inst.InstanceId)] = phase
	})
	if err != nil {
		return nil, err
	}
	return phases, nil
}

// InstanceChecks implements cloud.InstanceObserver. A check passes when both
// the instance and the system status are ok, and fails when either is impaired.
func (p *Provider) InstanceChecks(ctx context.Context, ids []string) (map[string]cloud.CheckStatus, error) {
	checks := make(map[string]cloud.CheckStatus, len(ids))

	input := &ec2.DescribeInstanceStatusInput{
		InstanceIds:         ids,
		IncludeAllInstances: aws.Bool(true),
	}
	for {
		out, err := p.api.DescribeInstanceStatus(ctx, input)
		if err != nil {
			// Ids not yet visible count as still initializing.
			if IsInstanceNotFound(err) {
				return checks, nil
			}
			return nil, fmt.Errorf("failed to describe instance status: %w", err)
		}
		for _, st := range out.InstanceStatuses {
			checks[aws.ToString(st.InstanceId)] = checkFrom(st.InstanceStatus, st.SystemStatus)
		}
		if aws.ToString(out.NextToken) == "" {
			return checks, nil
		}
		input.NextToken = out.NextToken
	}
}

// InstanceAddresses implements cloud.InstanceObserver.
func (p *Provider) InstanceAddresses(ctx context.Context, id string) (cloud.Addresses, error) {
	var (
		addr  cloud.Addresses
		found bool
	)
	err := p.describe(ctx, []string{id}, func(inst ec2types.Instance) {
		found = true
		addr = cloud.Addresses{
			PublicIP:  aws.ToString(inst.PublicIpAddress),
			PublicDNS: aws.ToString(inst.PublicDnsName),
			PrivateIP: aws.ToString(inst.PrivateIpAddress),
		}
	})
	if err != nil {
		return cloud.Addresses{}, err
	}
	if !found {
		return cloud.Addresses{}, fmt.Errorf("instance %s not found", id)
	}
	return addr, nil
}

// describe pages through DescribeInstances filtered by instance-id.
func (p *Provider) describe(ctx context.Context, ids []string, visit func(ec2types.Instance)) error {
	input := &ec2.DescribeInstancesInput{
		Filters: []ec2types.Filter{{Name: aws.String("instance-id"), Values: ids}},
	}
	for {
		out, err := p.api.DescribeInstances(ctx, input)
		if err != nil {
			return fmt.Errorf("failed to describe instances: %w", err)
		}
		for _, res := range out.Reservations {
			for _, inst := range res.Instances {
				visit(inst)
			}
		}
		if aws.ToString(out.NextToken) == "" {
			return nil
		}
		input.NextToken = out.NextToken
	}
}

func phaseFrom(name ec2types.InstanceStateName) cloud.LifecyclePhase {
	switch name {
	case ec2types.InstanceStateNamePending:
		return cloud.PhasePending
	case ec2types.InstanceStateNameRunning:
		return cloud.PhaseRunning
	case ec2types.InstanceStateNameStopping:
		return cloud.PhaseStopping
	case ec2types.InstanceStateNameStopped:
		return cloud.PhaseStopped
	case ec2types.InstanceStateNameShuttingDown:
		return cloud.PhaseShuttingDown
	case ec2types.InstanceStateNameTerminated:
		return cloud.PhaseTerminated
	default:
		return cloud.PhaseUnknown
	}
}

func checkFrom(instance, system *ec2types.InstanceStatusSummary) cloud.CheckStatus {
	status := func(s *ec2types.InstanceStatusSummary) ec2types.SummaryStatus {
		if s == nil {
			return ec2types.SummaryStatusInitializing
		}
		return s.Status
	}
	is, ss := status(instance), status(system)

	switch {
	case is == ec2types.SummaryStatusImpaired || ss == ec2types.SummaryStatusImpaired:
		return cloud.CheckFailed
	case is == ec2types.SummaryStatusOk && ss == ec2types.SummaryStatusOk:
		return cloud.CheckPassed
	default:
		return cloud.CheckInitializing
	}
}

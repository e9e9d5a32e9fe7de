package ec2

import (
	"context"
	"sync"

	"github.com/aws/aws-sdk-go-v2/service/ec2"
)

// fakeAPI implements ec2API with function fields; unset functions return empty outputs.
type fakeAPI struct {
	mu sync.Mutex

	importKeyPair          func(*ec2.ImportKeyPairInput) (*ec2.ImportKeyPairOutput, error)
	createSecurityGroup    func(*ec2.CreateSecurityGroupInput) (*ec2.CreateSecurityGroupOutput, error)
	describeSecurityGroups func(*ec2.DescribeSecurityGroupsInput) (*ec2.DescribeSecurityGroupsOutput, error)
	authorizeIngress       func(*ec2.AuthorizeSecurityGroupIngressInput) (*ec2.AuthorizeSecurityGroupIngressOutput, error)
	createTags             func(*ec2.CreateTagsInput) (*ec2.CreateTagsOutput, error)
	runInstances           func(*ec2.RunInstancesInput) (*ec2.RunInstancesOutput, error)
	describeInstances      func(*ec2.DescribeInstancesInput) (*ec2.DescribeInstancesOutput, error)
	describeInstanceStatus func(*ec2.DescribeInstanceStatusInput) (*ec2.DescribeInstanceStatusOutput, error)

	authorized []*ec2.AuthorizeSecurityGroupIngressInput
	tagged     []*ec2.CreateTagsInput
}

func (f *fakeAPI) ImportKeyPair(_ context.Context, in *ec2.ImportKeyPairInput, _ ...func(*ec2.Options)) (*ec2.ImportKeyPairOutput, error) {
	if f.importKeyPair == nil {
		return &ec2.ImportKeyPairOutput{}, nil
	}
	return f.importKeyPair(in)
}

func (f *fakeAPI) CreateSecurityGroup(_ context.Context, in *ec2.CreateSecurityGroupInput, _ ...func(*ec2.Options)) (*ec2.CreateSecurityGroupOutput, error) {
	if f.createSecurityGroup == nil {
		return &ec2.CreateSecurityGroupOutput{}, nil
	}
	return f.createSecurityGroup(in)
}

func (f *fakeAPI) DescribeSecurityGroups(_ context.Context, in *ec2.DescribeSecurityGroupsInput, _ ...func(*ec2.Options)) (*ec2.DescribeSecurityGroupsOutput, error) {
	if f.describeSecurityGroups == nil {
		return &ec2.DescribeSecurityGroupsOutput{}, nil
	}
	return f.describeSecurityGroups(in)
}

func (f *fakeAPI) AuthorizeSecurityGroupIngress(_ context.Context, in *ec2.AuthorizeSecurityGroupIngressInput, _ ...func(*ec2.Options)) (*ec2.AuthorizeSecurityGroupIngressOutput, error) {
	f.mu.Lock()
	f.authorized = append(f.authorized, in)
	f.mu.Unlock()
	if f.authorizeIngress == nil {
		return &ec2.AuthorizeSecurityGroupIngressOutput{}, nil
	}
	return f.authorizeIngress(in)
}

func (f *fakeAPI) CreateTags(_ context.Context, in *ec2.CreateTagsInput, _ ...func(*ec2.Options)) (*ec2.CreateTagsOutput, error) {
	f.mu.Lock()
	f.tagged = append(f.tagged, in)
	f.mu.Unlock()
	if f.createTags == nil {
		return &ec2.CreateTagsOutput{}, nil
	}
	return f.createTags(in)
}

func (f *fakeAPI) RunInstances(_ context.Context, in *ec2.RunInstancesInput, _ ...func(*ec2.Options)) (*ec2.RunInstancesOutput, error) {
	if f.runInstances == nil {
		return &ec2.RunInstancesOutput{}, nil
	}
	return f.runInstances(in)
}

func (f *fakeAPI) DescribeInstances(_ context.Context, in *ec2.DescribeInstancesInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstancesOutput, error) {
	if f.describeInstances == nil {
		return &ec2.DescribeInstancesOutput{}, nil
	}
	return f.describeInstances(in)
}

func (f *fakeAPI) DescribeInstanceStatus(_ context.Context, in *ec2.DescribeInstanceStatusInput, _ ...func(*ec2.Options)) (*ec2.DescribeInstanceStatusOutput, error) {
	if f.describeInstanceStatus == nil {
		return &ec2.DescribeInstanceStatusOutput{}, nil
	}
	return f.describeInstanceStatus(in)
}

package ec2

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ec2"
	ec2types "github.com/aws/aws-sdk-go-v2/service/ec2/types"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
)

// ImportKeyPair imports an OpenSSH public key as an EC2 key pair.
func (p *Provider) ImportKeyPair(ctx context.Context, name string, publicKey []byte, labels map[string]string) error {
	_, err := p.api.ImportKeyPair(ctx, &ec2.ImportKeyPairInput{
		KeyName:           aws.String(name),
		PublicKeyMaterial: publicKey,
		TagSpecifications: tagSpec(ec2types.ResourceTypeKeyPair, labels),
	})
	if err != nil {
		if IsDuplicate(err) {
			return fmt.Errorf("key pair %s: %w: %w", name, cloud.ErrAlreadyExists, err)
		}
		return fmt.Errorf("failed to import key pair %s: %w", name, err)
	}
	return nil
}

// EnsureAccessGroup creates the security group, or finds it when a group of
// that name exists, then authorizes the ingress rules. Rules that are
// already authorized are skipped.
func (p *Provider) EnsureAccessGroup(ctx context.Context, name, description string, rules []cloud.IngressRule) (string, error) {
	groupID, err := p.createOrFindGroup(ctx, name, description)
	if err != nil {
		return "", err
	}

	for _, rule := range rules {
		_, err := p.api.AuthorizeSecurityGroupIngress(ctx, &ec2.AuthorizeSecurityGroupIngressInput{
			GroupId:       aws.String(groupID),
			IpPermissions: []ec2types.IpPermission{ipPermission(groupID, rule)},
		})
		if err != nil && !IsDuplicate(err) {
			return "", fmt.Errorf("failed to authorize %s on %s: %w", rule.Description, name, err)
		}
	}

	return groupID, nil
}

func (p *Provider) createOrFindGroup(ctx context.Context, name, description string) (string, error) {
	out, err := p.api.CreateSecurityGroup(ctx, &ec2.CreateSecurityGroupInput{
		GroupName:   aws.String(name),
		Description: aws.String(description),
	})
	if err == nil {
		return aws.ToString(out.GroupId), nil
	}
	if !IsDuplicate(err) {
		return "", fmt.Errorf("failed to create security group %s: %w", name, err)
	}

	found, err := p.api.DescribeSecurityGroups(ctx, &ec2.DescribeSecurityGroupsInput{
		Filters: []ec2types.Filter{{Name: aws.String("group-name"), Values: []string{name}}},
	})
	if err != nil {
		return "", fmt.Errorf("failed to look up security group %s: %w", name, err)
	}
	if len(found.SecurityGroups) == 0 {
		return "", fmt.Errorf("security group %s reported as duplicate but not found", name)
	}
	return aws.ToString(found.SecurityGroups[0].GroupId), nil
}

// ipPermission converts a rule. EC2 encodes "all ports" of ICMP and of the
// all-protocols rule as -1.
func ipPermission(groupID string, rule cloud.IngressRule) ec2types.IpPermission {
	perm := ec2types.IpPermission{
		FromPort: aws.Int32(int32(rule.FromPort)),
		ToPort:   aws.Int32(int32(rule.ToPort)),
	}

	switch rule.Protocol {
	case cloud.ProtocolAll:
		perm.IpProtocol = aws.String("-1")
		perm.FromPort, perm.ToPort = aws.Int32(-1), aws.Int32(-1)
	case cloud.ProtocolICMP:
		perm.IpProtocol = aws.String("icmp")
		perm.FromPort, perm.ToPort = aws.Int32(-1), aws.Int32(-1)
	default:
		perm.IpProtocol = aws.String(string(rule.Protocol))
	}

	if rule.FromGroup {
		perm.UserIdGroupPairs = []ec2types.UserIdGroupPair{{
			GroupId:     aws.String(groupID),
			Description: aws.String(rule.Description),
		}}
	} else {
		perm.IpRanges = []ec2types.IpRange{{
			CidrIp:      aws.String(rule.CIDR),
			Description: aws.String(rule.Description),
		}}
	}
	return perm
}

// Package ec2 implements cloud.Provider on Amazon EC2.
//
// Key pairs are imported, the access group is a VPC security group, and
// instances are launched with RunInstances, one request per role.
// Lifecycle phases come from DescribeInstances filtered by instance-id,
// which returns an empty set instead of an error for ids that are not
// visible yet. Status checks come from DescribeInstanceStatus.
package ec2

// Package labels provides consistent labeling for cloud resources and
// Kubernetes nodes created by a deployment run.
//
// All keys use the kubedeploy.io prefix. The builder produces plain
// string maps that the EC2 backend turns into tags and the Hetzner
// backend attaches as labels.
package labels

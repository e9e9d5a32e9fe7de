package config

import (
	"fmt"
	"regexp"
)

// awsRegionPattern matches region names such as eu-west-3 or us-gov-east-1.
var awsRegionPattern = regexp.MustCompile(`^[a-z]{2}(-[a-z]+)+-\d+$`)

// ValidLocations contains all valid Hetzner Cloud datacenter locations.
// https://docs.hetzner.com/cloud/general/locations/
var ValidLocations = map[string]bool{
	"nbg1": true, // Nuremberg, Germany
	"fsn1": true, // Falkenstein, Germany
	"hel1": true, // Helsinki, Finland
	"ash":  true, // Ashburn, USA
	"hil":  true, // Hillsboro, USA
	"sin":  true, // Singapore
}

// Validate checks the settings for common errors and returns a detailed error if validation fails.
func (s *Settings) Validate() error {
	switch s.Provider {
	case ProviderAWS:
		if err := s.validateAWS(); err != nil {
			return fmt.Errorf("aws settings: %w", err)
		}
	case ProviderHCloud:
		if err := s.validateHCloud(); err != nil {
			return fmt.Errorf("hcloud settings: %w", err)
		}
	default:
		return fmt.Errorf("unsupported provider %q (expected %q or %q)", s.Provider, ProviderAWS, ProviderHCloud)
	}

	if s.InstanceType == "" {
		return fmt.Errorf("instance_type is required")
	}
	if s.Image == "" {
		return fmt.Errorf("image is required")
	}
	if s.SSHUser == "" {
		return fmt.Errorf("ssh_user is required")
	}

	if err := s.validateReadiness(); err != nil {
		return fmt.Errorf("readiness settings: %w", err)
	}
	return nil
}

func (s *Settings) validateAWS() error {
	if !awsRegionPattern.MatchString(s.Region) {
		return fmt.Errorf("invalid region %q", s.Region)
	}
	// Both or neither: without static keys the default credential chain applies.
	if (s.AccessKey == "") != (s.SecretKey == "") {
		return fmt.Errorf("access_key and secret_key must be set together")
	}
	return nil
}

func (s *Settings) validateHCloud() error {
	if s.HCloudToken == "" {
		return fmt.Errorf("hcloud_token is required")
	}
	if !ValidLocations[s.Location] {
		return fmt.Errorf("invalid location %q", s.Location)
	}
	return nil
}

func (s *Settings) validateReadiness() error {
	switch s.Readiness.QueryErrorPolicy {
	case QueryErrorPolicyFatal, QueryErrorPolicyRetry:
	default:
		return fmt.Errorf("invalid query_error_policy %q (expected %q or %q)",
			s.Readiness.QueryErrorPolicy, QueryErrorPolicyFatal, QueryErrorPolicyRetry)
	}
	if s.Readiness.MaxConsecutiveQueryErrors() < 0 {
		return fmt.Errorf("max_query_errors must not be negative")
	}
	return nil
}

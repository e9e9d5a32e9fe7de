package ec2

import (
	"errors"

	"github.com/aws/smithy-go"
)

// EC2 API error codes handled by the provider.
const (
	codeKeyPairDuplicate    = "InvalidKeyPair.Duplicate"
	codeGroupDuplicate      = "InvalidGroup.Duplicate"
	codePermissionDuplicate = "InvalidPermission.Duplicate"
	codeInstanceNotFound    = "InvalidInstanceID.NotFound"
)

// hasErrorCode reports whether err is an EC2 API error with one of the given codes.
func hasErrorCode(err error, codes ...string) bool {
	if err == nil {
		return false
	}

	var apiErr smithy.APIError
	if errors.As(err, &apiErr) {
		for _, code := range codes {
			if apiErr.ErrorCode() == code {
				return true
			}
		}
	}
	return false
}

// IsDuplicate reports whether err signals that the resource exists already.
func IsDuplicate(err error) bool {
	return hasErrorCode(err, codeKeyPairDuplicate, codeGroupDuplicate, codePermissionDuplicate)
}

// IsInstanceNotFound reports whether err signals an unknown instance id.
func IsInstanceNotFound(err error) bool {
	return hasErrorCode(err, codeInstanceNotFound)
}

package hcloud

import (
	"errors"

	"github.com/hetznercloud/hcloud-go/v2/hcloud"
)

// isResourceLocked checks if an error indicates a resource is locked.
// Locked resources occur while another action runs on them. These errors
// are retryable.
func isResourceLocked(err error) bool {
	return isHCloudErrorCode(err,
		hcloud.ErrorCodeLocked,   // Item is locked (action running)
		hcloud.ErrorCodeConflict, // Resource changed during request
		hcloud.ErrorCodeResourceUnavailable,
		hcloud.ErrorCodeRateLimitExceeded,
	)
}

// isUniquenessError checks if an error indicates the name is taken already.
func isUniquenessError(err error) bool {
	return isHCloudErrorCode(err, hcloud.ErrorCodeUniquenessError)
}

// isHCloudErrorCode checks if the error is an hcloud API error with one of the given codes.
func isHCloudErrorCode(err error, codes ...hcloud.ErrorCode) bool {
	if err == nil {
		return false
	}

	var hcloudErr hcloud.Error
	if errors.As(err, &hcloudErr) {
		for _, code := range codes {
			if hcloudErr.Code == code {
				return true
			}
		}
	}
	return false
}

// IsNotFound checks if an error indicates a resource was not found.
func IsNotFound(err error) bool {
	return isHCloudErrorCode(err, hcloud.ErrorCodeNotFound)
}

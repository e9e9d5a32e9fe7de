package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/lessanchos/kubedeploy/internal/util/naming"
)

const (
	// DefaultMasterCount is the number of control-plane instances when none is requested.
	DefaultMasterCount = 1
	// DefaultWorkerCount is the number of worker instances when none is requested.
	DefaultWorkerCount = 2
)

// Request describes a single deployment run. It is built once by NewRequest
// and passed by value.
type Request struct {
	UserName                 string
	MasterCount              int
	WorkerCount              int
	KeyName                  string
	SecurityGroupName        string
	SecurityGroupDescription string
}

// NewRequest validates the run parameters and derives the key name.
func NewRequest(userName string, masterCount, workerCount int, sg SecurityGroupSettings) (Request, error) {
	userName = strings.TrimSpace(userName)
	if userName == "" {
		return Request{}, errors.New("user name is required")
	}
	if strings.ContainsAny(userName, " \t/\\") {
		return Request{}, fmt.Errorf("user name %q must not contain whitespace or path separators", userName)
	}
	if masterCount < 1 {
		return Request{}, fmt.Errorf("master count must be at least 1, got %d", masterCount)
	}
	if workerCount < 0 {
		return Request{}, fmt.Errorf("worker count must not be negative, got %d", workerCount)
	}
	if sg.Name == "" {
		return Request{}, errors.New("security group name is required")
	}

	return Request{
		UserName:                 userName,
		MasterCount:              masterCount,
		WorkerCount:              workerCount,
		KeyName:                  KeyNameFor(userName),
		SecurityGroupName:        sg.Name,
		SecurityGroupDescription: sg.Description,
	}, nil
}

// KeyNameFor returns the key-pair name used for userName.
func KeyNameFor(userName string) string {
	return naming.KeyPair(userName)
}

// TotalNodes returns the number of instances the run launches.
func (r Request) TotalNodes() int {
	return r.MasterCount + r.WorkerCount
}

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testGroup = SecurityGroupSettings{Name: "lessanchos", Description: "test group"}

func TestNewRequest(t *testing.T) {
	t.Parallel()
	req, err := NewRequest("alice", 1, 2, testGroup)

	require.NoError(t, err)
	assert.Equal(t, "alice", req.UserName)
	assert.Equal(t, "alice_key", req.KeyName)
	assert.Equal(t, "lessanchos", req.SecurityGroupName)
	assert.Equal(t, "test group", req.SecurityGroupDescription)
	assert.Equal(t, 3, req.TotalNodes())
}

func TestNewRequest_SingleNode(t *testing.T) {
	t.Parallel()
	req, err := NewRequest("alice", 1, 0, testGroup)

	require.NoError(t, err)
	assert.Equal(t, 0, req.WorkerCount)
	assert.Equal(t, 1, req.TotalNodes())
}

func TestNewRequest_Invalid(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name    string
		user    string
		masters int
		workers int
		group   SecurityGroupSettings
		wantErr string
	}{
		{"empty user", "  ", 1, 2, testGroup, "user name is required"},
		{"user with space", "al ice", 1, 2, testGroup, "must not contain whitespace"},
		{"user with slash", "../alice", 1, 2, testGroup, "path separators"},
		{"no masters", "alice", 0, 2, testGroup, "master count must be at least 1"},
		{"negative workers", "alice", 1, -1, testGroup, "worker count must not be negative"},
		{"no group", "alice", 1, 2, SecurityGroupSettings{}, "security group name is required"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			_, err := NewRequest(tt.user, tt.masters, tt.workers, tt.group)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

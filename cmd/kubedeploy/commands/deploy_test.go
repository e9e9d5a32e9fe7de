package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeploy(t *testing.T) {
	cmd := Deploy()

	require.NotNil(t, cmd)
	assert.Equal(t, "deploy", cmd.Use)
	assert.NotNil(t, cmd.RunE)
}

func TestDeploy_FlagDefaults(t *testing.T) {
	cmd := Deploy()

	tests := []struct {
		name      string
		shorthand string
		def       string
	}{
		{"user", "u", ""},
		{"masters", "m", "1"},
		{"workers", "w", "2"},
		{"config", "c", "kubedeploy.yaml"},
		{"provider", "", ""},
		{"metrics-file", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			flag := cmd.Flags().Lookup(tt.name)
			require.NotNil(t, flag)
			assert.Equal(t, tt.shorthand, flag.Shorthand)
			assert.Equal(t, tt.def, flag.DefValue)
		})
	}
}

func TestDeploy_ExplicitZeroWorkers(t *testing.T) {
	cmd := Deploy()
	require.NoError(t, cmd.ParseFlags([]string{"-w", "0", "-m", "3"}))

	workers, err := cmd.Flags().GetInt("workers")
	require.NoError(t, err)
	assert.Equal(t, 0, workers)
	assert.True(t, cmd.Flags().Changed("workers"))
}

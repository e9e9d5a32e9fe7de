package bootstrap

import (
	"testing"

	"github.com/stretchr/testify/assert"

	kdtest "github.com/lessanchos/kubedeploy/internal/testing"
)

func TestConfigFrom(t *testing.T) {
	t.Parallel()

	settings := kdtest.NewSettingsBuilder().WithKeyDir("/keys").WithSSHUser("admin").Build()
	timeouts := kdtest.DefaultTimeouts()

	cfg := ConfigFrom(settings, timeouts)
	assert.Equal(t, "admin", cfg.SSHUser)
	assert.Equal(t, "/keys", cfg.KeyDir)
	assert.Equal(t, "kubeconfig", cfg.KubeconfigPath)
	assert.Equal(t, DefaultPodNetworkCIDR, cfg.PodNetworkCIDR)
	assert.Equal(t, timeouts.NodeReady, cfg.NodeReadyTimeout)
	assert.Equal(t, timeouts.SSHMaxRetries, cfg.SSHMaxRetries)
	assert.Equal(t, timeouts.SSHRetryDelay, cfg.SSHRetryDelay)
}

func TestNewInstaller_DefaultRemoteIsSSH(t *testing.T) {
	t.Parallel()

	inst := NewInstaller(Config{SSHUser: "ubuntu"})

	_, err := inst.newRemote("203.0.113.10", []byte("not a key"))
	assert.ErrorContains(t, err, "failed to parse private key")
}

func TestMasterNodeName(t *testing.T) {
	t.Parallel()
	assert.Equal(t, "master-1", MasterNodeName(1))
	assert.Equal(t, "master-3", MasterNodeName(3))
}

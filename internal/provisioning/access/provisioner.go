package access

import (
	"errors"
	"fmt"
	"os"

	"github.com/lessanchos/kubedeploy/internal/platform/cloud"
	"github.com/lessanchos/kubedeploy/internal/provisioning"
	"github.com/lessanchos/kubedeploy/internal/util/keygen"
	"github.com/lessanchos/kubedeploy/internal/util/labels"
)

const phase = "access"

// Provisioner imports the run's key pair and ensures its access group.
type Provisioner struct {
	keyBits int
}

// Option configures a Provisioner.
type Option func(*Provisioner)

// WithKeyBits overrides the RSA modulus size of generated key pairs.
func WithKeyBits(bits int) Option {
	return func(p *Provisioner) {
		p.keyBits = bits
	}
}

// NewProvisioner creates a new access provisioner.
func NewProvisioner(opts ...Option) *Provisioner {
	p := &Provisioner{keyBits: keygen.DefaultBits}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Name implements the provisioning.Phase interface.
func (p *Provisioner) Name() string {
	return phase
}

// Provision implements the provisioning.Phase interface.
// A key pair failure is logged and tolerated; an access group failure is fatal.
func (p *Provisioner) Provision(ctx *provisioning.Context) error {
	if err := p.ImportKeyPair(ctx); err != nil {
		provisioning.LogWarning(ctx.Observer, phase, err)
		p.checkExistingKey(ctx)
	}

	groupID, err := p.EnsureAccessGroup(ctx)
	if err != nil {
		return err
	}
	ctx.State.AccessGroupID = groupID
	return nil
}

// ImportKeyPair generates a key pair, imports its public half and stores the
// private half under the configured key directory. Every failure is returned
// as a *provisioning.KeyPairError.
func (p *Provisioner) ImportKeyPair(ctx *provisioning.Context) error {
	keyName := ctx.Request.KeyName
	provisioning.LogResourceCreating(ctx.Observer, phase, "key_pair", keyName)

	kp, err := keygen.GenerateRSAKeyPair(p.keyBits)
	if err != nil {
		return &provisioning.KeyPairError{KeyName: keyName, Err: err}
	}

	keyLabels := labels.NewLabelBuilder(ctx.Request.UserName).Build()
	if err := ctx.Provider.ImportKeyPair(ctx, keyName, kp.PublicKey, keyLabels); err != nil {
		if errors.Is(err, cloud.ErrAlreadyExists) {
			provisioning.LogResourceExists(ctx.Observer, phase, "key_pair", keyName, keyName)
		}
		return &provisioning.KeyPairError{KeyName: keyName, Err: err}
	}

	path := keygen.PrivateKeyPath(ctx.Settings.KeyDir, keyName)
	if err := kp.WritePrivateKey(path); err != nil {
		return &provisioning.KeyPairError{KeyName: keyName, Err: err}
	}

	ctx.State.KeyImported = true
	provisioning.LogResourceCreated(ctx.Observer, phase, "key_pair", keyName, keyPairID(ctx.Observer, keyName, kp.PublicKey))
	ctx.Observer.Printf("[%s] Private key written to %s", phase, path)
	return nil
}

// keyPairID identifies an imported key by its fingerprint, falling back to
// the key name when the public key cannot be parsed.
func keyPairID(observer provisioning.Observer, keyName string, publicKey []byte) string {
	fingerprint, err := keygen.Fingerprint(publicKey)
	if err != nil {
		provisioning.LogWarning(observer, phase, fmt.Errorf("failed to fingerprint key pair %s: %w", keyName, err))
		return keyName
	}
	return fingerprint
}

// checkExistingKey warns when the run will depend on a local private key
// that is not there.
func (p *Provisioner) checkExistingKey(ctx *provisioning.Context) {
	path := keygen.PrivateKeyPath(ctx.Settings.KeyDir, ctx.Request.KeyName)
	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		ctx.Observer.Printf("[%s] Warning: no local private key at %s; remote bootstrap will fail to authenticate", phase, path)
		return
	}
	ctx.Observer.Printf("[%s] Reusing existing private key %s", phase, path)
}

// EnsureAccessGroup creates or finds the run's access group.
func (p *Provisioner) EnsureAccessGroup(ctx *provisioning.Context) (string, error) {
	name := ctx.Request.SecurityGroupName
	provisioning.LogResourceCreating(ctx.Observer, phase, "access_group", name)

	groupID, err := ctx.Provider.EnsureAccessGroup(ctx, name, ctx.Request.SecurityGroupDescription, ClusterRules())
	if err != nil {
		provisioning.LogResourceFailed(ctx.Observer, phase, "access_group", name, err)
		return "", fmt.Errorf("failed to ensure access group %s: %w", name, err)
	}

	provisioning.LogResourceCreated(ctx.Observer, phase, "access_group", name, groupID)
	return groupID, nil
}

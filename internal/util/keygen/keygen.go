package keygen

import (
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"golang.org/x/crypto/ssh"
)

// DefaultBits is the RSA modulus size of generated key pairs.
const DefaultBits = 4096

// KeyPair holds an RSA key pair in ready-to-use formats.
type KeyPair struct {
	// PrivateKey is the RSA private key in PEM-encoded PKCS#1 format.
	PrivateKey []byte
	// PublicKey is the public key in OpenSSH authorized_keys format.
	PublicKey []byte
}

// GenerateRSAKeyPair generates a new RSA key pair with the specified bit size.
func GenerateRSAKeyPair(bits int) (*KeyPair, error) {
	privateKey, err := rsa.GenerateKey(rand.Reader, bits)
	if err != nil {
		return nil, fmt.Errorf("failed to generate RSA private key: %w", err)
	}

	if err := privateKey.Validate(); err != nil {
		return nil, fmt.Errorf("failed to validate RSA private key: %w", err)
	}

	privateKeyPEM := pem.EncodeToMemory(&pem.Block{
		Type:  "RSA PRIVATE KEY",
		Bytes: x509.MarshalPKCS1PrivateKey(privateKey),
	})

	publicKey, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		return nil, fmt.Errorf("failed to create SSH public key: %w", err)
	}

	return &KeyPair{
		PrivateKey: privateKeyPEM,
		PublicKey:  ssh.MarshalAuthorizedKey(publicKey),
	}, nil
}

// PrivateKeyPath returns the location of the PEM file for keyName inside dir.
func PrivateKeyPath(dir, keyName string) string {
	return filepath.Join(dir, keyName+".pem")
}

// WritePrivateKey stores the private key at path with owner-only permissions,
// replacing any previous file.
func (kp *KeyPair) WritePrivateKey(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("failed to create key directory: %w", err)
	}
	// Remove first so an existing read-only file (0400) can be replaced.
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("failed to replace private key: %w", err)
	}
	if err := os.WriteFile(path, kp.PrivateKey, 0o600); err != nil {
		return fmt.Errorf("failed to write private key: %w", err)
	}
	return nil
}

// LoadPrivateKey reads a PEM private key and returns it as an SSH signer.
func LoadPrivateKey(path string) (ssh.Signer, error) {
	// #nosec G304
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read private key: %w", err)
	}
	signer, err := ssh.ParsePrivateKey(data)
	if err != nil {
		return nil, fmt.Errorf("failed to parse private key %s: %w", path, err)
	}
	return signer, nil
}

// Fingerprint returns the SHA256 fingerprint of an authorized_keys public key.
func Fingerprint(publicKey []byte) (string, error) {
	pub, _, _, _, err := ssh.ParseAuthorizedKey(publicKey)
	if err != nil {
		return "", fmt.Errorf("failed to parse public key: %w", err)
	}
	return ssh.FingerprintSHA256(pub), nil
}

package keygen

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/crypto/ssh"
)

func TestGenerateRSAKeyPair_InvalidBits(t *testing.T) {
	t.Parallel()
	for _, bits := range []int{0, -1} {
		if _, err := GenerateRSAKeyPair(bits); err == nil {
			t.Errorf("GenerateRSAKeyPair(%d) should have failed", bits)
		}
	}
}

func TestKeyPair_Formats(t *testing.T) {
	t.Parallel()
	keyPair, err := GenerateRSAKeyPair(2048)
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}

	block, rest := pem.Decode(keyPair.PrivateKey)
	if block == nil {
		t.Fatal("failed to decode PEM block")
	}
	if len(bytes.TrimSpace(rest)) > 0 {
		t.Error("unexpected data after PEM block")
	}
	if block.Type != "RSA PRIVATE KEY" {
		t.Errorf("expected PEM type 'RSA PRIVATE KEY', got %q", block.Type)
	}
	privateKey, err := x509.ParsePKCS1PrivateKey(block.Bytes)
	if err != nil {
		t.Fatalf("failed to parse PKCS1 private key: %v", err)
	}

	if !strings.HasPrefix(string(keyPair.PublicKey), "ssh-rsa ") {
		t.Errorf("public key should start with 'ssh-rsa '")
	}
	parsed, _, _, _, err := ssh.ParseAuthorizedKey(keyPair.PublicKey)
	if err != nil {
		t.Fatalf("failed to parse public key: %v", err)
	}
	expected, err := ssh.NewPublicKey(&privateKey.PublicKey)
	if err != nil {
		t.Fatalf("failed to derive public key: %v", err)
	}
	if !bytes.Equal(parsed.Marshal(), expected.Marshal()) {
		t.Error("public key does not correspond to private key")
	}
}

func TestGenerateRSAKeyPair_Uniqueness(t *testing.T) {
	t.Parallel()
	a, err := GenerateRSAKeyPair(2048)
	if err != nil {
		t.Fatalf("first GenerateRSAKeyPair failed: %v", err)
	}
	b, err := GenerateRSAKeyPair(2048)
	if err != nil {
		t.Fatalf("second GenerateRSAKeyPair failed: %v", err)
	}
	if bytes.Equal(a.PrivateKey, b.PrivateKey) {
		t.Error("two generated key pairs should have different private keys")
	}
}

func TestWriteAndLoadPrivateKey(t *testing.T) {
	t.Parallel()
	keyPair, err := GenerateRSAKeyPair(2048)
	if err != nil {
		t.Fatalf("GenerateRSAKeyPair failed: %v", err)
	}

	path := PrivateKeyPath(filepath.Join(t.TempDir(), "keys"), "alice_key")
	if filepath.Base(path) != "alice_key.pem" {
		t.Errorf("unexpected key file name %q", filepath.Base(path))
	}

	if err := keyPair.WritePrivateKey(path); err != nil {
		t.Fatalf("WritePrivateKey failed: %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat failed: %v", err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("expected mode 0600, got %v", info.Mode().Perm())
	}

	// A read-only leftover from an earlier run is replaced.
	if err := os.Chmod(path, 0o400); err != nil {
		t.Fatalf("chmod failed: %v", err)
	}
	if err := keyPair.WritePrivateKey(path); err != nil {
		t.Fatalf("second WritePrivateKey failed: %v", err)
	}

	signer, err := LoadPrivateKey(path)
	if err != nil {
		t.Fatalf("LoadPrivateKey failed: %v", err)
	}
	fp, err := Fingerprint(keyPair.PublicKey)
	if err != nil {
		t.Fatalf("Fingerprint failed: %v", err)
	}
	if fp != ssh.FingerprintSHA256(signer.PublicKey()) {
		t.Error("loaded signer does not match generated public key")
	}
}

func TestLoadPrivateKey_Errors(t *testing.T) {
	t.Parallel()
	dir := t.TempDir()

	if _, err := LoadPrivateKey(filepath.Join(dir, "missing.pem")); err == nil {
		t.Error("expected error for missing file")
	}

	garbage := filepath.Join(dir, "garbage.pem")
	if err := os.WriteFile(garbage, []byte("not a key"), 0o600); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadPrivateKey(garbage); err == nil {
		t.Error("expected error for malformed key")
	}

	if _, err := Fingerprint([]byte("nope")); err == nil {
		t.Error("expected error for malformed public key")
	}
}

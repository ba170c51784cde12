package jwtx

import (
	"bytes"
	"encoding/pem"
	"errors"
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"sync"

	"github.com/aussiebroadwan/storefront/pkg/cryptox"
)

// KeyManager manages the JWT signing and verification keys for an instance.
// Signing keys are selected randomly, every loaded key verifies.
type KeyManager struct {
	Verifier Verifier
	KeySet   *KeySet

	signers []Signer
	mu      sync.RWMutex
}

// KeyManagerOptions configures the KeyManager for a specific use case.
type KeyManagerOptions struct {
	// Issuer is the issuer claim (iss) that will be validated in tokens.
	Issuer string

	// NumKeys specifies how many signing keys to generate.
	// Defaults to 1 if not specified, capped at 10.
	NumKeys int
}

func (o KeyManagerOptions) numKeys() int {
	switch {
	case o.NumKeys <= 0:
		return 1
	case o.NumKeys > 10:
		return 10
	default:
		return o.NumKeys
	}
}

// NewEphemeralKeyManager creates a new KeyManager with ephemeral keys. The
// keys only exist in memory, so every issued token becomes invalid when the
// process restarts.
func NewEphemeralKeyManager(opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	km := newKeyManager(opts.Issuer)
	for i := 0; i < opts.numKeys(); i++ {
		pemBytes, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, fmt.Errorf("jwtx: failed to generate signer %d: %w", i+1, err)
		}
		kid, err := generateRandomKeyID()
		if err != nil {
			return nil, err
		}
		signer, err := NewSignerEdDSA(kid, pemBytes)
		if err != nil {
			return nil, err
		}
		if err := km.AddSigner(signer); err != nil {
			return nil, err
		}
	}

	return km, nil
}

// NewFileKeyManager loads PEM encoded Ed25519 keys from path, generating and
// writing them first if the file does not exist. Key ids are derived from the
// public key so tokens stay verifiable across restarts.
func NewFileKeyManager(path string, opts KeyManagerOptions) (*KeyManager, error) {
	if opts.Issuer == "" {
		return nil, fmt.Errorf("jwtx: Issuer is required")
	}

	pemBytes, err := loadOrGenerateKeyFile(path, opts.numKeys())
	if err != nil {
		return nil, fmt.Errorf("jwtx: load key file: %w", err)
	}

	km := newKeyManager(opts.Issuer)
	rest := pemBytes
	for {
		var block *pem.Block
		block, rest = pem.Decode(rest)
		if block == nil {
			break
		}

		keyPEM := pem.EncodeToMemory(block)
		signer, err := NewSignerEdDSA("", keyPEM)
		if err != nil {
			return nil, err
		}
		signer.kid = deriveKeyID(signer)
		if err := km.AddSigner(signer); err != nil {
			return nil, err
		}
	}

	if km.NumSigners() == 0 {
		return nil, errors.New("jwtx: key file contains no keys")
	}
	return km, nil
}

func newKeyManager(issuer string) *KeyManager {
	keyset := NewKeySet()
	return &KeyManager{
		Verifier: NewVerifierEdDSA(keyset, issuer),
		KeySet:   keyset,
	}
}

// IsReady returns true if the KeyManager has valid keys loaded.
func (km *KeyManager) IsReady() bool {
	return km.KeySet.IsReady()
}

// GetSigner returns a randomly selected signer from the available signing keys.
func (km *KeyManager) GetSigner() Signer {
	km.mu.RLock()
	defer km.mu.RUnlock()

	switch len(km.signers) {
	case 0:
		return nil
	case 1:
		return km.signers[0]
	default:
		return km.signers[rand.IntN(len(km.signers))]
	}
}

// NumSigners returns the number of active signing keys.
func (km *KeyManager) NumSigners() int {
	km.mu.RLock()
	defer km.mu.RUnlock()
	return len(km.signers)
}

// AddSigner adds a new signing key to both the signers and the KeySet.
func (km *KeyManager) AddSigner(signer Signer) error {
	if signer == nil {
		return fmt.Errorf("signer cannot be nil")
	}

	km.mu.Lock()
	defer km.mu.Unlock()

	if err := km.KeySet.AddSigner(signer); err != nil {
		return fmt.Errorf("failed to add signer to keyset: %w", err)
	}
	km.signers = append(km.signers, signer)
	return nil
}

func loadOrGenerateKeyFile(path string, numKeys int) ([]byte, error) {
	path = filepath.Clean(path)

	data, err := os.ReadFile(path)
	if err == nil {
		return data, nil
	}
	if !os.IsNotExist(err) {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0750); err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	for range numKeys {
		key, err := cryptox.GenerateEd25519Key()
		if err != nil {
			return nil, err
		}
		buf.Write(key)
	}

	if err := os.WriteFile(path, buf.Bytes(), 0600); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// deriveKeyID is "storefront-" followed by a prefix of the public key fingerprint.
func deriveKeyID(s Signer) string {
	return "storefront-" + cryptox.FingerprintToken(string(s.PublicKey()))[:16]
}

// generateRandomKeyID creates a random key identifier using cryptographic entropy.
func generateRandomKeyID() (string, error) {
	token, err := cryptox.GenerateToken(cryptox.TokenSize128)
	if err != nil {
		return "", fmt.Errorf("failed to generate random key ID: %w", err)
	}
	return fmt.Sprintf("storefront-%s", token), nil
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/pbkdf2"

	"github.com/morganforge/sage-tui/internal/util"
)

// =============================================================================
// CREDENTIAL STORE
// =============================================================================

// The session cookie is the only credential this client holds. It is
// persisted AES-256-GCM encrypted; the key is derived with
// PBKDF2-SHA-256 from a per-install random secret kept mode 0600
// alongside the ciphertext.

const (
	credNonceSize  = 12
	credKeySize    = 32
	credSaltSize   = 32
	credIterations = 600000
)

// ErrNoStoredSession indicates no saved session cookie exists.
var ErrNoStoredSession = errors.New("no stored session")

// CredStore persists the session cookie encrypted at rest.
type CredStore struct {
	// Dir holds session.cred, session.salt and the install secret.
	Dir string
}

// NewCredStore creates a credential store rooted at dir.
func NewCredStore(dir string) *CredStore {
	return &CredStore{Dir: dir}
}

// Save encrypts and stores the session cookie.
func (s *CredStore) Save(cookie string) error {
	secret, err := s.installSecret()
	if err != nil {
		return err
	}

	salt := make([]byte, credSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return err
	}
	key := pbkdf2.Key(secret, salt, credIterations, credKeySize, sha256.New)

	block, err := aes.NewCipher(key)
	if err != nil {
		return err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return err
	}

	nonce := make([]byte, credNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return err
	}
	sealed := aead.Seal(nonce, nonce, []byte(cookie), nil)

	if err := util.AtomicWriteFile(s.saltPath(), salt, 0600); err != nil {
		return err
	}
	return util.AtomicWriteFile(s.credPath(),
		[]byte(base64.StdEncoding.EncodeToString(sealed)), 0600)
}

// Load decrypts and returns the stored session cookie.
func (s *CredStore) Load() (string, error) {
	encoded, err := os.ReadFile(s.credPath())
	if err != nil {
		if os.IsNotExist(err) {
			return "", ErrNoStoredSession
		}
		return "", err
	}
	salt, err := os.ReadFile(s.saltPath())
	if err != nil {
		return "", ErrNoStoredSession
	}
	secret, err := s.installSecret()
	if err != nil {
		return "", err
	}

	sealed, err := base64.StdEncoding.DecodeString(string(encoded))
	if err != nil || len(sealed) < credNonceSize {
		return "", ErrNoStoredSession
	}

	key := pbkdf2.Key(secret, salt, credIterations, credKeySize, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return "", err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return "", err
	}

	plain, err := aead.Open(nil, sealed[:credNonceSize], sealed[credNonceSize:], nil)
	if err != nil {
		// Tampered or key rotated; treat as absent.
		return "", ErrNoStoredSession
	}
	return string(plain), nil
}

// Clear removes any stored session.
func (s *CredStore) Clear() {
	os.Remove(s.credPath())
	os.Remove(s.saltPath())
}

// installSecret returns the per-install random secret, creating it on
// first use.
func (s *CredStore) installSecret() ([]byte, error) {
	path := filepath.Join(s.Dir, ".keymat")
	if data, err := os.ReadFile(path); err == nil && len(data) == credKeySize {
		return data, nil
	}

	secret := make([]byte, credKeySize)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, err
	}
	if err := util.AtomicWriteFile(path, secret, 0600); err != nil {
		return nil, err
	}
	return secret, nil
}

func (s *CredStore) credPath() string {
	return filepath.Join(s.Dir, "session.cred")
}

func (s *CredStore) saltPath() string {
	return filepath.Join(s.Dir, "session.salt")
}

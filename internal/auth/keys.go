// Package auth hashes passwords and issues the encrypted access tokens that
// carry a user's session.
package auth

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// KeySize is the PASETO v4 local key length in bytes.
const KeySize = 32

// KeyFile is the name of the key file under the metadata directory.
const KeyFile = "auth.key"

// LoadOrGenerateKey reads <dir>/auth.key (hex) or creates it with a fresh
// random key. The file is written 0600.
func LoadOrGenerateKey(dir string) ([]byte, error) {
	path := filepath.Join(dir, KeyFile)

	raw, err := os.ReadFile(path) //#nosec G304 -- path is built from the configured metadata dir
	switch {
	case err == nil:
		return DecodeKey(strings.TrimSpace(string(raw)))
	case !errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("read auth key: %w", err)
	}

	key := make([]byte, KeySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("generate auth key: %w", err)
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("create metadata directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(hex.EncodeToString(key)), 0o600); err != nil {
		return nil, fmt.Errorf("save auth key: %w", err)
	}
	return key, nil
}

// DecodeKey parses a hex-encoded key, as found in auth.key or
// AUTH_ACCESS_TOKEN_KEY.
func DecodeKey(keyHex string) ([]byte, error) {
	if len(keyHex) != hex.EncodedLen(KeySize) {
		return nil, fmt.Errorf("auth key must be %d hex characters, got %d", hex.EncodedLen(KeySize), len(keyHex))
	}
	key, err := hex.DecodeString(keyHex)
	if err != nil {
		return nil, fmt.Errorf("auth key is not valid hex: %w", err)
	}
	return key, nil
}

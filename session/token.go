package session

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// ErrNoToken is an exported constant or variable used by the route guard engine.
var ErrNoToken = errors.New("no cached token")

// ErrTokenCacheCorrupt is an exported constant or variable used by the route guard engine.
// A sealed token file that fails to authenticate (truncated, tampered, or sealed
// with a different passphrase) wraps it.
var ErrTokenCacheCorrupt = errors.New("token cache corrupt")

// TokenCache persists the session token between application runs. Load returns
// [ErrNoToken] when nothing is cached; Clear on an empty cache is a no-op.
type TokenCache interface {
	Load(ctx context.Context) (string, error)
	Store(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MemoryTokenCache keeps the token in process memory. It is the default cache and
// suits tests and applications that do not survive restarts.
type MemoryTokenCache struct {
	mu    sync.Mutex
	token string
	set   bool
}

// NewMemoryTokenCache returns an empty in-memory cache.
func NewMemoryTokenCache() *MemoryTokenCache {
	return &MemoryTokenCache{}
}

// Load returns the cached token or [ErrNoToken].
func (m *MemoryTokenCache) Load(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.set {
		return "", ErrNoToken
	}
	return m.token, nil
}

// Store replaces the cached token.
func (m *MemoryTokenCache) Store(_ context.Context, token string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = token
	m.set = true
	return nil
}

// Clear drops the cached token.
func (m *MemoryTokenCache) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.token = ""
	m.set = false
	return nil
}

const (
	sealSaltLength  = 16
	sealKeyLength   = 32
	sealMemoryKB    = 64 * 1024
	sealTime        = 1
	sealParallelism = 4
)

// FileTokenCache persists the token to a single file with 0600 permissions.
//
// With an empty passphrase the token is written as plain text. With a passphrase
// the token is sealed with XChaCha20-Poly1305 under an argon2id-derived key; the
// random salt and nonce are stored in front of the ciphertext, so the file is
// self-contained and every Store produces a fresh sealing.
//
//	Docs: docs/session.md
type FileTokenCache struct {
	path       string
	passphrase string

	mu sync.Mutex
}

// NewFileTokenCache creates a [FileTokenCache] at path. passphrase may be empty.
func NewFileTokenCache(path, passphrase string) *FileTokenCache {
	return &FileTokenCache{path: path, passphrase: passphrase}
}

// Load reads and, when sealed, opens the cached token.
//
// Load may return an error when input validation, dependency calls, or security checks fail.
func (f *FileTokenCache) Load(_ context.Context) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	data, err := os.ReadFile(f.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return "", ErrNoToken
		}
		return "", err
	}
	if len(data) == 0 {
		return "", ErrNoToken
	}

	if f.passphrase == "" {
		return string(data), nil
	}

	token, err := openSealed(data, f.passphrase)
	if err != nil {
		return "", err
	}
	return token, nil
}

// Store writes the token, creating parent directories as needed.
//
// Store may return an error when input validation, dependency calls, or security checks fail.
func (f *FileTokenCache) Store(_ context.Context, token string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	data := []byte(token)
	if f.passphrase != "" {
		sealed, err := seal(token, f.passphrase)
		if err != nil {
			return err
		}
		data = sealed
	}

	if dir := filepath.Dir(f.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return err
		}
	}

	return os.WriteFile(f.path, data, 0o600)
}

// Clear removes the token file. A missing file is not an error.
func (f *FileTokenCache) Clear(_ context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := os.Remove(f.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}

func sealKey(passphrase string, salt []byte) []byte {
	return argon2.IDKey([]byte(passphrase), salt, sealTime, sealMemoryKB, sealParallelism, sealKeyLength)
}

func seal(token, passphrase string) ([]byte, error) {
	salt := make([]byte, sealSaltLength)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return nil, err
	}

	aead, err := chacha20poly1305.NewX(sealKey(passphrase, salt))
	if err != nil {
		return nil, err
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}

	out := make([]byte, 0, len(salt)+len(nonce)+len(token)+aead.Overhead())
	out = append(out, salt...)
	out = append(out, nonce...)
	out = aead.Seal(out, nonce, []byte(token), nil)
	return out, nil
}

func openSealed(data []byte, passphrase string) (string, error) {
	if len(data) < sealSaltLength {
		return "", fmt.Errorf("%w: short payload", ErrTokenCacheCorrupt)
	}

	salt := data[:sealSaltLength]
	rest := data[sealSaltLength:]

	aead, err := chacha20poly1305.NewX(sealKey(passphrase, salt))
	if err != nil {
		return "", err
	}
	if len(rest) < aead.NonceSize() {
		return "", fmt.Errorf("%w: short payload", ErrTokenCacheCorrupt)
	}

	nonce := rest[:aead.NonceSize()]
	ciphertext := rest[aead.NonceSize():]

	plain, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrTokenCacheCorrupt, err)
	}
	return string(plain), nil
}

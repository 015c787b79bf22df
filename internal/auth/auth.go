package auth

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"sync"
)

// ErrMissingKey is returned when an empty key is validated or created.
var ErrMissingKey = errors.New("missing key")

// APIKeyStore validates API keys and provides a health ping.
type APIKeyStore interface {
	Validate(ctx context.Context, key string) (bool, error)
	Ping(ctx context.Context) error
}

// APIKeyCreator inserts or updates API keys for the admin and signup handlers.
type APIKeyCreator interface {
	Create(ctx context.Context, key string, active bool, owner string) error
}

// NewKey returns a random 32-byte hex key.
func NewKey() (string, error) {
	var b [32]byte
	if _, err := rand.Read(b[:]); err != nil {
		return "", err
	}
	return hex.EncodeToString(b[:]), nil
}

// HashPrefix returns the first 8 hex chars of SHA-256(key) for logging.
func HashPrefix(key string) string {
	sum := sha256.Sum256([]byte(key))
	return hex.EncodeToString(sum[:4])
}

// MemoryAPIKeyStore keeps keys in process. It backs the server when Mongo is
// disabled and doubles as a test fake.
type MemoryAPIKeyStore struct {
	mu   sync.RWMutex
	keys map[string]bool
}

// NewMemoryAPIKeyStore returns a store seeded with the given active keys.
func NewMemoryAPIKeyStore(active ...string) *MemoryAPIKeyStore {
	s := &MemoryAPIKeyStore{keys: make(map[string]bool, len(active))}
	for _, k := range active {
		if k != "" {
			s.keys[k] = true
		}
	}
	return s
}

func (s *MemoryAPIKeyStore) Validate(_ context.Context, key string) (bool, error) {
	if key == "" {
		return false, ErrMissingKey
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.keys[key], nil
}

func (s *MemoryAPIKeyStore) Ping(context.Context) error { return nil }

func (s *MemoryAPIKeyStore) Create(_ context.Context, key string, active bool, _ string) error {
	if key == "" {
		return ErrMissingKey
	}
	s.mu.Lock()
	s.keys[key] = active
	s.mu.Unlock()
	return nil
}

type ctxKey struct{}

// WithKeyHash stores the hash prefix of the caller's API key in ctx.
func WithKeyHash(ctx context.Context, hp string) context.Context {
	return context.WithValue(ctx, ctxKey{}, hp)
}

// KeyHashFrom returns the hash prefix stored by WithKeyHash, or "".
func KeyHashFrom(ctx context.Context) string {
	hp, _ := ctx.Value(ctxKey{}).(string)
	return hp
}

// Package keystore holds the KeyPairs a client is willing to sign with,
// keyed by account ID, with at most one key per account (§4.3).
package keystore

import (
	"errors"
	"sync"

	"github.com/nearclient/near-go/pkg/keys"
)

// ErrNotFound is returned by Get/Remove when no key is stored for an
// account ID.
var ErrNotFound = errors.New("keystore: no key for account")

// KeyStore is the capability a signer-side component needs to resolve an
// account ID to a KeyPair it can sign with.
type KeyStore interface {
	// Add stores kp for accountID, replacing any key already stored there.
	Add(accountID string, kp keys.KeyPair) error
	// Get returns the KeyPair stored for accountID, or ErrNotFound.
	Get(accountID string) (keys.KeyPair, error)
	// Remove deletes the key stored for accountID, if any.
	Remove(accountID string) error
	// List returns the account IDs currently holding a key, in no
	// particular order.
	List() ([]string, error)
}

// InMemory is a KeyStore backed by a map guarded by a mutex; safe for
// concurrent use by multiple signer goroutines.
type InMemory struct {
	mu   sync.RWMutex
	keys map[string]keys.KeyPair
}

// NewInMemory returns an empty InMemory KeyStore.
func NewInMemory() *InMemory {
	return &InMemory{keys: make(map[string]keys.KeyPair)}
}

// Add implements KeyStore. A second Add for the same accountID silently
// overwrites the first, matching the "at most one key per account"
// invariant: the store holds whichever key was added last.
func (s *InMemory) Add(accountID string, kp keys.KeyPair) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.keys[accountID] = kp
	return nil
}

// Get implements KeyStore.
func (s *InMemory) Get(accountID string) (keys.KeyPair, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	kp, ok := s.keys[accountID]
	if !ok {
		return nil, ErrNotFound
	}
	return kp, nil
}

// Remove implements KeyStore.
func (s *InMemory) Remove(accountID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.keys[accountID]; !ok {
		return ErrNotFound
	}
	delete(s.keys, accountID)
	return nil
}

// List implements KeyStore.
func (s *InMemory) List() ([]string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]string, 0, len(s.keys))
	for id := range s.keys {
		out = append(out, id)
	}
	return out, nil
}

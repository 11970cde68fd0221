// Package noncemgr allocates monotonically increasing nonces per
// (accountId, publicKey), fetching the on-chain access key nonce at most
// once per key and single-flighting concurrent callers onto that one
// fetch (§4.4).
package noncemgr

import (
	"context"
	"fmt"
	"sync"

	lru "github.com/hashicorp/golang-lru"

	"github.com/nearclient/near-go/pkg/keys"
)

// DefaultCacheSize bounds how many (accountId, publicKey) entries the
// manager keeps resident before evicting the least recently used.
const DefaultCacheSize = 4096

// Fetcher retrieves the current on-chain nonce of an access key. It is
// normally backed by an rpcclient.Client's GetAccessKey call.
type Fetcher func(ctx context.Context, accountID string, pub *keys.PublicKey) (uint64, error)

type entry struct {
	mu      sync.Mutex
	fetched bool
	next    uint64
}

// Manager is a single-flight, LRU-bounded nonce allocator.
type Manager struct {
	fetch Fetcher
	cache *lru.Cache

	// mu guards the check-then-create sequence in entryFor so two
	// concurrent callers racing on a cold key can't each install their
	// own *entry and independently single-flight a fetch against it.
	mu sync.Mutex
}

// New returns a Manager that calls fetch at most once per key to learn
// the starting nonce, then allocates subsequent nonces in memory.
func New(fetch Fetcher) (*Manager, error) {
	cache, err := lru.New(DefaultCacheSize)
	if err != nil {
		return nil, fmt.Errorf("noncemgr: new lru cache: %w", err)
	}
	return &Manager{fetch: fetch, cache: cache}, nil
}

func key(accountID string, pub *keys.PublicKey) string {
	return accountID + ":" + pub.String()
}

// entryFor returns the single *entry for (accountID, pub), creating one on
// a cold key. The check and the create happen under m.mu as one atomic
// section: without it, two goroutines racing on a cold key could each
// build and Add their own *entry, each then single-flighting (and
// duplicating) a fetch under their own object's lock instead of one
// shared lock, breaking §4.4's single-flight guarantee.
func (m *Manager) entryFor(accountID string, pub *keys.PublicKey) *entry {
	k := key(accountID, pub)

	m.mu.Lock()
	defer m.mu.Unlock()

	if v, ok := m.cache.Get(k); ok {
		return v.(*entry)
	}
	e := &entry{}
	m.cache.Add(k, e)
	return e
}

// Next returns the next nonce to use for (accountID, publicKey). The
// first call for a given key fetches the account's current on-chain
// access key nonce (single-flighted across concurrent callers) and
// returns fetched+1; subsequent calls increment the in-memory counter
// without contacting the network.
func (m *Manager) Next(ctx context.Context, accountID string, pub *keys.PublicKey) (uint64, error) {
	e := m.entryFor(accountID, pub)
	e.mu.Lock()
	defer e.mu.Unlock()

	if !e.fetched {
		current, err := m.fetch(ctx, accountID, pub)
		if err != nil {
			return 0, fmt.Errorf("noncemgr: fetch nonce: %w", err)
		}
		e.next = current + 1
		e.fetched = true
		return e.next, nil
	}

	e.next++
	return e.next, nil
}

// Invalidate drops cached state for (accountID, publicKey), forcing the
// next Next call to refetch from the network. Callers do this after an
// InvalidNonceError or AccessKeyDoesNotExistError response.
func (m *Manager) Invalidate(accountID string, pub *keys.PublicKey) {
	m.cache.Remove(key(accountID, pub))
}

// Clear drops all cached state.
func (m *Manager) Clear() {
	m.cache.Purge()
}

package noncemgr

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/nearclient/near-go/pkg/keys"
)

func testPub(t *testing.T) *keys.PublicKey {
	t.Helper()
	kp, err := keys.Generate(keys.Ed25519)
	require.NoError(t, err)
	return kp.PublicKey()
}

func TestNextFetchesOnceThenIncrementsInMemory(t *testing.T) {
	pub := testPub(t)
	calls := 0
	m, err := New(func(ctx context.Context, accountID string, p *keys.PublicKey) (uint64, error) {
		calls++
		return 10, nil
	})
	require.NoError(t, err)

	n1, err := m.Next(context.Background(), "alice.near", pub)
	require.NoError(t, err)
	require.Equal(t, uint64(11), n1)

	n2, err := m.Next(context.Background(), "alice.near", pub)
	require.NoError(t, err)
	require.Equal(t, uint64(12), n2)

	require.Equal(t, 1, calls)
}

func TestNextSingleFlightsConcurrentFirstCalls(t *testing.T) {
	pub := testPub(t)
	var calls int
	var mu sync.Mutex
	m, err := New(func(ctx context.Context, accountID string, p *keys.PublicKey) (uint64, error) {
		mu.Lock()
		calls++
		mu.Unlock()
		return 0, nil
	})
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([]uint64, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			n, err := m.Next(context.Background(), "alice.near", pub)
			require.NoError(t, err)
			results[i] = n
		}(i)
	}
	wg.Wait()

	seen := make(map[uint64]bool)
	for _, n := range results {
		require.False(t, seen[n], "nonce %d allocated twice", n)
		seen[n] = true
	}
}

func TestInvalidateForcesRefetch(t *testing.T) {
	pub := testPub(t)
	calls := 0
	m, err := New(func(ctx context.Context, accountID string, p *keys.PublicKey) (uint64, error) {
		calls++
		return uint64(calls) * 100, nil
	})
	require.NoError(t, err)

	n1, err := m.Next(context.Background(), "alice.near", pub)
	require.NoError(t, err)
	require.Equal(t, uint64(101), n1)

	m.Invalidate("alice.near", pub)

	n2, err := m.Next(context.Background(), "alice.near", pub)
	require.NoError(t, err)
	require.Equal(t, uint64(201), n2)
	require.Equal(t, 2, calls)
}

func TestClearPurgesAllEntries(t *testing.T) {
	pub := testPub(t)
	calls := 0
	m, err := New(func(ctx context.Context, accountID string, p *keys.PublicKey) (uint64, error) {
		calls++
		return 0, nil
	})
	require.NoError(t, err)

	_, err = m.Next(context.Background(), "alice.near", pub)
	require.NoError(t, err)
	m.Clear()
	_, err = m.Next(context.Background(), "alice.near", pub)
	require.NoError(t, err)
	require.Equal(t, 2, calls)
}

func TestNextPropagatesFetchError(t *testing.T) {
	pub := testPub(t)
	wantErr := errors.New("boom")
	m, err := New(func(ctx context.Context, accountID string, p *keys.PublicKey) (uint64, error) {
		return 0, wantErr
	})
	require.NoError(t, err)

	_, err = m.Next(context.Background(), "alice.near", pub)
	require.ErrorIs(t, err, wantErr)
}

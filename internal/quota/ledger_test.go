package quota

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReserveAndRelease(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.CreateAccount(1, 1000)
	ctx := context.Background()

	require.NoError(t, ledger.Reserve(ctx, 1, 400))
	used, max, err := ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(400), used)
	assert.Equal(t, int64(1000), max)

	require.NoError(t, ledger.Release(ctx, 1, 150))
	used, _, err = ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(250), used)
}

func TestReserveOverLimit(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.CreateAccount(1, 1000)
	ctx := context.Background()

	require.NoError(t, ledger.Reserve(ctx, 1, 900))

	err := ledger.Reserve(ctx, 1, 200)
	assert.ErrorIs(t, err, ErrQuotaExceeded)

	// the failed reserve must not change the balance
	used, _, err := ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(900), used)

	// filling the quota exactly is allowed
	assert.NoError(t, ledger.Reserve(ctx, 1, 100))
}

func TestReleaseClampsAtZero(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.CreateAccount(1, 1000)
	ctx := context.Background()

	require.NoError(t, ledger.Reserve(ctx, 1, 100))
	require.NoError(t, ledger.Release(ctx, 1, 500))

	used, _, err := ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)
}

func TestUnknownAccount(t *testing.T) {
	ledger := NewMemoryLedger()
	ctx := context.Background()

	assert.ErrorIs(t, ledger.Reserve(ctx, 42, 100), ErrAccountNotFound)
	assert.ErrorIs(t, ledger.Release(ctx, 42, 100), ErrAccountNotFound)
	_, _, err := ledger.Balance(ctx, 42)
	assert.ErrorIs(t, err, ErrAccountNotFound)
}

func TestConcurrentReserveSingleWinner(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.CreateAccount(1, 1000)
	ctx := context.Background()

	// two reservations of 600 against a 1000 limit: exactly one wins
	var wg sync.WaitGroup
	errs := make([]error, 2)
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			errs[i] = ledger.Reserve(ctx, 1, 600)
		}(i)
	}
	wg.Wait()

	failures := 0
	for _, err := range errs {
		if err != nil {
			assert.ErrorIs(t, err, ErrQuotaExceeded)
			failures++
		}
	}
	assert.Equal(t, 1, failures)

	used, _, err := ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(600), used)
}

func TestConcurrentReserveReleasePairs(t *testing.T) {
	ledger := NewMemoryLedger()
	ledger.CreateAccount(1, 1<<40)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 20; j++ {
				if err := ledger.Reserve(ctx, 1, 10); err == nil {
					ledger.Release(ctx, 1, 10)
				}
			}
		}()
	}
	wg.Wait()

	used, _, err := ledger.Balance(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, int64(0), used)
}

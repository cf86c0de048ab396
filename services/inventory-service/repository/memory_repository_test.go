package repository

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seeded(t *testing.T, quantity int) (*MemoryInventoryRepository, uuid.UUID) {
	t.Helper()
	repo := NewMemoryInventoryRepository()
	productID := uuid.New()
	require.NoError(t, repo.InitOrReset(context.Background(), productID, quantity))
	return repo, productID
}

func TestReserveReleaseRoundTrip(t *testing.T) {
	repo, productID := seeded(t, 10)
	ctx := context.Background()

	require.NoError(t, repo.Reserve(ctx, productID, 4))
	inv, err := repo.Get(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 10, inv.Quantity)
	assert.Equal(t, 4, inv.Reserved)
	assert.Equal(t, 6, inv.Available())

	require.NoError(t, repo.Release(ctx, productID, 4))
	inv, err = repo.Get(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 0, inv.Reserved)
	assert.Equal(t, 10, inv.Available())
}

func TestReserve_InsufficientAvailable(t *testing.T) {
	repo, productID := seeded(t, 5)
	ctx := context.Background()

	require.NoError(t, repo.Reserve(ctx, productID, 3))
	// Only 2 available now; quantity alone would cover it.
	err := repo.Reserve(ctx, productID, 3)
	assert.ErrorIs(t, err, ErrInsufficientStock)

	inv, _ := repo.Get(ctx, productID)
	assert.Equal(t, 3, inv.Reserved)
}

func TestRelease_MoreThanReserved(t *testing.T) {
	repo, productID := seeded(t, 5)
	ctx := context.Background()

	require.NoError(t, repo.Reserve(ctx, productID, 2))
	err := repo.Release(ctx, productID, 3)
	assert.ErrorIs(t, err, ErrInvalidState)

	inv, _ := repo.Get(ctx, productID)
	assert.Equal(t, 2, inv.Reserved)
}

func TestConsume_DecrementsBothCounters(t *testing.T) {
	repo, productID := seeded(t, 10)
	ctx := context.Background()

	require.NoError(t, repo.Reserve(ctx, productID, 4))
	require.NoError(t, repo.Consume(ctx, productID, 4))

	inv, err := repo.Get(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 6, inv.Quantity)
	assert.Equal(t, 0, inv.Reserved)
	assert.Equal(t, 6, inv.Available())
}

func TestConsume_WithoutReservation(t *testing.T) {
	repo, productID := seeded(t, 10)

	err := repo.Consume(context.Background(), productID, 1)
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestInitOrReset_ClearsReservations(t *testing.T) {
	repo, productID := seeded(t, 10)
	ctx := context.Background()

	require.NoError(t, repo.Reserve(ctx, productID, 5))
	require.NoError(t, repo.InitOrReset(ctx, productID, 20))

	inv, err := repo.Get(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, 20, inv.Quantity)
	assert.Equal(t, 0, inv.Reserved)
}

func TestUnknownProduct(t *testing.T) {
	repo := NewMemoryInventoryRepository()
	ctx := context.Background()
	productID := uuid.New()

	assert.ErrorIs(t, repo.Reserve(ctx, productID, 1), ErrNotFound)
	assert.ErrorIs(t, repo.Release(ctx, productID, 1), ErrNotFound)
	assert.ErrorIs(t, repo.Consume(ctx, productID, 1), ErrNotFound)
	assert.ErrorIs(t, repo.AddStock(ctx, productID, 1), ErrNotFound)
	_, err := repo.Get(ctx, productID)
	assert.ErrorIs(t, err, ErrNotFound)
}

// Concurrent reservations against limited stock must never oversell: exactly
// quantity units can be reserved, every other attempt fails cleanly.
func TestConcurrentReserve_NoOversell(t *testing.T) {
	const stock = 50
	const workers = 200

	repo, productID := seeded(t, stock)
	ctx := context.Background()

	var wg sync.WaitGroup
	var mu sync.Mutex
	succeeded := 0

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Reserve(ctx, productID, 1); err == nil {
				mu.Lock()
				succeeded++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, stock, succeeded)
	inv, err := repo.Get(ctx, productID)
	require.NoError(t, err)
	assert.Equal(t, stock, inv.Reserved)
	assert.Equal(t, 0, inv.Available())
}

// Mixed reserve/release traffic must keep 0 <= reserved <= quantity.
func TestConcurrentReserveRelease_InvariantHolds(t *testing.T) {
	repo, productID := seeded(t, 30)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := repo.Reserve(ctx, productID, 2); err == nil {
				_ = repo.Release(ctx, productID, 2)
			}
		}()
	}
	wg.Wait()

	inv, err := repo.Get(ctx, productID)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, inv.Reserved, 0)
	assert.LessOrEqual(t, inv.Reserved, inv.Quantity)
	assert.Equal(t, 0, inv.Reserved)
	assert.Equal(t, 30, inv.Quantity)
}

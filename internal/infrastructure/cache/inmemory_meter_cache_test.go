package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/verone/backend/internal/domain/storage"
)

func testPeriod(t *testing.T) storage.Period {
	t.Helper()
	start := time.Date(2026, 6, 1, 0, 0, 0, 0, time.UTC)
	period, err := storage.NewPeriod(start, start.AddDate(0, 1, 0))
	require.NoError(t, err)
	return period
}

func testResult() storage.WeightedAverageResult {
	return storage.WeightedAverageResult{
		AverageM3:         decimal.NewFromInt(10),
		BillableAverageM3: decimal.NewFromInt(8),
		TotalM3Days:       decimal.NewFromInt(300),
		BillableM3Days:    decimal.NewFromInt(240),
		DaysInPeriod:      decimal.NewFromInt(30),
	}
}

func TestInMemoryMeterCache_GetSet(t *testing.T) {
	cache := NewInMemoryMeterCache(time.Hour)
	defer cache.Close()

	ctx := context.Background()
	period := testPeriod(t)
	ownerID := uuid.New()

	t.Run("miss on empty cache", func(t *testing.T) {
		result, ok := cache.Get(ctx, storage.OwnerTypeEnseigne, ownerID, period)
		assert.False(t, ok)
		assert.Nil(t, result)
	})

	t.Run("hit after set", func(t *testing.T) {
		cache.Set(ctx, storage.OwnerTypeEnseigne, ownerID, period, testResult())

		result, ok := cache.Get(ctx, storage.OwnerTypeEnseigne, ownerID, period)
		require.True(t, ok)
		require.NotNil(t, result)
		assert.True(t, result.AverageM3.Equal(decimal.NewFromInt(10)))
		assert.True(t, result.BillableM3Days.Equal(decimal.NewFromInt(240)))
	})

	t.Run("different owner misses", func(t *testing.T) {
		result, ok := cache.Get(ctx, storage.OwnerTypeEnseigne, uuid.New(), period)
		assert.False(t, ok)
		assert.Nil(t, result)
	})

	t.Run("different owner type misses", func(t *testing.T) {
		result, ok := cache.Get(ctx, storage.OwnerTypeOrganisation, ownerID, period)
		assert.False(t, ok)
		assert.Nil(t, result)
	})

	t.Run("different period misses", func(t *testing.T) {
		shifted, err := storage.NewPeriod(period.Start.AddDate(0, 1, 0), period.End.AddDate(0, 1, 0))
		require.NoError(t, err)

		result, ok := cache.Get(ctx, storage.OwnerTypeEnseigne, ownerID, shifted)
		assert.False(t, ok)
		assert.Nil(t, result)
	})
}

func TestInMemoryMeterCache_Expiration(t *testing.T) {
	cache := NewInMemoryMeterCache(10 * time.Millisecond)
	defer cache.Close()

	ctx := context.Background()
	period := testPeriod(t)
	ownerID := uuid.New()

	cache.Set(ctx, storage.OwnerTypeEnseigne, ownerID, period, testResult())

	_, ok := cache.Get(ctx, storage.OwnerTypeEnseigne, ownerID, period)
	require.True(t, ok)

	// Wait for expiration
	time.Sleep(20 * time.Millisecond)

	_, ok = cache.Get(ctx, storage.OwnerTypeEnseigne, ownerID, period)
	assert.False(t, ok, "expired entry should miss")
}

func TestInMemoryMeterCache_ReturnsCopy(t *testing.T) {
	cache := NewInMemoryMeterCache(time.Hour)
	defer cache.Close()

	ctx := context.Background()
	period := testPeriod(t)
	ownerID := uuid.New()

	cache.Set(ctx, storage.OwnerTypeEnseigne, ownerID, period, testResult())

	first, ok := cache.Get(ctx, storage.OwnerTypeEnseigne, ownerID, period)
	require.True(t, ok)
	first.AverageM3 = decimal.NewFromInt(999)

	second, ok := cache.Get(ctx, storage.OwnerTypeEnseigne, ownerID, period)
	require.True(t, ok)
	assert.True(t, second.AverageM3.Equal(decimal.NewFromInt(10)), "cached value should not be mutated through returned pointer")
}

func TestInMemoryMeterCache_Size(t *testing.T) {
	cache := NewInMemoryMeterCache(time.Hour)
	defer cache.Close()

	ctx := context.Background()
	period := testPeriod(t)

	assert.Equal(t, 0, cache.Size())

	cache.Set(ctx, storage.OwnerTypeEnseigne, uuid.New(), period, testResult())
	cache.Set(ctx, storage.OwnerTypeOrganisation, uuid.New(), period, testResult())

	assert.Equal(t, 2, cache.Size())
}

func TestInMemoryMeterCache_Close_Idempotent(t *testing.T) {
	cache := NewInMemoryMeterCache(time.Hour)

	require.NoError(t, cache.Close())
	require.NoError(t, cache.Close())
}

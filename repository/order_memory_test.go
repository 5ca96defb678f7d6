package repository

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kraken-commerce/backend/models"
)

func testOrder(userName, orderDate string) *models.Order {
	return &models.Order{
		UserName:   userName,
		OrderDate:  orderDate,
		EventID:    "evt-" + orderDate,
		TotalPrice: decimal.RequireFromString("25.00"),
	}
}

func TestMemoryOrderStorePutRejectsDuplicateKey(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testOrder("swn", "2026-01-15T10:00:00Z#000001")))
	err := store.Put(ctx, testOrder("swn", "2026-01-15T10:00:00Z#000001"))
	assert.ErrorIs(t, err, ErrOrderExists)

	// Same date under another customer is a different key
	require.NoError(t, store.Put(ctx, testOrder("abc", "2026-01-15T10:00:00Z#000001")))
}

func TestMemoryOrderStoreListFilters(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testOrder("swn", "2026-01-15T10:00:00Z#000001")))
	require.NoError(t, store.Put(ctx, testOrder("swn", "2026-01-15T11:00:00Z#000002")))
	require.NoError(t, store.Put(ctx, testOrder("swn", "2026-01-16T09:00:00Z#000003")))
	require.NoError(t, store.Put(ctx, testOrder("abc", "2026-01-15T10:00:00Z#000004")))

	all, err := store.List(ctx, "swn", OrderFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 3)

	day, err := store.List(ctx, "swn", OrderFilter{OrderDate: "2026-01-15", Prefix: true})
	require.NoError(t, err)
	assert.Len(t, day, 2)

	exact, err := store.List(ctx, "swn", OrderFilter{OrderDate: "2026-01-16T09:00:00Z#000003"})
	require.NoError(t, err)
	require.Len(t, exact, 1)
	assert.Equal(t, "evt-2026-01-16T09:00:00Z#000003", exact[0].EventID)

	everything, err := store.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, everything, 4)
}

func TestMemoryOrderStoreGet(t *testing.T) {
	store := NewMemoryOrderStore()
	ctx := context.Background()

	require.NoError(t, store.Put(ctx, testOrder("swn", "d1")))

	got, err := store.Get(ctx, "swn", "d1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.True(t, got.TotalPrice.Equal(decimal.RequireFromString("25.00")))

	missing, err := store.Get(ctx, "swn", "d2")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

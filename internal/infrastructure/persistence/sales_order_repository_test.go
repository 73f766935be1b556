package persistence

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/verone/backend/internal/domain/shared"
	"github.com/verone/backend/internal/domain/shared/valueobject"
	"github.com/verone/backend/internal/domain/trade"
)

func setupOrderTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	err = db.AutoMigrate(&trade.SalesOrder{}, &trade.SalesOrderItem{})
	require.NoError(t, err)

	return db
}

func newTestOrder(t *testing.T, orderNumber string) *trade.SalesOrder {
	t.Helper()

	order, err := trade.NewSalesOrder(orderNumber, uuid.New())
	require.NoError(t, err)

	price, err := valueobject.NewMoneyEURFromString("15.00")
	require.NoError(t, err)

	_, err = order.AddItem(uuid.New(), "Table en chêne", decimal.NewFromInt(10), price, decimal.NewFromFloat(0.2))
	require.NoError(t, err)

	return order
}

func TestGormSalesOrderRepository_SaveAndFind(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, "SO-2026-00001")
	require.NoError(t, repo.Save(ctx, order))

	t.Run("finds by id with items", func(t *testing.T) {
		found, err := repo.FindByID(ctx, order.GetID())
		require.NoError(t, err)

		assert.Equal(t, "SO-2026-00001", found.OrderNumber)
		require.Len(t, found.Items, 1)
		assert.Equal(t, "Table en chêne", found.Items[0].ProductName)
	})

	t.Run("finds by order number", func(t *testing.T) {
		found, err := repo.FindByOrderNumber(ctx, "SO-2026-00001")
		require.NoError(t, err)
		assert.Equal(t, order.GetID(), found.GetID())
	})

	t.Run("not found maps to shared error", func(t *testing.T) {
		_, err := repo.FindByID(ctx, uuid.New())
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestGormSalesOrderRepository_Save_RemovesDroppedItems(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	order := newTestOrder(t, "SO-2026-00002")

	price, err := valueobject.NewMoneyEURFromString("99.00")
	require.NoError(t, err)
	_, err = order.AddItem(uuid.New(), "Chaise", decimal.NewFromInt(4), price, decimal.NewFromFloat(0.2))
	require.NoError(t, err)

	require.NoError(t, repo.Save(ctx, order))

	// Drop one item and save again
	order.Items = order.Items[:1]
	require.NoError(t, repo.Save(ctx, order))

	found, err := repo.FindByID(ctx, order.GetID())
	require.NoError(t, err)
	assert.Len(t, found.Items, 1)
}

func TestGormSalesOrderRepository_FindAll(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	first := newTestOrder(t, "SO-2026-00010")
	require.NoError(t, first.Validate())
	require.NoError(t, repo.Save(ctx, first))

	second := newTestOrder(t, "SO-2026-00011")
	require.NoError(t, repo.Save(ctx, second))

	t.Run("filters by status", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Filters["status"] = trade.OrderStatusValidated

		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, first.GetID(), orders[0].GetID())
	})

	t.Run("searches by order number", func(t *testing.T) {
		filter := shared.DefaultFilter()
		filter.Search = "00011"

		orders, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.Len(t, orders, 1)
		assert.Equal(t, "SO-2026-00011", orders[0].OrderNumber)
	})
}

func TestGormSalesOrderRepository_GenerateOrderNumber(t *testing.T) {
	db := setupOrderTestDB(t)
	repo := NewGormSalesOrderRepository(db)
	ctx := context.Background()

	year := time.Now().Year()

	t.Run("starts at one", func(t *testing.T) {
		number, err := repo.GenerateOrderNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("SO-%d-00001", year), number)
	})

	t.Run("increments past stored orders", func(t *testing.T) {
		order := newTestOrder(t, fmt.Sprintf("SO-%d-00005", year))
		require.NoError(t, repo.Save(ctx, order))

		number, err := repo.GenerateOrderNumber(ctx)
		require.NoError(t, err)
		assert.Equal(t, fmt.Sprintf("SO-%d-00006", year), number)
	})
}

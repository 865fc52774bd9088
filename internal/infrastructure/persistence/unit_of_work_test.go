package persistence

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/modernerp/backend/internal/domain/shared"
	"github.com/modernerp/backend/internal/domain/trade"
)

func TestGormUnitOfWork_WithinTransaction(t *testing.T) {
	ctx := context.Background()

	t.Run("commits all writes on success", func(t *testing.T) {
		db := setupOrderTestDB(t)
		uow := NewGormUnitOfWork(db)
		tenantID := uuid.New()

		order := createTestSalesOrder(t, tenantID, "SO-2026-00001")
		require.NoError(t, NewGormSalesOrderRepository(db).Save(ctx, order))

		err := uow.WithinTransaction(ctx, func(ctx context.Context, repos trade.PurchasingRepositories) error {
			po, err := trade.NewPurchaseOrder(tenantID, "PO-2026-00001", uuid.New(), "Vendor Co")
			if err != nil {
				return err
			}
			po.LinkSourceSalesOrder(order.ID)
			if err := repos.PurchaseOrders.Save(ctx, po); err != nil {
				return err
			}

			loaded, err := repos.SalesOrders.FindByIDForTenant(ctx, tenantID, order.ID)
			if err != nil {
				return err
			}
			if err := loaded.Items[0].RecordPurchasedQuantity(decimal.NewFromInt(10)); err != nil {
				return err
			}
			loaded.IncrementVersion()
			return repos.SalesOrders.SaveWithLock(ctx, loaded)
		})
		require.NoError(t, err)

		pos, err := NewGormPurchaseOrderRepository(db).FindBySourceSalesOrder(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.Len(t, pos, 1)

		so, err := NewGormSalesOrderRepository(db).FindByIDForTenant(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.True(t, so.Items[0].QuantityOnPurchaseOrder.Equal(decimal.NewFromInt(10)))
	})

	t.Run("rolls back every write when the callback fails", func(t *testing.T) {
		db := setupOrderTestDB(t)
		uow := NewGormUnitOfWork(db)
		tenantID := uuid.New()

		order := createTestSalesOrder(t, tenantID, "SO-2026-00001")
		require.NoError(t, NewGormSalesOrderRepository(db).Save(ctx, order))

		boom := errors.New("vendor validation failed")
		err := uow.WithinTransaction(ctx, func(ctx context.Context, repos trade.PurchasingRepositories) error {
			po, err := trade.NewPurchaseOrder(tenantID, "PO-2026-00001", uuid.New(), "Vendor Co")
			if err != nil {
				return err
			}
			po.LinkSourceSalesOrder(order.ID)
			if err := repos.PurchaseOrders.Save(ctx, po); err != nil {
				return err
			}

			loaded, err := repos.SalesOrders.FindByIDForTenant(ctx, tenantID, order.ID)
			if err != nil {
				return err
			}
			if err := loaded.Items[0].RecordPurchasedQuantity(decimal.NewFromInt(10)); err != nil {
				return err
			}
			loaded.IncrementVersion()
			if err := repos.SalesOrders.SaveWithLock(ctx, loaded); err != nil {
				return err
			}

			return boom
		})
		assert.ErrorIs(t, err, boom)

		pos, err := NewGormPurchaseOrderRepository(db).FindBySourceSalesOrder(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.Empty(t, pos)

		so, err := NewGormSalesOrderRepository(db).FindByIDForTenant(ctx, tenantID, order.ID)
		require.NoError(t, err)
		assert.True(t, so.Items[0].QuantityOnPurchaseOrder.IsZero())
	})

	t.Run("concurrency conflict inside the transaction aborts it", func(t *testing.T) {
		db := setupOrderTestDB(t)
		uow := NewGormUnitOfWork(db)
		tenantID := uuid.New()

		order := createTestSalesOrder(t, tenantID, "SO-2026-00001")
		require.NoError(t, NewGormSalesOrderRepository(db).Save(ctx, order))

		err := uow.WithinTransaction(ctx, func(ctx context.Context, repos trade.PurchasingRepositories) error {
			loaded, err := repos.SalesOrders.FindByIDForTenant(ctx, tenantID, order.ID)
			if err != nil {
				return err
			}
			// Pretend the aggregate raced two increments ahead
			loaded.IncrementVersion()
			loaded.IncrementVersion()
			return repos.SalesOrders.SaveWithLock(ctx, loaded)
		})
		assert.ErrorIs(t, err, shared.ErrConcurrencyConflict)
	})
}

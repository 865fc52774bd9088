package persistence

import (
	"context"

	"github.com/modernerp/backend/internal/domain/trade"
	"gorm.io/gorm"
)

// GormUnitOfWork implements trade.UnitOfWork on a single GORM transaction.
// Repositories handed to the callback share the transaction, so every write
// inside the callback commits or rolls back together.
type GormUnitOfWork struct {
	db *gorm.DB
}

// NewGormUnitOfWork creates a new GormUnitOfWork
func NewGormUnitOfWork(db *gorm.DB) *GormUnitOfWork {
	return &GormUnitOfWork{db: db}
}

// WithinTransaction runs fn against transaction-scoped repositories
func (u *GormUnitOfWork) WithinTransaction(ctx context.Context, fn func(ctx context.Context, repos trade.PurchasingRepositories) error) error {
	return u.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := trade.PurchasingRepositories{
			SalesOrders:    NewGormSalesOrderRepository(tx),
			PurchaseOrders: NewGormPurchaseOrderRepository(tx),
		}
		return fn(ctx, repos)
	})
}

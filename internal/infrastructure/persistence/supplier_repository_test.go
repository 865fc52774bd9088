package persistence

import (
	"context"
	"database/sql"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/modernerp/backend/internal/domain/partner"
	"github.com/modernerp/backend/internal/domain/shared"
)

// newMockSupplierRepository creates a GormSupplierRepository with a mocked SQL connection
func newMockSupplierRepository(t *testing.T) (*GormSupplierRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()

	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	dialector := postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	})

	gormDB, err := gorm.Open(dialector, &gorm.Config{
		SkipDefaultTransaction: true,
	})
	require.NoError(t, err)

	return NewGormSupplierRepository(gormDB), mock, mockDB
}

func supplierRows(supplierID, tenantID uuid.UUID) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "tenant_id", "code", "name", "type", "status", "credit_days"}).
		AddRow(supplierID, tenantID, "SUP001", "Test Supplier", "distributor", "active", 30)
}

func TestNewGormSupplierRepository(t *testing.T) {
	repo, _, mockDB := newMockSupplierRepository(t)
	defer mockDB.Close()

	assert.NotNil(t, repo)
	assert.NotNil(t, repo.db)
}

func TestGormSupplierRepository_FindByIDForTenant(t *testing.T) {
	t.Run("finds existing supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, supplierID, 1).
			WillReturnRows(supplierRows(supplierID, tenantID))

		supplier, err := repo.FindByIDForTenant(context.Background(), tenantID, supplierID)

		assert.NoError(t, err)
		require.NotNil(t, supplier)
		assert.Equal(t, supplierID, supplier.ID)
		assert.Equal(t, "SUP001", supplier.Code)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found for missing supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE tenant_id = \$1 AND id = \$2 ORDER BY .* LIMIT .*`).
			WithArgs(tenantID, supplierID, 1).
			WillReturnError(gorm.ErrRecordNotFound)

		supplier, err := repo.FindByIDForTenant(context.Background(), tenantID, supplierID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.Nil(t, supplier)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSupplierRepository_FindByIDsForTenant(t *testing.T) {
	t.Run("returns nil for empty id list without querying", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		suppliers, err := repo.FindByIDsForTenant(context.Background(), uuid.New(), nil)

		assert.NoError(t, err)
		assert.Nil(t, suppliers)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("finds suppliers by ids", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		tenantID := uuid.New()
		firstID := uuid.New()
		secondID := uuid.New()

		rows := supplierRows(firstID, tenantID)
		rows.AddRow(secondID, tenantID, "SUP002", "Other Supplier", "manufacturer", "active", 45)

		mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE tenant_id = \$1 AND id IN \(\$2,\$3\)`).
			WithArgs(tenantID, firstID, secondID).
			WillReturnRows(rows)

		suppliers, err := repo.FindByIDsForTenant(context.Background(), tenantID, []uuid.UUID{firstID, secondID})

		assert.NoError(t, err)
		assert.Len(t, suppliers, 2)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGormSupplierRepository_FindByCode(t *testing.T) {
	repo, mock, mockDB := newMockSupplierRepository(t)
	defer mockDB.Close()

	supplierID := uuid.New()
	tenantID := uuid.New()

	mock.ExpectQuery(`SELECT \* FROM "suppliers" WHERE tenant_id = \$1 AND code = \$2 ORDER BY .* LIMIT .*`).
		WithArgs(tenantID, "SUP001", 1).
		WillReturnRows(supplierRows(supplierID, tenantID))

	supplier, err := repo.FindByCode(context.Background(), tenantID, "SUP001")

	assert.NoError(t, err)
	require.NotNil(t, supplier)
	assert.Equal(t, partner.SupplierStatusActive, supplier.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGormSupplierRepository_DeleteForTenant(t *testing.T) {
	t.Run("deletes existing supplier", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectExec(`DELETE FROM "suppliers" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, supplierID).
			WillReturnResult(sqlmock.NewResult(0, 1))

		err := repo.DeleteForTenant(context.Background(), tenantID, supplierID)

		assert.NoError(t, err)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("returns not found when nothing was deleted", func(t *testing.T) {
		repo, mock, mockDB := newMockSupplierRepository(t)
		defer mockDB.Close()

		supplierID := uuid.New()
		tenantID := uuid.New()

		mock.ExpectExec(`DELETE FROM "suppliers" WHERE tenant_id = \$1 AND id = \$2`).
			WithArgs(tenantID, supplierID).
			WillReturnResult(sqlmock.NewResult(0, 0))

		err := repo.DeleteForTenant(context.Background(), tenantID, supplierID)

		assert.ErrorIs(t, err, shared.ErrNotFound)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

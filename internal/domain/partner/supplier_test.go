package partner

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func createTestSupplier(t *testing.T) *Supplier {
	supplier, err := NewSupplier(uuid.New(), "sup-001", "Acme Components", SupplierTypeManufacturer)
	require.NoError(t, err)
	return supplier
}

func TestNewSupplier(t *testing.T) {
	supplier := createTestSupplier(t)

	assert.Equal(t, "SUP-001", supplier.Code)
	assert.Equal(t, SupplierStatusActive, supplier.Status)
	assert.True(t, supplier.IsActive())
}

func TestNewSupplier_Validation(t *testing.T) {
	_, err := NewSupplier(uuid.New(), "", "Acme", SupplierTypeDistributor)
	assert.Error(t, err)

	_, err = NewSupplier(uuid.New(), "SUP-001", "  ", SupplierTypeDistributor)
	assert.Error(t, err)

	_, err = NewSupplier(uuid.New(), "SUP-001", "Acme", SupplierType("wholesaler"))
	assert.Error(t, err)
}

func TestSupplier_StatusTransitions(t *testing.T) {
	supplier := createTestSupplier(t)

	supplier.Deactivate()
	assert.False(t, supplier.IsActive())

	supplier.Activate()
	assert.True(t, supplier.IsActive())

	supplier.Block()
	assert.Equal(t, SupplierStatusBlocked, supplier.Status)
	assert.False(t, supplier.IsActive())
}

func TestSupplier_SetPaymentTerms(t *testing.T) {
	supplier := createTestSupplier(t)

	require.NoError(t, supplier.SetPaymentTerms(30, decimal.NewFromInt(50000)))
	assert.Equal(t, 30, supplier.CreditDays)
	assert.True(t, supplier.CreditLimit.Equal(decimal.NewFromInt(50000)))

	assert.Error(t, supplier.SetPaymentTerms(-1, decimal.Zero))
	assert.Error(t, supplier.SetPaymentTerms(30, decimal.NewFromInt(-1)))
}

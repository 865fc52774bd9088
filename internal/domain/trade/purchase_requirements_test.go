package trade

import (
	"testing"

	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/catalog"
	"github.com/modernerp/backend/internal/domain/shared/valueobject"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Test helpers

func newDraftOrder(t *testing.T) *SalesOrder {
	order, err := NewSalesOrder(uuid.New(), "SO000001", uuid.New(), "Test Customer")
	require.NoError(t, err)
	return order
}

func addOrderLine(t *testing.T, order *SalesOrder, product *catalog.Product, quantity int64) *SalesOrderItem {
	item, err := order.AddItem(product.ID, product.Name, product.Code, product.Unit, decimal.NewFromInt(quantity), valueobject.NewMoneyUSD(decimal.NewFromInt(25)))
	require.NoError(t, err)
	return item
}

func createPurchasedProduct(t *testing.T, code string) *catalog.Product {
	product, err := catalog.NewProduct(uuid.New(), code, "Widget "+code, "pcs")
	require.NoError(t, err)
	require.NoError(t, product.SetPricing(decimal.NewFromInt(8), decimal.NewFromInt(15)))
	return product
}

func attachVendor(t *testing.T, product *catalog.Product, cost int64, priority int, capacity *int64) uuid.UUID {
	supplierID := uuid.New()
	mapping, err := catalog.NewVendorProductMapping(supplierID, "VP-"+product.Code, decimal.NewFromInt(cost), priority)
	require.NoError(t, err)
	if capacity != nil {
		require.NoError(t, mapping.SetCapacity(decimal.NewFromInt(*capacity)))
	}
	require.NoError(t, product.AddVendorMapping(mapping))
	return supplierID
}

func capOf(v int64) *int64 { return &v }

// ============================================
// Analyzer Tests
// ============================================

func TestAnalyze_RejectsNonPurchasableOrder(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()
	product := createPurchasedProduct(t, "W-1")

	t.Run("draft order", func(t *testing.T) {
		order := newDraftOrder(t)
		addOrderLine(t, order, product, 10)

		_, err := analyzer.Analyze(order, ProductMap{product.ID: product})

		var stateErr *InvalidOrderStateError
		assert.ErrorAs(t, err, &stateErr)
		assert.Equal(t, OrderStatusDraft, stateErr.Status)
	})

	t.Run("cancelled order", func(t *testing.T) {
		order := newDraftOrder(t)
		addOrderLine(t, order, product, 10)
		require.NoError(t, order.Cancel("customer changed mind"))

		_, err := analyzer.Analyze(order, ProductMap{product.ID: product})

		var stateErr *InvalidOrderStateError
		assert.ErrorAs(t, err, &stateErr)
	})

	t.Run("shipped order is still purchasable", func(t *testing.T) {
		order := newDraftOrder(t)
		attachVendor(t, product, 9, 1, nil)
		addOrderLine(t, order, product, 10)
		require.NoError(t, order.Confirm())
		require.NoError(t, order.Ship())

		plan, err := analyzer.Analyze(order, ProductMap{product.ID: product})

		assert.NoError(t, err)
		assert.Equal(t, 1, plan.VendorCount())
	})
}

func TestAnalyze_RejectsOrderWithoutProductLines(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()
	order := newDraftOrder(t)
	_, err := order.AddCharge("Freight", valueobject.NewMoneyUSD(decimal.NewFromInt(50)))
	require.NoError(t, err)
	require.NoError(t, order.Confirm())

	_, err = analyzer.Analyze(order, ProductMap{})

	var emptyErr *EmptyOrderError
	assert.ErrorAs(t, err, &emptyErr)
	assert.Equal(t, order.ID, emptyErr.OrderID)
}

func TestAnalyze_SingleVendorTakesAllDemand(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()
	product := createPurchasedProduct(t, "W-1")
	supplierID := attachVendor(t, product, 9, 1, nil)

	order := newDraftOrder(t)
	line := addOrderLine(t, order, product, 100)
	require.NoError(t, order.Confirm())

	plan, err := analyzer.Analyze(order, ProductMap{product.ID: product})

	require.NoError(t, err)
	require.Equal(t, 1, plan.VendorCount())
	assert.Equal(t, supplierID, plan.Vendors[0].SupplierID)
	require.Len(t, plan.Vendors[0].Requirements, 1)

	req := plan.Vendors[0].Requirements[0]
	assert.Equal(t, line.ID, req.SalesOrderLineID)
	assert.True(t, req.Quantity.Equal(decimal.NewFromInt(100)))
	assert.True(t, req.UnitCost.Equal(decimal.NewFromInt(9)))
	assert.Equal(t, "VP-W-1", req.VendorPartCode)
	assert.Empty(t, plan.Unassigned)
}

func TestAnalyze_SplitsAcrossVendorsByPriorityAndCapacity(t *testing.T) {
	// 100 needed: priority 1 vendor caps at 60, priority 2 takes the rest
	analyzer := NewPurchaseRequirementsAnalyzer()
	product := createPurchasedProduct(t, "W-1")
	primary := attachVendor(t, product, 9, 1, capOf(60))
	secondary := attachVendor(t, product, 7, 2, nil)

	order := newDraftOrder(t)
	line := addOrderLine(t, order, product, 100)
	require.NoError(t, order.Confirm())

	plan, err := analyzer.Analyze(order, ProductMap{product.ID: product})

	require.NoError(t, err)
	require.Equal(t, 2, plan.VendorCount())
	assert.Equal(t, primary, plan.Vendors[0].SupplierID)
	assert.True(t, plan.Vendors[0].TotalQuantity().Equal(decimal.NewFromInt(60)))
	assert.Equal(t, secondary, plan.Vendors[1].SupplierID)
	assert.True(t, plan.Vendors[1].TotalQuantity().Equal(decimal.NewFromInt(40)))

	// Nothing lost, nothing duplicated
	assert.True(t, plan.QuantityForLine(line.ID).Equal(decimal.NewFromInt(100)))
	assert.Empty(t, plan.Unassigned)
}

func TestAnalyze_ResidualDemandGoesUnassigned(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()
	product := createPurchasedProduct(t, "W-1")
	attachVendor(t, product, 9, 1, capOf(30))
	attachVendor(t, product, 7, 2, capOf(20))

	order := newDraftOrder(t)
	line := addOrderLine(t, order, product, 100)
	require.NoError(t, order.Confirm())

	plan, err := analyzer.Analyze(order, ProductMap{product.ID: product})

	require.NoError(t, err)
	assert.Equal(t, 2, plan.VendorCount())
	require.Len(t, plan.Unassigned, 1)
	assert.True(t, plan.Unassigned[0].Quantity.Equal(decimal.NewFromInt(50)))
	assert.Equal(t, "vendor capacity exhausted", plan.Unassigned[0].Reason)
	assert.True(t, plan.QuantityForLine(line.ID).Equal(decimal.NewFromInt(100)))
}

func TestAnalyze_UnmappedProductGoesUnassigned(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()
	product := createPurchasedProduct(t, "W-1")

	order := newDraftOrder(t)
	addOrderLine(t, order, product, 10)
	require.NoError(t, order.Confirm())

	plan, err := analyzer.Analyze(order, ProductMap{product.ID: product})

	require.NoError(t, err)
	assert.Equal(t, 0, plan.VendorCount())
	require.Len(t, plan.Unassigned, 1)
	assert.Equal(t, "no vendor mapped for product", plan.Unassigned[0].Reason)
}

func TestAnalyze_ExcludesCoveredDemand(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()
	product := createPurchasedProduct(t, "W-1")
	attachVendor(t, product, 9, 1, nil)

	t.Run("reserved stock reduces demand", func(t *testing.T) {
		order := newDraftOrder(t)
		line := addOrderLine(t, order, product, 50)
		require.NoError(t, order.Confirm())
		require.NoError(t, line.Reserve(decimal.NewFromInt(20)))

		plan, err := analyzer.Analyze(order, ProductMap{product.ID: product})

		require.NoError(t, err)
		assert.True(t, plan.Vendors[0].TotalQuantity().Equal(decimal.NewFromInt(30)))
	})

	t.Run("quantity already on purchase orders reduces demand", func(t *testing.T) {
		order := newDraftOrder(t)
		line := addOrderLine(t, order, product, 50)
		require.NoError(t, order.Confirm())
		require.NoError(t, line.RecordPurchasedQuantity(decimal.NewFromInt(50)))

		plan, err := analyzer.Analyze(order, ProductMap{product.ID: product})

		require.NoError(t, err)
		assert.True(t, plan.IsEmpty())
	})

	t.Run("fully reserved line produces no demand", func(t *testing.T) {
		order := newDraftOrder(t)
		line := addOrderLine(t, order, product, 50)
		require.NoError(t, order.Confirm())
		require.NoError(t, line.Reserve(decimal.NewFromInt(50)))

		plan, err := analyzer.Analyze(order, ProductMap{product.ID: product})

		require.NoError(t, err)
		assert.True(t, plan.IsEmpty())
	})
}

func TestAnalyze_SkipsNonPurchasedAndUnknownProducts(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()

	service := createPurchasedProduct(t, "SVC-1")
	service.MarkNotPurchased()
	attachVendor(t, service, 9, 1, nil)

	ghost := createPurchasedProduct(t, "GHOST")

	order := newDraftOrder(t)
	addOrderLine(t, order, service, 5)
	addOrderLine(t, order, ghost, 5) // not in the catalog map
	require.NoError(t, order.Confirm())

	plan, err := analyzer.Analyze(order, ProductMap{service.ID: service})

	require.NoError(t, err)
	assert.True(t, plan.IsEmpty())
}

func TestAnalyze_GroupsLinesForSameVendorOntoOneBucket(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()

	productA := createPurchasedProduct(t, "W-A")
	productB := createPurchasedProduct(t, "W-B")

	sharedVendor := uuid.New()
	for _, p := range []*catalog.Product{productA, productB} {
		mapping, err := catalog.NewVendorProductMapping(sharedVendor, "VP-"+p.Code, decimal.NewFromInt(9), 1)
		require.NoError(t, err)
		require.NoError(t, p.AddVendorMapping(mapping))
	}

	order := newDraftOrder(t)
	addOrderLine(t, order, productA, 10)
	addOrderLine(t, order, productB, 20)
	require.NoError(t, order.Confirm())

	plan, err := analyzer.Analyze(order, ProductMap{productA.ID: productA, productB.ID: productB})

	require.NoError(t, err)
	require.Equal(t, 1, plan.VendorCount())
	assert.Len(t, plan.Vendors[0].Requirements, 2)
	assert.True(t, plan.Vendors[0].TotalQuantity().Equal(decimal.NewFromInt(30)))
}

func TestAnalyze_FallsBackToStandardCostWhenMappingCostZero(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()
	product := createPurchasedProduct(t, "W-1") // standard cost 8
	attachVendor(t, product, 0, 1, nil)

	order := newDraftOrder(t)
	addOrderLine(t, order, product, 10)
	require.NoError(t, order.Confirm())

	plan, err := analyzer.Analyze(order, ProductMap{product.ID: product})

	require.NoError(t, err)
	assert.True(t, plan.Vendors[0].Requirements[0].UnitCost.Equal(decimal.NewFromInt(8)))
}

func TestAnalyze_IsDeterministic(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()
	product := createPurchasedProduct(t, "W-1")
	attachVendor(t, product, 9, 1, capOf(60))
	attachVendor(t, product, 7, 2, nil)

	order := newDraftOrder(t)
	addOrderLine(t, order, product, 100)
	require.NoError(t, order.Confirm())

	first, err := analyzer.Analyze(order, ProductMap{product.ID: product})
	require.NoError(t, err)
	second, err := analyzer.Analyze(order, ProductMap{product.ID: product})
	require.NoError(t, err)

	require.Equal(t, first.VendorCount(), second.VendorCount())
	for idx := range first.Vendors {
		assert.Equal(t, first.Vendors[idx].SupplierID, second.Vendors[idx].SupplierID)
		assert.True(t, first.Vendors[idx].TotalQuantity().Equal(second.Vendors[idx].TotalQuantity()))
	}
}

func TestAnalyze_CapturesLineSnapshots(t *testing.T) {
	analyzer := NewPurchaseRequirementsAnalyzer()
	product := createPurchasedProduct(t, "W-1")
	attachVendor(t, product, 9, 1, nil)

	order := newDraftOrder(t)
	line := addOrderLine(t, order, product, 50)
	require.NoError(t, order.Confirm())
	require.NoError(t, line.Reserve(decimal.NewFromInt(10)))

	plan, err := analyzer.Analyze(order, ProductMap{product.ID: product})

	require.NoError(t, err)
	snap, ok := plan.LineSnapshots[line.ID]
	require.True(t, ok)
	assert.True(t, snap.QuantityOrdered.Equal(decimal.NewFromInt(50)))
	assert.True(t, snap.QuantityReserved.Equal(decimal.NewFromInt(10)))
	assert.True(t, snap.QuantityOnPurchaseOrder.IsZero())
	assert.Equal(t, order.GetVersion(), plan.SalesOrderVersion)
}

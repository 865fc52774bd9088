package trade

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/modernerp/backend/internal/domain/catalog"
	"github.com/modernerp/backend/internal/domain/partner"
	"github.com/modernerp/backend/internal/domain/shared"
	"github.com/modernerp/backend/internal/domain/trade"
)

// PurchasePlanningService derives purchase requirements from sales orders
// and generates the corresponding purchase orders
type PurchasePlanningService struct {
	orderRepo           trade.SalesOrderRepository
	purchaseOrderRepo   trade.PurchaseOrderRepository
	productRepo         catalog.ProductRepository
	supplierRepo        partner.SupplierRepository
	uow                 trade.UnitOfWork
	analyzer            *trade.PurchaseRequirementsAnalyzer
	eventPublisher      shared.EventPublisher
	allowPartialDefault bool
}

// PlanningOptions carries generation defaults sourced from configuration.
type PlanningOptions struct {
	// DefaultLeadTimeDays is the promised-date lead time for vendor
	// mappings that do not carry their own. Zero keeps the domain default.
	DefaultLeadTimeDays int
	// AllowPartialDefault generates the mapped portion of a plan even when
	// some demand has no vendor, without requiring the request flag.
	AllowPartialDefault bool
}

// PlanningOption configures a PurchasePlanningService
type PlanningOption func(*PurchasePlanningService)

// WithPlanningDefaults applies configuration-sourced generation defaults
func WithPlanningDefaults(defaults PlanningOptions) PlanningOption {
	return func(s *PurchasePlanningService) {
		if defaults.DefaultLeadTimeDays > 0 {
			s.analyzer = trade.NewPurchaseRequirementsAnalyzerWithLeadTime(defaults.DefaultLeadTimeDays)
		}
		s.allowPartialDefault = defaults.AllowPartialDefault
	}
}

// NewPurchasePlanningService creates a new PurchasePlanningService
func NewPurchasePlanningService(
	orderRepo trade.SalesOrderRepository,
	purchaseOrderRepo trade.PurchaseOrderRepository,
	productRepo catalog.ProductRepository,
	supplierRepo partner.SupplierRepository,
	uow trade.UnitOfWork,
	opts ...PlanningOption,
) *PurchasePlanningService {
	s := &PurchasePlanningService{
		orderRepo:         orderRepo,
		purchaseOrderRepo: purchaseOrderRepo,
		productRepo:       productRepo,
		supplierRepo:      supplierRepo,
		uow:               uow,
		analyzer:          trade.NewPurchaseRequirementsAnalyzer(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetEventPublisher sets the event publisher for cross-context integration
func (s *PurchasePlanningService) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// AnalyzePurchaseRequirements computes the vendor-grouped purchase plan for
// a sales order without writing anything
func (s *PurchasePlanningService) AnalyzePurchaseRequirements(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseRequirementsPlanResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	plan, err := s.buildPlan(ctx, tenantID, order)
	if err != nil {
		return nil, err
	}

	names, err := s.supplierNames(ctx, tenantID, plan)
	if err != nil {
		return nil, err
	}

	return ToPlanResponse(plan, names), nil
}

// GeneratePurchaseOrders analyzes a sales order and creates one purchase
// order per vendor for its outstanding demand. The whole operation runs in
// a single transaction: either every purchase order and every sales line
// update commits, or none do. Re-running after success is a no-op because
// generated quantity is recorded back on the sales lines.
func (s *PurchasePlanningService) GeneratePurchaseOrders(ctx context.Context, tenantID, orderID uuid.UUID, req GeneratePurchaseOrdersRequest) ([]PurchaseOrderRefResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	plan, err := s.buildPlan(ctx, tenantID, order)
	if err != nil {
		return nil, err
	}

	return s.GenerateFromPlan(ctx, tenantID, plan, req)
}

// GenerateFromPlan creates purchase orders from a previously computed plan.
// The plan's line snapshots guard against the sales order having changed
// since analysis; a mismatch aborts with ConcurrentModificationError and
// the caller should re-analyze.
func (s *PurchasePlanningService) GenerateFromPlan(ctx context.Context, tenantID uuid.UUID, plan *trade.PurchaseRequirementsPlan, req GeneratePurchaseOrdersRequest) ([]PurchaseOrderRefResponse, error) {
	if plan.HasUnassigned() && !req.AllowPartial && !s.allowPartialDefault {
		return nil, &trade.UnassignedRequirementsError{SalesOrderID: plan.SalesOrderID, Unassigned: plan.Unassigned}
	}
	if len(plan.Vendors) == 0 {
		return []PurchaseOrderRefResponse{}, nil
	}

	names, err := s.supplierNames(ctx, tenantID, plan)
	if err != nil {
		return nil, err
	}
	for _, vendor := range plan.Vendors {
		if _, ok := names[vendor.SupplierID]; !ok {
			return nil, shared.NewDomainError("SUPPLIER_NOT_FOUND", fmt.Sprintf("Supplier %s not found or inactive", vendor.SupplierID))
		}
	}

	var generated []*trade.PurchaseOrder
	var order *trade.SalesOrder

	err = s.uow.WithinTransaction(ctx, func(ctx context.Context, repos trade.PurchasingRepositories) error {
		var txErr error
		order, txErr = repos.SalesOrders.FindByIDForTenant(ctx, tenantID, plan.SalesOrderID)
		if txErr != nil {
			return txErr
		}

		if txErr = s.verifyUnchanged(order, plan); txErr != nil {
			return txErr
		}

		infos := make([]trade.GeneratedPurchaseOrderInfo, 0, len(plan.Vendors))
		generated = make([]*trade.PurchaseOrder, 0, len(plan.Vendors))

		for _, vendor := range plan.Vendors {
			po, txErr := s.createVendorOrder(ctx, repos, order, vendor, names[vendor.SupplierID], req.CreatedBy)
			if txErr != nil {
				return txErr
			}

			generated = append(generated, po)
			infos = append(infos, trade.GeneratedPurchaseOrderInfo{
				PurchaseOrderID: po.ID,
				OrderNumber:     po.OrderNumber,
				SupplierID:      po.SupplierID,
				SupplierName:    po.SupplierName,
				TotalQuantity:   po.TotalOrderedQuantity(),
			})
		}

		order.AddDomainEvent(trade.NewPurchaseOrdersGeneratedEvent(order, infos))
		order.IncrementVersion()

		return repos.SalesOrders.SaveWithLock(ctx, order)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, order)

	responses := make([]PurchaseOrderRefResponse, 0, len(generated))
	for _, po := range generated {
		responses = append(responses, ToPurchaseOrderRefResponse(po))
	}
	return responses, nil
}

// createVendorOrder builds and persists one purchase order for a vendor's
// share of the plan, recording the generated quantity on each source line
func (s *PurchasePlanningService) createVendorOrder(ctx context.Context, repos trade.PurchasingRepositories, order *trade.SalesOrder, vendor trade.VendorRequirements, supplierName string, createdBy *uuid.UUID) (*trade.PurchaseOrder, error) {
	orderNumber, err := repos.PurchaseOrders.GenerateOrderNumber(ctx, order.TenantID)
	if err != nil {
		return nil, err
	}

	po, err := trade.NewPurchaseOrder(order.TenantID, orderNumber, vendor.SupplierID, supplierName)
	if err != nil {
		return nil, err
	}
	po.LinkSourceSalesOrder(order.ID)
	if createdBy != nil {
		po.SetCreatedBy(*createdBy)
	}

	maxLeadDays := 0
	for _, requirement := range vendor.Requirements {
		if _, err := po.AddGeneratedItem(requirement, order.ID); err != nil {
			return nil, err
		}
		if requirement.LeadTimeDays > maxLeadDays {
			maxLeadDays = requirement.LeadTimeDays
		}

		line := order.GetItem(requirement.SalesOrderLineID)
		if line == nil {
			return nil, &trade.ConcurrentModificationError{SalesOrderID: order.ID, LineID: requirement.SalesOrderLineID}
		}
		if err := line.RecordPurchasedQuantity(requirement.Quantity); err != nil {
			return nil, err
		}
	}

	// The slowest line on the order drives the promised date
	if maxLeadDays > 0 {
		if err := po.SetDatePromised(po.DateOrdered.AddDate(0, 0, maxLeadDays)); err != nil {
			return nil, err
		}
	}

	if err := repos.PurchaseOrders.Save(ctx, po); err != nil {
		return nil, err
	}
	return po, nil
}

// verifyUnchanged compares the current sales order against the plan's
// snapshots taken at analysis time
func (s *PurchasePlanningService) verifyUnchanged(order *trade.SalesOrder, plan *trade.PurchaseRequirementsPlan) error {
	if !order.IsPurchasable() {
		return &trade.InvalidOrderStateError{OrderID: order.ID, Status: order.Status}
	}
	if order.GetVersion() != plan.SalesOrderVersion {
		return &trade.ConcurrentModificationError{SalesOrderID: order.ID}
	}

	for lineID, snap := range plan.LineSnapshots {
		line := order.GetItem(lineID)
		if line == nil {
			return &trade.ConcurrentModificationError{SalesOrderID: order.ID, LineID: lineID}
		}
		if !line.QuantityOrdered.Equal(snap.QuantityOrdered) ||
			!line.QuantityReserved.Equal(snap.QuantityReserved) ||
			!line.QuantityOnPurchaseOrder.Equal(snap.QuantityOnPurchaseOrder) {
			return &trade.ConcurrentModificationError{SalesOrderID: order.ID, LineID: lineID}
		}
	}
	return nil
}

// ReceivePurchaseOrder posts a goods receipt against a purchase order and
// mirrors the received quantity back onto the source sales order lines
func (s *PurchasePlanningService) ReceivePurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID, req ReceivePurchaseOrderRequest) (*PurchaseOrderRefResponse, error) {
	var po *trade.PurchaseOrder
	var salesOrder *trade.SalesOrder

	receiveItems := make([]trade.ReceiveItem, 0, len(req.Items))
	for _, item := range req.Items {
		receiveItems = append(receiveItems, trade.ReceiveItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}

	err := s.uow.WithinTransaction(ctx, func(ctx context.Context, repos trade.PurchasingRepositories) error {
		var txErr error
		po, txErr = repos.PurchaseOrders.FindByIDForTenant(ctx, tenantID, purchaseOrderID)
		if txErr != nil {
			return txErr
		}

		received, txErr := po.Receive(receiveItems)
		if txErr != nil {
			return txErr
		}

		if po.SourceSalesOrderID != nil {
			salesOrder, txErr = repos.SalesOrders.FindByIDForTenant(ctx, tenantID, *po.SourceSalesOrderID)
			if txErr != nil {
				return txErr
			}
			for _, info := range received {
				if info.SourceSalesOrderLineID == nil {
					continue
				}
				line := salesOrder.GetItem(*info.SourceSalesOrderLineID)
				if line == nil {
					continue
				}
				if txErr = line.AddReceivedQuantity(info.Quantity); txErr != nil {
					return txErr
				}
			}
			salesOrder.IncrementVersion()
			if txErr = repos.SalesOrders.SaveWithLock(ctx, salesOrder); txErr != nil {
				return txErr
			}
		}

		return repos.PurchaseOrders.SaveWithLock(ctx, po)
	})
	if err != nil {
		return nil, err
	}

	s.publishEvents(ctx, po)

	response := ToPurchaseOrderRefResponse(po)
	return &response, nil
}

// CancelPurchaseOrder cancels a purchase order and releases its quantity
// back to the source sales order lines so they become purchasable again
func (s *PurchasePlanningService) CancelPurchaseOrder(ctx context.Context, tenantID, purchaseOrderID uuid.UUID, req CancelPurchaseOrderRequest) error {
	var po *trade.PurchaseOrder

	err := s.uow.WithinTransaction(ctx, func(ctx context.Context, repos trade.PurchasingRepositories) error {
		var txErr error
		po, txErr = repos.PurchaseOrders.FindByIDForTenant(ctx, tenantID, purchaseOrderID)
		if txErr != nil {
			return txErr
		}

		if txErr = po.Cancel(req.Reason); txErr != nil {
			return txErr
		}

		if po.SourceSalesOrderID != nil {
			salesOrder, txErr := repos.SalesOrders.FindByIDForTenant(ctx, tenantID, *po.SourceSalesOrderID)
			if txErr != nil {
				return txErr
			}
			for idx := range po.Items {
				item := &po.Items[idx]
				if item.SourceSalesOrderLineID == nil {
					continue
				}
				line := salesOrder.GetItem(*item.SourceSalesOrderLineID)
				if line == nil {
					continue
				}
				if txErr = line.ReleasePurchasedQuantity(item.QuantityOrdered); txErr != nil {
					return txErr
				}
			}
			salesOrder.IncrementVersion()
			if txErr = repos.SalesOrders.SaveWithLock(ctx, salesOrder); txErr != nil {
				return txErr
			}
		}

		return repos.PurchaseOrders.SaveWithLock(ctx, po)
	})
	if err != nil {
		return err
	}

	s.publishEvents(ctx, po)
	return nil
}

// GetStatusSummary reports purchasing progress for a sales order
func (s *PurchasePlanningService) GetStatusSummary(ctx context.Context, tenantID, orderID uuid.UUID) (*PurchaseStatusSummaryResponse, error) {
	order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	purchaseOrders, err := s.purchaseOrderRepo.FindBySourceSalesOrder(ctx, tenantID, orderID)
	if err != nil {
		return nil, err
	}

	summary := &PurchaseStatusSummaryResponse{
		SalesOrderID:   order.ID,
		OrderNumber:    order.OrderNumber,
		OrderStatus:    order.Status,
		PurchaseStatus: order.PurchaseStatus(),
	}

	for _, line := range order.ProductItems() {
		summary.TotalLines++
		if line.OutstandingPurchaseQuantity().IsPositive() {
			summary.LinesNeedingPurchase++
		}
		summary.TotalQuantityOrdered = summary.TotalQuantityOrdered.Add(line.QuantityOrdered)
		summary.TotalQuantityOnPO = summary.TotalQuantityOnPO.Add(line.QuantityOnPurchaseOrder)
		summary.TotalQuantityReceived = summary.TotalQuantityReceived.Add(line.QuantityReceived)
	}

	for _, po := range purchaseOrders {
		if po.Status.IsOpen() {
			summary.PurchaseOrdersCreated++
		}
	}

	return summary, nil
}

// BulkAnalyze runs the analyzer over several sales orders, collecting
// per-order results so one bad order does not abort the batch
func (s *PurchasePlanningService) BulkAnalyze(ctx context.Context, tenantID uuid.UUID, orderIDs []uuid.UUID) ([]BulkAnalyzeEntryResponse, error) {
	entries := make([]BulkAnalyzeEntryResponse, 0, len(orderIDs))

	for _, orderID := range orderIDs {
		entry := BulkAnalyzeEntryResponse{SalesOrderID: orderID}

		order, err := s.orderRepo.FindByIDForTenant(ctx, tenantID, orderID)
		if err != nil {
			entry.Error = err.Error()
			entries = append(entries, entry)
			continue
		}
		entry.OrderNumber = order.OrderNumber

		plan, err := s.buildPlan(ctx, tenantID, order)
		if err != nil {
			entry.Error = err.Error()
			entries = append(entries, entry)
			continue
		}

		names, err := s.supplierNames(ctx, tenantID, plan)
		if err != nil {
			entry.Error = err.Error()
			entries = append(entries, entry)
			continue
		}

		entry.Plan = ToPlanResponse(plan, names)
		entry.NeedsAttention = plan.HasUnassigned()
		entries = append(entries, entry)
	}

	return entries, nil
}

// buildPlan loads the catalog for the order's lines and runs the analyzer
func (s *PurchasePlanningService) buildPlan(ctx context.Context, tenantID uuid.UUID, order *trade.SalesOrder) (*trade.PurchaseRequirementsPlan, error) {
	productIDs := make([]uuid.UUID, 0)
	seen := make(map[uuid.UUID]bool)
	for _, line := range order.ProductItems() {
		if !seen[*line.ProductID] {
			seen[*line.ProductID] = true
			productIDs = append(productIDs, *line.ProductID)
		}
	}

	products := make(trade.ProductMap, len(productIDs))
	if len(productIDs) > 0 {
		found, err := s.productRepo.FindByIDsForTenant(ctx, tenantID, productIDs)
		if err != nil {
			return nil, err
		}
		for idx := range found {
			products[found[idx].ID] = &found[idx]
		}
	}

	return s.analyzer.Analyze(order, products)
}

// supplierNames resolves display names for every active vendor in the plan
func (s *PurchasePlanningService) supplierNames(ctx context.Context, tenantID uuid.UUID, plan *trade.PurchaseRequirementsPlan) (map[uuid.UUID]string, error) {
	if len(plan.Vendors) == 0 {
		return map[uuid.UUID]string{}, nil
	}

	ids := make([]uuid.UUID, 0, len(plan.Vendors))
	for _, vendor := range plan.Vendors {
		ids = append(ids, vendor.SupplierID)
	}

	suppliers, err := s.supplierRepo.FindByIDsForTenant(ctx, tenantID, ids)
	if err != nil {
		return nil, err
	}

	names := make(map[uuid.UUID]string, len(suppliers))
	for idx := range suppliers {
		if suppliers[idx].IsActive() {
			names[suppliers[idx].ID] = suppliers[idx].Name
		}
	}
	return names, nil
}

// publishEvents forwards an aggregate's pending events after commit
func (s *PurchasePlanningService) publishEvents(ctx context.Context, aggregate shared.AggregateRoot) {
	if s.eventPublisher == nil || aggregate == nil {
		return
	}
	events := aggregate.GetDomainEvents()
	if len(events) == 0 {
		return
	}
	// Event delivery is best-effort; the transaction already committed
	_ = s.eventPublisher.Publish(ctx, events...)
	aggregate.ClearDomainEvents()
}

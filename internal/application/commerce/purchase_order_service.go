package commerce

import (
	"context"
	"time"

	appinventory "github.com/comercio/backend/internal/application/inventory"
	"github.com/comercio/backend/internal/domain/catalog"
	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/domain/partner"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// PurchaseOrderService handles purchase order lifecycle operations
type PurchaseOrderService struct {
	orders     commerce.PurchaseOrderRepository
	suppliers  partner.SupplierRepository
	products   catalog.ProductRepository
	scope      appinventory.TransactionScope
	reconciler *appinventory.StockReconciler
	statsCache StatisticsCache
	logger     *zap.Logger
}

// NewPurchaseOrderService creates a new PurchaseOrderService
func NewPurchaseOrderService(
	orders commerce.PurchaseOrderRepository,
	suppliers partner.SupplierRepository,
	products catalog.ProductRepository,
	scope appinventory.TransactionScope,
	reconciler *appinventory.StockReconciler,
	logger *zap.Logger,
) *PurchaseOrderService {
	return &PurchaseOrderService{
		orders:     orders,
		suppliers:  suppliers,
		products:   products,
		scope:      scope,
		reconciler: reconciler,
		logger:     logger,
	}
}

// SetStatisticsCache sets the optional statistics rollup cache
func (s *PurchaseOrderService) SetStatisticsCache(cache StatisticsCache) {
	s.statsCache = cache
}

// Create validates and persists a new purchase order in PENDING status
func (s *PurchaseOrderService) Create(ctx context.Context, req CreatePurchaseOrderRequest, actorID string) (*PurchaseOrderResponse, error) {
	const op = "purchase_order.create"

	input := commerce.CreatePurchaseOrderInput{
		DocumentNumber: req.DocumentNumber,
		SupplierID:     req.SupplierID,
		IssueDate:      req.IssueDate,
		DueDate:        req.DueDate,
		Total:          req.Total,
		Discount:       req.Discount,
		Freight:        req.Freight,
		Taxes:          req.Taxes,
		PaymentMethod:  req.PaymentMethod,
		Items:          toLineItemInputs(req.Items),
		ActorID:        actorID,
	}
	if err := commerce.ValidatePurchaseOrderCreate(input, time.Now()); err != nil {
		return nil, shared.WrapOp(op, err)
	}

	supplier, err := s.suppliers.FindByID(ctx, req.SupplierID)
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}

	number := req.DocumentNumber
	if number == "" {
		number, err = s.orders.GenerateDocumentNumber(ctx)
		if err != nil {
			return nil, shared.WrapOp(op, err)
		}
	} else {
		exists, err := s.orders.ExistsByDocumentNumber(ctx, number)
		if err != nil {
			return nil, shared.WrapOp(op, err)
		}
		if exists {
			return nil, shared.WrapOp(op, shared.NewConflictError("document_number", number, "document number already in use"))
		}
	}

	productsByID, err := s.loadProducts(ctx, req.Items)
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}

	order, err := commerce.NewPurchaseOrder(number, req.SupplierID, supplier.Name, req.IssueDate, req.DueDate, commerce.PaymentMethod(req.PaymentMethod), actorID)
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}
	for _, item := range req.Items {
		product := productsByID[item.ProductID]
		if _, err := order.AddItem(item.ProductID, product.Name, item.Quantity, item.UnitPrice); err != nil {
			return nil, shared.WrapOp(op, err)
		}
	}
	if err := order.SetCharges(req.Discount, req.Freight, req.Taxes); err != nil {
		return nil, shared.WrapOp(op, err)
	}
	if order.ItemCount() == 0 {
		// Without line items the total cannot be derived; the caller's
		// validated value is authoritative.
		order.Total = req.Total
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, shared.WrapOp(op, err)
	}

	s.logger.Info("purchase order created",
		zap.String("order_id", order.ID.String()),
		zap.String("document_number", order.DocumentNumber),
		zap.Int64("total", order.Total))
	s.invalidateStats(ctx)

	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a purchase order by ID
func (s *PurchaseOrderService) GetByID(ctx context.Context, id uuid.UUID) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, shared.WrapOp("purchase_order.get", err)
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// GetByNumber retrieves a purchase order by its document number
func (s *PurchaseOrderService) GetByNumber(ctx context.Context, documentNumber string) (*PurchaseOrderResponse, error) {
	order, err := s.orders.FindByNumber(ctx, documentNumber)
	if err != nil {
		return nil, shared.WrapOp("purchase_order.get_by_number", err)
	}
	response := ToPurchaseOrderResponse(order)
	return &response, nil
}

// List retrieves purchase orders matching the filter
func (s *PurchaseOrderService) List(ctx context.Context, req ListRequest) (*shared.Paginated[PurchaseOrderResponse], error) {
	page, err := s.orders.FindAll(ctx, req.ToFilter())
	if err != nil {
		return nil, shared.WrapOp("purchase_order.list", err)
	}
	return ToPurchaseOrderListResponse(page), nil
}

// ListBySupplier retrieves purchase orders for one supplier
func (s *PurchaseOrderService) ListBySupplier(ctx context.Context, supplierID uuid.UUID, req ListRequest) (*shared.Paginated[PurchaseOrderResponse], error) {
	page, err := s.orders.FindBySupplier(ctx, supplierID, req.ToFilter())
	if err != nil {
		return nil, shared.WrapOp("purchase_order.list_by_supplier", err)
	}
	return ToPurchaseOrderListResponse(page), nil
}

// ListByStatus retrieves purchase orders in one status
func (s *PurchaseOrderService) ListByStatus(ctx context.Context, status string, req ListRequest) (*shared.Paginated[PurchaseOrderResponse], error) {
	const op = "purchase_order.list_by_status"
	parsed := commerce.PurchaseOrderStatus(status)
	if !parsed.IsValid() {
		return nil, shared.WrapOp(op, shared.NewValidationError("status", status, commerce.RuleEnumValue))
	}
	page, err := s.orders.FindByStatus(ctx, parsed, req.ToFilter())
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}
	return ToPurchaseOrderListResponse(page), nil
}

// ListByDateRange retrieves purchase orders issued within [from, to]
func (s *PurchaseOrderService) ListByDateRange(ctx context.Context, from, to time.Time, req ListRequest) (*shared.Paginated[PurchaseOrderResponse], error) {
	const op = "purchase_order.list_by_date_range"
	if to.Before(from) {
		return nil, shared.WrapOp(op, shared.NewValidationError("to", to.Format("2006-01-02"), commerce.RuleInvalidDate))
	}
	page, err := s.orders.FindByDateRange(ctx, from, to, req.ToFilter())
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}
	return ToPurchaseOrderListResponse(page), nil
}

// Update applies a partial update to a purchase order. Header fields are
// editable only while the document is not terminal; a status field routes
// through the transition guard with its stock side effects.
func (s *PurchaseOrderService) Update(ctx context.Context, id uuid.UUID, req UpdatePurchaseOrderRequest, actorID string) (*PurchaseOrderResponse, error) {
	const op = "purchase_order.update"

	input := commerce.UpdatePurchaseOrderInput{
		DocumentNumber: req.DocumentNumber,
		IssueDate:      req.IssueDate,
		DueDate:        req.DueDate,
		Total:          req.Total,
		Discount:       req.Discount,
		Freight:        req.Freight,
		Taxes:          req.Taxes,
		PaymentMethod:  req.PaymentMethod,
		Status:         req.Status,
		ActorID:        actorID,
	}
	if err := commerce.ValidatePurchaseOrderUpdate(input, time.Now()); err != nil {
		return nil, shared.WrapOp(op, err)
	}

	var response PurchaseOrderResponse
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		order, err := repos.PurchaseOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}

		changed := hasHeaderChanges(req)
		if changed {
			if order.IsTerminal() {
				return shared.NewBusinessRuleError("DOCUMENT_NOT_EDITABLE", map[string]interface{}{
					"status": order.Status.String(),
				})
			}
			if err := s.applyHeaderUpdate(ctx, repos.PurchaseOrders(), order, req); err != nil {
				return err
			}
		}
		if req.Status != nil {
			target := commerce.PurchaseOrderStatus(*req.Status)
			// A same-status request on a non-terminal document is the same
			// idempotent no-op TransitionStatus performs: nothing persisted.
			if target != order.Status || order.Status.IsTerminal() {
				if err := s.transitionLocked(ctx, repos, order, target, actorID); err != nil {
					return err
				}
				changed = true
			}
		}
		if !changed {
			response = ToPurchaseOrderResponse(order)
			return nil
		}

		order.SetUpdatedBy(actorID)
		if err := repos.PurchaseOrders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		response = ToPurchaseOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}

	s.invalidateStats(ctx)
	return &response, nil
}

// applyHeaderUpdate mutates the non-status fields present in the request
func (s *PurchaseOrderService) applyHeaderUpdate(ctx context.Context, orders commerce.PurchaseOrderRepository, order *commerce.PurchaseOrder, req UpdatePurchaseOrderRequest) error {
	if req.DocumentNumber != nil && *req.DocumentNumber != order.DocumentNumber {
		exists, err := orders.ExistsByDocumentNumber(ctx, *req.DocumentNumber)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("document_number", *req.DocumentNumber, "document number already in use")
		}
		order.DocumentNumber = *req.DocumentNumber
	}
	if req.IssueDate != nil || req.DueDate != nil {
		// The merged pair is validated against the persisted dates, so a
		// lone issue_date cannot move past the stored due_date.
		if err := order.SetSchedule(req.IssueDate, req.DueDate); err != nil {
			return err
		}
	}
	if req.PaymentMethod != nil {
		order.PaymentMethod = commerce.PaymentMethod(*req.PaymentMethod)
	}

	discount := order.Discount
	freight := order.Freight
	taxes := order.Taxes
	if req.Discount != nil {
		discount = *req.Discount
	}
	if req.Freight != nil {
		freight = *req.Freight
	}
	if req.Taxes != nil {
		taxes = *req.Taxes
	}
	// Discount is re-validated against the persisted subtotal inside
	// SetCharges, covering partial updates that omit the total.
	if err := order.SetCharges(discount, freight, taxes); err != nil {
		return err
	}

	if req.Total != nil {
		if order.ItemCount() == 0 {
			order.Total = *req.Total
		} else {
			expected := order.Subtotal() - discount + freight + taxes
			diff := *req.Total - expected
			if diff < -commerce.TotalRoundingTolerance || diff > commerce.TotalRoundingTolerance {
				return shared.NewValidationError("total", *req.Total, commerce.RuleTotalMismatch)
			}
		}
	}
	return nil
}

// Delete removes a purchase order that was never received and has no items
func (s *PurchaseOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "purchase_order.delete"
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return shared.WrapOp(op, err)
	}
	if err := order.CanDelete(); err != nil {
		return shared.WrapOp(op, err)
	}
	if err := s.orders.Delete(ctx, id); err != nil {
		return shared.WrapOp(op, err)
	}
	s.logger.Info("purchase order deleted",
		zap.String("order_id", id.String()),
		zap.String("document_number", order.DocumentNumber))
	s.invalidateStats(ctx)
	return nil
}

// TransitionStatus moves a purchase order through its status graph, applying
// stock reconciliation in the same transaction. A same-status request on a
// non-terminal document returns the unchanged order.
func (s *PurchaseOrderService) TransitionStatus(ctx context.Context, id uuid.UUID, requested string, actorID string) (*PurchaseOrderResponse, error) {
	const op = "purchase_order.transition"

	if !shared.IsActorID(actorID) {
		return nil, shared.WrapOp(op, shared.NewValidationError("actor_id", actorID, commerce.RuleActorID))
	}
	target := commerce.PurchaseOrderStatus(requested)
	if !target.IsValid() {
		return nil, shared.WrapOp(op, shared.NewValidationError("status", requested, commerce.RuleEnumValue))
	}

	var response PurchaseOrderResponse
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		order, err := repos.PurchaseOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if order.Status == target && !order.Status.IsTerminal() {
			// Idempotent no-op; nothing to persist.
			response = ToPurchaseOrderResponse(order)
			return nil
		}
		if err := s.transitionLocked(ctx, repos, order, target, actorID); err != nil {
			return err
		}
		if err := repos.PurchaseOrders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		response = ToPurchaseOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}

	s.invalidateStats(ctx)
	return &response, nil
}

// transitionLocked applies the guard and the stock side effects of the
// transition. Must run inside the caller's transaction; does not save.
func (s *PurchaseOrderService) transitionLocked(ctx context.Context, repos appinventory.TransactionalRepositories, order *commerce.PurchaseOrder, target commerce.PurchaseOrderStatus, actorID string) error {
	decision, err := order.Transition(target, actorID)
	if err != nil {
		return err
	}
	if decision == commerce.TransitionNoOp {
		return nil
	}

	movements := appinventory.MovementsFromPurchaseItems(order.Items)
	switch {
	case target == commerce.PurchaseOrderStatusReceived && !order.StockApplied:
		if err := s.reconciler.ApplyReceipt(ctx, repos.Products(), movements, order.DocumentNumber); err != nil {
			return err
		}
		order.MarkStockApplied()
	case target == commerce.PurchaseOrderStatusCancelled && order.StockApplied:
		if err := s.reconciler.ReverseReceipt(ctx, repos.Products(), movements, order.DocumentNumber); err != nil {
			return err
		}
		order.MarkStockReversed()
	}

	s.logger.Info("purchase order status changed",
		zap.String("order_id", order.ID.String()),
		zap.String("status", target.String()),
		zap.String("actor_id", actorID))
	return nil
}

// Statistics returns the status breakdown and realized totals, read through
// the cache when one is configured.
func (s *PurchaseOrderService) Statistics(ctx context.Context) (*DocumentStatisticsResponse, error) {
	const op = "purchase_order.statistics"

	if s.statsCache != nil {
		var cached DocumentStatisticsResponse
		hit, err := s.statsCache.Get(ctx, CacheKeyPurchaseStats, &cached)
		if err != nil {
			s.logger.Warn("statistics cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	counts, err := s.orders.CountByStatus(ctx)
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}
	total, err := s.orders.SumRealizedTotal(ctx, nil, nil)
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}

	byStatus := make(map[string]int64, len(counts))
	var documents, realized int64
	for status, count := range counts {
		byStatus[status.String()] = count
		documents += count
	}
	for _, status := range commerce.RealizedPurchaseStatuses() {
		realized += counts[status]
	}

	stats := &DocumentStatisticsResponse{
		ByStatus:        byStatus,
		TotalDocuments:  documents,
		RealizedCount:   realized,
		RealizedTotal:   total,
		RealizedAverage: averageMajorUnits(total, realized),
	}
	if s.statsCache != nil {
		if err := s.statsCache.Set(ctx, CacheKeyPurchaseStats, stats); err != nil {
			s.logger.Warn("statistics cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// RealizedTotal sums realized purchase totals within the optional date range
func (s *PurchaseOrderService) RealizedTotal(ctx context.Context, from, to *time.Time) (int64, error) {
	total, err := s.orders.SumRealizedTotal(ctx, from, to)
	if err != nil {
		return 0, shared.WrapOp("purchase_order.realized_total", err)
	}
	return total, nil
}

func (s *PurchaseOrderService) invalidateStats(ctx context.Context) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Invalidate(ctx, CacheKeyPurchaseStats); err != nil {
		s.logger.Warn("statistics cache invalidation failed", zap.Error(err))
	}
}

// loadProducts resolves every referenced product, failing on the first
// missing id.
func (s *PurchaseOrderService) loadProducts(ctx context.Context, items []LineItemRequest) (map[uuid.UUID]catalog.Product, error) {
	ids := make([]uuid.UUID, 0, len(items))
	for _, item := range items {
		ids = append(ids, item.ProductID)
	}
	return resolveProducts(ctx, s.products, ids)
}

func resolveProducts(ctx context.Context, repo catalog.ProductRepository, ids []uuid.UUID) (map[uuid.UUID]catalog.Product, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]catalog.Product{}, nil
	}
	found, err := repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	byID := make(map[uuid.UUID]catalog.Product, len(found))
	for _, product := range found {
		byID[product.ID] = product
	}
	for _, id := range ids {
		if _, ok := byID[id]; !ok {
			return nil, shared.NewNotFoundError("product", id.String())
		}
	}
	return byID, nil
}

func toLineItemInputs(items []LineItemRequest) []commerce.LineItemInput {
	inputs := make([]commerce.LineItemInput, 0, len(items))
	for _, item := range items {
		inputs = append(inputs, commerce.LineItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			UnitPrice: item.UnitPrice,
		})
	}
	return inputs
}

func hasHeaderChanges(req UpdatePurchaseOrderRequest) bool {
	return req.DocumentNumber != nil || req.IssueDate != nil || req.DueDate != nil ||
		req.Total != nil || req.Discount != nil || req.Freight != nil ||
		req.Taxes != nil || req.PaymentMethod != nil
}

// averageMajorUnits converts a minor-unit total and a count into a major-unit
// average string ("12.34").
func averageMajorUnits(total, count int64) string {
	if count == 0 {
		return "0.00"
	}
	return decimal.NewFromInt(total).
		Div(decimal.NewFromInt(count)).
		Div(decimal.NewFromInt(100)).
		StringFixed(2)
}

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
	"go.uber.org/zap"
)

// SalesOrderService handles sales order lifecycle operations.
//
// Stock is not touched by sales transitions themselves; the decrement happens
// when the delivered order is settled (see SettledSaleService).
type SalesOrderService struct {
	orders     commerce.SalesOrderRepository
	customers  partner.CustomerRepository
	products   catalog.ProductRepository
	scope      appinventory.TransactionScope
	statsCache StatisticsCache
	logger     *zap.Logger
}

// NewSalesOrderService creates a new SalesOrderService
func NewSalesOrderService(
	orders commerce.SalesOrderRepository,
	customers partner.CustomerRepository,
	products catalog.ProductRepository,
	scope appinventory.TransactionScope,
	logger *zap.Logger,
) *SalesOrderService {
	return &SalesOrderService{
		orders:    orders,
		customers: customers,
		products:  products,
		scope:     scope,
		logger:    logger,
	}
}

// SetStatisticsCache sets the optional statistics rollup cache
func (s *SalesOrderService) SetStatisticsCache(cache StatisticsCache) {
	s.statsCache = cache
}

// Create validates and persists a new sales order in PENDING status
func (s *SalesOrderService) Create(ctx context.Context, req CreateSalesOrderRequest, actorID string) (*SalesOrderResponse, error) {
	const op = "sales_order.create"

	input := commerce.CreateSalesOrderInput{
		DocumentNumber:  req.DocumentNumber,
		CustomerID:      req.CustomerID,
		Total:           req.Total,
		Discount:        req.Discount,
		DeliveryFee:     req.DeliveryFee,
		PaymentMethod:   req.PaymentMethod,
		DeliveryAddress: req.DeliveryAddress,
		Items:           toLineItemInputs(req.Items),
		ActorID:         actorID,
	}
	if err := commerce.ValidateSalesOrderCreate(input); err != nil {
		return nil, shared.WrapOp(op, err)
	}

	customer, err := s.customers.FindByID(ctx, req.CustomerID)
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

	ids := make([]uuid.UUID, 0, len(req.Items))
	for _, item := range req.Items {
		ids = append(ids, item.ProductID)
	}
	productsByID, err := resolveProducts(ctx, s.products, ids)
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}

	order, err := commerce.NewSalesOrder(number, req.CustomerID, customer.Name, commerce.PaymentMethod(req.PaymentMethod), actorID)
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}
	for _, item := range req.Items {
		product := productsByID[item.ProductID]
		if _, err := order.AddItem(item.ProductID, product.Name, item.Quantity, item.UnitPrice); err != nil {
			return nil, shared.WrapOp(op, err)
		}
	}
	if err := order.SetCharges(req.Discount, req.DeliveryFee); err != nil {
		return nil, shared.WrapOp(op, err)
	}
	if req.DeliveryAddress != "" {
		order.SetDeliveryAddress(req.DeliveryAddress)
	}
	if order.ItemCount() == 0 {
		order.Total = req.Total
	}

	if err := s.orders.Save(ctx, order); err != nil {
		return nil, shared.WrapOp(op, err)
	}

	s.logger.Info("sales order created",
		zap.String("order_id", order.ID.String()),
		zap.String("document_number", order.DocumentNumber),
		zap.Int64("total", order.Total))
	s.invalidateStats(ctx)

	response := ToSalesOrderResponse(order)
	return &response, nil
}

// GetByID retrieves a sales order by ID
func (s *SalesOrderService) GetByID(ctx context.Context, id uuid.UUID) (*SalesOrderResponse, error) {
	order, err := s.orders.FindByID(ctx, id)
	if err != nil {
		return nil, shared.WrapOp("sales_order.get", err)
	}
	response := ToSalesOrderResponse(order)
	return &response, nil
}

// List retrieves sales orders matching the filter
func (s *SalesOrderService) List(ctx context.Context, req ListRequest) (*shared.Paginated[SalesOrderResponse], error) {
	page, err := s.orders.FindAll(ctx, req.ToFilter())
	if err != nil {
		return nil, shared.WrapOp("sales_order.list", err)
	}
	return ToSalesOrderListResponse(page), nil
}

// ListByCustomer retrieves sales orders for one customer
func (s *SalesOrderService) ListByCustomer(ctx context.Context, customerID uuid.UUID, req ListRequest) (*shared.Paginated[SalesOrderResponse], error) {
	page, err := s.orders.FindByCustomer(ctx, customerID, req.ToFilter())
	if err != nil {
		return nil, shared.WrapOp("sales_order.list_by_customer", err)
	}
	return ToSalesOrderListResponse(page), nil
}

// ListByStatus retrieves sales orders in one status
func (s *SalesOrderService) ListByStatus(ctx context.Context, status string, req ListRequest) (*shared.Paginated[SalesOrderResponse], error) {
	const op = "sales_order.list_by_status"
	parsed := commerce.SalesOrderStatus(status)
	if !parsed.IsValid() {
		return nil, shared.WrapOp(op, shared.NewValidationError("status", status, commerce.RuleEnumValue))
	}
	page, err := s.orders.FindByStatus(ctx, parsed, req.ToFilter())
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}
	return ToSalesOrderListResponse(page), nil
}

// ListByDateRange retrieves sales orders created within [from, to]
func (s *SalesOrderService) ListByDateRange(ctx context.Context, from, to time.Time, req ListRequest) (*shared.Paginated[SalesOrderResponse], error) {
	const op = "sales_order.list_by_date_range"
	if to.Before(from) {
		return nil, shared.WrapOp(op, shared.NewValidationError("to", to.Format("2006-01-02"), commerce.RuleInvalidDate))
	}
	page, err := s.orders.FindByDateRange(ctx, from, to, req.ToFilter())
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}
	return ToSalesOrderListResponse(page), nil
}

// Update applies a partial update to a sales order
func (s *SalesOrderService) Update(ctx context.Context, id uuid.UUID, req UpdateSalesOrderRequest, actorID string) (*SalesOrderResponse, error) {
	const op = "sales_order.update"

	input := commerce.UpdateSalesOrderInput{
		DocumentNumber:  req.DocumentNumber,
		Total:           req.Total,
		Discount:        req.Discount,
		DeliveryFee:     req.DeliveryFee,
		PaymentMethod:   req.PaymentMethod,
		Status:          req.Status,
		DeliveryAddress: req.DeliveryAddress,
		ActorID:         actorID,
	}
	if err := commerce.ValidateSalesOrderUpdate(input); err != nil {
		return nil, shared.WrapOp(op, err)
	}

	var response SalesOrderResponse
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		order, err := repos.SalesOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}

		changed := hasSalesHeaderChanges(req)
		if changed {
			if order.IsTerminal() {
				return shared.NewBusinessRuleError("DOCUMENT_NOT_EDITABLE", map[string]interface{}{
					"status": order.Status.String(),
				})
			}
			if err := s.applyHeaderUpdate(ctx, repos.SalesOrders(), order, req); err != nil {
				return err
			}
		}
		if req.Status != nil {
			decision, err := order.Transition(commerce.SalesOrderStatus(*req.Status), actorID)
			if err != nil {
				return err
			}
			if decision == commerce.TransitionProceed {
				changed = true
			}
		}
		if !changed {
			// Same idempotent no-op as TransitionStatus: nothing persisted.
			response = ToSalesOrderResponse(order)
			return nil
		}

		order.SetUpdatedBy(actorID)
		if err := repos.SalesOrders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		response = ToSalesOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}

	s.invalidateStats(ctx)
	return &response, nil
}

func (s *SalesOrderService) applyHeaderUpdate(ctx context.Context, orders commerce.SalesOrderRepository, order *commerce.SalesOrder, req UpdateSalesOrderRequest) error {
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
	if req.PaymentMethod != nil {
		order.PaymentMethod = commerce.PaymentMethod(*req.PaymentMethod)
	}
	if req.DeliveryAddress != nil {
		order.SetDeliveryAddress(*req.DeliveryAddress)
	}

	discount := order.Discount
	deliveryFee := order.DeliveryFee
	if req.Discount != nil {
		discount = *req.Discount
	}
	if req.DeliveryFee != nil {
		deliveryFee = *req.DeliveryFee
	}
	if err := order.SetCharges(discount, deliveryFee); err != nil {
		return err
	}

	if req.Total != nil {
		if order.ItemCount() == 0 {
			order.Total = *req.Total
		} else {
			expected := order.Subtotal() - discount + deliveryFee
			diff := *req.Total - expected
			if diff < -commerce.TotalRoundingTolerance || diff > commerce.TotalRoundingTolerance {
				return shared.NewValidationError("total", *req.Total, commerce.RuleTotalMismatch)
			}
		}
	}
	return nil
}

// Delete removes a sales order that was never delivered
func (s *SalesOrderService) Delete(ctx context.Context, id uuid.UUID) error {
	const op = "sales_order.delete"
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
	s.logger.Info("sales order deleted",
		zap.String("order_id", id.String()),
		zap.String("document_number", order.DocumentNumber))
	s.invalidateStats(ctx)
	return nil
}

// TransitionStatus moves a sales order through its status graph. A
// same-status request on a non-terminal document returns the unchanged order.
func (s *SalesOrderService) TransitionStatus(ctx context.Context, id uuid.UUID, requested string, actorID string) (*SalesOrderResponse, error) {
	const op = "sales_order.transition"

	if !shared.IsActorID(actorID) {
		return nil, shared.WrapOp(op, shared.NewValidationError("actor_id", actorID, commerce.RuleActorID))
	}
	target := commerce.SalesOrderStatus(requested)
	if !target.IsValid() {
		return nil, shared.WrapOp(op, shared.NewValidationError("status", requested, commerce.RuleEnumValue))
	}

	var response SalesOrderResponse
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		order, err := repos.SalesOrders().FindByID(ctx, id)
		if err != nil {
			return err
		}
		decision, err := order.Transition(target, actorID)
		if err != nil {
			return err
		}
		if decision == commerce.TransitionNoOp {
			response = ToSalesOrderResponse(order)
			return nil
		}
		if err := repos.SalesOrders().SaveWithLock(ctx, order); err != nil {
			return err
		}
		s.logger.Info("sales order status changed",
			zap.String("order_id", order.ID.String()),
			zap.String("status", target.String()),
			zap.String("actor_id", actorID))
		response = ToSalesOrderResponse(order)
		return nil
	})
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}

	s.invalidateStats(ctx)
	return &response, nil
}

// Statistics returns the status breakdown and realized totals, read through
// the cache when one is configured.
func (s *SalesOrderService) Statistics(ctx context.Context) (*DocumentStatisticsResponse, error) {
	const op = "sales_order.statistics"

	if s.statsCache != nil {
		var cached DocumentStatisticsResponse
		hit, err := s.statsCache.Get(ctx, CacheKeySalesStats, &cached)
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
	for _, status := range commerce.RealizedSalesStatuses() {
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
		if err := s.statsCache.Set(ctx, CacheKeySalesStats, stats); err != nil {
			s.logger.Warn("statistics cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

// RealizedTotal sums realized sales totals within the optional date range
func (s *SalesOrderService) RealizedTotal(ctx context.Context, from, to *time.Time) (int64, error) {
	total, err := s.orders.SumRealizedTotal(ctx, from, to)
	if err != nil {
		return 0, shared.WrapOp("sales_order.realized_total", err)
	}
	return total, nil
}

func (s *SalesOrderService) invalidateStats(ctx context.Context) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Invalidate(ctx, CacheKeySalesStats); err != nil {
		s.logger.Warn("statistics cache invalidation failed", zap.Error(err))
	}
}

func hasSalesHeaderChanges(req UpdateSalesOrderRequest) bool {
	return req.DocumentNumber != nil || req.Total != nil || req.Discount != nil ||
		req.DeliveryFee != nil || req.PaymentMethod != nil || req.DeliveryAddress != nil
}

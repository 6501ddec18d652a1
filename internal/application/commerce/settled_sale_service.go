package commerce

import (
	"context"
	"time"

	appinventory "github.com/comercio/backend/internal/application/inventory"
	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SettledSaleService settles delivered sales orders and manages the
// settlement records. Settlement and its stock decrement run in one
// transaction: the settlement row, the product stock updates and the order's
// stock-applied flag commit or roll back together.
type SettledSaleService struct {
	sales      commerce.SettledSaleRepository
	orders     commerce.SalesOrderRepository
	scope      appinventory.TransactionScope
	reconciler *appinventory.StockReconciler
	statsCache StatisticsCache
	logger     *zap.Logger
}

// NewSettledSaleService creates a new SettledSaleService
func NewSettledSaleService(
	sales commerce.SettledSaleRepository,
	orders commerce.SalesOrderRepository,
	scope appinventory.TransactionScope,
	reconciler *appinventory.StockReconciler,
	logger *zap.Logger,
) *SettledSaleService {
	return &SettledSaleService{
		sales:      sales,
		orders:     orders,
		scope:      scope,
		reconciler: reconciler,
		logger:     logger,
	}
}

// SetStatisticsCache sets the optional statistics rollup cache
func (s *SettledSaleService) SetStatisticsCache(cache StatisticsCache) {
	s.statsCache = cache
}

// ProcessFromOrder settles a delivered sales order. At most one settlement
// may exist per order; repeating the call returns a conflict.
func (s *SettledSaleService) ProcessFromOrder(ctx context.Context, orderID uuid.UUID, req ProcessSettlementRequest, actorID string) (*SettledSaleResponse, error) {
	const op = "settled_sale.process"

	var response SettledSaleResponse
	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		exists, err := repos.SettledSales().ExistsByOrderID(ctx, orderID)
		if err != nil {
			return err
		}
		if exists {
			return shared.NewConflictError("order_id", orderID.String(), "sales order already settled")
		}

		order, err := repos.SalesOrders().FindByID(ctx, orderID)
		if err != nil {
			return err
		}
		sale, err := commerce.NewSettledSale(order, commerce.PaymentMethod(req.PaymentMethod), req.AmountPaid, actorID)
		if err != nil {
			return err
		}
		if err := repos.SettledSales().Save(ctx, sale); err != nil {
			return err
		}

		if !order.StockApplied {
			movements := appinventory.MovementsFromSalesItems(order.Items)
			if err := s.reconciler.ApplyDelivery(ctx, repos.Products(), movements, order.DocumentNumber); err != nil {
				return err
			}
			order.MarkStockApplied()
			if err := repos.SalesOrders().SaveWithLock(ctx, order); err != nil {
				return err
			}
		}

		s.logger.Info("sales order settled",
			zap.String("order_id", orderID.String()),
			zap.String("settlement_id", sale.ID.String()),
			zap.Int64("final_total", sale.FinalTotal),
			zap.Int64("cash_change", sale.CashChange))
		response = ToSettledSaleResponse(sale)
		return nil
	})
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}

	s.invalidateStats(ctx)
	return &response, nil
}

// GetByID retrieves a settlement by ID
func (s *SettledSaleService) GetByID(ctx context.Context, id uuid.UUID) (*SettledSaleResponse, error) {
	sale, err := s.sales.FindByID(ctx, id)
	if err != nil {
		return nil, shared.WrapOp("settled_sale.get", err)
	}
	response := ToSettledSaleResponse(sale)
	return &response, nil
}

// GetByOrder retrieves the settlement for a sales order
func (s *SettledSaleService) GetByOrder(ctx context.Context, orderID uuid.UUID) (*SettledSaleResponse, error) {
	sale, err := s.sales.FindByOrderID(ctx, orderID)
	if err != nil {
		return nil, shared.WrapOp("settled_sale.get_by_order", err)
	}
	response := ToSettledSaleResponse(sale)
	return &response, nil
}

// List retrieves settlements matching the filter
func (s *SettledSaleService) List(ctx context.Context, req ListRequest) (*shared.Paginated[SettledSaleResponse], error) {
	page, err := s.sales.FindAll(ctx, req.ToFilter())
	if err != nil {
		return nil, shared.WrapOp("settled_sale.list", err)
	}
	return ToSettledSaleListResponse(page), nil
}

// ListByDateRange retrieves settlements settled within [from, to]
func (s *SettledSaleService) ListByDateRange(ctx context.Context, from, to time.Time, req ListRequest) (*shared.Paginated[SettledSaleResponse], error) {
	const op = "settled_sale.list_by_date_range"
	if to.Before(from) {
		return nil, shared.WrapOp(op, shared.NewValidationError("to", to.Format("2006-01-02"), commerce.RuleInvalidDate))
	}
	page, err := s.sales.FindByDateRange(ctx, from, to, req.ToFilter())
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}
	return ToSettledSaleListResponse(page), nil
}

// Delete removes a same-day settlement and restores the stock its creation
// decremented. Settlements from earlier days are permanent.
func (s *SettledSaleService) Delete(ctx context.Context, id uuid.UUID, actorID string) error {
	const op = "settled_sale.delete"

	if !shared.IsActorID(actorID) {
		return shared.WrapOp(op, shared.NewValidationError("actor_id", actorID, commerce.RuleActorID))
	}

	err := s.scope.Execute(ctx, func(repos appinventory.TransactionalRepositories) error {
		sale, err := repos.SettledSales().FindByID(ctx, id)
		if err != nil {
			return err
		}
		if err := sale.CanDelete(time.Now()); err != nil {
			return err
		}

		order, err := repos.SalesOrders().FindByID(ctx, sale.OrderID)
		switch {
		case err != nil && shared.IsNotFound(err):
			s.logger.Warn("settlement deleted but its sales order is gone; stock not restored",
				zap.String("settlement_id", id.String()),
				zap.String("order_id", sale.OrderID.String()))
		case err != nil:
			return err
		case order.StockApplied:
			movements := appinventory.MovementsFromSalesItems(order.Items)
			if err := s.reconciler.ReverseDelivery(ctx, repos.Products(), movements, order.DocumentNumber); err != nil {
				return err
			}
			order.MarkStockReversed()
			order.SetUpdatedBy(actorID)
			if err := repos.SalesOrders().SaveWithLock(ctx, order); err != nil {
				return err
			}
		}

		if err := repos.SettledSales().Delete(ctx, id); err != nil {
			return err
		}
		s.logger.Info("settlement deleted",
			zap.String("settlement_id", id.String()),
			zap.String("order_id", sale.OrderID.String()),
			zap.String("actor_id", actorID))
		return nil
	})
	if err != nil {
		return shared.WrapOp(op, err)
	}

	s.invalidateStats(ctx)
	return nil
}

// Statistics returns the settlement count, total and average, read through
// the cache when one is configured.
func (s *SettledSaleService) Statistics(ctx context.Context) (*SettlementStatisticsResponse, error) {
	const op = "settled_sale.statistics"

	if s.statsCache != nil {
		var cached SettlementStatisticsResponse
		hit, err := s.statsCache.Get(ctx, CacheKeySettlementStats, &cached)
		if err != nil {
			s.logger.Warn("statistics cache read failed", zap.Error(err))
		} else if hit {
			return &cached, nil
		}
	}

	count, err := s.sales.Count(ctx, nil, nil)
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}
	total, err := s.sales.SumTotal(ctx, nil, nil)
	if err != nil {
		return nil, shared.WrapOp(op, err)
	}

	stats := &SettlementStatisticsResponse{
		Count:        count,
		Total:        total,
		AverageTotal: averageMajorUnits(total, count),
	}
	if s.statsCache != nil {
		if err := s.statsCache.Set(ctx, CacheKeySettlementStats, stats); err != nil {
			s.logger.Warn("statistics cache write failed", zap.Error(err))
		}
	}
	return stats, nil
}

func (s *SettledSaleService) invalidateStats(ctx context.Context) {
	if s.statsCache == nil {
		return
	}
	if err := s.statsCache.Invalidate(ctx, CacheKeySettlementStats); err != nil {
		s.logger.Warn("statistics cache invalidation failed", zap.Error(err))
	}
}

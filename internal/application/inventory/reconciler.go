package inventory

import (
	"context"

	"github.com/comercio/backend/internal/domain/catalog"
	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// StockMovement is one product quantity affected by a document status change
type StockMovement struct {
	ProductID uuid.UUID
	Quantity  int64
}

// MovementsFromPurchaseItems converts purchase order line items into stock movements
func MovementsFromPurchaseItems(items []commerce.PurchaseOrderItem) []StockMovement {
	movements := make([]StockMovement, 0, len(items))
	for _, item := range items {
		movements = append(movements, StockMovement{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return movements
}

// MovementsFromSalesItems converts sales order line items into stock movements
func MovementsFromSalesItems(items []commerce.SalesOrderItem) []StockMovement {
	movements := make([]StockMovement, 0, len(items))
	for _, item := range items {
		movements = append(movements, StockMovement{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return movements
}

// StockReconciler applies the stock side effects of document status changes.
//
// Reconciliation is best-effort at the product level: a line item whose
// product no longer exists is skipped with a warning, and a reversal that
// would drive stock negative floors at zero with a warning. Infrastructure
// failures still abort, so the caller's transaction rolls back as a whole.
type StockReconciler struct {
	logger *zap.Logger
}

// NewStockReconciler creates a new StockReconciler
func NewStockReconciler(logger *zap.Logger) *StockReconciler {
	return &StockReconciler{logger: logger}
}

// ApplyReceipt increases stock for each movement of a received purchase order
func (r *StockReconciler) ApplyReceipt(ctx context.Context, products catalog.ProductRepository, movements []StockMovement, documentNumber string) error {
	return r.increase(ctx, products, movements, documentNumber)
}

// ReverseReceipt undoes a previously applied receipt, flooring stock at zero
func (r *StockReconciler) ReverseReceipt(ctx context.Context, products catalog.ProductRepository, movements []StockMovement, documentNumber string) error {
	return r.decrease(ctx, products, movements, documentNumber)
}

// ApplyDelivery decreases stock for each movement of a delivered sales order
func (r *StockReconciler) ApplyDelivery(ctx context.Context, products catalog.ProductRepository, movements []StockMovement, documentNumber string) error {
	return r.decrease(ctx, products, movements, documentNumber)
}

// ReverseDelivery restores stock when an applied delivery is undone
func (r *StockReconciler) ReverseDelivery(ctx context.Context, products catalog.ProductRepository, movements []StockMovement, documentNumber string) error {
	return r.increase(ctx, products, movements, documentNumber)
}

func (r *StockReconciler) increase(ctx context.Context, products catalog.ProductRepository, movements []StockMovement, documentNumber string) error {
	if len(movements) == 0 {
		r.logger.Warn("stock reconciliation requested with no line items",
			zap.String("document_number", documentNumber))
		return nil
	}
	for _, m := range movements {
		product, err := products.FindByID(ctx, m.ProductID)
		if err != nil {
			if shared.IsNotFound(err) {
				r.logger.Warn("skipping stock increase for missing product",
					zap.String("product_id", m.ProductID.String()),
					zap.String("document_number", documentNumber))
				continue
			}
			return err
		}
		if err := product.IncreaseStock(m.Quantity); err != nil {
			return err
		}
		if err := products.Save(ctx, product); err != nil {
			return err
		}
	}
	return nil
}

func (r *StockReconciler) decrease(ctx context.Context, products catalog.ProductRepository, movements []StockMovement, documentNumber string) error {
	if len(movements) == 0 {
		r.logger.Warn("stock reconciliation requested with no line items",
			zap.String("document_number", documentNumber))
		return nil
	}
	for _, m := range movements {
		product, err := products.FindByID(ctx, m.ProductID)
		if err != nil {
			if shared.IsNotFound(err) {
				r.logger.Warn("skipping stock decrease for missing product",
					zap.String("product_id", m.ProductID.String()),
					zap.String("document_number", documentNumber))
				continue
			}
			return err
		}
		floored, err := product.DecreaseStock(m.Quantity)
		if err != nil {
			return err
		}
		if floored {
			r.logger.Warn("stock floored at zero during decrease",
				zap.String("product_id", m.ProductID.String()),
				zap.String("product_code", product.Code),
				zap.Int64("requested_quantity", m.Quantity),
				zap.String("document_number", documentNumber))
		}
		if err := products.Save(ctx, product); err != nil {
			return err
		}
		if product.IsBelowMinStock() {
			r.logger.Warn("product stock at or below minimum threshold",
				zap.String("product_id", m.ProductID.String()),
				zap.String("product_code", product.Code),
				zap.Int64("stock_quantity", product.StockQuantity),
				zap.Int64("min_stock", product.MinStock))
		}
	}
	return nil
}

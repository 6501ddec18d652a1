package persistence

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormPurchaseOrderRepository implements commerce.PurchaseOrderRepository using GORM
type GormPurchaseOrderRepository struct {
	db *gorm.DB
}

// NewGormPurchaseOrderRepository creates a new GormPurchaseOrderRepository
func NewGormPurchaseOrderRepository(db *gorm.DB) *GormPurchaseOrderRepository {
	return &GormPurchaseOrderRepository{db: db}
}

// FindByID finds a purchase order by its ID
func (r *GormPurchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*commerce.PurchaseOrder, error) {
	var order commerce.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("purchase order", id.String())
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds a purchase order by its document number
func (r *GormPurchaseOrderRepository) FindByNumber(ctx context.Context, documentNumber string) (*commerce.PurchaseOrder, error) {
	var order commerce.PurchaseOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "document_number = ?", documentNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("purchase order", documentNumber)
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds purchase orders matching the filter
func (r *GormPurchaseOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[commerce.PurchaseOrder], error) {
	query := r.applyFilter(r.baseQuery(ctx), filter)
	return findPage[commerce.PurchaseOrder](query, filter, PurchaseOrderSortFields, "Items")
}

// FindBySupplier finds purchase orders for a supplier
func (r *GormPurchaseOrderRepository) FindBySupplier(ctx context.Context, supplierID uuid.UUID, filter shared.Filter) (*shared.Paginated[commerce.PurchaseOrder], error) {
	query := r.applyFilter(r.baseQuery(ctx).Where("supplier_id = ?", supplierID), filter)
	return findPage[commerce.PurchaseOrder](query, filter, PurchaseOrderSortFields, "Items")
}

// FindByStatus finds purchase orders in the given status
func (r *GormPurchaseOrderRepository) FindByStatus(ctx context.Context, status commerce.PurchaseOrderStatus, filter shared.Filter) (*shared.Paginated[commerce.PurchaseOrder], error) {
	query := r.applyFilter(r.baseQuery(ctx).Where("status = ?", status), filter)
	return findPage[commerce.PurchaseOrder](query, filter, PurchaseOrderSortFields, "Items")
}

// FindByDateRange finds purchase orders whose issue date falls in [from, to]
func (r *GormPurchaseOrderRepository) FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) (*shared.Paginated[commerce.PurchaseOrder], error) {
	query := r.applyFilter(r.baseQuery(ctx).
		Where("issue_date >= ? AND issue_date <= ?", from, to), filter)
	return findPage[commerce.PurchaseOrder](query, filter, PurchaseOrderSortFields, "Items")
}

// Save creates or updates a purchase order together with its items
func (r *GormPurchaseOrderRepository) Save(ctx context.Context, order *commerce.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}
		return r.saveItems(tx, order)
	})
}

// SaveWithLock persists the aggregate only if its version still matches the
// stored row, bumping the version on success.
func (r *GormPurchaseOrderRepository) SaveWithLock(ctx context.Context, order *commerce.PurchaseOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := order.Version
		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&commerce.PurchaseOrder{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"document_number": order.DocumentNumber,
				"supplier_id":     order.SupplierID,
				"supplier_name":   order.SupplierName,
				"issue_date":      order.IssueDate,
				"due_date":        order.DueDate,
				"total":           order.Total,
				"discount":        order.Discount,
				"freight":         order.Freight,
				"taxes":           order.Taxes,
				"payment_method":  order.PaymentMethod,
				"status":          order.Status,
				"stock_applied":   order.StockApplied,
				"updated_by":      order.UpdatedBy,
				"version":         order.Version,
				"updated_at":      order.UpdatedAt,
			})
		if result.Error != nil {
			order.Version = currentVersion
			return result.Error
		}
		if result.RowsAffected == 0 {
			order.Version = currentVersion
			return shared.NewConflictError("version", currentVersion,
				"purchase order was modified concurrently")
		}

		return r.saveItems(tx, order)
	})
}

// Delete removes a purchase order and its items
func (r *GormPurchaseOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).
			Delete(&commerce.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&commerce.PurchaseOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("purchase order", id.String())
		}
		return nil
	})
}

// CountByStatus counts purchase orders grouped by status
func (r *GormPurchaseOrderRepository) CountByStatus(ctx context.Context) (map[commerce.PurchaseOrderStatus]int64, error) {
	var rows []struct {
		Status commerce.PurchaseOrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&commerce.PurchaseOrder{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[commerce.PurchaseOrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumRealizedTotal sums Total over orders in realized statuses, optionally
// restricted to an issue date window
func (r *GormPurchaseOrderRepository) SumRealizedTotal(ctx context.Context, from, to *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&commerce.PurchaseOrder{}).
		Where("status IN ?", commerce.RealizedPurchaseStatuses())
	if from != nil {
		query = query.Where("issue_date >= ?", *from)
	}
	if to != nil {
		query = query.Where("issue_date <= ?", *to)
	}

	var sum int64
	if err := query.Select("COALESCE(SUM(total), 0)").Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// ExistsByDocumentNumber reports whether a purchase order with the given document number exists
func (r *GormPurchaseOrderRepository) ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&commerce.PurchaseOrder{}).
		Where("document_number = ?", documentNumber).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateDocumentNumber produces the next sequential purchase document
// number in the form PC-YYYY-NNNNN, restarting the sequence each year
func (r *GormPurchaseOrderRepository) GenerateDocumentNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("PC-%d-", time.Now().Year())
	return nextDocumentNumber(r.db.WithContext(ctx), &commerce.PurchaseOrder{}, prefix)
}

func (r *GormPurchaseOrderRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&commerce.PurchaseOrder{})
}

func (r *GormPurchaseOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(document_number) LIKE ? OR LOWER(supplier_name) LIKE ?",
			pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "supplier_id":
			query = query.Where("supplier_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		}
	}
	return query
}

// saveItems reconciles the item rows with the aggregate's current item list:
// rows no longer present are deleted, the rest are upserted
func (r *GormPurchaseOrderRepository) saveItems(tx *gorm.DB, order *commerce.PurchaseOrder) error {
	currentItemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentItemIDs).
			Delete(&commerce.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&commerce.PurchaseOrderItem{}).Error; err != nil {
			return err
		}
	}

	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		if err := tx.Save(&order.Items[i]).Error; err != nil {
			return err
		}
	}
	return nil
}

// nextDocumentNumber finds the highest existing document number under the
// given prefix and returns the next one, zero padded to five digits
func nextDocumentNumber(db *gorm.DB, model interface{}, prefix string) (string, error) {
	var last string
	err := db.Model(model).
		Where("document_number LIKE ?", prefix+"%").
		Select("document_number").
		Order("document_number DESC").
		Limit(1).
		Scan(&last).Error
	if err != nil {
		return "", err
	}

	next := 1
	if last != "" {
		if seq, err := strconv.Atoi(strings.TrimPrefix(last, prefix)); err == nil {
			next = seq + 1
		}
	}
	return fmt.Sprintf("%s%05d", prefix, next), nil
}

package persistence

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSalesOrderRepository implements commerce.SalesOrderRepository using GORM
type GormSalesOrderRepository struct {
	db *gorm.DB
}

// NewGormSalesOrderRepository creates a new GormSalesOrderRepository
func NewGormSalesOrderRepository(db *gorm.DB) *GormSalesOrderRepository {
	return &GormSalesOrderRepository{db: db}
}

// FindByID finds a sales order by its ID
func (r *GormSalesOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*commerce.SalesOrder, error) {
	var order commerce.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("sales order", id.String())
		}
		return nil, err
	}
	return &order, nil
}

// FindByNumber finds a sales order by its document number
func (r *GormSalesOrderRepository) FindByNumber(ctx context.Context, documentNumber string) (*commerce.SalesOrder, error) {
	var order commerce.SalesOrder
	if err := r.db.WithContext(ctx).
		Preload("Items").
		First(&order, "document_number = ?", documentNumber).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("sales order", documentNumber)
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds sales orders matching the filter
func (r *GormSalesOrderRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[commerce.SalesOrder], error) {
	query := r.applyFilter(r.baseQuery(ctx), filter)
	return findPage[commerce.SalesOrder](query, filter, SalesOrderSortFields, "Items")
}

// FindByCustomer finds sales orders for a customer
func (r *GormSalesOrderRepository) FindByCustomer(ctx context.Context, customerID uuid.UUID, filter shared.Filter) (*shared.Paginated[commerce.SalesOrder], error) {
	query := r.applyFilter(r.baseQuery(ctx).Where("customer_id = ?", customerID), filter)
	return findPage[commerce.SalesOrder](query, filter, SalesOrderSortFields, "Items")
}

// FindByStatus finds sales orders in the given status
func (r *GormSalesOrderRepository) FindByStatus(ctx context.Context, status commerce.SalesOrderStatus, filter shared.Filter) (*shared.Paginated[commerce.SalesOrder], error) {
	query := r.applyFilter(r.baseQuery(ctx).Where("status = ?", status), filter)
	return findPage[commerce.SalesOrder](query, filter, SalesOrderSortFields, "Items")
}

// FindByDateRange finds sales orders created in [from, to]
func (r *GormSalesOrderRepository) FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) (*shared.Paginated[commerce.SalesOrder], error) {
	query := r.applyFilter(r.baseQuery(ctx).
		Where("created_at >= ? AND created_at <= ?", from, to), filter)
	return findPage[commerce.SalesOrder](query, filter, SalesOrderSortFields, "Items")
}

// Save creates or updates a sales order together with its items
func (r *GormSalesOrderRepository) Save(ctx context.Context, order *commerce.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Omit("Items").Save(order).Error; err != nil {
			return err
		}
		return r.saveItems(tx, order)
	})
}

// SaveWithLock persists the aggregate only if its version still matches the
// stored row, bumping the version on success.
func (r *GormSalesOrderRepository) SaveWithLock(ctx context.Context, order *commerce.SalesOrder) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		currentVersion := order.Version
		order.Version++
		order.UpdatedAt = time.Now()

		result := tx.Model(&commerce.SalesOrder{}).
			Where("id = ? AND version = ?", order.ID, currentVersion).
			Updates(map[string]interface{}{
				"document_number":  order.DocumentNumber,
				"customer_id":      order.CustomerID,
				"customer_name":    order.CustomerName,
				"total":            order.Total,
				"discount":         order.Discount,
				"delivery_fee":     order.DeliveryFee,
				"payment_method":   order.PaymentMethod,
				"status":           order.Status,
				"delivery_address": order.DeliveryAddress,
				"stock_applied":    order.StockApplied,
				"updated_by":       order.UpdatedBy,
				"version":          order.Version,
				"updated_at":       order.UpdatedAt,
			})
		if result.Error != nil {
			order.Version = currentVersion
			return result.Error
		}
		if result.RowsAffected == 0 {
			order.Version = currentVersion
			return shared.NewConflictError("version", currentVersion,
				"sales order was modified concurrently")
		}

		return r.saveItems(tx, order)
	})
}

// Delete removes a sales order and its items
func (r *GormSalesOrderRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("order_id = ?", id).
			Delete(&commerce.SalesOrderItem{}).Error; err != nil {
			return err
		}
		result := tx.Delete(&commerce.SalesOrder{}, "id = ?", id)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return shared.NewNotFoundError("sales order", id.String())
		}
		return nil
	})
}

// CountByStatus counts sales orders grouped by status
func (r *GormSalesOrderRepository) CountByStatus(ctx context.Context) (map[commerce.SalesOrderStatus]int64, error) {
	var rows []struct {
		Status commerce.SalesOrderStatus
		Count  int64
	}
	if err := r.db.WithContext(ctx).Model(&commerce.SalesOrder{}).
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	counts := make(map[commerce.SalesOrderStatus]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

// SumRealizedTotal sums Total over orders in realized statuses, optionally
// restricted to a creation date window
func (r *GormSalesOrderRepository) SumRealizedTotal(ctx context.Context, from, to *time.Time) (int64, error) {
	query := r.db.WithContext(ctx).Model(&commerce.SalesOrder{}).
		Where("status IN ?", commerce.RealizedSalesStatuses())
	if from != nil {
		query = query.Where("created_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("created_at <= ?", *to)
	}

	var sum int64
	if err := query.Select("COALESCE(SUM(total), 0)").Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// ExistsByDocumentNumber reports whether a sales order with the given document number exists
func (r *GormSalesOrderRepository) ExistsByDocumentNumber(ctx context.Context, documentNumber string) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&commerce.SalesOrder{}).
		Where("document_number = ?", documentNumber).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GenerateDocumentNumber produces the next sequential sales document number
// in the form VD-YYYY-NNNNN, restarting the sequence each year
func (r *GormSalesOrderRepository) GenerateDocumentNumber(ctx context.Context) (string, error) {
	prefix := fmt.Sprintf("VD-%d-", time.Now().Year())
	return nextDocumentNumber(r.db.WithContext(ctx), &commerce.SalesOrder{}, prefix)
}

func (r *GormSalesOrderRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&commerce.SalesOrder{})
}

func (r *GormSalesOrderRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(document_number) LIKE ? OR LOWER(customer_name) LIKE ?",
			pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "status":
			query = query.Where("status = ?", value)
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		}
	}
	return query
}

func (r *GormSalesOrderRepository) saveItems(tx *gorm.DB, order *commerce.SalesOrder) error {
	currentItemIDs := make([]uuid.UUID, len(order.Items))
	for i, item := range order.Items {
		currentItemIDs[i] = item.ID
	}

	if len(currentItemIDs) > 0 {
		if err := tx.Where("order_id = ? AND id NOT IN ?", order.ID, currentItemIDs).
			Delete(&commerce.SalesOrderItem{}).Error; err != nil {
			return err
		}
	} else {
		if err := tx.Where("order_id = ?", order.ID).
			Delete(&commerce.SalesOrderItem{}).Error; err != nil {
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

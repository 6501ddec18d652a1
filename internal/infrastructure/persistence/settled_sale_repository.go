package persistence

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/comercio/backend/internal/domain/commerce"
	"github.com/comercio/backend/internal/domain/shared"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// GormSettledSaleRepository implements commerce.SettledSaleRepository using GORM
type GormSettledSaleRepository struct {
	db *gorm.DB
}

// NewGormSettledSaleRepository creates a new GormSettledSaleRepository
func NewGormSettledSaleRepository(db *gorm.DB) *GormSettledSaleRepository {
	return &GormSettledSaleRepository{db: db}
}

// FindByID finds a settled sale by its ID
func (r *GormSettledSaleRepository) FindByID(ctx context.Context, id uuid.UUID) (*commerce.SettledSale, error) {
	var sale commerce.SettledSale
	if err := r.db.WithContext(ctx).First(&sale, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("settled sale", id.String())
		}
		return nil, err
	}
	return &sale, nil
}

// FindByOrderID finds the settlement recorded for a sales order
func (r *GormSettledSaleRepository) FindByOrderID(ctx context.Context, orderID uuid.UUID) (*commerce.SettledSale, error) {
	var sale commerce.SettledSale
	if err := r.db.WithContext(ctx).First(&sale, "order_id = ?", orderID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.NewNotFoundError("settled sale", orderID.String())
		}
		return nil, err
	}
	return &sale, nil
}

// FindAll finds settled sales matching the filter
func (r *GormSettledSaleRepository) FindAll(ctx context.Context, filter shared.Filter) (*shared.Paginated[commerce.SettledSale], error) {
	query := r.applyFilter(r.baseQuery(ctx), filter)
	return findPage[commerce.SettledSale](query, filter, SettledSaleSortFields)
}

// FindByDateRange finds settled sales whose settlement time falls in [from, to]
func (r *GormSettledSaleRepository) FindByDateRange(ctx context.Context, from, to time.Time, filter shared.Filter) (*shared.Paginated[commerce.SettledSale], error) {
	query := r.applyFilter(r.baseQuery(ctx).
		Where("settled_at >= ? AND settled_at <= ?", from, to), filter)
	return findPage[commerce.SettledSale](query, filter, SettledSaleSortFields)
}

// Save creates or updates a settled sale
func (r *GormSettledSaleRepository) Save(ctx context.Context, sale *commerce.SettledSale) error {
	return r.db.WithContext(ctx).Save(sale).Error
}

// Delete removes a settled sale
func (r *GormSettledSaleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result := r.db.WithContext(ctx).Delete(&commerce.SettledSale{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.NewNotFoundError("settled sale", id.String())
	}
	return nil
}

// ExistsByOrderID reports whether a settlement exists for the given sales order
func (r *GormSettledSaleRepository) ExistsByOrderID(ctx context.Context, orderID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&commerce.SettledSale{}).
		Where("order_id = ?", orderID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// SumTotal sums FinalTotal over settlements, optionally restricted to a
// settlement time window
func (r *GormSettledSaleRepository) SumTotal(ctx context.Context, from, to *time.Time) (int64, error) {
	query := r.dateWindow(r.baseQuery(ctx), from, to)

	var sum int64
	if err := query.Select("COALESCE(SUM(final_total), 0)").Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum, nil
}

// Count counts settlements, optionally restricted to a settlement time window
func (r *GormSettledSaleRepository) Count(ctx context.Context, from, to *time.Time) (int64, error) {
	query := r.dateWindow(r.baseQuery(ctx), from, to)

	var count int64
	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}

func (r *GormSettledSaleRepository) baseQuery(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Model(&commerce.SettledSale{})
}

func (r *GormSettledSaleRepository) dateWindow(query *gorm.DB, from, to *time.Time) *gorm.DB {
	if from != nil {
		query = query.Where("settled_at >= ?", *from)
	}
	if to != nil {
		query = query.Where("settled_at <= ?", *to)
	}
	return query
}

func (r *GormSettledSaleRepository) applyFilter(query *gorm.DB, filter shared.Filter) *gorm.DB {
	if filter.Search != "" {
		pattern := "%" + strings.ToLower(filter.Search) + "%"
		query = query.Where("LOWER(document_number) LIKE ? OR LOWER(customer_name) LIKE ?",
			pattern, pattern)
	}
	for key, value := range filter.Filters {
		switch key {
		case "customer_id":
			query = query.Where("customer_id = ?", value)
		case "payment_method":
			query = query.Where("payment_method = ?", value)
		}
	}
	return query
}

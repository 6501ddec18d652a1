package persistence

import (
	"github.com/comercio/backend/internal/domain/shared"
	"gorm.io/gorm"
)

// findPage counts the filtered rows, then fetches the requested page ordered
// by a whitelisted sort field. preloads are applied to the page query only.
func findPage[T any](query *gorm.DB, filter shared.Filter, sortFields map[string]bool, preloads ...string) (*shared.Paginated[T], error) {
	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize < 1 {
		pageSize = 20
	}
	if pageSize > 100 {
		pageSize = 100
	}

	// New session so the count finisher does not pollute the page query
	query = query.Session(&gorm.Session{})

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, err
	}

	sortField := ValidateSortField(filter.OrderBy, sortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)

	pageQuery := query.
		Order(sortField + " " + sortOrder).
		Offset((page - 1) * pageSize).
		Limit(pageSize)
	for _, preload := range preloads {
		pageQuery = pageQuery.Preload(preload)
	}

	var items []T
	if err := pageQuery.Find(&items).Error; err != nil {
		return nil, err
	}

	result := shared.NewPaginated(items, total, page, pageSize)
	return &result, nil
}

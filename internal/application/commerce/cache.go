package commerce

import "context"

// Statistics cache keys. Document writes invalidate their own rollup.
const (
	CacheKeyPurchaseStats   = "stats:purchase_orders"
	CacheKeySalesStats      = "stats:sales_orders"
	CacheKeySettlementStats = "stats:settled_sales"
)

// StatisticsCache is a read-through cache for statistics rollups. A cache
// failure is never fatal; services fall back to the repositories and log.
type StatisticsCache interface {
	// Get unmarshals the cached value for key into dest, reporting whether a
	// value was present.
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	// Set stores value under key with the cache's configured TTL.
	Set(ctx context.Context, key string, value interface{}) error
	// Invalidate drops the given keys.
	Invalidate(ctx context.Context, keys ...string) error
}

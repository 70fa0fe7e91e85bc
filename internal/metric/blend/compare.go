package blend

import "github.com/smallbiznis/metrica/internal/metric/domain"

// ComparisonAvailable decides whether a period comparison may be shown for a
// metric type. Flow metrics always compare (0 vs 0 is meaningful). Stock
// metrics compare only when every selected account reported at least one
// snapshot in both windows; a partial snapshot comparison would mislead, so it
// is hidden instead.
func ComparisonAvailable(t domain.Type, enabled bool, currentCount, previousCount, expectedAccounts int64) bool {
	if !enabled {
		return false
	}
	if !domain.IsStock(t) {
		return true
	}
	return currentCount >= expectedAccounts && previousCount >= expectedAccounts
}

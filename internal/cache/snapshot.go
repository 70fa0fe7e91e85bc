package cache

import (
	"strconv"
	"strings"
	"time"

	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
)

// SnapshotCache keeps rendered dashboard snapshots keyed by window, account
// selection and compare toggle, so repeated renders of the same view skip the
// query and blend passes entirely.
type SnapshotCache interface {
	Get(key string) (metricdomain.DashboardSnapshot, bool)
	Set(key string, snapshot metricdomain.DashboardSnapshot, ttl time.Duration)
	// InvalidateAccounts drops every snapshot touching any of the given
	// accounts; an empty list drops everything.
	InvalidateAccounts(accountIDs []string)
}

type snapshotCache struct {
	inner Cache[string, metricdomain.DashboardSnapshot]
}

func NewSnapshotCache() SnapshotCache {
	return &snapshotCache{inner: NewTTLCache[string, metricdomain.DashboardSnapshot]()}
}

// SnapshotKey builds the cache key for one render.
func SnapshotKey(from, to time.Time, accountIDs []string, compare bool) string {
	return cacheKey(
		from.Format("2006-01-02"),
		to.Format("2006-01-02"),
		strings.Join(accountIDs, ","),
		strconv.FormatBool(compare),
	)
}

func (c *snapshotCache) Get(key string) (metricdomain.DashboardSnapshot, bool) {
	return c.inner.Get(key)
}

func (c *snapshotCache) Set(key string, snapshot metricdomain.DashboardSnapshot, ttl time.Duration) {
	c.inner.Set(key, snapshot, ttl)
}

func (c *snapshotCache) InvalidateAccounts(accountIDs []string) {
	if len(accountIDs) == 0 {
		c.inner.Purge()
		return
	}
	want := make(map[string]struct{}, len(accountIDs))
	for _, id := range accountIDs {
		want[id] = struct{}{}
	}
	c.inner.DeleteFunc(func(key string) bool {
		parts := strings.Split(key, "|")
		if len(parts) < 3 {
			return true
		}
		for _, id := range strings.Split(parts[2], ",") {
			if _, ok := want[id]; ok {
				return true
			}
		}
		return false
	})
}

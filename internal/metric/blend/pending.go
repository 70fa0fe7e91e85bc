package blend

import (
	"encoding/json"
	"time"

	"github.com/smallbiznis/metrica/internal/metric/domain"
)

// IsPendingRow reports whether a row is provisional per its ingestion
// metadata. Missing or unparsable metadata is never pending.
func IsPendingRow(row domain.MetricRow) bool {
	if len(row.Metadata) == 0 {
		return false
	}
	var meta map[string]any
	if err := json.Unmarshal(row.Metadata, &meta); err != nil {
		return false
	}
	pending, ok := meta["pending"].(bool)
	return ok && pending
}

// ComputePending derives pending flags for a window of rows. Today-level
// flags additionally mark a type pending when it has no rows today but had
// rows yesterday: the data simply has not landed yet, it is not genuinely
// zero. Range-level flags are only evaluated when the visible range ends
// today.
func ComputePending(rows []domain.MetricRow, rangeEnd, now time.Time) domain.PendingFlags {
	todayKey := now.UTC().Format("2006-01-02")
	yesterdayKey := now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
	rangeEndsToday := rangeEnd.UTC().Format("2006-01-02") == todayKey

	flags := domain.PendingFlags{
		Today: make(map[domain.Type]bool),
		Range: make(map[domain.Type]bool),
		Daily: make(map[domain.Type]map[string]map[string]bool),
	}

	rowsToday := make(map[domain.Type]bool)
	rowsYesterday := make(map[domain.Type]bool)

	for _, row := range rows {
		day := row.Day()
		switch day {
		case todayKey:
			rowsToday[row.Type] = true
		case yesterdayKey:
			rowsYesterday[row.Type] = true
		}

		if !IsPendingRow(row) {
			continue
		}

		days, ok := flags.Daily[row.Type]
		if !ok {
			days = make(map[string]map[string]bool)
			flags.Daily[row.Type] = days
		}
		sources, ok := days[day]
		if !ok {
			sources = make(map[string]bool)
			days[day] = sources
		}
		sources[row.Source().String()] = true

		if day == todayKey {
			flags.Today[row.Type] = true
		}
		if rangeEndsToday {
			flags.Range[row.Type] = true
		}
	}

	for t := range rowsYesterday {
		if !rowsToday[t] {
			flags.Today[t] = true
		}
	}

	return flags
}

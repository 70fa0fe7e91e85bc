package server

import (
	"strconv"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
)

const dateOnlyLayout = "2006-01-02"

func parseOptionalBool(value string) (*bool, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parsed, err := strconv.ParseBool(trimmed)
	if err != nil {
		return nil, err
	}
	return &parsed, nil
}

func parseDate(value string) (time.Time, error) {
	return time.Parse(dateOnlyLayout, strings.TrimSpace(value))
}

// parseAccountList splits a comma-separated account id list and validates
// every entry as a snowflake id.
func parseAccountList(value string) ([]string, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return nil, nil
	}
	parts := strings.Split(trimmed, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		id := strings.TrimSpace(part)
		if id == "" {
			continue
		}
		if _, err := snowflake.ParseString(id); err != nil {
			return nil, newValidationError("accounts", "invalid_accounts", "invalid account id: "+id)
		}
		out = append(out, id)
	}
	return out, nil
}

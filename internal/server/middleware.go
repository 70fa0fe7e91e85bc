package server

import (
	"errors"

	backfilldomain "github.com/smallbiznis/metrica/internal/backfill/domain"
	integrationdomain "github.com/smallbiznis/metrica/internal/integration/domain"
	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
	projectgroupdomain "github.com/smallbiznis/metrica/internal/projectgroup/domain"
)

// classifyErrorForLog labels request errors for structured logs without
// leaking internals into the log stream.
func classifyErrorForLog(err error) (string, string) {
	switch {
	case err == nil:
		return "", ""
	case asValidationErrors(err) != nil, isValidationError(err):
		return "validation", "invalid_request"
	case errors.Is(err, metricdomain.ErrInvalidRange):
		return "validation", "invalid_range"
	case errors.Is(err, metricdomain.ErrInvalidAccounts):
		return "validation", "invalid_accounts"
	case errors.Is(err, projectgroupdomain.ErrNotFound),
		errors.Is(err, integrationdomain.ErrNotFound):
		return "not_found", err.Error()
	case errors.Is(err, projectgroupdomain.ErrDuplicateSlug):
		return "conflict", "duplicate_slug"
	case errors.Is(err, backfilldomain.ErrCooldown):
		return "rate_limited", "backfill_cooldown"
	case errors.Is(err, ErrTooManyRequests):
		return "rate_limited", "too_many_requests"
	default:
		return "internal", "internal_error"
	}
}

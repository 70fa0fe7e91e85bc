package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	backfilldomain "github.com/smallbiznis/metrica/internal/backfill/domain"
	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
)

type syncRequest struct {
	From     string   `json:"from"`
	To       string   `json:"to"`
	Accounts []string `json:"accounts"`
}

// RequestSync forces a re-fetch of a window regardless of coverage. It is
// rate limited per client because connectors throttle aggressively.
func (s *Server) RequestSync(c *gin.Context) {
	if s.orchestrator == nil || s.metricSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if s.syncLimiter.Enabled() {
		allowed, err := s.syncLimiter.Allow(c.Request.Context(), c.ClientIP())
		if err != nil {
			s.log.Warn("sync limiter unavailable, letting request through")
			allowed = true
		}
		if !allowed {
			s.obsMetrics.RecordRateLimitDenied(c.Request.Context(), "/v1/sync", "token_bucket")
			AbortWithError(c, ErrTooManyRequests)
			return
		}
		s.obsMetrics.RecordRateLimitAllowed(c.Request.Context(), "/v1/sync")
	}

	var req syncRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	from, err := parseDate(req.From)
	if err != nil {
		AbortWithError(c, newValidationError("from", "invalid_range", "from must be a YYYY-MM-DD date"))
		return
	}
	to, err := parseDate(req.To)
	if err != nil {
		AbortWithError(c, newValidationError("to", "invalid_range", "to must be a YYYY-MM-DD date"))
		return
	}
	if to.Before(from) {
		AbortWithError(c, metricdomain.ErrInvalidRange)
		return
	}
	if len(req.Accounts) == 0 {
		AbortWithError(c, metricdomain.ErrInvalidAccounts)
		return
	}
	for _, id := range req.Accounts {
		if _, err := parseAccountList(id); err != nil {
			AbortWithError(c, err)
			return
		}
	}

	key := backfilldomain.WindowKey(backfilldomain.WindowCurrent, from, to, req.Accounts)
	if err := s.orchestrator.Run(c.Request.Context(), key, backfilldomain.WindowCurrent, req.Accounts, from); err != nil {
		AbortWithError(c, err)
		return
	}

	s.metricSvc.InvalidateWindow(req.Accounts)

	c.JSON(http.StatusAccepted, gin.H{"status": s.orchestrator.Status()})
}

func (s *Server) GetSyncStatus(c *gin.Context) {
	if s.orchestrator == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": s.orchestrator.Status()})
}

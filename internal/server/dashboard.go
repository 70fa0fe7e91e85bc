package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	metricdomain "github.com/smallbiznis/metrica/internal/metric/domain"
)

func (s *Server) GetDashboard(c *gin.Context) {
	if s.metricSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	req, err := s.parseDashboardRequest(c)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	snap, err := s.metricSvc.GetDashboard(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, snap)
}

func (s *Server) parseDashboardRequest(c *gin.Context) (metricdomain.DashboardRequest, error) {
	var req metricdomain.DashboardRequest

	from, err := parseDate(c.Query("from"))
	if err != nil {
		return req, newValidationError("from", "invalid_range", "from must be a YYYY-MM-DD date")
	}
	to, err := parseDate(c.Query("to"))
	if err != nil {
		return req, newValidationError("to", "invalid_range", "to must be a YYYY-MM-DD date")
	}
	if to.Before(from) {
		return req, metricdomain.ErrInvalidRange
	}

	accounts, err := parseAccountList(c.Query("accounts"))
	if err != nil {
		return req, err
	}
	if len(accounts) == 0 {
		return req, metricdomain.ErrInvalidAccounts
	}

	compare, err := parseOptionalBool(c.Query("compare"))
	if err != nil {
		return req, newValidationError("compare", "invalid_request", "compare must be a boolean")
	}

	req.From = from
	req.To = to
	req.AccountIDs = accounts
	switch {
	case compare != nil:
		req.Compare = *compare
	case s.dashboardCfg != nil:
		req.Compare = s.dashboardCfg.Get().CompareDefault
	}
	return req, nil
}

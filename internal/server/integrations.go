package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	integrationdomain "github.com/smallbiznis/metrica/internal/integration/domain"
)

func (s *Server) ListIntegrationAccounts(c *gin.Context) {
	if s.integrationSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	accounts, err := s.integrationSvc.ListAccounts(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"accounts": accounts})
}

func (s *Server) GetIntegrationAccount(c *gin.Context) {
	if s.integrationSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	account, err := s.integrationSvc.GetAccount(c.Request.Context(), integrationdomain.GetAccountRequest{
		ID: c.Param("id"),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, account)
}

func (s *Server) ListIntegrationProducts(c *gin.Context) {
	if s.integrationSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var accountIDs []string
	if raw := strings.TrimSpace(c.Query("accounts")); raw != "" {
		parsed, err := parseAccountList(raw)
		if err != nil {
			AbortWithError(c, err)
			return
		}
		accountIDs = parsed
	}

	products, err := s.integrationSvc.ListProducts(c.Request.Context(), accountIDs)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"products": products})
}

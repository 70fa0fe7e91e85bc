package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	projectgroupdomain "github.com/smallbiznis/metrica/internal/projectgroup/domain"
)

func (s *Server) ListProjectGroups(c *gin.Context) {
	if s.projectGroupSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	groups, err := s.projectGroupSvc.List(c.Request.Context())
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"project_groups": groups})
}

func (s *Server) CreateProjectGroup(c *gin.Context) {
	if s.projectGroupSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req projectgroupdomain.CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}

	group, err := s.projectGroupSvc.Create(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	// Grouping changes how every cached ranking folds.
	s.metricSvc.InvalidateWindow(nil)

	c.JSON(http.StatusCreated, group)
}

func (s *Server) GetProjectGroup(c *gin.Context) {
	if s.projectGroupSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	group, err := s.projectGroupSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, group)
}

func (s *Server) UpdateProjectGroup(c *gin.Context) {
	if s.projectGroupSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	var req projectgroupdomain.UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, ErrInvalidRequest)
		return
	}
	req.ID = c.Param("id")

	group, err := s.projectGroupSvc.Update(c.Request.Context(), req)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	s.metricSvc.InvalidateWindow(nil)

	c.JSON(http.StatusOK, group)
}

func (s *Server) DeleteProjectGroup(c *gin.Context) {
	if s.projectGroupSvc == nil {
		AbortWithError(c, ErrServiceUnavailable)
		return
	}

	if err := s.projectGroupSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		AbortWithError(c, err)
		return
	}

	s.metricSvc.InvalidateWindow(nil)

	c.Status(http.StatusNoContent)
}

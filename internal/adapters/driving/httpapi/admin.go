package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/core/ports/driving"
)

type reindexRequest struct {
	Prune bool `json:"prune"`
}

func (s *Server) reindex(c *gin.Context) {
	if s.ports.Maintenance == nil {
		writeError(c, errServiceUnavailable)
		return
	}

	var req reindexRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
			return
		}
	}

	ctx := c.Request.Context()
	var pruned int
	if req.Prune {
		report, err := s.ports.Maintenance.Prune(ctx)
		if err != nil {
			writeError(c, err)
			return
		}
		pruned = report.Pruned
	}

	report, err := s.ports.Maintenance.Reindex(ctx)
	if err != nil {
		writeError(c, err)
		return
	}
	report.Pruned = pruned
	c.JSON(http.StatusOK, report)
}

type clearRequest struct {
	Target string `json:"target" binding:"required"`
}

func (s *Server) clear(c *gin.Context) {
	if s.ports.Document == nil {
		writeError(c, errServiceUnavailable)
		return
	}

	var req clearRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	if err := s.ports.Document.Clear(c.Request.Context(), driving.ClearTarget(req.Target)); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cleared": req.Target})
}

package httpapi

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

func (s *Server) getSettings(c *gin.Context) {
	if s.ports.Settings == nil {
		writeError(c, errServiceUnavailable)
		return
	}
	views, err := s.ports.Settings.Get()
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"settings": views})
}

// updateSettings accepts a flat key/value object. Masked values echoed back
// from GET are sent as empty strings by clients and leave the key unchanged.
func (s *Server) updateSettings(c *gin.Context) {
	if s.ports.Settings == nil {
		writeError(c, errServiceUnavailable)
		return
	}

	var values map[string]string
	if err := c.ShouldBindJSON(&values); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	updated, err := s.ports.Settings.Update(values)
	if err != nil {
		writeError(c, err)
		return
	}
	if updated == nil {
		updated = []string{}
	}
	c.JSON(http.StatusOK, gin.H{"updated": updated})
}

type testRequest struct {
	Target string `json:"target" binding:"required"`
}

func (s *Server) testSettings(c *gin.Context) {
	if s.ports.Settings == nil {
		writeError(c, errServiceUnavailable)
		return
	}

	var req testRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	if err := s.ports.Settings.Test(c.Request.Context(), req.Target); err != nil {
		status := statusFor(err)
		if status == http.StatusInternalServerError {
			status = http.StatusBadGateway
		}
		c.JSON(status, gin.H{"target": req.Target, "ok": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"target": req.Target, "ok": true})
}

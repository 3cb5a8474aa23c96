package httpapi

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

const defaultPageSize = 20

func (s *Server) listDocuments(c *gin.Context) {
	if s.ports.Document == nil {
		writeError(c, errServiceUnavailable)
		return
	}

	filter := domain.DocumentFilter{
		FileType:   domain.FileType(c.Query("type")),
		CategoryID: c.Query("category"),
		Query:      c.Query("q"),
		SortBy:     c.Query("sortBy"),
		SortOrder:  c.Query("sortOrder"),
		Page:       queryInt(c, "page", 1),
		Limit:      queryInt(c, "limit", defaultPageSize),
	}

	records, total, err := s.ports.Document.List(c.Request.Context(), filter)
	if err != nil {
		writeError(c, err)
		return
	}
	if records == nil {
		records = []domain.DocumentRecord{}
	}

	c.JSON(http.StatusOK, gin.H{
		"data": records,
		"pagination": gin.H{
			"total": total,
			"page":  filter.Page,
			"limit": filter.Limit,
		},
	})
}

func (s *Server) getDocument(c *gin.Context) {
	if s.ports.Document == nil {
		writeError(c, errServiceUnavailable)
		return
	}
	rec, err := s.ports.Document.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, rec)
}

func (s *Server) deleteDocument(c *gin.Context) {
	if s.ports.Document == nil {
		writeError(c, errServiceUnavailable)
		return
	}
	if err := s.ports.Document.Delete(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

type askRequest struct {
	Question string `json:"question" binding:"required"`
}

func (s *Server) askDocument(c *gin.Context) {
	if s.ports.Document == nil {
		writeError(c, errServiceUnavailable)
		return
	}

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	answer, err := s.ports.Document.Ask(c.Request.Context(), c.Param("id"), req.Question)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"answer": answer})
}

func (s *Server) downloadDocument(c *gin.Context) {
	if s.ports.Document == nil {
		writeError(c, errServiceUnavailable)
		return
	}

	rec, err := s.ports.Document.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		writeError(c, err)
		return
	}

	path := rec.Document.FilePath
	if _, err := os.Stat(path); err != nil {
		writeError(c, fmt.Errorf("%w: file no longer exists: %s", domain.ErrNotFound, path))
		return
	}
	c.FileAttachment(path, filepath.Base(path))
}

func (s *Server) revealDocument(c *gin.Context) {
	if s.ports.Document == nil {
		writeError(c, errServiceUnavailable)
		return
	}
	if err := s.ports.Document.Reveal(c.Request.Context(), c.Param("id")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"revealed": true})
}

// queryInt reads a positive integer query parameter, falling back to def.
func queryInt(c *gin.Context, key string, def int) int {
	v, err := strconv.Atoi(c.Query(key))
	if err != nil || v <= 0 {
		return def
	}
	return v
}

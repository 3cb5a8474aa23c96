package httpapi

import (
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docsift/internal/core/domain"
)

const defaultSuggestionLimit = 8

type searchParams struct {
	Query      string   `form:"q"`
	Mode       string   `form:"mode"`
	Categories []string `form:"category"`
	FileTypes  []string `form:"type"`
	DateFrom   string   `form:"dateFrom"`
	DateTo     string   `form:"dateTo"`
	Page       int      `form:"page"`
	Limit      int      `form:"limit"`
	SortBy     string   `form:"sortBy"`
	SortOrder  string   `form:"sortOrder"`
}

func (s *Server) search(c *gin.Context) {
	var p searchParams
	if err := c.ShouldBindQuery(&p); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	q := domain.SearchQuery{
		Query:      p.Query,
		Mode:       domain.SearchMode(p.Mode),
		Categories: splitValues(p.Categories),
		FileTypes:  splitValues(p.FileTypes),
		Page:       p.Page,
		Limit:      p.Limit,
		SortBy:     p.SortBy,
		SortOrder:  p.SortOrder,
	}

	var err error
	if q.DateFrom, err = parseDate(p.DateFrom); err != nil {
		writeError(c, err)
		return
	}
	if q.DateTo, err = parseDate(p.DateTo); err != nil {
		writeError(c, err)
		return
	}

	resp, err := s.ports.Search.Search(c.Request.Context(), q)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, resp)
}

func (s *Server) suggestions(c *gin.Context) {
	limit := queryInt(c, "limit", defaultSuggestionLimit)
	suggestions, err := s.ports.Search.Suggest(c.Request.Context(), c.Query("q"), limit)
	if err != nil {
		writeError(c, err)
		return
	}
	if suggestions == nil {
		suggestions = []domain.Suggestion{}
	}
	c.JSON(http.StatusOK, gin.H{"suggestions": suggestions})
}

// splitValues accepts both repeated parameters and comma separated lists.
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// parseDate accepts RFC 3339 timestamps or plain dates.
func parseDate(v string) (*time.Time, error) {
	if v == "" {
		return nil, nil
	}
	for _, layout := range []string{time.RFC3339, "2006-01-02"} {
		if t, err := time.Parse(layout, v); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("%w: invalid date %q", domain.ErrInvalidInput, v)
}

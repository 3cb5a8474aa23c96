package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/custodia-labs/docsift/internal/connectors/filesystem"
	"github.com/custodia-labs/docsift/internal/core/domain"
	"github.com/custodia-labs/docsift/internal/logger"
)

const defaultHistoryLimit = 20

func (s *Server) categories(c *gin.Context) {
	if s.ports.Document == nil {
		writeError(c, errServiceUnavailable)
		return
	}
	counts, err := s.ports.Document.Categories(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"categories": counts})
}

func (s *Server) stats(c *gin.Context) {
	if s.ports.Document == nil {
		writeError(c, errServiceUnavailable)
		return
	}
	stats, err := s.ports.Document.Stats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

type scanRequest struct {
	Path          string   `json:"path" binding:"required"`
	IncludeHidden bool     `json:"includeHidden"`
	Exclude       []string `json:"exclude"`
	FileTypes     []string `json:"fileTypes"`
}

// startScan launches a scan in the background and answers 202. Progress is
// polled through /api/scan/status.
func (s *Server) startScan(c *gin.Context) {
	if s.ports.Scan == nil {
		writeError(c, errServiceUnavailable)
		return
	}

	var req scanRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		writeError(c, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err))
		return
	}

	root, err := filesystem.ResolveRoot(req.Path)
	if err != nil {
		writeError(c, err)
		return
	}

	opts := domain.ScanOptions{IncludeHidden: req.IncludeHidden, Exclude: req.Exclude}
	for _, ft := range req.FileTypes {
		opts.FileTypes = append(opts.FileTypes, domain.FileType(ft))
	}

	if active := s.ports.Scan.Status(); active != nil && active.Status == domain.ScanRunning {
		writeError(c, domain.ErrScanInProgress)
		return
	}

	go s.runScan(s.base, root, opts)

	c.JSON(http.StatusAccepted, gin.H{"status": "started", "rootPath": root})
}

func (s *Server) runScan(ctx context.Context, root string, opts domain.ScanOptions) {
	session, err := s.ports.Scan.Scan(ctx, root, opts, nil)
	switch {
	case errors.Is(err, domain.ErrScanInProgress):
		logger.Warn("Scan of %s not started: %v", root, err)
	case err != nil:
		logger.Error("Scan of %s failed: %v", root, err)
	default:
		logger.Info("Scan of %s finished: %d processed, %d new, %d updated",
			root, session.ProcessedFiles, session.NewFiles, session.UpdatedFiles)
	}
}

func (s *Server) scanStatus(c *gin.Context) {
	if s.ports.Scan == nil {
		writeError(c, errServiceUnavailable)
		return
	}
	session := s.ports.Scan.Status()
	if session == nil {
		c.JSON(http.StatusOK, gin.H{"active": false})
		return
	}
	c.JSON(http.StatusOK, gin.H{"active": session.Status == domain.ScanRunning, "session": session})
}

func (s *Server) scanHistory(c *gin.Context) {
	if s.ports.Document == nil {
		writeError(c, errServiceUnavailable)
		return
	}
	sessions, err := s.ports.Document.History(c.Request.Context(), queryInt(c, "limit", defaultHistoryLimit))
	if err != nil {
		writeError(c, err)
		return
	}
	if sessions == nil {
		sessions = []domain.ScanSession{}
	}
	c.JSON(http.StatusOK, gin.H{"sessions": sessions})
}

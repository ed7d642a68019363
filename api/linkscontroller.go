package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"lotcheck/batch"
	"lotcheck/logger"
	"lotcheck/market"
	"lotcheck/types"
)

const ndjsonContentType = "application/x-ndjson"

// RegisterLinkRoutes registers the link processing endpoints.
func (s *Server) RegisterLinkRoutes(r *gin.Engine) {
	r.POST("/process-links", s.handleProcessLinks)
	r.POST("/process-links/summary", s.handleProcessLinksSummary)
}

const linksShapeError = "body must be {\"links\": [string, ...]}"

// processLinksBody mirrors types.ProcessLinksRequest. Pointer entries let a
// JSON null be told apart from an empty string.
type processLinksBody struct {
	Links []*string `json:"links" binding:"required"`
	Mode  string    `json:"mode"`
}

// bindLinks validates the request body before any processing starts.
func (s *Server) bindLinks(c *gin.Context) (batch.Request, bool) {
	var req processLinksBody
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": linksShapeError})
		return batch.Request{}, false
	}
	if len(req.Links) > s.deps.MaxLinks {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("too many links: %d (max %d)", len(req.Links), s.deps.MaxLinks),
		})
		return batch.Request{}, false
	}
	mode, err := market.ParseMode(req.Mode)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return batch.Request{}, false
	}

	links := make([]string, len(req.Links))
	for i, link := range req.Links {
		if link == nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": fmt.Sprintf("links[%d] is null; %s", i, linksShapeError)})
			return batch.Request{}, false
		}
		links[i] = *link
	}
	return batch.Request{Links: links, Mode: mode}, true
}

// handleProcessLinks streams one NDJSON BatchProgress line per link.
func (s *Server) handleProcessLinks(c *gin.Context) {
	req, ok := s.bindLinks(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	c.Header("Content-Type", ndjsonContentType)
	c.Header("Cache-Control", "no-cache")
	c.Header("X-Accel-Buffering", "no")
	c.Status(http.StatusOK)
	c.Writer.WriteHeaderNow()

	enc := json.NewEncoder(c.Writer)
	report, err := s.deps.Processor.Run(ctx, req, func(bp types.BatchProgress) error {
		if err := enc.Encode(bp); err != nil {
			return err
		}
		c.Writer.Flush()
		return nil
	})
	if err != nil {
		// Headers are gone; the stream just ends early.
		logger.FromContext(ctx).Warn("Link stream ended early", logger.Error(err))
		return
	}
	s.publish(report)
}

// handleProcessLinksSummary processes every link and answers once with the
// aggregate text.
func (s *Server) handleProcessLinksSummary(c *gin.Context) {
	req, ok := s.bindLinks(c)
	if !ok {
		return
	}
	ctx := c.Request.Context()

	report, err := s.deps.Processor.Run(ctx, req, func(types.BatchProgress) error { return nil })
	if err != nil {
		logger.FromContext(ctx).Warn("Link summary aborted", logger.Error(err))
		c.AbortWithStatus(499)
		return
	}
	s.publish(report)

	c.JSON(http.StatusOK, gin.H{
		"message":           batch.FormatSummary(report),
		"total_green_price": report.TotalGreenPrice,
	})
}

package ui

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"

	"prodflow/adapters/excel"
	apperrors "prodflow/internal/errors"

	"github.com/gin-gonic/gin"
)

const xlsxContentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"

func queryLimit(c *gin.Context) (int, error) {
	raw := c.Query("limit")
	if raw == "" {
		return 0, nil
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit < 0 {
		return 0, apperrors.InvalidInput(fmt.Sprintf("limit must be a non-negative integer, got %q", raw))
	}
	return limit, nil
}

func (s *Server) handleBacklog(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		s.respondError(c, "handleBacklog", err)
		return
	}

	ranked, err := s.svc.Backlog.Rank(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, "handleBacklog", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"items":   ranked,
		"summary": s.svc.Backlog.Summary(ranked),
	})
}

func (s *Server) handleBacklogExport(c *gin.Context) {
	limit, err := queryLimit(c)
	if err != nil {
		s.respondError(c, "handleBacklogExport", err)
		return
	}

	ranked, err := s.svc.Backlog.Rank(c.Request.Context(), limit)
	if err != nil {
		s.respondError(c, "handleBacklogExport", err)
		return
	}

	exporter := s.svc.Exporter
	if exporter == nil {
		exporter = excel.NewBacklogExporter()
	}
	var buf bytes.Buffer
	if err := exporter.Export(&buf, ranked); err != nil {
		s.respondError(c, "handleBacklogExport", apperrors.Wrap(err, "backlog export failed"))
		return
	}

	c.Header("Content-Disposition", `attachment; filename="backlog.xlsx"`)
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

func (s *Server) handleMembers(c *gin.Context) {
	if s.svc.Roster == nil {
		c.JSON(http.StatusOK, gin.H{"members": []interface{}{}})
		return
	}
	members, err := s.svc.Roster.List(c.Request.Context())
	if err != nil {
		s.respondError(c, "handleMembers", apperrors.ExternalServiceError("member roster", err))
		return
	}
	c.JSON(http.StatusOK, gin.H{"members": members})
}

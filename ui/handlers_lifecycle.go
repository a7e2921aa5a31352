package ui

import (
	"net/http"

	"prodflow/domain/initiative"
	apperrors "prodflow/internal/errors"

	"github.com/gin-gonic/gin"
)

type promoteRequest struct {
	Phase  initiative.Phase  `json:"phase" binding:"required"`
	Period initiative.Period `json:"period"`
}

type transitionRequest struct {
	Status initiative.Status `json:"status" binding:"required"`
}

func (s *Server) handlePromote(c *gin.Context) {
	id, ok := s.initiativeID(c)
	if !ok {
		return
	}
	var req promoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	updated, err := s.svc.Lifecycle.Promote(c.Request.Context(), id, req.Phase, req.Period)
	if err != nil {
		s.respondError(c, "handlePromote", err)
		return
	}
	c.JSON(http.StatusOK, viewOf(updated))
}

func (s *Server) handleTransition(c *gin.Context) {
	id, ok := s.initiativeID(c)
	if !ok {
		return
	}
	var req transitionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	updated, err := s.svc.Lifecycle.Transition(c.Request.Context(), id, req.Status)
	if err != nil {
		s.respondError(c, "handleTransition", err)
		return
	}
	c.JSON(http.StatusOK, viewOf(updated))
}

func (s *Server) handleReturnToBacklog(c *gin.Context) {
	id, ok := s.initiativeID(c)
	if !ok {
		return
	}

	updated, err := s.svc.Lifecycle.ReturnToBacklog(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, "handleReturnToBacklog", err)
		return
	}
	c.JSON(http.StatusOK, viewOf(updated))
}

// handleFinalize reports a failed announcement as 502 but still returns the
// finalized record, since the phase change was already written.
func (s *Server) handleFinalize(c *gin.Context) {
	id, ok := s.initiativeID(c)
	if !ok {
		return
	}

	result, err := s.svc.Lifecycle.Finalize(c.Request.Context(), id)
	if err != nil && result == nil {
		s.respondError(c, "handleFinalize", err)
		return
	}

	body := gin.H{
		"initiative":   viewOf(result.Initiative),
		"announcement": result.Announcement,
	}
	if err != nil {
		for k, v := range errorBody(err) {
			body[k] = v
		}
		_ = c.Error(err)
		c.JSON(statusFor(apperrors.GetCode(err)), body)
		return
	}
	c.JSON(http.StatusOK, body)
}

func (s *Server) handleEscalate(c *gin.Context) {
	id, ok := s.initiativeID(c)
	if !ok {
		return
	}

	feature, err := s.svc.Escalation.Escalate(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, "handleEscalate", err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(feature))
}

func (s *Server) handleSweep(c *gin.Context) {
	report, err := s.svc.Reconciliation.Sweep(c.Request.Context())
	if err != nil {
		s.respondError(c, "handleSweep", err)
		return
	}
	c.JSON(http.StatusOK, report)
}

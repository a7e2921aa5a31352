package ui

import (
	"net/http"

	"prodflow/domain/core"
	"prodflow/domain/initiative"
	apperrors "prodflow/internal/errors"

	"github.com/gin-gonic/gin"
)

// initiativeView adds the computed RICE score to the stored record
type initiativeView struct {
	*initiative.Initiative
	Score float64 `json:"rice_score"`
}

func viewOf(it *initiative.Initiative) initiativeView {
	return initiativeView{Initiative: it, Score: it.RICE.Score()}
}

func viewsOf(items []*initiative.Initiative) []initiativeView {
	out := make([]initiativeView, 0, len(items))
	for _, it := range items {
		out = append(out, viewOf(it))
	}
	return out
}

func (s *Server) initiativeID(c *gin.Context) (core.InitiativeID, bool) {
	id, err := core.ParseInitiativeID(c.Param("id"))
	if err != nil {
		s.respondError(c, "initiativeID", apperrors.InvalidInput(err.Error()))
		return "", false
	}
	return id, true
}

func (s *Server) handleCreateInitiative(c *gin.Context) {
	var draft initiative.Draft
	if err := c.ShouldBindJSON(&draft); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	created, err := s.svc.Lifecycle.Create(c.Request.Context(), draft)
	if err != nil {
		s.respondError(c, "handleCreateInitiative", err)
		return
	}
	c.JSON(http.StatusCreated, viewOf(created))
}

func (s *Server) handleGetInitiative(c *gin.Context) {
	id, ok := s.initiativeID(c)
	if !ok {
		return
	}

	it, err := s.svc.Lifecycle.Get(c.Request.Context(), id)
	if err != nil {
		s.respondError(c, "handleGetInitiative", err)
		return
	}
	c.JSON(http.StatusOK, viewOf(it))
}

func (s *Server) handleUpdateInitiative(c *gin.Context) {
	id, ok := s.initiativeID(c)
	if !ok {
		return
	}
	var edit initiative.Edit
	if err := c.ShouldBindJSON(&edit); err != nil {
		s.respondBadRequest(c, err)
		return
	}

	updated, err := s.svc.Lifecycle.UpdateFields(c.Request.Context(), id, edit)
	if err != nil {
		s.respondError(c, "handleUpdateInitiative", err)
		return
	}
	c.JSON(http.StatusOK, viewOf(updated))
}

func (s *Server) handleDeleteInitiative(c *gin.Context) {
	id, ok := s.initiativeID(c)
	if !ok {
		return
	}
	if err := s.svc.Lifecycle.Delete(c.Request.Context(), id); err != nil {
		s.respondError(c, "handleDeleteInitiative", err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (s *Server) handleBoard(c *gin.Context) {
	phase := initiative.Phase(c.Param("phase"))

	items, report, err := s.svc.Lifecycle.ListBoard(c.Request.Context(), phase)
	if err != nil {
		s.respondError(c, "handleBoard", err)
		return
	}

	body := gin.H{"phase": phase, "items": viewsOf(items)}
	if report != nil {
		body["sweep"] = report
	}
	c.JSON(http.StatusOK, body)
}

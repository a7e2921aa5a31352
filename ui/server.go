package ui

import (
	"net/http"

	"prodflow/adapters/excel"
	"prodflow/app"
	"prodflow/ports"
	"prodflow/ui/middleware"

	"github.com/gin-gonic/gin"
)

// Services are the application services the API exposes
type Services struct {
	Lifecycle      *app.LifecycleService
	Escalation     *app.EscalationService
	Reconciliation *app.ReconciliationService
	Backlog        *app.BacklogService
	Exporter       *excel.BacklogExporter
	Roster         ports.MemberRoster
}

// Server is the JSON API for the lifecycle engine
type Server struct {
	router *gin.Engine
	svc    Services
}

// NewServer creates the API server and registers its routes
func NewServer(svc Services) *Server {
	router := gin.New()
	router.Use(gin.Recovery(), middleware.RequestLogger())

	s := &Server{router: router, svc: svc}
	s.setupRoutes()
	return s
}

// Handler exposes the router for http.Server and tests
func (s *Server) Handler() http.Handler {
	return s.router
}

func (s *Server) setupRoutes() {
	s.router.GET("/healthz", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	api := s.router.Group("/api")
	{
		api.POST("/initiatives", s.handleCreateInitiative)
		api.GET("/initiatives/:id", s.handleGetInitiative)
		api.PATCH("/initiatives/:id", s.handleUpdateInitiative)
		api.DELETE("/initiatives/:id", s.handleDeleteInitiative)

		api.POST("/initiatives/:id/promote", s.handlePromote)
		api.POST("/initiatives/:id/transition", s.handleTransition)
		api.POST("/initiatives/:id/backlog", s.handleReturnToBacklog)
		api.POST("/initiatives/:id/finalize", s.handleFinalize)
		api.POST("/initiatives/:id/escalate", s.handleEscalate)

		api.GET("/boards/:phase", s.handleBoard)
		api.POST("/sweeps", s.handleSweep)

		api.GET("/backlog", s.handleBacklog)
		api.GET("/backlog/export", s.handleBacklogExport)
		api.GET("/members", s.handleMembers)
	}
}

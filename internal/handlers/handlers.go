package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medflow-backend/internal/access"
	"medflow-backend/internal/logger"
	"medflow-backend/internal/service"
	"medflow-backend/internal/session"
)

// Handlers holds the HTTP handlers of the case-management API.
type Handlers struct {
	svc      *service.Service
	accounts *service.Accounts
	sessions *session.Manager
	log      *logger.Logger
	maxBytes int64
}

func NewHandlers(svc *service.Service, accounts *service.Accounts, sessions *session.Manager, log *logger.Logger, maxUploadBytes int64) *Handlers {
	return &Handlers{
		svc:      svc,
		accounts: accounts,
		sessions: sessions,
		log:      log,
		maxBytes: maxUploadBytes,
	}
}

// RegisterRoutes registers the API routes with the router.
func (h *Handlers) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api")
	{
		api.POST("/login", h.Login)
		api.POST("/logout", h.Logout)
	}

	authed := api.Group("")
	authed.Use(h.RequireSession())
	{
		authed.GET("/auth/user", h.CurrentUser)

		authed.GET("/patients", h.ListPatients)
		authed.GET("/patients/:id", h.GetPatient)
		authed.GET("/patients/:id/audit", h.PatientHistory)
		authed.POST("/patients", h.CreatePatient)
		authed.PUT("/patients/:id", h.UpdatePatient)
		authed.DELETE("/patients/:id", h.DeletePatient)

		authed.GET("/guarantors", h.ListGuarantors)
		authed.GET("/guarantors/:id", h.GetGuarantor)
		authed.POST("/guarantors", h.CreateGuarantor)

		authed.POST("/documents", h.UploadDocument)
		authed.DELETE("/documents/:id", h.DeleteDocument)
	}
}

// Health reports whether the store is reachable.
func (h *Handlers) Health(c *gin.Context) {
	if err := h.svc.Ping(c.Request.Context()); err != nil {
		h.log.WithError(err).Warn("health check failed")
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

const actorKey = "actor"

// actorOf returns the actor resolved by RequireSession.
func actorOf(c *gin.Context) access.Actor {
	actor, _ := c.MustGet(actorKey).(access.Actor)
	return actor
}

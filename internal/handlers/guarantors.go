package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medflow-backend/internal/service"
)

// ListGuarantors returns guarantors with their patient count and financial totals.
func (h *Handlers) ListGuarantors(c *gin.Context) {
	list, err := h.svc.ListGuarantors(c.Request.Context())
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *Handlers) GetGuarantor(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	g, err := h.svc.GetGuarantor(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

func (h *Handlers) CreateGuarantor(c *gin.Context) {
	var req service.NewGuarantor
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	g, err := h.svc.CreateGuarantor(c.Request.Context(), actorOf(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, g)
}

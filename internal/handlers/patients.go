package handlers

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medflow-backend/internal/apperrors"
	"medflow-backend/internal/workflow"
)

// parseID reads the :id path parameter.
func parseID(c *gin.Context, name string) (uint, error) {
	id, err := strconv.ParseUint(c.Param(name), 10, 0)
	if err != nil || id == 0 {
		return 0, apperrors.Validation(name, "Invalid "+name)
	}
	return uint(id), nil
}

func (h *Handlers) ListPatients(c *gin.Context) {
	patients, err := h.svc.ListPatients(c.Request.Context(), c.Query("search"), c.Query("status"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, patients)
}

func (h *Handlers) GetPatient(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	detail, err := h.svc.GetPatient(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, detail)
}

func (h *Handlers) CreatePatient(c *gin.Context) {
	var req workflow.NewPatient
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	p, err := h.svc.CreatePatient(c.Request.Context(), actorOf(c), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, p)
}

// UpdatePatient applies a partial update. Locked files reject non-admins.
func (h *Handlers) UpdatePatient(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	var req workflow.PatientUpdate
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, bindError(err))
		return
	}
	p, err := h.svc.UpdatePatient(c.Request.Context(), actorOf(c), id, req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handlers) DeletePatient(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.DeletePatient(c.Request.Context(), actorOf(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// PatientHistory returns the audit entries of a patient, oldest first.
func (h *Handlers) PatientHistory(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	entries, err := h.svc.PatientHistory(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, entries)
}

package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"medflow-backend/internal/apperrors"
)

// multipartOverhead is allowed on top of the file limit for headers and fields.
const multipartOverhead = 1 << 20

// UploadDocument accepts a multipart form with a "file" part and a
// "patientId" field.
func (h *Handlers) UploadDocument(c *gin.Context) {
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxBytes+multipartOverhead)

	fh, err := c.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.respondError(c, apperrors.Validation("file", "File is too large"))
			return
		}
		h.respondError(c, apperrors.Validation("file", "No file uploaded"))
		return
	}
	if fh.Size > h.maxBytes {
		h.respondError(c, apperrors.Validation("file", "File is too large"))
		return
	}

	patientID, err := strconv.ParseUint(c.PostForm("patientId"), 10, 0)
	if err != nil || patientID == 0 {
		h.respondError(c, apperrors.Validation("patientId", "Invalid patientId"))
		return
	}

	f, err := fh.Open()
	if err != nil {
		h.respondError(c, apperrors.Internal("open upload", err))
		return
	}
	defer f.Close()

	doc, err := h.svc.UploadDocument(c.Request.Context(), actorOf(c), uint(patientID), fh.Filename, fh.Header.Get("Content-Type"), f)
	if err != nil {
		h.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, doc)
}

func (h *Handlers) DeleteDocument(c *gin.Context) {
	id, err := parseID(c, "id")
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.svc.DeleteDocument(c.Request.Context(), actorOf(c), id); err != nil {
		h.respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

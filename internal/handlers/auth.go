package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"medflow-backend/internal/apperrors"
)

type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Login checks credentials and starts a session.
func (h *Handlers) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.respondError(c, apperrors.Validation("username", "Username and password required"))
		return
	}

	user, err := h.accounts.Authenticate(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		h.respondError(c, err)
		return
	}
	if err := h.sessions.Login(c.Writer, c.Request, *user); err != nil {
		h.respondError(c, apperrors.Internal("start session", err))
		return
	}

	h.log.WithUserID(user.ID).Info("user signed in")
	c.JSON(http.StatusOK, gin.H{
		"id":       user.ID,
		"username": user.Username,
		"role":     user.Role,
		"email":    user.Email,
	})
}

func (h *Handlers) Logout(c *gin.Context) {
	if err := h.sessions.Logout(c.Writer, c.Request); err != nil {
		h.log.WithError(err).Warn("failed to clear session")
	}
	c.Status(http.StatusNoContent)
}

// CurrentUser returns the user of the current session.
func (h *Handlers) CurrentUser(c *gin.Context) {
	actor := actorOf(c)
	c.JSON(http.StatusOK, gin.H{
		"id":       actor.ID,
		"username": actor.Username,
		"role":     actor.Role,
	})
}

package handlers

import (
	"fmt"
	"net/http"
	"runtime"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"medflow-backend/internal/access"
	"medflow-backend/internal/apperrors"
	"medflow-backend/internal/logger"
	"medflow-backend/internal/metrics"
)

const (
	requestIDHeader = "X-Request-ID"
	requestIDKey    = "request_id"
)

// RequestID reuses an incoming X-Request-ID or generates one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		rid := c.GetHeader(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		c.Set(requestIDKey, rid)
		c.Header(requestIDHeader, rid)
		c.Next()
	}
}

func requestIDOf(c *gin.Context) string {
	return c.GetString(requestIDKey)
}

// RequestLogger emits one entry per request.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		entry := log.WithRequestID(requestIDOf(c)).
			WithField("method", c.Request.Method).
			WithField("path", c.Request.URL.Path).
			WithField("status", c.Writer.Status()).
			WithField("latency", time.Since(start)).
			WithField("remote_ip", c.ClientIP())
		if v, ok := c.Get(actorKey); ok {
			if actor, ok := v.(access.Actor); ok {
				entry = entry.WithField("user_id", actor.ID)
			}
		}
		switch {
		case c.Writer.Status() >= http.StatusInternalServerError:
			entry.Error("request")
		case c.Writer.Status() >= http.StatusBadRequest:
			entry.Warn("request")
		default:
			entry.Info("request")
		}
	}
}

// Recovery turns a panic into a generic 500 and logs the stack.
func Recovery(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if r := recover(); r != nil {
				var stack [4096]byte
				n := runtime.Stack(stack[:], false)

				log.WithRequestID(requestIDOf(c)).
					WithField("panic", fmt.Sprintf("%v", r)).
					WithField("stack", string(stack[:n])).
					Error("panic recovered")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
			}
		}()
		c.Next()
	}
}

// Metrics records request counts and latencies by route template.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		endpoint := c.FullPath()
		if endpoint == "" {
			endpoint = "unmatched"
		}
		m.ObserveRequest(c.Request.Method, endpoint, c.Writer.Status(), time.Since(start).Seconds())
	}
}

// RequireSession resolves the actor from the session cookie or answers 401.
func (h *Handlers) RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := h.sessions.Actor(c.Request)
		if !ok {
			h.respondError(c, apperrors.Unauthorized("Unauthorized"))
			return
		}
		c.Set(actorKey, actor)
		c.Next()
	}
}

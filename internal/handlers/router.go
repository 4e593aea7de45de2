package handlers

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"medflow-backend/internal/logger"
	"medflow-backend/internal/metrics"
	"medflow-backend/internal/utils"
)

// RouterConfig carries what the router needs beyond the handlers.
type RouterConfig struct {
	CORSOrigins []string
	UploadDir   string
	Debug       bool
}

// NewRouter builds the gin engine with middleware, API routes, uploaded file
// serving, health and metrics endpoints.
func NewRouter(h *Handlers, m *metrics.Metrics, log *logger.Logger, cfg RouterConfig) *gin.Engine {
	if !cfg.Debug {
		gin.SetMode(gin.ReleaseMode)
	}
	useJSONFieldNames()

	router := gin.New()
	router.Use(RequestID())
	router.Use(RequestLogger(log))
	// Metrics wraps Recovery so recovered panics are counted as 5xx.
	router.Use(Metrics(m))
	router.Use(Recovery(log))
	if len(cfg.CORSOrigins) > 0 {
		router.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "X-Request-ID"},
			ExposeHeaders:    []string{"X-Request-ID"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}
	router.MaxMultipartMemory = 8 << 20

	router.GET("/healthz", h.Health)
	router.GET("/metrics", gin.WrapH(m.Handler()))
	if cfg.UploadDir != "" {
		// Uploaded documents are patient data; only signed-in staff may fetch them.
		uploads := router.Group("/"+utils.PublicPrefix, h.RequireSession())
		uploads.Static("/", cfg.UploadDir)
	}

	h.RegisterRoutes(router)
	return router
}

package router

import (
	"net/http"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/hirestack/assessment-engine/internal/config"
	"github.com/hirestack/assessment-engine/internal/handler"
	"github.com/hirestack/assessment-engine/internal/middleware"
	"github.com/hirestack/assessment-engine/internal/response"
)

// Handlers groups all handler instances for route setup.
type Handlers struct {
	Session *handler.SessionHandler
	Proctor *handler.ProctorHandler
}

// ScopeProctor is the service token scope required for proctoring routes.
const ScopeProctor = "proctor"

// SetupRouter configures all Gin route groups with appropriate middlewares.
func SetupRouter(handlers *Handlers, cfg *config.Config) *gin.Engine {
	gin.SetMode(cfg.GinMode)
	router := gin.Default()

	// ─── CORS ──────────────────────────────────────────────────────────
	// If AllowedOrigins is set in config, restrict to that list;
	// otherwise allow all (*) so dev works without extra config.
	corsConfig := cors.DefaultConfig()
	if len(cfg.AllowedOrigins) > 0 {
		corsConfig.AllowOrigins = cfg.AllowedOrigins
	} else {
		corsConfig.AllowAllOrigins = true
	}
	corsConfig.AllowMethods = []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"}
	corsConfig.AllowHeaders = []string{"Origin", "Content-Type", "Authorization", "X-Request-ID"}
	corsConfig.ExposeHeaders = []string{"X-Request-ID"}
	corsConfig.MaxAge = 12 * time.Hour
	router.Use(cors.New(corsConfig))

	// Apply request ID middleware globally so every response includes metadata.
	router.Use(response.RequestIDMiddleware())

	// Health check.
	router.GET("/health", func(c *gin.Context) {
		response.Success(c, http.StatusOK, gin.H{"status": "ok"})
	})

	// ─── 1. Candidate Session Group ────────────────────────────────────
	sessions := router.Group("/api/v1/sessions")
	{
		sessions.POST("", handlers.Session.CreateSession)
		sessions.GET("/:session_id/next", handlers.Session.NextQuestion)
		sessions.POST("/:session_id/answers", handlers.Session.SubmitAnswer)
		sessions.POST("/:session_id/code", handlers.Session.SubmitCode)
		sessions.POST("/:session_id/pause", handlers.Session.PauseSession)
		sessions.POST("/:session_id/resume", handlers.Session.ResumeSession)
		sessions.POST("/:session_id/complete", handlers.Session.CompleteSession)
		sessions.GET("/:session_id/recover", handlers.Session.RecoverSession)
		sessions.GET("/:session_id/stats", handlers.Session.SessionStats)
	}

	// ─── 2. Proctoring Group (Service Token) ───────────────────────────
	proctor := router.Group("/api/v1/proctor")
	proctor.Use(middleware.RequireServiceToken(cfg, ScopeProctor))
	{
		proctor.POST("/sessions/:session_id/violations", handlers.Proctor.ReportViolation)
		proctor.POST("/sessions/:session_id/terminate", handlers.Proctor.TerminateSession)
	}

	return router
}

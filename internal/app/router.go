// internal/app/router.go
package app

import (
	activityHandler "fixit-service/internal/handlers/activity"
	auditHandler "fixit-service/internal/handlers/audit"
	authHandler "fixit-service/internal/handlers/auth"
	reportHandler "fixit-service/internal/handlers/report"
	wsHandler "fixit-service/internal/handlers/websocket"
	"fixit-service/internal/middleware"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handlers struct {
	AuthHandler     *authHandler.AuthHandler
	ReportHandler   *reportHandler.ReportHandler
	AuditHandler    *auditHandler.AuditHandler
	ActivityHandler *activityHandler.ActivityHandler
	WSHandler       *wsHandler.WebSocketHandler
	AuthMiddleware  *middleware.AuthMiddleware
}

func SetupRouter(r *gin.Engine, logger *zap.Logger, h *Handlers) {
	api := r.Group("/api/v1")

	// ==================== Health Check ====================
	api.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok", "version": "1.0.0"})
	})

	// ==================== WebSocket ====================
	r.GET("/ws", h.WSHandler.HandleConnection)

	// ==================== Public Auth Routes ====================
	authPublic := api.Group("/auth")
	{
		authPublic.POST("/login", h.AuthHandler.AdminLogin)
		authPublic.POST("/google", h.AuthHandler.GoogleLogin)
	}

	// ==================== Authenticated Auth Routes ====================
	authProtected := api.Group("/auth")
	authProtected.Use(h.AuthMiddleware.Auth())
	{
		authProtected.POST("/logout", h.AuthHandler.Logout)
		authProtected.GET("/session", h.AuthHandler.SessionStats)
		authProtected.POST("/session/extend", h.AuthHandler.ExtendSession)
		authProtected.POST("/session/heartbeat", h.AuthHandler.Heartbeat)
	}

	// ==================== Reports ====================
	reports := api.Group("/reports")
	reports.Use(h.AuthMiddleware.Auth())
	{
		reports.POST("", h.ReportHandler.Create)
		reports.GET("", h.ReportHandler.List)
		reports.GET("/:id", h.ReportHandler.Get)
		reports.PUT("/:id", h.ReportHandler.Update)
		reports.DELETE("/:id", h.ReportHandler.Delete)
	}

	// ==================== Activity ====================
	activity := api.Group("/activity")
	activity.Use(h.AuthMiddleware.Auth())
	{
		activity.GET("", h.ActivityHandler.History)
	}

	// ==================== Admin ====================
	admin := api.Group("/admin")
	admin.Use(h.AuthMiddleware.AdminOnly()...)
	{
		admin.PATCH("/reports/:id/status", h.ReportHandler.UpdateStatus)
		admin.GET("/reports/stats", h.ReportHandler.Stats)

		admin.GET("/sessions", h.AuthHandler.ActiveSessions)
		admin.POST("/sessions/cleanup", h.AuthHandler.CleanupSessions)

		admin.GET("/audit", h.AuditHandler.List)
		admin.DELETE("/audit", h.AuditHandler.Purge)

		admin.GET("/activity/login-stats", h.ActivityHandler.LoginStats)
		admin.GET("/activity/failed-attempts", h.ActivityHandler.FailedAttempts)

		admin.GET("/ws/stats", h.WSHandler.GetStats)
	}
}

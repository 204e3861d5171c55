// internal/handlers/auth/auth_handler.go
package auth

import (
	"net/http"

	"fixit-service/internal/domain/user"
	"fixit-service/internal/middleware"
	"fixit-service/internal/pkg/response"
	authService "fixit-service/internal/service/auth"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuthHandler struct {
	authService *authService.AuthService
	logger      *zap.Logger
}

func NewAuthHandler(svc *authService.AuthService, logger *zap.Logger) *AuthHandler {
	return &AuthHandler{
		authService: svc,
		logger:      logger,
	}
}

// ========== Login ==========

// AdminLogin handles admin login with email and password.
func (h *AuthHandler) AdminLogin(c *gin.Context) {
	var req user.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	loginResp, err := h.authService.AdminLogin(c.Request.Context(), &req, c.ClientIP(), middleware.ClientDevice(c))
	if err != nil {
		h.logger.Warn("admin login failed",
			zap.String("email", req.Email),
			zap.String("ip", c.ClientIP()),
			zap.Error(err),
		)
		response.FromError(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// GoogleLogin handles campus user login via the Google workspace.
func (h *AuthHandler) GoogleLogin(c *gin.Context) {
	var req user.GoogleLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	loginResp, err := h.authService.GoogleLogin(c.Request.Context(), &req, c.ClientIP(), middleware.ClientDevice(c))
	if err != nil {
		h.logger.Warn("google login failed",
			zap.String("email", req.Email),
			zap.Error(err),
		)
		response.FromError(c, "login failed", err)
		return
	}

	response.Success(c, http.StatusOK, "login successful", loginResp)
}

// ========== Logout ==========

// Logout invalidates the caller's session (requires auth).
func (h *AuthHandler) Logout(c *gin.Context) {
	u := middleware.MustCurrentUser(c)

	h.authService.Logout(c.Request.Context(), u.Email, u.Name, c.ClientIP(), middleware.ClientDevice(c))

	response.Success(c, http.StatusOK, "logout successful", nil)
}

// ========== Session ==========

// SessionStats returns the caller's expiry countdown and inactivity.
func (h *AuthHandler) SessionStats(c *gin.Context) {
	u := middleware.MustCurrentUser(c)

	stats, err := h.authService.SessionStats(u.Email)
	if err != nil {
		response.FromError(c, "session not found", err)
		return
	}

	response.Success(c, http.StatusOK, "session stats", stats)
}

// ExtendSession restarts the caller's absolute expiry clock.
func (h *AuthHandler) ExtendSession(c *gin.Context) {
	u := middleware.MustCurrentUser(c)

	stats, err := h.authService.ExtendSession(u.Email)
	if err != nil {
		response.FromError(c, "failed to extend session", err)
		return
	}

	response.Success(c, http.StatusOK, "session extended", stats)
}

// Heartbeat records activity for the caller's session.
func (h *AuthHandler) Heartbeat(c *gin.Context) {
	u := middleware.MustCurrentUser(c)

	if !h.authService.Heartbeat(u.Email) {
		response.Unauthorized(c, "session not found")
		return
	}

	response.Success(c, http.StatusOK, "heartbeat recorded", nil)
}

// ========== Admin ==========

// ActiveSessions lists all live sessions (admin only).
func (h *AuthHandler) ActiveSessions(c *gin.Context) {
	sessions := h.authService.ActiveSessions()

	response.Success(c, http.StatusOK, "active sessions", gin.H{
		"count":    len(sessions),
		"sessions": sessions,
	})
}

// CleanupSessions removes every expired or inactive session (admin only).
func (h *AuthHandler) CleanupSessions(c *gin.Context) {
	removed := h.authService.CleanupSessions()

	h.logger.Info("manual session cleanup", zap.Int("removed", removed))
	response.Success(c, http.StatusOK, "cleanup complete", gin.H{"removed": removed})
}

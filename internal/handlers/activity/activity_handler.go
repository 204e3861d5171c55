// internal/handlers/activity/activity_handler.go
package activity

import (
	"net/http"
	"strconv"

	"fixit-service/internal/middleware"
	"fixit-service/internal/pkg/response"
	activityService "fixit-service/internal/service/activity"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ActivityHandler struct {
	activityService *activityService.ActivityService
	logger          *zap.Logger
}

func NewActivityHandler(svc *activityService.ActivityService, logger *zap.Logger) *ActivityHandler {
	return &ActivityHandler{
		activityService: svc,
		logger:          logger,
	}
}

// History returns the caller's own activity, or any user's when the
// caller is an admin and passes ?email=.
func (h *ActivityHandler) History(c *gin.Context) {
	u := middleware.MustCurrentUser(c)

	email := u.Email
	if requested := c.Query("email"); requested != "" && requested != u.Email {
		if !middleware.IsAdmin(c) {
			response.Forbidden(c, "cannot view another user's activity")
			return
		}
		email = requested
	}

	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	events, err := h.activityService.History(c.Request.Context(), email, limit)
	if err != nil {
		response.FromError(c, "failed to fetch activity", err)
		return
	}

	response.Success(c, http.StatusOK, "activity history", events)
}

// LoginStats returns login aggregates, for one user with ?email= or
// for every account without it (admin only).
func (h *ActivityHandler) LoginStats(c *gin.Context) {
	email := c.Query("email")
	if email == "" {
		all, err := h.activityService.AllLoginStats(c.Request.Context())
		if err != nil {
			response.FromError(c, "failed to fetch login stats", err)
			return
		}
		response.Success(c, http.StatusOK, "login stats", all)
		return
	}

	stats, err := h.activityService.LoginStats(c.Request.Context(), email)
	if err != nil {
		response.FromError(c, "failed to fetch login stats", err)
		return
	}

	response.Success(c, http.StatusOK, "login stats", stats)
}

// FailedAttempts lists rejected logins for security review (admin only).
func (h *ActivityHandler) FailedAttempts(c *gin.Context) {
	limit := 100
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}

	attempts, err := h.activityService.FailedAttempts(c.Request.Context(), c.Query("email"), limit)
	if err != nil {
		response.FromError(c, "failed to fetch failed attempts", err)
		return
	}

	response.Success(c, http.StatusOK, "failed login attempts", attempts)
}

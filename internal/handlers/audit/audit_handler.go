// internal/handlers/audit/audit_handler.go
package audit

import (
	"net/http"
	"strconv"

	"fixit-service/internal/domain/audit"
	"fixit-service/internal/pkg/response"
	auditService "fixit-service/internal/service/audit"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type AuditHandler struct {
	auditService *auditService.AuditService
	logger       *zap.Logger
}

func NewAuditHandler(svc *auditService.AuditService, logger *zap.Logger) *AuditHandler {
	return &AuditHandler{
		auditService: svc,
		logger:       logger,
	}
}

// List retrieves the audit trail (admin only).
func (h *AuditHandler) List(c *gin.Context) {
	var filters audit.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	resp, err := h.auditService.List(c.Request.Context(), filters)
	if err != nil {
		response.FromError(c, "failed to list audit logs", err)
		return
	}

	response.Success(c, http.StatusOK, "audit logs", resp)
}

// Purge drops audit entries older than the given number of days
// (admin only, default 90).
func (h *AuditHandler) Purge(c *gin.Context) {
	days := 90
	if v := c.Query("days"); v != "" {
		parsed, err := strconv.Atoi(v)
		if err != nil || parsed < 1 {
			response.Error(c, http.StatusBadRequest, "invalid days parameter", err)
			return
		}
		days = parsed
	}

	removed, err := h.auditService.Purge(c.Request.Context(), days)
	if err != nil {
		response.FromError(c, "failed to purge audit logs", err)
		return
	}

	response.Success(c, http.StatusOK, "audit logs purged", gin.H{"removed": removed, "days": days})
}

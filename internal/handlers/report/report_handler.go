// internal/handlers/report/report_handler.go
package report

import (
	"net/http"
	"strconv"

	"fixit-service/internal/domain/report"
	"fixit-service/internal/middleware"
	"fixit-service/internal/pkg/response"
	reportService "fixit-service/internal/service/report"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type ReportHandler struct {
	reportService *reportService.ReportService
	logger        *zap.Logger
}

func NewReportHandler(svc *reportService.ReportService, logger *zap.Logger) *ReportHandler {
	return &ReportHandler{
		reportService: svc,
		logger:        logger,
	}
}

// Create files a new issue report.
func (h *ReportHandler) Create(c *gin.Context) {
	var req report.CreateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	u := middleware.MustCurrentUser(c)

	created, err := h.reportService.Create(c.Request.Context(), u, &req)
	if err != nil {
		h.logger.Error("report creation failed",
			zap.String("user", u.Email),
			zap.Error(err),
		)
		response.FromError(c, "failed to create report", err)
		return
	}

	response.Success(c, http.StatusCreated, "report created", created)
}

// Get fetches a single report.
func (h *ReportHandler) Get(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid report id", err)
		return
	}

	u := middleware.MustCurrentUser(c)

	rep, err := h.reportService.Get(c.Request.Context(), u, id)
	if err != nil {
		response.FromError(c, "failed to fetch report", err)
		return
	}

	response.Success(c, http.StatusOK, "report", rep)
}

// List retrieves reports matching the query filters.
func (h *ReportHandler) List(c *gin.Context) {
	var filters report.ListFilters
	if err := c.ShouldBindQuery(&filters); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid filters", err)
		return
	}

	u := middleware.MustCurrentUser(c)

	resp, err := h.reportService.List(c.Request.Context(), u, filters)
	if err != nil {
		response.FromError(c, "failed to list reports", err)
		return
	}

	response.Success(c, http.StatusOK, "reports", resp)
}

// Update edits a pending report's description and location.
func (h *ReportHandler) Update(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid report id", err)
		return
	}

	var req report.UpdateReportRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	u := middleware.MustCurrentUser(c)

	updated, err := h.reportService.Update(c.Request.Context(), u, id, &req)
	if err != nil {
		response.FromError(c, "failed to update report", err)
		return
	}

	response.Success(c, http.StatusOK, "report updated", updated)
}

// UpdateStatus moves a report through triage (admin only).
func (h *ReportHandler) UpdateStatus(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid report id", err)
		return
	}

	var req report.UpdateStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "invalid request", err)
		return
	}

	u := middleware.MustCurrentUser(c)

	updated, err := h.reportService.UpdateStatus(c.Request.Context(), u, id, req.Status)
	if err != nil {
		response.FromError(c, "failed to update status", err)
		return
	}

	response.Success(c, http.StatusOK, "status updated", updated)
}

// Delete removes a report.
func (h *ReportHandler) Delete(c *gin.Context) {
	id, err := parseID(c)
	if err != nil {
		response.Error(c, http.StatusBadRequest, "invalid report id", err)
		return
	}

	u := middleware.MustCurrentUser(c)

	if err := h.reportService.Delete(c.Request.Context(), u, id); err != nil {
		response.FromError(c, "failed to delete report", err)
		return
	}

	response.Success(c, http.StatusOK, "report deleted", nil)
}

// Stats aggregates report counts for the admin dashboard.
func (h *ReportHandler) Stats(c *gin.Context) {
	stats, err := h.reportService.Stats(c.Request.Context())
	if err != nil {
		response.FromError(c, "failed to fetch stats", err)
		return
	}

	response.Success(c, http.StatusOK, "report stats", stats)
}

func parseID(c *gin.Context) (int64, error) {
	return strconv.ParseInt(c.Param("id"), 10, 64)
}

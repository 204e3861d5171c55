// internal/domain/report/dto.go
package report

type CreateReportRequest struct {
	Description string `json:"issue_description" binding:"required"`
	Location    string `json:"location" binding:"required"`
}

type UpdateReportRequest struct {
	Description string `json:"issue_description" binding:"required"`
	Location    string `json:"location" binding:"required"`
}

type UpdateStatusRequest struct {
	Status Status `json:"status" binding:"required"`
}

type ListFilters struct {
	Category string   `form:"category"`
	Statuses []string `form:"status"`
	Search   string   `form:"search"`
	Page     int      `form:"page"`
	PageSize int      `form:"page_size"`

	// UserEmail is set server-side for non-admin callers.
	UserEmail string `form:"-"`
}

type ListResponse struct {
	Reports    []Report `json:"reports"`
	Total      int64    `json:"total"`
	Page       int      `json:"page"`
	PageSize   int      `json:"page_size"`
	TotalPages int      `json:"total_pages"`
}

// Stats summarises report volume for the statistics dashboard.
type Stats struct {
	Total      int64            `json:"total"`
	ByStatus   map[string]int64 `json:"by_status"`
	ByCategory map[string]int64 `json:"by_category"`
}

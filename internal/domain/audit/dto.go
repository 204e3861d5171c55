// internal/domain/audit/dto.go
package audit

import "time"

type ListFilters struct {
	ActorEmail   string     `form:"actor_email"`
	ActionTypes  []string   `form:"action_type"`
	ResourceType string     `form:"resource_type"`
	StartDate    *time.Time `form:"start_date" time_format:"2006-01-02"`
	EndDate      *time.Time `form:"end_date" time_format:"2006-01-02"`
	Limit        int        `form:"limit"`
	Offset       int        `form:"offset"`
}

type ListResponse struct {
	Logs   []Log `json:"logs"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

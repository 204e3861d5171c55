// internal/domain/audit/entity.go
package audit

import (
	"database/sql"
	"time"
)

// Action types recorded in the audit trail.
const (
	ActionLogin          = "login"
	ActionLogout         = "logout"
	ActionSessionExpired = "session_expired"
	ActionReportCreate   = "report_create"
	ActionReportUpdate   = "report_update"
	ActionReportDelete   = "report_delete"
	ActionStatusChange   = "status_change"
)

const (
	StatusSuccess = "success"
	StatusFailed  = "failed"
)

// Log is one audit trail entry.
type Log struct {
	ID           int64          `json:"id" db:"id"`
	ActorEmail   string         `json:"actor_email" db:"actor_email"`
	ActorName    string         `json:"actor_name" db:"actor_name"`
	ActionType   string         `json:"action_type" db:"action_type"`
	ResourceType sql.NullString `json:"resource_type,omitempty" db:"resource_type"`
	ResourceID   sql.NullInt64  `json:"resource_id,omitempty" db:"resource_id"`
	Details      sql.NullString `json:"details,omitempty" db:"details"`
	Timestamp    time.Time      `json:"timestamp" db:"timestamp"`
	Status       string         `json:"status" db:"status"`
}

// Entry is the write-side shape for recording an action.
type Entry struct {
	ActorEmail   string
	ActorName    string
	ActionType   string
	ResourceType string
	ResourceID   int64
	Details      string
	Status       string
}

// internal/domain/report/entity.go
package report

import "time"

type Status string

const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusRejected   Status = "Rejected"
)

// ValidStatus reports whether s is a recognised report status.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPending, StatusInProgress, StatusResolved, StatusRejected:
		return true
	}
	return false
}

// Report is one submitted campus issue.
type Report struct {
	ID          int64     `json:"id" db:"id"`
	UserEmail   string    `json:"user_email" db:"user_email"`
	UserName    string    `json:"user_name" db:"user_name"`
	UserType    string    `json:"user_type" db:"user_type"`
	Description string    `json:"issue_description" db:"issue_description"`
	Location    string    `json:"location" db:"location"`
	Category    string    `json:"category" db:"category"`
	Status      Status    `json:"status" db:"status"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

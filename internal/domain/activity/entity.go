// internal/domain/activity/entity.go
package activity

import (
	"database/sql"
	"time"
)

// Activity types tracked per user.
const (
	TypeLogin         = "login"
	TypeLogout        = "logout"
	TypeProfileUpdate = "profile_update"
)

// Event is one entry in a user's activity history.
type Event struct {
	ID         int64          `json:"id" db:"id"`
	UserEmail  string         `json:"user_email" db:"user_email"`
	UserName   string         `json:"user_name" db:"user_name"`
	Type       string         `json:"activity_type" db:"activity_type"`
	IPAddress  string         `json:"ip_address" db:"ip_address"`
	DeviceInfo string         `json:"device_info" db:"device_info"`
	Status     string         `json:"status" db:"status"`
	Details    sql.NullString `json:"details,omitempty" db:"details"`
	Timestamp  time.Time      `json:"timestamp" db:"timestamp"`
}

// LoginStats aggregates a user's login history for the admin dashboard.
type LoginStats struct {
	UserEmail           string         `json:"user_email" db:"user_email"`
	LastLogin           sql.NullTime   `json:"last_login,omitempty" db:"last_login"`
	LastLoginIP         sql.NullString `json:"last_login_ip,omitempty" db:"last_login_ip"`
	TotalLogins         int64          `json:"total_logins" db:"total_logins"`
	TotalFailedAttempts int64          `json:"total_failed_attempts" db:"total_failed_attempts"`
	LastFailedAttempt   sql.NullTime   `json:"last_failed_attempt,omitempty" db:"last_failed_attempt"`
}

// FailedAttempt is one rejected login, kept separately for security review.
type FailedAttempt struct {
	ID        int64     `json:"id" db:"id"`
	Email     string    `json:"email" db:"email"`
	IPAddress string    `json:"ip_address" db:"ip_address"`
	Reason    string    `json:"reason" db:"reason"`
	Timestamp time.Time `json:"timestamp" db:"timestamp"`
}

// internal/repository/postgres/activity_repo.go
package postgres

import (
	"context"
	"fmt"

	"fixit-service/internal/domain/activity"

	"github.com/jackc/pgx/v5/pgxpool"
)

type ActivityRepository struct {
	db *pgxpool.Pool
}

func NewActivityRepository(db *pgxpool.Pool) *ActivityRepository {
	return &ActivityRepository{db: db}
}

// RecordEvent stores one user activity event.
func (r *ActivityRepository) RecordEvent(ctx context.Context, e *activity.Event) error {
	query := `
		INSERT INTO user_activity (user_email, user_name, activity_type, ip_address, device_info, status, details)
		VALUES ($1, $2, $3, $4, $5, $6, NULLIF($7, ''))
	`

	_, err := r.db.Exec(ctx, query,
		e.UserEmail, e.UserName, e.Type, e.IPAddress, e.DeviceInfo, e.Status, e.Details.String,
	)
	if err != nil {
		return fmt.Errorf("failed to record activity: %w", err)
	}
	return nil
}

// RecordFailedAttempt stores one rejected login.
func (r *ActivityRepository) RecordFailedAttempt(ctx context.Context, a *activity.FailedAttempt) error {
	query := `
		INSERT INTO failed_login_attempts (email, ip_address, reason)
		VALUES ($1, $2, $3)
	`

	if _, err := r.db.Exec(ctx, query, a.Email, a.IPAddress, a.Reason); err != nil {
		return fmt.Errorf("failed to record failed attempt: %w", err)
	}
	return nil
}

// History retrieves a user's recent activity, newest first.
func (r *ActivityRepository) History(ctx context.Context, userEmail string, limit int) ([]activity.Event, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, user_email, user_name, activity_type, ip_address,
		       device_info, status, details, timestamp
		FROM user_activity
		WHERE user_email = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, userEmail, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch activity history: %w", err)
	}
	defer rows.Close()

	var events []activity.Event
	for rows.Next() {
		var e activity.Event
		if err := rows.Scan(
			&e.ID, &e.UserEmail, &e.UserName, &e.Type, &e.IPAddress,
			&e.DeviceInfo, &e.Status, &e.Details, &e.Timestamp,
		); err != nil {
			return nil, fmt.Errorf("failed to scan activity event: %w", err)
		}
		events = append(events, e)
	}

	return events, rows.Err()
}

// FailedAttempts lists recent rejected logins, newest first. An empty
// email returns attempts across all accounts.
func (r *ActivityRepository) FailedAttempts(ctx context.Context, email string, limit int) ([]activity.FailedAttempt, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := `
		SELECT id, email, ip_address, reason, timestamp
		FROM failed_login_attempts
		WHERE ($1 = '' OR email = $1)
		ORDER BY timestamp DESC
		LIMIT $2
	`

	rows, err := r.db.Query(ctx, query, email, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch failed attempts: %w", err)
	}
	defer rows.Close()

	var attempts []activity.FailedAttempt
	for rows.Next() {
		var a activity.FailedAttempt
		if err := rows.Scan(&a.ID, &a.Email, &a.IPAddress, &a.Reason, &a.Timestamp); err != nil {
			return nil, fmt.Errorf("failed to scan failed attempt: %w", err)
		}
		attempts = append(attempts, a)
	}

	return attempts, rows.Err()
}

// LoginStats aggregates login history for one user.
func (r *ActivityRepository) LoginStats(ctx context.Context, userEmail string) (*activity.LoginStats, error) {
	query := `
		SELECT
			$1::text AS user_email,
			(SELECT MAX(timestamp) FROM user_activity WHERE user_email = $1 AND activity_type = 'login' AND status = 'success'),
			(SELECT ip_address FROM user_activity WHERE user_email = $1 AND activity_type = 'login' AND status = 'success' ORDER BY timestamp DESC LIMIT 1),
			(SELECT COUNT(*) FROM user_activity WHERE user_email = $1 AND activity_type = 'login' AND status = 'success'),
			(SELECT COUNT(*) FROM failed_login_attempts WHERE email = $1),
			(SELECT MAX(timestamp) FROM failed_login_attempts WHERE email = $1)
	`

	var stats activity.LoginStats
	err := r.db.QueryRow(ctx, query, userEmail).Scan(
		&stats.UserEmail, &stats.LastLogin, &stats.LastLoginIP,
		&stats.TotalLogins, &stats.TotalFailedAttempts, &stats.LastFailedAttempt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch login stats: %w", err)
	}

	return &stats, nil
}

// AllLoginStats aggregates login history per account, most recent first.
func (r *ActivityRepository) AllLoginStats(ctx context.Context) ([]activity.LoginStats, error) {
	query := `
		SELECT
			ua.user_email,
			MAX(ua.timestamp) FILTER (WHERE ua.status = 'success') AS last_login,
			(array_agg(ua.ip_address ORDER BY ua.timestamp DESC))[1] AS last_login_ip,
			COUNT(*) FILTER (WHERE ua.status = 'success') AS total_logins,
			(SELECT COUNT(*) FROM failed_login_attempts f WHERE f.email = ua.user_email),
			(SELECT MAX(f.timestamp) FROM failed_login_attempts f WHERE f.email = ua.user_email)
		FROM user_activity ua
		WHERE ua.activity_type = 'login'
		GROUP BY ua.user_email
		ORDER BY last_login DESC NULLS LAST
	`

	rows, err := r.db.Query(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch login stats: %w", err)
	}
	defer rows.Close()

	var all []activity.LoginStats
	for rows.Next() {
		var stats activity.LoginStats
		if err := rows.Scan(
			&stats.UserEmail, &stats.LastLogin, &stats.LastLoginIP,
			&stats.TotalLogins, &stats.TotalFailedAttempts, &stats.LastFailedAttempt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan login stats: %w", err)
		}
		all = append(all, stats)
	}

	return all, rows.Err()
}

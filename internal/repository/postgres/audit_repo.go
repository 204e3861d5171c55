// internal/repository/postgres/audit_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"fixit-service/internal/domain/audit"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type AuditRepository struct {
	db *pgxpool.Pool
}

func NewAuditRepository(db *pgxpool.Pool) *AuditRepository {
	return &AuditRepository{db: db}
}

// Record appends one entry to the audit trail. Audit writes never
// block the caller's operation; the service layer decides whether to
// surface the error.
func (r *AuditRepository) Record(ctx context.Context, e audit.Entry) error {
	query := `
		INSERT INTO audit_logs (actor_email, actor_name, action_type, resource_type, resource_id, details, status)
		VALUES ($1, $2, $3, NULLIF($4, ''), NULLIF($5, 0), NULLIF($6, ''), $7)
	`

	_, err := r.db.Exec(ctx, query,
		e.ActorEmail, e.ActorName, e.ActionType,
		e.ResourceType, e.ResourceID, e.Details, e.Status,
	)
	if err != nil {
		return fmt.Errorf("failed to record audit entry: %w", err)
	}
	return nil
}

// List retrieves audit entries matching the filters, newest first.
func (r *AuditRepository) List(ctx context.Context, filters audit.ListFilters) ([]audit.Log, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.ActorEmail != "" {
		conditions = append(conditions, fmt.Sprintf("actor_email = $%d", argPos))
		args = append(args, filters.ActorEmail)
		argPos++
	}

	if len(filters.ActionTypes) > 0 {
		conditions = append(conditions, fmt.Sprintf("action_type = ANY($%d)", argPos))
		args = append(args, pq.Array(filters.ActionTypes))
		argPos++
	}

	if filters.ResourceType != "" {
		conditions = append(conditions, fmt.Sprintf("resource_type = $%d", argPos))
		args = append(args, filters.ResourceType)
		argPos++
	}

	if filters.StartDate != nil {
		conditions = append(conditions, fmt.Sprintf("timestamp >= $%d", argPos))
		args = append(args, *filters.StartDate)
		argPos++
	}

	if filters.EndDate != nil {
		conditions = append(conditions, fmt.Sprintf("timestamp < $%d", argPos))
		args = append(args, *filters.EndDate)
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM audit_logs WHERE %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count audit entries: %w", err)
	}

	limit := filters.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	query := fmt.Sprintf(`
		SELECT id, actor_email, actor_name, action_type, resource_type,
		       resource_id, details, timestamp, status
		FROM audit_logs
		WHERE %s
		ORDER BY timestamp DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, limit, filters.Offset)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list audit entries: %w", err)
	}
	defer rows.Close()

	var logs []audit.Log
	for rows.Next() {
		var l audit.Log
		if err := rows.Scan(
			&l.ID, &l.ActorEmail, &l.ActorName, &l.ActionType, &l.ResourceType,
			&l.ResourceID, &l.Details, &l.Timestamp, &l.Status,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan audit entry: %w", err)
		}
		logs = append(logs, l)
	}

	return logs, total, rows.Err()
}

// PurgeOlderThan removes audit entries past the retention window.
func (r *AuditRepository) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	tag, err := r.db.Exec(ctx,
		`DELETE FROM audit_logs WHERE timestamp < NOW() - ($1 || ' days')::interval`, days)
	if err != nil {
		return 0, fmt.Errorf("failed to purge audit entries: %w", err)
	}
	return tag.RowsAffected(), nil
}

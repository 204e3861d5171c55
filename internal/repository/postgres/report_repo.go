// internal/repository/postgres/report_repo.go
package postgres

import (
	"context"
	"fmt"
	"strings"

	"fixit-service/internal/domain/report"
	xerrors "fixit-service/internal/pkg/errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/lib/pq"
)

type ReportRepository struct {
	db *pgxpool.Pool
}

func NewReportRepository(db *pgxpool.Pool) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a new report and returns it with generated fields.
func (r *ReportRepository) Create(ctx context.Context, rep *report.Report) (*report.Report, error) {
	query := `
		INSERT INTO reports (user_email, user_name, user_type, issue_description, location, category, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at
	`

	err := r.db.QueryRow(ctx, query,
		rep.UserEmail, rep.UserName, rep.UserType,
		rep.Description, rep.Location, rep.Category, rep.Status,
	).Scan(&rep.ID, &rep.CreatedAt, &rep.UpdatedAt)

	if err != nil {
		return nil, fmt.Errorf("failed to create report: %w", err)
	}

	return rep, nil
}

// FindByID retrieves a single report by ID.
func (r *ReportRepository) FindByID(ctx context.Context, id int64) (*report.Report, error) {
	query := `
		SELECT id, user_email, user_name, user_type, issue_description,
		       location, category, status, created_at, updated_at
		FROM reports
		WHERE id = $1
	`

	var rep report.Report
	err := r.db.QueryRow(ctx, query, id).Scan(
		&rep.ID, &rep.UserEmail, &rep.UserName, &rep.UserType, &rep.Description,
		&rep.Location, &rep.Category, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find report: %w", err)
	}

	return &rep, nil
}

// List retrieves reports matching the filters, newest first.
func (r *ReportRepository) List(ctx context.Context, filters report.ListFilters) ([]report.Report, int64, error) {
	conditions := []string{"1=1"}
	args := []interface{}{}
	argPos := 1

	if filters.UserEmail != "" {
		conditions = append(conditions, fmt.Sprintf("user_email = $%d", argPos))
		args = append(args, filters.UserEmail)
		argPos++
	}

	if len(filters.Statuses) > 0 {
		conditions = append(conditions, fmt.Sprintf("status = ANY($%d)", argPos))
		args = append(args, pq.Array(filters.Statuses))
		argPos++
	}

	if filters.Category != "" {
		conditions = append(conditions, fmt.Sprintf("category = $%d", argPos))
		args = append(args, filters.Category)
		argPos++
	}

	if filters.Search != "" {
		conditions = append(conditions, fmt.Sprintf("(issue_description ILIKE $%d OR location ILIKE $%d)", argPos, argPos))
		args = append(args, "%"+filters.Search+"%")
		argPos++
	}

	whereClause := strings.Join(conditions, " AND ")

	// Count total
	var total int64
	countQuery := fmt.Sprintf("SELECT COUNT(*) FROM reports WHERE %s", whereClause)
	if err := r.db.QueryRow(ctx, countQuery, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("failed to count reports: %w", err)
	}

	pageSize := filters.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}

	query := fmt.Sprintf(`
		SELECT id, user_email, user_name, user_type, issue_description,
		       location, category, status, created_at, updated_at
		FROM reports
		WHERE %s
		ORDER BY created_at DESC
		LIMIT $%d OFFSET $%d
	`, whereClause, argPos, argPos+1)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.db.Query(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list reports: %w", err)
	}
	defer rows.Close()

	var reports []report.Report
	for rows.Next() {
		var rep report.Report
		if err := rows.Scan(
			&rep.ID, &rep.UserEmail, &rep.UserName, &rep.UserType, &rep.Description,
			&rep.Location, &rep.Category, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt,
		); err != nil {
			return nil, 0, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, rep)
	}

	return reports, total, rows.Err()
}

// Update replaces the mutable fields of a report.
func (r *ReportRepository) Update(ctx context.Context, id int64, description, location, category string) (*report.Report, error) {
	query := `
		UPDATE reports
		SET issue_description = $2, location = $3, category = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_email, user_name, user_type, issue_description,
		          location, category, status, created_at, updated_at
	`

	var rep report.Report
	err := r.db.QueryRow(ctx, query, id, description, location, category).Scan(
		&rep.ID, &rep.UserEmail, &rep.UserName, &rep.UserType, &rep.Description,
		&rep.Location, &rep.Category, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update report: %w", err)
	}

	return &rep, nil
}

// UpdateStatus sets a report's status.
func (r *ReportRepository) UpdateStatus(ctx context.Context, id int64, status report.Status) (*report.Report, error) {
	query := `
		UPDATE reports
		SET status = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING id, user_email, user_name, user_type, issue_description,
		          location, category, status, created_at, updated_at
	`

	var rep report.Report
	err := r.db.QueryRow(ctx, query, id, status).Scan(
		&rep.ID, &rep.UserEmail, &rep.UserName, &rep.UserType, &rep.Description,
		&rep.Location, &rep.Category, &rep.Status, &rep.CreatedAt, &rep.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, xerrors.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update report status: %w", err)
	}

	return &rep, nil
}

// Delete removes a report.
func (r *ReportRepository) Delete(ctx context.Context, id int64) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM reports WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete report: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return xerrors.ErrNotFound
	}
	return nil
}

// Stats aggregates report counts by status and category.
func (r *ReportRepository) Stats(ctx context.Context) (*report.Stats, error) {
	stats := &report.Stats{
		ByStatus:   map[string]int64{},
		ByCategory: map[string]int64{},
	}

	if err := r.db.QueryRow(ctx, `SELECT COUNT(*) FROM reports`).Scan(&stats.Total); err != nil {
		return nil, fmt.Errorf("failed to count reports: %w", err)
	}

	rows, err := r.db.Query(ctx, `SELECT status, COUNT(*) FROM reports GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate statuses: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var status string
		var count int64
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("failed to scan status count: %w", err)
		}
		stats.ByStatus[status] = count
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	catRows, err := r.db.Query(ctx, `SELECT category, COUNT(*) FROM reports GROUP BY category`)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate categories: %w", err)
	}
	defer catRows.Close()
	for catRows.Next() {
		var category string
		var count int64
		if err := catRows.Scan(&category, &count); err != nil {
			return nil, fmt.Errorf("failed to scan category count: %w", err)
		}
		stats.ByCategory[category] = count
	}

	return stats, catRows.Err()
}

// internal/service/audit/audit.go
package audit

import (
	"context"

	"fixit-service/internal/domain/audit"

	"go.uber.org/zap"
)

// Store is the persistence surface the service needs.
type Store interface {
	Record(ctx context.Context, e audit.Entry) error
	List(ctx context.Context, filters audit.ListFilters) ([]audit.Log, int64, error)
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
}

type AuditService struct {
	repo   Store
	logger *zap.Logger
}

func NewAuditService(repo Store, logger *zap.Logger) *AuditService {
	return &AuditService{repo: repo, logger: logger}
}

// Record appends an entry to the trail.
func (s *AuditService) Record(ctx context.Context, e audit.Entry) error {
	return s.repo.Record(ctx, e)
}

// List retrieves the trail for the admin dashboard.
func (s *AuditService) List(ctx context.Context, filters audit.ListFilters) (*audit.ListResponse, error) {
	logs, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	limit := filters.Limit
	if limit <= 0 || limit > 500 {
		limit = 100
	}

	return &audit.ListResponse{
		Logs:   logs,
		Total:  total,
		Limit:  limit,
		Offset: filters.Offset,
	}, nil
}

// Purge drops entries older than the retention window.
func (s *AuditService) Purge(ctx context.Context, days int) (int64, error) {
	removed, err := s.repo.PurgeOlderThan(ctx, days)
	if err != nil {
		return 0, err
	}
	if removed > 0 {
		s.logger.Info("purged audit entries", zap.Int64("removed", removed), zap.Int("days", days))
	}
	return removed, nil
}

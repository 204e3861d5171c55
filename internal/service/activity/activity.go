// internal/service/activity/activity.go
package activity

import (
	"context"

	"fixit-service/internal/domain/activity"

	"go.uber.org/zap"
)

// Store is the persistence surface the service needs.
type Store interface {
	RecordEvent(ctx context.Context, e *activity.Event) error
	RecordFailedAttempt(ctx context.Context, a *activity.FailedAttempt) error
	History(ctx context.Context, userEmail string, limit int) ([]activity.Event, error)
	LoginStats(ctx context.Context, userEmail string) (*activity.LoginStats, error)
	AllLoginStats(ctx context.Context) ([]activity.LoginStats, error)
	FailedAttempts(ctx context.Context, email string, limit int) ([]activity.FailedAttempt, error)
}

type ActivityService struct {
	repo   Store
	logger *zap.Logger
}

func NewActivityService(repo Store, logger *zap.Logger) *ActivityService {
	return &ActivityService{repo: repo, logger: logger}
}

// History returns a user's recent activity.
func (s *ActivityService) History(ctx context.Context, userEmail string, limit int) ([]activity.Event, error) {
	return s.repo.History(ctx, userEmail, limit)
}

// LoginStats returns login aggregates for the admin security view.
func (s *ActivityService) LoginStats(ctx context.Context, userEmail string) (*activity.LoginStats, error) {
	return s.repo.LoginStats(ctx, userEmail)
}

// AllLoginStats returns login aggregates for every account.
func (s *ActivityService) AllLoginStats(ctx context.Context) ([]activity.LoginStats, error) {
	return s.repo.AllLoginStats(ctx)
}

// FailedAttempts returns recent rejected logins, optionally scoped to
// one email.
func (s *ActivityService) FailedAttempts(ctx context.Context, email string, limit int) ([]activity.FailedAttempt, error) {
	return s.repo.FailedAttempts(ctx, email, limit)
}

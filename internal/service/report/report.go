// internal/service/report/report.go
package report

import (
	"context"
	"fmt"

	"fixit-service/internal/domain/audit"
	"fixit-service/internal/domain/report"
	"fixit-service/internal/domain/user"
	wstypes "fixit-service/internal/domain/websocket"
	xerrors "fixit-service/internal/pkg/errors"

	"go.uber.org/zap"
)

// Store is the persistence surface the service needs.
type Store interface {
	Create(ctx context.Context, rep *report.Report) (*report.Report, error)
	FindByID(ctx context.Context, id int64) (*report.Report, error)
	List(ctx context.Context, filters report.ListFilters) ([]report.Report, int64, error)
	Update(ctx context.Context, id int64, description, location, category string) (*report.Report, error)
	UpdateStatus(ctx context.Context, id int64, status report.Status) (*report.Report, error)
	Delete(ctx context.Context, id int64) error
	Stats(ctx context.Context) (*report.Stats, error)
}

// Classifier assigns a category to an issue description.
type Classifier interface {
	Classify(text string) string
}

// Notifier pushes report events to connected clients.
type Notifier interface {
	NotifyReportStatusChanged(ownerEmail string, data wstypes.ReportStatusData)
}

// AuditStore records audit trail entries.
type AuditStore interface {
	Record(ctx context.Context, e audit.Entry) error
}

type ReportService struct {
	repo       Store
	classifier Classifier
	notifier   Notifier
	auditRepo  AuditStore
	logger     *zap.Logger
}

func NewReportService(repo Store, classifier Classifier, notifier Notifier, auditRepo AuditStore, logger *zap.Logger) *ReportService {
	return &ReportService{
		repo:       repo,
		classifier: classifier,
		notifier:   notifier,
		auditRepo:  auditRepo,
		logger:     logger,
	}
}

// Create files a new report. The category comes from the classifier,
// never from the client.
func (s *ReportService) Create(ctx context.Context, actor user.User, req *report.CreateReportRequest) (*report.Report, error) {
	category := s.classifier.Classify(req.Description)

	rep := &report.Report{
		UserEmail:   actor.Email,
		UserName:    actor.Name,
		UserType:    actor.Role,
		Description: req.Description,
		Location:    req.Location,
		Category:    category,
		Status:      report.StatusPending,
	}

	created, err := s.repo.Create(ctx, rep)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, audit.ActionReportCreate, created.ID,
		fmt.Sprintf("category=%s", category))

	s.logger.Info("report created",
		zap.Int64("id", created.ID),
		zap.String("category", category),
		zap.String("user", actor.Email))

	return created, nil
}

// Get fetches one report. Non-admin callers only see their own.
func (s *ReportService) Get(ctx context.Context, actor user.User, id int64) (*report.Report, error) {
	rep, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if actor.Role != "admin" && rep.UserEmail != actor.Email {
		return nil, xerrors.ErrForbidden
	}

	return rep, nil
}

// List retrieves reports. Non-admin callers are scoped to their own
// reports regardless of the filters they send.
func (s *ReportService) List(ctx context.Context, actor user.User, filters report.ListFilters) (*report.ListResponse, error) {
	if actor.Role != "admin" {
		filters.UserEmail = actor.Email
	}

	for _, st := range filters.Statuses {
		if !report.ValidStatus(report.Status(st)) {
			return nil, xerrors.ErrInvalidStatus
		}
	}

	reports, total, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, err
	}

	pageSize := filters.PageSize
	if pageSize <= 0 || pageSize > 200 {
		pageSize = 50
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}
	totalPages := int((total + int64(pageSize) - 1) / int64(pageSize))

	return &report.ListResponse{
		Reports:    reports,
		Total:      total,
		Page:       page,
		PageSize:   pageSize,
		TotalPages: totalPages,
	}, nil
}

// Update edits a report's description and location. The category is
// re-derived from the new description. Only the owner may edit, and
// only while the report is still pending.
func (s *ReportService) Update(ctx context.Context, actor user.User, id int64, req *report.UpdateReportRequest) (*report.Report, error) {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if existing.UserEmail != actor.Email {
		return nil, xerrors.ErrForbidden
	}
	if existing.Status != report.StatusPending {
		return nil, xerrors.Wrap(xerrors.ErrBadRequest, "only pending reports can be edited")
	}

	category := s.classifier.Classify(req.Description)

	updated, err := s.repo.Update(ctx, id, req.Description, req.Location, category)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, audit.ActionReportUpdate, id, "")
	return updated, nil
}

// UpdateStatus moves a report through the triage workflow. Admin only;
// the handler enforces the role, the service validates the status.
func (s *ReportService) UpdateStatus(ctx context.Context, actor user.User, id int64, status report.Status) (*report.Report, error) {
	if !report.ValidStatus(status) {
		return nil, xerrors.ErrInvalidStatus
	}

	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateStatus(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.recordAudit(ctx, actor, audit.ActionStatusChange, id,
		fmt.Sprintf("%s -> %s", existing.Status, status))

	if s.notifier != nil {
		s.notifier.NotifyReportStatusChanged(updated.UserEmail, wstypes.ReportStatusData{
			ReportID:  updated.ID,
			OldStatus: string(existing.Status),
			NewStatus: string(updated.Status),
			ChangedBy: actor.Email,
		})
	}

	return updated, nil
}

// Delete removes a report. Owners can delete their own pending
// reports; admins can delete anything.
func (s *ReportService) Delete(ctx context.Context, actor user.User, id int64) error {
	existing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if actor.Role != "admin" {
		if existing.UserEmail != actor.Email {
			return xerrors.ErrForbidden
		}
		if existing.Status != report.StatusPending {
			return xerrors.Wrap(xerrors.ErrBadRequest, "only pending reports can be deleted")
		}
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.recordAudit(ctx, actor, audit.ActionReportDelete, id, "")
	return nil
}

// Stats aggregates counts for the admin dashboard.
func (s *ReportService) Stats(ctx context.Context) (*report.Stats, error) {
	return s.repo.Stats(ctx)
}

func (s *ReportService) recordAudit(ctx context.Context, actor user.User, action string, reportID int64, details string) {
	err := s.auditRepo.Record(ctx, audit.Entry{
		ActorEmail:   actor.Email,
		ActorName:    actor.Name,
		ActionType:   action,
		ResourceType: "report",
		ResourceID:   reportID,
		Details:      details,
		Status:       audit.StatusSuccess,
	})
	if err != nil {
		s.logger.Warn("failed to record audit entry",
			zap.String("action", action), zap.Int64("report_id", reportID), zap.Error(err))
	}
}

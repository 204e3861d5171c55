package report

import (
	"context"
	"sync"
	"testing"
	"time"

	"fixit-service/internal/domain/audit"
	"fixit-service/internal/domain/report"
	"fixit-service/internal/domain/user"
	wstypes "fixit-service/internal/domain/websocket"
	"fixit-service/internal/pkg/classifier"
	xerrors "fixit-service/internal/pkg/errors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type memStore struct {
	mu      sync.Mutex
	nextID  int64
	reports map[int64]*report.Report
}

func newMemStore() *memStore {
	return &memStore{nextID: 1, reports: map[int64]*report.Report{}}
}

func (m *memStore) Create(_ context.Context, rep *report.Report) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep.ID = m.nextID
	m.nextID++
	rep.CreatedAt = time.Now()
	rep.UpdatedAt = rep.CreatedAt
	cp := *rep
	m.reports[rep.ID] = &cp
	return rep, nil
}

func (m *memStore) FindByID(_ context.Context, id int64) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.reports[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	cp := *rep
	return &cp, nil
}

func (m *memStore) List(_ context.Context, filters report.ListFilters) ([]report.Report, int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []report.Report
	for _, rep := range m.reports {
		if filters.UserEmail != "" && rep.UserEmail != filters.UserEmail {
			continue
		}
		out = append(out, *rep)
	}
	return out, int64(len(out)), nil
}

func (m *memStore) Update(_ context.Context, id int64, description, location, category string) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.reports[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	rep.Description = description
	rep.Location = location
	rep.Category = category
	rep.UpdatedAt = time.Now()
	cp := *rep
	return &cp, nil
}

func (m *memStore) UpdateStatus(_ context.Context, id int64, status report.Status) (*report.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rep, ok := m.reports[id]
	if !ok {
		return nil, xerrors.ErrNotFound
	}
	rep.Status = status
	rep.UpdatedAt = time.Now()
	cp := *rep
	return &cp, nil
}

func (m *memStore) Delete(_ context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.reports[id]; !ok {
		return xerrors.ErrNotFound
	}
	delete(m.reports, id)
	return nil
}

func (m *memStore) Stats(_ context.Context) (*report.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	stats := &report.Stats{
		ByStatus:   map[string]int64{},
		ByCategory: map[string]int64{},
	}
	for _, rep := range m.reports {
		stats.Total++
		stats.ByStatus[string(rep.Status)]++
		stats.ByCategory[rep.Category]++
	}
	return stats, nil
}

type fakeNotifier struct {
	mu     sync.Mutex
	owners []string
	events []wstypes.ReportStatusData
}

func (f *fakeNotifier) NotifyReportStatusChanged(ownerEmail string, data wstypes.ReportStatusData) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.owners = append(f.owners, ownerEmail)
	f.events = append(f.events, data)
}

type fakeAuditStore struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func (f *fakeAuditStore) Record(_ context.Context, e audit.Entry) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries = append(f.entries, e)
	return nil
}

var (
	student = user.User{Email: "jane@campus.edu", Name: "Jane", Role: "student"}
	other   = user.User{Email: "bob@campus.edu", Name: "Bob", Role: "student"}
	admin   = user.User{Email: "admin@campus.edu", Name: "Admin", Role: "admin"}
)

func trainedClassifier() *classifier.Classifier {
	return classifier.Train([]classifier.Sample{
		{Text: "leaking tap in the bathroom", Label: "Plumbing"},
		{Text: "water pipe burst near the sink", Label: "Plumbing"},
		{Text: "broken socket sparks when used", Label: "Electrical"},
		{Text: "lights flickering in the lab", Label: "Electrical"},
	})
}

func newService(t *testing.T) (*ReportService, *memStore, *fakeNotifier, *fakeAuditStore) {
	t.Helper()
	store := newMemStore()
	notifier := &fakeNotifier{}
	auditStore := &fakeAuditStore{}
	svc := NewReportService(store, trainedClassifier(), notifier, auditStore, zaptest.NewLogger(t))
	return svc, store, notifier, auditStore
}

func TestCreateClassifiesAndDefaultsToPending(t *testing.T) {
	svc, _, _, auditStore := newService(t)

	created, err := svc.Create(context.Background(), student, &report.CreateReportRequest{
		Description: "there is a leaking tap in the dorm bathroom",
		Location:    "Dorm B",
	})
	require.NoError(t, err)

	assert.Equal(t, "Plumbing", created.Category)
	assert.Equal(t, report.StatusPending, created.Status)
	assert.Equal(t, student.Email, created.UserEmail)
	require.Len(t, auditStore.entries, 1)
	assert.Equal(t, audit.ActionReportCreate, auditStore.entries[0].ActionType)
}

func TestCreateGibberishFallsBack(t *testing.T) {
	svc, _, _, _ := newService(t)

	created, err := svc.Create(context.Background(), student, &report.CreateReportRequest{
		Description: "qqqq zzzz xxxx",
		Location:    "Dorm B",
	})
	require.NoError(t, err)
	assert.Equal(t, classifier.Uncategorized, created.Category)
}

func TestGetEnforcesOwnership(t *testing.T) {
	svc, _, _, _ := newService(t)

	created, err := svc.Create(context.Background(), student, &report.CreateReportRequest{
		Description: "lights flickering in the lab",
		Location:    "Science Block",
	})
	require.NoError(t, err)

	_, err = svc.Get(context.Background(), other, created.ID)
	require.ErrorIs(t, err, xerrors.ErrForbidden)

	got, err := svc.Get(context.Background(), admin, created.ID)
	require.NoError(t, err)
	assert.Equal(t, created.ID, got.ID)
}

func TestListScopesNonAdmins(t *testing.T) {
	svc, _, _, _ := newService(t)

	for _, u := range []user.User{student, other} {
		_, err := svc.Create(context.Background(), u, &report.CreateReportRequest{
			Description: "broken socket sparks when used",
			Location:    "Library",
		})
		require.NoError(t, err)
	}

	resp, err := svc.List(context.Background(), student, report.ListFilters{})
	require.NoError(t, err)
	require.Len(t, resp.Reports, 1)
	assert.Equal(t, student.Email, resp.Reports[0].UserEmail)

	resp, err = svc.List(context.Background(), admin, report.ListFilters{})
	require.NoError(t, err)
	assert.Len(t, resp.Reports, 2)
}

func TestListRejectsUnknownStatus(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.List(context.Background(), admin, report.ListFilters{
		Statuses: []string{"Bogus"},
	})
	require.ErrorIs(t, err, xerrors.ErrInvalidStatus)
}

func TestUpdateReclassifiesAndGuards(t *testing.T) {
	svc, store, _, _ := newService(t)

	created, err := svc.Create(context.Background(), student, &report.CreateReportRequest{
		Description: "leaking tap in the bathroom",
		Location:    "Dorm B",
	})
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), other, created.ID, &report.UpdateReportRequest{
		Description: "lights flickering in the lab",
		Location:    "Dorm B",
	})
	require.ErrorIs(t, err, xerrors.ErrForbidden)

	updated, err := svc.Update(context.Background(), student, created.ID, &report.UpdateReportRequest{
		Description: "lights flickering in the lab",
		Location:    "Dorm B",
	})
	require.NoError(t, err)
	assert.Equal(t, "Electrical", updated.Category)

	// Once triage starts, edits are locked out.
	_, err = store.UpdateStatus(context.Background(), created.ID, report.StatusInProgress)
	require.NoError(t, err)

	_, err = svc.Update(context.Background(), student, created.ID, &report.UpdateReportRequest{
		Description: "leaking tap in the bathroom",
		Location:    "Dorm B",
	})
	require.Error(t, err)
}

func TestUpdateStatusNotifiesOwner(t *testing.T) {
	svc, _, notifier, _ := newService(t)

	created, err := svc.Create(context.Background(), student, &report.CreateReportRequest{
		Description: "water pipe burst near the sink",
		Location:    "Cafeteria",
	})
	require.NoError(t, err)

	_, err = svc.UpdateStatus(context.Background(), admin, created.ID, report.Status("Bogus"))
	require.ErrorIs(t, err, xerrors.ErrInvalidStatus)

	updated, err := svc.UpdateStatus(context.Background(), admin, created.ID, report.StatusInProgress)
	require.NoError(t, err)
	assert.Equal(t, report.StatusInProgress, updated.Status)

	require.Len(t, notifier.events, 1)
	assert.Equal(t, student.Email, notifier.owners[0])
	assert.Equal(t, string(report.StatusPending), notifier.events[0].OldStatus)
	assert.Equal(t, string(report.StatusInProgress), notifier.events[0].NewStatus)
	assert.Equal(t, admin.Email, notifier.events[0].ChangedBy)
}

func TestDeleteRules(t *testing.T) {
	svc, store, _, _ := newService(t)

	created, err := svc.Create(context.Background(), student, &report.CreateReportRequest{
		Description: "leaking tap in the bathroom",
		Location:    "Dorm B",
	})
	require.NoError(t, err)

	require.ErrorIs(t, svc.Delete(context.Background(), other, created.ID), xerrors.ErrForbidden)

	_, err = store.UpdateStatus(context.Background(), created.ID, report.StatusResolved)
	require.NoError(t, err)

	// Owner cannot delete once resolved, admin can.
	require.Error(t, svc.Delete(context.Background(), student, created.ID))
	require.NoError(t, svc.Delete(context.Background(), admin, created.ID))

	_, err = svc.Get(context.Background(), admin, created.ID)
	require.ErrorIs(t, err, xerrors.ErrNotFound)
}

func TestStats(t *testing.T) {
	svc, _, _, _ := newService(t)

	_, err := svc.Create(context.Background(), student, &report.CreateReportRequest{
		Description: "leaking tap in the bathroom",
		Location:    "Dorm B",
	})
	require.NoError(t, err)

	stats, err := svc.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, int64(1), stats.Total)
	assert.Equal(t, int64(1), stats.ByStatus[string(report.StatusPending)])
	assert.Equal(t, int64(1), stats.ByCategory["Plumbing"])
}

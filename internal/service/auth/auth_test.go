package auth

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"fixit-service/internal/domain/activity"
	"fixit-service/internal/domain/audit"
	"fixit-service/internal/domain/user"
	xerrors "fixit-service/internal/pkg/errors"
	"fixit-service/internal/pkg/jwt"
	"fixit-service/internal/pkg/session"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

type fakeActivityStore struct {
	mu       sync.Mutex
	events   []activity.Event
	failures []activity.FailedAttempt
}

func (f *fakeActivityStore) RecordEvent(_ context.Context, e *activity.Event) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.events = append(f.events, *e)
	return nil
}

func (f *fakeActivityStore) RecordFailedAttempt(_ context.Context, a *activity.FailedAttempt) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures = append(f.failures, *a)
	return nil
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

func (f *fakeAuditStore) actions() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.entries))
	for i, e := range f.entries {
		out[i] = e.ActionType
	}
	return out
}

type testEnv struct {
	svc      *AuthService
	registry *session.Registry
	activity *fakeActivityStore
	audit    *fakeAuditStore
	verifier *jwt.Verifier
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })

	priv, pub, err := jwt.GenerateEphemeralKey()
	require.NoError(t, err)

	gen := jwt.NewGenerator(priv, "fixit-service", "fixit-users", "test-key", 2*time.Hour)
	ver := jwt.NewVerifier(pub, "fixit-service", "fixit-users")
	manager := &jwt.Manager{Generator: gen, Verifier: ver}

	registry := session.NewRegistry(zaptest.NewLogger(t))
	activityStore := &fakeActivityStore{}
	auditStore := &fakeAuditStore{}

	svc, err := NewAuthService(
		registry,
		session.NewRateLimiter(client),
		activityStore,
		auditStore,
		manager,
		Config{
			AdminEmail:         "admin@campus.edu",
			AdminPassword:      "correct horse battery",
			AdminName:          "Campus Admin",
			AllowedEmailDomain: "campus.edu",
		},
		zaptest.NewLogger(t),
	)
	require.NoError(t, err)

	return &testEnv{
		svc:      svc,
		registry: registry,
		activity: activityStore,
		audit:    auditStore,
		verifier: ver,
	}
}

func TestAdminLogin(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.AdminLogin(context.Background(), &user.AdminLoginRequest{
		Email:    "Admin@Campus.edu",
		Password: "correct horse battery",
	}, "10.0.0.1", "go-test")
	require.NoError(t, err)

	assert.Equal(t, "admin@campus.edu", resp.User.Email)
	assert.Equal(t, "admin", resp.User.Role)
	assert.InDelta(t, 30, resp.ExpiresInMinutes, 1)

	claims, err := env.verifier.Verify(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, "admin@campus.edu", claims.Email)
	assert.True(t, claims.IsAdmin())

	require.True(t, env.registry.Validate("admin@campus.edu"))
	assert.Contains(t, env.audit.actions(), audit.ActionLogin)
}

func TestAdminLoginWrongPassword(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.AdminLogin(context.Background(), &user.AdminLoginRequest{
		Email:    "admin@campus.edu",
		Password: "nope",
	}, "10.0.0.1", "go-test")
	require.ErrorIs(t, err, xerrors.ErrInvalidCredentials)

	assert.Len(t, env.activity.failures, 1)
	assert.Equal(t, "bad credentials", env.activity.failures[0].Reason)
	assert.False(t, env.registry.Validate("admin@campus.edu"))
}

func TestAdminLoginRateLimited(t *testing.T) {
	env := newTestEnv(t)

	req := &user.AdminLoginRequest{Email: "admin@campus.edu", Password: "nope"}
	for i := 0; i < 5; i++ {
		_, err := env.svc.AdminLogin(context.Background(), req, "10.0.0.1", "go-test")
		require.ErrorIs(t, err, xerrors.ErrInvalidCredentials, "attempt %d", i)
	}

	_, err := env.svc.AdminLogin(context.Background(), req, "10.0.0.1", "go-test")
	require.ErrorIs(t, err, xerrors.ErrRateLimited)

	// A different IP gets its own budget.
	_, err = env.svc.AdminLogin(context.Background(), req, "10.0.0.2", "go-test")
	require.ErrorIs(t, err, xerrors.ErrInvalidCredentials)
}

func TestGoogleLoginDomainCheck(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GoogleLogin(context.Background(), &user.GoogleLoginRequest{
		Email: "intruder@elsewhere.com",
		Name:  "Intruder",
	}, "10.0.0.1", "go-test")
	require.ErrorIs(t, err, xerrors.ErrEmailDomain)

	resp, err := env.svc.GoogleLogin(context.Background(), &user.GoogleLoginRequest{
		Email: "jane@campus.edu",
		Name:  "Jane",
	}, "10.0.0.1", "go-test")
	require.NoError(t, err)
	assert.Equal(t, "student", resp.User.Role)
	assert.InDelta(t, 60, resp.ExpiresInMinutes, 1)
}

func TestGoogleLoginNeverGrantsAdmin(t *testing.T) {
	env := newTestEnv(t)

	resp, err := env.svc.GoogleLogin(context.Background(), &user.GoogleLoginRequest{
		Email: "sneaky@campus.edu",
		Name:  "Sneaky",
		Role:  "admin",
	}, "10.0.0.1", "go-test")
	require.NoError(t, err)
	assert.Equal(t, "student", resp.User.Role)

	resp, err = env.svc.GoogleLogin(context.Background(), &user.GoogleLoginRequest{
		Email: "prof@campus.edu",
		Name:  "Prof",
		Role:  "faculty",
	}, "10.0.0.1", "go-test")
	require.NoError(t, err)
	assert.Equal(t, "faculty", resp.User.Role)
}

func TestLogoutInvalidatesSession(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.GoogleLogin(context.Background(), &user.GoogleLoginRequest{
		Email: "jane@campus.edu",
		Name:  "Jane",
	}, "10.0.0.1", "go-test")
	require.NoError(t, err)

	env.svc.Logout(context.Background(), "jane@campus.edu", "Jane", "10.0.0.1", "go-test")

	assert.False(t, env.registry.Validate("jane@campus.edu"))
	assert.Contains(t, env.audit.actions(), audit.ActionLogout)
}

func TestSessionOperations(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.svc.SessionStats("nobody@campus.edu")
	require.ErrorIs(t, err, xerrors.ErrSessionExpired)

	_, err = env.svc.ExtendSession("nobody@campus.edu")
	require.ErrorIs(t, err, xerrors.ErrSessionExpired)

	assert.False(t, env.svc.Heartbeat("nobody@campus.edu"))

	_, err = env.svc.GoogleLogin(context.Background(), &user.GoogleLoginRequest{
		Email: "jane@campus.edu",
		Name:  "Jane",
	}, "10.0.0.1", "go-test")
	require.NoError(t, err)

	stats, err := env.svc.SessionStats("jane@campus.edu")
	require.NoError(t, err)
	assert.True(t, stats.IsActive)

	stats, err = env.svc.ExtendSession("jane@campus.edu")
	require.NoError(t, err)
	assert.InDelta(t, 60, stats.TimeRemainingMinutes, 1)

	assert.True(t, env.svc.Heartbeat("jane@campus.edu"))

	sessions := env.svc.ActiveSessions()
	require.Len(t, sessions, 1)
	_, ok := sessions["jane@campus.edu"]
	assert.True(t, ok)
}

func TestCleanupSessions(t *testing.T) {
	env := newTestEnv(t)

	for i := 0; i < 3; i++ {
		_, err := env.svc.GoogleLogin(context.Background(), &user.GoogleLoginRequest{
			Email: fmt.Sprintf("user%d@campus.edu", i),
			Name:  "User",
		}, "10.0.0.1", "go-test")
		require.NoError(t, err)
	}

	sess := env.registry.Get("user0@campus.edu")
	require.NotNil(t, sess)
	sess.ExpiresAt = time.Now().Add(-time.Minute)

	assert.Equal(t, 1, env.svc.CleanupSessions())
	assert.Len(t, env.svc.ActiveSessions(), 2)
}

func TestRecordSessionExpiry(t *testing.T) {
	env := newTestEnv(t)

	env.svc.RecordSessionExpiry("jane@campus.edu", session.ReasonInactivity)

	actions := env.audit.actions()
	require.Contains(t, actions, audit.ActionSessionExpired)
}

type fakeNotifier struct {
	kicked []string
}

func (f *fakeNotifier) NotifyForceLogout(email, reason string) {
	f.kicked = append(f.kicked, email)
}

func TestLoginKicksSupersededSession(t *testing.T) {
	env := newTestEnv(t)
	notifier := &fakeNotifier{}
	env.svc.SetNotifier(notifier)

	ctx := context.Background()
	req := &user.GoogleLoginRequest{Email: "jane@campus.edu", Name: "Jane"}

	_, err := env.svc.GoogleLogin(ctx, req, "10.0.0.1", "laptop")
	require.NoError(t, err)
	assert.Empty(t, notifier.kicked)

	// Second sign-in replaces the first session and kicks its clients.
	_, err = env.svc.GoogleLogin(ctx, req, "10.0.0.2", "phone")
	require.NoError(t, err)
	assert.Equal(t, []string{"jane@campus.edu"}, notifier.kicked)

	// A sign-in after logout has nothing live to kick.
	env.svc.Logout(ctx, "jane@campus.edu", "Jane", "10.0.0.2", "phone")
	_, err = env.svc.GoogleLogin(ctx, req, "10.0.0.2", "phone")
	require.NoError(t, err)
	assert.Len(t, notifier.kicked, 1)
}

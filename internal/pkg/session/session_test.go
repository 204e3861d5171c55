package session

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyInactivityLongerThanAbsolute(t *testing.T) {
	for _, role := range []string{RoleAdmin, RoleStudent, RoleFaculty} {
		p := PolicyFor(role)
		assert.Greater(t, p.Inactivity, p.Absolute, "role %s", role)
	}
}

func TestPolicyTable(t *testing.T) {
	admin := PolicyFor(RoleAdmin)
	assert.Equal(t, 30*time.Minute, admin.Absolute)
	assert.Equal(t, 45*time.Minute, admin.Inactivity)

	for _, role := range []string{RoleStudent, RoleFaculty, "unknown"} {
		p := PolicyFor(role)
		assert.Equal(t, 60*time.Minute, p.Absolute, "role %s", role)
		assert.Equal(t, 90*time.Minute, p.Inactivity, "role %s", role)
	}
}

func TestNewSession(t *testing.T) {
	s := New("test@example.com", "Test User", RoleStudent)

	assert.Equal(t, "test@example.com", s.UserEmail)
	assert.Equal(t, "Test User", s.UserName)
	assert.Equal(t, RoleStudent, s.Role)
	assert.True(t, s.IsActive())
	assert.False(t, s.IsExpired())
	assert.False(t, s.IsInactive())
	assert.True(t, s.ExpiresAt.After(time.Now()))
}

func TestNewSessionExpiryFromPolicy(t *testing.T) {
	student := New("s@example.com", "Student", RoleStudent)
	assert.WithinDuration(t, student.CreatedAt.Add(60*time.Minute), student.ExpiresAt, time.Second)

	admin := New("a@example.com", "Admin", RoleAdmin)
	assert.WithinDuration(t, admin.CreatedAt.Add(30*time.Minute), admin.ExpiresAt, time.Second)
}

func TestTouchDoesNotMoveDeadline(t *testing.T) {
	s := New("test@example.com", "Test User", RoleStudent)
	expiresAt := s.ExpiresAt
	before := s.LastActivity

	time.Sleep(10 * time.Millisecond)
	s.Touch()

	assert.True(t, !s.LastActivity.Before(before))
	assert.Equal(t, expiresAt, s.ExpiresAt)
}

func TestIsExpired(t *testing.T) {
	s := New("test@example.com", "Test User", RoleStudent)
	s.ExpiresAt = time.Now().Add(-time.Minute)
	assert.True(t, s.IsExpired())
}

func TestIsInactiveStrictThreshold(t *testing.T) {
	s := New("test@example.com", "Test User", RoleStudent)

	// Just under the 90 minute threshold: still within policy.
	s.LastActivity = time.Now().Add(-90*time.Minute + time.Second)
	assert.False(t, s.IsInactive())

	// Just over: inactive.
	s.LastActivity = time.Now().Add(-90*time.Minute - time.Second)
	assert.True(t, s.IsInactive())
}

func TestTimeRemaining(t *testing.T) {
	s := New("test@example.com", "Test User", RoleStudent)
	remaining := s.TimeRemaining()
	assert.True(t, remaining >= 59 && remaining <= 60, "got %d", remaining)

	s.ExpiresAt = time.Now().Add(-5 * time.Minute)
	assert.Equal(t, 0, s.TimeRemaining())
}

func TestInactivityMinutes(t *testing.T) {
	s := New("test@example.com", "Test User", RoleStudent)
	assert.Equal(t, 0, s.InactivityMinutes())

	s.LastActivity = time.Now().Add(-10*time.Minute - time.Second)
	assert.Equal(t, 10, s.InactivityMinutes())
}

func TestExtendResetsClocks(t *testing.T) {
	s := New("test@example.com", "Test User", RoleStudent)
	s.ExpiresAt = time.Now().Add(5 * time.Minute)
	s.LastActivity = time.Now().Add(-30 * time.Minute)
	s.Warned = true

	s.Extend()

	assert.WithinDuration(t, time.Now().Add(60*time.Minute), s.ExpiresAt, time.Second)
	assert.WithinDuration(t, time.Now(), s.LastActivity, time.Second)
	assert.False(t, s.Warned)
}

func TestDeactivateIdempotent(t *testing.T) {
	s := New("test@example.com", "Test User", RoleStudent)
	s.Deactivate()
	assert.False(t, s.IsActive())
	s.Deactivate()
	assert.False(t, s.IsActive())
}

func TestSnapshotCopiesState(t *testing.T) {
	s := New("test@example.com", "Test User", RoleFaculty)
	snap := s.Snapshot()

	require.Equal(t, s.UserEmail, snap.UserEmail)
	require.Equal(t, s.Role, snap.Role)
	assert.True(t, snap.Active)

	// Mutating the original does not alter an existing snapshot.
	s.Deactivate()
	assert.True(t, snap.Active)
}

// Absolute timeout is not resettable by activity alone: a student session
// touched every 10 minutes is still expired once 60 minutes have elapsed.
func TestActivityDoesNotResetAbsoluteTimeout(t *testing.T) {
	s := New("student@example.com", "Student", RoleStudent)

	// Simulate 61 minutes of age with recent activity.
	s.CreatedAt = time.Now().Add(-61 * time.Minute)
	s.ExpiresAt = s.CreatedAt.Add(60 * time.Minute)
	s.LastActivity = time.Now().Add(-time.Minute)

	assert.True(t, s.IsExpired())
	assert.False(t, s.IsInactive())
}

func TestWarnIfNearExpiry(t *testing.T) {
	s := New("student@example.com", "Student", RoleStudent)

	// Fresh session is nowhere near the deadline.
	_, fired := s.WarnIfNearExpiry(warningThreshold)
	assert.False(t, fired)

	s.ExpiresAt = time.Now().Add(4 * time.Minute)
	minutes, fired := s.WarnIfNearExpiry(warningThreshold)
	require.True(t, fired)
	assert.InDelta(t, 4, minutes, 1)

	// Only the first crossing fires.
	_, fired = s.WarnIfNearExpiry(warningThreshold)
	assert.False(t, fired)

	// An already-expired session is past warning.
	s.Warned = false
	s.ExpiresAt = time.Now().Add(-time.Minute)
	_, fired = s.WarnIfNearExpiry(warningThreshold)
	assert.False(t, fired)
}

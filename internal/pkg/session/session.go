// internal/pkg/session/session.go
package session

import (
	"sync"
	"time"
)

// Session tracks one authenticated user's login state and expiry clocks.
// Field mutation after construction goes through the methods below, which
// serialise access with a per-record lock.
type Session struct {
	mu sync.Mutex

	UserEmail string
	UserName  string
	Role      string

	CreatedAt    time.Time
	LastActivity time.Time
	ExpiresAt    time.Time

	Active bool
	Warned bool
}

// Snapshot is a read-only copy of a session, safe to hand to callers.
type Snapshot struct {
	UserEmail         string    `json:"user_email"`
	UserName          string    `json:"user_name"`
	Role              string    `json:"role"`
	CreatedAt         time.Time `json:"created_at"`
	LastActivity      time.Time `json:"last_activity"`
	ExpiresAt         time.Time `json:"expires_at"`
	Active            bool      `json:"is_active"`
	TimeRemaining     int       `json:"time_remaining"`
	InactivityMinutes int       `json:"inactivity_minutes"`
}

// New creates an active session for a user. The absolute deadline is
// derived from the role's policy.
func New(email, name, role string) *Session {
	now := time.Now()
	return &Session{
		UserEmail:    email,
		UserName:     name,
		Role:         role,
		CreatedAt:    now,
		LastActivity: now,
		ExpiresAt:    now.Add(PolicyFor(role).Absolute),
		Active:       true,
	}
}

// Touch records user activity. The absolute deadline is not affected.
func (s *Session) Touch() {
	s.mu.Lock()
	s.LastActivity = time.Now()
	s.mu.Unlock()
}

// IsExpired reports whether the absolute deadline has passed.
func (s *Session) IsExpired() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Now().After(s.ExpiresAt)
}

// IsInactive reports whether the time since the last activity strictly
// exceeds the role's inactivity timeout.
func (s *Session) IsInactive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return time.Since(s.LastActivity) > PolicyFor(s.Role).Inactivity
}

// TimeRemaining returns the whole minutes left before the absolute
// deadline, never negative.
func (s *Session) TimeRemaining() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	remaining := int(time.Until(s.ExpiresAt).Minutes())
	if remaining < 0 {
		return 0
	}
	return remaining
}

// InactivityMinutes returns the whole minutes since the last activity.
func (s *Session) InactivityMinutes() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return int(time.Since(s.LastActivity).Minutes())
}

// Extend grants the session a fresh absolute deadline and resets the
// activity clock. Any pending expiry warning is cleared.
func (s *Session) Extend() {
	s.mu.Lock()
	now := time.Now()
	s.ExpiresAt = now.Add(PolicyFor(s.Role).Absolute)
	s.LastActivity = now
	s.Warned = false
	s.mu.Unlock()
}

// Deactivate marks the session dead. One-way and idempotent.
func (s *Session) Deactivate() {
	s.mu.Lock()
	s.Active = false
	s.mu.Unlock()
}

// IsActive reports whether the session has not been deactivated.
func (s *Session) IsActive() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Active
}

// MarkWarned flags that the user was shown an expiry warning, so the UI
// does not warn twice for the same deadline.
func (s *Session) MarkWarned() {
	s.mu.Lock()
	s.Warned = true
	s.mu.Unlock()
}

// WarnIfNearExpiry marks the session warned when it is within d of its
// absolute deadline. Returns the whole minutes left and true the first
// time the threshold is crossed; false otherwise.
func (s *Session) WarnIfNearExpiry(d time.Duration) (int, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	remaining := time.Until(s.ExpiresAt)
	if s.Warned || remaining > d || remaining <= 0 {
		return 0, false
	}
	s.Warned = true
	return int(remaining.Minutes()), true
}

// Snapshot copies the session state for safe external use.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	snap := Snapshot{
		UserEmail:    s.UserEmail,
		UserName:     s.UserName,
		Role:         s.Role,
		CreatedAt:    s.CreatedAt,
		LastActivity: s.LastActivity,
		ExpiresAt:    s.ExpiresAt,
		Active:       s.Active,
	}
	s.mu.Unlock()

	snap.TimeRemaining = s.TimeRemaining()
	snap.InactivityMinutes = s.InactivityMinutes()
	return snap
}

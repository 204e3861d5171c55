// internal/pkg/session/registry.go
package session

import (
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// TimeoutFunc is invoked when the background sweep deactivates a session.
// Reason is ReasonTimeout or ReasonInactivity.
type TimeoutFunc func(userEmail, reason string)

// WarningFunc is invoked once per deadline when a session comes within
// warningThreshold of its absolute expiry.
type WarningFunc func(userEmail string, minutesLeft int)

// Stats describes the expiry state of one session for status displays.
type Stats struct {
	UserEmail            string    `json:"user_email"`
	UserName             string    `json:"user_name"`
	Role                 string    `json:"role"`
	CreatedAt            time.Time `json:"created_at"`
	LastActivity         time.Time `json:"last_activity"`
	ExpiresAt            time.Time `json:"expires_at"`
	TimeRemainingMinutes int       `json:"time_remaining_minutes"`
	InactivityMinutes    int       `json:"inactivity_minutes"`
	IsExpired            bool      `json:"is_expired"`
	IsInactive           bool      `json:"is_inactive"`
	IsActive             bool      `json:"is_active"`
	SessionAgeMinutes    int       `json:"session_duration_minutes"`
	ExpiryReason         string    `json:"expiry_reason,omitempty"`
}

// Registry is the single source of truth for "is this user logged in and
// within policy". At most one session per user email; all map mutation is
// serialised by one lock. Purely in-process: nothing survives a restart.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session

	cbMu      sync.Mutex
	callbacks []TimeoutFunc
	warnCbs   []WarningFunc

	monitorMu sync.Mutex
	stopCh    chan struct{}
	doneCh    chan struct{}

	logger *zap.Logger
}

func NewRegistry(logger *zap.Logger) *Registry {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Registry{
		sessions: make(map[string]*Session),
		logger:   logger,
	}
}

// Create installs a new session for the user. An existing session for the
// same email is deactivated (superseded), not removed, so at most one
// session per user is ever active.
func (r *Registry) Create(email, name, role string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if old, ok := r.sessions[email]; ok {
		old.Deactivate()
	}

	s := New(email, name, role)
	r.sessions[email] = s
	return s
}

// Get returns the stored session for a user, active or not, or nil.
func (r *Registry) Get(email string) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.sessions[email]
}

// Validate reports whether the user has a session that is active and
// within both expiry clocks. Read-only: a failing session is left for the
// sweep to deactivate.
func (r *Registry) Validate(email string) bool {
	s := r.Get(email)
	if s == nil {
		return false
	}
	if !s.IsActive() {
		return false
	}
	if s.IsExpired() {
		return false
	}
	if s.IsInactive() {
		return false
	}
	return true
}

// UpdateActivity records activity for the user's session. Returns false
// only when no session exists. A deactivated session is still touched;
// it stays dead regardless.
func (r *Registry) UpdateActivity(email string) bool {
	s := r.Get(email)
	if s == nil {
		return false
	}
	s.Touch()
	return true
}

// Invalidate deactivates the user's session (logout). Returns false when
// no session exists.
func (r *Registry) Invalidate(email string) bool {
	s := r.Get(email)
	if s == nil {
		return false
	}
	s.Deactivate()
	return true
}

// Extend grants the user's session a fresh absolute deadline. Only active
// sessions can be extended.
func (r *Registry) Extend(email string) bool {
	s := r.Get(email)
	if s == nil || !s.IsActive() {
		return false
	}
	s.Extend()
	return true
}

// OnTimeout registers a callback fired whenever the sweep deactivates a
// session. Callbacks run synchronously in registration order; a panic in
// one is recovered and logged so the rest still run.
func (r *Registry) OnTimeout(fn TimeoutFunc) {
	r.cbMu.Lock()
	r.callbacks = append(r.callbacks, fn)
	r.cbMu.Unlock()
}

// OnWarning registers a callback fired once per deadline when a session
// nears absolute expiry. Extend clears the flag, so an extended session
// can be warned again.
func (r *Registry) OnWarning(fn WarningFunc) {
	r.cbMu.Lock()
	r.warnCbs = append(r.warnCbs, fn)
	r.cbMu.Unlock()
}

// ActiveSessions returns a snapshot of every session still marked active.
func (r *Registry) ActiveSessions() map[string]Snapshot {
	r.mu.Lock()
	defer r.mu.Unlock()

	active := make(map[string]Snapshot)
	for email, s := range r.sessions {
		if s.IsActive() {
			active[email] = s.Snapshot()
		}
	}
	return active
}

// Stats returns the expiry state of the user's session, or nil when no
// session exists.
func (r *Registry) Stats(email string) *Stats {
	s := r.Get(email)
	if s == nil {
		return nil
	}

	snap := s.Snapshot()
	st := &Stats{
		UserEmail:            snap.UserEmail,
		UserName:             snap.UserName,
		Role:                 snap.Role,
		CreatedAt:            snap.CreatedAt,
		LastActivity:         snap.LastActivity,
		ExpiresAt:            snap.ExpiresAt,
		TimeRemainingMinutes: snap.TimeRemaining,
		InactivityMinutes:    snap.InactivityMinutes,
		IsExpired:            s.IsExpired(),
		IsInactive:           s.IsInactive(),
		IsActive:             snap.Active,
		SessionAgeMinutes:    int(time.Since(snap.CreatedAt).Minutes()),
	}
	st.ExpiryReason = expiryReason(s)
	return st
}

// expiryReason renders a human-readable reason, empty when the session is
// within policy. Absolute expiry wins over inactivity.
func expiryReason(s *Session) string {
	if s.IsExpired() {
		return "Maximum session time exceeded"
	}
	if s.IsInactive() {
		mins := int(PolicyFor(s.Role).Inactivity.Minutes())
		return fmt.Sprintf("Inactive for %d minutes", mins)
	}
	return ""
}

// Cleanup deletes every session that is expired or inactive, regardless
// of its active flag, and returns the number removed.
func (r *Registry) Cleanup() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	removed := 0
	for email, s := range r.sessions {
		if s.IsExpired() || s.IsInactive() {
			delete(r.sessions, email)
			removed++
		}
	}
	return removed
}

// StartMonitoring launches the background sweep. Safe to call while a
// monitor is already running.
func (r *Registry) StartMonitoring() {
	r.monitorMu.Lock()
	defer r.monitorMu.Unlock()

	if r.stopCh != nil {
		return
	}

	r.stopCh = make(chan struct{})
	r.doneCh = make(chan struct{})
	go r.monitor(r.stopCh, r.doneCh)

	r.logger.Info("session monitoring started",
		zap.Duration("interval", checkInterval))
}

// StopMonitoring signals the sweep goroutine to exit and waits for it,
// bounded so test teardown never hangs.
func (r *Registry) StopMonitoring() {
	r.monitorMu.Lock()
	defer r.monitorMu.Unlock()

	if r.stopCh == nil {
		return
	}
	close(r.stopCh)

	select {
	case <-r.doneCh:
	case <-time.After(stopJoinTimeout):
		r.logger.Warn("session monitor did not stop in time")
	}

	r.stopCh = nil
	r.doneCh = nil
}

func (r *Registry) monitor(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(checkInterval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			r.safeSweep()
		}
	}
}

// safeSweep isolates one sweep iteration so a fault cannot kill the
// monitor goroutine.
func (r *Registry) safeSweep() {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("session sweep panicked", zap.Any("panic", rec))
		}
	}()
	r.sweep()
}

// sweep deactivates sessions violating either clock and notifies
// listeners. The absolute timeout is checked first and wins when both
// clocks have fired. Already-dead sessions are skipped so each timeout is
// reported exactly once.
func (r *Registry) sweep() {
	r.mu.Lock()
	pairs := make(map[string]*Session, len(r.sessions))
	for email, s := range r.sessions {
		pairs[email] = s
	}
	r.mu.Unlock()

	for email, s := range pairs {
		if !s.IsActive() {
			continue
		}

		switch {
		case s.IsExpired():
			r.handleTimeout(email, s, ReasonTimeout)
		case s.IsInactive():
			r.handleTimeout(email, s, ReasonInactivity)
		default:
			if minutes, first := s.WarnIfNearExpiry(warningThreshold); first {
				r.handleWarning(email, minutes)
			}
		}
	}
}

func (r *Registry) handleWarning(email string, minutesLeft int) {
	r.logger.Info("session nearing expiry",
		zap.String("user_email", email),
		zap.Int("minutes_left", minutesLeft))

	r.cbMu.Lock()
	warnCbs := make([]WarningFunc, len(r.warnCbs))
	copy(warnCbs, r.warnCbs)
	r.cbMu.Unlock()

	for _, fn := range warnCbs {
		func() {
			defer func() {
				if rec := recover(); rec != nil {
					r.logger.Error("warning callback panicked",
						zap.String("user_email", email),
						zap.Any("panic", rec))
				}
			}()
			fn(email, minutesLeft)
		}()
	}
}

func (r *Registry) handleTimeout(email string, s *Session, reason string) {
	s.Deactivate()

	r.logger.Info("session timed out",
		zap.String("user_email", email),
		zap.String("reason", reason))

	r.cbMu.Lock()
	callbacks := make([]TimeoutFunc, len(r.callbacks))
	copy(callbacks, r.callbacks)
	r.cbMu.Unlock()

	for _, fn := range callbacks {
		r.fireCallback(fn, email, reason)
	}
}

// fireCallback runs one listener in its own fault boundary: a panicking
// listener must not stop the others or the sweep.
func (r *Registry) fireCallback(fn TimeoutFunc, email, reason string) {
	defer func() {
		if rec := recover(); rec != nil {
			r.logger.Error("timeout callback panicked",
				zap.String("user_email", email),
				zap.Any("panic", rec))
		}
	}()
	fn(email, reason)
}

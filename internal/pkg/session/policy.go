// internal/pkg/session/policy.go
package session

import "time"

// User roles recognised by the session layer.
const (
	RoleAdmin   = "admin"
	RoleStudent = "student"
	RoleFaculty = "faculty"
)

// Timeout reasons passed to timeout callbacks.
const (
	ReasonTimeout    = "timeout"
	ReasonInactivity = "inactivity"
)

const (
	// Absolute session lifetimes (from creation or last extension).
	adminSessionTimeout = 30 * time.Minute
	userSessionTimeout  = 60 * time.Minute

	// Inactivity timeouts. These MUST be longer than the absolute
	// timeouts: inactivity is a secondary safety net, not the primary clock.
	adminInactivityTimeout = 45 * time.Minute
	userInactivityTimeout  = 90 * time.Minute

	// How often the background monitor sweeps for expired sessions.
	checkInterval = 30 * time.Second

	// Sessions within this much of their absolute deadline get one
	// expiry warning pushed to the client.
	warningThreshold = 5 * time.Minute

	// How long StopMonitoring waits for the monitor goroutine to exit.
	stopJoinTimeout = 2 * time.Second
)

// Policy holds the pair of expiry clocks that apply to a role.
type Policy struct {
	Absolute   time.Duration
	Inactivity time.Duration
}

// PolicyFor returns the timeout policy for a role. Admins get a shorter
// leash; students and faculty share the default policy.
func PolicyFor(role string) Policy {
	if role == RoleAdmin {
		return Policy{Absolute: adminSessionTimeout, Inactivity: adminInactivityTimeout}
	}
	return Policy{Absolute: userSessionTimeout, Inactivity: userInactivityTimeout}
}

// internal/service/auth/auth.go
package auth

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"fixit-service/internal/domain/activity"
	"fixit-service/internal/domain/audit"
	"fixit-service/internal/domain/user"
	xerrors "fixit-service/internal/pkg/errors"
	"fixit-service/internal/pkg/jwt"
	"fixit-service/internal/pkg/session"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// ActivityStore records user activity events.
type ActivityStore interface {
	RecordEvent(ctx context.Context, e *activity.Event) error
	RecordFailedAttempt(ctx context.Context, a *activity.FailedAttempt) error
}

// AuditStore records audit trail entries.
type AuditStore interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Notifier pushes realtime session events to a user's connected clients.
type Notifier interface {
	NotifyForceLogout(email, reason string)
}

type Config struct {
	AdminEmail         string
	AdminPassword      string
	AdminName          string
	AllowedEmailDomain string
}

type AuthService struct {
	sessions     *session.Registry
	rateLimiter  *session.RateLimiter
	activityRepo ActivityStore
	auditRepo    AuditStore
	jwtManager   *jwt.Manager
	notifier     Notifier
	logger       *zap.Logger

	adminEmail    string
	adminName     string
	adminHash     []byte
	allowedDomain string
}

func NewAuthService(
	sessions *session.Registry,
	rateLimiter *session.RateLimiter,
	activityRepo ActivityStore,
	auditRepo AuditStore,
	jwtManager *jwt.Manager,
	cfg Config,
	logger *zap.Logger,
) (*AuthService, error) {
	if cfg.AdminPassword == "" {
		return nil, fmt.Errorf("admin password not configured")
	}

	// Hash once at startup so the plaintext never sits in the struct.
	hash, err := bcrypt.GenerateFromPassword([]byte(cfg.AdminPassword), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash admin password: %w", err)
	}

	return &AuthService{
		sessions:      sessions,
		rateLimiter:   rateLimiter,
		activityRepo:  activityRepo,
		auditRepo:     auditRepo,
		jwtManager:    jwtManager,
		logger:        logger,
		adminEmail:    strings.ToLower(cfg.AdminEmail),
		adminName:     cfg.AdminName,
		adminHash:     hash,
		allowedDomain: strings.ToLower(strings.TrimPrefix(cfg.AllowedEmailDomain, "@")),
	}, nil
}

// SetNotifier attaches the realtime push surface. Optional; without it
// a superseded login is only logged.
func (s *AuthService) SetNotifier(n Notifier) {
	s.notifier = n
}

// ========== Login ==========

// AdminLogin authenticates the configured admin account.
func (s *AuthService) AdminLogin(ctx context.Context, req *user.AdminLoginRequest, ip, device string) (*user.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	allowed, _, err := s.rateLimiter.CheckLoginAttempt(ctx, ip, email)
	if err != nil {
		s.logger.Warn("rate limiter unavailable, allowing attempt", zap.Error(err))
	} else if !allowed {
		s.recordFailedLogin(ctx, email, ip, "rate limited")
		return nil, xerrors.ErrRateLimited
	}

	if email != s.adminEmail ||
		bcrypt.CompareHashAndPassword(s.adminHash, []byte(req.Password)) != nil {
		s.recordFailedLogin(ctx, email, ip, "bad credentials")
		return nil, xerrors.ErrInvalidCredentials
	}

	if err := s.rateLimiter.ResetLoginAttempts(ctx, ip, email); err != nil {
		s.logger.Warn("failed to reset login attempts", zap.Error(err))
	}

	return s.establishSession(ctx, email, s.adminName, session.RoleAdmin, ip, device)
}

// GoogleLogin signs in a campus user vouched for by the Google
// workspace. The server re-checks the email domain and never trusts a
// client-supplied admin role.
func (s *AuthService) GoogleLogin(ctx context.Context, req *user.GoogleLoginRequest, ip, device string) (*user.LoginResponse, error) {
	email := strings.ToLower(strings.TrimSpace(req.Email))

	if s.allowedDomain != "" && !strings.HasSuffix(email, "@"+s.allowedDomain) {
		s.recordFailedLogin(ctx, email, ip, "email domain not allowed")
		return nil, xerrors.ErrEmailDomain
	}

	role := strings.ToLower(req.Role)
	if role != session.RoleFaculty {
		role = session.RoleStudent
	}

	return s.establishSession(ctx, email, req.Name, role, ip, device)
}

func (s *AuthService) establishSession(ctx context.Context, email, name, role, ip, device string) (*user.LoginResponse, error) {
	prev := s.sessions.Get(email)
	superseded := prev != nil && prev.IsActive()
	sess := s.sessions.Create(email, name, role)

	// A new sign-in replaces any session the user had elsewhere; kick
	// its live connections so stale tabs do not keep a dead token.
	if superseded && s.notifier != nil {
		s.notifier.NotifyForceLogout(email, "superseded")
	}

	token, _, err := s.jwtManager.Generator.Generate(email, name, role)
	if err != nil {
		s.sessions.Invalidate(email)
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	s.recordActivity(ctx, email, name, activity.TypeLogin, ip, device, "success")
	s.recordAudit(ctx, audit.Entry{
		ActorEmail: email,
		ActorName:  name,
		ActionType: audit.ActionLogin,
		Status:     audit.StatusSuccess,
	})

	s.logger.Info("user logged in",
		zap.String("email", email),
		zap.String("role", role))

	return &user.LoginResponse{
		Token:            token,
		User:             user.User{Email: email, Name: name, Role: role},
		ExpiresInMinutes: sess.TimeRemaining(),
	}, nil
}

// Logout invalidates the caller's session.
func (s *AuthService) Logout(ctx context.Context, email, name, ip, device string) {
	s.sessions.Invalidate(email)

	s.recordActivity(ctx, email, name, activity.TypeLogout, ip, device, "success")
	s.recordAudit(ctx, audit.Entry{
		ActorEmail: email,
		ActorName:  name,
		ActionType: audit.ActionLogout,
		Status:     audit.StatusSuccess,
	})
}

// ========== Session operations ==========

// SessionStats reports expiry countdown and inactivity for the
// caller's session.
func (s *AuthService) SessionStats(email string) (*session.Stats, error) {
	stats := s.sessions.Stats(email)
	if stats == nil {
		return nil, xerrors.ErrSessionExpired
	}
	return stats, nil
}

// ExtendSession restarts the absolute expiry clock.
func (s *AuthService) ExtendSession(email string) (*session.Stats, error) {
	if !s.sessions.Extend(email) {
		return nil, xerrors.ErrSessionExpired
	}
	return s.SessionStats(email)
}

// Heartbeat marks the session active.
func (s *AuthService) Heartbeat(email string) bool {
	return s.sessions.UpdateActivity(email)
}

// ActiveSessions lists all live sessions for the admin dashboard.
func (s *AuthService) ActiveSessions() map[string]session.Snapshot {
	return s.sessions.ActiveSessions()
}

// CleanupSessions removes every expired or inactive session.
func (s *AuthService) CleanupSessions() int {
	return s.sessions.Cleanup()
}

// RecordSessionExpiry is registered as a registry timeout callback so
// sweeper expiries land in the audit trail.
func (s *AuthService) RecordSessionExpiry(email, reason string) {
	s.recordAudit(context.Background(), audit.Entry{
		ActorEmail: email,
		ActionType: audit.ActionSessionExpired,
		Details:    reason,
		Status:     audit.StatusSuccess,
	})
}

// ========== Helpers ==========

func (s *AuthService) recordActivity(ctx context.Context, email, name, kind, ip, device, status string) {
	err := s.activityRepo.RecordEvent(ctx, &activity.Event{
		UserEmail:  email,
		UserName:   name,
		Type:       kind,
		IPAddress:  ip,
		DeviceInfo: device,
		Status:     status,
		Details:    sql.NullString{},
	})
	if err != nil {
		s.logger.Warn("failed to record activity", zap.String("email", email), zap.Error(err))
	}
}

func (s *AuthService) recordFailedLogin(ctx context.Context, email, ip, reason string) {
	err := s.activityRepo.RecordFailedAttempt(ctx, &activity.FailedAttempt{
		Email:     email,
		IPAddress: ip,
		Reason:    reason,
	})
	if err != nil {
		s.logger.Warn("failed to record failed login", zap.String("email", email), zap.Error(err))
	}

	s.recordAudit(ctx, audit.Entry{
		ActorEmail: email,
		ActionType: audit.ActionLogin,
		Details:    reason,
		Status:     audit.StatusFailed,
	})
}

func (s *AuthService) recordAudit(ctx context.Context, e audit.Entry) {
	if err := s.auditRepo.Record(ctx, e); err != nil {
		s.logger.Warn("failed to record audit entry",
			zap.String("action", e.ActionType), zap.Error(err))
	}
}

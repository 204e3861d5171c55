// internal/middleware/auth_middleware.go
package middleware

import (
	"errors"
	"net/http"
	"strings"

	"fixit-service/internal/pkg/jwt"
	"fixit-service/internal/pkg/response"
	"fixit-service/internal/pkg/session"

	"github.com/gin-gonic/gin"
)

type AuthMiddleware struct {
	verifier *jwt.Verifier
	sessions *session.Registry
}

func NewAuthMiddleware(verifier *jwt.Verifier, sessions *session.Registry) *AuthMiddleware {
	return &AuthMiddleware{
		verifier: verifier,
		sessions: sessions,
	}
}

// Auth validates the JWT token and checks that a live server-side
// session backs it. A valid token with a swept session is rejected,
// which is what forces re-login after a timeout. Each authenticated
// request counts as activity.
func (m *AuthMiddleware) Auth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractToken(c)
		if token == "" {
			response.Error(c, http.StatusUnauthorized, "missing authorization token", nil)
			return
		}

		claims, err := m.verifier.Verify(token)
		if err != nil {
			response.Error(c, http.StatusUnauthorized, "invalid or expired token", err)
			return
		}

		if !m.sessions.Validate(claims.Email) {
			response.Error(c, http.StatusUnauthorized, "session expired, please log in again", nil)
			return
		}

		m.sessions.UpdateActivity(claims.Email)

		// Set user context
		c.Set("user_email", claims.Email)
		c.Set("user_name", claims.Name)
		c.Set("user_role", claims.Role)
		c.Set("jti", claims.ID)

		c.Next()
	}
}

// RequireRole requires the user to have one of the specified roles.
// MUST be used after Auth() middleware.
func (m *AuthMiddleware) RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		userRole, exists := c.Get("user_role")
		if !exists {
			response.Error(c, http.StatusForbidden, "no role found - authentication required", nil)
			return
		}

		role, ok := userRole.(string)
		if !ok {
			response.Error(c, http.StatusInternalServerError, "invalid role format", nil)
			return
		}

		for _, required := range roles {
			if role == required {
				c.Next()
				return
			}
		}

		err := errors.New("user does not have required role")
		response.Error(c, http.StatusForbidden, "insufficient permissions", err, map[string]interface{}{
			"required_roles": roles,
			"user_role":      role,
		})
	}
}

// AdminOnly returns middlewares for admin-only routes (Auth + RequireRole).
func (m *AuthMiddleware) AdminOnly() []gin.HandlerFunc {
	return []gin.HandlerFunc{
		m.Auth(),
		m.RequireRole(session.RoleAdmin),
	}
}

// extractToken extracts Bearer token from Authorization header
func extractToken(c *gin.Context) string {
	// Try header first
	authHeader := c.GetHeader("Authorization")
	if authHeader != "" {
		parts := strings.Split(authHeader, " ")
		if len(parts) == 2 && strings.EqualFold(parts[0], "Bearer") {
			return parts[1]
		}
	}

	// Fallback to query param, needed for websocket upgrades
	return c.Query("token")
}

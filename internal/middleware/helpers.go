// internal/middleware/helpers.go
package middleware

import (
	"fixit-service/internal/domain/user"

	"github.com/gin-gonic/gin"
)

// CurrentUser reassembles the authenticated user from the request
// context. Returns false if the request did not pass Auth().
func CurrentUser(c *gin.Context) (user.User, bool) {
	email, ok := c.Get("user_email")
	if !ok {
		return user.User{}, false
	}

	emailStr, ok := email.(string)
	if !ok {
		return user.User{}, false
	}

	return user.User{
		Email: emailStr,
		Name:  c.GetString("user_name"),
		Role:  c.GetString("user_role"),
	}, true
}

// MustCurrentUser gets the authenticated user from context or panics.
func MustCurrentUser(c *gin.Context) user.User {
	u, ok := CurrentUser(c)
	if !ok {
		panic("user not found in context")
	}
	return u
}

// GetJTI gets the token ID from context.
func GetJTI(c *gin.Context) (string, bool) {
	jti, exists := c.Get("jti")
	if !exists {
		return "", false
	}

	jtiStr, ok := jti.(string)
	return jtiStr, ok
}

// IsAuthenticated checks if request is authenticated.
func IsAuthenticated(c *gin.Context) bool {
	_, exists := c.Get("user_email")
	return exists
}

// IsAdmin checks if user is an admin.
func IsAdmin(c *gin.Context) bool {
	return c.GetString("user_role") == "admin"
}

// ClientDevice returns the requester's user agent, trimmed for storage.
func ClientDevice(c *gin.Context) string {
	ua := c.Request.UserAgent()
	if len(ua) > 255 {
		ua = ua[:255]
	}
	return ua
}

// internal/domain/user/entity.go
package user

// User is the authenticated identity attached to a request. FIXIT does
// not keep a users table: students and faculty are vouched for by the
// campus Google workspace, the admin by configured credentials.
type User struct {
	Email string `json:"email"`
	Name  string `json:"name"`
	Role  string `json:"role"`
}

// DTOs

type AdminLoginRequest struct {
	Email    string `json:"email" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// GoogleLoginRequest carries the identity the client obtained from the
// Google OAuth flow. The server re-checks the workspace domain.
type GoogleLoginRequest struct {
	Email string `json:"email" binding:"required,email"`
	Name  string `json:"name" binding:"required"`
	Role  string `json:"role"`
}

type LoginResponse struct {
	Token            string `json:"token"`
	User             User   `json:"user"`
	ExpiresInMinutes int    `json:"expires_in_minutes"`
}

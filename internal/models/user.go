// ABOUTME: User identity and authentication request/response models
// ABOUTME: Mirrors the blog API's user resource and login/register contracts

package models

// Role names returned by the blog API
const (
	RoleSuperAdmin = "superadmin"
	RoleWriter     = "writer"
	RoleUser       = "user"
)

// User is an immutable snapshot of an account as returned by the API
type User struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	Role       string  `json:"role"`
	Avatar     *string `json:"avatar"`
	Bio        *string `json:"bio"`
	IsActive   *bool   `json:"is_active,omitempty"`
	PostsCount *int    `json:"posts_count,omitempty"`
	CreatedAt  string  `json:"created_at,omitempty"`
}

// IsPrivileged reports whether the role may moderate and manage posts.
// Advisory only; the server enforces the real check.
func (u *User) IsPrivileged() bool {
	if u == nil {
		return false
	}
	return u.Role == RoleWriter || u.Role == RoleSuperAdmin
}

// Credentials is the body of POST /login
type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Registration is the body of POST /register
type Registration struct {
	Name                 string `json:"name"`
	Email                string `json:"email"`
	Password             string `json:"password"`
	PasswordConfirmation string `json:"password_confirmation"`
}

// AuthResponse is the data payload of a successful login or registration
type AuthResponse struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	TokenType string `json:"token_type"`
}

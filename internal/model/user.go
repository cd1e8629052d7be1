package model

import "time"

// Role is the authorization level embedded in a session token
type Role string

const (
	RoleGuest    Role = "GUEST"
	RoleVerified Role = "VERIFIED"
	RoleAdmin    Role = "ADMIN"
)

// DefaultRole is assigned to every account created through signup
const DefaultRole = RoleGuest

// IsValid reports whether r is one of the known roles
func (r Role) IsValid() bool {
	switch r {
	case RoleGuest, RoleVerified, RoleAdmin:
		return true
	default:
		return false
	}
}

// User represents an account in the credential store
type User struct {
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"` // Never leaves the store
	Role         Role      `json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
}

// CredentialsRequest is the signup/signin payload
type CredentialsRequest struct {
	Email    string `json:"email" binding:"required,email,max=320"`
	Password string `json:"password" binding:"required,min=1,max=72"` // rune count; the service also enforces bcrypt's 72-byte limit
}

// SignupResponse is returned after a successful signup
type SignupResponse struct {
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"createdAt"`
}

// TokenResponse is returned after a successful signin
type TokenResponse struct {
	AccessToken string `json:"accessToken"`
}

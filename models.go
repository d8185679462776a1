package auth

import (
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Provider tags how an account authenticates
type Provider = string

const (
	// ProviderLocal accounts sign in with a password
	ProviderLocal Provider = "LOCAL"
	// ProviderGoogle accounts were created from a Google ID token
	ProviderGoogle Provider = "GOOGLE"
)

// User is the user model
type User struct {
	bun.BaseModel   `bun:"table:users,alias:usr"`
	ID              uuid.UUID  `bun:"id,pk,type:uuid" json:"id"`
	Name            string     `bun:"name,notnull" json:"name"`
	Email           string     `bun:"email,notnull,unique" json:"email"`
	Username        string     `bun:"username,notnull,unique" json:"username"`
	PasswordHash    string     `bun:"password_hash,nullzero" json:"-"`
	Role            UserRole   `bun:"role,notnull" json:"role"`
	Phone           string     `bun:"phone,nullzero" json:"phone,omitempty"`
	ProfileImage    string     `bun:"profile_image,nullzero" json:"profile_image,omitempty"`
	IsActive        bool       `bun:"is_active,notnull" json:"is_active"`
	IsEmailVerified bool       `bun:"is_email_verified,notnull" json:"is_email_verified"`
	Provider        Provider   `bun:"provider,notnull" json:"provider"`
	GoogleID        string     `bun:"google_id,nullzero" json:"google_id,omitempty"`
	LastLoginAt     *time.Time `bun:"last_login_at,nullzero" json:"last_login_at,omitempty"`
	CreatedAt       time.Time  `bun:"created_at,notnull" json:"created_at"`
	UpdatedAt       time.Time  `bun:"updated_at,notnull" json:"updated_at"`
}

// HasPassword reports whether the account carries a local credential
func (u *User) HasPassword() bool {
	return u != nil && u.PasswordHash != ""
}

// Sanitized returns a copy without the password credential
func (u *User) Sanitized() *User {
	if u == nil {
		return nil
	}
	out := *u
	out.PasswordHash = ""
	return &out
}

// Touch sets the timestamps for a write at t
func (u *User) Touch(t time.Time) *User {
	if u.CreatedAt.IsZero() {
		u.CreatedAt = t
	}
	u.UpdatedAt = t
	return u
}

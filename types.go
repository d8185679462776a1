package auth

import (
	"context"
	"log/slog"
	"time"
)

// Logger is satisfied by *slog.Logger. Args are key value pairs.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

// Identity holds the attributes of an authenticated identity
type Identity interface {
	ID() string
	Username() string
	Email() string
	Role() string
}

// Config holds auth options
type Config interface {
	GetSigningKey() string
	GetIssuer() string
	GetTokenExpiration() time.Duration
	GetOTPTTL() time.Duration
	GetCookieName() string
	GetSecureCookie() bool
	GetDefaultRole() string
	GetUseHashID() bool
	GetPhoneRegion() string
}

// Users is the credential store the service consumes.
type Users interface {
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	// Register inserts the record unless the email or username is taken,
	// in which case it returns ErrUserExists.
	Register(ctx context.Context, user *User) (*User, error)
	Update(ctx context.Context, user *User, columns ...string) (*User, error)
	TrackLogin(ctx context.Context, id string, at time.Time) error
	ResetPassword(ctx context.Context, id, passwordHash string) error
	MarkEmailVerified(ctx context.Context, id string) error
	UsernameTaken(ctx context.Context, username string) (bool, error)
}

// OTPLedger stores single use codes keyed by email and purpose.
type OTPLedger interface {
	Issue(ctx context.Context, email string, purpose Purpose) (string, error)
	Consume(ctx context.Context, email string, purpose Purpose, code string) (bool, error)
	Check(ctx context.Context, email string, purpose Purpose, code string) (bool, error)
	Discard(ctx context.Context, email string, purpose Purpose) error
}

// FederatedVerifier validates identity tokens issued by a third party.
type FederatedVerifier interface {
	Verify(ctx context.Context, idToken string) (*FederatedIdentity, error)
}

// FederatedIdentity is the verified subset of a third party identity token.
type FederatedIdentity struct {
	Email   string
	Name    string
	Picture string
	Subject string
}

// PasswordAuthenticator authenticates passwords
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// Clock returns the current time.
type Clock func() time.Time

func defLogger() Logger {
	return slog.Default().With("component", "auth")
}

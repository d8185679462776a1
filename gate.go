package auth

import (
	"context"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Gate authenticates request tokens and enforces resource ownership
type Gate struct {
	verifier *TokenVerifier
	users    Users
	logger   Logger
}

// NewGate returns a gate over verifier and users
func NewGate(verifier *TokenVerifier, users Users) *Gate {
	return &Gate{
		verifier: verifier,
		users:    users,
		logger:   defLogger(),
	}
}

func (g *Gate) WithLogger(logger Logger) *Gate {
	if logger != nil {
		g.logger = logger
	}
	return g
}

// Authenticate verifies token and resolves the active account it names.
func (g *Gate) Authenticate(ctx context.Context, token string) (*User, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrAccessTokenRequired
	}

	verified, err := g.verifier.Verify(ctx, token)
	if err != nil {
		g.logger.Debug("gate rejected token", "error", err)
		return nil, ErrInvalidToken
	}

	user, err := g.users.GetByEmail(ctx, verified.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			return nil, ErrUserNotFound
		}
		return nil, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to resolve token identity")
	}

	if !user.IsActive {
		return nil, ErrAccountInactive
	}

	return user.Sanitized(), nil
}

// AuthorizeOwner allows the request only when ownerID is the identity's id.
// A missing identity means the gate did not run and is reported as an
// internal authorization error.
func AuthorizeOwner(user *User, ownerID string) error {
	if user == nil {
		return ErrAuthorization
	}
	if ownerID == "" || user.ID.String() != ownerID {
		return ErrNotOwner
	}
	return nil
}

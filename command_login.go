package auth

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// LoginMessage is the login payload
type LoginMessage struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (m LoginMessage) Type() string { return "user.login" }

// Login checks a local credential and opens a session. Unknown email, a
// federated-only account and a wrong password share one response.
func (s *Service) Login(ctx context.Context, msg LoginMessage) Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (Result, error) {
		return s.login(ctx, msg)
	})
}

func (s *Service) login(ctx context.Context, msg LoginMessage) (Result, error) {
	msg.Email = strings.TrimSpace(msg.Email)

	if err := MissingFields(F("email", msg.Email), F("password", msg.Password)); err != nil {
		return Result{}, err
	}

	user, err := s.users.GetByEmail(ctx, msg.Email)
	if err != nil {
		if goerrors.IsNotFound(err) {
			s.emit(ctx, ActivityEventLoginFailure, nil, msg.Email, map[string]any{"reason": "unknown_email"})
			return Result{}, ErrInvalidCredentials
		}
		return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for login")
	}

	if !user.IsActive {
		s.emit(ctx, ActivityEventLoginFailure, user, "", map[string]any{"reason": "inactive"})
		return Result{}, ErrAccountInactive
	}

	if !user.HasPassword() {
		s.emit(ctx, ActivityEventLoginFailure, user, "", map[string]any{"reason": "no_local_credential"})
		return Result{}, ErrInvalidCredentials
	}

	if err := s.hasher.ComparePasswordAndHash(msg.Password, user.PasswordHash); err != nil {
		s.emit(ctx, ActivityEventLoginFailure, user, "", map[string]any{"reason": "password_mismatch"})
		return Result{}, ErrInvalidCredentials
	}

	now := s.now()
	if err := s.users.TrackLogin(ctx, user.ID.String(), now); err != nil {
		s.logger.Warn("login could not record last login", "user_id", user.ID.String(), "error", err)
	} else {
		user.LastLoginAt = &now
	}

	s.emit(ctx, ActivityEventLoginSuccess, user, "", nil)

	return s.sessionResult(http.StatusOK, user, "Login successful")
}

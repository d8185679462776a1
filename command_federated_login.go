package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// FederatedLoginMessage carries a Google ID token
type FederatedLoginMessage struct {
	Token   string `json:"token"`
	IDToken string `json:"idToken"`
	Role    string `json:"role"`
}

func (m FederatedLoginMessage) Type() string { return "user.federated_login" }

func (m FederatedLoginMessage) idToken() string {
	if m.Token != "" {
		return m.Token
	}
	return m.IDToken
}

// maxUsernameAttempts bounds the suffix search for a free username
const maxUsernameAttempts = 20

// maxSignupAttempts bounds retries when a create loses a username race
const maxSignupAttempts = 3

// FederatedLogin signs in with a Google ID token, creating the account on
// first use. Existing accounts answer 200, new ones 201.
func (s *Service) FederatedLogin(ctx context.Context, msg FederatedLoginMessage) Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (Result, error) {
		return s.federatedLogin(ctx, msg)
	})
}

func (s *Service) federatedLogin(ctx context.Context, msg FederatedLoginMessage) (Result, error) {
	if msg.Role != "" {
		err := validation.Validate(msg.Role, RoleRule)
		if err != nil {
			return Result{}, goerrors.NewValidation(err.Error(), goerrors.FieldError{
				Field:   "role",
				Message: err.Error(),
			}).WithCode(goerrors.CodeBadRequest)
		}
	}

	if err := MissingFields(F("token", msg.idToken())); err != nil {
		return Result{}, err
	}

	if s.federated == nil {
		return Result{}, ErrInvalidFederatedToken
	}

	identity, err := s.federated.Verify(ctx, msg.idToken())
	if err != nil || identity == nil || identity.Email == "" {
		s.logger.Debug("federated token rejected", "error", err)
		return Result{}, ErrInvalidFederatedToken
	}

	user, err := s.users.GetByEmail(ctx, identity.Email)
	switch {
	case err == nil:
		return s.federatedExisting(ctx, user, identity, msg.Role)
	case goerrors.IsNotFound(err):
		return s.federatedSignup(ctx, identity, msg.Role)
	default:
		return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to retrieve user for federated login")
	}
}

func (s *Service) federatedExisting(ctx context.Context, user *User, identity *FederatedIdentity, role string) (Result, error) {
	if !user.IsActive {
		return Result{}, ErrAccountInactive
	}

	now := s.now()
	user.IsEmailVerified = true
	user.LastLoginAt = &now
	user.GoogleID = identity.Subject
	columns := []string{"is_email_verified", "last_login_at", "google_id", "updated_at"}

	if identity.Picture != "" {
		user.ProfileImage = identity.Picture
		columns = append(columns, "profile_image")
	}
	if role != "" {
		user.Role = role
		columns = append(columns, "role")
	}
	user.Touch(now)

	updated, err := s.users.Update(ctx, user, columns...)
	if err != nil {
		return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update federated user")
	}

	s.emit(ctx, ActivityEventFederatedLogin, updated, "", map[string]any{"created": false})

	return s.sessionResult(http.StatusOK, updated, "Login successful")
}

func (s *Service) federatedSignup(ctx context.Context, identity *FederatedIdentity, role string) (Result, error) {
	if role == "" {
		role = s.defaultRole
	}

	for attempt := 0; attempt < maxSignupAttempts; attempt++ {
		username, err := s.freeUsername(ctx, usernameFromEmail("", identity.Email))
		if err != nil {
			return Result{}, err
		}

		created, err := s.users.Register(ctx, s.federatedUser(identity, username, role))
		if err == nil {
			s.welcome(created)
			s.emit(ctx, ActivityEventFederatedLogin, created, "", map[string]any{"created": true})
			return s.sessionResult(http.StatusCreated, created, "User created successfully")
		}

		if !goerrors.IsCategory(err, goerrors.CategoryConflict) {
			return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create federated user")
		}

		// a concurrent first login took the email, or another signup took the username
		existing, lookupErr := s.lookupUser(ctx, identity.Email)
		if lookupErr == nil {
			return s.federatedExisting(ctx, existing, identity, "")
		}
		if !errors.Is(lookupErr, ErrUserNotFound) {
			return Result{}, lookupErr
		}
	}

	return Result{}, goerrors.New("could not create federated user", goerrors.CategoryInternal).
		WithMetadata(map[string]any{"email": identity.Email})
}

func (s *Service) federatedUser(identity *FederatedIdentity, username, role string) *User {
	name := strings.TrimSpace(identity.Name)
	if name == "" {
		name = username
	}

	now := s.now()
	user := &User{
		ID:              s.newUserID(identity.Email),
		Name:            name,
		Email:           identity.Email,
		Username:        username,
		Role:            role,
		ProfileImage:    identity.Picture,
		IsActive:        true,
		IsEmailVerified: true,
		Provider:        ProviderGoogle,
		GoogleID:        identity.Subject,
		LastLoginAt:     &now,
	}
	user.Touch(now)
	return user
}

func (s *Service) freeUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for i := 1; i <= maxUsernameAttempts; i++ {
		taken, err := s.users.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check username")
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	return "", goerrors.New("could not find a free username", goerrors.CategoryInternal).
		WithMetadata(map[string]any{"base": base})
}

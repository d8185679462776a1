package auth

import (
	"context"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/hashid/pkg/hashid"
	"github.com/google/uuid"
)

// SignupMessage is the signup payload
type SignupMessage struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Username string `json:"username"`
	Role     string `json:"role"`
	Phone    string `json:"phone"`
}

func (m SignupMessage) Type() string { return "user.signup" }

// Validate checks required fields first, then formats
func (m SignupMessage) Validate(phoneRegion string) error {
	if err := MissingFields(
		F("name", m.Name),
		F("email", m.Email),
		F("password", m.Password),
		F("role", m.Role),
	); err != nil {
		return err
	}

	err := validation.ValidateStruct(&m,
		validation.Field(&m.Email, EmailRule),
		validation.Field(&m.Password, PasswordRule, PasswordLimitRule),
		validation.Field(&m.Role, RoleRule),
		validation.Field(&m.Phone, PhoneRule(phoneRegion)),
		validation.Field(&m.Username, validation.Length(0, 100)),
	)
	return validationError(err, firstFieldMessage(err, "Invalid signup details."))
}

// Signup registers a local account and opens a session for it
func (s *Service) Signup(ctx context.Context, msg SignupMessage) Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (Result, error) {
		return s.signup(ctx, msg)
	})
}

func (s *Service) signup(ctx context.Context, msg SignupMessage) (Result, error) {
	msg.Email = strings.TrimSpace(msg.Email)
	msg.Name = strings.TrimSpace(msg.Name)

	if err := msg.Validate(s.phoneRegion); err != nil {
		return Result{}, err
	}

	hash, err := s.hasher.HashPassword(msg.Password)
	if err != nil {
		return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
	}

	phone := ""
	if msg.Phone != "" {
		if phone, err = NormalizePhone(msg.Phone, s.phoneRegion); err != nil {
			return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to normalize phone")
		}
	}

	user := &User{
		ID:           s.newUserID(msg.Email),
		Name:         msg.Name,
		Email:        msg.Email,
		Username:     usernameFromEmail(msg.Username, msg.Email),
		PasswordHash: hash,
		Role:         msg.Role,
		Phone:        phone,
		IsActive:     true,
		Provider:     ProviderLocal,
	}
	user.Touch(s.now())

	created, err := s.users.Register(ctx, user)
	if err != nil {
		if goerrors.IsCategory(err, goerrors.CategoryConflict) {
			return Result{}, ErrUserExists
		}
		return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "could not create user")
	}

	s.welcome(created)
	s.emit(ctx, ActivityEventSignup, created, "", map[string]any{"provider": ProviderLocal})

	return s.sessionResult(http.StatusCreated, created, "User registered successfully")
}

func (s *Service) newUserID(email string) uuid.UUID {
	if s.useHashID {
		if id, err := hashid.NewUUID(email); err == nil {
			return id
		}
	}
	return uuid.New()
}

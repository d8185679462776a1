package auth

import (
	"context"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// SendVerificationMessage asks for an email_verification code
type SendVerificationMessage struct {
	Email string `json:"email"`
}

func (m SendVerificationMessage) Type() string { return "email.verification.request" }

// VerifyEmailMessage redeems an email_verification code
type VerifyEmailMessage struct {
	Email string `json:"email"`
	OTP   string `json:"otp"`
}

func (m VerifyEmailMessage) Type() string { return "email.verification.finalize" }

// SendVerificationEmail mails a verification code to an unverified account
func (s *Service) SendVerificationEmail(ctx context.Context, msg SendVerificationMessage) Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (Result, error) {
		email := strings.TrimSpace(msg.Email)
		if err := MissingFields(F("email", email)); err != nil {
			return Result{}, err
		}

		user, err := s.lookupUser(ctx, email)
		if err != nil {
			return Result{}, err
		}

		if user.IsEmailVerified {
			return Result{}, ErrAlreadyVerified
		}

		if err := s.sendCode(ctx, user, PurposeEmailVerification); err != nil {
			return Result{}, err
		}

		return Succeed(http.StatusOK, nil, "Verification OTP sent to your email."), nil
	})
}

// VerifyEmail consumes the code and flips the verified flag
func (s *Service) VerifyEmail(ctx context.Context, msg VerifyEmailMessage) Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (Result, error) {
		email := strings.TrimSpace(msg.Email)
		if err := MissingFields(F("email", email), F("otp", msg.OTP)); err != nil {
			return Result{}, err
		}

		if err := s.consumeCode(ctx, email, PurposeEmailVerification, msg.OTP); err != nil {
			return Result{}, err
		}

		user, err := s.lookupUser(ctx, email)
		if err != nil {
			return Result{}, err
		}

		if err := s.users.MarkEmailVerified(ctx, user.ID.String()); err != nil {
			if goerrors.IsNotFound(err) {
				return Result{}, ErrUserNotFound
			}
			return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to mark email verified")
		}

		s.emit(ctx, ActivityEventEmailVerified, user, "", nil)

		return Succeed(http.StatusOK, nil, "Email verified successfully."), nil
	})
}

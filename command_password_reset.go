package auth

import (
	"context"
	"net/http"
	"strings"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
)

// ForgotPasswordMessage starts a password reset
type ForgotPasswordMessage struct {
	Email string `json:"email"`
}

func (m ForgotPasswordMessage) Type() string { return "password.reset.request" }

// VerifyOTPMessage checks a code without using it up
type VerifyOTPMessage struct {
	Email   string  `json:"email"`
	OTP     string  `json:"otp"`
	Purpose Purpose `json:"purpose"`
}

func (m VerifyOTPMessage) Type() string { return "otp.verify" }

// ResetPasswordMessage finishes a password reset
type ResetPasswordMessage struct {
	Email           string `json:"email"`
	OTP             string `json:"otp"`
	NewPassword     string `json:"newPassword"`
	ConfirmPassword string `json:"confirmPassword"`
}

func (m ResetPasswordMessage) Type() string { return "password.reset.finalize" }

// Validate checks the reset payload in order: presence, match, policy
func (m ResetPasswordMessage) Validate() error {
	if err := MissingFields(
		F("email", m.Email),
		F("otp", m.OTP),
		F("newPassword", m.NewPassword),
		F("confirmPassword", m.ConfirmPassword),
	); err != nil {
		return err
	}

	if m.NewPassword != m.ConfirmPassword {
		return ErrPasswordMismatch
	}

	err := validation.ValidateStruct(&m,
		validation.Field(&m.NewPassword, PasswordRule, PasswordLimitRule),
	)
	return validationError(err, firstFieldMessage(err, "Invalid password."))
}

const resetRequestedMessage = "Password reset OTP sent to your email."

// ForgotPassword issues a password_reset code and mails it. The mail is
// awaited: if it cannot be sent the code is discarded and the call fails.
func (s *Service) ForgotPassword(ctx context.Context, msg ForgotPasswordMessage) Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (Result, error) {
		email := strings.TrimSpace(msg.Email)
		if err := MissingFields(F("email", email)); err != nil {
			return Result{}, err
		}

		user, err := s.lookupUser(ctx, email)
		if err != nil {
			return Result{}, err
		}

		if !user.HasPassword() {
			return Result{}, ErrFederatedOnly
		}

		if err := s.sendCode(ctx, user, PurposePasswordReset); err != nil {
			return Result{}, err
		}

		s.emit(ctx, ActivityEventPasswordResetRequest, user, "", nil)

		return Succeed(http.StatusOK, nil, resetRequestedMessage), nil
	})
}

// VerifyOTP reports whether a code is currently valid. The code stays live.
func (s *Service) VerifyOTP(ctx context.Context, msg VerifyOTPMessage) Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (Result, error) {
		email := strings.TrimSpace(msg.Email)
		if err := MissingFields(F("email", email), F("otp", msg.OTP)); err != nil {
			return Result{}, err
		}

		purpose := msg.Purpose
		if purpose == "" {
			purpose = PurposePasswordReset
		}
		if !purpose.Valid() {
			return Result{}, goerrors.NewValidation("Invalid OTP purpose.", goerrors.FieldError{
				Field:   "purpose",
				Message: "must be one of: email_verification, password_reset",
				Value:   string(purpose),
			}).WithCode(goerrors.CodeBadRequest)
		}

		ok, err := s.ledger.Check(ctx, email, purpose, msg.OTP)
		if err != nil {
			return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to check otp")
		}
		if !ok {
			return Result{}, ErrInvalidOrExpiredOTP
		}

		return Succeed(http.StatusOK, nil, "OTP verified successfully."), nil
	})
}

// ResetPassword consumes a password_reset code and stores the new password
func (s *Service) ResetPassword(ctx context.Context, msg ResetPasswordMessage) Result {
	return s.handle(ctx, msg.Type(), func(ctx context.Context) (Result, error) {
		msg.Email = strings.TrimSpace(msg.Email)
		if err := msg.Validate(); err != nil {
			return Result{}, err
		}

		if err := s.consumeCode(ctx, msg.Email, PurposePasswordReset, msg.OTP); err != nil {
			return Result{}, err
		}

		user, err := s.lookupUser(ctx, msg.Email)
		if err != nil {
			return Result{}, err
		}

		hash, err := s.hasher.HashPassword(msg.NewPassword)
		if err != nil {
			return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to hash password")
		}

		if err := s.users.ResetPassword(ctx, user.ID.String(), hash); err != nil {
			if goerrors.IsNotFound(err) {
				return Result{}, ErrUserNotFound
			}
			return Result{}, goerrors.Wrap(err, goerrors.CategoryInternal, "failed to update password")
		}

		s.emit(ctx, ActivityEventPasswordResetSuccess, user, "", nil)

		return Succeed(http.StatusOK, nil, "Password reset successfully."), nil
	})
}

// sendCode issues a code for purpose and waits for the mail to go out. On
// delivery failure the code is withdrawn.
func (s *Service) sendCode(ctx context.Context, user *User, purpose Purpose) error {
	code, err := s.ledger.Issue(ctx, user.Email, purpose)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to issue otp")
	}

	recipient := user.Sanitized()
	switch purpose {
	case PurposePasswordReset:
		err = s.notifier.PasswordResetCode(ctx, recipient, code, s.otpTTL)
	default:
		err = s.notifier.VerificationCode(ctx, recipient, code, s.otpTTL)
	}

	if err != nil {
		if discardErr := s.ledger.Discard(ctx, user.Email, purpose); discardErr != nil {
			s.logger.Warn("could not discard undelivered otp", "purpose", string(purpose), "error", discardErr)
		}
		sendErr := goerrors.New("Failed to send email", goerrors.CategoryExternal).
			WithCode(goerrors.CodeInternal).
			WithTextCode(TextCodeNotificationFailed)
		sendErr.Source = err
		return sendErr
	}

	return nil
}

func (s *Service) consumeCode(ctx context.Context, email string, purpose Purpose, code string) error {
	ok, err := s.ledger.Consume(ctx, email, purpose, code)
	if err != nil {
		return goerrors.Wrap(err, goerrors.CategoryInternal, "failed to consume otp")
	}
	if !ok {
		return ErrInvalidOrExpiredOTP
	}
	return nil
}

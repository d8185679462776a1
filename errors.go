package auth

import (
	goerrors "github.com/goliatone/go-errors"
)

// Text codes attached to the domain errors
const (
	TextCodeInvalidToken          = "INVALID_TOKEN"
	TextCodeInvalidFederatedToken = "INVALID_FEDERATED_TOKEN"
	TextCodeInvalidOrExpiredOTP   = "INVALID_OR_EXPIRED_OTP"
	TextCodeInvalidCredentials    = "INVALID_CREDENTIALS"
	TextCodeAccountInactive       = "ACCOUNT_INACTIVE"
	TextCodeUserExists            = "USER_EXISTS"
	TextCodeUserNotFound          = "USER_NOT_FOUND"
	TextCodeAccessTokenRequired   = "ACCESS_TOKEN_REQUIRED"
	TextCodeNotOwner              = "NOT_OWNER"
	TextCodeFederatedOnly         = "FEDERATED_ONLY_ACCOUNT"
	TextCodeAlreadyVerified       = "EMAIL_ALREADY_VERIFIED"
	TextCodeNotificationFailed    = "NOTIFICATION_FAILED"
	TextCodeAuthorization         = "AUTHORIZATION_ERROR"
)

var (
	// ErrInvalidToken covers bad signatures, malformed tokens and expiry
	ErrInvalidToken = goerrors.New("Invalid or expired token", goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode(TextCodeInvalidToken)

	// ErrInvalidFederatedToken is returned for every federated verification failure
	ErrInvalidFederatedToken = goerrors.New("Invalid Google token", goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode(TextCodeInvalidFederatedToken)

	// ErrInvalidOrExpiredOTP is returned when a code is absent, stale or wrong
	ErrInvalidOrExpiredOTP = goerrors.New("Invalid or expired OTP.", goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeInvalidOrExpiredOTP)

	// ErrInvalidCredentials is shared by every login failure cause
	ErrInvalidCredentials = goerrors.New("Invalid email or password", goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode(TextCodeInvalidCredentials)

	ErrAccountInactive = goerrors.New("Account is inactive", goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(TextCodeAccountInactive)

	ErrUserExists = goerrors.New("User with the same username or email already exists.", goerrors.CategoryConflict).
		WithCode(goerrors.CodeConflict).
		WithTextCode(TextCodeUserExists)

	ErrUserNotFound = goerrors.New("User not found.", goerrors.CategoryNotFound).
		WithCode(goerrors.CodeNotFound).
		WithTextCode(TextCodeUserNotFound)

	ErrAccessTokenRequired = goerrors.New("Access token required", goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized).
		WithTextCode(TextCodeAccessTokenRequired)

	ErrNotOwner = goerrors.New("Access denied. You can only access your own profile", goerrors.CategoryAuthz).
		WithCode(goerrors.CodeForbidden).
		WithTextCode(TextCodeNotOwner)

	ErrAuthorization = goerrors.New("Authorization error", goerrors.CategoryInternal).
		WithCode(goerrors.CodeInternal).
		WithTextCode(TextCodeAuthorization)

	ErrFederatedOnly = goerrors.New("This account uses Google sign-in. Password reset is not available.", goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeFederatedOnly)

	ErrAlreadyVerified = goerrors.New("Email is already verified.", goerrors.CategoryBadInput).
		WithCode(goerrors.CodeBadRequest).
		WithTextCode(TextCodeAlreadyVerified)

	ErrPasswordMismatch = goerrors.New("Passwords do not match.", goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest)

	ErrNoEmptyString = goerrors.New("password must not be empty", goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest)

	ErrPasswordTooLong = goerrors.New("Password must be at most 72 bytes long.", goerrors.CategoryValidation).
		WithCode(goerrors.CodeBadRequest)

	ErrMismatchedHashAndPassword = goerrors.New("password does not match hash", goerrors.CategoryAuth).
		WithCode(goerrors.CodeUnauthorized)

	ErrInternal = goerrors.New("Internal server error.", goerrors.CategoryInternal).
		WithCode(goerrors.CodeInternal)
)

// statusFor maps an error onto the HTTP status it renders with
func statusFor(err *goerrors.Error) int {
	if err == nil {
		return goerrors.CodeInternal
	}

	if err.Code != 0 {
		return err.Code
	}

	switch err.Category {
	case goerrors.CategoryValidation, goerrors.CategoryBadInput:
		return goerrors.CodeBadRequest
	case goerrors.CategoryConflict:
		return goerrors.CodeConflict
	case goerrors.CategoryAuth:
		return goerrors.CodeUnauthorized
	case goerrors.CategoryAuthz:
		return goerrors.CodeForbidden
	case goerrors.CategoryNotFound:
		return goerrors.CodeNotFound
	default:
		return goerrors.CodeInternal
	}
}

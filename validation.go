package auth

import (
	"errors"
	"regexp"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	goerrors "github.com/goliatone/go-errors"
	"github.com/nyaruka/phonenumbers"
)

// MinPasswordLength is counted in characters
const MinPasswordLength = 6

// MaxPasswordLength is counted in bytes, bcrypt rejects anything longer
const MaxPasswordLength = 72

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

var (
	// EmailRule matches anything shaped like local@domain.tld
	EmailRule = validation.Match(emailPattern).Error("Invalid email format.")

	// PasswordRule is the password policy
	PasswordRule = validation.RuneLength(MinPasswordLength, 0).
			Error("Password must be at least 6 characters long.")

	// PasswordLimitRule caps the password at what bcrypt can hash
	PasswordLimitRule = validation.Length(0, MaxPasswordLength).
				Error("Password must be at most 72 bytes long.")

	// RoleRule restricts a role to the closed set
	RoleRule = validation.By(func(value any) error {
		role, _ := value.(string)
		if role == "" || IsValidRole(role) {
			return nil
		}
		return errors.New("Invalid user type. Must be one of: " + rolesList())
	})
)

// PhoneRule validates a phone number, using region when it has no country code
func PhoneRule(region string) validation.Rule {
	return validation.By(func(value any) error {
		phone, _ := value.(string)
		if phone == "" {
			return nil
		}
		if _, err := NormalizePhone(phone, region); err != nil {
			return errors.New("Invalid phone number.")
		}
		return nil
	})
}

// NormalizePhone returns phone in E.164 form
func NormalizePhone(phone, region string) (string, error) {
	num, err := phonenumbers.Parse(phone, region)
	if err != nil {
		return "", err
	}
	if !phonenumbers.IsValidNumber(num) {
		return "", errors.New("invalid phone number")
	}
	return phonenumbers.Format(num, phonenumbers.E164), nil
}

// validationError converts ozzo errors into the validation taxonomy
func validationError(err error, message string) error {
	if err == nil {
		return nil
	}
	return goerrors.FromOzzoValidation(err, message).WithCode(goerrors.CodeBadRequest)
}

// firstFieldMessage returns a single field message when exactly one field failed
func firstFieldMessage(err error, fallback string) string {
	var errs validation.Errors
	if errors.As(err, &errs) && len(errs) == 1 {
		for _, fieldErr := range errs {
			return fieldErr.Error()
		}
	}
	return fallback
}

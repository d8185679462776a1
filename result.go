package auth

import (
	"fmt"
	"net/http"
	"strings"

	goerrors "github.com/goliatone/go-errors"
)

// Envelope is the JSON body every operation produces
type Envelope struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
	Errors  any    `json:"errors,omitempty"`
}

// Result is what an operation hands back to the transport layer. When Token
// is set the transport also sets it as the session cookie.
type Result struct {
	Status int
	Data   Envelope
	Token  string
}

// Succeed builds a success result. The default message is "Success".
func Succeed(status int, data any, message ...string) Result {
	msg := "Success"
	if len(message) > 0 && message[0] != "" {
		msg = message[0]
	}
	return Result{
		Status: status,
		Data: Envelope{
			Success: true,
			Message: msg,
			Data:    data,
		},
	}
}

// Fail builds a failure result
func Fail(status int, message string, errs ...any) Result {
	env := Envelope{
		Success: false,
		Message: message,
	}
	if len(errs) > 0 && errs[0] != nil {
		env.Errors = errs[0]
	}
	return Result{Status: status, Data: env}
}

// WithToken attaches a session token to the result
func (r Result) WithToken(token string) Result {
	r.Token = token
	return r
}

// OK reports a 2xx status
func (r Result) OK() bool {
	return r.Status >= http.StatusOK && r.Status < http.StatusMultipleChoices
}

// ResultFromError renders any error as a failure result. Rich errors keep
// their message and field errors. Server side errors without a text code and
// plain errors collapse into a generic internal error.
func ResultFromError(err error) Result {
	if err == nil {
		return Fail(http.StatusInternalServerError, ErrInternal.Message)
	}

	var richErr *goerrors.Error
	if !goerrors.As(err, &richErr) {
		return Fail(http.StatusInternalServerError, ErrInternal.Message)
	}

	status := statusFor(richErr)
	if status >= http.StatusInternalServerError && richErr.TextCode == "" {
		return Fail(status, ErrInternal.Message)
	}

	var fields map[string]string
	if len(richErr.ValidationErrors) > 0 {
		fields = richErr.ValidationMap()
	}

	if fields != nil {
		return Fail(status, richErr.Message, fields)
	}
	return Fail(status, richErr.Message)
}

// MissingFields returns a validation error naming every empty field, in the
// order given. It returns nil when nothing is missing.
func MissingFields(fields ...Field) error {
	missing := make([]string, 0, len(fields))
	for _, f := range fields {
		if strings.TrimSpace(f.Value) == "" {
			missing = append(missing, f.Name)
		}
	}

	if len(missing) == 0 {
		return nil
	}

	fieldErrs := make([]goerrors.FieldError, 0, len(missing))
	for _, name := range missing {
		fieldErrs = append(fieldErrs, goerrors.FieldError{Field: name, Message: "cannot be blank"})
	}

	return goerrors.NewValidation(
		fmt.Sprintf("Missing required fields: %s", strings.Join(missing, ", ")),
		fieldErrs...,
	).WithCode(goerrors.CodeBadRequest)
}

// Field pairs a payload field name with its raw value
type Field struct {
	Name  string
	Value string
}

// F is shorthand for Field
func F(name, value string) Field {
	return Field{Name: name, Value: value}
}

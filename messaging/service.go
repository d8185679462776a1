package messaging

import (
	"context"
	"net/http"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/go-ozzo/ozzo-validation/v4/is"
	goerrors "github.com/goliatone/go-errors"

	"github.com/zelvyn/zelvyn-api"
)

// WelcomeMessage asks for the welcome email to be sent to Email
type WelcomeMessage struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SMSMessage is accepted but not delivered yet
type SMSMessage struct {
	To      string `json:"to"`
	Message string `json:"message"`
}

// PushMessage is accepted but not delivered yet
type PushMessage struct {
	To    string `json:"to"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

// Service exposes the outbound channels. Email is delivered through the
// Sender, SMS and push report not implemented.
type Service struct {
	sender   Sender
	notifier *Notifier
	logger   auth.Logger
}

func NewService(sender Sender, notifier *Notifier, logger auth.Logger) *Service {
	return &Service{sender: sender, notifier: notifier, logger: logger}
}

// SendEmail delivers a free form email
func (s *Service) SendEmail(ctx context.Context, email Email) auth.Result {
	if err := auth.MissingFields(auth.F("to", email.To.String()), auth.F("subject", email.Subject)); err != nil {
		return auth.ResultFromError(err)
	}

	if err := validation.ValidateStruct(&email,
		validation.Field(&email.To, validation.Each(is.EmailFormat)),
		validation.Field(&email.Text, validation.When(email.HTML == "", validation.Required.Error("text or html is required"))),
	); err != nil {
		return auth.ResultFromError(goerrors.FromOzzoValidation(err, "Invalid email payload").
			WithCode(goerrors.CodeBadRequest))
	}

	if err := s.sender.Send(ctx, email); err != nil {
		return s.deliveryFailed("Failed to send email", err)
	}

	return auth.Succeed(http.StatusOK, map[string]any{"recipients": []string(email.To)}, "Email sent successfully")
}

// SendWelcome sends the welcome template to msg.Email
func (s *Service) SendWelcome(ctx context.Context, msg WelcomeMessage) auth.Result {
	if err := auth.MissingFields(auth.F("email", msg.Email)); err != nil {
		return auth.ResultFromError(err)
	}

	if err := validation.Validate(msg.Email, is.EmailFormat); err != nil {
		return auth.ResultFromError(goerrors.New("Invalid email format.", goerrors.CategoryValidation).
			WithCode(goerrors.CodeBadRequest))
	}

	if err := s.notifier.SendWelcome(ctx, msg.Email, msg.Name); err != nil {
		return s.deliveryFailed("Failed to send welcome email", err)
	}

	return auth.Succeed(http.StatusOK, nil, "Welcome email sent successfully")
}

func (s *Service) SendSMS(_ context.Context, msg SMSMessage) auth.Result {
	s.logger.Info("sms requested", "to", msg.To)
	return auth.Fail(http.StatusNotImplemented, "SMS service not implemented yet")
}

func (s *Service) SendPush(_ context.Context, msg PushMessage) auth.Result {
	s.logger.Info("push notification requested", "to", msg.To, "title", msg.Title)
	return auth.Fail(http.StatusNotImplemented, "Push notification service not implemented yet")
}

func (s *Service) deliveryFailed(message string, cause error) auth.Result {
	err := goerrors.New(message, goerrors.CategoryExternal).
		WithCode(goerrors.CodeInternal).
		WithTextCode(auth.TextCodeNotificationFailed)
	err.Source = cause

	s.logger.Error("email delivery failed", "error", cause)
	return auth.ResultFromError(err)
}

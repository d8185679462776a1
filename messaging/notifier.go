package messaging

import (
	"context"
	"strings"
	"time"

	"github.com/zelvyn/zelvyn-api"
)

// DefaultAppName is used in subjects and templates
const DefaultAppName = "Zelvyn"

// Notifier sends the account emails through a Sender
type Notifier struct {
	sender    Sender
	templates *Templates
	app       string
	logger    auth.Logger
}

var _ auth.Notifier = (*Notifier)(nil)

func NewNotifier(sender Sender, templates *Templates, app string) *Notifier {
	if app == "" {
		app = DefaultAppName
	}
	return &Notifier{
		sender:    sender,
		templates: templates,
		app:       app,
	}
}

func (n *Notifier) WithLogger(logger auth.Logger) *Notifier {
	n.logger = logger
	return n
}

// Welcome greets a newly created account
func (n *Notifier) Welcome(ctx context.Context, user *auth.User) error {
	return n.SendWelcome(ctx, user.Email, displayName(user))
}

// SendWelcome sends the welcome email to an arbitrary address
func (n *Notifier) SendWelcome(ctx context.Context, email, name string) error {
	return n.send(ctx, email, "Welcome to "+n.app+"!", TemplateWelcome, map[string]any{
		"name": name,
	})
}

func (n *Notifier) PasswordResetCode(ctx context.Context, user *auth.User, code string, ttl time.Duration) error {
	return n.send(ctx, user.Email, n.app+" password reset code", TemplatePasswordReset, map[string]any{
		"name":    displayName(user),
		"code":    code,
		"minutes": minutes(ttl),
	})
}

func (n *Notifier) VerificationCode(ctx context.Context, user *auth.User, code string, ttl time.Duration) error {
	return n.send(ctx, user.Email, "Verify your "+n.app+" email", TemplateVerification, map[string]any{
		"name":    displayName(user),
		"code":    code,
		"minutes": minutes(ttl),
	})
}

func (n *Notifier) send(ctx context.Context, to, subject, template string, data map[string]any) error {
	text, html, err := n.templates.Render(template, data)
	if err != nil {
		return err
	}

	if n.logger != nil {
		n.logger.Debug("sending email", "template", template, "to", to)
	}

	return n.sender.Send(ctx, Email{
		To:      Recipients{to},
		Subject: subject,
		Text:    text,
		HTML:    html,
	})
}

func displayName(user *auth.User) string {
	if name := strings.TrimSpace(user.Name); name != "" {
		return name
	}
	return user.Username
}

func minutes(ttl time.Duration) int {
	m := int(ttl / time.Minute)
	if m < 1 {
		return 1
	}
	return m
}

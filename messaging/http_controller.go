package messaging

import (
	"github.com/gofiber/fiber/v2"

	"github.com/zelvyn/zelvyn-api"
)

// Controller serves the messaging endpoints. Every route requires an
// authenticated caller.
type Controller struct {
	Service *Service
	Auther  *auth.RouteAuthenticator
	Logger  auth.Logger
}

func NewController(service *Service, auther *auth.RouteAuthenticator, logger auth.Logger) *Controller {
	if service == nil {
		panic("Missing Service in messaging controller...")
	}
	if auther == nil {
		panic("Missing RouteAuthenticator in messaging controller...")
	}
	return &Controller{Service: service, Auther: auther, Logger: logger}
}

// RegisterRoutes mounts the controller on router, usually /api/messaging
func (m *Controller) RegisterRoutes(router fiber.Router) {
	protected := router.Group("", m.Auther.ProtectedRoute(), auth.RequireBody())

	protected.Post("/email", m.SendEmail).Name("messaging.email")
	protected.Post("/email/welcome", m.SendWelcome).Name("messaging.email_welcome")
	protected.Post("/sms", m.SendSMS).Name("messaging.sms")
	protected.Post("/push", m.SendPush).Name("messaging.push")
}

func (m *Controller) SendEmail(c *fiber.Ctx) error {
	var email Email
	if err := c.BodyParser(&email); err != nil {
		return m.badBody(c, err)
	}
	return auth.WriteResult(c, m.Service.SendEmail(c.UserContext(), email))
}

func (m *Controller) SendWelcome(c *fiber.Ctx) error {
	var msg WelcomeMessage
	if err := c.BodyParser(&msg); err != nil {
		return m.badBody(c, err)
	}
	return auth.WriteResult(c, m.Service.SendWelcome(c.UserContext(), msg))
}

func (m *Controller) SendSMS(c *fiber.Ctx) error {
	var msg SMSMessage
	if err := c.BodyParser(&msg); err != nil {
		return m.badBody(c, err)
	}
	return auth.WriteResult(c, m.Service.SendSMS(c.UserContext(), msg))
}

func (m *Controller) SendPush(c *fiber.Ctx) error {
	var msg PushMessage
	if err := c.BodyParser(&msg); err != nil {
		return m.badBody(c, err)
	}
	return auth.WriteResult(c, m.Service.SendPush(c.UserContext(), msg))
}

func (m *Controller) badBody(c *fiber.Ctx, err error) error {
	m.Logger.Debug("could not parse request body", "path", c.OriginalURL(), "error", err)
	return auth.WriteResult(c, auth.Fail(fiber.StatusBadRequest, "Invalid request body"))
}

package auth

import (
	"github.com/gofiber/fiber/v2"
)

// RegisterAuthRoutes mounts the auth endpoints on app, usually the
// /api/auth group.
func RegisterAuthRoutes(app fiber.Router, opts ...AuthControllerOption) *AuthController {
	controller := NewAuthController(opts...)
	r := controller.Routes

	app.Post(r.Signup, controller.Auther.RequireBody(), controller.Signup).Name("auth.signup")
	app.Post(r.Login, controller.Auther.RequireBody(), controller.Login).Name("auth.login")
	app.Post(r.Google, controller.Auther.RequireBody(), controller.GoogleLogin).Name("auth.google")
	app.Post(r.ForgotPassword, controller.Auther.RequireBody(), controller.ForgotPassword).Name("auth.forgot_password")
	app.Post(r.VerifyOTP, controller.Auther.RequireBody(), controller.VerifyOTP).Name("auth.verify_otp")
	app.Post(r.ResetPassword, controller.Auther.RequireBody(), controller.ResetPassword).Name("auth.reset_password")
	app.Post(r.SendVerification, controller.Auther.RequireBody(), controller.SendVerificationEmail).Name("auth.send_verification")
	app.Post(r.VerifyEmail, controller.Auther.RequireBody(), controller.VerifyEmail).Name("auth.verify_email")

	app.Get(r.Me, controller.Auther.ProtectedRoute(), controller.Me).Name("auth.me")
	app.Post(r.Logout, controller.Logout).Name("auth.logout")

	return controller
}

type AuthControllerRoutes struct {
	Signup           string
	Login            string
	Google           string
	ForgotPassword   string
	VerifyOTP        string
	ResetPassword    string
	SendVerification string
	VerifyEmail      string
	Me               string
	Logout           string
}

type AuthController struct {
	Logger  Logger
	Service *Service
	Auther  *RouteAuthenticator
	Routes  *AuthControllerRoutes
}

type AuthControllerOption func(*AuthController) *AuthController

func WithControllerService(s *Service) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Service = s
		return c
	}
}

func WithControllerAuthenticator(a *RouteAuthenticator) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		c.Auther = a
		return c
	}
}

func WithControllerLogger(logger Logger) AuthControllerOption {
	return func(c *AuthController) *AuthController {
		if logger != nil {
			c.Logger = logger
		}
		return c
	}
}

func NewAuthController(opts ...AuthControllerOption) *AuthController {
	c := &AuthController{
		Logger: defLogger(),
		Routes: &AuthControllerRoutes{
			Signup:           "/signup",
			Login:            "/login",
			Google:           "/google",
			ForgotPassword:   "/forgot-password",
			VerifyOTP:        "/verify-otp",
			ResetPassword:    "/reset-password",
			SendVerification: "/send-verification-email",
			VerifyEmail:      "/verify-email",
			Me:               "/me",
			Logout:           "/logout",
		},
	}

	for _, opt := range opts {
		c = opt(c)
	}

	if c.Service == nil {
		panic("Missing Service in auth controller...")
	}

	if c.Auther == nil {
		panic("Missing RouteAuthenticator in auth controller...")
	}

	return c
}

func (a *AuthController) Signup(c *fiber.Ctx) error {
	var msg SignupMessage
	if err := c.BodyParser(&msg); err != nil {
		return a.badBody(c, err)
	}
	return a.Auther.Respond(c, a.Service.Signup(c.UserContext(), msg))
}

func (a *AuthController) Login(c *fiber.Ctx) error {
	var msg LoginMessage
	if err := c.BodyParser(&msg); err != nil {
		return a.badBody(c, err)
	}
	return a.Auther.Respond(c, a.Service.Login(c.UserContext(), msg))
}

func (a *AuthController) GoogleLogin(c *fiber.Ctx) error {
	var msg FederatedLoginMessage
	if err := c.BodyParser(&msg); err != nil {
		return a.badBody(c, err)
	}
	return a.Auther.Respond(c, a.Service.FederatedLogin(c.UserContext(), msg))
}

func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	var msg ForgotPasswordMessage
	if err := c.BodyParser(&msg); err != nil {
		return a.badBody(c, err)
	}
	return a.Auther.Respond(c, a.Service.ForgotPassword(c.UserContext(), msg))
}

func (a *AuthController) VerifyOTP(c *fiber.Ctx) error {
	var msg VerifyOTPMessage
	if err := c.BodyParser(&msg); err != nil {
		return a.badBody(c, err)
	}
	return a.Auther.Respond(c, a.Service.VerifyOTP(c.UserContext(), msg))
}

func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	var msg ResetPasswordMessage
	if err := c.BodyParser(&msg); err != nil {
		return a.badBody(c, err)
	}
	return a.Auther.Respond(c, a.Service.ResetPassword(c.UserContext(), msg))
}

func (a *AuthController) SendVerificationEmail(c *fiber.Ctx) error {
	var msg SendVerificationMessage
	if err := c.BodyParser(&msg); err != nil {
		return a.badBody(c, err)
	}
	return a.Auther.Respond(c, a.Service.SendVerificationEmail(c.UserContext(), msg))
}

func (a *AuthController) VerifyEmail(c *fiber.Ctx) error {
	var msg VerifyEmailMessage
	if err := c.BodyParser(&msg); err != nil {
		return a.badBody(c, err)
	}
	return a.Auther.Respond(c, a.Service.VerifyEmail(c.UserContext(), msg))
}

// Me returns the identity the gate resolved
func (a *AuthController) Me(c *fiber.Ctx) error {
	user, ok := CurrentUser(c)
	if !ok {
		return a.Auther.ErrorHandler(c, ErrAuthorization)
	}
	return WriteResult(c, Succeed(fiber.StatusOK, map[string]any{"user": user.Sanitized()}))
}

func (a *AuthController) Logout(c *fiber.Ctx) error {
	a.Auther.Logout(c)
	return WriteResult(c, Succeed(fiber.StatusOK, nil, "Logged out successfully"))
}

func (a *AuthController) badBody(c *fiber.Ctx, err error) error {
	a.Logger.Debug("could not parse request body", "path", c.OriginalURL(), "error", err)
	return WriteResult(c, Fail(fiber.StatusBadRequest, "Invalid request body"))
}

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	goerrors "github.com/goliatone/go-errors"
	"github.com/goliatone/go-print"

	"github.com/zelvyn/zelvyn-api/middleware/jwtware"
)

// DefaultCookieName is the session cookie name
const DefaultCookieName = "token"

// RouteAuthenticator carries the HTTP side of authentication: the gate
// middleware, the session cookie and the JSON result writer.
type RouteAuthenticator struct {
	gate           *Gate
	cookieName     string
	cookieDuration time.Duration
	secureCookie   bool
	Logger         Logger
}

func NewHTTPAuthenticator(gate *Gate, cfg Config) *RouteAuthenticator {
	cookieDuration := DefaultTokenExpiration
	if cfg.GetTokenExpiration() > 0 {
		cookieDuration = cfg.GetTokenExpiration()
	}

	cookieName := cfg.GetCookieName()
	if cookieName == "" {
		cookieName = DefaultCookieName
	}

	return &RouteAuthenticator{
		gate:           gate,
		cookieName:     cookieName,
		cookieDuration: cookieDuration,
		secureCookie:   cfg.GetSecureCookie(),
		Logger:         defLogger(),
	}
}

func (a *RouteAuthenticator) WithLogger(logger Logger) *RouteAuthenticator {
	if logger != nil {
		a.Logger = logger
	}
	return a
}

func (a *RouteAuthenticator) GetCookieDuration() time.Duration {
	return a.cookieDuration
}

func (a *RouteAuthenticator) CookieName() string {
	return a.cookieName
}

// ProtectedRoute resolves the request token into a *User, or answers with
// the gate error.
func (a *RouteAuthenticator) ProtectedRoute() fiber.Handler {
	return jwtware.New(jwtware.Config{
		ContextKey:  UserLocalsKey,
		TokenLookup: "cookie:" + a.cookieName + ",header:" + fiber.HeaderAuthorization,
		AuthScheme:  "Bearer",
		Authenticator: jwtware.AuthenticatorFunc(func(ctx context.Context, token string) (any, error) {
			return a.gate.Authenticate(ctx, token)
		}),
		ContextEnricher: func(ctx context.Context, identity any) context.Context {
			user, _ := identity.(*User)
			return WithUser(ctx, user)
		},
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if errors.Is(err, jwtware.ErrJWTMissingOrMalformed) {
				err = ErrAccessTokenRequired
			}
			return a.ErrorHandler(c, err)
		},
	})
}

// AuthorizeOwner compares the :param path segment to the current user id
func (a *RouteAuthenticator) AuthorizeOwner(param string) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, _ := CurrentUser(c)
		if err := AuthorizeOwner(user, c.Params(param)); err != nil {
			return a.ErrorHandler(c, err)
		}
		return c.Next()
	}
}

// RequireBody rejects POST and PUT requests that carry no body
func (a *RouteAuthenticator) RequireBody() fiber.Handler {
	return RequireBody()
}

// RequireBody rejects POST and PUT requests that carry no body
func RequireBody() fiber.Handler {
	return func(c *fiber.Ctx) error {
		switch c.Method() {
		case fiber.MethodPost, fiber.MethodPut:
			if len(c.Body()) == 0 {
				return WriteResult(c, Fail(fiber.StatusBadRequest, "Request body cannot be empty"))
			}
		}
		return c.Next()
	}
}

// Respond writes res, setting the session cookie when it carries a token
func (a *RouteAuthenticator) Respond(c *fiber.Ctx, res Result) error {
	if res.Token != "" {
		a.setCookieToken(c, res.Token)
	}
	return WriteResult(c, res)
}

// Logout expires the session cookie
func (a *RouteAuthenticator) Logout(c *fiber.Ctx) {
	a.cookieDel(c, a.cookieName)
}

// ErrorHandler renders err as a JSON failure envelope
func (a *RouteAuthenticator) ErrorHandler(c *fiber.Ctx, err error) error {
	var richErr *goerrors.Error
	if goerrors.As(err, &richErr) {
		a.Logger.Debug(
			"request rejected",
			"error", richErr.Message,
			"category", richErr.Category,
			"text_code", richErr.TextCode,
			"path", c.OriginalURL(),
			"details", print.MaybePrettyJSON(richErr.Metadata),
		)
	} else {
		a.Logger.Error("request failed", "error", err, "path", c.OriginalURL())
	}
	return WriteResult(c, ResultFromError(err))
}

// WriteResult writes res as JSON with its status
func WriteResult(c *fiber.Ctx, res Result) error {
	status := res.Status
	if status == 0 {
		status = fiber.StatusInternalServerError
	}
	return c.Status(status).JSON(res.Data)
}

func (a *RouteAuthenticator) setCookieToken(c *fiber.Ctx, val string) {
	c.Cookie(&fiber.Cookie{
		Name:     a.cookieName,
		Value:    val,
		Path:     "/",
		MaxAge:   int(a.cookieDuration.Seconds()),
		Expires:  time.Now().Add(a.cookieDuration),
		HTTPOnly: true,
		Secure:   a.secureCookie,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

func (a *RouteAuthenticator) cookieDel(c *fiber.Ctx, name string) {
	c.Cookie(&fiber.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   a.secureCookie,
		SameSite: fiber.CookieSameSiteStrictMode,
	})
}

package auth_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zelvyn/zelvyn-api"
)

type testConfig struct {
	secure bool
}

func (testConfig) GetSigningKey() string              { return "test-key" }
func (testConfig) GetIssuer() string                  { return "" }
func (testConfig) GetTokenExpiration() time.Duration  { return 0 }
func (testConfig) GetOTPTTL() time.Duration           { return 0 }
func (testConfig) GetCookieName() string              { return "" }
func (c testConfig) GetSecureCookie() bool            { return c.secure }
func (testConfig) GetDefaultRole() string             { return auth.RoleCustomer }
func (testConfig) GetUseHashID() bool                 { return false }
func (testConfig) GetPhoneRegion() string             { return "US" }

type httpFixture struct {
	*serviceFixture
	app    *fiber.App
	auther *auth.RouteAuthenticator
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	f := newServiceFixture(t)
	gate := auth.NewGate(auth.NewTokenVerifier(f.svc.TokenService(), f.federated), f.users)
	auther := auth.NewHTTPAuthenticator(gate, testConfig{})

	app := fiber.New()
	auth.RegisterAuthRoutes(app.Group("/api/auth"),
		auth.WithControllerService(f.svc),
		auth.WithControllerAuthenticator(auther),
	)

	app.Put("/api/things/:userId", auther.ProtectedRoute(), auther.AuthorizeOwner("userId"), func(c *fiber.Ctx) error {
		return auth.WriteResult(c, auth.Succeed(fiber.StatusOK, nil, "updated"))
	})

	return &httpFixture{serviceFixture: f, app: app, auther: auther}
}

func (h *httpFixture) do(t *testing.T, method, path, body string, mods ...func(*http.Request)) (*http.Response, auth.Envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	for _, mod := range mods {
		mod(req)
	}

	resp, err := h.app.Test(req)
	require.NoError(t, err)

	var env auth.Envelope
	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp, env
}

func bearer(token string) func(*http.Request) {
	return func(r *http.Request) {
		r.Header.Set("Authorization", "Bearer "+token)
	}
}

func sessionCookie(resp *http.Response) *http.Cookie {
	for _, c := range resp.Cookies() {
		if c.Name == auth.DefaultCookieName {
			return c
		}
	}
	return nil
}

func TestHTTP_SignupSetsCookie(t *testing.T) {
	h := newHTTPFixture(t)

	resp, env := h.do(t, http.MethodPost, "/api/auth/signup",
		`{"name":"Ann","email":"a@x.com","password":"Secret1!","role":"CUSTOMER"}`)

	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	user, ok := data["user"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "a@x.com", user["email"])
	assert.NotContains(t, user, "password_hash")
	assert.NotContains(t, user, "PasswordHash")
	assert.NotEmpty(t, data["token"])

	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)
	assert.Equal(t, data["token"], cookie.Value)
	assert.True(t, cookie.HttpOnly)
	assert.Equal(t, http.SameSiteStrictMode, cookie.SameSite)
	assert.Equal(t, int(auth.DefaultTokenExpiration.Seconds()), cookie.MaxAge)

	h.wait(t)
}

func TestHTTP_EmptyBody(t *testing.T) {
	h := newHTTPFixture(t)

	resp, env := h.do(t, http.MethodPost, "/api/auth/login", "")
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Request body cannot be empty", env.Message)
	assert.False(t, env.Success)
}

func TestHTTP_LoginFailureHasNoCookie(t *testing.T) {
	h := newHTTPFixture(t)
	h.localUser(t, "a@x.com")

	resp, env := h.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"wrong-one"}`)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid email or password", env.Message)
	assert.Nil(t, sessionCookie(resp))
}

func TestHTTP_MeAndLogout(t *testing.T) {
	h := newHTTPFixture(t)
	h.localUser(t, "a@x.com")

	resp, _ := h.do(t, http.MethodPost, "/api/auth/login", `{"email":"a@x.com","password":"Secret1!"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	cookie := sessionCookie(resp)
	require.NotNil(t, cookie)

	resp, env := h.do(t, http.MethodGet, "/api/auth/me", "", func(r *http.Request) { r.AddCookie(cookie) })
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	data := env.Data.(map[string]any)
	assert.Equal(t, "a@x.com", data["user"].(map[string]any)["email"])

	resp, env = h.do(t, http.MethodGet, "/api/auth/me", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access token required", env.Message)

	resp, env = h.do(t, http.MethodGet, "/api/auth/me", "", bearer("garbage"))
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Invalid or expired token", env.Message)

	resp, _ = h.do(t, http.MethodPost, "/api/auth/logout", "")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	cleared := sessionCookie(resp)
	require.NotNil(t, cleared)
	assert.Empty(t, cleared.Value)
}

func TestHTTP_OwnershipGate(t *testing.T) {
	h := newHTTPFixture(t)
	alice := h.localUser(t, "alice@x.com")
	bob := h.localUser(t, "bob@x.com")

	aliceToken, err := h.svc.TokenService().Generate(auth.NewIdentityFromUser(alice))
	require.NoError(t, err)

	resp, env := h.do(t, http.MethodPut, "/api/things/"+alice.ID.String(), `{"x":1}`, bearer(aliceToken))
	assert.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, env = h.do(t, http.MethodPut, "/api/things/"+bob.ID.String(), `{"x":1}`, bearer(aliceToken))
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied. You can only access your own profile", env.Message)
}

func TestHTTP_PasswordResetFlow(t *testing.T) {
	h := newHTTPFixture(t)
	h.localUser(t, "a@x.com")

	resp, _ := h.do(t, http.MethodPost, "/api/auth/forgot-password", `{"email":"unknown@x.com"}`)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp, _ = h.do(t, http.MethodPost, "/api/auth/forgot-password", `{"email":"a@x.com"}`)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	code := h.notifier.code(auth.PurposePasswordReset, "a@x.com")

	resp, _ = h.do(t, http.MethodPost, "/api/auth/verify-otp", `{"email":"a@x.com","otp":"`+code+`"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body := `{"email":"a@x.com","otp":"` + code + `","newPassword":"n3w-pass","confirmPassword":"n3w-pass"}`
	resp, _ = h.do(t, http.MethodPost, "/api/auth/reset-password", body)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env := h.do(t, http.MethodPost, "/api/auth/reset-password", body)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid or expired OTP.", env.Message)
}

func TestHTTP_InvalidJSON(t *testing.T) {
	h := newHTTPFixture(t)

	resp, env := h.do(t, http.MethodPost, "/api/auth/signup", `{"name":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.False(t, env.Success)
}

package profiles_test

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zelvyn/zelvyn-api"
	"github.com/zelvyn/zelvyn-api/config"
	"github.com/zelvyn/zelvyn-api/profiles"
)

type httpFixture struct {
	*fixture
	app    *fiber.App
	tokens *auth.TokenService
}

func newHTTPFixture(t *testing.T) *httpFixture {
	t.Helper()
	f := newFixture(t)

	cfg := config.Default()
	cfg.Auth.SigningKey = "profiles-test-key"

	tokens := auth.NewTokenService([]byte(cfg.GetSigningKey()), cfg.GetTokenExpiration())
	gate := auth.NewGate(auth.NewTokenVerifier(tokens, nil), f.users)
	auther := auth.NewHTTPAuthenticator(gate, cfg)

	app := fiber.New()
	profiles.NewController(f.svc, auther, discardLogger()).RegisterRoutes(app.Group("/api/profiles"))

	return &httpFixture{fixture: f, app: app, tokens: tokens}
}

func (f *httpFixture) tokenFor(t *testing.T, user *auth.User) string {
	t.Helper()
	token, err := f.tokens.Generate(auth.NewIdentityFromUser(user))
	require.NoError(t, err)
	return token
}

func (f *httpFixture) do(t *testing.T, method, path, body, token string) (*http.Response, auth.Envelope) {
	t.Helper()
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := f.app.Test(req)
	require.NoError(t, err)

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	var env auth.Envelope
	require.NoError(t, json.Unmarshal(raw, &env), string(raw))
	return resp, env
}

func TestController_ArtistRoutes(t *testing.T) {
	f := newHTTPFixture(t)
	ann := f.register(t, "a@x.com", "ann", auth.RoleArtist)
	bea := f.register(t, "b@x.com", "bea", auth.RoleArtist)
	annToken := f.tokenFor(t, ann)
	beaToken := f.tokenFor(t, bea)

	resp, env := f.do(t, http.MethodPost, "/api/profiles/artists", `{"displayName":"Ann Art"}`, "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, "Access token required", env.Message)

	resp, env = f.do(t, http.MethodPost, "/api/profiles/artists", `{"displayName":"Ann Art","skills":["ink"]}`, annToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)
	assert.True(t, env.Success)

	data, ok := env.Data.(map[string]any)
	require.True(t, ok)
	artistID, _ := data["artistId"].(string)
	require.NotEmpty(t, artistID)
	assert.Equal(t, ann.ID.String(), data["userId"])

	resp, env = f.do(t, http.MethodGet, "/api/profiles/artists", "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	list, ok := env.Data.([]any)
	require.True(t, ok)
	assert.Len(t, list, 1)

	resp, env = f.do(t, http.MethodGet, "/api/profiles/artists/"+artistID, "", "")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	view := env.Data.(map[string]any)
	assert.Equal(t, "Ann", view["name"])
	assert.Equal(t, "Ann Art", view["displayName"])

	resp, env = f.do(t, http.MethodPut, "/api/profiles/artists/"+ann.ID.String(), `{"bio":"hi"}`, beaToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)
	assert.Equal(t, "Access denied. You can only access your own profile", env.Message)

	resp, env = f.do(t, http.MethodPut, "/api/profiles/artists/"+ann.ID.String(), `{"bio":"hi"}`, annToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)
	assert.Equal(t, "hi", env.Data.(map[string]any)["bio"])

	resp, _ = f.do(t, http.MethodPut, "/api/profiles/artists/"+ann.ID.String(), "", annToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	resp, env = f.do(t, http.MethodPost, "/api/profiles/artists", `{"displayName":`, annToken)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	assert.Equal(t, "Invalid request body", env.Message)

	resp, _ = f.do(t, http.MethodDelete, "/api/profiles/artists/"+ann.ID.String(), "", beaToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env = f.do(t, http.MethodDelete, "/api/profiles/artists/"+ann.ID.String(), "", annToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "Artist profile deleted successfully", env.Message)

	resp, _ = f.do(t, http.MethodGet, "/api/profiles/artists/"+artistID, "", "")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestController_CustomerRoutes(t *testing.T) {
	f := newHTTPFixture(t)
	cara := f.register(t, "c@x.com", "cara", auth.RoleCustomer)
	dan := f.register(t, "d@x.com", "dan", auth.RoleCustomer)
	caraToken := f.tokenFor(t, cara)
	path := "/api/profiles/customers/" + cara.ID.String()

	resp, env := f.do(t, http.MethodPost, "/api/profiles/customers",
		`{"userId":"`+dan.ID.String()+`","displayName":"Dan"}`, caraToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode, env.Message)

	resp, env = f.do(t, http.MethodPost, "/api/profiles/customers", `{"displayName":"Cara","interests":["murals"]}`, caraToken)
	require.Equal(t, http.StatusCreated, resp.StatusCode, env.Message)

	resp, _ = f.do(t, http.MethodGet, path, "", "")
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	resp, _ = f.do(t, http.MethodGet, "/api/profiles/customers/"+dan.ID.String(), "", caraToken)
	assert.Equal(t, http.StatusForbidden, resp.StatusCode)

	resp, env = f.do(t, http.MethodGet, path, "", caraToken)
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "c@x.com", env.Data.(map[string]any)["email"])

	resp, env = f.do(t, http.MethodPut, path, `{"preferences":{"budget":"low"}}`, caraToken)
	require.Equal(t, http.StatusOK, resp.StatusCode, env.Message)

	resp, _ = f.do(t, http.MethodDelete, path, "", caraToken)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, env = f.do(t, http.MethodGet, path, "", caraToken)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
	assert.Equal(t, "Customer profile not found.", env.Message)

}

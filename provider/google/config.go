package google

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/zelvyn/zelvyn-api"
)

// DefaultJWKSURL serves Google's current signing keys
const DefaultJWKSURL = "https://www.googleapis.com/oauth2/v3/certs"

// Config holds Google ID token validation settings.
type Config struct {
	// ClientID is the OAuth client id tokens must be issued for.
	ClientID string

	// JWKSURL overrides where signing keys are fetched from.
	// Default: DefaultJWKSURL.
	JWKSURL string

	// Issuers lists accepted iss values.
	// Default: auth.FederatedIssuers.
	Issuers []string

	// RefreshInterval is how often keys are refreshed in the background.
	// Default: 1 hour.
	RefreshInterval time.Duration

	// Keyfunc replaces the remote key set, mostly for tests.
	Keyfunc jwt.Keyfunc

	// Clock overrides the time used for exp and iat checks.
	Clock auth.Clock

	// Ctx bounds the background key refresh.
	// Default: context.Background.
	Ctx context.Context

	Logger auth.Logger
}

// DefaultConfig returns a Config for clientID with the public key endpoint.
func DefaultConfig(clientID string) Config {
	return Config{
		ClientID:        clientID,
		JWKSURL:         DefaultJWKSURL,
		Issuers:         auth.FederatedIssuers,
		RefreshInterval: time.Hour,
	}
}

package google

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/MicahParks/keyfunc/v2"
	"github.com/golang-jwt/jwt/v5"

	"github.com/zelvyn/zelvyn-api"
)

// IDTokenClaims is the subset of a Google ID token we read
type IDTokenClaims struct {
	jwt.RegisteredClaims
	Email         string `json:"email"`
	EmailVerified *bool  `json:"email_verified,omitempty"`
	Name          string `json:"name"`
	Picture       string `json:"picture"`
}

// TokenValidator verifies Google ID tokens against Google's published keys
// and this application's client id.
type TokenValidator struct {
	config  Config
	keyfunc jwt.Keyfunc
	jwks    *keyfunc.JWKS
	logger  auth.Logger
}

var _ auth.FederatedVerifier = (*TokenValidator)(nil)

// NewTokenValidator creates a validator. Unless cfg.Keyfunc is set, the key
// set is fetched now and refreshed in the background until Close.
func NewTokenValidator(cfg Config) (*TokenValidator, error) {
	if strings.TrimSpace(cfg.ClientID) == "" {
		return nil, fmt.Errorf("google: client id is required")
	}

	if len(cfg.Issuers) == 0 {
		cfg.Issuers = auth.FederatedIssuers
	}
	if cfg.Clock == nil {
		cfg.Clock = time.Now
	}

	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default().With("component", "google")
	}

	v := &TokenValidator{
		config:  cfg,
		keyfunc: cfg.Keyfunc,
		logger:  logger,
	}

	if v.keyfunc == nil {
		jwksURL := cfg.JWKSURL
		if jwksURL == "" {
			jwksURL = DefaultJWKSURL
		}

		jwks, err := keyfunc.Get(jwksURL, keyfuncOptions(cfg, logger))
		if err != nil {
			return nil, fmt.Errorf("google: failed to get JWKS: %w", err)
		}
		v.jwks = jwks
		v.keyfunc = jwks.Keyfunc
	}

	return v, nil
}

func keyfuncOptions(cfg Config, logger auth.Logger) keyfunc.Options {
	interval := cfg.RefreshInterval
	if interval <= 0 {
		interval = time.Hour
	}

	ctx := cfg.Ctx
	if ctx == nil {
		ctx = context.Background()
	}

	return keyfunc.Options{
		Ctx: ctx,
		RefreshErrorHandler: func(err error) {
			logger.Warn("failed to do a background refresh of JWT set", "error", err)
		},
		RefreshInterval:   interval,
		RefreshRateLimit:  time.Minute * 5,
		RefreshTimeout:    time.Second * 10,
		RefreshUnknownKID: true,
	}
}

// Verify implements auth.FederatedVerifier. Every failure is reported as
// auth.ErrInvalidFederatedToken; the cause is only kept as the source.
func (v *TokenValidator) Verify(ctx context.Context, idToken string) (*auth.FederatedIdentity, error) {
	if err := ctx.Err(); err != nil {
		return nil, invalid(err)
	}

	claims := &IDTokenClaims{}
	token, err := jwt.ParseWithClaims(idToken, claims, v.keyfunc,
		jwt.WithValidMethods([]string{jwt.SigningMethodRS256.Alg()}),
		jwt.WithAudience(v.config.ClientID),
		jwt.WithExpirationRequired(),
		jwt.WithIssuedAt(),
		jwt.WithTimeFunc(v.config.Clock),
	)
	if err != nil {
		v.logger.Debug("google id token rejected", "error", err)
		return nil, invalid(err)
	}

	if !token.Valid {
		return nil, invalid(fmt.Errorf("token not valid"))
	}

	if !v.knownIssuer(claims.Issuer) {
		return nil, invalid(fmt.Errorf("unexpected issuer %q", claims.Issuer))
	}

	if claims.Email == "" {
		return nil, invalid(fmt.Errorf("token has no email"))
	}

	if claims.EmailVerified != nil && !*claims.EmailVerified {
		return nil, invalid(fmt.Errorf("email not verified by provider"))
	}

	return &auth.FederatedIdentity{
		Email:   claims.Email,
		Name:    claims.Name,
		Picture: claims.Picture,
		Subject: claims.Subject,
	}, nil
}

// Close stops the background key refresh
func (v *TokenValidator) Close() {
	if v.jwks != nil {
		v.jwks.EndBackground()
	}
}

func (v *TokenValidator) knownIssuer(iss string) bool {
	for _, known := range v.config.Issuers {
		if iss == known {
			return true
		}
	}
	return false
}

func invalid(cause error) error {
	clone := auth.ErrInvalidFederatedToken.Clone()
	clone.Source = cause
	return clone.WithMetadata(map[string]any{
		"provider": "google",
		"cause":    cause.Error(),
	})
}

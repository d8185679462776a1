package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
)

// DefaultTokenExpiration is the session token lifetime
const DefaultTokenExpiration = 30 * 24 * time.Hour

// TokenService issues and verifies HS256 session tokens
type TokenService struct {
	signingKey []byte
	expiration time.Duration
	issuer     string
	logger     Logger
	now        Clock
}

// TokenServiceOption configures a TokenService
type TokenServiceOption func(*TokenService)

// WithTokenIssuer sets the iss claim, which Verify then requires
func WithTokenIssuer(issuer string) TokenServiceOption {
	return func(ts *TokenService) {
		ts.issuer = issuer
	}
}

// WithTokenClock sets the time source used for iat, exp and validation
func WithTokenClock(now Clock) TokenServiceOption {
	return func(ts *TokenService) {
		if now != nil {
			ts.now = now
		}
	}
}

// WithTokenLogger sets the logger
func WithTokenLogger(logger Logger) TokenServiceOption {
	return func(ts *TokenService) {
		if logger != nil {
			ts.logger = logger
		}
	}
}

// NewTokenService creates a new TokenService. A zero expiration falls back
// to DefaultTokenExpiration.
func NewTokenService(signingKey []byte, expiration time.Duration, opts ...TokenServiceOption) *TokenService {
	if expiration <= 0 {
		expiration = DefaultTokenExpiration
	}

	ts := &TokenService{
		signingKey: signingKey,
		expiration: expiration,
		logger:     defLogger(),
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(ts)
	}
	return ts
}

// Expiration returns the configured token lifetime
func (ts *TokenService) Expiration() time.Duration {
	return ts.expiration
}

// Generate issues a token for identity
func (ts *TokenService) Generate(identity Identity) (string, error) {
	if identity == nil {
		return "", goerrors.New("identity must not be nil", goerrors.CategoryInternal)
	}
	return ts.Issue(ClaimsFromIdentity(identity))
}

// Issue fills in the registered claims and signs them
func (ts *TokenService) Issue(claims *SessionClaims) (string, error) {
	if claims == nil {
		return "", goerrors.New("claims must not be nil", goerrors.CategoryInternal)
	}

	now := ts.now()
	claims.Issuer = ts.issuer
	if claims.Subject == "" {
		claims.Subject = claims.UserID
	}
	claims.RegisteredClaims.IssuedAt = jwt.NewNumericDate(now)
	claims.ExpiresAt = jwt.NewNumericDate(now.Add(ts.expiration))
	ensureTokenID(&claims.RegisteredClaims)

	return ts.SignClaims(claims)
}

// SignClaims signs claims as is using the configured signing key.
func (ts *TokenService) SignClaims(claims *SessionClaims) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedString, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign JWT")
	}

	return signedString, nil
}

// Verify parses and validates a token string. Every failure is ErrInvalidToken.
func (ts *TokenService) Verify(tokenString string) (*SessionClaims, error) {
	parserOptions := []jwt.ParserOption{
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(ts.now),
	}
	if ts.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(ts.issuer))
	}

	token, err := jwt.ParseWithClaims(tokenString, &SessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Debug("token service verify encountered unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, parserOptions...)

	if err != nil {
		ts.logger.Debug("token service verify failed", "error", err)
		return nil, ErrInvalidToken
	}

	claims, ok := token.Claims.(*SessionClaims)
	if !ok || !token.Valid || claims.UserEmail == "" {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

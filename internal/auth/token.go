package auth

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// ErrInvalidToken is returned for any token that fails validation:
// bad signature, expired, or malformed. Callers cannot distinguish the
// cases, deliberately.
var ErrInvalidToken = errors.New("invalid token")

// TokenIssuer signs and validates symmetric-key JWTs.
type TokenIssuer struct {
	secret     []byte
	method     *jwt.SigningMethodHMAC
	defaultTTL time.Duration

	// now is the clock used for expiry; overridable in tests.
	now func() time.Time
}

// NewTokenIssuer constructs a TokenIssuer for the named HMAC algorithm
// (HS256, HS384, or HS512).
func NewTokenIssuer(secret, algorithm string, defaultTTL time.Duration) (*TokenIssuer, error) {
	if secret == "" {
		return nil, errors.New("jwt secret is required")
	}
	method, ok := jwt.GetSigningMethod(algorithm).(*jwt.SigningMethodHMAC)
	if !ok || method == nil {
		return nil, fmt.Errorf("unsupported jwt algorithm %q", algorithm)
	}
	if defaultTTL <= 0 {
		return nil, errors.New("jwt default ttl must be positive")
	}
	return &TokenIssuer{
		secret:     []byte(secret),
		method:     method,
		defaultTTL: defaultTTL,
		now:        time.Now,
	}, nil
}

// Issue signs a token carrying the given claims plus an "exp" claim of
// now + ttl. A non-positive ttl applies the configured default.
func (t *TokenIssuer) Issue(claims map[string]any, ttl time.Duration) (string, error) {
	if ttl <= 0 {
		ttl = t.defaultTTL
	}

	payload := jwt.MapClaims{}
	for key, value := range claims {
		payload[key] = value
	}
	payload["exp"] = jwt.NewNumericDate(t.now().Add(ttl))

	token := jwt.NewWithClaims(t.method, payload)
	return token.SignedString(t.secret)
}

// Validate verifies the token's signature and expiry and returns its
// claims. Every failure mode normalizes to ErrInvalidToken.
func (t *TokenIssuer) Validate(tokenString string) (map[string]any, error) {
	claims := jwt.MapClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (any, error) {
		if token.Method != t.method {
			return nil, errors.New("unexpected signing method")
		}
		return t.secret, nil
	}, jwt.WithTimeFunc(t.now), jwt.WithExpirationRequired())
	if err != nil || !token.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

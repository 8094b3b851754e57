package auth

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// Claims is the fixed claim set carried by every token: audience, issuer,
// subject (the principal name) and expiry. Nothing else is trusted from the
// payload; permissions are re-evaluated per request against live policy.
type Claims struct {
	jwt.RegisteredClaims
}

// TokenCodec issues and verifies signed, time-limited identity tokens using
// a single process-wide symmetric key.
type TokenCodec struct {
	secret   []byte
	method   jwt.SigningMethod
	audience string
	issuer   string
	now      func() time.Time
}

// CodecOption configures TokenCodec behavior.
type CodecOption func(*TokenCodec) error

// WithCodecClock overrides the time source (useful for tests).
func WithCodecClock(fn func() time.Time) CodecOption {
	return func(c *TokenCodec) error {
		if fn != nil {
			c.now = fn
		}
		return nil
	}
}

// NewTokenCodec constructs a codec for the given HMAC algorithm. Only
// symmetric schemes are accepted; the secret is shared configuration.
func NewTokenCodec(secret, algorithm, audience, issuer string, opts ...CodecOption) (*TokenCodec, error) {
	secret = strings.TrimSpace(secret)
	if secret == "" {
		return nil, errors.New("auth: signing secret is required")
	}
	method := jwt.GetSigningMethod(strings.TrimSpace(algorithm))
	if method == nil {
		return nil, errors.New("auth: unknown signing algorithm " + algorithm)
	}
	if _, ok := method.(*jwt.SigningMethodHMAC); !ok {
		return nil, errors.New("auth: signing algorithm must be an HMAC scheme")
	}
	c := &TokenCodec{
		secret:   []byte(secret),
		method:   method,
		audience: strings.TrimSpace(audience),
		issuer:   strings.TrimSpace(issuer),
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Issue signs a token for the subject expiring ttl from now (UTC).
func (c *TokenCodec) Issue(subject string, ttl time.Duration) (string, time.Time, error) {
	subject = strings.TrimSpace(subject)
	if subject == "" {
		return "", time.Time{}, errors.New("auth: subject is required")
	}
	if ttl <= 0 {
		return "", time.Time{}, errors.New("auth: ttl must be greater than zero")
	}
	now := c.now().UTC()
	expiresAt := now.Add(ttl)
	claims := Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Audience:  jwt.ClaimStrings{c.audience},
			Issuer:    c.issuer,
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
			ID:        uuid.NewString(),
		},
	}
	signed, err := jwt.NewWithClaims(c.method, claims).SignedString(c.secret)
	if err != nil {
		return "", time.Time{}, err
	}
	return signed, expiresAt, nil
}

// Decode verifies signature, expiry, audience and issuer, and cross-checks
// the signed subject against the identity the client asserted out-of-band.
// Neither side of that pair is trusted alone: a valid token for user A must
// not pass while the request claims to be user B.
func (c *TokenCodec) Decode(token, expectedSubject string) (*Claims, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, ErrEmptyToken
	}
	expectedSubject = strings.TrimSpace(expectedSubject)
	if expectedSubject == "" {
		return nil, ErrInvalidClaims
	}

	claims := &Claims{}
	parsed, err := jwt.ParseWithClaims(token, claims, func(t *jwt.Token) (any, error) {
		if t.Method.Alg() != c.method.Alg() {
			return nil, ErrInvalidToken
		}
		return c.secret, nil
	},
		jwt.WithValidMethods([]string{c.method.Alg()}),
		jwt.WithAudience(c.audience),
		jwt.WithIssuer(c.issuer),
		jwt.WithSubject(expectedSubject),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(func() time.Time { return c.now().UTC() }),
	)
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, jwt.ErrTokenInvalidAudience),
			errors.Is(err, jwt.ErrTokenInvalidIssuer),
			errors.Is(err, jwt.ErrTokenInvalidSubject),
			errors.Is(err, jwt.ErrTokenRequiredClaimMissing):
			return nil, ErrInvalidClaims
		default:
			return nil, ErrInvalidToken
		}
	}
	if !parsed.Valid {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

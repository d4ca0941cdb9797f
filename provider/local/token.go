package local

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	goerrors "github.com/goliatone/go-errors"
	"github.com/google/uuid"

	session "github.com/edustack/go-session"
)

// errTokenStale marks tokens that are expired or otherwise unusable; a
// stale token means "no session", not a failure.
var errTokenStale = errors.New("stale session token")

type sessionClaims struct {
	jwt.RegisteredClaims
	Email string `json:"email,omitempty"`
}

// tokenCodec signs and validates the provider's session tokens.
type tokenCodec struct {
	signingKey []byte
	issuer     string
	ttl        time.Duration
	logger     session.Logger
}

func newTokenCodec(signingKey []byte, issuer string, ttl time.Duration, logger session.Logger) *tokenCodec {
	return &tokenCodec{
		signingKey: signingKey,
		issuer:     issuer,
		ttl:        ttl,
		logger:     logger,
	}
}

func (c *tokenCodec) sign(identity session.Identity) (string, error) {
	now := time.Now()
	claims := &sessionClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    c.issuer,
			Subject:   identity.ID(),
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(c.ttl)),
		},
		Email: identity.Email(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(c.signingKey)
	if err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to sign session token")
	}

	return signed, nil
}

// parse validates a stored token. Expired or malformed tokens come back as
// errTokenStale so callers can treat them as an absent session.
func (c *tokenCodec) parse(raw string) (*sessionClaims, error) {
	parserOptions := make([]jwt.ParserOption, 0, 1)
	if c.issuer != "" {
		parserOptions = append(parserOptions, jwt.WithIssuer(c.issuer))
	}

	token, err := jwt.ParseWithClaims(raw, &sessionClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			c.logger.Error("session token has unexpected signing method", "alg", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return c.signingKey, nil
	}, parserOptions...)

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, errTokenStale
		}
		c.logger.Debug("session token rejected", "error", err)
		return nil, errTokenStale
	}

	claims, ok := token.Claims.(*sessionClaims)
	if !ok || !token.Valid {
		return nil, errTokenStale
	}

	return claims, nil
}

// Package token mints and validates the HS256 bearer tokens handed to admins.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/jonboulle/clockwork"

	"github.com/ovaphlow/pitchfork/service-mfo-admin/internal/apperr"
)

const DefaultTTL = 24 * time.Hour

// Claims is the token payload. AdminID is the only application claim.
type Claims struct {
	AdminID string `json:"admin_id"`
	jwt.RegisteredClaims
}

// Issuer holds the signing secret for the life of the process. Tokens are
// stateless: issuing one never revokes another.
type Issuer struct {
	secret []byte
	ttl    time.Duration
	issuer string
	clock  clockwork.Clock
}

type Option func(*Issuer)

func WithTTL(ttl time.Duration) Option {
	return func(i *Issuer) {
		if ttl > 0 {
			i.ttl = ttl
		}
	}
}

func WithIssuer(name string) Option {
	return func(i *Issuer) { i.issuer = name }
}

func WithClock(c clockwork.Clock) Option {
	return func(i *Issuer) { i.clock = c }
}

// NewIssuer copies secret; an empty secret is rejected.
func NewIssuer(secret string, opts ...Option) (*Issuer, error) {
	if secret == "" {
		return nil, errors.New("token secret is empty")
	}
	i := &Issuer{
		secret: []byte(secret),
		ttl:    DefaultTTL,
		issuer: "mfo-admin",
		clock:  clockwork.NewRealClock(),
	}
	for _, o := range opts {
		o(i)
	}
	return i, nil
}

// Issue signs a token for adminID and returns it with its expiry.
func (i *Issuer) Issue(adminID string) (string, time.Time, error) {
	now := i.clock.Now()
	exp := now.Add(i.ttl)
	claims := &Claims{
		AdminID: adminID,
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    i.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse verifies signature and expiry and returns the admin id. Every
// failure is Unauthorized.
func (i *Issuer) Parse(raw string) (string, error) {
	if raw == "" {
		return "", apperr.Unauthorizedf("missing token")
	}
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return i.secret, nil
	},
		jwt.WithTimeFunc(i.clock.Now),
		jwt.WithExpirationRequired(),
		jwt.WithIssuer(i.issuer),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return "", apperr.Wrap(apperr.Unauthorized, err, "token expired")
		}
		return "", apperr.Wrap(apperr.Unauthorized, err, "invalid token")
	}
	if !tok.Valid || claims.AdminID == "" {
		return "", apperr.Unauthorizedf("invalid token")
	}
	return claims.AdminID, nil
}

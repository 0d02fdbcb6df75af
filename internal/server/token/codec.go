// Package token issues and verifies the signed access and refresh tokens
// that make up a session.
package token

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// DefaultIssuer is used when Config.Issuer is empty.
const DefaultIssuer = "vidtube"

// Class различает access и refresh токены
type Class string

const (
	ClassAccess  Class = "access"
	ClassRefresh Class = "refresh"
)

// Claims представляет JWT claims токена сессии.
// Subject содержит ID пользователя.
type Claims struct {
	Class Class `json:"cls"`
	jwt.RegisteredClaims
}

// Config содержит секреты и время жизни токенов
type Config struct {
	AccessSecret  string
	RefreshSecret string
	Issuer        string
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
}

// Codec signs and verifies tokens. It holds no mutable state and is safe
// for concurrent use.
type Codec struct {
	now     func() time.Time
	secrets map[Class][]byte
	ttls    map[Class]time.Duration
	issuer  string
}

// Option configures a Codec.
type Option func(*Codec)

// WithClock overrides the time source, used by tests.
func WithClock(now func() time.Time) Option {
	return func(c *Codec) {
		c.now = now
	}
}

// NewCodec creates a codec. Both secrets must be set and must differ,
// so that a token of one class never verifies as the other.
func NewCodec(cfg Config, opts ...Option) (*Codec, error) {
	if cfg.AccessSecret == "" || cfg.RefreshSecret == "" {
		return nil, errors.New("access and refresh token secrets are required")
	}
	if cfg.AccessSecret == cfg.RefreshSecret {
		return nil, errors.New("access and refresh token secrets must differ")
	}
	if cfg.AccessTTL <= 0 || cfg.RefreshTTL <= 0 {
		return nil, errors.New("token TTLs must be positive")
	}

	issuer := cfg.Issuer
	if issuer == "" {
		issuer = DefaultIssuer
	}

	c := &Codec{
		now: time.Now,
		secrets: map[Class][]byte{
			ClassAccess:  []byte(cfg.AccessSecret),
			ClassRefresh: []byte(cfg.RefreshSecret),
		},
		ttls: map[Class]time.Duration{
			ClassAccess:  cfg.AccessTTL,
			ClassRefresh: cfg.RefreshTTL,
		},
		issuer: issuer,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// TTL returns the lifetime of tokens of the given class.
func (c *Codec) TTL(class Class) time.Duration {
	return c.ttls[class]
}

// Issue создает подписанный токен класса class для пользователя subjectID
func (c *Codec) Issue(subjectID string, class Class) (string, time.Time, error) {
	secret, ok := c.secrets[class]
	if !ok {
		return "", time.Time{}, fmt.Errorf("unknown token class %q", class)
	}
	if subjectID == "" {
		return "", time.Time{}, errors.New("token subject is required")
	}

	now := c.now()
	expiresAt := now.Add(c.ttls[class])

	claims := Claims{
		Class: class,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subjectID,
			Issuer:    c.issuer,
			ID:        uuid.NewString(),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(expiresAt),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("failed to sign token: %w", err)
	}

	return signed, expiresAt, nil
}

// Verify проверяет подпись, срок действия и класс токена
func (c *Codec) Verify(tokenString string, class Class) (*Claims, error) {
	secret, ok := c.secrets[class]
	if !ok {
		return nil, fmt.Errorf("unknown token class %q", class)
	}
	if tokenString == "" {
		return nil, ErrMalformed
	}

	claims := &Claims{}
	_, err := jwt.ParseWithClaims(tokenString, claims, func(*jwt.Token) (any, error) {
		return secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(c.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(c.now),
	)
	if err != nil {
		return nil, classify(err)
	}

	if claims.Class != class {
		return nil, ErrWrongClass
	}
	if claims.Subject == "" {
		return nil, ErrMalformed
	}

	return claims, nil
}

func classify(err error) error {
	switch {
	case errors.Is(err, jwt.ErrTokenExpired):
		return ErrExpired
	case errors.Is(err, jwt.ErrTokenSignatureInvalid):
		return ErrInvalidSignature
	default:
		return fmt.Errorf("%w: %w", ErrMalformed, err)
	}
}

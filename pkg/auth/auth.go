// Package auth issues and verifies the service's HS256 bearer tokens and
// hashes user passwords with bcrypt.
package auth

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"pizza-hq/pizzeria/pkg/config"
)

var (
	// ErrInvalidToken is returned for malformed, expired, foreign or revoked tokens.
	ErrInvalidToken = errors.New("invalid token")

	// ErrInvalidCredentials is returned when a password does not match.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Role is a user's permission level.
type Role string

const (
	RoleDiner      Role = "diner"
	RoleFranchisee Role = "franchisee"
	RoleAdmin      Role = "admin"
)

// Identity is the subject a token is issued for.
type Identity struct {
	UserID int64
	Name   string
	Email  string
	Roles  []Role
}

// HasRole reports whether the identity carries role.
func (id Identity) HasRole(role Role) bool {
	for _, r := range id.Roles {
		if r == role {
			return true
		}
	}
	return false
}

// Claims are the token's JWT claims.
type Claims struct {
	UserID int64  `json:"uid"`
	Name   string `json:"name"`
	Email  string `json:"email"`
	Roles  []Role `json:"roles"`
	jwt.RegisteredClaims
}

// Identity returns the subject of the claims.
func (c *Claims) Identity() Identity {
	return Identity{UserID: c.UserID, Name: c.Name, Email: c.Email, Roles: c.Roles}
}

// Issuer signs, verifies and revokes tokens. Revocations are held in
// memory until the token would have expired anyway.
type Issuer struct {
	secret []byte
	issuer string
	ttl    time.Duration
	now    func() time.Time

	mu      sync.Mutex
	revoked map[string]time.Time
}

// Option configures an Issuer.
type Option func(*Issuer)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(i *Issuer) { i.now = now }
}

// NewIssuer creates an Issuer from the auth configuration.
func NewIssuer(cfg config.AuthConfig, opts ...Option) *Issuer {
	i := &Issuer{
		secret:  []byte(cfg.JWTSecret),
		issuer:  cfg.Issuer,
		ttl:     cfg.TokenTTL,
		now:     time.Now,
		revoked: make(map[string]time.Time),
	}
	if i.issuer == "" {
		i.issuer = config.DefaultIssuer
	}
	if i.ttl <= 0 {
		i.ttl = config.DefaultTokenTTL
	}
	for _, opt := range opts {
		opt(i)
	}
	return i
}

// Issue signs a new token for id.
func (i *Issuer) Issue(id Identity) (string, error) {
	now := i.now()
	claims := &Claims{
		UserID: id.UserID,
		Name:   id.Name,
		Email:  id.Email,
		Roles:  id.Roles,
		RegisteredClaims: jwt.RegisteredClaims{
			ID:        uuid.NewString(),
			Issuer:    i.issuer,
			Subject:   fmt.Sprintf("%d", id.UserID),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(i.ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(i.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses and validates a token. Any failure is reported as
// ErrInvalidToken wrapping the cause.
func (i *Issuer) Verify(token string) (*Claims, error) {
	claims := &Claims{}
	_, err := jwt.ParseWithClaims(token, claims, func(*jwt.Token) (any, error) {
		return i.secret, nil
	},
		jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}),
		jwt.WithIssuer(i.issuer),
		jwt.WithExpirationRequired(),
		jwt.WithTimeFunc(i.now),
	)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}

	i.mu.Lock()
	_, revoked := i.revoked[claims.ID]
	i.mu.Unlock()
	if revoked {
		return nil, fmt.Errorf("%w: revoked", ErrInvalidToken)
	}
	return claims, nil
}

// Revoke invalidates a verified token for the rest of its lifetime.
func (i *Issuer) Revoke(claims *Claims) {
	now := i.now()
	exp := now.Add(i.ttl)
	if claims.ExpiresAt != nil {
		exp = claims.ExpiresAt.Time
	}

	i.mu.Lock()
	defer i.mu.Unlock()
	for id, until := range i.revoked {
		if !until.After(now) {
			delete(i.revoked, id)
		}
	}
	i.revoked[claims.ID] = exp
}

// Revoked returns the number of tracked revocations.
func (i *Issuer) Revoked() int {
	i.mu.Lock()
	defer i.mu.Unlock()
	return len(i.revoked)
}

// PasswordCost is the bcrypt work factor used by HashPassword.
var PasswordCost = bcrypt.DefaultCost

// HashPassword returns the bcrypt hash of password.
func HashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), PasswordCost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(hash), nil
}

// CheckPassword compares a bcrypt hash with a candidate password.
func CheckPassword(hash, password string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}
	return nil
}

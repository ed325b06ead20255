package auth

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const defaultTTL = 24 * time.Hour

var (
	ErrMissingSecret = errors.New("jwt secret not configured")
	ErrInvalidToken  = errors.New("invalid token")
)

// Claims represents the identity contained in a JWT.
type Claims struct {
	Email   string `json:"email,omitempty"`
	Name    string `json:"name,omitempty"`
	Picture string `json:"picture,omitempty"`
	jwt.RegisteredClaims
}

// Identity is the stable caller reference: email when present, else subject.
func (c Claims) Identity() string {
	if email := strings.TrimSpace(c.Email); email != "" {
		return strings.ToLower(email)
	}
	return c.Subject
}

// Signer issues and verifies HS256 tokens.
type Signer struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

// NewSigner builds a Signer. A zero ttl means 24h.
func NewSigner(secret []byte, ttl time.Duration) *Signer {
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Signer{secret: secret, ttl: ttl, now: time.Now}
}

// SecretFromConfig resolves the signing secret. Production refuses the dev fallback.
func SecretFromConfig(env, secret string) ([]byte, error) {
	secret = strings.TrimSpace(secret)
	if secret != "" {
		return []byte(secret), nil
	}
	if env == "production" {
		return nil, fmt.Errorf("%w: JWT_SECRET required in production", ErrMissingSecret)
	}
	return []byte("dev-secret"), nil
}

// Sign signs the given claims. Subject is required.
func (s *Signer) Sign(claims Claims) (string, error) {
	if len(s.secret) == 0 {
		return "", ErrMissingSecret
	}
	if claims.Subject == "" {
		return "", errors.New("sub is required")
	}

	now := s.now().UTC()
	if claims.IssuedAt == nil {
		claims.IssuedAt = jwt.NewNumericDate(now)
	}
	if claims.ExpiresAt == nil {
		claims.ExpiresAt = jwt.NewNumericDate(now.Add(s.ttl))
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

// Verify parses a token and returns its claims.
func (s *Signer) Verify(tokenString string) (Claims, error) {
	if len(s.secret) == 0 {
		return Claims{}, ErrMissingSecret
	}
	if strings.TrimSpace(tokenString) == "" {
		return Claims{}, ErrInvalidToken
	}

	var claims Claims
	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	}, jwt.WithTimeFunc(s.now))
	if err != nil {
		return Claims{}, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if !token.Valid || claims.Subject == "" {
		return Claims{}, ErrInvalidToken
	}
	return claims, nil
}

package jwt

import (
	"errors"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrInvalidToken     = errors.New("invalid token")
	ErrExpiredToken     = errors.New("token has expired")
	ErrInvalidAlgorithm = errors.New("invalid signing algorithm")
	ErrEmptySecretKey   = errors.New("secret key cannot be empty")
	ErrInvalidDuration  = errors.New("duration must be positive")
	ErrEmptySubject     = errors.New("token subject cannot be empty")
)

// MinRecommendedKeyLength is the secret length below which startup warns
const MinRecommendedKeyLength = 32

// Claims are the registered claims of an access token; Subject holds the user email
type Claims struct {
	jwt.RegisteredClaims
}

// Config represents the JWT configuration
type Config struct {
	SecretKey string        `yaml:"secret_key"`
	Duration  time.Duration `yaml:"duration"`
}

// Service signs and verifies HS256 access tokens
type Service struct {
	config Config
	now    func() time.Time
}

// Option customizes a Service
type Option func(*Service)

// WithClock replaces time.Now, letting tests move past the expiry
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// NewService creates a new JWT service
func NewService(config Config, opts ...Option) (*Service, error) {
	if strings.TrimSpace(config.SecretKey) == "" {
		return nil, ErrEmptySecretKey
	}
	if config.Duration <= 0 {
		return nil, ErrInvalidDuration
	}
	s := &Service{
		config: config,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Duration returns the lifetime of issued tokens
func (s *Service) Duration() time.Duration {
	return s.config.Duration
}

// WeakKey reports whether the secret is shorter than MinRecommendedKeyLength
func (s *Service) WeakKey() bool {
	return len(s.config.SecretKey) < MinRecommendedKeyLength
}

// GenerateToken issues a token for subject expiring after the configured duration
func (s *Service) GenerateToken(subject string) (string, error) {
	if subject == "" {
		return "", ErrEmptySubject
	}
	now := s.now()
	claims := &Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			ExpiresAt: jwt.NewNumericDate(now.Add(s.config.Duration)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.config.SecretKey))
}

// ValidateToken checks signature, algorithm and expiry and returns the claims
func (s *Service) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrInvalidAlgorithm
		}
		return []byte(s.config.SecretKey), nil
	}, jwt.WithTimeFunc(s.now), jwt.WithExpirationRequired())
	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrExpiredToken
		case errors.Is(err, ErrInvalidAlgorithm):
			return nil, ErrInvalidAlgorithm
		default:
			return nil, ErrInvalidToken
		}
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrInvalidToken
	}
	return claims, nil
}

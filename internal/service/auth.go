package service

import (
	"fmt"
	"time"

	"github.com/medicoord/coordinator-go/internal/domain"

	"github.com/golang-jwt/jwt/v5"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// TokenService exchanges the shared operator key for short-lived access
// tokens guarding the coordination endpoint. Auth is optional: with no
// configured key hash, Enabled reports false and the routes stay open.
type TokenService struct {
	operatorKeyHash []byte // bcrypt hash of the operator key
	secret          []byte
	accessTTL       time.Duration
	logger          *zap.Logger
}

// NewTokenService creates the token service.
func NewTokenService(operatorKeyHash, jwtSecret string, accessTTL time.Duration, logger *zap.Logger) *TokenService {
	return &TokenService{
		operatorKeyHash: []byte(operatorKeyHash),
		secret:          []byte(jwtSecret),
		accessTTL:       accessTTL,
		logger:          logger,
	}
}

// Enabled reports whether operator auth is configured.
func (s *TokenService) Enabled() bool {
	return len(s.operatorKeyHash) > 0
}

// IssueToken verifies the operator key against the configured bcrypt hash
// and returns a signed HS256 access token.
func (s *TokenService) IssueToken(operatorKey string) (*domain.TokenResponse, error) {
	if operatorKey == "" {
		return nil, &domain.ErrValidation{Field: "operator_key", Message: "must not be empty"}
	}

	if err := bcrypt.CompareHashAndPassword(s.operatorKeyHash, []byte(operatorKey)); err != nil {
		s.logger.Warn("operator key rejected")
		return nil, &domain.ErrUnauthorized{Message: "invalid operator key"}
	}

	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   "operator",
		Issuer:    "medicoord",
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(s.secret)
	if err != nil {
		return nil, fmt.Errorf("sign access token: %w", err)
	}

	return &domain.TokenResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.accessTTL.Seconds()),
	}, nil
}

// ValidateToken checks signature, algorithm and expiry of an access token.
func (s *TokenService) ValidateToken(tokenString string) error {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secret, nil
	})
	if err != nil || !token.Valid {
		return &domain.ErrUnauthorized{Message: "invalid or expired token"}
	}
	return nil
}

package common

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// TokenSignerService issues and validates short-lived dashboard access tokens.
// Tokens gate the mutating API routes when an operator opens the dashboard
// from a shared terminal link.
type TokenSignerService struct {
	secretKey []byte
}

func NewTokenSignerService(secretKey []byte) *TokenSignerService {
	return &TokenSignerService{secretKey: secretKey}
}

// GenerateDashboardToken signs a token identifying the operator station.
func (s *TokenSignerService) GenerateDashboardToken(station string, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := jwt.MapClaims{
		"station": station,
		"jti":     uuid.New().String(),
		"exp":     now.Add(ttl).Unix(),
		"iat":     now.Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.secretKey)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ValidateToken parses a dashboard token and returns the station it was
// issued for.
func (s *TokenSignerService) ValidateToken(tokenString string) (string, error) {
	token, err := jwt.Parse(tokenString, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil {
		return "", fmt.Errorf("invalid token: %w", err)
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok || !token.Valid {
		return "", errors.New("invalid token claims")
	}

	station, _ := claims["station"].(string)
	if station == "" {
		return "", errors.New("token missing station claim")
	}
	return station, nil
}

// Package auth issues and verifies the bearer tokens that carry a caller's
// identity and capabilities.
package auth

import (
	"fmt"
	"slices"
	"time"

	"github.com/dmitrijs2005/checkers/internal/common"
	"github.com/golang-jwt/jwt/v5"
)

// Claims are the registered claims plus the principal's identity and the
// capabilities it was granted.
type Claims struct {
	jwt.RegisteredClaims
	UserID       string   `json:"uid"`
	Name         string   `json:"name,omitempty"`
	Email        string   `json:"email,omitempty"`
	Capabilities []string `json:"caps,omitempty"`
}

// Principal is the authenticated caller.
type Principal struct {
	UserID       string
	Name         string
	Email        string
	Capabilities []string
}

// Can reports whether the principal holds capability.
func (p *Principal) Can(capability string) bool {
	return p != nil && slices.Contains(p.Capabilities, capability)
}

func GenerateToken(p Principal, secretKey []byte, validityDuration time.Duration) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, Claims{
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(validityDuration)),
			Subject:   p.UserID,
		},
		UserID:       p.UserID,
		Name:         p.Name,
		Email:        p.Email,
		Capabilities: p.Capabilities,
	})

	tokenString, err := token.SignedString(secretKey)
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseToken verifies tokenString and returns its principal. Every failure
// wraps common.ErrUnauthorized.
func ParseToken(tokenString string, secretKey []byte) (*Principal, error) {
	claims := &Claims{}

	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return secretKey, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnauthorized, err)
	}

	if !token.Valid || claims.UserID == "" {
		return nil, fmt.Errorf("%w: invalid token", common.ErrUnauthorized)
	}

	return &Principal{
		UserID:       claims.UserID,
		Name:         claims.Name,
		Email:        claims.Email,
		Capabilities: claims.Capabilities,
	}, nil
}

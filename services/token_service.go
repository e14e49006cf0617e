package services

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v4"
)

// SessionTTL is how long a minted session token stays valid.
const SessionTTL = 24 * time.Hour

// SessionClaims is what a verified session token resolves to.
type SessionClaims struct {
	UserID string
	Role   string
}

// TokenService mints and verifies signed session tokens. The scheme is
// stateless: the server keeps no session table, so logout is purely a
// client-side cookie discard.
type TokenService struct {
	secretKey []byte
}

func NewTokenService(secret string) *TokenService {
	return &TokenService{secretKey: []byte(secret)}
}

// Generate mints a session token bound to the given identity.
func (s *TokenService) Generate(userID, role string) (string, error) {
	claims := jwt.MapClaims{
		"sub":  userID,
		"role": role,
		"exp":  time.Now().Add(SessionTTL).Unix(),
		"iat":  time.Now().Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// Validate verifies signature and expiry and returns the session's
// identity claims.
func (s *TokenService) Validate(tokenStr string) (*SessionClaims, error) {
	token, err := jwt.Parse(tokenStr, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secretKey, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid or expired token")
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, fmt.Errorf("invalid token claims")
	}
	sub, ok := claims["sub"].(string)
	if !ok || sub == "" {
		return nil, fmt.Errorf("invalid token: subject claim missing")
	}
	role, _ := claims["role"].(string)

	return &SessionClaims{UserID: sub, Role: role}, nil
}

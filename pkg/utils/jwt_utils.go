package utils

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// jwtSecret signs and verifies access tokens. It is read per call rather
// than at package init so a JWT_SECRET loaded from .env after startup is
// honored; the fallback exists for local runs only.
func jwtSecret() []byte {
	return []byte(Getenv("JWT_SECRET", "ski-rental-dev-secret-change-me"))
}

// AccessTokenTTL is how long an issued access token stays valid.
const AccessTokenTTL = 24 * time.Hour

// Claims defines the JWT claims structure.
type Claims struct {
	OwnerID int64  `json:"owner_id"`
	Email   string `json:"email"`
	jwt.RegisteredClaims
}

// GenerateAccessToken creates a new JWT access token for an owner account.
func GenerateAccessToken(ownerID int64, email string) (string, error) {
	expirationTime := time.Now().Add(AccessTokenTTL)
	claims := &Claims{
		OwnerID: ownerID,
		Email:   email,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(expirationTime),
			IssuedAt:  jwt.NewNumericDate(time.Now()),
			Issuer:    "ski-rental-backend",
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString(jwtSecret())
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// ValidateToken parses and validates a JWT token string.
// It returns the claims if the token is valid, otherwise an error.
func ValidateToken(tokenString string) (*Claims, error) {
	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return jwtSecret(), nil
	})
	if err != nil {
		return nil, fmt.Errorf("token validation failed: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

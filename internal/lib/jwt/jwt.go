package jwt

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

var ErrNotAdmin = errors.New("token does not grant admin access")

// AdminClaims токен администратора галерей
type AdminClaims struct {
	Admin bool `json:"admin"`
	jwt.RegisteredClaims
}

// NewAdminToken выпускает HS256 токен с claim admin=true
func NewAdminToken(secret, subject string, duration time.Duration) (string, error) {
	now := time.Now()

	claims := AdminClaims{
		Admin: true,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   subject,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(duration)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}

	return tokenString, nil
}

// ParseAdminToken проверяет подпись, срок и admin claim
func ParseAdminToken(secret, tokenString string) (*AdminClaims, error) {
	claims := &AdminClaims{}

	_, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}))
	if err != nil {
		return nil, fmt.Errorf("invalid token: %w", err)
	}

	if !claims.Admin {
		return nil, ErrNotAdmin
	}

	return claims, nil
}

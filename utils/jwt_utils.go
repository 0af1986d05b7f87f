package utils

import (
	"fmt"
	"os"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/TechSupportz/tasky-server/models"
)

type Claims struct {
	UserID   int64           `json:"userId"`
	Username string          `json:"username"`
	Tier     models.UserType `json:"tier"`
	jwt.RegisteredClaims
}

func secret() ([]byte, error) {
	s := os.Getenv("JWT_SECRET")
	if s == "" {
		return nil, fmt.Errorf("JWT_SECRET is not set")
	}
	return []byte(s), nil
}

// GenerateToken issues a signed token carrying the user's identity.
func GenerateToken(user models.User) (string, error) {
	key, err := secret()
	if err != nil {
		return "", err
	}

	claims := &Claims{
		UserID:   user.ID,
		Username: user.Username,
		Tier:     user.Type,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(time.Now().Add(2 * time.Hour)),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(key)
}

// ValidateToken parses tokenStr and returns its claims if valid and not
// expired.
func ValidateToken(tokenStr string) (*Claims, error) {
	claims, err := parseToken(tokenStr)
	if err != nil {
		return nil, err
	}
	if claims.ExpiresAt != nil && claims.ExpiresAt.Before(time.Now()) {
		return nil, fmt.Errorf("token has expired")
	}
	return claims, nil
}

// UserFromToken rebuilds the request identity from token claims.
func UserFromToken(tokenStr string) (models.User, error) {
	claims, err := ValidateToken(tokenStr)
	if err != nil {
		return models.User{}, err
	}
	return models.User{
		ID:       claims.UserID,
		Username: claims.Username,
		Type:     claims.Tier,
	}, nil
}

func parseToken(tokenStr string) (*Claims, error) {
	key, err := secret()
	if err != nil {
		return nil, err
	}

	claims := &Claims{}
	token, err := jwt.ParseWithClaims(tokenStr, claims, func(token *jwt.Token) (interface{}, error) {
		return key, nil
	})
	if err != nil || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}
	return claims, nil
}

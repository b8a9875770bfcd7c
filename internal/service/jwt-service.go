package service

import (
	"fmt"

	"access_service/internal/config"
	"access_service/internal/models"

	"github.com/golang-jwt/jwt/v5"
)

// JWTService only validates tokens the external auth provider issued;
// this service never mints sessions itself.
type JWTService struct{}

func NewJWTService() *JWTService {
	return &JWTService{}
}

func (jwt_s *JWTService) ParseToken(tokenString string) (*models.Claims, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return []byte(config.ServiceConfig.JWT.Secret), nil
	})
	if err != nil {
		return nil, fmt.Errorf("error parsing session token: %w", err)
	}
	if !token.Valid {
		return nil, fmt.Errorf("invalid session token")
	}
	return claims, nil
}

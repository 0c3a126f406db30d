package security

import (
	"errors"
	"fmt"
	"hackboard/internal/domain/model"
	"hackboard/internal/platform/config"
	"time"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

var ErrInvalidClaims = errors.New("invalid token claims")

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

// GenerateToken issues a bearer token carrying the caller's identity and role.
func GenerateToken(caller model.Caller) (string, error) {
	if caller.UserID == "" || !caller.Role.Valid() {
		return "", fmt.Errorf("cannot issue token for %+v: %w", caller, ErrInvalidClaims)
	}
	now := time.Now()
	claims := jwt.MapClaims{
		"user_id": caller.UserID,
		"email":   caller.Email,
		"role":    string(caller.Role),
		"exp":     now.Add(config.AppConfig.JWTExp).Unix(),
		"iat":     now.Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

// CallerFromClaims rebuilds the caller from verified token claims. The email
// claim is optional; the role must be one this service knows.
func CallerFromClaims(claims jwt.MapClaims) (model.Caller, error) {
	id, ok := claims["user_id"].(string)
	if !ok || id == "" {
		return model.Caller{}, fmt.Errorf("user_id claim is missing or not a string: %w", ErrInvalidClaims)
	}
	role, _ := claims["role"].(string)
	if !model.Role(role).Valid() {
		return model.Caller{}, fmt.Errorf("unknown role %q: %w", role, ErrInvalidClaims)
	}
	email, _ := claims["email"].(string)
	return model.Caller{UserID: id, Email: email, Role: model.Role(role)}, nil
}

package security

import (
	"errors"
	"time"

	"atcrank/internal/platform/config"

	"github.com/go-chi/jwtauth/v5"
	"github.com/golang-jwt/jwt/v5"
)

var TokenAuth *jwtauth.JWTAuth

func InitJWT() {
	TokenAuth = jwtauth.New("HS256", config.AppConfig.JWTKey, nil)
}

func GenerateToken(accountID, role string) (string, error) {
	claims := jwt.MapClaims{
		"account_id": accountID,
		"role":       role,
		"exp":        time.Now().Add(config.AppConfig.JWTExp).Unix(),
		"iat":        time.Now().Unix(),
	}
	_, tokenString, err := TokenAuth.Encode(claims)
	return tokenString, err
}

func GetAccountIDFromClaims(claims jwt.MapClaims) (string, error) {
	id, ok := claims["account_id"].(string)
	if !ok {
		return "", errors.New("account_id claim is missing or not a string")
	}
	return id, nil
}

func GetRoleFromClaims(claims jwt.MapClaims) (string, error) {
	role, ok := claims["role"].(string)
	if !ok {
		return "", errors.New("role claim is missing or not a string")
	}
	return role, nil
}

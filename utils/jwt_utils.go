package utils

import (
	"errors"

	"github.com/golang-jwt/jwt/v5"

	"github.com/LogicSense29/addedvalue-store-sub000/config"
)

var errInvalidToken = errors.New("invalid token")

func ParseToken(tokenString string) (int64, error) {
	cfg := config.LoadConfig()
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		return []byte(cfg.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return 0, errInvalidToken
	}

	if claims, ok := token.Claims.(jwt.MapClaims); ok {
		if userID, ok := claims["user_id"].(float64); ok {
			return int64(userID), nil
		}
	}
	return 0, errInvalidToken
}

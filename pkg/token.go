package pkg

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// StateClaims travel through the OAuth redirect round trip as the state
// parameter, so the /auth callback knows which user started at /login.
type StateClaims struct {
	User       string
	Brand      string
	Extensions string
	State      string
}

func GenerateStateToken(secret string, sc StateClaims) (string, error) {
	claims := jwt.MapClaims{}
	claims["user"] = sc.User
	claims["brand"] = sc.Brand
	claims["extensions"] = sc.Extensions
	claims["state"] = sc.State
	claims["iat"] = time.Now().Unix()
	claims["exp"] = time.Now().Add(15 * time.Minute).Unix()
	claims["jti"] = uuid.NewString()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", err
	}
	return tokenString, nil
}

func DecodeStateToken(secret, token string) (*StateClaims, error) {
	t, err := jwt.Parse(token, func(token *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	})
	if err != nil {
		return nil, err
	}
	claims, ok := t.Claims.(jwt.MapClaims)
	if !ok {
		return nil, errors.New("unexpected claims type")
	}
	sc := StateClaims{}
	if user, ok := claims["user"].(string); ok {
		sc.User = user
	}
	if sc.User == "" {
		return nil, errors.New("state token has no user")
	}
	if brand, ok := claims["brand"].(string); ok {
		sc.Brand = brand
	}
	if extensions, ok := claims["extensions"].(string); ok {
		sc.Extensions = extensions
	}
	if state, ok := claims["state"].(string); ok {
		sc.State = state
	}
	return &sc, nil
}

package auth

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Claims carried by desk session tokens. Role "admin" grants the operator
// privilege on the websocket surface.
type Claims struct {
	Username string `json:"username"`
	Role     string `json:"role"`
	Name     string `json:"name"`
	jwt.RegisteredClaims
}

type TokenIssuer struct {
	key []byte
	ttl time.Duration
}

// NewTokenIssuer signs with HS256. The key comes from configuration; there
// is no hardcoded fallback.
func NewTokenIssuer(key string, ttl time.Duration) TokenIssuer {
	return TokenIssuer{key: []byte(key), ttl: ttl}
}

func (t TokenIssuer) Generate(username, role, name string) (string, error) {
	now := time.Now()
	claims := &Claims{
		Username: username,
		Role:     role,
		Name:     name,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(t.ttl)),
			IssuedAt:  jwt.NewNumericDate(now),
			Issuer:    "campus-desk",
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(t.key)
}

// Validate parses the token and checks signature and expiry.
func (t TokenIssuer) Validate(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		return t.key, nil
	})
	if err != nil {
		return nil, err
	}
	if claims, ok := token.Claims.(*Claims); ok && token.Valid {
		return claims, nil
	}
	return nil, jwt.ErrSignatureInvalid
}

package jwt

import (
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/JoelJacobStephen/litxplore/errors"
)

// EncodeDecoder signs and verifies tokens with a shared HS256 key.
type EncodeDecoder struct {
	key    []byte
	issuer string
}

func NewEncodeDecoder(key []byte, issuer string) *EncodeDecoder {
	return &EncodeDecoder{
		key:    key,
		issuer: issuer,
	}
}

func (e *EncodeDecoder) Encode(subject, email string, ttl time.Duration) (string, error) {
	claims := Claims{
		Email: email,
		StandardClaims: jwt.StandardClaims{
			Subject:   subject,
			ExpiresAt: time.Now().Add(ttl).Unix(),
			IssuedAt:  time.Now().Unix(),
			Issuer:    e.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(e.key)
}

func (e *EncodeDecoder) Verify(bearer string) (Claims, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(bearer, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, errors.New("unexpected signing method", errors.Unauthorized())
		}
		return e.key, nil
	})
	if err != nil {
		return Claims{}, translateError(err)
	}

	if !token.Valid || claims.Subject == "" {
		return Claims{}, errors.New("invalid token claims", errors.Unauthorized())
	}

	return claims, nil
}

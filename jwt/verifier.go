package jwt

import (
	"github.com/dgrijalva/jwt-go"

	"github.com/JoelJacobStephen/litxplore/errors"
)

// Claims are the token claims the backend cares about. Subject identifies
// the user at the external issuer.
type Claims struct {
	Email     string `json:"email,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	jwt.StandardClaims
}

// Verifier checks a bearer token with exactly one strategy. Which strategy
// runs is a deployment decision: there is no fallback chain and never an
// unverified decode.
type Verifier interface {
	Verify(token string) (Claims, error)
}

func translateError(err error) error {
	if ve, ok := err.(*jwt.ValidationError); ok && ve.Errors&jwt.ValidationErrorExpired != 0 {
		return errors.New("token has expired", errors.Unauthorized())
	}
	return errors.New("invalid token", errors.Unauthorized(), errors.WithCause(err))
}

package web

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/JoelJacobStephen/litxplore"
	"github.com/JoelJacobStephen/litxplore/errors"
	"github.com/JoelJacobStephen/litxplore/jwt"
)

type HandlerFunc func(*gin.Context) (interface{}, error)

// JSONFormatter renders a handler's result, mapping application errors to
// a uniform {"error": {"code", "message"}} body.
func JSONFormatter(next HandlerFunc) gin.HandlerFunc {
	return func(c *gin.Context) {
		res, err := next(c)
		if err != nil {
			code := errors.CodeOf(err)
			c.JSON(code, map[string]interface{}{
				"error": map[string]interface{}{
					"code":    code,
					"message": err.Error(),
				},
			})
			return
		}

		c.JSON(http.StatusOK, res)
	}
}

// CORS mirrors the permissive policy of the frontend deployment.
func CORS() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Writer.Header().Set("Access-Control-Allow-Origin", "*")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "GET, PUT, POST, DELETE")
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Accept-Language, Authorization, Content-Type")
		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(http.StatusOK)
		}
		c.Next()
	}
}

// Authenticator verifies Bearer tokens with the configured strategy and
// resolves them to a user row, creating it on first sight.
type Authenticator struct {
	Verifier jwt.Verifier
	Users    litxplore.UserStore
}

func (a *Authenticator) Authenticate(next HandlerFunc) HandlerFunc {
	return func(c *gin.Context) (interface{}, error) {
		token := c.Request.Header.Get("Authorization")
		if len(token) <= 6 || strings.ToLower(token[:7]) != "bearer " {
			return nil, errors.New("no token found", errors.Unauthorized())
		}

		claims, err := a.Verifier.Verify(token[7:])
		if err != nil {
			return nil, err
		}

		user, err := a.Users.GetOrCreate(c.Request.Context(), claims.Subject, claims.Email, claims.FirstName, claims.LastName)
		if err != nil {
			return nil, errors.New("could not get user", errors.WithCause(err))
		}

		c.Set("user", user)
		return next(c)
	}
}

func currentUser(c *gin.Context) (*litxplore.User, error) {
	value, ok := c.Get("user")
	if !ok {
		return nil, errors.New("no user in context", errors.Unauthorized())
	}

	user, ok := value.(*litxplore.User)
	if !ok {
		return nil, errors.New("invalid user in context")
	}
	return user, nil
}

package jwt

import (
	"crypto/rsa"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"math/big"
	"net/http"
	"sync"
	"time"

	"github.com/dgrijalva/jwt-go"

	"github.com/JoelJacobStephen/litxplore/errors"
)

// JWKSCache holds the issuer's published key set with an expiry. It is
// constructed once per process and passed by reference; the clock is
// injectable so the TTL is testable.
type JWKSCache struct {
	mu          sync.Mutex
	keys        map[string]*rsa.PublicKey
	lastUpdated time.Time
	ttl         time.Duration
	now         func() time.Time
}

func NewJWKSCache(ttl time.Duration) *JWKSCache {
	return &JWKSCache{
		ttl: ttl,
		now: time.Now,
	}
}

func (c *JWKSCache) get(kid string) (*rsa.PublicKey, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.keys == nil || c.now().Sub(c.lastUpdated) >= c.ttl {
		return nil, false
	}
	key, ok := c.keys[kid]
	return key, ok
}

func (c *JWKSCache) update(keys map[string]*rsa.PublicKey) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.keys = keys
	c.lastUpdated = c.now()
}

// JWKSVerifier verifies RS256 tokens against the key set published at the
// issuer's JWKS endpoint.
type JWKSVerifier struct {
	URL    string
	Issuer string
	Client *http.Client

	cache *JWKSCache
}

func NewJWKSVerifier(url, issuer string, cache *JWKSCache) *JWKSVerifier {
	return &JWKSVerifier{
		URL:    url,
		Issuer: issuer,
		Client: &http.Client{Timeout: 10 * time.Second},
		cache:  cache,
	}
}

func (v *JWKSVerifier) Verify(bearer string) (Claims, error) {
	claims := Claims{}

	token, err := jwt.ParseWithClaims(bearer, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, errors.New("unexpected signing method", errors.Unauthorized())
		}

		kid, _ := token.Header["kid"].(string)
		if kid == "" {
			return nil, errors.New("token header missing kid", errors.Unauthorized())
		}

		return v.key(kid)
	})
	if err != nil {
		return Claims{}, translateError(err)
	}

	if !token.Valid || claims.Subject == "" {
		return Claims{}, errors.New("invalid token claims", errors.Unauthorized())
	}
	if v.Issuer != "" && claims.Issuer != v.Issuer {
		return Claims{}, errors.New("unexpected token issuer", errors.Unauthorized())
	}

	return claims, nil
}

func (v *JWKSVerifier) key(kid string) (*rsa.PublicKey, error) {
	if key, ok := v.cache.get(kid); ok {
		return key, nil
	}

	keys, err := v.fetch()
	if err != nil {
		return nil, err
	}
	v.cache.update(keys)

	key, ok := keys[kid]
	if !ok {
		return nil, errors.New(fmt.Sprintf("key %s not found in jwks", kid), errors.Unauthorized())
	}
	return key, nil
}

func (v *JWKSVerifier) fetch() (map[string]*rsa.PublicKey, error) {
	resp, err := v.Client.Get(v.URL)
	if err != nil {
		return nil, errors.New("could not fetch jwks", errors.BadGateway(), errors.WithCause(err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.New(fmt.Sprintf("jwks endpoint returned %d", resp.StatusCode), errors.BadGateway())
	}

	var doc struct {
		Keys []struct {
			Kty string `json:"kty"`
			Kid string `json:"kid"`
			N   string `json:"n"`
			E   string `json:"e"`
		} `json:"keys"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&doc); err != nil {
		return nil, errors.New("could not decode jwks", errors.BadGateway(), errors.WithCause(err))
	}

	keys := make(map[string]*rsa.PublicKey, len(doc.Keys))
	for _, k := range doc.Keys {
		if k.Kty != "RSA" {
			continue
		}
		key, err := rsaKey(k.N, k.E)
		if err != nil {
			continue
		}
		keys[k.Kid] = key
	}

	return keys, nil
}

func rsaKey(n, e string) (*rsa.PublicKey, error) {
	nb, err := base64.RawURLEncoding.DecodeString(n)
	if err != nil {
		return nil, err
	}
	eb, err := base64.RawURLEncoding.DecodeString(e)
	if err != nil {
		return nil, err
	}

	return &rsa.PublicKey{
		N: new(big.Int).SetBytes(nb),
		E: int(new(big.Int).SetBytes(eb).Int64()),
	}, nil
}

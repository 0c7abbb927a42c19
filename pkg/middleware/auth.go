package middleware

import (
	"fmt"
	"strings"

	"github.com/Svg70/crypto-booking/pkg/response"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
)

const (
	// CallerAddressHeader is the development fallback for caller identity
	CallerAddressHeader = "X-Caller-Address"
	// ContextKeyCallerAddress is the gin context key holding the caller
	ContextKeyCallerAddress = "caller_address"
	// AddressClaim is the JWT claim carrying the caller's token account
	AddressClaim = "address"
)

// CallerConfig holds caller identification settings
type CallerConfig struct {
	// Secret is the HMAC secret for bearer tokens
	Secret string
	// AllowHeaderFallback accepts the X-Caller-Address header when no
	// bearer token is present. Development only.
	AllowHeaderFallback bool
}

// CallerIdentity resolves the caller's address from a bearer token and
// stores it in the request context. Every state-changing route runs
// behind it; the services authorize against the resolved address.
func CallerIdentity(cfg *CallerConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if strings.HasPrefix(auth, "Bearer ") {
			tokenStr := strings.TrimPrefix(auth, "Bearer ")
			addr, err := parseCallerToken(tokenStr, cfg.Secret)
			if err != nil {
				response.Unauthorized(c, "invalid bearer token")
				c.Abort()
				return
			}
			c.Set(ContextKeyCallerAddress, addr)
			c.Next()
			return
		}

		if cfg.AllowHeaderFallback {
			if addr := c.GetHeader(CallerAddressHeader); addr != "" {
				c.Set(ContextKeyCallerAddress, addr)
				c.Next()
				return
			}
		}

		response.Unauthorized(c, "caller identity is required")
		c.Abort()
	}
}

func parseCallerToken(tokenStr, secret string) (string, error) {
	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		return []byte(secret), nil
	}, jwt.WithValidMethods([]string{"HS256"}))
	if err != nil {
		return "", err
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return "", fmt.Errorf("unexpected claims type")
	}
	addr, _ := claims[AddressClaim].(string)
	if addr == "" {
		return "", fmt.Errorf("token has no %s claim", AddressClaim)
	}
	return addr, nil
}

// IssueCallerToken mints a signed token binding the caller address.
// Used by tests and local tooling.
func IssueCallerToken(addr, secret, issuer string) (string, error) {
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		AddressClaim: addr,
		"iss":        issuer,
	})
	return token.SignedString([]byte(secret))
}

// GetCallerAddress extracts the resolved caller address from context
func GetCallerAddress(c *gin.Context) (string, bool) {
	v, exists := c.Get(ContextKeyCallerAddress)
	if !exists {
		return "", false
	}
	addr, ok := v.(string)
	return addr, ok
}

package middleware

import (
	"strings"

	"github.com/Domenick1991/flightbooking/internal/security"
	"github.com/gin-gonic/gin"
)

const (
	HeaderAuthUser  = "X-Auth-User"
	HeaderAuthRoles = "X-Auth-Roles"

	identityKey = "identity"
)

// Identity is the verified caller attached to a request.
type Identity struct {
	Username            string
	Roles               []string
	ForcePasswordChange bool
}

func (i *Identity) HasAnyRole(roles ...string) bool {
	if i == nil {
		return false
	}
	for _, want := range roles {
		for _, have := range i.Roles {
			if have == want {
				return true
			}
		}
	}
	return false
}

type TokenParser interface {
	Parse(raw string) (*security.Claims, error)
}

// TokenFromRequest reads the bearer token first and falls back to the cookie.
func TokenFromRequest(c *gin.Context, cookieName string) string {
	if tok := security.BearerToken(c.GetHeader("Authorization")); tok != "" {
		return tok
	}
	if cookieName == "" {
		return ""
	}
	if tok, err := c.Cookie(cookieName); err == nil {
		return tok
	}
	return ""
}

// Authenticate drops client-supplied identity headers, then verifies the token
// if one is present. Requests without a valid token continue anonymously.
func Authenticate(tokens TokenParser, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Request.Header.Del(HeaderAuthUser)
		c.Request.Header.Del(HeaderAuthRoles)

		raw := TokenFromRequest(c, cookieName)
		if raw != "" {
			if claims, err := tokens.Parse(raw); err == nil {
				id := &Identity{
					Username:            claims.Subject,
					Roles:               claims.Roles,
					ForcePasswordChange: claims.ForcePasswordChange,
				}
				c.Set(identityKey, id)
				c.Request.Header.Set(HeaderAuthUser, id.Username)
				c.Request.Header.Set(HeaderAuthRoles, strings.Join(id.Roles, ","))
			}
		}
		c.Next()
	}
}

// IdentityFrom returns the verified caller, or nil for anonymous requests.
func IdentityFrom(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	id, _ := v.(*Identity)
	return id
}

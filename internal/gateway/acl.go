package gateway

import (
	"net/http"
	"strings"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/middleware"
	"github.com/gin-gonic/gin"
)

type Access int

const (
	Deny Access = iota
	Public
	Authenticated
	HasRole
)

// Rule grants access to requests matching Method and Pattern.
// An empty Method matches any method. A trailing "**" segment matches the rest of the path.
type Rule struct {
	Method  string
	Pattern string
	Access  Access
	Roles   []string
}

type Decision int

const (
	Allow Decision = iota
	Unauthenticated
	Forbidden
)

// ACL is an ordered rule list. The first matching rule wins; no match denies.
type ACL struct {
	rules []Rule
}

func NewACL(rules ...Rule) *ACL {
	return &ACL{rules: rules}
}

var (
	adminOnly   = []string{string(domain.RoleAdmin)}
	adminOrUser = []string{string(domain.RoleAdmin), string(domain.RoleUser)}
)

// DefaultRules is the routing table the gateway ships with.
func DefaultRules() []Rule {
	return []Rule{
		{Method: http.MethodOptions, Pattern: "/**", Access: Public},
		{Pattern: "/auth-service/api/auth/signup", Access: Public},
		{Pattern: "/auth-service/api/auth/signin", Access: Public},
		{Pattern: "/auth-service/api/auth/me", Access: Public},
		{Pattern: "/auth-service/api/auth/signout", Access: Authenticated},
		{Pattern: "/auth-service/api/auth/change-password", Access: Authenticated},
		{Pattern: "/flight-service/flight/register", Access: HasRole, Roles: adminOnly},
		{Pattern: "/flight-service/flight/delete/**", Access: HasRole, Roles: adminOnly},
		{Pattern: "/flight-service/flight/flights/**", Access: HasRole, Roles: adminOnly},
		{Pattern: "/flight-service/flight/getFlightById/**", Access: HasRole, Roles: adminOrUser},
		{Pattern: "/flight-service/flight/**", Access: Public},
		{Pattern: "/passenger-service/passenger/**", Access: HasRole, Roles: adminOrUser},
		{Pattern: "/ticket-service/ticket/**", Access: HasRole, Roles: adminOrUser},
	}
}

func (a *ACL) Decide(method, path string, id *middleware.Identity) Decision {
	for _, r := range a.rules {
		if r.Method != "" && r.Method != method {
			continue
		}
		if !matchPattern(r.Pattern, path) {
			continue
		}
		switch r.Access {
		case Public:
			return Allow
		case Authenticated:
			if id == nil {
				return Unauthenticated
			}
			return Allow
		case HasRole:
			if id == nil {
				return Unauthenticated
			}
			if id.HasAnyRole(r.Roles...) {
				return Allow
			}
			return Forbidden
		default:
			return deny(id)
		}
	}
	return deny(id)
}

func deny(id *middleware.Identity) Decision {
	if id == nil {
		return Unauthenticated
	}
	return Forbidden
}

// Guard enforces the ACL on every request. Authenticate must run first.
func (a *ACL) Guard() gin.HandlerFunc {
	return func(c *gin.Context) {
		switch a.Decide(c.Request.Method, c.Request.URL.Path, middleware.IdentityFrom(c)) {
		case Unauthenticated:
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Unauthorized"})
		case Forbidden:
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"message": "Forbidden"})
		default:
			c.Next()
		}
	}
}

func matchPattern(pattern, path string) bool {
	ps := splitPath(pattern)
	segs := splitPath(path)
	for i, p := range ps {
		if p == "**" {
			return i == len(ps)-1
		}
		if i >= len(segs) {
			return false
		}
		if p != "*" && p != segs[i] {
			return false
		}
	}
	return len(ps) == len(segs)
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

package security

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

const rolePrefix = "ROLE_"

var ErrInvalidToken = errors.New("invalid token")

// Claims is the payload carried by every token the auth service issues.
type Claims struct {
	Roles               []string `json:"roles"`
	ForcePasswordChange bool     `json:"forcePasswordChange"`
	jwt.RegisteredClaims
}

type TokenManager struct {
	secret []byte
	ttl    time.Duration
	now    func() time.Time
}

func NewTokenManager(secret string, ttl time.Duration) *TokenManager {
	return &TokenManager{secret: []byte(secret), ttl: ttl, now: time.Now}
}

func (m *TokenManager) TTL() time.Duration { return m.ttl }

// Issue signs an HS256 token for the user.
func (m *TokenManager) Issue(userID int64, username string, roles []string, forceChange bool) (string, time.Time, error) {
	now := m.now().UTC()
	exp := now.Add(m.ttl)
	claims := Claims{
		Roles:               roles,
		ForcePasswordChange: forceChange,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   username,
			ID:        strconv.FormatInt(userID, 10),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(exp),
		},
	}

	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(m.secret)
	if err != nil {
		return "", time.Time{}, fmt.Errorf("sign token: %w", err)
	}
	return signed, exp, nil
}

// Parse validates signature and expiry and returns the claims with roles normalised.
func (m *TokenManager) Parse(raw string) (*Claims, error) {
	claims := &Claims{}
	tok, err := jwt.ParseWithClaims(raw, claims, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", t.Header["alg"])
		}
		return m.secret, nil
	}, jwt.WithTimeFunc(m.now))
	if err != nil || !tok.Valid {
		return nil, fmt.Errorf("%w: %v", ErrInvalidToken, err)
	}
	if claims.Subject == "" {
		return nil, fmt.Errorf("%w: missing subject", ErrInvalidToken)
	}
	claims.Roles = NormalizeRoles(claims.Roles)
	return claims, nil
}

// NormalizeRoles upper-cases role names and adds the ROLE_ prefix where missing.
func NormalizeRoles(roles []string) []string {
	out := make([]string, 0, len(roles))
	for _, r := range roles {
		r = strings.ToUpper(strings.TrimSpace(r))
		if r == "" {
			continue
		}
		if !strings.HasPrefix(r, rolePrefix) {
			r = rolePrefix + r
		}
		out = append(out, r)
	}
	return out
}

// BearerToken extracts the token from an Authorization header value.
func BearerToken(header string) string {
	const prefix = "Bearer "
	if len(header) > len(prefix) && strings.EqualFold(header[:len(prefix)], prefix) {
		return strings.TrimSpace(header[len(prefix):])
	}
	return ""
}

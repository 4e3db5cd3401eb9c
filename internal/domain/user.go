package domain

import "time"

type Role string

const (
	RoleUser  Role = "ROLE_USER"
	RoleAdmin Role = "ROLE_ADMIN"
)

type User struct {
	ID                    int64
	Username              string
	Email                 string
	PasswordHash          string
	Roles                 []Role
	PasswordLastChangedAt time.Time
	ForcePasswordChange   bool
}

func (u *User) RoleNames() []string {
	names := make([]string, 0, len(u.Roles))
	for _, r := range u.Roles {
		names = append(names, string(r))
	}
	return names
}

// PasswordExpired reports whether the password is older than maxAge.
func (u *User) PasswordExpired(now time.Time, maxAge time.Duration) bool {
	if maxAge <= 0 || u.PasswordLastChangedAt.IsZero() {
		return false
	}
	return now.Sub(u.PasswordLastChangedAt) > maxAge
}

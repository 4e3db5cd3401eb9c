package auth

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/Domenick1991/flightbooking/internal/logger"
	"github.com/Domenick1991/flightbooking/internal/repository"
	"github.com/Domenick1991/flightbooking/internal/security"
)

const (
	MsgRegistered      = "User registered successfully!"
	MsgSignedOut       = "You've been signed out!"
	MsgPasswordChanged = "Password is changed successfully"
	MsgPasswordExpired = "Please change your password"
	StatusExpired      = "PASSWORD_EXPIRED"
)

var (
	ErrUsernameTaken    = domain.ValidationError{Msg: "Error: Username already taken"}
	ErrEmailInUse       = domain.ValidationError{Msg: "Error: Email already in use"}
	ErrBadCredentials   = domain.UnauthorizedError{Msg: "Invalid username or password"}
	ErrOldPasswordWrong = domain.ValidationError{Msg: "Error: Old password is incorrect"}
	ErrPasswordReused   = domain.ValidationError{Msg: "Error: New password must be not equal to previous one"}
)

type AuthUseCase interface {
	Signup(ctx context.Context, input SignupInput) error
	Signin(ctx context.Context, username, password string) (*Session, error)
	Authenticate(ctx context.Context, rawToken string) (*domain.User, *security.Claims, error)
	ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error
}

type SignupInput struct {
	Username string
	Email    string
	Password string
	Roles    []string
}

// Session is the outcome of a successful sign-in.
type Session struct {
	User            *domain.User
	Token           string
	ExpiresAt       time.Time
	PasswordExpired bool
}

type AuthService struct {
	users          repository.UserRepository
	tokens         *security.TokenManager
	bcryptCost     int
	passwordMaxAge time.Duration
	log            *logger.Logger
	now            func() time.Time
}

type AuthServiceOption func(*AuthService)

func WithLogger(log *logger.Logger) AuthServiceOption {
	return func(s *AuthService) { s.log = log }
}

func WithClock(now func() time.Time) AuthServiceOption {
	return func(s *AuthService) { s.now = now }
}

func NewAuthService(users repository.UserRepository, tokens *security.TokenManager, bcryptCost int, passwordMaxAge time.Duration, opts ...AuthServiceOption) *AuthService {
	s := &AuthService{
		users:          users,
		tokens:         tokens,
		bcryptCost:     bcryptCost,
		passwordMaxAge: passwordMaxAge,
		log:            logger.Nop(),
		now:            time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *AuthService) Signup(ctx context.Context, in SignupInput) error {
	taken, err := s.users.ExistsByUsername(ctx, in.Username)
	if err != nil {
		return err
	}
	if taken {
		return ErrUsernameTaken
	}
	inUse, err := s.users.ExistsByEmail(ctx, in.Email)
	if err != nil {
		return err
	}
	if inUse {
		return ErrEmailInUse
	}

	hash, err := security.HashPassword(in.Password, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:              in.Username,
		Email:                 in.Email,
		PasswordHash:          hash,
		Roles:                 MapRoles(in.Roles),
		PasswordLastChangedAt: s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return fmt.Errorf("create user: %w", err)
	}
	s.log.Infof("auth", "registered user %s with roles %v", user.Username, user.RoleNames())
	return nil
}

// MapRoles turns requested role names into stored roles: "admin" maps to
// ROLE_ADMIN, anything else to ROLE_USER.
func MapRoles(requested []string) []domain.Role {
	if len(requested) == 0 {
		return []domain.Role{domain.RoleUser}
	}
	seen := map[domain.Role]bool{}
	roles := make([]domain.Role, 0, len(requested))
	for _, r := range requested {
		role := domain.RoleUser
		if strings.EqualFold(strings.TrimSpace(r), "admin") {
			role = domain.RoleAdmin
		}
		if !seen[role] {
			seen[role] = true
			roles = append(roles, role)
		}
	}
	return roles
}

func (s *AuthService) Signin(ctx context.Context, username, password string) (*Session, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, ErrBadCredentials
		}
		return nil, err
	}
	if !security.VerifyPassword(user.PasswordHash, password) {
		return nil, ErrBadCredentials
	}

	expired := user.PasswordExpired(s.now(), s.passwordMaxAge)
	if expired && !user.ForcePasswordChange {
		if err := s.users.SetForcePasswordChange(ctx, user.ID, true); err != nil {
			return nil, fmt.Errorf("flag password change: %w", err)
		}
		user.ForcePasswordChange = true
	}

	token, exp, err := s.tokens.Issue(user.ID, user.Username, user.RoleNames(), user.ForcePasswordChange)
	if err != nil {
		return nil, err
	}
	return &Session{User: user, Token: token, ExpiresAt: exp, PasswordExpired: expired}, nil
}

// Authenticate resolves a token to the current user record.
func (s *AuthService) Authenticate(ctx context.Context, rawToken string) (*domain.User, *security.Claims, error) {
	if rawToken == "" {
		return nil, nil, domain.UnauthorizedError{Msg: "Unauthorized"}
	}
	claims, err := s.tokens.Parse(rawToken)
	if err != nil {
		return nil, nil, domain.UnauthorizedError{Msg: "Unauthorized"}
	}
	user, err := s.users.GetByUsername(ctx, claims.Subject)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, nil, domain.UnauthorizedError{Msg: "Unauthorized"}
		}
		return nil, nil, err
	}
	return user, claims, nil
}

func (s *AuthService) ChangePassword(ctx context.Context, username, oldPassword, newPassword string) error {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return err
	}
	if !security.VerifyPassword(user.PasswordHash, oldPassword) {
		return ErrOldPasswordWrong
	}
	if security.VerifyPassword(user.PasswordHash, newPassword) {
		return ErrPasswordReused
	}

	hash, err := security.HashPassword(newPassword, s.bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.users.UpdatePassword(ctx, user.ID, hash, s.now().UTC()); err != nil {
		return err
	}
	s.log.Infof("auth", "password changed for %s", username)
	return nil
}

var _ AuthUseCase = (*AuthService)(nil)

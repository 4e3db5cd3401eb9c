package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/Domenick1991/flightbooking/internal/domain"
	"github.com/go-sql-driver/mysql"
)

const mysqlDuplicateEntry = 1062

type UserRepository interface {
	ExistsByUsername(ctx context.Context, username string) (bool, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByID(ctx context.Context, id int64) (*domain.User, error)
	UpdatePassword(ctx context.Context, id int64, hash string, changedAt time.Time) error
	SetForcePasswordChange(ctx context.Context, id int64, force bool) error
}

// MySQLUserRepository keeps users and their roles in the auth database.
type MySQLUserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) *MySQLUserRepository {
	return &MySQLUserRepository{db: db}
}

var userSchema = []string{
	`CREATE TABLE IF NOT EXISTS roles (
		id INT AUTO_INCREMENT PRIMARY KEY,
		name VARCHAR(20) NOT NULL UNIQUE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS users (
		id BIGINT AUTO_INCREMENT PRIMARY KEY,
		username VARCHAR(20) NOT NULL UNIQUE,
		email VARCHAR(50) NOT NULL UNIQUE,
		password VARCHAR(120) NOT NULL,
		password_last_changed_at TIMESTAMP NULL,
		force_password_change BOOLEAN NOT NULL DEFAULT FALSE
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`CREATE TABLE IF NOT EXISTS user_roles (
		user_id BIGINT NOT NULL,
		role_id INT NOT NULL,
		PRIMARY KEY (user_id, role_id),
		FOREIGN KEY (user_id) REFERENCES users(id) ON DELETE CASCADE,
		FOREIGN KEY (role_id) REFERENCES roles(id)
	) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	`INSERT IGNORE INTO roles (name) VALUES ('ROLE_USER'), ('ROLE_ADMIN')`,
}

// InitTables creates the user tables and seeds the known roles.
func (r *MySQLUserRepository) InitTables(ctx context.Context) error {
	for _, stmt := range userSchema {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to initialize user tables: %w", err)
		}
	}
	return nil
}

func (r *MySQLUserRepository) ExistsByUsername(ctx context.Context, username string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE username = ?)`, username)
}

func (r *MySQLUserRepository) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return r.exists(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE email = ?)`, email)
}

func (r *MySQLUserRepository) exists(ctx context.Context, query string, arg any) (bool, error) {
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, arg).Scan(&exists); err != nil {
		return false, err
	}
	return exists, nil
}

func (r *MySQLUserRepository) Create(ctx context.Context, u *domain.User) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		`INSERT INTO users (username, email, password, password_last_changed_at, force_password_change) VALUES (?, ?, ?, ?, ?)`,
		u.Username, u.Email, u.PasswordHash, u.PasswordLastChangedAt, u.ForcePasswordChange)
	if err != nil {
		var myErr *mysql.MySQLError
		if errors.As(err, &myErr) && myErr.Number == mysqlDuplicateEntry {
			return domain.ConflictError{Msg: "username or email already in use", Err: err}
		}
		return err
	}
	if u.ID, err = res.LastInsertId(); err != nil {
		return err
	}

	for _, role := range u.Roles {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO user_roles (user_id, role_id) SELECT ?, id FROM roles WHERE name = ?`, u.ID, string(role)); err != nil {
			return fmt.Errorf("assign role %s: %w", role, err)
		}
	}

	return tx.Commit()
}

const userSelect = `SELECT u.id, u.username, u.email, u.password, u.password_last_changed_at, u.force_password_change,
	COALESCE(GROUP_CONCAT(r.name ORDER BY r.id SEPARATOR ','), '')
	FROM users u
	LEFT JOIN user_roles ur ON ur.user_id = u.id
	LEFT JOIN roles r ON r.id = ur.role_id`

func (r *MySQLUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	return r.get(ctx, userSelect+` WHERE u.username = ? GROUP BY u.id`, username)
}

func (r *MySQLUserRepository) GetByID(ctx context.Context, id int64) (*domain.User, error) {
	return r.get(ctx, userSelect+` WHERE u.id = ? GROUP BY u.id`, id)
}

func (r *MySQLUserRepository) get(ctx context.Context, query string, arg any) (*domain.User, error) {
	var (
		u         domain.User
		changedAt sql.NullTime
		roles     string
	)
	err := r.db.QueryRowContext(ctx, query, arg).
		Scan(&u.ID, &u.Username, &u.Email, &u.PasswordHash, &changedAt, &u.ForcePasswordChange, &roles)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NotFoundError{Msg: "User not found", Err: err}
		}
		return nil, err
	}
	if changedAt.Valid {
		u.PasswordLastChangedAt = changedAt.Time
	}
	for _, name := range strings.Split(roles, ",") {
		if name != "" {
			u.Roles = append(u.Roles, domain.Role(name))
		}
	}
	return &u, nil
}

func (r *MySQLUserRepository) UpdatePassword(ctx context.Context, id int64, hash string, changedAt time.Time) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET password = ?, password_last_changed_at = ?, force_password_change = FALSE WHERE id = ?`,
		hash, changedAt, id)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *MySQLUserRepository) SetForcePasswordChange(ctx context.Context, id int64, force bool) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET force_password_change = ? WHERE id = ?`, force, id)
	return err
}

func requireAffected(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return domain.NewNotFound("User not found")
	}
	return nil
}

var _ UserRepository = (*MySQLUserRepository)(nil)

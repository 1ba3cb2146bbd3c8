package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/examgate/examgate/application/port/outbound"
	"github.com/examgate/examgate/domain/entity"
)

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) outbound.UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, username, password, role, full_name, user_code, account_status, gender, refresh_token, token_expiration, created_at, updated_at`

func (r *userRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, id), "find user by id")
}

func (r *userRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE username = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, username), "find user by username")
}

func (r *userRepository) FindByRefreshToken(ctx context.Context, token string) (*entity.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE refresh_token = $1`
	return r.scanOne(r.db.QueryRowContext(ctx, query, token), "find user by refresh token")
}

// UpdateRefreshToken overwrites the stored refresh token and expiry in one
// statement. The single UPDATE is what serializes concurrent rotations of the
// same user: last writer wins.
func (r *userRepository) UpdateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	query := `
		UPDATE users
		SET refresh_token = $2, token_expiration = $3, updated_at = $4
		WHERE id = $1
	`

	result, err := r.db.ExecContext(ctx, query, userID, token, expiresAt, time.Now())
	if err != nil {
		return fmt.Errorf("failed to update refresh token: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check refresh token update: %w", err)
	}
	if affected == 0 {
		return outbound.ErrUserNotFound
	}
	return nil
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	query := `
		INSERT INTO users (id, username, password, role, full_name, user_code, account_status, gender, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`

	_, err := r.db.ExecContext(ctx, query,
		user.ID,
		user.Username,
		user.Password,
		user.Role.String(),
		user.FullName,
		user.UserCode,
		user.AccountStatus,
		user.Gender,
		user.CreatedAt,
		user.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (r *userRepository) scanOne(row *sql.Row, op string) (*entity.User, error) {
	var user entity.User
	var role string
	var refreshToken sql.NullString
	var tokenExpiration sql.NullTime

	err := row.Scan(
		&user.ID,
		&user.Username,
		&user.Password,
		&role,
		&user.FullName,
		&user.UserCode,
		&user.AccountStatus,
		&user.Gender,
		&refreshToken,
		&tokenExpiration,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, outbound.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to %s: %w", op, err)
	}

	user.Role = entity.Role(role)
	if refreshToken.Valid {
		user.RefreshToken = &refreshToken.String
	}
	if tokenExpiration.Valid {
		user.TokenExpiration = &tokenExpiration.Time
	}
	return &user, nil
}

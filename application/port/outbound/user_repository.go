package outbound

import (
	"context"
	"errors"
	"time"

	"github.com/examgate/examgate/domain/entity"
)

var ErrUserNotFound = errors.New("user not found")

type UserRepository interface {
	FindByID(ctx context.Context, id string) (*entity.User, error)
	FindByUsername(ctx context.Context, username string) (*entity.User, error)
	FindByRefreshToken(ctx context.Context, token string) (*entity.User, error)
	// UpdateRefreshToken atomically replaces the user's refresh token and its
	// expiry in a single write. It is the only serialization point for
	// concurrent refreshes of the same user (last writer wins).
	UpdateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error
	Create(ctx context.Context, user *entity.User) error
}

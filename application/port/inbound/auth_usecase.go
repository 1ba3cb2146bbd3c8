package inbound

import (
	"context"

	"github.com/examgate/examgate/domain/valueobject"
)

// UserProfile is the profile view returned to an authenticated caller.
// Optional stored fields come back as empty strings, never null.
type UserProfile struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	FullName      string `json:"full_name"`
	UserCode      string `json:"user_code"`
	Role          string `json:"role"`
	AccountStatus string `json:"account_status"`
	Gender        string `json:"gender"`
}

type AuthUseCase interface {
	// Authenticate verifies a username/password pair and, on success, issues
	// an access token plus a fresh rotating refresh token. Unknown usernames
	// and wrong passwords surface as one uniform invalid-credentials error.
	Authenticate(ctx context.Context, username, password string) (*valueobject.AuthResult, error)
	// Refresh exchanges a live refresh token for a new token pair,
	// invalidating the presented token. Unknown and expired tokens surface
	// as one uniform invalid-token error.
	Refresh(ctx context.Context, refreshToken string) (*valueobject.AuthResult, error)
	GetUserProfile(ctx context.Context, userID string) (*UserProfile, error)
}

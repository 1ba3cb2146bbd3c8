package entity

import (
	"time"
)

// User is the stored account record. Profile fields (FullName, UserCode,
// AccountStatus, Gender) are opaque to the auth flows and passed through
// untouched.
type User struct {
	ID            string `json:"id"`
	Username      string `json:"username"`
	Password      string `json:"-"`
	Role          Role   `json:"role"`
	FullName      string `json:"full_name"`
	UserCode      string `json:"user_code"`
	AccountStatus string `json:"account_status"`
	Gender        string `json:"gender"`

	// RefreshToken and TokenExpiration track the single live refresh token.
	// Issuing a new token invalidates the old one by overwrite.
	RefreshToken    *string    `json:"-"`
	TokenExpiration *time.Time `json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func NewUser(id, username, password string, role Role) *User {
	now := time.Now()
	return &User{
		ID:        id,
		Username:  username,
		Password:  password,
		Role:      role,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RefreshTokenExpired reports whether the stored refresh token is dead at the
// given instant. A record without an expiry counts as expired.
func (u *User) RefreshTokenExpired(now time.Time) bool {
	if u.TokenExpiration == nil {
		return true
	}
	return !now.Before(*u.TokenExpiration)
}

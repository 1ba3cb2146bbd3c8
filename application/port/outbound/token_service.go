package outbound

import "time"

// TokenClaims is the identity embedded in a signed access token. The wire
// encoding belongs to the TokenService implementation; this struct is the
// decoded view.
type TokenClaims struct {
	Subject   string
	Username  string
	Role      string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

type TokenService interface {
	GenerateAccessToken(claims TokenClaims) (string, error)
	// GenerateRefreshToken returns an opaque, cryptographically random token.
	GenerateRefreshToken() (string, error)
	ValidateAccessToken(token string) (*TokenClaims, error)
}

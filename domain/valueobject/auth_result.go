package valueobject

// AuthResult is the value returned by a successful authentication or token
// refresh. It is never persisted as-is.
type AuthResult struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	Role         string `json:"role"`
}

func NewAuthResult(accessToken, refreshToken, role string) *AuthResult {
	return &AuthResult{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		Role:         role,
	}
}

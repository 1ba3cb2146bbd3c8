package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/examgate/examgate/application/port/outbound"
	"github.com/examgate/examgate/domain/entity"
	"github.com/examgate/examgate/infrastructure/http/response"
)

type contextKey string

const authClaimsKey contextKey = "auth_claims"

type AuthMiddleware struct {
	tokenService outbound.TokenService
}

func NewAuthMiddleware(tokenService outbound.TokenService) *AuthMiddleware {
	return &AuthMiddleware{tokenService: tokenService}
}

func (m *AuthMiddleware) RequireAuth(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header required")
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.tokenService.ValidateAccessToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := context.WithValue(r.Context(), authClaimsKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	}
}

// RequireAdmin wraps RequireAuth and additionally checks the role claim.
func (m *AuthMiddleware) RequireAdmin(next http.HandlerFunc) http.HandlerFunc {
	return m.RequireAuth(func(w http.ResponseWriter, r *http.Request) {
		claims := GetUserClaims(r.Context())
		if claims == nil || !entity.Role(claims.Role).IsAdmin() {
			response.Forbidden(w, "Admin access required")
			return
		}
		next.ServeHTTP(w, r)
	})
}

// GetUserClaims returns the validated token claims stored by RequireAuth, or
// nil when the request was not authenticated.
func GetUserClaims(ctx context.Context) *outbound.TokenClaims {
	claims, ok := ctx.Value(authClaimsKey).(*outbound.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}

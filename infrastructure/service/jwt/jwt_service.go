package jwt

import (
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/examgate/examgate/application/port/outbound"
)

var (
	// ErrMissingSecret means the signing secret was absent or empty. This is
	// a deployment misconfiguration and is raised at construction rather
	// than degrading to an unsigned token.
	ErrMissingSecret = errors.New("jwt signing secret is missing")
	ErrInvalidToken  = errors.New("invalid token")
	ErrTokenExpired  = errors.New("token expired")
)

type JWTService struct {
	secret         []byte
	issuer         string
	audience       string
	accessTokenTTL time.Duration
	clock          outbound.Clock
}

type accessTokenClaims struct {
	Name string `json:"name"`
	Role string `json:"role"`
	jwt.RegisteredClaims
}

func NewJWTService(secret, issuer, audience string, accessTokenTTL time.Duration, clk outbound.Clock) (*JWTService, error) {
	if secret == "" {
		return nil, ErrMissingSecret
	}
	return &JWTService{
		secret:         []byte(secret),
		issuer:         issuer,
		audience:       audience,
		accessTokenTTL: accessTokenTTL,
		clock:          clk,
	}, nil
}

// GenerateAccessToken signs an HS256 token carrying the subject identity. The
// issued-at and expiry come from the injected clock, so two calls at the same
// instant produce identical tokens.
func (s *JWTService) GenerateAccessToken(claims outbound.TokenClaims) (string, error) {
	now := s.clock.Now()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessTokenClaims{
		Name: claims.Username,
		Role: claims.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   claims.Subject,
			Issuer:    s.issuer,
			Audience:  jwt.ClaimStrings{s.audience},
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTokenTTL)),
		},
	})

	tokenString, err := token.SignedString(s.secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign access token: %w", err)
	}
	return tokenString, nil
}

// GenerateRefreshToken returns 32 bytes of crypto/rand output, base64url
// encoded. The token is opaque: it carries no claims and is only meaningful
// as a stored lookup key.
func (s *JWTService) GenerateRefreshToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}

// ValidateAccessToken checks signature, issuer, audience and expiry against
// the service clock and returns the embedded claims.
func (s *JWTService) ValidateAccessToken(tokenString string) (*outbound.TokenClaims, error) {
	var claims accessTokenClaims

	token, err := jwt.ParseWithClaims(tokenString, &claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return s.secret, nil
	},
		jwt.WithIssuer(s.issuer),
		jwt.WithAudience(s.audience),
		jwt.WithTimeFunc(s.clock.Now),
	)
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, ErrInvalidToken
	}
	if !token.Valid {
		return nil, ErrInvalidToken
	}

	out := &outbound.TokenClaims{
		Subject:  claims.Subject,
		Username: claims.Name,
		Role:     claims.Role,
	}
	if claims.IssuedAt != nil {
		out.IssuedAt = claims.IssuedAt.Time
	}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}

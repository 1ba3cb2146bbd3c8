package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/examgate/examgate/application/port/inbound"
	"github.com/examgate/examgate/application/port/outbound"
	"github.com/examgate/examgate/domain/entity"
	"github.com/examgate/examgate/domain/valueobject"
	"github.com/examgate/examgate/infrastructure/service/logger"
)

var (
	// ErrInvalidCredentials covers every authentication failure: unknown
	// username, empty username, wrong or empty password. Callers cannot tell
	// these apart.
	ErrInvalidCredentials = errors.New("invalid username or password")
	// ErrInvalidRefreshToken covers unknown, already-rotated and expired
	// refresh tokens.
	ErrInvalidRefreshToken = errors.New("invalid refresh token")
)

type AuthUseCase struct {
	userRepository  outbound.UserRepository
	tokenService    outbound.TokenService
	passwordService outbound.PasswordService
	clock           outbound.Clock
	logger          logger.Logger
	refreshTokenTTL time.Duration
}

func NewAuthUseCase(
	userRepo outbound.UserRepository,
	tokenService outbound.TokenService,
	passwordService outbound.PasswordService,
	clock outbound.Clock,
	log logger.Logger,
	refreshTokenTTL time.Duration,
) inbound.AuthUseCase {
	return &AuthUseCase{
		userRepository:  userRepo,
		tokenService:    tokenService,
		passwordService: passwordService,
		clock:           clock,
		logger:          log,
		refreshTokenTTL: refreshTokenTTL,
	}
}

func (uc *AuthUseCase) Authenticate(ctx context.Context, username, password string) (*valueobject.AuthResult, error) {
	// Empty username never matches a record; skip the round trip.
	if username == "" {
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_empty_username", "", false, nil)
		return nil, ErrInvalidCredentials
	}

	user, err := uc.userRepository.FindByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			logger.LogAuthEvent(ctx, uc.logger, "login_failed_user_not_found", "", false, map[string]interface{}{
				"username": username,
			})
			return nil, ErrInvalidCredentials
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"username": username,
		})
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	if !uc.passwordService.VerifyPassword(password, user.Password) {
		logger.LogAuthEvent(ctx, uc.logger, "login_failed_invalid_password", user.ID, false, map[string]interface{}{
			"username": username,
		})
		return nil, ErrInvalidCredentials
	}

	result, err := uc.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "login_successful", user.ID, true, map[string]interface{}{
		"username": username,
	})
	return result, nil
}

func (uc *AuthUseCase) Refresh(ctx context.Context, refreshToken string) (*valueobject.AuthResult, error) {
	if refreshToken == "" {
		return nil, ErrInvalidRefreshToken
	}

	user, err := uc.userRepository.FindByRefreshToken(ctx, refreshToken)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_not_found", "MEDIUM", nil)
			return nil, ErrInvalidRefreshToken
		}
		uc.logger.Error(ctx, "Failed to find refresh token", err, nil)
		return nil, fmt.Errorf("failed to find refresh token: %w", err)
	}

	if user.RefreshTokenExpired(uc.clock.Now()) {
		logger.LogSecurityEvent(ctx, uc.logger, "refresh_token_expired", "MEDIUM", map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, ErrInvalidRefreshToken
	}

	result, err := uc.issueTokens(ctx, user)
	if err != nil {
		return nil, err
	}

	logger.LogAuthEvent(ctx, uc.logger, "token_refresh_successful", user.ID, true, nil)
	return result, nil
}

func (uc *AuthUseCase) GetUserProfile(ctx context.Context, userID string) (*inbound.UserProfile, error) {
	if userID == "" {
		return nil, outbound.ErrUserNotFound
	}

	user, err := uc.userRepository.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, outbound.ErrUserNotFound) {
			return nil, outbound.ErrUserNotFound
		}
		uc.logger.Error(ctx, "Failed to find user", err, map[string]interface{}{
			"user_id": userID,
		})
		return nil, fmt.Errorf("failed to find user: %w", err)
	}

	return &inbound.UserProfile{
		ID:            user.ID,
		Username:      user.Username,
		FullName:      user.FullName,
		UserCode:      user.UserCode,
		Role:          user.Role.String(),
		AccountStatus: user.AccountStatus,
		Gender:        user.Gender,
	}, nil
}

// issueTokens mints a new access/refresh token pair for the user and persists
// the refresh token in one write. The persist must be acknowledged before the
// pair is handed out, so a failed write never leaks a half-issued session.
func (uc *AuthUseCase) issueTokens(ctx context.Context, user *entity.User) (*valueobject.AuthResult, error) {
	accessToken, err := uc.tokenService.GenerateAccessToken(outbound.TokenClaims{
		Subject:  user.ID,
		Username: user.Username,
		Role:     user.Role.String(),
	})
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate access token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err := uc.tokenService.GenerateRefreshToken()
	if err != nil {
		uc.logger.Error(ctx, "Failed to generate refresh token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	expiresAt := uc.clock.Now().Add(uc.refreshTokenTTL)
	if err := uc.userRepository.UpdateRefreshToken(ctx, user.ID, refreshToken, expiresAt); err != nil {
		uc.logger.Error(ctx, "Failed to persist refresh token", err, map[string]interface{}{
			"user_id": user.ID,
		})
		return nil, fmt.Errorf("failed to persist refresh token: %w", err)
	}

	return valueobject.NewAuthResult(accessToken, refreshToken, user.Role.String()), nil
}

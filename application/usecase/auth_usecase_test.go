package usecase_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/examgate/examgate/application/port/inbound"
	"github.com/examgate/examgate/application/port/outbound"
	"github.com/examgate/examgate/application/usecase"
	"github.com/examgate/examgate/domain/entity"
	"github.com/examgate/examgate/infrastructure/service/clock"
	"github.com/examgate/examgate/infrastructure/service/jwt"
	"github.com/examgate/examgate/infrastructure/service/logger"
	"github.com/examgate/examgate/infrastructure/service/password"
)

const (
	testSecret   = "very_secret_key_that_is_long_enough"
	testIssuer   = "test_issuer"
	testAudience = "test_audience"

	accessTokenTTL  = 30 * time.Minute
	refreshTokenTTL = 7 * 24 * time.Hour

	// Low cost keeps hashing fast in tests; verification behavior is the same.
	bcryptTestCost = 4
)

// fakeUserRepository is an in-memory UserRepository keyed by user ID.
type fakeUserRepository struct {
	mu          sync.Mutex
	users       map[string]*entity.User
	findErr     error
	updateErr   error
	updateCalls int
}

func newFakeUserRepository(users ...*entity.User) *fakeUserRepository {
	repo := &fakeUserRepository{users: make(map[string]*entity.User)}
	for _, u := range users {
		repo.users[u.ID] = cloneUser(u)
	}
	return repo
}

func (r *fakeUserRepository) FindByID(ctx context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	if u, ok := r.users[id]; ok {
		return cloneUser(u), nil
	}
	return nil, outbound.ErrUserNotFound
}

func (r *fakeUserRepository) FindByUsername(ctx context.Context, username string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.Username == username {
			return cloneUser(u), nil
		}
	}
	return nil, outbound.ErrUserNotFound
}

func (r *fakeUserRepository) FindByRefreshToken(ctx context.Context, token string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.findErr != nil {
		return nil, r.findErr
	}
	for _, u := range r.users {
		if u.RefreshToken != nil && *u.RefreshToken == token {
			return cloneUser(u), nil
		}
	}
	return nil, outbound.ErrUserNotFound
}

func (r *fakeUserRepository) UpdateRefreshToken(ctx context.Context, userID, token string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.updateCalls++
	if r.updateErr != nil {
		return r.updateErr
	}
	u, ok := r.users[userID]
	if !ok {
		return outbound.ErrUserNotFound
	}
	u.RefreshToken = &token
	u.TokenExpiration = &expiresAt
	return nil
}

func (r *fakeUserRepository) Create(ctx context.Context, user *entity.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = cloneUser(user)
	return nil
}

func (r *fakeUserRepository) stored(id string) *entity.User {
	r.mu.Lock()
	defer r.mu.Unlock()
	return cloneUser(r.users[id])
}

func cloneUser(u *entity.User) *entity.User {
	if u == nil {
		return nil
	}
	cp := *u
	if u.RefreshToken != nil {
		token := *u.RefreshToken
		cp.RefreshToken = &token
	}
	if u.TokenExpiration != nil {
		exp := *u.TokenExpiration
		cp.TokenExpiration = &exp
	}
	return &cp
}

func newTestUser(t *testing.T, username, plaintext string) *entity.User {
	t.Helper()
	hash, err := password.NewBcryptPasswordService(bcryptTestCost).HashPassword(plaintext)
	require.NoError(t, err)

	user := entity.NewUser("123", username, hash, entity.RoleUser)
	user.UserCode = "TEST001"
	user.FullName = "Test User"
	user.AccountStatus = "Active"
	return user
}

func withRefreshToken(u *entity.User, token string, expiresAt time.Time) *entity.User {
	u.RefreshToken = &token
	u.TokenExpiration = &expiresAt
	return u
}

func buildAuthUseCase(t *testing.T, repo *fakeUserRepository, clk *clock.Fixed) (inbound.AuthUseCase, *jwt.JWTService) {
	t.Helper()
	tokenService, err := jwt.NewJWTService(testSecret, testIssuer, testAudience, accessTokenTTL, clk)
	require.NoError(t, err)

	uc := usecase.NewAuthUseCase(
		repo,
		tokenService,
		password.NewBcryptPasswordService(bcryptTestCost),
		clk,
		logger.NewNopLogger(),
		refreshTokenTTL,
	)
	return uc, tokenService
}

func TestAuthenticate_ValidCredentials(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	user := withRefreshToken(newTestUser(t, "testuser", "testpass"), "old_refresh_token", clk.Now().Add(24*time.Hour))
	repo := newFakeUserRepository(user)
	uc, tokenService := buildAuthUseCase(t, repo, clk)

	result, err := uc.Authenticate(ctx, "testuser", "testpass")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEmpty(t, result.RefreshToken)
	assert.Equal(t, "User", result.Role)
	assert.NotEqual(t, "old_refresh_token", result.RefreshToken)

	claims, err := tokenService.ValidateAccessToken(result.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, "123", claims.Subject)
	assert.Equal(t, "testuser", claims.Username)
	assert.Equal(t, "User", claims.Role)

	stored := repo.stored("123")
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, result.RefreshToken, *stored.RefreshToken)
	require.NotNil(t, stored.TokenExpiration)
	assert.Equal(t, clk.Now().Add(refreshTokenTTL), *stored.TokenExpiration)
}

func TestAuthenticate_UnknownUsername(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := newFakeUserRepository(newTestUser(t, "testuser", "testpass"))
	uc, _ := buildAuthUseCase(t, repo, clk)

	result, err := uc.Authenticate(ctx, "nonexistent", "password123")

	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
	assert.Nil(t, result)
	assert.Zero(t, repo.updateCalls, "a failed login must not touch any user record")
}

func TestAuthenticate_EmptyUsername(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := newFakeUserRepository(newTestUser(t, "testuser", "testpass"))
	uc, _ := buildAuthUseCase(t, repo, clk)

	result, err := uc.Authenticate(ctx, "", "testpass")

	assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
	assert.Nil(t, result)
	assert.Zero(t, repo.updateCalls)
}

func TestAuthenticate_WrongPassword(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	user := withRefreshToken(newTestUser(t, "testuser", "correctpass"), "live_token", clk.Now().Add(24*time.Hour))
	repo := newFakeUserRepository(user)
	uc, _ := buildAuthUseCase(t, repo, clk)

	for _, wrong := range []string{"wrongpass", ""} {
		result, err := uc.Authenticate(ctx, "testuser", wrong)

		assert.ErrorIs(t, err, usecase.ErrInvalidCredentials)
		assert.Nil(t, result)
	}

	stored := repo.stored("123")
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, "live_token", *stored.RefreshToken, "failed logins must leave the stored refresh token alone")
}

func TestAuthenticate_SameFailureForUnknownUserAndWrongPassword(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := newFakeUserRepository(newTestUser(t, "testuser", "testpass"))
	uc, _ := buildAuthUseCase(t, repo, clk)

	_, unknownErr := uc.Authenticate(ctx, "nonexistent", "testpass")
	_, wrongPassErr := uc.Authenticate(ctx, "testuser", "wrongpass")

	assert.Equal(t, unknownErr, wrongPassErr, "callers must not be able to tell the two failures apart")
}

func TestAuthenticate_RepositoryFailure(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := newFakeUserRepository(newTestUser(t, "testuser", "testpass"))
	repo.findErr = errors.New("connection reset")
	uc, _ := buildAuthUseCase(t, repo, clk)

	result, err := uc.Authenticate(ctx, "testuser", "testpass")

	require.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrInvalidCredentials, "infrastructure failures must not look like bad credentials")
	assert.Nil(t, result)
}

func TestAuthenticate_PersistFailureReturnsNoTokens(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	repo := newFakeUserRepository(newTestUser(t, "testuser", "testpass"))
	repo.updateErr = errors.New("write timeout")
	uc, _ := buildAuthUseCase(t, repo, clk)

	result, err := uc.Authenticate(ctx, "testuser", "testpass")

	require.Error(t, err)
	assert.NotErrorIs(t, err, usecase.ErrInvalidCredentials)
	assert.Nil(t, result, "an unacknowledged persist must not hand out tokens")
}

func TestRefresh_RotatesToken(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	user := withRefreshToken(newTestUser(t, "testuser", "testpass"), "valid_refresh_token", clk.Now().Add(24*time.Hour))
	repo := newFakeUserRepository(user)
	uc, _ := buildAuthUseCase(t, repo, clk)

	result, err := uc.Refresh(ctx, "valid_refresh_token")

	require.NoError(t, err)
	require.NotNil(t, result)
	assert.NotEmpty(t, result.AccessToken)
	assert.NotEqual(t, "valid_refresh_token", result.RefreshToken)

	stored := repo.stored("123")
	require.NotNil(t, stored.RefreshToken)
	assert.Equal(t, result.RefreshToken, *stored.RefreshToken)

	// Single use: the presented token died when it was rotated out.
	replayed, err := uc.Refresh(ctx, "valid_refresh_token")
	assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)
	assert.Nil(t, replayed)

	// The replacement token still works.
	next, err := uc.Refresh(ctx, result.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, result.RefreshToken, next.RefreshToken)
}

func TestRefresh_ExpiryBoundary(t *testing.T) {
	ctx := context.Background()
	expiry := time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

	t.Run("just before expiry succeeds", func(t *testing.T) {
		clk := clock.NewFixed(expiry.Add(-time.Second))
		user := withRefreshToken(newTestUser(t, "testuser", "testpass"), "boundary_token", expiry)
		uc, _ := buildAuthUseCase(t, newFakeUserRepository(user), clk)

		result, err := uc.Refresh(ctx, "boundary_token")
		require.NoError(t, err)
		assert.NotNil(t, result)
	})

	t.Run("exactly at expiry fails", func(t *testing.T) {
		clk := clock.NewFixed(expiry)
		user := withRefreshToken(newTestUser(t, "testuser", "testpass"), "boundary_token", expiry)
		repo := newFakeUserRepository(user)
		uc, _ := buildAuthUseCase(t, repo, clk)

		result, err := uc.Refresh(ctx, "boundary_token")
		assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)
		assert.Nil(t, result)
		assert.Zero(t, repo.updateCalls, "an expired token must not be reissued")
	})

	t.Run("past expiry fails", func(t *testing.T) {
		clk := clock.NewFixed(expiry.Add(24 * time.Hour))
		user := withRefreshToken(newTestUser(t, "testuser", "testpass"), "boundary_token", expiry)
		uc, _ := buildAuthUseCase(t, newFakeUserRepository(user), clk)

		result, err := uc.Refresh(ctx, "boundary_token")
		assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)
		assert.Nil(t, result)
	})
}

func TestRefresh_UnknownToken(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	uc, _ := buildAuthUseCase(t, newFakeUserRepository(newTestUser(t, "testuser", "testpass")), clk)

	for _, token := range []string{"never_issued", ""} {
		result, err := uc.Refresh(ctx, token)
		assert.ErrorIs(t, err, usecase.ErrInvalidRefreshToken)
		assert.Nil(t, result)
	}
}

func TestMissingSecretIsFatalAtConstruction(t *testing.T) {
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))

	_, err := jwt.NewJWTService("", testIssuer, testAudience, accessTokenTTL, clk)

	assert.ErrorIs(t, err, jwt.ErrMissingSecret, "an unsigned or weakly-signed token must never be a silent fallback")
}

func TestGetUserProfile(t *testing.T) {
	ctx := context.Background()
	clk := clock.NewFixed(time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC))
	user := newTestUser(t, "testuser", "testpass")
	user.Gender = ""
	uc, _ := buildAuthUseCase(t, newFakeUserRepository(user), clk)

	profile, err := uc.GetUserProfile(ctx, "123")
	require.NoError(t, err)
	assert.Equal(t, "123", profile.ID)
	assert.Equal(t, "testuser", profile.Username)
	assert.Equal(t, "Test User", profile.FullName)
	assert.Equal(t, "TEST001", profile.UserCode)
	assert.Equal(t, "User", profile.Role)
	assert.Equal(t, "", profile.Gender)

	_, err = uc.GetUserProfile(ctx, "nonexistent")
	assert.ErrorIs(t, err, outbound.ErrUserNotFound)

	_, err = uc.GetUserProfile(ctx, "")
	assert.ErrorIs(t, err, outbound.ErrUserNotFound)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daygrid/core/internal/domain/entities"
	"github.com/daygrid/core/internal/infrastructure/config"
	"github.com/daygrid/core/internal/ports"
)

type memUserRepo struct {
	users []*entities.User
}

func (m *memUserRepo) Create(ctx context.Context, user *entities.User) error {
	m.users = append(m.users, user)
	return nil
}

func (m *memUserRepo) GetByID(ctx context.Context, id uuid.UUID) (*entities.User, error) {
	for _, u := range m.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (m *memUserRepo) GetByEmail(ctx context.Context, email string) (*entities.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (m *memUserRepo) GetByUsername(ctx context.Context, username string) (*entities.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

type memAuthRepo struct {
	tokens map[string]*ports.RefreshToken
}

func newMemAuthRepo() *memAuthRepo {
	return &memAuthRepo{tokens: make(map[string]*ports.RefreshToken)}
}

func (m *memAuthRepo) CreateRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string, expiresAt time.Time) error {
	m.tokens[tokenHash] = &ports.RefreshToken{
		ID:        uuid.New(),
		UserID:    userID,
		TokenHash: tokenHash,
		ExpiresAt: expiresAt,
		CreatedAt: time.Now(),
	}
	return nil
}

func (m *memAuthRepo) GetRefreshToken(ctx context.Context, tokenHash string) (*ports.RefreshToken, error) {
	token, ok := m.tokens[tokenHash]
	if !ok {
		return nil, entities.ErrUserNotFound
	}
	return token, nil
}

func (m *memAuthRepo) RevokeRefreshToken(ctx context.Context, tokenHash string) error {
	if token, ok := m.tokens[tokenHash]; ok && token.RevokedAt == nil {
		now := time.Now()
		token.RevokedAt = &now
	}
	return nil
}

func (m *memAuthRepo) RevokeAllUserTokens(ctx context.Context, userID uuid.UUID) error {
	now := time.Now()
	for _, token := range m.tokens {
		if token.UserID == userID && token.RevokedAt == nil {
			token.RevokedAt = &now
		}
	}
	return nil
}

func (m *memAuthRepo) CleanupExpiredTokens(ctx context.Context) error { return nil }

func newTestAuthService(t *testing.T) (*AuthService, *memUserRepo, *memAuthRepo) {
	t.Helper()
	userRepo := &memUserRepo{}
	authRepo := newMemAuthRepo()
	jwtConfig := config.JWTConfig{
		Secret:           "test-secret-not-for-production",
		ExpiresIn:        time.Hour,
		RefreshExpiresIn: 24 * time.Hour,
		Issuer:           "daygrid-test",
	}
	return NewAuthService(userRepo, authRepo, jwtConfig, testLogger(t)), userRepo, authRepo
}

func register(t *testing.T, svc *AuthService) *ports.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), ports.RegisterRequest{
		Email:    "ada@example.com",
		Username: "ada",
		Password: "correct horse battery",
	})
	require.NoError(t, err)
	return resp
}

func TestRegisterIssuesTokens(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	resp := register(t, svc)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, "Bearer", resp.TokenType)
	assert.Empty(t, resp.User.PasswordHash)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID.String(), claims.UserID)
	assert.Equal(t, "ada@example.com", claims.Email)
}

func TestRegisterKeepsStoredPasswordHash(t *testing.T) {
	svc, userRepo, _ := newTestAuthService(t)

	resp := register(t, svc)
	assert.Empty(t, resp.User.PasswordHash)

	// The response is sanitized; the persisted entity keeps its hash so
	// the account can still log in.
	require.Len(t, userRepo.users, 1)
	assert.NotEmpty(t, userRepo.users[0].PasswordHash)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	register(t, svc)

	_, err := svc.Register(context.Background(), ports.RegisterRequest{
		Email:    "ada@example.com",
		Username: "other",
		Password: "password123",
	})
	assert.ErrorContains(t, err, "already exists")
}

func TestLoginByEmailOrUsername(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	register(t, svc)

	byEmail, err := svc.Login(context.Background(), ports.LoginRequest{
		Identifier: "ada@example.com",
		Password:   "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada", byEmail.User.Username)

	byUsername, err := svc.Login(context.Background(), ports.LoginRequest{
		Identifier: "ada",
		Password:   "correct horse battery",
	})
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", byUsername.User.Email)
}

func TestLoginWrongPassword(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	register(t, svc)

	_, err := svc.Login(context.Background(), ports.LoginRequest{
		Identifier: "ada",
		Password:   "wrong",
	})
	assert.ErrorContains(t, err, "invalid credentials")
}

func TestRefreshTokenRotation(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	resp := register(t, svc)

	rotated, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	require.NoError(t, err)
	assert.NotEqual(t, resp.RefreshToken, rotated.RefreshToken)

	// The old refresh token was revoked by the rotation.
	_, err = svc.RefreshToken(context.Background(), resp.RefreshToken)
	assert.Error(t, err)
}

func TestLogoutRevokesRefreshTokens(t *testing.T) {
	svc, _, _ := newTestAuthService(t)
	resp := register(t, svc)

	require.NoError(t, svc.Logout(context.Background(), resp.User.ID))

	_, err := svc.RefreshToken(context.Background(), resp.RefreshToken)
	assert.Error(t, err)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc, _, _ := newTestAuthService(t)

	_, err := svc.ValidateToken("not.a.token")
	assert.Error(t, err)
}

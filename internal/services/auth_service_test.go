package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"live-bidding/internal/domain"
	"live-bidding/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryUserRepo struct {
	mu    sync.Mutex
	users map[string]*domain.User // keyed by id
}

func newMemoryUserRepo() *memoryUserRepo {
	return &memoryUserRepo{users: make(map[string]*domain.User)}
}

func (r *memoryUserRepo) CreateUser(ctx context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.users[user.ID] = user
	return nil
}

func (r *memoryUserRepo) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetUserByUsername(ctx context.Context, username string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Username == username {
			return u, nil
		}
	}
	return nil, nil
}

func (r *memoryUserRepo) GetUserByID(ctx context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.users[id], nil
}

type memorySessionStore struct {
	mu       sync.Mutex
	sessions map[string]string
}

func newMemorySessionStore() *memorySessionStore {
	return &memorySessionStore{sessions: make(map[string]string)}
}

func (s *memorySessionStore) SaveSession(ctx context.Context, userID, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[userID] = token
	return nil
}

func (s *memorySessionStore) GetSession(ctx context.Context, userID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sessions[userID], nil
}

func (s *memorySessionStore) DeleteSession(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, userID)
	return nil
}

func newTestAuthService() (*AuthService, *memoryUserRepo, *memorySessionStore) {
	users := newMemoryUserRepo()
	sessions := newMemorySessionStore()
	svc := NewAuthService(users, sessions, "test-secret", 30*time.Minute, logger.Nop())
	return svc, users, sessions
}

func validRegisterRequest() RegisterRequest {
	return RegisterRequest{
		FirstName:       "Ada",
		LastName:        "Lovelace",
		Email:           "ada@example.com",
		Username:        "ada",
		Password:        "s3cret-pass",
		ConfirmPassword: "s3cret-pass",
	}
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	svc, users, sessions := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, validRegisterRequest()))

	stored, err := users.GetUserByUsername(ctx, "ada")
	require.NoError(t, err)
	require.NotNil(t, stored)
	assert.NotEqual(t, "s3cret-pass", stored.Password) // hashed at rest

	tokens, err := svc.Login(ctx, "ada", "s3cret-pass")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tokens.TokenType)
	assert.NotEmpty(t, tokens.AccessToken)

	saved, err := sessions.GetSession(ctx, stored.ID)
	require.NoError(t, err)
	assert.Equal(t, tokens.AccessToken, saved)
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	missing := validRegisterRequest()
	missing.Email = ""
	assert.ErrorIs(t, svc.Register(ctx, missing), domain.ErrInvalidInput)

	mismatch := validRegisterRequest()
	mismatch.ConfirmPassword = "something-else"
	assert.ErrorIs(t, svc.Register(ctx, mismatch), domain.ErrInvalidInput)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, validRegisterRequest()))

	again := validRegisterRequest()
	again.Username = "ada2"
	assert.ErrorIs(t, svc.Register(ctx, again), domain.ErrUserExists)
}

func TestAuthService_LoginRejectsBadCredentials(t *testing.T) {
	svc, _, _ := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, validRegisterRequest()))

	_, err := svc.Login(ctx, "ada", "wrong-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)

	_, err = svc.Login(ctx, "nobody", "s3cret-pass")
	assert.ErrorIs(t, err, domain.ErrInvalidCredentials)
}

func TestAuthService_TokenRoundTrip(t *testing.T) {
	svc, users, _ := newTestAuthService()
	ctx := context.Background()

	require.NoError(t, svc.Register(ctx, validRegisterRequest()))
	stored, err := users.GetUserByUsername(ctx, "ada")
	require.NoError(t, err)

	tokens, err := svc.Login(ctx, "ada", "s3cret-pass")
	require.NoError(t, err)

	userID, err := svc.CurrentUserID(tokens.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, stored.ID, userID)
}

func TestAuthService_InvalidTokenRejected(t *testing.T) {
	svc, _, _ := newTestAuthService()

	_, err := svc.CurrentUserID("not-a-token")
	assert.ErrorIs(t, err, domain.ErrUnauthorized)

	// Token minted under a different secret fails verification.
	other := NewAuthService(newMemoryUserRepo(), nil, "other-secret", 30*time.Minute, logger.Nop())
	foreign, err := other.mintToken("user-1")
	require.NoError(t, err)

	_, err = svc.CurrentUserID(foreign)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAuthService_ExpiredTokenRejected(t *testing.T) {
	users := newMemoryUserRepo()
	svc := NewAuthService(users, nil, "test-secret", -time.Minute, logger.Nop())

	token, err := svc.mintToken("user-1")
	require.NoError(t, err)

	_, err = svc.CurrentUserID(token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

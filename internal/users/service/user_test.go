package service

import (
	"context"
	"testing"
	"time"

	userserrors "spacelink/internal/users/errors"
	"spacelink/internal/users/validator"
	"spacelink/pkg/auth"
	"spacelink/pkg/config"
	apperrors "spacelink/pkg/errors"
	"spacelink/pkg/logger"
	"spacelink/pkg/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

// memoryUserRepository keeps users in a map keyed by id.
type memoryUserRepository struct {
	users map[string]*model.User
	next  int
}

func newMemoryUserRepository() *memoryUserRepository {
	return &memoryUserRepository{users: map[string]*model.User{}}
}

func (m *memoryUserRepository) Create(_ context.Context, user *model.User) error {
	for _, u := range m.users {
		if u.Email == user.Email {
			return userserrors.ErrDuplicateEmail
		}
	}
	m.next++
	user.ID = string(rune('a' + m.next))
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

func (m *memoryUserRepository) FindByID(_ context.Context, id string) (*model.User, error) {
	u, ok := m.users[id]
	if !ok {
		return nil, userserrors.ErrNotFound
	}
	copied := *u
	return &copied, nil
}

func (m *memoryUserRepository) FindByEmail(_ context.Context, email string) (*model.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			copied := *u
			return &copied, nil
		}
	}
	return nil, userserrors.ErrNotFound
}

func (m *memoryUserRepository) UpdateProfile(_ context.Context, user *model.User) error {
	if _, ok := m.users[user.ID]; !ok {
		return userserrors.ErrNotFound
	}
	copied := *user
	m.users[user.ID] = &copied
	return nil
}

const testSecret = "test-secret-0123456789"

func newTestService(repo *memoryUserRepository) (*userService, *auth.TokenManager) {
	tokens := auth.NewTokenManager(testSecret, time.Hour)
	svc := NewUserService(repo, validator.NewUserValidator(), tokens, &config.Config{Log: logger.Discard()}).(*userService)
	svc.hashCost = bcrypt.MinCost
	return svc, tokens
}

func register(t *testing.T, svc UserService) *model.AuthResponse {
	t.Helper()
	resp, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    " Dana@Example.com ",
		Password: "correct-horse",
		Name:     "Dana",
	})
	require.NoError(t, err)
	return resp
}

func TestRegister(t *testing.T) {
	repo := newMemoryUserRepository()
	svc, tokens := newTestService(repo)

	resp := register(t, svc)

	assert.Equal(t, "dana@example.com", resp.User.Email)
	assert.False(t, resp.User.ProfileComplete)
	assert.NotEqual(t, "correct-horse", repo.users[resp.User.ID].PasswordHash)

	principal, err := tokens.Parse(resp.Token)
	require.NoError(t, err)
	assert.Equal(t, resp.User.ID, principal.UserID)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	svc, _ := newTestService(newMemoryUserRepository())
	register(t, svc)

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "dana@example.com",
		Password: "another-pass",
		Name:     "Dana Again",
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeConflict))
}

func TestRegister_Validation(t *testing.T) {
	svc, _ := newTestService(newMemoryUserRepository())

	_, err := svc.Register(context.Background(), &model.RegisterRequest{
		Email:    "not-an-email",
		Password: "short",
		Name:     "D",
	})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))

	details := apperrors.AsAppError(err).Details
	assert.Contains(t, details, "email")
	assert.Contains(t, details, "password")
	assert.Contains(t, details, "name")
}

func TestLogin(t *testing.T) {
	svc, _ := newTestService(newMemoryUserRepository())
	register(t, svc)

	resp, err := svc.Login(context.Background(), &model.LoginRequest{Email: "DANA@example.com", Password: "correct-horse"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.Token)

	_, err = svc.Login(context.Background(), &model.LoginRequest{Email: "dana@example.com", Password: "wrong-password"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))

	_, err = svc.Login(context.Background(), &model.LoginRequest{Email: "nobody@example.com", Password: "whatever"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeUnauthorized))
}

func TestUpdateProfile_CompletesProfile(t *testing.T) {
	svc, _ := newTestService(newMemoryUserRepository())
	resp := register(t, svc)

	phone := "+1 (415) 555-2671"
	address := "  1 Market   Street "
	profile, err := svc.UpdateProfile(context.Background(), resp.User.ID, &model.ProfileUpdate{
		Phone:   &phone,
		Address: &address,
	})
	require.NoError(t, err)
	assert.Equal(t, "+14155552671", profile.Phone)
	assert.Equal(t, "1 Market Street", profile.Address)
	assert.True(t, profile.ProfileComplete)

	again, err := svc.GetProfile(context.Background(), resp.User.ID)
	require.NoError(t, err)
	assert.True(t, again.ProfileComplete)
}

func TestUpdateProfile_RejectsBadPhone(t *testing.T) {
	svc, _ := newTestService(newMemoryUserRepository())
	resp := register(t, svc)

	phone := "call me maybe"
	_, err := svc.UpdateProfile(context.Background(), resp.User.ID, &model.ProfileUpdate{Phone: &phone})
	require.True(t, apperrors.HasCode(err, apperrors.CodeValidation))
	assert.Contains(t, apperrors.AsAppError(err).Details, "phone")
}

func TestGetProfile_Unknown(t *testing.T) {
	svc, _ := newTestService(newMemoryUserRepository())

	_, err := svc.GetProfile(context.Background(), "missing")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

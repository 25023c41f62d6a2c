package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"spacelink/pkg/auth"
	apperrors "spacelink/pkg/errors"
	"spacelink/pkg/logger"
	"spacelink/pkg/model"

	"github.com/julienschmidt/httprouter"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockUserService struct {
	registerFunc func(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error)
	loginFunc    func(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error)
	getFunc      func(ctx context.Context, userID string) (*model.Profile, error)
}

func (m *mockUserService) Register(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
	if m.registerFunc != nil {
		return m.registerFunc(ctx, req)
	}
	return &model.AuthResponse{Token: "t"}, nil
}

func (m *mockUserService) Login(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
	if m.loginFunc != nil {
		return m.loginFunc(ctx, req)
	}
	return &model.AuthResponse{Token: "t"}, nil
}

func (m *mockUserService) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if m.getFunc != nil {
		return m.getFunc(ctx, userID)
	}
	return &model.Profile{User: &model.User{ID: userID}}, nil
}

func (m *mockUserService) UpdateProfile(ctx context.Context, userID string, updates *model.ProfileUpdate) (*model.Profile, error) {
	return &model.Profile{User: &model.User{ID: userID}, ProfileComplete: true}, nil
}

func newRouter(svc *mockUserService) (*httprouter.Router, *auth.TokenManager) {
	tokens := auth.NewTokenManager("test-secret-0123456789", time.Hour)
	router := httprouter.New()
	NewUserHandler(svc, tokens, logger.Discard()).RegisterRoutes(router)
	return router, tokens
}

func TestRegister_Created(t *testing.T) {
	var got *model.RegisterRequest
	svc := &mockUserService{
		registerFunc: func(ctx context.Context, req *model.RegisterRequest) (*model.AuthResponse, error) {
			got = req
			return &model.AuthResponse{Token: "token", User: &model.Profile{User: &model.User{ID: "u1", Email: req.Email}}}, nil
		},
	}
	router, _ := newRouter(svc)

	body := `{"name":"Dana","email":"dana@example.com","password":"correct-horse"}`
	req := httptest.NewRequest(http.MethodPost, "/auth/register", strings.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, "dana@example.com", got.Email)
	assert.NotContains(t, w.Body.String(), "password")
}

func TestLogin_Unauthorized(t *testing.T) {
	svc := &mockUserService{
		loginFunc: func(ctx context.Context, req *model.LoginRequest) (*model.AuthResponse, error) {
			return nil, apperrors.Unauthorized("Invalid email or password")
		},
	}
	router, _ := newRouter(svc)

	req := httptest.NewRequest(http.MethodPost, "/auth/login", strings.NewReader(`{"email":"a@b.co","password":"x"}`))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestMe(t *testing.T) {
	router, tokens := newRouter(&mockUserService{})

	req := httptest.NewRequest(http.MethodGet, "/users/me", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	token, _, err := tokens.Issue("u1", "dana@example.com")
	require.NoError(t, err)

	req = httptest.NewRequest(http.MethodPatch, "/users/me", strings.NewReader(`{"phone":"+14155552671"}`))
	req.Header.Set("Authorization", "Bearer "+token)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Data struct {
			ID              string `json:"id"`
			ProfileComplete bool   `json:"profileComplete"`
		} `json:"data"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&resp))
	assert.Equal(t, "u1", resp.Data.ID)
	assert.True(t, resp.Data.ProfileComplete)
}

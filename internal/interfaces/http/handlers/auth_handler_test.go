package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/elevate-edu/elevate/internal/application/dto"
	"github.com/elevate-edu/elevate/internal/domain/repository"
	"github.com/elevate-edu/elevate/internal/interfaces/http/middleware"
	"github.com/elevate-edu/elevate/pkg/errors"
)

type mockAuthService struct {
	mock.Mock
}

func (m *mockAuthService) Register(ctx context.Context, orgID string, req *dto.RegisterRequest) (*dto.UserResponse, error) {
	args := m.Called(ctx, orgID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *mockAuthService) Login(ctx context.Context, orgID string, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	args := m.Called(ctx, orgID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TokenResponse), args.Error(1)
}

func (m *mockAuthService) Refresh(ctx context.Context, orgID string, req *dto.RefreshRequest) (*dto.TokenResponse, error) {
	args := m.Called(ctx, orgID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.TokenResponse), args.Error(1)
}

func (m *mockAuthService) GetUser(ctx context.Context, orgID, userID string) (*dto.UserResponse, error) {
	args := m.Called(ctx, orgID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *mockAuthService) UpdateProfile(ctx context.Context, orgID, userID string, req *dto.UpdateProfileRequest) (*dto.UserResponse, error) {
	args := m.Called(ctx, orgID, userID, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.UserResponse), args.Error(1)
}

func (m *mockAuthService) ListUsers(ctx context.Context, orgID string, filter repository.UserFilter, page, pageSize int) ([]*dto.UserResponse, int64, error) {
	args := m.Called(ctx, orgID, filter, page, pageSize)
	var users []*dto.UserResponse
	if args.Get(0) != nil {
		users = args.Get(0).([]*dto.UserResponse)
	}
	return users, args.Get(1).(int64), args.Error(2)
}

func (m *mockAuthService) DeactivateUser(ctx context.Context, orgID, userID string) error {
	return m.Called(ctx, orgID, userID).Error(0)
}

func authTestRouter(svc *mockAuthService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewAuthHandler(svc)
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set(middleware.GinKeyTenantID, "org-1")
		c.Set(middleware.GinKeyUserID, "u-1")
	})
	r.POST("/auth/register", h.Register)
	r.POST("/auth/login", h.Login)
	r.PATCH("/auth/me", h.UpdateMe)
	r.GET("/users", h.ListUsers)
	return r
}

func postJSON(t *testing.T, router *gin.Engine, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	raw, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestAuthHandler_Register(t *testing.T) {
	svc := new(mockAuthService)
	router := authTestRouter(svc)

	svc.On("Register", mock.Anything, "org-1", mock.MatchedBy(func(req *dto.RegisterRequest) bool {
		return req.Email == "ada@example.edu"
	})).Return(&dto.UserResponse{ID: "u-1", Email: "ada@example.edu"}, nil)

	w := postJSON(t, router, "/auth/register", dto.RegisterRequest{
		Email:     "ada@example.edu",
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      "student",
	})

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	svc.AssertExpectations(t)
}

func TestAuthHandler_Register_ValidationRejected(t *testing.T) {
	svc := new(mockAuthService)
	router := authTestRouter(svc)

	cases := []dto.RegisterRequest{
		{Email: "not-an-email", Password: "password123", FirstName: "A", LastName: "B", Role: "student"},
		{Email: "a@example.edu", Password: "short", FirstName: "A", LastName: "B", Role: "student"},
		{Email: "a@example.edu", Password: "password123", FirstName: "A", LastName: "B", Role: "superuser"},
	}
	for _, req := range cases {
		w := postJSON(t, router, "/auth/register", req)
		assert.Equal(t, http.StatusBadRequest, w.Code)
	}
	svc.AssertNotCalled(t, "Register")
}

func TestAuthHandler_Register_Conflict(t *testing.T) {
	svc := new(mockAuthService)
	router := authTestRouter(svc)

	svc.On("Register", mock.Anything, "org-1", mock.Anything).
		Return(nil, errors.ErrEmailTaken("ada@example.edu"))

	w := postJSON(t, router, "/auth/register", dto.RegisterRequest{
		Email:     "ada@example.edu",
		Password:  "password123",
		FirstName: "Ada",
		LastName:  "Lovelace",
		Role:      "student",
	})

	require.Equal(t, http.StatusConflict, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Equal(t, errors.CodeConflict, resp.Error.Code)
}

func TestAuthHandler_Login(t *testing.T) {
	svc := new(mockAuthService)
	router := authTestRouter(svc)

	svc.On("Login", mock.Anything, "org-1", mock.Anything).Return(&dto.TokenResponse{
		AccessToken:  "access",
		RefreshToken: "refresh",
		TokenType:    "Bearer",
		ExpiresAt:    time.Now().Add(15 * time.Minute),
	}, nil)

	w := postJSON(t, router, "/auth/login", dto.LoginRequest{
		Email:    "ada@example.edu",
		Password: "password123",
	})

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data dto.TokenResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "access", resp.Data.AccessToken)
}

func TestAuthHandler_UpdateMe(t *testing.T) {
	svc := new(mockAuthService)
	router := authTestRouter(svc)

	svc.On("UpdateProfile", mock.Anything, "org-1", "u-1",
		mock.MatchedBy(func(req *dto.UpdateProfileRequest) bool {
			return req.FirstName != nil && *req.FirstName == "Augusta"
		})).Return(&dto.UserResponse{ID: "u-1", FirstName: "Augusta"}, nil)

	first := "Augusta"
	raw, err := json.Marshal(dto.UpdateProfileRequest{FirstName: &first})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPatch, "/auth/me", bytes.NewReader(raw))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp struct {
		Data dto.UserResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "Augusta", resp.Data.FirstName)
	svc.AssertExpectations(t)
}

func TestAuthHandler_ListUsers_Pagination(t *testing.T) {
	svc := new(mockAuthService)
	router := authTestRouter(svc)

	svc.On("ListUsers", mock.Anything, "org-1", mock.Anything, 2, 5).
		Return([]*dto.UserResponse{{ID: "u-1"}}, int64(6), nil)

	req := httptest.NewRequest(http.MethodGet, "/users?page=2&page_size=5", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	var resp dto.APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	require.NotNil(t, resp.Meta)
	assert.Equal(t, 2, resp.Meta.Page)
	assert.EqualValues(t, 6, resp.Meta.Total)
}

package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func init() {
	logger.IsTest = true
	gin.SetMode(gin.TestMode)
}

type mockUserEnsurer struct {
	mock.Mock
}

func (m *mockUserEnsurer) EnsureUser(ctx context.Context, au types.AuthenticatedUser) (*types.User, error) {
	args := m.Called(ctx, au)
	u, _ := args.Get(0).(*types.User)
	return u, args.Error(1)
}

func newAuthRouter(t *testing.T, users UserEnsurer) *gin.Engine {
	t.Helper()
	validator, err := NewJWTValidator(testSecret)
	require.NoError(t, err)

	r := gin.New()
	r.Use(ErrorHandler())
	r.Use(AuthMiddleware(validator, users))
	r.GET("/me", func(c *gin.Context) {
		au := c.MustGet(string(AuthUserKey)).(types.AuthenticatedUser)
		c.JSON(http.StatusOK, gin.H{"userId": GetUserID(c), "email": au.Email})
	})
	return r
}

func decodeError(t *testing.T, w *httptest.ResponseRecorder) types.ErrorResponse {
	t.Helper()
	var resp types.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

func TestAuthMiddleware(t *testing.T) {
	userID := uuid.NewString()
	valid := signToken(t, testSecret, jwt.MapClaims{
		"sub":   userID,
		"email": "bob@example.com",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	expired := signToken(t, testSecret, jwt.MapClaims{
		"sub": userID,
		"exp": time.Now().Add(-time.Hour).Unix(),
	})

	t.Run("valid token provisions user", func(t *testing.T) {
		users := new(mockUserEnsurer)
		users.On("EnsureUser", mock.Anything, types.AuthenticatedUser{ID: userID, Email: "bob@example.com"}).
			Return(&types.User{ID: userID}, nil).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+valid)
		newAuthRouter(t, users).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.JSONEq(t, `{"userId":"`+userID+`","email":"bob@example.com"}`, w.Body.String())
		users.AssertExpectations(t)
	})

	t.Run("scheme is case insensitive", func(t *testing.T) {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "bearer "+valid)
		newAuthRouter(t, nil).ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	tests := []struct {
		name     string
		header   string
		wantCode string
	}{
		{"missing header", "", "missing_token"},
		{"not bearer", "Basic abc", "missing_token"},
		{"expired", "Bearer " + expired, "token_expired"},
		{"invalid", "Bearer nope", "invalid_token"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(mockUserEnsurer)
			w := httptest.NewRecorder()
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			newAuthRouter(t, users).ServeHTTP(w, req)

			assert.Equal(t, http.StatusUnauthorized, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, string(apperrors.AuthError), resp.Type)
			assert.Equal(t, tt.wantCode, resp.Code)
			users.AssertNotCalled(t, "EnsureUser", mock.Anything, mock.Anything)
		})
	}

	t.Run("provisioning failure surfaces", func(t *testing.T) {
		users := new(mockUserEnsurer)
		users.On("EnsureUser", mock.Anything, mock.Anything).
			Return(nil, apperrors.NewConflictError("Email already registered", "")).Once()

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/me", nil)
		req.Header.Set("Authorization", "Bearer "+valid)
		newAuthRouter(t, users).ServeHTTP(w, req)

		assert.Equal(t, http.StatusConflict, w.Code)
	})
}

package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/stretchr/testify/assert"
)

func init() {
	logger.IsTest = true
}

func TestNew(t *testing.T) {
	err := New(ValidationError, "invalid input", "field required")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "invalid input", err.Message)
	assert.Equal(t, "field required", err.Detail)
	assert.Equal(t, 400, err.HTTPStatus)
}

func TestWrap(t *testing.T) {
	originalErr := fmt.Errorf("original error")
	wrappedErr := Wrap(originalErr, DatabaseError, "database operation failed")

	assert.Equal(t, DatabaseError, wrappedErr.Type)
	assert.Equal(t, "database operation failed", wrappedErr.Message)
	assert.Equal(t, originalErr.Error(), wrappedErr.Detail)
	assert.Equal(t, 500, wrappedErr.HTTPStatus)
	assert.Equal(t, originalErr, wrappedErr.Raw)
	assert.True(t, stderrors.Is(wrappedErr, originalErr))

	assert.Nil(t, Wrap(nil, DatabaseError, "nothing"))
}

func TestNotFound(t *testing.T) {
	err := NotFound("Transaction", 123)
	assert.Equal(t, NotFoundError, err.Type)
	assert.Equal(t, "Transaction not found", err.Message)
	assert.Equal(t, "ID: 123", err.Detail)
	assert.Equal(t, 404, err.HTTPStatus)
}

func TestValidationFailed(t *testing.T) {
	err := ValidationFailed("Invalid email", "format not correct")
	assert.Equal(t, ValidationError, err.Type)
	assert.Equal(t, "Invalid email", err.Message)
	assert.Equal(t, "format not correct", err.Detail)
	assert.Equal(t, 400, err.HTTPStatus)
}

func TestAuthenticationFailed(t *testing.T) {
	err := AuthenticationFailed("Invalid credentials")
	assert.Equal(t, AuthError, err.Type)
	assert.Equal(t, "Invalid credentials", err.Message)
	assert.Equal(t, 401, err.HTTPStatus)
}

func TestNewDatabaseError(t *testing.T) {
	originalErr := fmt.Errorf("connection failed")
	err := NewDatabaseError(originalErr)
	assert.Equal(t, DatabaseError, err.Type)
	assert.Equal(t, "Database operation failed", err.Message)
	assert.Equal(t, "Please try again later", err.Detail)
	assert.Equal(t, 500, err.HTTPStatus)
	assert.Equal(t, originalErr, err.Raw)
}

func TestDomainErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantType   ErrorType
		wantStatus int
	}{
		{"not group member", NotGroupMember("u1", "g1"), GroupMembershipError, http.StatusForbidden},
		{"settlement blocked", SettlementBlocked("Cannot leave group with unsettled transactions", 2), SettlementError, http.StatusBadRequest},
		{"rate limited", RateLimitExceeded("slow down", 30), RateLimitError, http.StatusTooManyRequests},
		{"conflict", NewConflictError("duplicate", "request already pending"), ConflictError, http.StatusConflict},
		{"forbidden", Forbidden("nope", "admin only"), ForbiddenError, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantType, tt.err.Type)
			assert.Equal(t, tt.wantStatus, tt.err.GetHTTPStatus())
		})
	}
}

func TestUnauthorized(t *testing.T) {
	err := Unauthorized("token_expired", "Your session has expired")
	var appErr *AppError
	assert.True(t, stderrors.As(err, &appErr))
	assert.Equal(t, "token_expired", appErr.Code)
	assert.Equal(t, http.StatusUnauthorized, appErr.GetHTTPStatus())
}

func TestGetHTTPStatus_FallsBackToType(t *testing.T) {
	err := &AppError{Type: NotFoundError}
	assert.Equal(t, http.StatusNotFound, err.GetHTTPStatus())

	err = &AppError{Type: "SOMETHING_ELSE"}
	assert.Equal(t, http.StatusInternalServerError, err.GetHTTPStatus())
}

func TestError_Error(t *testing.T) {
	tests := []struct {
		name     string
		err      *AppError
		expected string
	}{
		{
			name: "with detail",
			err: &AppError{
				Type:    ValidationError,
				Message: "invalid input",
				Detail:  "field required",
			},
			expected: "VALIDATION_ERROR: invalid input (field required)",
		},
		{
			name: "without detail",
			err: &AppError{
				Type:    AuthError,
				Message: "unauthorized",
			},
			expected: "AUTHENTICATION_ERROR: unauthorized",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.err.Error())
		})
	}
}

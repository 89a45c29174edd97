package middleware

import (
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestErrorHandler(t *testing.T) {
	testCases := []struct {
		name        string
		err         error
		errType     gin.ErrorType
		wantStatus  int
		wantType    apperrors.ErrorType
		wantCode    string
		wantDetails any
	}{
		{
			name:        "validation error keeps details",
			err:         apperrors.ValidationFailed("Invalid split", "percentages must sum to 100"),
			errType:     gin.ErrorTypePrivate,
			wantStatus:  http.StatusBadRequest,
			wantType:    apperrors.ValidationError,
			wantCode:    "400",
			wantDetails: "percentages must sum to 100",
		},
		{
			name:        "wrapped not found",
			err:         fmt.Errorf("loading: %w", apperrors.NotFound("Transaction", "t1")),
			errType:     gin.ErrorTypePrivate,
			wantStatus:  http.StatusNotFound,
			wantType:    apperrors.NotFoundError,
			wantCode:    "404",
			wantDetails: nil,
		},
		{
			name:       "membership error",
			err:        apperrors.NotGroupMember("u1", "g1"),
			errType:    gin.ErrorTypePrivate,
			wantStatus: http.StatusForbidden,
			wantType:   apperrors.GroupMembershipError,
		},
		{
			name:       "settlement blocked",
			err:        apperrors.SettlementBlocked("Group has unsettled transactions", 2),
			errType:    gin.ErrorTypePrivate,
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.SettlementError,
		},
		{
			name:       "auth error with code",
			err:        apperrors.Unauthorized("token_expired", "Your session has expired"),
			errType:    gin.ErrorTypePrivate,
			wantStatus: http.StatusUnauthorized,
			wantType:   apperrors.AuthError,
			wantCode:   "token_expired",
		},
		{
			name:       "bind error",
			err:        errors.New("json: cannot unmarshal"),
			errType:    gin.ErrorTypeBind,
			wantStatus: http.StatusBadRequest,
			wantType:   apperrors.ValidationError,
			wantCode:   "400",
		},
		{
			name:       "unknown error hides details",
			err:        errors.New("connection reset by peer"),
			errType:    gin.ErrorTypePrivate,
			wantStatus: http.StatusInternalServerError,
			wantType:   apperrors.ServerError,
			wantCode:   "500",
		},
		{
			name:       "explicit server error",
			err:        apperrors.InternalServerError("Internal Server Error"),
			errType:    gin.ErrorTypePrivate,
			wantStatus: http.StatusInternalServerError,
			wantType:   apperrors.ServerError,
			wantCode:   "500",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			r := gin.New()
			r.Use(ErrorHandler())
			r.GET("/test", func(c *gin.Context) {
				_ = c.Error(tc.err).SetType(tc.errType)
			})

			w := httptest.NewRecorder()
			r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

			assert.Equal(t, tc.wantStatus, w.Code)
			resp := decodeError(t, w)
			assert.Equal(t, string(tc.wantType), resp.Type)
			if tc.wantCode != "" {
				assert.Equal(t, tc.wantCode, resp.Code)
			}
			if tc.wantDetails != nil {
				assert.Equal(t, tc.wantDetails, resp.Details)
			}
			if tc.wantType == apperrors.ServerError {
				assert.Equal(t, "Internal Server Error", resp.Message)
				assert.Nil(t, resp.Details)
			}
		})
	}
}

func TestErrorHandler_LeavesWrittenResponses(t *testing.T) {
	r := gin.New()
	r.Use(ErrorHandler())
	r.GET("/test", func(c *gin.Context) {
		_ = c.Error(errors.New("logged only"))
		c.JSON(http.StatusAccepted, gin.H{"ok": true})
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/test", nil))

	assert.Equal(t, http.StatusAccepted, w.Code)
	assert.JSONEq(t, `{"ok":true}`, w.Body.String())
}

package middleware

import (
	"errors"
	"net/http"
	"strconv"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/logger"
	"github.com/NomadCrew/nomad-split-backend/types"
	"github.com/gin-gonic/gin"
)

// publicDetailTypes are error types whose detail is meant for the client.
var publicDetailTypes = map[apperrors.ErrorType]bool{
	apperrors.ValidationError:      true,
	apperrors.NotFoundError:        true,
	apperrors.ConflictError:        true,
	apperrors.SettlementError:      true,
	apperrors.GroupMembershipError: true,
	apperrors.RateLimitError:       true,
	apperrors.ForbiddenError:       true,
}

// ErrorHandler renders the last error recorded on the context as a types.ErrorResponse.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 || c.Writer.Written() {
			return
		}
		ginErr := c.Errors.Last()
		err := ginErr.Err

		var appErr *apperrors.AppError
		if !errors.As(err, &appErr) {
			if ginErr.Type == gin.ErrorTypeBind {
				logger.LogHTTPError(c, err, http.StatusBadRequest, "Request binding error")
				c.JSON(http.StatusBadRequest, types.ErrorResponse{
					Type:    string(apperrors.ValidationError),
					Code:    strconv.Itoa(http.StatusBadRequest),
					Message: "Invalid request body",
					Details: err.Error(),
				})
				return
			}
			appErr = apperrors.InternalServerError("Internal Server Error")
			appErr.Detail = err.Error()
			appErr.Raw = err
		}

		status := appErr.GetHTTPStatus()
		logger.LogHTTPError(c, err, status, string(appErr.Type)+" error")

		code := appErr.Code
		if code == "" {
			code = strconv.Itoa(status)
		}
		resp := types.ErrorResponse{
			Type:    string(appErr.Type),
			Code:    code,
			Message: appErr.Message,
		}
		if appErr.Detail != "" && (publicDetailTypes[appErr.Type] || gin.IsDebugging()) {
			resp.Details = appErr.Detail
		}
		c.JSON(status, resp)
	}
}

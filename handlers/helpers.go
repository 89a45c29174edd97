// Package handlers exposes the services over HTTP with gin.
package handlers

import (
	"strconv"
	"time"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/middleware"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

func getUserIDFromContext(c *gin.Context) string {
	return middleware.GetUserID(c)
}

// requireUser returns the caller's id, recording an auth error when it is missing.
func requireUser(c *gin.Context) (string, bool) {
	userID := getUserIDFromContext(c)
	if userID == "" {
		_ = c.Error(apperrors.Unauthorized("not_authenticated", "user not authenticated"))
		return "", false
	}
	return userID, true
}

// bindJSONOrError binds JSON request body and sets validation error if binding fails.
// Returns true if binding succeeded, false if error was set (caller should return).
func bindJSONOrError(c *gin.Context, obj interface{}) bool {
	if err := c.ShouldBindJSON(obj); err != nil {
		_ = c.Error(apperrors.ValidationFailed("invalid_request_payload", err.Error()))
		return false
	}
	return true
}

func isValidUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}

// uuidParam reads a path parameter that must be a UUID.
func uuidParam(c *gin.Context, name string) (string, bool) {
	v := c.Param(name)
	if !isValidUUID(v) {
		_ = c.Error(apperrors.ValidationFailed("validation_failed", "valid "+name+" is required"))
		return "", false
	}
	return v, true
}

// intQuery parses an optional integer query parameter; junk yields 0.
func intQuery(c *gin.Context, name string) int {
	n, err := strconv.Atoi(c.Query(name))
	if err != nil {
		return 0
	}
	return n
}

// timeQuery parses an optional RFC 3339 or YYYY-MM-DD query parameter.
// A bare end date covers the whole day.
func timeQuery(c *gin.Context, name string, endOfDay bool) (*time.Time, error) {
	raw := c.Query(name)
	if raw == "" {
		return nil, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return &t, nil
	}
	t, err := time.Parse(time.DateOnly, raw)
	if err != nil {
		return nil, apperrors.ValidationFailed("Invalid date", name+" must be RFC 3339 or YYYY-MM-DD")
	}
	if endOfDay {
		t = t.Add(24*time.Hour - time.Nanosecond)
	}
	return &t, nil
}

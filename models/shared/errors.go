package shared

import (
	"errors"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/internal/store"
)

// FromStore translates a store error into an AppError. Errors that already are
// AppErrors pass through unchanged.
func FromStore(err error, entity, id string) error {
	if err == nil {
		return nil
	}
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperrors.NotFound(entity, id)
	case errors.Is(err, store.ErrConflict):
		return apperrors.NewConflictError(entity+" already exists", err.Error())
	default:
		return apperrors.NewDatabaseError(err)
	}
}

package service

import (
	"errors"

	apperrors "github.com/NomadCrew/nomad-split-backend/errors"
	"github.com/NomadCrew/nomad-split-backend/models/expense"
)

// splitError maps split and settlement rule violations onto AppErrors.
func splitError(err error) error {
	var (
		message string
		code    string
	)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, expense.ErrParticipantNotFound):
		e := apperrors.New(apperrors.NotFoundError, "User is not a participant in this transaction", err.Error())
		e.Code = "participant_not_found"
		return e
	case errors.Is(err, expense.ErrAmountMismatch):
		message, code = "Participant amounts must add up to the total amount", "amount_mismatch"
	case errors.Is(err, expense.ErrInvalidPercentage):
		message, code = "Percentages must add up to 100", "invalid_percentage"
	case errors.Is(err, expense.ErrNoParticipants):
		message, code = "At least one participant is required", "no_participants"
	case errors.Is(err, expense.ErrDuplicateParticipant):
		message, code = "A participant is listed more than once", "duplicate_participant"
	case errors.Is(err, expense.ErrNegativeAmount):
		message, code = "Amounts cannot be negative", "negative_amount"
	case errors.Is(err, expense.ErrUnknownSplitMethod):
		message, code = "Unknown split method", "invalid_split_method"
	default:
		return err
	}
	e := apperrors.ValidationFailed(message, err.Error())
	e.Code = code
	return e
}

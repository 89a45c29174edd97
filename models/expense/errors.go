package expense

import "errors"

var (
	// ErrAmountMismatch means participant amounts do not add up to the transaction total.
	ErrAmountMismatch = errors.New("participant amounts do not match transaction amount")
	// ErrInvalidPercentage means percentages do not add up to 100 or one is out of range.
	ErrInvalidPercentage = errors.New("percentages must add up to 100")
	// ErrParticipantNotFound means the user has no share in the transaction.
	ErrParticipantNotFound = errors.New("user is not a participant in this transaction")

	ErrNoParticipants       = errors.New("at least one participant is required")
	ErrDuplicateParticipant = errors.New("participant listed more than once")
	ErrNegativeAmount       = errors.New("participant amount cannot be negative")
	ErrUnknownSplitMethod   = errors.New("unknown split method")
)

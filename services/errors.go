package services

import "errors"

var (
	errJobPanicked   = errors.New("job panicked")
	errEmailDisabled = errors.New("email delivery is disabled")
)

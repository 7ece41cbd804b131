package analyses

import "errors"

var ErrNotFound = errors.New("analysis not found")

const (
	ErrorCodeValidation = "VALIDATION_ERROR"
	ErrorCodeCapability = "MISSING_CAPABILITY"
	ErrorCodeRunFailed  = "RUN_TERMINATED"
	ErrorCodeRunTimeout = "RUN_TIMEOUT"
	ErrorCodeStorage    = "STORAGE_ERROR"
	ErrorCodeInternal   = "INTERNAL_ERROR"
)

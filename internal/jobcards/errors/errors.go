package errors

import "errors"

var (
	ErrNotFound = errors.New("jobcard not found")

	ErrInvalidID = errors.New("invalid jobcard ID format")

	ErrDuplicateBooking = errors.New("a jobcard already exists for this booking")
)

package errors

import "errors"

var (
	ErrNotFound = errors.New("mechanic not found")

	ErrInvalidID = errors.New("invalid mechanic ID format")

	ErrDuplicateCode = errors.New("mechanic code already in use")
)

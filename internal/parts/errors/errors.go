package errors

import "errors"

var (
	ErrPartNotFound = errors.New("spare part not found")

	ErrLineNotFound = errors.New("ledger line not found")

	ErrInvalidID = errors.New("invalid ID format")

	ErrDuplicateCode = errors.New("part code already in use")

	// ErrStockConflict means the conditional stock decrement matched no
	// document: either the part vanished or stock fell below the request.
	ErrStockConflict = errors.New("insufficient stock for requested quantity")
)

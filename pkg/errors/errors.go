package errors

import (
	"fmt"
	"net/http"
)

// Error codes surfaced to API callers. The workflow codes map 1:1 to the
// guard failures of the booking/jobcard/ledger operations; the generic
// codes cover input handling and infrastructure failures.
const (
	CodeNotFound     = "NOT_FOUND"
	CodeValidation   = "VALIDATION_ERROR"
	CodeInvalidInput = "INVALID_INPUT"
	CodeUnauthorized = "UNAUTHORIZED"
	CodeForbidden    = "FORBIDDEN"
	CodeConflict     = "CONFLICT"
	CodeInternal     = "INTERNAL_ERROR"

	CodeSlotTaken          = "SLOT_TAKEN"
	CodeInvalidTransition  = "INVALID_TRANSITION"
	CodeNoMechanicAssigned = "NO_MECHANIC_ASSIGNED"
	CodeMechanicUnavail    = "MECHANIC_UNAVAILABLE"
	CodeAlreadyAssigned    = "ALREADY_ASSIGNED"
	CodeInsufficientStock  = "INSUFFICIENT_STOCK"
	CodeAlreadyConsumed    = "ALREADY_CONSUMED"
	CodePartsReserved      = "PARTS_STILL_RESERVED"
)

type AppError struct {
	Code       string         `json:"code"`
	Message    string         `json:"message"`
	HTTPStatus int            `json:"-"`
	Details    map[string]any `json:"details,omitempty"`
	Err        error          `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Code, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func (e *AppError) Unwrap() error {
	return e.Err
}

func (e *AppError) StatusCode() int {
	return e.HTTPStatus
}

func (e *AppError) WithDetails(details map[string]any) *AppError {
	e.Details = details
	return e
}

func NotFound(resource string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
	}
}

func NotFoundWithID(resource, id string) *AppError {
	return &AppError{
		Code:       CodeNotFound,
		Message:    fmt.Sprintf("%s not found", resource),
		HTTPStatus: http.StatusNotFound,
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func Validation(message string, details map[string]any) *AppError {
	return &AppError{
		Code:       CodeValidation,
		Message:    message,
		HTTPStatus: http.StatusUnprocessableEntity,
		Details:    details,
	}
}

func InvalidInput(message string) *AppError {
	return &AppError{
		Code:       CodeInvalidInput,
		Message:    message,
		HTTPStatus: http.StatusBadRequest,
	}
}

func Unauthorized(message string) *AppError {
	return &AppError{
		Code:       CodeUnauthorized,
		Message:    message,
		HTTPStatus: http.StatusUnauthorized,
	}
}

func Forbidden(message string) *AppError {
	return &AppError{
		Code:       CodeForbidden,
		Message:    message,
		HTTPStatus: http.StatusForbidden,
	}
}

func Conflict(message string) *AppError {
	return &AppError{
		Code:       CodeConflict,
		Message:    message,
		HTTPStatus: http.StatusConflict,
	}
}

func Internal(message string, err error) *AppError {
	return &AppError{
		Code:       CodeInternal,
		Message:    message,
		HTTPStatus: http.StatusInternalServerError,
		Err:        err,
	}
}

func SlotTaken(date, slot string) *AppError {
	return &AppError{
		Code:       CodeSlotTaken,
		Message:    fmt.Sprintf("time slot %q on %s is already booked", slot, date),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"booking_date": date,
			"time_slot":    slot,
		},
	}
}

func InvalidTransition(from, to string) *AppError {
	return &AppError{
		Code:       CodeInvalidTransition,
		Message:    fmt.Sprintf("cannot transition booking from %q to %q", from, to),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"from": from,
			"to":   to,
		},
	}
}

func NoMechanicAssigned(jobcardID string) *AppError {
	return &AppError{
		Code:       CodeNoMechanicAssigned,
		Message:    "jobcard has no mechanic assigned",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"jobcard_id": jobcardID},
	}
}

func MechanicUnavailable(mechanicID string) *AppError {
	return &AppError{
		Code:       CodeMechanicUnavail,
		Message:    "mechanic is not available for assignment",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"mechanic_id": mechanicID},
	}
}

func AlreadyAssigned(jobcardID, mechanicID string) *AppError {
	return &AppError{
		Code:       CodeAlreadyAssigned,
		Message:    "mechanic is already assigned to this jobcard",
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"jobcard_id":  jobcardID,
			"mechanic_id": mechanicID,
		},
	}
}

func InsufficientStock(partID string, requested, available int) *AppError {
	return &AppError{
		Code:       CodeInsufficientStock,
		Message:    fmt.Sprintf("requested quantity %d exceeds available stock %d", requested, available),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"part_id":   partID,
			"requested": requested,
			"available": available,
		},
	}
}

func AlreadyConsumed(lineID string) *AppError {
	return &AppError{
		Code:       CodeAlreadyConsumed,
		Message:    "ledger line is already marked used; submit a correcting adjustment instead",
		HTTPStatus: http.StatusConflict,
		Details:    map[string]any{"line_id": lineID},
	}
}

func PartsStillReserved(jobcardID string, reserved int64) *AppError {
	return &AppError{
		Code:       CodePartsReserved,
		Message:    fmt.Sprintf("jobcard has %d spare-part line(s) reserved but not marked used", reserved),
		HTTPStatus: http.StatusConflict,
		Details: map[string]any{
			"jobcard_id":     jobcardID,
			"reserved_lines": reserved,
		},
	}
}

func IsAppError(err error) bool {
	_, ok := err.(*AppError)
	return ok
}

func AsAppError(err error) *AppError {
	if appErr, ok := err.(*AppError); ok {
		return appErr
	}
	return Internal("An unexpected error occurred", err)
}

// HasCode reports whether err is an AppError carrying the given code.
func HasCode(err error, code string) bool {
	appErr, ok := err.(*AppError)
	return ok && appErr.Code == code
}

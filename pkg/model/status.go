package model

import (
	"fmt"
	"strings"
)

// BookingStatus is the canonical booking lifecycle state. Values are stored
// lowercase; ParseBookingStatus is the single normalization boundary for
// whatever casing arrives at the API or sits in old documents.
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusArrived    BookingStatus = "arrived"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
)

// transitions is the legality table of the booking state machine. Walk-in
// arrivals may skip confirmation (pending -> arrived). Cancellation is
// reachable from every non-terminal state; completed and cancelled are
// terminal.
var transitions = map[BookingStatus][]BookingStatus{
	StatusPending:    {StatusConfirmed, StatusArrived, StatusCancelled},
	StatusConfirmed:  {StatusArrived, StatusCancelled},
	StatusArrived:    {StatusInProgress, StatusCancelled},
	StatusInProgress: {StatusCompleted, StatusCancelled},
	StatusCompleted:  {},
	StatusCancelled:  {},
}

func ParseBookingStatus(s string) (BookingStatus, error) {
	switch BookingStatus(strings.ToLower(strings.TrimSpace(s))) {
	case StatusPending:
		return StatusPending, nil
	case StatusConfirmed:
		return StatusConfirmed, nil
	case StatusArrived:
		return StatusArrived, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusCompleted:
		return StatusCompleted, nil
	case StatusCancelled:
		return StatusCancelled, nil
	default:
		return "", fmt.Errorf("unknown booking status: %q", s)
	}
}

func (s BookingStatus) String() string {
	return string(s)
}

func (s BookingStatus) IsTerminal() bool {
	return s == StatusCompleted || s == StatusCancelled
}

// CanTransitionTo reports whether the state machine permits moving from s
// to target in a single step. Callers must traverse intermediate states
// explicitly; there are no shortcuts.
func (s BookingStatus) CanTransitionTo(target BookingStatus) bool {
	for _, allowed := range transitions[s] {
		if allowed == target {
			return true
		}
	}
	return false
}

// ActiveStatuses are the statuses that occupy a time slot. A cancelled
// booking frees its slot for rebooking; every other status holds it.
func ActiveStatuses() []BookingStatus {
	return []BookingStatus{
		StatusPending,
		StatusConfirmed,
		StatusArrived,
		StatusInProgress,
		StatusCompleted,
	}
}

// JobcardStatus is the jobcard lifecycle state.
type JobcardStatus string

const (
	JobcardOpen      JobcardStatus = "open"
	JobcardClosed    JobcardStatus = "closed"
	JobcardAbandoned JobcardStatus = "abandoned"
)

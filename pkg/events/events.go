// Package events defines the workflow events published for downstream
// consumers (invoice rendering, shop reporting). Publishing is best-effort:
// a failed publish is logged, never surfaced to the API caller.
package events

import (
	"time"
)

const (
	TypeBookingCreated       = "booking.created"
	TypeBookingStatusChanged = "booking.status_changed"
	TypeJobcardCreated       = "jobcard.created"
	TypeJobcardClosed        = "jobcard.closed"
	TypePartIssued           = "part.issued"
)

type BookingCreated struct {
	BookingID   string    `json:"booking_id"`
	BookingDate string    `json:"booking_date"`
	TimeSlot    string    `json:"time_slot"`
	CreatedAt   time.Time `json:"created_at"`
}

type BookingStatusChanged struct {
	BookingID string    `json:"booking_id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	ChangedAt time.Time `json:"changed_at"`
}

type JobcardCreated struct {
	JobcardID string    `json:"jobcard_id"`
	BookingID string    `json:"booking_id"`
	CreatedAt time.Time `json:"created_at"`
}

type JobcardClosed struct {
	JobcardID string    `json:"jobcard_id"`
	BookingID string    `json:"booking_id"`
	ClosedAt  time.Time `json:"closed_at"`
}

type PartIssued struct {
	LineID     string    `json:"line_id"`
	JobcardID  string    `json:"jobcard_id"`
	PartID     string    `json:"part_id"`
	Quantity   int       `json:"quantity"`
	UnitPrice  float64   `json:"unit_price"`
	TotalPrice float64   `json:"total_price"`
	AssignedAt time.Time `json:"assigned_at"`
}

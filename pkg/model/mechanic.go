package model

import "time"

// Mechanic is a staff member who can be assigned jobcard work. Only
// mechanics with Availability true are eligible for new assignment; the
// flag is toggled when a booking enters and leaves in_progress.
type Mechanic struct {
	ID             string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	StaffID        string    `json:"staff_id" bson:"staff_id" validate:"required,max=100"`
	MechanicCode   string    `json:"mechanic_code" bson:"mechanic_code" validate:"required,min=2,max=20"`
	MechanicName   string    `json:"mechanic_name" bson:"mechanic_name" validate:"required,min=2,max=100"`
	Specialization string    `json:"specialization,omitempty" bson:"specialization,omitempty" validate:"omitempty,max=100"`
	Availability   bool      `json:"availability" bson:"availability"`
	HourlyRate     float64   `json:"hourly_rate" bson:"hourly_rate" validate:"omitempty,min=0"`
	IsActive       bool      `json:"is_active" bson:"is_active"`
	CreatedAt      time.Time `json:"created_at" bson:"created_at"`
}

// MechanicUpdate carries staff-administration edits.
type MechanicUpdate struct {
	MechanicName   string   `json:"mechanic_name,omitempty" validate:"omitempty,min=2,max=100"`
	Specialization string   `json:"specialization,omitempty" validate:"omitempty,max=100"`
	Availability   *bool    `json:"availability,omitempty"`
	HourlyRate     *float64 `json:"hourly_rate,omitempty" validate:"omitempty,min=0"`
	IsActive       *bool    `json:"is_active,omitempty"`
}

package model

import "time"

// Jobcard is the unit of mechanical work for one arrived booking. At most
// one jobcard exists per booking (unique index on booking_id); it is
// created when the booking transitions to arrived.
type Jobcard struct {
	ID             string          `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	BookingID      string          `json:"booking_id" bson:"booking_id" validate:"required,mongodb"`
	PartCode       string          `json:"part_code,omitempty" bson:"part_code,omitempty" validate:"omitempty,max=50"`
	Status         JobcardStatus   `json:"status" bson:"status"`
	ServiceDetails []ServiceDetail `json:"service_details" bson:"service_details"`
	MechanicIDs    []string        `json:"mechanic_ids" bson:"mechanic_ids"`
	CreatedAt      time.Time       `json:"created_at" bson:"created_at"`
	ClosedAt       *time.Time      `json:"closed_at,omitempty" bson:"closed_at,omitempty"`
}

// ServiceDetail is one line of requested work on a jobcard.
type ServiceDetail struct {
	Description string `json:"description" bson:"description" validate:"required,min=2,max=200"`
	Notes       string `json:"notes,omitempty" bson:"notes,omitempty" validate:"omitempty,max=500"`
}

// HasMechanic reports whether the mechanic is already on the roster.
func (j *Jobcard) HasMechanic(mechanicID string) bool {
	for _, id := range j.MechanicIDs {
		if id == mechanicID {
			return true
		}
	}
	return false
}

package model

import (
	"time"
)

// Booking is one customer reservation of a service time slot. Bookings are
// never deleted by the workflow; cancellation is a status, not a removal.
type Booking struct {
	ID               string        `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	Name             string        `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Phone            string        `json:"phone" bson:"phone" validate:"required,e164"`
	VehicleNumber    string        `json:"vehicle_number" bson:"vehicle_number" validate:"required,vehicle_number"`
	VehicleType      string        `json:"vehicle_type" bson:"vehicle_type" validate:"required,min=2,max=50"`
	VehicleBrand     string        `json:"vehicle_brand" bson:"vehicle_brand" validate:"omitempty,max=50"`
	VehicleModel     string        `json:"vehicle_model" bson:"vehicle_model" validate:"omitempty,max=50"`
	ManufacturedYear int           `json:"manufactured_year,omitempty" bson:"manufactured_year,omitempty" validate:"omitempty,min=1950,max=2100"`
	FuelType         string        `json:"fuel_type" bson:"fuel_type" validate:"omitempty,max=30"`
	TransmissionType string        `json:"transmission_type" bson:"transmission_type" validate:"omitempty,max=30"`
	BookingDate      string        `json:"booking_date" bson:"booking_date" validate:"required,booking_date"`
	TimeSlot         string        `json:"time_slot" bson:"time_slot" validate:"required,time_slot"`
	ServiceTypes     []string      `json:"service_types" bson:"service_types" validate:"required,min=1,max=20,dive,min=2,max=100"`
	SpecialRequests  string        `json:"special_requests,omitempty" bson:"special_requests,omitempty" validate:"omitempty,max=1000"`
	CustomerID       string        `json:"customer_id,omitempty" bson:"customer_id,omitempty" validate:"omitempty,max=100"`
	Status           BookingStatus `json:"status" bson:"status" validate:"required"`
	ArrivedTime      *time.Time    `json:"arrived_time,omitempty" bson:"arrived_time,omitempty"`
	CreatedAt        time.Time     `json:"created_at" bson:"created_at"`
}

// BookingUpdate carries staff edits to contact and vehicle fields. Status
// is deliberately absent: transitions go through the lifecycle endpoint so
// the state machine guards always run.
type BookingUpdate struct {
	Name            string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Phone           string   `json:"phone,omitempty" validate:"omitempty,e164"`
	VehicleBrand    string   `json:"vehicle_brand,omitempty" validate:"omitempty,max=50"`
	VehicleModel    string   `json:"vehicle_model,omitempty" validate:"omitempty,max=50"`
	ServiceTypes    []string `json:"service_types,omitempty" validate:"omitempty,min=1,max=20,dive,min=2,max=100"`
	SpecialRequests string   `json:"special_requests,omitempty" validate:"omitempty,max=1000"`
}

// BookingDateLayout is the canonical calendar-date format for bookings.
const BookingDateLayout = "2006-01-02"

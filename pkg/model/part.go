package model

import "time"

// Part is a spare-part catalog entry. Stock and unit price are the live
// inventory values; ledger lines snapshot the price at issuance.
type Part struct {
	ID        string    `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	PartCode  string    `json:"part_code" bson:"part_code" validate:"required,min=2,max=50"`
	Name      string    `json:"name" bson:"name" validate:"required,min=2,max=100"`
	UnitPrice float64   `json:"unit_price" bson:"unit_price" validate:"required,gt=0"`
	Stock     int       `json:"stock" bson:"stock" validate:"min=0"`
	IsActive  bool      `json:"is_active" bson:"is_active"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

// PartUpdate carries catalog-administration edits. Price changes never
// touch existing ledger lines.
type PartUpdate struct {
	Name      string   `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	UnitPrice *float64 `json:"unit_price,omitempty" validate:"omitempty,gt=0"`
	Stock     *int     `json:"stock,omitempty" validate:"omitempty,min=0"`
	IsActive  *bool    `json:"is_active,omitempty"`
}

// JobcardSparePart is one consumption-ledger line: a quantity of a part
// issued against a jobcard. UnitPrice is snapshotted at assignment time and
// never re-read from the catalog; TotalPrice is always quantity times that
// snapshot. UsedAt distinguishes physically consumed parts from reserved
// ones.
type JobcardSparePart struct {
	ID         string     `json:"id,omitempty" bson:"_id,omitempty" validate:"omitempty,mongodb"`
	JobcardID  string     `json:"jobcard_id" bson:"jobcard_id" validate:"required,mongodb"`
	PartID     string     `json:"part_id" bson:"part_id" validate:"required,mongodb"`
	Quantity   int        `json:"quantity" bson:"quantity" validate:"required,gt=0"`
	UnitPrice  float64    `json:"unit_price" bson:"unit_price"`
	TotalPrice float64    `json:"total_price" bson:"total_price"`
	AssignedAt time.Time  `json:"assigned_at" bson:"assigned_at"`
	UsedAt     *time.Time `json:"used_at,omitempty" bson:"used_at,omitempty"`
}

// IsUsed reports whether the line has been marked physically consumed.
func (l *JobcardSparePart) IsUsed() bool {
	return l.UsedAt != nil
}

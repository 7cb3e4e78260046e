package model

import "time"

// SlotLock is a short-lived advisory lock over one (date, slot) pair,
// taken while a booking creation verifies slot availability. The _id is
// derived from the pair, so a concurrent creation for the same slot fails
// with a duplicate-key error and is reported as a slot conflict. Locks are
// expired by a TTL index on expires_at as a safety net.
type SlotLock struct {
	ID        string    `json:"id" bson:"_id"`
	ExpiresAt time.Time `json:"expires_at" bson:"expires_at"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}

package config

import "time"

const (
	DefaultMongoURI          = "mongodb://localhost:27017"
	DefaultMongoDatabaseName = "pitstop"
	DefaultMongoConnTimeout  = 10 * time.Second

	DefaultPort     = "8080"
	DefaultLogLevel = "info"

	DefaultRequestTimeout = 30 * time.Second
	DefaultIdempotencyTTL = 24 * time.Hour
	DefaultMaxRequestSize = 1 * 1024 * 1024 // 1MB

	DefaultReadTimeout     = 15 * time.Second
	DefaultWriteTimeout    = 15 * time.Second
	DefaultIdleTimeout     = 60 * time.Second
	DefaultShutdownTimeout = 30 * time.Second

	DefaultSlotLockTTL = 10 * time.Second

	DefaultKafkaEnabled = false
	DefaultKafkaTopic   = "garage.workflow"

	DefaultPaginationLimit = 100
)

// DefaultTimeSlots is the shop's service-slot grid. Each label is the unit
// of scheduling granularity: at most one active booking per (date, label).
var DefaultTimeSlots = []string{
	"07:30 AM - 09:00 AM",
	"09:00 AM - 10:30 AM",
	"10:30 AM - 12:00 PM",
	"12:00 PM - 01:30 PM",
	"02:00 PM - 03:30 PM",
	"03:30 PM - 05:00 PM",
	"05:00 PM - 06:30 PM",
}

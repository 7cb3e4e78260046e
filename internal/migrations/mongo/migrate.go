package mongo

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"pitstop/internal/migrations/mongo/validators"
)

var (
	BookingsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "booking_date", Value: 1},
			{Key: "time_slot", Value: 1},
			{Key: "status", Value: 1},
		}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "created_at", Value: -1}}},
	}

	JobcardsIndexes = []mongo.IndexModel{
		// One jobcard per booking, enforced at the storage layer.
		{
			Keys:    bson.D{{Key: "booking_id", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{{Key: "mechanic_ids", Value: 1}}},
		{Keys: bson.D{{Key: "status", Value: 1}}},
	}

	JobcardPartsIndexes = []mongo.IndexModel{
		{Keys: bson.D{
			{Key: "jobcard_id", Value: 1},
			{Key: "used_at", Value: 1},
		}},
		{Keys: bson.D{{Key: "part_id", Value: 1}}},
	}

	MechanicsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "mechanic_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{Keys: bson.D{
			{Key: "availability", Value: 1},
			{Key: "is_active", Value: 1},
		}},
	}

	PartsIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "part_code", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	}

	// Slot locks expire on their own; the TTL monitor reaps stale locks
	// left behind by crashed request handlers.
	SlotLocksIndexes = []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "expires_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(0),
		},
	}
)

func RunMigration(ctx context.Context, client *mongo.Client, dbName string) error {
	db := client.Database(dbName)
	fmt.Printf("Running Pitstop Mongo migrations on database: %s\n", dbName)

	collections := map[string]struct {
		Indexes   []mongo.IndexModel
		Validator bson.M
	}{
		"Bookings": {
			Indexes:   BookingsIndexes,
			Validator: validators.BookingValidator,
		},
		"Jobcards": {
			Indexes:   JobcardsIndexes,
			Validator: validators.JobcardValidator,
		},
		"JobcardParts": {
			Indexes:   JobcardPartsIndexes,
			Validator: validators.JobcardPartValidator,
		},
		"Mechanics": {
			Indexes:   MechanicsIndexes,
			Validator: validators.MechanicValidator,
		},
		"Parts": {
			Indexes:   PartsIndexes,
			Validator: validators.PartValidator,
		},
		"Slot_locks": {
			Indexes:   SlotLocksIndexes,
			Validator: validators.SlotLockValidator,
		},
	}

	for name, def := range collections {
		if err := ensureCollection(ctx, db, name, def.Validator); err != nil {
			return fmt.Errorf("failed to ensure collection %s: %w", name, err)
		}
		if err := ensureIndexes(ctx, db, name, def.Indexes); err != nil {
			return fmt.Errorf("failed to ensure indexes for %s: %w", name, err)
		}
	}

	fmt.Println("All migrations applied successfully.")
	return nil
}

func ensureCollection(ctx context.Context, db *mongo.Database, name string, validator bson.M) error {
	existing, err := db.ListCollectionNames(ctx, bson.D{{Key: "name", Value: name}})
	if err != nil {
		return err
	}

	if len(existing) == 0 {
		fmt.Printf("Creating collection: %s\n", name)
		opts := options.CreateCollection().SetValidator(validator)
		if err := db.CreateCollection(ctx, name, opts); err != nil {
			return fmt.Errorf("failed creating %s: %w", name, err)
		}
	} else {
		fmt.Printf("Collection %s already exists, updating validator if needed\n", name)
		command := bson.D{
			{Key: "collMod", Value: name},
			{Key: "validator", Value: validator},
		}
		if err := db.RunCommand(ctx, command).Err(); err != nil {
			fmt.Printf("Warning: failed updating validator for %s: %v\n", name, err)
		}
	}

	return nil
}

func ensureIndexes(ctx context.Context, db *mongo.Database, name string, models []mongo.IndexModel) error {
	coll := db.Collection(name)
	_, err := coll.Indexes().CreateMany(ctx, models)
	if err != nil {
		return err
	}
	fmt.Printf("Ensured indexes for %s\n", name)
	return nil
}

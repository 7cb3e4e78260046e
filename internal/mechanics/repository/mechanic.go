package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	mechanicserrors "pitstop/internal/mechanics/errors"
	"pitstop/pkg/config"
	"pitstop/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Mechanics"
)

type MechanicRepository interface {
	Create(ctx context.Context, mechanic *model.Mechanic) error
	FindByID(ctx context.Context, id string) (*model.Mechanic, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Mechanic, error)
	FindAvailable(ctx context.Context) ([]*model.Mechanic, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, updates *model.MechanicUpdate) error
	SetAvailability(ctx context.Context, ids []string, available bool) error
}

type mongoMechanicRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoMechanicRepository(cfg *config.Config) MechanicRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoMechanicRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
	}
}

func (r *mongoMechanicRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoMechanicRepository) Create(ctx context.Context, mechanic *model.Mechanic) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	mechanic.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, mechanic)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return mechanicserrors.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create mechanic: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		mechanic.ID = oid.Hex()
	}
	return nil
}

func (r *mongoMechanicRepository) FindByID(ctx context.Context, id string) (*model.Mechanic, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", mechanicserrors.ErrInvalidID, id)
	}

	var mechanic model.Mechanic
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&mechanic)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, mechanicserrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find mechanic: %w", err)
	}

	return &mechanic, nil
}

func (r *mongoMechanicRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Mechanic, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "mechanic_name", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find mechanics: %w", err)
	}
	defer cursor.Close(ctx)

	var mechanics []*model.Mechanic
	if err = cursor.All(ctx, &mechanics); err != nil {
		return nil, fmt.Errorf("failed to decode mechanics: %w", err)
	}

	return mechanics, nil
}

func (r *mongoMechanicRepository) FindAvailable(ctx context.Context) ([]*model.Mechanic, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{"availability": true, "is_active": true}
	opts := options.Find().SetSort(bson.D{{Key: "mechanic_name", Value: 1}})

	cursor, err := r.collection.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find available mechanics: %w", err)
	}
	defer cursor.Close(ctx)

	var mechanics []*model.Mechanic
	if err = cursor.All(ctx, &mechanics); err != nil {
		return nil, fmt.Errorf("failed to decode mechanics: %w", err)
	}

	return mechanics, nil
}

func (r *mongoMechanicRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count mechanics: %w", err)
	}
	return count, nil
}

func (r *mongoMechanicRepository) Update(ctx context.Context, id string, updates *model.MechanicUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", mechanicserrors.ErrInvalidID, id)
	}

	set := bson.M{}
	if updates.MechanicName != "" {
		set["mechanic_name"] = updates.MechanicName
	}
	if updates.Specialization != "" {
		set["specialization"] = updates.Specialization
	}
	if updates.Availability != nil {
		set["availability"] = *updates.Availability
	}
	if updates.HourlyRate != nil {
		set["hourly_rate"] = *updates.HourlyRate
	}
	if updates.IsActive != nil {
		set["is_active"] = *updates.IsActive
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update mechanic: %w", err)
	}
	if result.MatchedCount == 0 {
		return mechanicserrors.ErrNotFound
	}

	return nil
}

// SetAvailability flips availability for a whole jobcard roster at once.
func (r *mongoMechanicRepository) SetAvailability(ctx context.Context, ids []string, available bool) error {
	if len(ids) == 0 {
		return nil
	}

	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectIDs := make([]primitive.ObjectID, 0, len(ids))
	for _, id := range ids {
		objectID, err := primitive.ObjectIDFromHex(id)
		if err != nil {
			return fmt.Errorf("%w: %s", mechanicserrors.ErrInvalidID, id)
		}
		objectIDs = append(objectIDs, objectID)
	}

	filter := bson.M{"_id": bson.M{"$in": objectIDs}}
	update := bson.M{"$set": bson.M{"availability": available}}

	if _, err := r.collection.UpdateMany(ctx, filter, update); err != nil {
		return fmt.Errorf("failed to update mechanic availability: %w", err)
	}
	return nil
}

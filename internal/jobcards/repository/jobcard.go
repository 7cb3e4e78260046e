package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	jobcarderrors "pitstop/internal/jobcards/errors"
	"pitstop/pkg/config"
	mongotx "pitstop/pkg/db/mongo"
	"pitstop/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Jobcards"
)

type JobcardRepository interface {
	Create(ctx context.Context, jobcard *model.Jobcard) error
	FindByID(ctx context.Context, id string) (*model.Jobcard, error)
	FindByBookingID(ctx context.Context, bookingID string) (*model.Jobcard, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Jobcard, error)
	Count(ctx context.Context) (int64, error)
	AddMechanic(ctx context.Context, id, mechanicID string) error
	RemoveMechanic(ctx context.Context, id, mechanicID string) error
	UpdateServiceDetails(ctx context.Context, id string, details []model.ServiceDetail) error
	UpdateStatus(ctx context.Context, id string, status model.JobcardStatus, closedAt *time.Time) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoJobcardRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoJobcardRepository(cfg *config.Config) JobcardRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoJobcardRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoJobcardRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

// Create relies on the unique index over booking_id; a second insert for
// the same booking surfaces as ErrDuplicateBooking.
func (r *mongoJobcardRepository) Create(ctx context.Context, jobcard *model.Jobcard) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	jobcard.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, jobcard)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return jobcarderrors.ErrDuplicateBooking
		}
		return fmt.Errorf("failed to create jobcard: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		jobcard.ID = oid.Hex()
	}
	return nil
}

func (r *mongoJobcardRepository) FindByID(ctx context.Context, id string) (*model.Jobcard, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", jobcarderrors.ErrInvalidID, id)
	}

	var jobcard model.Jobcard
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&jobcard)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, jobcarderrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find jobcard: %w", err)
	}

	return &jobcard, nil
}

func (r *mongoJobcardRepository) FindByBookingID(ctx context.Context, bookingID string) (*model.Jobcard, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	var jobcard model.Jobcard
	err := r.collection.FindOne(ctx, bson.M{"booking_id": bookingID}).Decode(&jobcard)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, jobcarderrors.ErrNotFound
		}
		return nil, fmt.Errorf("failed to find jobcard by booking: %w", err)
	}

	return &jobcard, nil
}

func (r *mongoJobcardRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Jobcard, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "created_at", Value: -1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find jobcards: %w", err)
	}
	defer cursor.Close(ctx)

	var jobcards []*model.Jobcard
	if err = cursor.All(ctx, &jobcards); err != nil {
		return nil, fmt.Errorf("failed to decode jobcards: %w", err)
	}

	return jobcards, nil
}

func (r *mongoJobcardRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count jobcards: %w", err)
	}
	return count, nil
}

func (r *mongoJobcardRepository) AddMechanic(ctx context.Context, id, mechanicID string) error {
	return r.updateRoster(ctx, id, bson.M{"$addToSet": bson.M{"mechanic_ids": mechanicID}})
}

func (r *mongoJobcardRepository) RemoveMechanic(ctx context.Context, id, mechanicID string) error {
	return r.updateRoster(ctx, id, bson.M{"$pull": bson.M{"mechanic_ids": mechanicID}})
}

func (r *mongoJobcardRepository) updateRoster(ctx context.Context, id string, update bson.M) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", jobcarderrors.ErrInvalidID, id)
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update jobcard roster: %w", err)
	}
	if result.MatchedCount == 0 {
		return jobcarderrors.ErrNotFound
	}

	return nil
}

func (r *mongoJobcardRepository) UpdateServiceDetails(ctx context.Context, id string, details []model.ServiceDetail) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", jobcarderrors.ErrInvalidID, id)
	}

	update := bson.M{"$set": bson.M{"service_details": details}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update jobcard service details: %w", err)
	}
	if result.MatchedCount == 0 {
		return jobcarderrors.ErrNotFound
	}

	return nil
}

func (r *mongoJobcardRepository) UpdateStatus(ctx context.Context, id string, status model.JobcardStatus, closedAt *time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", jobcarderrors.ErrInvalidID, id)
	}

	set := bson.M{"status": status}
	if closedAt != nil {
		set["closed_at"] = *closedAt
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update jobcard status: %w", err)
	}
	if result.MatchedCount == 0 {
		return jobcarderrors.ErrNotFound
	}

	return nil
}

func (r *mongoJobcardRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

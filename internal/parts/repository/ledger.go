package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	partserrors "pitstop/internal/parts/errors"
	"pitstop/pkg/config"
	"pitstop/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	LedgerCollectionName = "JobcardParts"
)

// LedgerRepository stores the consumption ledger: one line per quantity of
// a part issued against a jobcard.
type LedgerRepository interface {
	Insert(ctx context.Context, line *model.JobcardSparePart) error
	FindByID(ctx context.Context, lineID string) (*model.JobcardSparePart, error)
	FindByJobcardID(ctx context.Context, jobcardID string) ([]*model.JobcardSparePart, error)
	UpdateQuantity(ctx context.Context, lineID string, quantity int, totalPrice float64) error
	MarkUsed(ctx context.Context, lineID string, usedAt time.Time) error
	Delete(ctx context.Context, lineID string) error
	CountReserved(ctx context.Context, jobcardID string) (int64, error)
}

type mongoLedgerRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
}

func NewMongoLedgerRepository(cfg *config.Config) LedgerRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoLedgerRepository{
		cfg:        cfg,
		collection: db.Collection(LedgerCollectionName),
	}
}

func (r *mongoLedgerRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoLedgerRepository) Insert(ctx context.Context, line *model.JobcardSparePart) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	result, err := r.collection.InsertOne(ctx, line)
	if err != nil {
		return fmt.Errorf("failed to insert ledger line: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		line.ID = oid.Hex()
	}
	return nil
}

func (r *mongoLedgerRepository) FindByID(ctx context.Context, lineID string) (*model.JobcardSparePart, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(lineID)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", partserrors.ErrInvalidID, lineID)
	}

	var line model.JobcardSparePart
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&line)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, partserrors.ErrLineNotFound
		}
		return nil, fmt.Errorf("failed to find ledger line: %w", err)
	}

	return &line, nil
}

func (r *mongoLedgerRepository) FindByJobcardID(ctx context.Context, jobcardID string) ([]*model.JobcardSparePart, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "assigned_at", Value: 1}})

	cursor, err := r.collection.Find(ctx, bson.M{"jobcard_id": jobcardID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find ledger lines: %w", err)
	}
	defer cursor.Close(ctx)

	var lines []*model.JobcardSparePart
	if err = cursor.All(ctx, &lines); err != nil {
		return nil, fmt.Errorf("failed to decode ledger lines: %w", err)
	}

	return lines, nil
}

func (r *mongoLedgerRepository) UpdateQuantity(ctx context.Context, lineID string, quantity int, totalPrice float64) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(lineID)
	if err != nil {
		return fmt.Errorf("%w: %s", partserrors.ErrInvalidID, lineID)
	}

	update := bson.M{"$set": bson.M{
		"quantity":    quantity,
		"total_price": totalPrice,
	}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to update ledger line: %w", err)
	}
	if result.MatchedCount == 0 {
		return partserrors.ErrLineNotFound
	}

	return nil
}

func (r *mongoLedgerRepository) MarkUsed(ctx context.Context, lineID string, usedAt time.Time) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(lineID)
	if err != nil {
		return fmt.Errorf("%w: %s", partserrors.ErrInvalidID, lineID)
	}

	update := bson.M{"$set": bson.M{"used_at": usedAt}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to mark ledger line used: %w", err)
	}
	if result.MatchedCount == 0 {
		return partserrors.ErrLineNotFound
	}

	return nil
}

func (r *mongoLedgerRepository) Delete(ctx context.Context, lineID string) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(lineID)
	if err != nil {
		return fmt.Errorf("%w: %s", partserrors.ErrInvalidID, lineID)
	}

	result, err := r.collection.DeleteOne(ctx, bson.M{"_id": objectID})
	if err != nil {
		return fmt.Errorf("failed to delete ledger line: %w", err)
	}
	if result.DeletedCount == 0 {
		return partserrors.ErrLineNotFound
	}

	return nil
}

// CountReserved counts lines on the jobcard still awaiting consumption.
func (r *mongoLedgerRepository) CountReserved(ctx context.Context, jobcardID string) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	filter := bson.M{
		"jobcard_id": jobcardID,
		"used_at":    bson.M{"$exists": false},
	}

	count, err := r.collection.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count reserved ledger lines: %w", err)
	}
	return count, nil
}

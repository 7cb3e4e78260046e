package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	partserrors "pitstop/internal/parts/errors"
	"pitstop/pkg/config"
	mongotx "pitstop/pkg/db/mongo"
	"pitstop/pkg/model"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	CollectionName = "Parts"
)

type PartRepository interface {
	Create(ctx context.Context, part *model.Part) error
	FindByID(ctx context.Context, id string) (*model.Part, error)
	FindAll(ctx context.Context, limit int, offset int64) ([]*model.Part, error)
	Count(ctx context.Context) (int64, error)
	Update(ctx context.Context, id string, updates *model.PartUpdate) error
	DecrementStock(ctx context.Context, id string, quantity int) error
	IncrementStock(ctx context.Context, id string, quantity int) error
	ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error
}

type mongoPartRepository struct {
	cfg        *config.Config
	collection *mongo.Collection
	txManager  mongotx.TransactionManager
}

func NewMongoPartRepository(cfg *config.Config) PartRepository {
	db := cfg.Client.Mongo.Database(cfg.MongoDatabaseName)
	return &mongoPartRepository{
		cfg:        cfg,
		collection: db.Collection(CollectionName),
		txManager:  mongotx.NewTransactionManager(cfg.Client.Mongo),
	}
}

func (r *mongoPartRepository) withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.(mongo.SessionContext); ok {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, timeout)
}

func (r *mongoPartRepository) Create(ctx context.Context, part *model.Part) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	part.CreatedAt = time.Now().UTC().Truncate(time.Millisecond)
	result, err := r.collection.InsertOne(ctx, part)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return partserrors.ErrDuplicateCode
		}
		return fmt.Errorf("failed to create part: %w", err)
	}

	if oid, ok := result.InsertedID.(primitive.ObjectID); ok {
		part.ID = oid.Hex()
	}
	return nil
}

func (r *mongoPartRepository) FindByID(ctx context.Context, id string) (*model.Part, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", partserrors.ErrInvalidID, id)
	}

	var part model.Part
	err = r.collection.FindOne(ctx, bson.M{"_id": objectID}).Decode(&part)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, partserrors.ErrPartNotFound
		}
		return nil, fmt.Errorf("failed to find part: %w", err)
	}

	return &part, nil
}

func (r *mongoPartRepository) FindAll(ctx context.Context, limit int, offset int64) ([]*model.Part, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	opts := options.Find().
		SetSort(bson.D{{Key: "part_code", Value: 1}}).
		SetLimit(int64(limit)).
		SetSkip(offset)

	cursor, err := r.collection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to find parts: %w", err)
	}
	defer cursor.Close(ctx)

	var parts []*model.Part
	if err = cursor.All(ctx, &parts); err != nil {
		return nil, fmt.Errorf("failed to decode parts: %w", err)
	}

	return parts, nil
}

func (r *mongoPartRepository) Count(ctx context.Context) (int64, error) {
	ctx, cancel := r.withTimeout(ctx, r.cfg.ReadTimeout)
	defer cancel()

	count, err := r.collection.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count parts: %w", err)
	}
	return count, nil
}

func (r *mongoPartRepository) Update(ctx context.Context, id string, updates *model.PartUpdate) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", partserrors.ErrInvalidID, id)
	}

	set := bson.M{}
	if updates.Name != "" {
		set["name"] = updates.Name
	}
	if updates.UnitPrice != nil {
		set["unit_price"] = *updates.UnitPrice
	}
	if updates.Stock != nil {
		set["stock"] = *updates.Stock
	}
	if updates.IsActive != nil {
		set["is_active"] = *updates.IsActive
	}
	if len(set) == 0 {
		return nil
	}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update part: %w", err)
	}
	if result.MatchedCount == 0 {
		return partserrors.ErrPartNotFound
	}

	return nil
}

// DecrementStock atomically takes quantity from stock. The filter refuses
// the write when stock would go negative; the caller distinguishes a
// missing part from insufficient stock.
func (r *mongoPartRepository) DecrementStock(ctx context.Context, id string, quantity int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", partserrors.ErrInvalidID, id)
	}

	filter := bson.M{
		"_id":   objectID,
		"stock": bson.M{"$gte": quantity},
	}
	update := bson.M{"$inc": bson.M{"stock": -quantity}}

	result, err := r.collection.UpdateOne(ctx, filter, update)
	if err != nil {
		return fmt.Errorf("failed to decrement stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return partserrors.ErrStockConflict
	}

	return nil
}

func (r *mongoPartRepository) IncrementStock(ctx context.Context, id string, quantity int) error {
	ctx, cancel := r.withTimeout(ctx, r.cfg.WriteTimeout)
	defer cancel()

	objectID, err := primitive.ObjectIDFromHex(id)
	if err != nil {
		return fmt.Errorf("%w: %s", partserrors.ErrInvalidID, id)
	}

	update := bson.M{"$inc": bson.M{"stock": quantity}}

	result, err := r.collection.UpdateOne(ctx, bson.M{"_id": objectID}, update)
	if err != nil {
		return fmt.Errorf("failed to increment stock: %w", err)
	}
	if result.MatchedCount == 0 {
		return partserrors.ErrPartNotFound
	}

	return nil
}

func (r *mongoPartRepository) ExecuteTransaction(ctx context.Context, fn mongotx.TransactionFunc) error {
	return r.txManager.ExecuteTransaction(ctx, fn)
}

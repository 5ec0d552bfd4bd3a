package mongodb

import (
	"context"
	"time"

	"paybit/internal/core/domain"
	"paybit/pkg/apperror"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// IntentRepository implements ports.IntentRepository on MongoDB.
type IntentRepository struct {
	col *mongo.Collection
}

func NewIntentRepository(db *DB) *IntentRepository {
	return &IntentRepository{col: db.Database.Collection(colIntents)}
}

func (r *IntentRepository) Create(ctx context.Context, intent *domain.TransferIntent) error {
	if _, err := r.col.InsertOne(ctx, intent); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}

func (r *IntentRepository) UpdateStatus(ctx context.Context, id string, status domain.IntentStatus, nodeTxID string) error {
	set := bson.M{
		"status":     status,
		"updated_at": time.Now().UTC(),
	}
	if nodeTxID != "" {
		set["node_tx_id"] = nodeTxID
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return apperror.InternalError(err)
	}
	if res.MatchedCount == 0 {
		return apperror.ErrNotFound("Transfer intent")
	}
	return nil
}

func (r *IntentRepository) ListStalePending(ctx context.Context, olderThan time.Time) ([]domain.TransferIntent, error) {
	filter := bson.M{
		"status":     domain.IntentStatusPending,
		"created_at": bson.M{"$lt": olderThan},
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: 1}})
	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	defer cur.Close(ctx)

	var intents []domain.TransferIntent
	if err := cur.All(ctx, &intents); err != nil {
		return nil, apperror.InternalError(err)
	}
	return intents, nil
}

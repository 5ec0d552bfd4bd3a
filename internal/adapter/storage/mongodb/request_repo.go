package mongodb

import (
	"context"
	"errors"
	"time"

	"paybit/internal/core/domain"
	"paybit/pkg/apperror"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// MoneyRequestRepository implements ports.MoneyRequestRepository on MongoDB.
type MoneyRequestRepository struct {
	col *mongo.Collection
}

func NewMoneyRequestRepository(db *DB) *MoneyRequestRepository {
	return &MoneyRequestRepository{col: db.Database.Collection(colRequests)}
}

func (r *MoneyRequestRepository) Create(ctx context.Context, req *domain.MoneyRequest) error {
	if _, err := r.col.InsertOne(ctx, req); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}

func (r *MoneyRequestRepository) GetByID(ctx context.Context, id string) (*domain.MoneyRequest, error) {
	var req domain.MoneyRequest
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&req)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.ErrNotFound("Money request")
	}
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return &req, nil
}

func (r *MoneyRequestRepository) ListForUser(ctx context.Context, userID string, incoming bool) ([]domain.MoneyRequest, error) {
	field := "requester_id"
	if incoming {
		field = "payer_id"
	}
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{field: userID}, opts)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	defer cur.Close(ctx)

	var reqs []domain.MoneyRequest
	if err := cur.All(ctx, &reqs); err != nil {
		return nil, apperror.InternalError(err)
	}
	return reqs, nil
}

func (r *MoneyRequestRepository) MarkResolved(ctx context.Context, id string) error {
	return r.resolve(ctx, id, false)
}

func (r *MoneyRequestRepository) MarkDeclined(ctx context.Context, id string) error {
	return r.resolve(ctx, id, true)
}

// resolve flips the request to resolved exactly once. The is_resolved
// guard in the filter makes concurrent pay/decline first-writer-wins.
func (r *MoneyRequestRepository) resolve(ctx context.Context, id string, declined bool) error {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"_id": id, "is_resolved": false},
		bson.M{"$set": bson.M{
			"is_resolved": true,
			"declined":    declined,
			"updated_at":  time.Now().UTC(),
		}},
	)
	if err != nil {
		return apperror.InternalError(err)
	}
	if res.MatchedCount == 0 {
		n, err := r.col.CountDocuments(ctx, bson.M{"_id": id})
		if err != nil {
			return apperror.InternalError(err)
		}
		if n > 0 {
			return apperror.ErrRequestResolved()
		}
		return apperror.ErrNotFound("Money request")
	}
	return nil
}

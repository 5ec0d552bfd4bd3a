package mongodb

import (
	"context"
	"errors"
	"regexp"

	"paybit/internal/core/domain"
	"paybit/internal/core/ports"
	"paybit/pkg/apperror"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// TransactionRepository implements ports.TransactionRepository on MongoDB.
type TransactionRepository struct {
	col *mongo.Collection
}

func NewTransactionRepository(db *DB) *TransactionRepository {
	return &TransactionRepository{col: db.Database.Collection(colTransactions)}
}

func (r *TransactionRepository) Create(ctx context.Context, tx *domain.Transaction) error {
	if _, err := r.col.InsertOne(ctx, tx); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}

func (r *TransactionRepository) GetByID(ctx context.Context, id string) (*domain.Transaction, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *TransactionRepository) GetByNodeTxID(ctx context.Context, nodeTxID string) (*domain.Transaction, error) {
	return r.findOne(ctx, bson.M{"node_tx_id": nodeTxID})
}

func (r *TransactionRepository) findOne(ctx context.Context, filter bson.M) (*domain.Transaction, error) {
	var tx domain.Transaction
	err := r.col.FindOne(ctx, filter).Decode(&tx)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.ErrNotFound("Transaction")
	}
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return &tx, nil
}

// List returns one page of the user's history plus the unpaginated total.
func (r *TransactionRepository) List(ctx context.Context, userID string, params ports.HistoryParams) ([]domain.Transaction, int64, error) {
	filter := historyFilter(userID, params)

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}

	skip := int64(params.Page-1) * int64(params.Limit)
	opts := options.Find().
		SetSort(historySort(params.Sort)).
		SetSkip(skip).
		SetLimit(int64(params.Limit))

	cur, err := r.col.Find(ctx, filter, opts)
	if err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	defer cur.Close(ctx)

	var txs []domain.Transaction
	if err := cur.All(ctx, &txs); err != nil {
		return nil, 0, apperror.InternalError(err)
	}
	return txs, total, nil
}

// historyFilter composes all predicates under an explicit $and so the
// party $or and the search $or never collide on a key.
func historyFilter(userID string, p ports.HistoryParams) bson.M {
	and := bson.A{}

	switch p.Direction {
	case string(domain.DirectionSent):
		and = append(and, bson.M{"from_user_id": userID})
	case string(domain.DirectionReceived):
		and = append(and, bson.M{"to_user_id": userID})
	default:
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"from_user_id": userID},
			bson.M{"to_user_id": userID},
		}})
	}

	if p.Type != "" {
		and = append(and, bson.M{"type": p.Type})
	}
	if p.Status != "" {
		and = append(and, bson.M{"status": p.Status})
	}

	if p.StartDate != nil || p.EndDate != nil {
		rng := bson.M{}
		if p.StartDate != nil {
			rng["$gte"] = *p.StartDate
		}
		if p.EndDate != nil {
			rng["$lte"] = *p.EndDate
		}
		and = append(and, bson.M{"created_at": rng})
	}

	if p.MinAmount != nil || p.MaxAmount != nil {
		rng := bson.M{}
		if p.MinAmount != nil {
			rng["$gte"] = int64(*p.MinAmount)
		}
		if p.MaxAmount != nil {
			rng["$lte"] = int64(*p.MaxAmount)
		}
		and = append(and, bson.M{"amount": rng})
	}

	if p.Search != "" {
		pattern := regexp.QuoteMeta(p.Search)
		rx := bson.M{"$regex": pattern, "$options": "i"}
		and = append(and, bson.M{"$or": bson.A{
			bson.M{"sender_name": rx},
			bson.M{"receiver_name": rx},
			bson.M{"description": rx},
			bson.M{"reference": rx},
		}})
	}

	return bson.M{"$and": and}
}

// historySort maps the API sort keys onto index-friendly sort documents.
// Amount sorts tie-break on recency.
func historySort(sort string) bson.D {
	switch sort {
	case "oldest":
		return bson.D{{Key: "created_at", Value: 1}}
	case "amount-high":
		return bson.D{{Key: "amount", Value: -1}, {Key: "created_at", Value: -1}}
	case "amount-low":
		return bson.D{{Key: "amount", Value: 1}, {Key: "created_at", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

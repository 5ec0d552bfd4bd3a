package mongodb

import (
	"context"
	"errors"
	"time"

	"paybit/internal/core/domain"
	"paybit/pkg/apperror"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
)

// UserRepository implements ports.UserRepository on MongoDB.
type UserRepository struct {
	col *mongo.Collection
}

func NewUserRepository(db *DB) *UserRepository {
	return &UserRepository{col: db.Database.Collection(colUsers)}
}

func (r *UserRepository) Create(ctx context.Context, user *domain.User) error {
	_, err := r.col.InsertOne(ctx, user)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.ErrEmailExists()
	}
	if err != nil {
		return apperror.InternalError(err)
	}
	return nil
}

func (r *UserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"_id": id})
}

func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	return r.findOne(ctx, bson.M{"email": email})
}

func (r *UserRepository) findOne(ctx context.Context, filter bson.M) (*domain.User, error) {
	var user domain.User
	err := r.col.FindOne(ctx, filter).Decode(&user)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.ErrNotFound("User")
	}
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return &user, nil
}

// SetWalletBinding writes the wallet name and receiving address once they
// are known. The address is only set when still empty so the first
// generated address stays authoritative.
func (r *UserRepository) SetWalletBinding(ctx context.Context, userID, walletName, address string) error {
	set := bson.M{
		"wallet_name": walletName,
		"updated_at":  time.Now().UTC(),
	}
	filter := bson.M{"_id": userID}
	if address != "" {
		filter["$or"] = bson.A{
			bson.M{"receive_address": bson.M{"$exists": false}},
			bson.M{"receive_address": ""},
			bson.M{"receive_address": address},
		}
		set["receive_address"] = address
	}
	res, err := r.col.UpdateOne(ctx, filter, bson.M{"$set": set})
	if err != nil {
		return apperror.InternalError(err)
	}
	if res.MatchedCount == 0 {
		if address != "" {
			// User exists but already has a different address; nothing to do.
			n, err := r.col.CountDocuments(ctx, bson.M{"_id": userID})
			if err != nil {
				return apperror.InternalError(err)
			}
			if n > 0 {
				return nil
			}
		}
		return apperror.ErrNotFound("User")
	}
	return nil
}

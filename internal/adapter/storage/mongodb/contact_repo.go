package mongodb

import (
	"context"

	"paybit/internal/core/domain"
	"paybit/pkg/apperror"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// ContactRepository implements ports.ContactRepository on MongoDB.
type ContactRepository struct {
	col *mongo.Collection
}

func NewContactRepository(db *DB) *ContactRepository {
	return &ContactRepository{col: db.Database.Collection(colContacts)}
}

func (r *ContactRepository) Create(ctx context.Context, c *domain.Contact) error {
	_, err := r.col.InsertOne(ctx, c)
	if mongo.IsDuplicateKeyError(err) {
		return apperror.ErrDuplicateContact()
	}
	if err != nil {
		return apperror.InternalError(err)
	}
	return nil
}

func (r *ContactRepository) Exists(ctx context.Context, ownerID, contactID string) (bool, error) {
	n, err := r.col.CountDocuments(ctx, bson.M{"owner_id": ownerID, "contact_id": contactID})
	if err != nil {
		return false, apperror.InternalError(err)
	}
	return n > 0, nil
}

func (r *ContactRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Contact, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	defer cur.Close(ctx)

	var contacts []domain.Contact
	if err := cur.All(ctx, &contacts); err != nil {
		return nil, apperror.InternalError(err)
	}
	return contacts, nil
}

func (r *ContactRepository) Delete(ctx context.Context, ownerID, contactID string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"owner_id": ownerID, "contact_id": contactID})
	if err != nil {
		return apperror.InternalError(err)
	}
	if res.DeletedCount == 0 {
		return apperror.ErrNotFound("Contact")
	}
	return nil
}

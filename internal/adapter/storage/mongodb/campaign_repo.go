package mongodb

import (
	"context"
	"errors"
	"time"

	"paybit/internal/core/domain"
	"paybit/pkg/apperror"

	"github.com/btcsuite/btcd/btcutil"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// CampaignRepository implements ports.CampaignRepository on MongoDB.
type CampaignRepository struct {
	col *mongo.Collection
}

func NewCampaignRepository(db *DB) *CampaignRepository {
	return &CampaignRepository{col: db.Database.Collection(colCampaigns)}
}

func (r *CampaignRepository) Create(ctx context.Context, c *domain.Campaign) error {
	if _, err := r.col.InsertOne(ctx, c); err != nil {
		return apperror.InternalError(err)
	}
	return nil
}

func (r *CampaignRepository) GetByID(ctx context.Context, id string) (*domain.Campaign, error) {
	var c domain.Campaign
	err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, apperror.ErrNotFound("Campaign")
	}
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	return &c, nil
}

func (r *CampaignRepository) List(ctx context.Context) ([]domain.Campaign, error) {
	opts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	cur, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, apperror.InternalError(err)
	}
	defer cur.Close(ctx)

	var campaigns []domain.Campaign
	if err := cur.All(ctx, &campaigns); err != nil {
		return nil, apperror.InternalError(err)
	}
	return campaigns, nil
}

func (r *CampaignRepository) Update(ctx context.Context, c *domain.Campaign) error {
	c.UpdatedAt = time.Now().UTC()
	set := bson.M{
		"name":        c.Name,
		"description": c.Description,
		"goal_amount": int64(c.GoalAmount),
		"image":       c.Image,
		"updated_at":  c.UpdatedAt,
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": c.ID}, bson.M{"$set": set})
	if err != nil {
		return apperror.InternalError(err)
	}
	if res.MatchedCount == 0 {
		return apperror.ErrNotFound("Campaign")
	}
	return nil
}

func (r *CampaignRepository) Delete(ctx context.Context, id string) error {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return apperror.InternalError(err)
	}
	if res.DeletedCount == 0 {
		return apperror.ErrNotFound("Campaign")
	}
	return nil
}

// IncrementCollected adds delta to the running total atomically, so
// concurrent donations never lose an update.
func (r *CampaignRepository) IncrementCollected(ctx context.Context, id string, delta btcutil.Amount) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{
		"$inc": bson.M{"collected_amount": int64(delta)},
		"$set": bson.M{"updated_at": time.Now().UTC()},
	})
	if err != nil {
		return apperror.InternalError(err)
	}
	if res.MatchedCount == 0 {
		return apperror.ErrNotFound("Campaign")
	}
	return nil
}

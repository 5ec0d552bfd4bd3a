// Package mongodb implements the persistence ports on MongoDB.
package mongodb

import (
	"context"
	"fmt"

	"paybit/config"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"
)

// Collection names.
const (
	colUsers        = "users"
	colTransactions = "transactions"
	colCampaigns    = "campaigns"
	colContacts     = "contacts"
	colRequests     = "money_requests"
	colIntents      = "transfer_intents"
)

// DB bundles the client and the application database handle.
type DB struct {
	Client   *mongo.Client
	Database *mongo.Database
}

// Connect opens the client, verifies connectivity and ensures indexes.
func Connect(ctx context.Context, cfg config.MongoConfig) (*DB, error) {
	opts := options.Client().ApplyURI(cfg.URI)
	if cfg.Timeout > 0 {
		opts = opts.SetTimeout(cfg.Timeout)
	}
	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connecting to mongodb: %w", err)
	}
	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		return nil, fmt.Errorf("pinging mongodb: %w", err)
	}

	db := &DB{Client: client, Database: client.Database(cfg.Database)}
	if err := db.ensureIndexes(ctx); err != nil {
		return nil, fmt.Errorf("ensuring indexes: %w", err)
	}
	return db, nil
}

// Close disconnects the underlying client.
func (d *DB) Close(ctx context.Context) error {
	return d.Client.Disconnect(ctx)
}

func (d *DB) ensureIndexes(ctx context.Context) error {
	unique := options.Index().SetUnique(true)

	_, err := d.Database.Collection(colUsers).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		{Keys: bson.D{{Key: "uid", Value: 1}}, Options: unique},
	})
	if err != nil {
		return err
	}

	_, err = d.Database.Collection(colContacts).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "contact_id", Value: 1}}, Options: unique},
	})
	if err != nil {
		return err
	}

	_, err = d.Database.Collection(colTransactions).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "from_user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "to_user_id", Value: 1}, {Key: "created_at", Value: -1}}},
		{Keys: bson.D{{Key: "node_tx_id", Value: 1}}, Options: options.Index().SetSparse(true)},
	})
	if err != nil {
		return err
	}

	_, err = d.Database.Collection(colIntents).Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "status", Value: 1}, {Key: "created_at", Value: 1}}},
	})
	return err
}

// Health reports mongodb connectivity for the health endpoint.
type Health struct {
	client *mongo.Client
}

func NewHealth(db *DB) *Health {
	return &Health{client: db.Client}
}

func (h *Health) Ping(ctx context.Context) error {
	return h.client.Ping(ctx, readpref.Primary())
}

func (h *Health) Name() string { return "mongodb" }

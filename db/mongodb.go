package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoRepo struct {
	Client    *mongo.Client
	DB        *mongo.Database
	UserColl  *mongo.Collection
	TokenColl *mongo.Collection
}

func NewMongoRepo(ctx context.Context, uri, dbName string) (*MongoRepo, error) {
	clientOpts := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, err
	}
	// ping
	ctx2, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()
	if err := client.Ping(ctx2, nil); err != nil {
		return nil, err
	}
	db := client.Database(dbName)
	return &MongoRepo{
		Client:    client,
		DB:        db,
		UserColl:  db.Collection("users"),
		TokenColl: db.Collection("tokens"),
	}, nil
}

// EnsureIndexes creates the unique indexes the registry relies on for its
// conflict semantics. bitcoin_address is sparse so users without one do not
// collide with each other.
func (r *MongoRepo) EnsureIndexes(ctx context.Context) error {
	userIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "evm_address", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "bitcoin_address", Value: 1}}, Options: options.Index().SetUnique(true).SetSparse(true)},
		{Keys: bson.D{{Key: "mnemonic", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "ss58_address", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	if _, err := r.UserColl.Indexes().CreateMany(ctx, userIdx); err != nil {
		return err
	}

	tokenIdx := []mongo.IndexModel{
		{Keys: bson.D{{Key: "token_address", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "asset_id", Value: 1}}, Options: options.Index().SetUnique(true)},
	}
	_, err := r.TokenColl.Indexes().CreateMany(ctx, tokenIdx)
	return err
}

func (r *MongoRepo) Close(ctx context.Context) error {
	return r.Client.Disconnect(ctx)
}

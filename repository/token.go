package repository

import (
	"context"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/clarusnet/bridge_service/db"
	"github.com/clarusnet/bridge_service/entity"
	"github.com/clarusnet/bridge_service/storage"
)

type TokenRepo struct {
	col *mongo.Collection
}

func NewTokenRepo(repo *db.MongoRepo) *TokenRepo {
	return &TokenRepo{col: repo.TokenColl}
}

func (r *TokenRepo) Insert(ctx context.Context, t *entity.Token) error {
	if t == nil || t.TokenAddress == "" {
		return storage.ErrInvalidInput
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, t)
	if err != nil {
		return translateMongoErr(err)
	}
	if objectID, ok := res.InsertedID.(primitive.ObjectID); ok {
		t.ID = objectID.Hex()
	}
	return nil
}

func (r *TokenRepo) FindByAddress(ctx context.Context, tokenAddress string) (*entity.Token, error) {
	var t entity.Token
	err := r.col.FindOne(ctx, bson.M{"token_address": tokenAddress}).Decode(&t)
	if err == mongo.ErrNoDocuments {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &t, nil
}

var _ storage.TokenStore = (*TokenRepo)(nil)

// indexFields maps the indexed Mongo field names to the record field names
// surfaced to API callers.
var indexFields = map[string]string{
	"evm_address":     "evmAddress",
	"bitcoin_address": "bitcoinAddress",
	"mnemonic":        "mnemonic",
	"ss58_address":    "ss58Address",
	"token_address":   "tokenAddress",
	"asset_id":        "assetId",
}

// translateMongoErr maps driver errors to the storage error taxonomy. A
// duplicate-key error becomes a ConflictError whose Field is recovered from
// the index name embedded in the driver's message.
func translateMongoErr(err error) error {
	if err == nil {
		return nil
	}
	if !mongo.IsDuplicateKeyError(err) {
		return err
	}
	msg := err.Error()
	for indexed, field := range indexFields {
		if strings.Contains(msg, indexed) {
			return &storage.ConflictError{Field: field}
		}
	}
	return &storage.ConflictError{}
}

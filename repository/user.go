package repository

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/clarusnet/bridge_service/db"
	"github.com/clarusnet/bridge_service/entity"
	"github.com/clarusnet/bridge_service/storage"
)

type UserRepo struct {
	col *mongo.Collection
}

func NewUserRepo(repo *db.MongoRepo) *UserRepo {
	return &UserRepo{col: repo.UserColl}
}

func (r *UserRepo) Insert(ctx context.Context, u *entity.User) error {
	if u == nil || u.EVMAddress == "" {
		return storage.ErrInvalidInput
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now()
	}
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		return translateMongoErr(err)
	}
	if objectID, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = objectID.Hex()
	}
	return nil
}

func (r *UserRepo) FindByEVM(ctx context.Context, evmAddress string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"evm_address": evmAddress})
}

func (r *UserRepo) FindByBitcoin(ctx context.Context, bitcoinAddress string) (*entity.User, error) {
	return r.findOne(ctx, bson.M{"bitcoin_address": bitcoinAddress})
}

func (r *UserRepo) FindByAddress(ctx context.Context, evmAddress, bitcoinAddress string) (*entity.User, error) {
	var parts []bson.M
	if evmAddress != "" {
		parts = append(parts, bson.M{"evm_address": evmAddress})
	}
	if bitcoinAddress != "" {
		parts = append(parts, bson.M{"bitcoin_address": bitcoinAddress})
	}
	if len(parts) == 0 {
		return nil, storage.ErrInvalidInput
	}
	if len(parts) == 1 {
		return r.findOne(ctx, parts[0])
	}
	return r.findOne(ctx, bson.M{"$or": parts})
}

func (r *UserRepo) UpdateByEVM(ctx context.Context, evmAddress string, upd storage.UserUpdate) (*entity.User, error) {
	set := bson.M{}
	unset := bson.M{}
	if upd.BitcoinAddress != nil {
		if *upd.BitcoinAddress == "" {
			// $unset keeps the sparse unique index from treating "" as a value
			unset["bitcoin_address"] = ""
		} else {
			set["bitcoin_address"] = *upd.BitcoinAddress
		}
	}
	if upd.EVMAddress != nil && *upd.EVMAddress != "" {
		set["evm_address"] = *upd.EVMAddress
	}
	if len(set) == 0 && len(unset) == 0 {
		return nil, storage.ErrInvalidInput
	}

	update := bson.M{}
	if len(set) > 0 {
		update["$set"] = set
	}
	if len(unset) > 0 {
		update["$unset"] = unset
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var out entity.User
	err := r.col.FindOneAndUpdate(ctx, bson.M{"evm_address": evmAddress}, update, opts).Decode(&out)
	if err == mongo.ErrNoDocuments {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, translateMongoErr(err)
	}
	return &out, nil
}

func (r *UserRepo) findOne(ctx context.Context, filter bson.M) (*entity.User, error) {
	var u entity.User
	err := r.col.FindOne(ctx, filter).Decode(&u)
	if err == mongo.ErrNoDocuments {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &u, nil
}

var _ storage.UserStore = (*UserRepo)(nil)

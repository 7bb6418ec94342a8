package main

import (
	"context"
	"flag"

	"github.com/btcsuite/btcd/chaincfg"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/clarusnet/bridge_service/api"
	"github.com/clarusnet/bridge_service/config"
	"github.com/clarusnet/bridge_service/db"
	"github.com/clarusnet/bridge_service/repository"
	"github.com/clarusnet/bridge_service/service"
	"github.com/clarusnet/bridge_service/storage"
	"github.com/clarusnet/bridge_service/storage/memory"
)

func main() {
	configPath := flag.String("config", "config/config.yaml", "path to config file")
	flag.Parse()

	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	cfg, err := config.Load(*configPath)
	if err != nil {
		logrus.Fatalf("failed to load config: %v", err)
	}

	ctx := context.Background()

	var users storage.UserStore
	var tokens storage.TokenStore
	if cfg.Mongo.URI != "" {
		repo, err := db.NewMongoRepo(ctx, cfg.Mongo.URI, cfg.Mongo.Database)
		if err != nil {
			logrus.Fatalf("failed to connect to MongoDB: %v", err)
		}
		defer repo.Close(ctx)
		if err := repo.EnsureIndexes(ctx); err != nil {
			logrus.Fatalf("failed to create indexes: %v", err)
		}
		users = repository.NewUserRepo(repo)
		tokens = repository.NewTokenRepo(repo)
	} else {
		logrus.Warn("no mongo URI configured, using in-memory stores")
		users = memory.NewUserStore()
		tokens = memory.NewTokenStore()
	}

	var rdb *redis.Client
	if cfg.Redis.Addr != "" {
		rdb = redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		if _, err := rdb.Ping(ctx).Result(); err != nil {
			logrus.Fatalf("failed to connect to Redis: %v", err)
		}
	}

	btcParams := &chaincfg.TestNet3Params
	if cfg.Eth.MainNet {
		btcParams = &chaincfg.MainNetParams
	}

	userService := service.NewUserService(users, cfg.SS58.Prefix, btcParams)
	tokenService := service.NewTokenService(tokens)

	r := api.NewRouter(
		api.NewUserHandler(userService, rdb),
		api.NewTokenHandler(tokenService),
	)

	logrus.Infof("registry listening on :%s", cfg.Port)
	if err := r.Run(":" + cfg.Port); err != nil {
		logrus.Fatalf("server start failed: %v", err)
	}
}

package main

import (
	"context"

	"github.com/nannyslm/platform-api/internal/api"
	"github.com/nannyslm/platform-api/internal/infrastructure/config"
	mongorepo "github.com/nannyslm/platform-api/internal/infrastructure/db/mongo"
	redisinfra "github.com/nannyslm/platform-api/internal/infrastructure/db/redis"
	"github.com/nannyslm/platform-api/pkg/logger"
)

// @title        NannysLM Platform API
// @version      1.0
// @description  Caregiver marketplace backend: authentication and nanny payout account management.
// @BasePath     /
// @securityDefinitions.apikey BearerAuth
// @in   header
// @name Authorization
func main() {
	cfg := config.Load()
	logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})
	log := logger.Get()

	ctx := context.Background()

	client, db, err := mongorepo.Connect(ctx, mongorepo.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = client.Disconnect(ctx) }()

	if err := mongorepo.NewUserRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("user indexes failed")
	}
	if err := mongorepo.NewBankAccountRepository(db).EnsureIndexes(ctx); err != nil {
		log.Fatal().Err(err).Msg("bank account indexes failed")
	}

	rdb, err := redisinfra.Connect(ctx, redisinfra.Config{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	e := api.NewRouter(cfg, db, rdb)

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting api server")
	if err := e.Start(":" + cfg.Port); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}

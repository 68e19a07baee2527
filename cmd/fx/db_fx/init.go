package db_fx

import (
	"context"

	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"shoply/internal/infra"
)

var Module = fx.Options(
	fx.Provide(provideLogger, provideDB, provideMongo, provideRedis),
	fx.Invoke(registerClosers),
)

func provideLogger() *zap.Logger {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	return logger
}

func provideDB() *gorm.DB {
	return infra.InitPostgresql()
}

func provideMongo() *mongo.Database {
	return infra.InitMongo()
}

func provideRedis() *redis.Client {
	return infra.InitRedis()
}

func registerClosers(lc fx.Lifecycle, db *gorm.DB, mongoDB *mongo.Database, rdb *redis.Client, logger *zap.Logger) {
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			infra.ClosePostgresql(db)
			infra.CloseMongo(mongoDB)
			infra.CloseRedis(rdb)
			_ = logger.Sync()
			return nil
		},
	})
}

package main

import (
	"github.com/gin-gonic/gin"
	goredis "github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/xiebiao/monobook/internal/infrastructure/config"
	"github.com/xiebiao/monobook/internal/infrastructure/persistence/mysql"
	"github.com/xiebiao/monobook/internal/infrastructure/persistence/redis"
	"github.com/xiebiao/monobook/pkg/jwt"
	"github.com/xiebiao/monobook/pkg/mq"
)

// App 组装完成的应用
type App struct {
	Config *config.Config
	Engine *gin.Engine
}

// provideDB 数据库连接，cleanup关闭连接池
func provideDB(cfg *config.Config) (*gorm.DB, func(), error) {
	db, err := mysql.NewDB(cfg)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		if sqlDB, err := db.DB(); err == nil {
			_ = sqlDB.Close()
		}
	}
	return db, cleanup, nil
}

// provideRedis Redis连接，cleanup关闭连接池
func provideRedis(cfg *config.Config) (*goredis.Client, func(), error) {
	client, err := redis.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() { _ = client.Close() }, nil
}

func provideJWTManager(cfg *config.Config) *jwt.Manager {
	return jwt.NewManager(
		cfg.JWT.Secret,
		cfg.JWT.AccessTokenExpire,
		cfg.JWT.RefreshTokenExpire,
	)
}

func provideBookCache(client *goredis.Client, cfg *config.Config) *redis.BookCache {
	return redis.NewBookCache(client, cfg.Redis.BookCacheTTL)
}

func provideCallbackLog(client *goredis.Client, cfg *config.Config) *redis.CallbackLog {
	return redis.NewCallbackLog(client, cfg.Redis.CallbackTTL)
}

// providePublisher 未开启mq时丢弃事件
func providePublisher(cfg *config.Config) (mq.EventPublisher, func(), error) {
	if !cfg.MQ.Enabled {
		log.Info().Msg("mq disabled, order events are dropped")
		return mq.NoopPublisher{}, func() {}, nil
	}

	p, err := mq.NewPublisher(cfg.MQ.URL, cfg.MQ.Exchange, "topic")
	if err != nil {
		return nil, nil, err
	}
	return p, func() { _ = p.Close() }, nil
}

package config

import (
	"context"

	"github.com/hibiken/asynq"
	"github.com/redis/go-redis/v9"
)

func InitRedisServer(ctx context.Context, settings Settings) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     settings.RedisAddress,
		Password: settings.RedisPassword,
		DB:       0,
	})

	_, err := client.Ping(ctx).Result()
	if err != nil {
		panic(err)
	}

	return client
}

// AsynqRedisOpt points the job queue at the same Redis as the cache.
func AsynqRedisOpt(settings Settings) asynq.RedisClientOpt {
	return asynq.RedisClientOpt{
		Addr:     settings.RedisAddress,
		Password: settings.RedisPassword,
		DB:       0,
	}
}

package infra

import (
	"log"
	"os"

	"github.com/redis/go-redis/v9"
)

func InitRedis() *redis.Client {
	url := os.Getenv("REDIS_URL")
	if url == "" {
		url = "redis://localhost:6379/0"
	}

	opts, err := redis.ParseURL(url)
	if err != nil {
		log.Fatalf("Error parsing redis url: %v", err)
	}

	return redis.NewClient(opts)
}

func CloseRedis(rdb *redis.Client) {
	if err := rdb.Close(); err != nil {
		log.Printf("Error closing redis connection: %v", err)
	}
}

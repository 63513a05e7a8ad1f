package db

import (
	"os"

	"github.com/redis/go-redis/v9"
)

func NewRedisClient(addr string) *redis.Client {
	if os.Getenv("MODE") == "test" {
		addr = "localhost:6380"
	}
	return redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: "",
		DB:       0,
	})
}

package main

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"
)

var ctx = context.Background()

func serverAddr() string {
	if addr := os.Getenv("RINGQ_ADDR"); addr != "" {
		return addr
	}
	return "localhost:5678"
}

func GetClient(addr string) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: addr,
	})
}

package utils

import (
	"context"
	"os"
	"strconv"
	"strings"

	redis "github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RedisClient is an optional shared Redis client used to cache hot read
// paths (leaderboards). It is nil when REDIS_ADDR is not configured; callers
// must treat a nil client as a cache miss.
var RedisClient *redis.Client

func init() {
	addr := strings.TrimSpace(os.Getenv("REDIS_ADDR"))
	if addr == "" {
		return
	}
	opts := &redis.Options{Addr: addr}
	if p := os.Getenv("REDIS_PASS"); p != "" {
		opts.Password = p
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if n, err := strconv.Atoi(dbStr); err == nil {
			opts.DB = n
		}
	}
	rc := redis.NewClient(opts)
	if err := rc.Ping(context.Background()).Err(); err != nil {
		logrus.WithError(err).Warn("redis ping failed, caching disabled")
		return
	}
	RedisClient = rc
}

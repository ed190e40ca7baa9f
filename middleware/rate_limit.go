package middleware

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/limiter"

	"projecthub/config"
	"projecthub/utils"
)

// RateLimiter builds a sliding-window limiter keyed by client IP. name keeps
// the counters of different limiters apart when they share a storage.
func RateLimiter(name string, max int, window time.Duration, message string, storage fiber.Storage, next func(*fiber.Ctx) bool) fiber.Handler {
	return limiter.New(limiter.Config{
		Next:       next,
		Max:        max,
		Expiration: window,
		KeyGenerator: func(c *fiber.Ctx) string {
			return "ratelimit:" + name + ":" + c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			utils.LogEvent("rate_limit", "rate_limit_hit", map[string]interface{}{
				"limiter":    name,
				"endpoint":   c.Path(),
				"ip":         c.IP(),
				"user_agent": c.Get(fiber.HeaderUserAgent),
			})
			return utils.NewTooManyRequests(message)
		},
		Storage:           storage,
		LimiterMiddleware: limiter.SlidingWindow{},
	})
}

// GlobalRateLimiter applies to every route outside /auth.
func GlobalRateLimiter(cfg config.RateLimitConfig, storage fiber.Storage) fiber.Handler {
	return RateLimiter("global", cfg.GlobalMax, cfg.GlobalWindow,
		"Too many requests, please try again later", storage,
		func(c *fiber.Ctx) bool {
			path := c.Path()
			return !cfg.Enabled || path == "/auth" || strings.HasPrefix(path, "/auth/")
		})
}

func LoginRateLimiter(cfg config.RateLimitConfig, storage fiber.Storage) fiber.Handler {
	return RateLimiter("login", cfg.LoginMax, cfg.LoginWindow,
		"Too many login attempts, please try again in 15 minutes", storage,
		func(*fiber.Ctx) bool { return !cfg.Enabled })
}

func RegisterRateLimiter(cfg config.RateLimitConfig, storage fiber.Storage) fiber.Handler {
	return RateLimiter("register", cfg.RegisterMax, cfg.RegisterWindow,
		"Too many registration attempts, please try again in 1 hour", storage,
		func(*fiber.Ctx) bool { return !cfg.Enabled })
}

// NewRateLimitStorage returns a Redis-backed store when Redis is enabled and
// nil otherwise, which makes the limiter keep its counters in memory.
func NewRateLimitStorage(cfg config.RedisConfig) fiber.Storage {
	if cfg.Enabled {
		return NewRedisStorage(cfg)
	}
	return nil
}

// RedisStorage implements fiber.Storage for Redis
type RedisStorage struct {
	client *redis.Client
}

func NewRedisStorage(cfg config.RedisConfig) *RedisStorage {
	return &RedisStorage{
		client: redis.NewClient(&redis.Options{
			Addr:     cfg.Address,
			Password: cfg.Password,
			DB:       cfg.DB,
		}),
	}
}

// Get returns nil, nil for a missing key as fiber.Storage requires.
func (r *RedisStorage) Get(key string) ([]byte, error) {
	val, err := r.client.Get(context.Background(), key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	return val, err
}

func (r *RedisStorage) Set(key string, val []byte, exp time.Duration) error {
	if key == "" || len(val) == 0 {
		return nil
	}
	return r.client.Set(context.Background(), key, val, exp).Err()
}

func (r *RedisStorage) Delete(key string) error {
	return r.client.Del(context.Background(), key).Err()
}

func (r *RedisStorage) Reset() error {
	return r.client.FlushDB(context.Background()).Err()
}

func (r *RedisStorage) Close() error {
	return r.client.Close()
}

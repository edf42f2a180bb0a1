package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var (
	RedisClient *redis.Client
	ctx         = context.Background()
)

const (
	gamesCacheKey    = "games:all"
	genresCacheKey   = "genres:all"
	gameCachePrefix  = "game:"          // game:<uuid>
	commentsPrefix   = "comments:game:" // comments:game:<uuid>
	gamesListTTL     = 5 * time.Minute
	genresListTTL    = time.Hour
	commentsCacheTTL = 10 * time.Minute
)

// InitRedis initializes Redis connection
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "localhost:6379"
	}

	RedisClient = redis.NewClient(&redis.Options{
		Addr:         redisURL,
		Password:     os.Getenv("REDIS_PASSWORD"),
		DB:           0,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if _, err := RedisClient.Ping(pingCtx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return nil
}

// CloseRedis closes Redis connection
func CloseRedis() error {
	if RedisClient != nil {
		return RedisClient.Close()
	}
	return nil
}

// IsRedisAvailable checks if Redis is connected
func IsRedisAvailable() bool {
	if RedisClient == nil {
		return false
	}
	_, err := RedisClient.Ping(ctx).Result()
	return err == nil
}

// Set stores any value in cache with TTL
func Set(key string, value interface{}, ttl time.Duration) error {
	if !IsRedisAvailable() {
		return fmt.Errorf("redis not available")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal value: %w", err)
	}
	return RedisClient.Set(ctx, key, data, ttl).Err()
}

// Get retrieves value from cache into dest
func Get(key string, dest interface{}) error {
	if !IsRedisAvailable() {
		return fmt.Errorf("redis not available")
	}
	val, err := RedisClient.Get(ctx, key).Result()
	if err == redis.Nil {
		return fmt.Errorf("cache miss")
	}
	if err != nil {
		return fmt.Errorf("failed to get value: %w", err)
	}
	return json.Unmarshal([]byte(val), dest)
}

// Delete removes key from cache
func Delete(key string) error {
	if !IsRedisAvailable() {
		return nil
	}
	return RedisClient.Del(ctx, key).Err()
}

// GetGames returns the cached game list
func GetGames() (interface{}, error) {
	var games interface{}
	err := Get(gamesCacheKey, &games)
	return games, err
}

// SetGames caches the game list
func SetGames(games interface{}) error {
	return Set(gamesCacheKey, games, gamesListTTL)
}

// InvalidateGames drops the game list and per-game caches
func InvalidateGames() error {
	if err := Delete(gamesCacheKey); err != nil {
		return err
	}
	iter := RedisClient.Scan(ctx, 0, gameCachePrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := RedisClient.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}

// GetGenres returns the cached genre list
func GetGenres() (interface{}, error) {
	var genres interface{}
	err := Get(genresCacheKey, &genres)
	return genres, err
}

// SetGenres caches the genre list
func SetGenres(genres interface{}) error {
	return Set(genresCacheKey, genres, genresListTTL)
}

// InvalidateGenres drops the genre list cache
func InvalidateGenres() error {
	return Delete(genresCacheKey)
}

// GetComments returns cached comments for a game
func GetComments(gameID string) (interface{}, error) {
	var comments interface{}
	err := Get(commentsPrefix+gameID, &comments)
	return comments, err
}

// SetComments caches comments for a game
func SetComments(gameID string, comments interface{}) error {
	return Set(commentsPrefix+gameID, comments, commentsCacheTTL)
}

// InvalidateComments drops cached comments for a game
func InvalidateComments(gameID string) error {
	return Delete(commentsPrefix + gameID)
}

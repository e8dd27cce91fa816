package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const (
	occupancyKey     = "gym:occupancy"
	occupancyChannel = "gym:occupancy:updates"
)

// InitRedis initializes the Redis client
func InitRedis() error {
	redisURL := os.Getenv("REDIS_URL")
	if redisURL == "" {
		redisURL = "redis://redis:6379" // Default Redis address for Docker
	}

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return fmt.Errorf("failed to parse Redis URL: %v", err)
	}

	RedisClient = redis.NewClient(opt)

	// Test the connection
	ctx := context.Background()
	_, err = RedisClient.Ping(ctx).Result()
	if err != nil {
		return fmt.Errorf("failed to connect to Redis: %v", err)
	}

	return nil
}

// IncrementOccupancy bumps the live headcount on check-in and returns the new
// value.
func IncrementOccupancy(ctx context.Context) (int64, error) {
	return RedisClient.Incr(ctx, occupancyKey).Result()
}

// DecrementOccupancy lowers the live headcount on check-out. The counter is
// clamped at zero in case Redis was flushed while members were inside.
func DecrementOccupancy(ctx context.Context) (int64, error) {
	count, err := RedisClient.Decr(ctx, occupancyKey).Result()
	if err != nil {
		return 0, err
	}
	if count < 0 {
		if err := RedisClient.Set(ctx, occupancyKey, 0, 0).Err(); err != nil {
			return 0, err
		}
		count = 0
	}
	return count, nil
}

// GetOccupancy returns the current headcount. A missing key means empty gym.
func GetOccupancy(ctx context.Context) (int64, error) {
	count, err := RedisClient.Get(ctx, occupancyKey).Int64()
	if err == redis.Nil {
		return 0, nil
	}
	return count, err
}

// SetMemberInside caches the member's open attendance record so the front desk
// can reject double check-ins without hitting Postgres.
func SetMemberInside(ctx context.Context, userID, attendanceID uint) error {
	key := fmt.Sprintf("gym:inside:%d", userID)
	return RedisClient.Set(ctx, key, uint64(attendanceID), 24*time.Hour).Err()
}

// GetMemberInside returns the cached open attendance record ID, or 0 if the
// member is not checked in.
func GetMemberInside(ctx context.Context, userID uint) (uint, error) {
	key := fmt.Sprintf("gym:inside:%d", userID)
	id, err := RedisClient.Get(ctx, key).Uint64()
	if err == redis.Nil {
		return 0, nil
	}
	return uint(id), err
}

// ClearMemberInside drops the cache entry on check-out.
func ClearMemberInside(ctx context.Context, userID uint) error {
	key := fmt.Sprintf("gym:inside:%d", userID)
	return RedisClient.Del(ctx, key).Err()
}

// PublishOccupancyUpdate publishes the new headcount to Redis pub/sub so every
// API instance can fan it out to its websocket clients.
func PublishOccupancyUpdate(ctx context.Context, count int64) error {
	updateData := map[string]interface{}{
		"occupancy": count,
		"timestamp": time.Now().Unix(),
	}

	data, err := json.Marshal(updateData)
	if err != nil {
		return err
	}

	return RedisClient.Publish(ctx, occupancyChannel, data).Err()
}

// SubscribeOccupancyUpdates subscribes to occupancy updates published by other
// API instances.
func SubscribeOccupancyUpdates(ctx context.Context) *redis.PubSub {
	return RedisClient.Subscribe(ctx, occupancyChannel)
}

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/Vishwajit-29/AgroRent/internal/models"
	"github.com/redis/go-redis/v9"
)

var RedisClient *redis.Client

const equipmentCacheTTL = 10 * time.Minute

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

func equipmentCacheKey(equipmentID uint) string {
	return fmt.Sprintf("equipment:detail:%d", equipmentID)
}

// CacheEquipment stores a public equipment record for fast detail reads
func CacheEquipment(ctx context.Context, equipment *models.Equipment) error {
	if RedisClient == nil {
		return nil
	}

	data, err := json.Marshal(equipment)
	if err != nil {
		return err
	}
	return RedisClient.Set(ctx, equipmentCacheKey(equipment.ID), data, equipmentCacheTTL).Err()
}

// GetCachedEquipment retrieves a cached equipment record, or nil on a miss
func GetCachedEquipment(ctx context.Context, equipmentID uint) (*models.Equipment, error) {
	if RedisClient == nil {
		return nil, nil
	}

	data, err := RedisClient.Get(ctx, equipmentCacheKey(equipmentID)).Result()
	if err == redis.Nil {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var equipment models.Equipment
	if err := json.Unmarshal([]byte(data), &equipment); err != nil {
		return nil, err
	}
	return &equipment, nil
}

// InvalidateEquipment drops the cached record after any equipment mutation
func InvalidateEquipment(ctx context.Context, equipmentID uint) error {
	if RedisClient == nil {
		return nil
	}
	return RedisClient.Del(ctx, equipmentCacheKey(equipmentID)).Err()
}

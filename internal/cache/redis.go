package cache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"math"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const predictionPrefix = "prediction:charges:"

type RedisClient struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisClient connects to redisURL and checks the connection. ttl bounds
// how long a stored prediction is served.
func NewRedisClient(ctx context.Context, redisURL string, ttl time.Duration) (*RedisClient, error) {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse Redis URL: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return &RedisClient{client: client, ttl: ttl}, nil
}

func (r *RedisClient) Close() error {
	return r.client.Close()
}

type storedPrediction struct {
	Charges  float64 `json:"charges"`
	StoredAt int64   `json:"stored_at"`
}

// PredictionKey derives the cache key from the exact bits of the feature vector.
func PredictionKey(features []float64) string {
	h := sha256.New()
	var buf [8]byte
	for _, f := range features {
		binary.BigEndian.PutUint64(buf[:], math.Float64bits(f))
		h.Write(buf[:])
	}
	return predictionPrefix + hex.EncodeToString(h.Sum(nil))
}

func (r *RedisClient) StorePrediction(ctx context.Context, features []float64, charges float64) error {
	data, err := json.Marshal(storedPrediction{Charges: charges, StoredAt: time.Now().Unix()})
	if err != nil {
		return fmt.Errorf("failed to marshal prediction: %w", err)
	}
	if err := r.client.Set(ctx, PredictionKey(features), data, r.ttl).Err(); err != nil {
		return fmt.Errorf("failed to store prediction in Redis: %w", err)
	}
	return nil
}

func (r *RedisClient) GetPrediction(ctx context.Context, features []float64) (float64, bool, error) {
	data, err := r.client.Get(ctx, PredictionKey(features)).Bytes()
	if err == redis.Nil {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to get prediction from Redis: %w", err)
	}

	var p storedPrediction
	if err := json.Unmarshal(data, &p); err != nil {
		// corrupt entries are evicted; the next read is a miss
		if derr := r.DeletePrediction(ctx, features); derr != nil {
			log.Warn().Err(derr).Msg("Failed to evict corrupt prediction")
		}
		return 0, false, fmt.Errorf("failed to unmarshal prediction: %w", err)
	}
	return p.Charges, true, nil
}

func (r *RedisClient) DeletePrediction(ctx context.Context, features []float64) error {
	return r.client.Del(ctx, PredictionKey(features)).Err()
}

// Status reports connection pool counters for the health endpoint.
func (r *RedisClient) Status(ctx context.Context) (map[string]interface{}, error) {
	if err := r.client.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	stats := r.client.PoolStats()
	return map[string]interface{}{
		"connected":    true,
		"hits":         stats.Hits,
		"misses":       stats.Misses,
		"active_conns": stats.TotalConns,
	}, nil
}

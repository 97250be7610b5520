// Package cache is the advisory tier in front of the store: a miss is never
// an error, and every value it holds can be recomputed from the store.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"eatery/internal/model"
)

// Metrics is a typed view over the key/value tier. Accessors return
// (zero, false, nil) on a miss; values that fail to parse count as misses
// rather than surfacing a type error.
type Metrics interface {
	GetFloat64(ctx context.Context, key string) (float64, bool, error)
	SetFloat64(ctx context.Context, key string, value float64, ttl time.Duration) error
	GetInt64(ctx context.Context, key string) (int64, bool, error)
	SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error
	GetTopSales(ctx context.Context, key string) ([]model.GoodsSale, bool, error)
	SetTopSales(ctx context.Context, key string, sales []model.GoodsSale, ttl time.Duration) error
}

type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) GetFloat64(ctx context.Context, key string) (float64, bool, error) {
	s, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false, nil
	}
	return v, true, nil
}

func (r *Redis) SetFloat64(ctx context.Context, key string, value float64, ttl time.Duration) error {
	return r.client.Set(ctx, key, strconv.FormatFloat(value, 'f', -1, 64), ttl).Err()
}

func (r *Redis) GetInt64(ctx context.Context, key string) (int64, bool, error) {
	s, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return 0, false, err
	}
	v, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, false, nil
	}
	return v, true, nil
}

func (r *Redis) SetInt64(ctx context.Context, key string, value int64, ttl time.Duration) error {
	return r.client.Set(ctx, key, strconv.FormatInt(value, 10), ttl).Err()
}

func (r *Redis) GetTopSales(ctx context.Context, key string) ([]model.GoodsSale, bool, error) {
	s, ok, err := r.get(ctx, key)
	if err != nil || !ok {
		return nil, false, err
	}
	var sales []model.GoodsSale
	if err := json.Unmarshal([]byte(s), &sales); err != nil {
		return nil, false, nil
	}
	return sales, true, nil
}

func (r *Redis) SetTopSales(ctx context.Context, key string, sales []model.GoodsSale, ttl time.Duration) error {
	body, err := json.Marshal(sales)
	if err != nil {
		return err
	}
	return r.client.Set(ctx, key, body, ttl).Err()
}

func (r *Redis) get(ctx context.Context, key string) (string, bool, error) {
	s, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return s, true, nil
}

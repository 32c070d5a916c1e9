package kv

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

// Redis guarda cada blob bajo su clave con GET/SET directos.
type Redis struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *Redis {
	return &Redis{client: client}
}

func (r *Redis) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return v, true, nil
}

func (r *Redis) SetItem(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value, 0).Err()
}

package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Guilherme-G-Cadilhe/Go-OTCDesk-API/internal/gateway"
	"github.com/redis/go-redis/v9"
)

const idempotencyPrefix = "otc:idempotency:"

type IdempotencyRepository struct {
	client redis.UniversalClient
}

func NewIdempotencyRepository(client redis.UniversalClient) *IdempotencyRepository {
	return &IdempotencyRepository{client: client}
}

func (r *IdempotencyRepository) Get(ctx context.Context, key gateway.IdempotencyKey) (*gateway.CachedResponse, error) {
	val, err := r.client.Get(ctx, idempotencyPrefix+key.String()).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil // Não encontrado (cache miss)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get idempotency key: %w", err)
	}

	var resp gateway.CachedResponse
	if err := json.Unmarshal(val, &resp); err != nil {
		return nil, fmt.Errorf("failed to unmarshal cached response: %w", err)
	}

	return &resp, nil
}

func (r *IdempotencyRepository) Save(ctx context.Context, key gateway.IdempotencyKey, response gateway.CachedResponse, ttl time.Duration) error {
	bytes, err := json.Marshal(response)
	if err != nil {
		return fmt.Errorf("failed to marshal response: %w", err)
	}

	if err := r.client.Set(ctx, idempotencyPrefix+key.String(), bytes, ttl).Err(); err != nil {
		return fmt.Errorf("failed to save idempotency key: %w", err)
	}
	return nil
}

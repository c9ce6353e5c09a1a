package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const eventPrefix = "otc:event:"

// EventDeduplicator implementa gateway.EventDeduplicator com SETNX.
type EventDeduplicator struct {
	client redis.UniversalClient
}

func NewEventDeduplicator(client redis.UniversalClient) *EventDeduplicator {
	return &EventDeduplicator{client: client}
}

func (d *EventDeduplicator) FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	ok, err := d.client.SetNX(ctx, eventPrefix+key, time.Now().UTC().Format(time.RFC3339), ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to register event key: %w", err)
	}
	return ok, nil
}

// Forget libera a chave para que uma entrega com falha possa ser reprocessada.
func (d *EventDeduplicator) Forget(ctx context.Context, key string) error {
	if err := d.client.Del(ctx, eventPrefix+key).Err(); err != nil {
		return fmt.Errorf("failed to release event key: %w", err)
	}
	return nil
}

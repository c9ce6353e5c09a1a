package memory

import (
	"context"
	"sync"
	"time"
)

// EventDeduplicator é o fallback do worker quando o Redis não está disponível.
// Só protege contra reentregas dentro do mesmo processo.
type EventDeduplicator struct {
	mu   sync.Mutex
	seen map[string]time.Time
	now  func() time.Time
}

func NewEventDeduplicator() *EventDeduplicator {
	return &EventDeduplicator{seen: map[string]time.Time{}, now: time.Now}
}

func (d *EventDeduplicator) FirstSeen(ctx context.Context, key string, ttl time.Duration) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	d.mu.Lock()
	defer d.mu.Unlock()

	now := d.now()
	if expires, ok := d.seen[key]; ok && now.Before(expires) {
		return false, nil
	}
	d.seen[key] = now.Add(ttl)
	return true, nil
}

func (d *EventDeduplicator) Forget(ctx context.Context, key string) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	delete(d.seen, key)
	return nil
}

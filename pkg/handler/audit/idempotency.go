package audit

import (
	"context"
	"log/slog"

	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/eventbus"
	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"
)

// KeyFunc derives an idempotency key from an event. An empty key disables the
// check for that event.
type KeyFunc func(events.Event) string

// DefaultTrackerSize is the number of keys a Tracker keeps when no size is
// given. Redeliveries arrive close to the original, so recent keys suffice.
const DefaultTrackerSize = 10_000

// Tracker remembers which event keys were handled successfully. It holds at
// most its size in keys and evicts the least recently used first.
type Tracker struct {
	processed *lru.Cache[string, struct{}]
	inflight  singleflight.Group
}

// NewTracker creates an empty Tracker holding up to size keys. A size below
// one selects DefaultTrackerSize.
func NewTracker(size int) *Tracker {
	if size < 1 {
		size = DefaultTrackerSize
	}
	cache, err := lru.New[string, struct{}](size)
	if err != nil {
		panic(err) // only for size < 1
	}
	return &Tracker{processed: cache}
}

// Seen reports whether key was handled successfully before.
func (t *Tracker) Seen(key string) bool {
	return t.processed.Contains(key)
}

// Forget drops key so the next delivery is handled again.
func (t *Tracker) Forget(key string) {
	t.processed.Remove(key)
}

// Len is the number of keys currently remembered.
func (t *Tracker) Len() int {
	return t.processed.Len()
}

// WithIdempotency skips events whose key was already handled. Concurrent
// deliveries of one key share a single handler run and its result; a failed
// run leaves the key unmarked so a redelivery retries it.
func WithIdempotency(
	handler eventbus.HandlerFunc,
	tracker *Tracker,
	key KeyFunc,
	name string,
	logger *slog.Logger,
) eventbus.HandlerFunc {
	if logger == nil {
		logger = slog.Default()
	}
	return func(ctx context.Context, e events.Event) error {
		k := key(e)
		if k == "" {
			return handler(ctx, e)
		}
		log := logger.With("handler", name, "event_type", e.Type(), "idempotency_key", k)
		if tracker.Seen(k) {
			log.Info("Event already processed, skipping")
			return nil
		}
		_, err, shared := tracker.inflight.Do(k, func() (any, error) {
			if tracker.Seen(k) {
				return nil, nil
			}
			if err := handler(ctx, e); err != nil {
				return nil, err
			}
			tracker.processed.Add(k, struct{}{})
			return nil, nil
		})
		if err != nil {
			log.Error("Handler failed", "error", err, "shared", shared)
			return err
		}
		return nil
	}
}

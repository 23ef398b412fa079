package eventbus

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/finsova/fundrequest/pkg/domain/events"
	"github.com/finsova/fundrequest/pkg/eventbus"
	"github.com/redis/go-redis/v9"
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

// RedisEventBus publishes events to one Redis stream and consumes it through
// a consumer group. A single reader loop, started by the first Register,
// dispatches each message to the handlers of its type and acknowledges it.
// Messages that cannot be decoded or whose handler fails are copied to the
// dead-letter stream.
type RedisEventBus struct {
	client        *redis.Client
	stream        string
	group         string
	consumer      string
	typeFactories map[string]func() events.Event
	logger        *slog.Logger

	mu       sync.RWMutex
	handlers map[string][]eventbus.HandlerFunc
	start    sync.Once
	cancel   context.CancelFunc
	done     chan struct{}
}

// NewWithRedis creates a new Redis-backed event bus.
// url: Redis connection URL (e.g., "redis://localhost:6379/0")
// stream: name of the Redis stream
// group: consumer group name
// opts adjust the client options parsed from url (pool size, timeouts).
func NewWithRedis(
	ctx context.Context,
	url, stream, group string,
	types map[string]func() events.Event,
	logger *slog.Logger,
	opts ...func(*redis.Options),
) (*RedisEventBus, error) {
	if url == "" || stream == "" || group == "" {
		return nil, fmt.Errorf("redis event bus: url, stream, and group are required")
	}

	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: invalid URL: %w", err)
	}
	for _, o := range opts {
		o(opt)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: connection failed: %w", err)
	}

	// BUSYGROUP only means the group already exists.
	if err := client.XGroupCreateMkStream(ctx, stream, group, "0").Err(); err != nil &&
		!strings.HasPrefix(err.Error(), "BUSYGROUP") {
		_ = client.Close()
		return nil, fmt.Errorf("redis event bus: create group: %w", err)
	}

	host, _ := os.Hostname()
	return newRedisEventBus(client, stream, group, fmt.Sprintf("%s-%d", host, os.Getpid()), types, logger), nil
}

func newRedisEventBus(
	client *redis.Client,
	stream, group, consumer string,
	types map[string]func() events.Event,
	logger *slog.Logger,
) *RedisEventBus {
	return &RedisEventBus{
		client:        client,
		stream:        stream,
		group:         group,
		consumer:      consumer,
		typeFactories: types,
		logger:        logger.With("component", "redis-event-bus", "stream", stream),
		handlers:      make(map[string][]eventbus.HandlerFunc),
		done:          make(chan struct{}),
	}
}

// Emit publishes an event to the Redis stream.
func (b *RedisEventBus) Emit(ctx context.Context, event events.Event) error {
	b.logger.Debug("emitting event", "type", event.Type())

	envBytes, err := encodeEnvelope(event)
	if err != nil {
		b.logger.Error("failed to marshal event", "error", err, "type", event.Type())
		return err
	}

	if _, err = b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: b.stream,
		Values: map[string]any{"event": string(envBytes)},
	}).Result(); err != nil {
		b.logger.Error("failed to emit event", "error", err, "type", event.Type())
		return fmt.Errorf("redis event bus: emit failed: %w", err)
	}

	b.logger.Debug("event emitted successfully", "type", event.Type())
	return nil
}

// Register adds a handler and makes sure the reader loop is running.
func (b *RedisEventBus) Register(eventType events.EventType, handler eventbus.HandlerFunc) {
	b.mu.Lock()
	b.handlers[eventType.String()] = append(b.handlers[eventType.String()], handler)
	b.mu.Unlock()

	b.start.Do(func() {
		ctx, cancel := context.WithCancel(context.Background())
		b.cancel = cancel
		go b.consume(ctx)
	})
	b.logger.Info("handler registered", "event_type", eventType, "consumer", b.consumer)
}

// Close stops the reader loop and closes the client.
func (b *RedisEventBus) Close() error {
	if b.cancel == nil {
		return b.client.Close()
	}
	b.cancel()
	err := b.client.Close()
	<-b.done
	return err
}

func (b *RedisEventBus) consume(ctx context.Context) {
	defer close(b.done)
	for ctx.Err() == nil {
		res, err := b.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    b.group,
			Consumer: b.consumer,
			Streams:  []string{b.stream, ">"},
			Count:    10,
			Block:    5 * time.Second,
		}).Result()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if !errors.Is(err, redis.Nil) {
				b.logger.Error("error reading from stream", "error", err, "consumer", b.consumer)
				time.Sleep(time.Second)
			}
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				if err := b.handle(ctx, msg.Values); err != nil {
					b.logger.Error("event handling failed", "error", err, "msg_id", msg.ID)
					b.pushToDLQ(ctx, msg.Values)
				}
				if err := b.client.XAck(ctx, b.stream, b.group, msg.ID).Err(); err != nil {
					b.logger.Error("failed to acknowledge message", "error", err, "msg_id", msg.ID)
				}
			}
		}
	}
}

// handle decodes one stream message and runs the handlers of its type.
func (b *RedisEventBus) handle(ctx context.Context, values map[string]any) (err error) {
	evt, err := decodeEnvelope(values, b.typeFactories)
	if err != nil {
		return err
	}

	b.mu.RLock()
	handlers := append([]eventbus.HandlerFunc(nil), b.handlers[evt.Type()]...)
	b.mu.RUnlock()

	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	var errs []error
	for _, h := range handlers {
		if herr := h(ctx, evt); herr != nil {
			errs = append(errs, herr)
		}
	}
	return errors.Join(errs...)
}

// pushToDLQ copies the raw message to the dead-letter stream.
func (b *RedisEventBus) pushToDLQ(ctx context.Context, values map[string]any) {
	dlqStream := dlqStreamName(b.stream)
	if _, err := b.client.XAdd(ctx, &redis.XAddArgs{
		Stream: dlqStream,
		Values: values,
	}).Result(); err != nil {
		b.logger.Error("failed to push to DLQ", "error", err, "stream", dlqStream)
	} else {
		b.logger.Warn("event pushed to DLQ", "stream", dlqStream)
	}
}

func dlqStreamName(stream string) string {
	return stream + "-DLQ"
}

func encodeEnvelope(event events.Event) ([]byte, error) {
	data, err := json.Marshal(event)
	if err != nil {
		return nil, fmt.Errorf("redis event bus: marshal failed: %w", err)
	}
	env, err := json.Marshal(envelope{Type: event.Type(), Payload: data})
	if err != nil {
		return nil, fmt.Errorf("redis event bus: envelope marshal failed: %w", err)
	}
	return env, nil
}

func decodeEnvelope(values map[string]any, types map[string]func() events.Event) (events.Event, error) {
	raw, ok := values["event"].(string)
	if !ok {
		return nil, errors.New("redis event bus: message has no event field")
	}
	var env envelope
	if err := json.Unmarshal([]byte(raw), &env); err != nil {
		return nil, fmt.Errorf("redis event bus: unmarshal envelope: %w", err)
	}
	constructor, ok := types[env.Type]
	if !ok {
		return nil, fmt.Errorf("redis event bus: unknown event type %q", env.Type)
	}
	evt := constructor()
	if err := json.Unmarshal(env.Payload, evt); err != nil {
		return nil, fmt.Errorf("redis event bus: unmarshal %s: %w", env.Type, err)
	}
	return evt, nil
}

var _ eventbus.Bus = (*RedisEventBus)(nil)

package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/edukraft/courseforge-backend/internal/pkg/envutil"
	"github.com/edukraft/courseforge-backend/internal/pkg/logger"
)

// ProgressEvent reports a generation stage for one request.
type ProgressEvent struct {
	RequestID string    `json:"request_id"`
	Stage     string    `json:"stage"`
	Progress  int       `json:"progress"`
	Message   string    `json:"message,omitempty"`
	At        time.Time `json:"at"`
}

// ProgressBus carries generation progress events. Injected explicitly so
// handlers and services never share hidden global state.
type ProgressBus interface {
	Publish(ctx context.Context, ev ProgressEvent) error
	Subscribe(onEvent func(ev ProgressEvent)) (unsubscribe func())
	Close() error
}

// NewProgressBus returns a redis-backed bus when REDIS_ADDR is set and
// reachable, otherwise an in-process bus. Publishing progress is always
// best-effort for callers either way.
func NewProgressBus(log *logger.Logger) ProgressBus {
	addr := envutil.Str("REDIS_ADDR", "")
	if addr == "" {
		return NewMemoryProgressBus(log)
	}
	bus, err := NewRedisProgressBus(log, addr)
	if err != nil {
		log.Warn("redis progress bus unavailable, using in-process bus", "error", err)
		return NewMemoryProgressBus(log)
	}
	return bus
}

type memoryProgressBus struct {
	log  *logger.Logger
	mu   sync.Mutex
	subs map[int]func(ProgressEvent)
	next int
}

func NewMemoryProgressBus(log *logger.Logger) ProgressBus {
	return &memoryProgressBus{
		log:  log.With("service", "MemoryProgressBus"),
		subs: make(map[int]func(ProgressEvent)),
	}
}

func (b *memoryProgressBus) Publish(_ context.Context, ev ProgressEvent) error {
	b.mu.Lock()
	subs := make([]func(ProgressEvent), 0, len(b.subs))
	for _, fn := range b.subs {
		subs = append(subs, fn)
	}
	b.mu.Unlock()

	for _, fn := range subs {
		fn(ev)
	}
	return nil
}

func (b *memoryProgressBus) Subscribe(onEvent func(ev ProgressEvent)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = onEvent
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *memoryProgressBus) Close() error { return nil }

type redisProgressBus struct {
	log     *logger.Logger
	rdb     *goredis.Client
	channel string

	mu     sync.Mutex
	subs   map[int]func(ProgressEvent)
	next   int
	pubsub *goredis.PubSub
}

func NewRedisProgressBus(log *logger.Logger, addr string) (ProgressBus, error) {
	channel := envutil.Str("REDIS_PROGRESS_CHANNEL", "structure_progress")

	rdb := goredis.NewClient(&goredis.Options{
		Addr:        addr,
		DialTimeout: 5 * time.Second,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	bus := &redisProgressBus{
		log:     log.With("service", "RedisProgressBus"),
		rdb:     rdb,
		channel: channel,
		subs:    make(map[int]func(ProgressEvent)),
	}
	bus.pubsub = rdb.Subscribe(context.Background(), channel)
	go bus.forward()
	return bus, nil
}

func (b *redisProgressBus) forward() {
	for msg := range b.pubsub.Channel() {
		var ev ProgressEvent
		if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
			b.log.Warn("dropping malformed progress payload", "error", err)
			continue
		}
		b.mu.Lock()
		subs := make([]func(ProgressEvent), 0, len(b.subs))
		for _, fn := range b.subs {
			subs = append(subs, fn)
		}
		b.mu.Unlock()
		for _, fn := range subs {
			fn(ev)
		}
	}
}

func (b *redisProgressBus) Publish(ctx context.Context, ev ProgressEvent) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("encode progress event: %w", err)
	}
	if err := b.rdb.Publish(ctx, b.channel, payload).Err(); err != nil {
		return fmt.Errorf("publish progress event: %w", err)
	}
	return nil
}

func (b *redisProgressBus) Subscribe(onEvent func(ev ProgressEvent)) func() {
	b.mu.Lock()
	id := b.next
	b.next++
	b.subs[id] = onEvent
	b.mu.Unlock()

	return func() {
		b.mu.Lock()
		delete(b.subs, id)
		b.mu.Unlock()
	}
}

func (b *redisProgressBus) Close() error {
	_ = b.pubsub.Close()
	return b.rdb.Close()
}

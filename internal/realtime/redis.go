package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"sync"

	"github.com/redis/go-redis/v9"
)

const channelPrefix = "etailor:realtime:"

// RedisBroker shares events between server instances over redis pub/sub.
type RedisBroker struct {
	client *redis.Client
}

// NewRedisBroker connects to the redis server at url.
func NewRedisBroker(ctx context.Context, url string) (*RedisBroker, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &RedisBroker{client: client}, nil
}

// NewRedisBrokerFromClient wraps an existing client.
func NewRedisBrokerFromClient(client *redis.Client) *RedisBroker {
	return &RedisBroker{client: client}
}

// Publish sends ev on the table's channel.
func (b *RedisBroker) Publish(ctx context.Context, ev Event) error {
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return b.client.Publish(ctx, channelPrefix+ev.Table, payload).Err()
}

// Subscribe returns once redis has confirmed the subscription.
func (b *RedisBroker) Subscribe(ctx context.Context, table string) (Subscription, error) {
	pubsub := b.client.Subscribe(ctx, channelPrefix+table)
	if _, err := pubsub.Receive(ctx); err != nil {
		pubsub.Close()
		return nil, fmt.Errorf("subscribe %s: %w", table, err)
	}

	sub := &redisSubscription{pubsub: pubsub, ch: make(chan Event, 1), done: make(chan struct{})}
	go sub.forward()
	return sub, nil
}

// Close releases the redis connection pool.
func (b *RedisBroker) Close() error {
	return b.client.Close()
}

type redisSubscription struct {
	pubsub *redis.PubSub
	ch     chan Event
	done   chan struct{}
	once   sync.Once
}

func (s *redisSubscription) forward() {
	defer close(s.ch)

	messages := s.pubsub.Channel()
	for {
		select {
		case <-s.done:
			return
		case msg, ok := <-messages:
			if !ok {
				return
			}
			var ev Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				log.Printf("[Realtime] dropping malformed event on %s: %v", msg.Channel, err)
				continue
			}
			offer(s.ch, ev)
		}
	}
}

func (s *redisSubscription) Events() <-chan Event { return s.ch }

func (s *redisSubscription) Close() error {
	var err error
	s.once.Do(func() {
		close(s.done)
		err = s.pubsub.Close()
	})
	return err
}

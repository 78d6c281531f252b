package realtime

import (
	"context"
	"errors"
	"sync"
)

// ErrClosed is returned by a broker after Close.
var ErrClosed = errors.New("realtime: broker closed")

// LocalBroker delivers events inside one process.
type LocalBroker struct {
	mu          sync.Mutex
	subscribers map[string]map[*localSubscription]struct{}
	closed      bool
}

// NewLocalBroker returns a ready broker.
func NewLocalBroker() *LocalBroker {
	return &LocalBroker{subscribers: make(map[string]map[*localSubscription]struct{})}
}

type localSubscription struct {
	broker *LocalBroker
	table  string
	ch     chan Event
	once   sync.Once
}

func (s *localSubscription) Events() <-chan Event { return s.ch }

func (s *localSubscription) Close() error {
	s.once.Do(func() {
		s.broker.mu.Lock()
		delete(s.broker.subscribers[s.table], s)
		s.broker.mu.Unlock()
		close(s.ch)
	})
	return nil
}

// Publish hands ev to every current subscriber of its table.
func (b *LocalBroker) Publish(ctx context.Context, ev Event) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return ErrClosed
	}
	for sub := range b.subscribers[ev.Table] {
		offer(sub.ch, ev)
	}
	return nil
}

// Subscribe registers for events on table.
func (b *LocalBroker) Subscribe(ctx context.Context, table string) (Subscription, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, ErrClosed
	}
	sub := &localSubscription{broker: b, table: table, ch: make(chan Event, 1)}
	if b.subscribers[table] == nil {
		b.subscribers[table] = make(map[*localSubscription]struct{})
	}
	b.subscribers[table][sub] = struct{}{}
	return sub, nil
}

// Close ends every subscription.
func (b *LocalBroker) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}
	b.closed = true
	var subs []*localSubscription
	for _, set := range b.subscribers {
		for sub := range set {
			subs = append(subs, sub)
		}
	}
	b.mu.Unlock()

	for _, sub := range subs {
		sub.Close()
	}
	return nil
}

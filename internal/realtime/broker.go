// Package realtime carries change notifications for watched tables. Events
// only say that something changed; consumers re-fetch what they show.
package realtime

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Watched tables.
const (
	TableOrders     = "orders"
	TableOrderItems = "order_items"
)

// Change kinds.
const (
	EventInsert = "INSERT"
	EventUpdate = "UPDATE"
	EventDelete = "DELETE"
)

// Event is an invalidation signal for one row.
type Event struct {
	Table string    `json:"table"`
	Type  string    `json:"type"`
	ID    uuid.UUID `json:"id"`
	At    time.Time `json:"at"`
}

// NewEvent stamps a change of kind on the row id of table.
func NewEvent(table, kind string, id uuid.UUID) Event {
	return Event{Table: table, Type: kind, ID: id, At: time.Now().UTC()}
}

// Publisher emits change events.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// Subscription delivers the events of one table until closed. Delivery
// coalesces: a slow reader sees at least one event after any burst of
// changes, not necessarily every event.
type Subscription interface {
	Events() <-chan Event
	Close() error
}

// Broker fans events out to subscribers of a table.
type Broker interface {
	Publisher
	Subscribe(ctx context.Context, table string) (Subscription, error)
	Close() error
}

// offer queues ev without blocking. When the reader has not consumed the
// previous event the queue already signals a change, so ev is dropped.
func offer(ch chan Event, ev Event) {
	select {
	case ch <- ev:
	default:
	}
}

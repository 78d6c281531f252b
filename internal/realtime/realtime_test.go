package realtime

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/etailor/internal/models"
)

func receive(t *testing.T, sub Subscription) Event {
	t.Helper()
	select {
	case ev, ok := <-sub.Events():
		require.True(t, ok, "subscription closed")
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event delivered")
		return Event{}
	}
}

func TestLocalBrokerRoutesByTable(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBroker()
	defer b.Close()

	orders, err := b.Subscribe(ctx, TableOrders)
	require.NoError(t, err)
	items, err := b.Subscribe(ctx, TableOrderItems)
	require.NoError(t, err)

	id := uuid.New()
	require.NoError(t, b.Publish(ctx, NewEvent(TableOrders, EventUpdate, id)))

	ev := receive(t, orders)
	assert.Equal(t, id, ev.ID)
	assert.Equal(t, EventUpdate, ev.Type)

	select {
	case <-items.Events():
		t.Fatal("order_items subscriber saw an orders event")
	default:
	}
}

func TestLocalBrokerCoalescesBursts(t *testing.T) {
	ctx := context.Background()
	b := NewLocalBroker()
	sub, err := b.Subscribe(ctx, TableOrders)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		require.NoError(t, b.Publish(ctx, NewEvent(TableOrders, EventInsert, uuid.New())))
	}
	receive(t, sub)

	select {
	case <-sub.Events():
		t.Fatal("burst should coalesce into one pending event")
	default:
	}

	require.NoError(t, b.Close())
	_, ok := <-sub.Events()
	assert.False(t, ok)
	assert.ErrorIs(t, b.Publish(ctx, NewEvent(TableOrders, EventInsert, uuid.New())), ErrClosed)
}

func TestHubStreamsEvents(t *testing.T) {
	broker := NewLocalBroker()
	defer broker.Close()

	verify := func(token string) (models.Identity, error) {
		if token != "good" {
			return models.Identity{}, errors.New("bad token")
		}
		return models.Identity{ID: uuid.New(), Email: "admin@etailor.com", Role: models.RoleAdmin}, nil
	}
	srv := httptest.NewServer(NewHub(broker, verify, nil).Handler())
	defer srv.Close()

	base := "ws" + strings.TrimPrefix(srv.URL, "http")

	_, resp, err := websocket.DefaultDialer.Dial(base+"/realtime/orders?token=bad", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	_, resp, err = websocket.DefaultDialer.Dial(base+"/realtime/profiles?token=good", nil)
	require.Error(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	conn, _, err := websocket.DefaultDialer.Dial(base+"/realtime/orders?token=good", nil)
	require.NoError(t, err)
	defer conn.Close()

	id := uuid.New()
	require.NoError(t, broker.Publish(context.Background(), NewEvent(TableOrders, EventInsert, id)))

	conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	var ev Event
	require.NoError(t, conn.ReadJSON(&ev))
	assert.Equal(t, TableOrders, ev.Table)
	assert.Equal(t, id, ev.ID)
}

package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/example/etailor/internal/models"
)

func TestStatsRecomputeAfterOrderChange(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	stats := NewStatsService(env.store)
	require.NoError(t, stats.Watch(ctx, env.broker))

	initial, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.Zero(t, initial.TotalOrders)
	assert.Equal(t, int64(1), initial.TotalCustomers)

	order := env.placeOrder(t)
	require.Eventually(t, func() bool {
		s, err := stats.Get(ctx)
		return err == nil && s.TotalOrders == 1
	}, time.Second, 10*time.Millisecond)

	for _, next := range []models.OrderStatus{models.StatusInStitching, models.StatusShipped, models.StatusDelivered} {
		_, err := env.orders.UpdateStatus(ctx, env.admin, order.ID, next)
		require.NoError(t, err)
	}
	env.placeOrder(t)

	require.Eventually(t, func() bool {
		s, err := stats.Get(ctx)
		return err == nil && s.TotalOrders == 2 && s.CompletedOrders == 1
	}, time.Second, 10*time.Millisecond)

	final, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), final.PendingOrders)
	assert.Equal(t, order.TotalAmount, final.TotalRevenue)
	assert.Equal(t, int64(1), final.OrdersByStatus[models.StatusDelivered])
	assert.Equal(t, int64(0), final.OrdersByStatus[models.StatusShipped])
}

func TestStatsCacheHoldsUntilInvalidated(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx := context.Background()
	stats := NewStatsService(env.store)

	before, err := stats.Get(ctx)
	require.NoError(t, err)

	env.placeOrder(t)
	cached, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, before.TotalOrders, cached.TotalOrders, "no watcher, so the cache is still served")

	stats.Invalidate()
	fresh, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), fresh.TotalOrders)
}

func TestStatsCallersCannotCorruptCache(t *testing.T) {
	env := newTestEnv(t, StatusPolicyStrict)
	ctx := context.Background()
	stats := NewStatsService(env.store)
	env.placeOrder(t)

	first, err := stats.Get(ctx)
	require.NoError(t, err)
	first.OrdersByStatus[models.StatusConfirmed] = 99

	second, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), second.OrdersByStatus[models.StatusConfirmed])
	second.OrdersByStatus[models.StatusShipped] = 7

	third, err := stats.Get(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), third.OrdersByStatus[models.StatusConfirmed])
	assert.Equal(t, int64(0), third.OrdersByStatus[models.StatusShipped])
}
